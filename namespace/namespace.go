// Copyright 2024 Atomstate Technologies Private Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package namespace wires the partition table, reservation manager,
// client replica maps, and info surface together for one namespace (A1),
// the runtime home the distilled spec assumes but never names directly.
package namespace

import (
	"go.uber.org/zap"

	"github.com/atomstate/corekv/config"
	"github.com/atomstate/corekv/info"
	"github.com/atomstate/corekv/partition"
	"github.com/atomstate/corekv/replicamap"
	"github.com/atomstate/corekv/reservation"
	"github.com/atomstate/corekv/tree"
)

// Namespace owns one namespace's full stack: the partition table (C1), the
// reservation manager (C3), and the client replica maps (C4), plus the
// config and logger that wire them together.
type Namespace struct {
	Config    *config.NamespaceConfig
	Self      partition.NodeID
	Table     *partition.Table
	Replicas  *replicamap.Set
	Reserve   *reservation.Manager
	Logger    *zap.Logger
	listeners *ClusterKeyListeners
}

// New constructs a Namespace from cfg, wiring an in-memory tree arena
// (A6) as the default TREE-CONTRACT implementation. Table.Init is not
// called for any partition; callers choose cold-start vs. warm-resume via
// InitAll.
func New(cfg *config.NamespaceConfig, self partition.NodeID, logger *zap.Logger) *Namespace {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := partition.NewTable(cfg.NPartitions, tree.ArenaMem{}, tree.NewRootStore(), cfg.LDTEnabled, cfg.Encoding())
	replicas := replicamap.NewSet(cfg.CfgReplicationFactor, cfg.NPartitions)
	return &Namespace{
		Config:    cfg,
		Self:      self,
		Table:     table,
		Replicas:  replicas,
		Reserve:   reservation.NewManager(cfg.Name, self, cfg.Encoding(), logger),
		Logger:    logger,
		listeners: NewClusterKeyListeners(logger),
	}
}

// InitAll initializes every partition in the table, cold-start or
// warm-resume per resume.
func (n *Namespace) InitAll(resume bool) error {
	for pid := 0; pid < n.Table.Len(); pid++ {
		if err := n.Table.Init(pid, resume); err != nil {
			return err
		}
	}
	return nil
}

// AddClusterKeyListener registers candidate for cluster-key-change
// notifications if it implements ClusterKeyListener.
func (n *Namespace) AddClusterKeyListener(candidate interface{}) {
	n.listeners.MaybeAdd(candidate)
}

// RebuildReplicaMaps clears and recomputes every replica map from the
// table's already-settled Replicas/Origin/Target state, the
// CLUSTER-CONTRACT handshake of spec.md §6.1 ("clear then update per
// partition after recomputing replicas").
func (n *Namespace) RebuildReplicaMaps() {
	n.Replicas.Clear()
	for pid := 0; pid < n.Table.Len(); pid++ {
		rec := n.Table.Record(pid)
		if rec == nil {
			continue
		}
		l := rec.Lock()
		idx := partition.ReplicaSelfIndex(l, n.Self, n.Config.ReplicationFactor)
		l.Unlock()
		n.Replicas.Update(pid, idx)
	}
}

// OnClusterKeyChanged rebuilds this namespace's replica maps and then
// broadcasts to any additional registered listeners.
func (n *Namespace) OnClusterKeyChanged(ns string, newKey uint64) {
	n.Logger.Info("cluster key changed", zap.String("namespace", ns), zap.Uint64("new_key", newKey))
	n.RebuildReplicaMaps()
	n.listeners.Notify(ns, newKey)
}

// View builds the read-only snapshot the info package's formatters walk.
func (n *Namespace) View() info.Namespace {
	return info.Namespace{
		Name:              n.Config.Name,
		Table:             n.Table,
		Replicas:          n.Replicas,
		Self:              n.Self,
		Encoding:          n.Config.Encoding(),
		LDTEnabled:        n.Config.LDTEnabled,
		ReplicationFactor: n.Config.ReplicationFactor,
	}
}
