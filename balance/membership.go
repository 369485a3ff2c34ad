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

// Package balance provides a minimal in-process implementation of the
// cluster-membership and partition-balance contracts the core consumes
// (spec.md §6.1/§6.2) — not a real rebalancer, but enough to script the
// end-to-end transitions that exercise the core in integration tests.
package balance

import (
	"sort"
	"sync"

	"github.com/atomstate/corekv/partition"
)

// Membership is an immutable-by-convention cluster node registry: writers
// replace the node list wholesale under mu, mirroring the teacher's
// Cluster type but stripped of topic/ACL bookkeeping that has no place
// here.
type Membership struct {
	mu            sync.RWMutex
	nodes         []partition.NodeID
	clusterKeys   map[string]uint64
	newClustering bool
}

// NewMembership builds a Membership with an initial, ID-sorted node list.
func NewMembership(newClustering bool, nodes []partition.NodeID) *Membership {
	sorted := make([]partition.NodeID, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &Membership{
		nodes:         sorted,
		clusterKeys:   make(map[string]uint64),
		newClustering: newClustering,
	}
}

// IsNewClustering implements the process-wide version-encoding selector of
// CLUSTER-CONTRACT (spec.md §6.1).
func (m *Membership) IsNewClustering() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.newClustering
}

// CurrentClusterKey returns the current cluster key for ns, 0 if unset.
func (m *Membership) CurrentClusterKey(ns string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clusterKeys[ns]
}

// SetClusterKey installs a new cluster key for ns, as the paxos/membership
// layer would after a view change.
func (m *Membership) SetClusterKey(ns string, key uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusterKeys[ns] = key
}

// Nodes returns a defensive copy of the known node list.
func (m *Membership) Nodes() []partition.NodeID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	nodes := make([]partition.NodeID, len(m.nodes))
	copy(nodes, m.nodes)
	return nodes
}

// SetNodes replaces the node list wholesale, re-sorting by ID.
func (m *Membership) SetNodes(nodes []partition.NodeID) {
	sorted := make([]partition.NodeID, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = sorted
}
