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

package balance

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atomstate/corekv/errs"
	"github.com/atomstate/corekv/partition"
	"github.com/atomstate/corekv/replicamap"
	"github.com/atomstate/corekv/version"
)

// Transition is one scripted mutation of a partition record under
// BALANCE-CONTRACT (spec.md §6.2): every field a real balance engine would
// recompute after a cluster-key change or migration step.
type Transition struct {
	Partition      int
	Replicas       []partition.NodeID
	Origin         partition.NodeID
	Target         partition.NodeID
	Version        version.Version
	FinalVersion   version.Version
	ClusterKeyBump bool
}

// Driver scripts BALANCE-CONTRACT/CLUSTER-CONTRACT transitions against a
// real partition.Table and replicamap.Set, standing in for the external
// balance engine and membership layer in integration tests (spec.md §8's
// end-to-end scenarios). It is not a rebalancer: it only ever applies the
// transitions its caller hands it.
type Driver struct {
	Namespace         string
	Self              partition.NodeID
	Membership        *Membership
	Table             *partition.Table
	Replicas          *replicamap.Set
	ReplicationFactor int
	Encoding          version.Encoding
	Logger            *zap.Logger

	// Backoff paces ApplyMigration's lock-acquisition retries. NewDriver
	// sets a default; callers may replace it to script a different curve.
	Backoff *Backoff
}

// defaultMigrationBackoff returns a sender-retry curve of the kind a real
// migration sender backs off with against a busy partition lock: a 50ms
// floor, doubling up to a 2s ceiling, jittered by 20%. The parameters are
// constants known to satisfy NewBackoff's validation.
func defaultMigrationBackoff() *Backoff {
	b, err := NewBackoff(50, 2, 2000, 0.2)
	if err != nil {
		panic("balance: default backoff parameters rejected: " + err.Error())
	}
	return b
}

// NewDriver constructs a Driver for one namespace.
func NewDriver(ns string, self partition.NodeID, m *Membership, table *partition.Table, replicas *replicamap.Set, replicationFactor int, enc version.Encoding, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		Namespace:         ns,
		Self:              self,
		Membership:        m,
		Table:             table,
		Replicas:          replicas,
		ReplicationFactor: replicationFactor,
		Encoding:          enc,
		Logger:            logger,
		Backoff:           defaultMigrationBackoff(),
	}
}

// resolveClusterKey advances the namespace's cluster key when t asks for a
// bump and returns the key this transition's record write should carry.
func (d *Driver) resolveClusterKey(t Transition) uint64 {
	key := d.Membership.CurrentClusterKey(d.Namespace)
	if t.ClusterKeyBump {
		key++
		d.Membership.SetClusterKey(d.Namespace, key)
	}
	return key
}

// applyLocked writes t's fields into l's record under the caller's lock
// and returns the replica-map index the partition now plays for self.
func (d *Driver) applyLocked(l *partition.LockedRecord, t Transition, key uint64) int {
	p := l.Rec()
	p.Replicas = t.Replicas
	p.Origin = t.Origin
	p.Target = t.Target
	p.Version = t.Version
	p.FinalVersion = t.FinalVersion
	p.ClusterKey = key
	if d.Encoding == version.Legacy {
		p.State = legacyStateFor(l, d.Self)
	}
	return partition.ReplicaSelfIndex(l, d.Self, d.ReplicationFactor)
}

// Apply mutates the partition's record under its lock per t, then updates
// the client replica map for that partition (spec.md §6.1's "recompute
// then update" handshake). If t.ClusterKeyBump is set, it first advances
// the namespace's cluster key in Membership.
func (d *Driver) Apply(t Transition) error {
	rec := d.Table.Record(t.Partition)
	if rec == nil {
		return fmt.Errorf("partition %d not initialized in namespace %s", t.Partition, d.Namespace)
	}

	key := d.resolveClusterKey(t)

	l := rec.Lock()
	idx := d.applyLocked(l, t, key)
	l.Unlock()

	d.Replicas.Update(t.Partition, idx)

	d.Logger.Debug("balance transition applied",
		zap.String("namespace", d.Namespace),
		zap.Int("partition", t.Partition),
		zap.Uint64("cluster_key", key))
	return nil
}

// ApplyMigration scripts a migration sender's retry loop: unlike Apply,
// which blocks until the partition lock is free, it bounds each attempt to
// lockTimeout and retries up to maxAttempts times, sleeping d.Backoff's
// jittered interval between attempts (spec.md §8 scenario 6's busy-lock
// path, scripted against a real Driver instead of ReserveMigrateTimeout's
// bare handle). sleep is injected so callers — including tests — control
// how the wait is actually performed; pass time.Sleep for real waiting.
func (d *Driver) ApplyMigration(t Transition, lockTimeout time.Duration, maxAttempts int64, sleep func(time.Duration)) error {
	rec := d.Table.Record(t.Partition)
	if rec == nil {
		return fmt.Errorf("partition %d not initialized in namespace %s", t.Partition, d.Namespace)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	key := d.resolveClusterKey(t)

	var lastErr error
	for attempt := int64(0); attempt < maxAttempts; attempt++ {
		l, ok := rec.TryLock(lockTimeout)
		if ok {
			idx := d.applyLocked(l, t, key)
			l.Unlock()
			d.Replicas.Update(t.Partition, idx)
			d.Logger.Debug("balance migration applied",
				zap.String("namespace", d.Namespace),
				zap.Int("partition", t.Partition),
				zap.Int64("attempt", attempt),
				zap.Uint64("cluster_key", key))
			return nil
		}

		lastErr = errs.New(errs.Timeout, "timed out acquiring partition lock for migration")
		d.Logger.Warn("migration lock attempt timed out, backing off",
			zap.String("namespace", d.Namespace),
			zap.Int("partition", t.Partition),
			zap.Int64("attempt", attempt))
		if attempt+1 < maxAttempts {
			sleep(d.Backoff.Wait(attempt))
		}
	}
	return lastErr
}

// legacyStateFor derives a plausible legacy State following the transition
// just applied, since Transition only carries the modern Version field:
// a replica with present data maps to Sync; absent data, or self not being
// a replica at all, maps to Absent. Desync/Zombie are
// driven directly by scripted tests setting p.State themselves when those
// transitions matter.
func legacyStateFor(l *partition.LockedRecord, self partition.NodeID) version.LegacyState {
	p := l.Rec()
	if partition.FindSelfIndex(l, self) < 0 {
		return version.Absent
	}
	if p.Version.IsNull() {
		return version.Absent
	}
	return version.Sync
}

// ClearAndRebuild implements the CLUSTER-CONTRACT handshake of spec.md
// §6.1 directly: clear every replica map, then recompute and update every
// initialized partition's ownership from its already-settled record
// state. Callers performing a full cluster-key change run every Apply
// call first, then call ClearAndRebuild once — or call it any time the
// replica maps are suspected stale relative to the table.
func (d *Driver) ClearAndRebuild() {
	d.Replicas.Clear()
	for pid := 0; pid < d.Table.Len(); pid++ {
		rec := d.Table.Record(pid)
		if rec == nil {
			continue
		}
		l := rec.Lock()
		idx := partition.ReplicaSelfIndex(l, d.Self, d.ReplicationFactor)
		l.Unlock()
		d.Replicas.Update(pid, idx)
	}
}
