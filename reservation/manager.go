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

package reservation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/atomstate/corekv/errs"
	"github.com/atomstate/corekv/partition"
	"github.com/atomstate/corekv/version"
)

// Manager grants and releases reservations for one namespace on behalf of
// one local node.
type Manager struct {
	Namespace string
	Self      partition.NodeID
	Encoding  version.Encoding
	Logger    *zap.Logger

	// PrereserveConcurrency bounds how many partitions PrereserveQuery may
	// lock concurrently. The spec describes prereserve_query as
	// sequential/best-effort (spec.md §5), so this defaults to 1; a
	// caller doing a bulk scan may widen it explicitly.
	PrereserveConcurrency int64
}

// NewManager constructs a Manager with the sequential-by-default
// PrereserveQuery concurrency the spec calls for.
func NewManager(ns string, self partition.NodeID, enc version.Encoding, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		Namespace:             ns,
		Self:                  self,
		Encoding:              enc,
		Logger:                logger,
		PrereserveConcurrency: 1,
	}
}

// reserveLockfree is the common body shared by every reserve operation,
// invoked only while l's lock is held (spec.md §4.3).
func (m *Manager) reserveLockfree(l *partition.LockedRecord) *Handle {
	p := l.Rec()

	p.VP.Reserve()
	if p.SubVP != nil {
		p.SubVP.Reserve()
	}

	h := &Handle{
		Namespace:  m.Namespace,
		Partition:  p,
		Tree:       p.VP,
		SubTree:    p.SubVP,
		ClusterKey: p.ClusterKey,
	}

	if m.Encoding == version.Modern {
		h.RejectReplWrite = p.Version.IsNull()
	} else {
		h.RejectReplWrite = p.State == version.Absent
	}

	h.DuplNodes = append([]partition.NodeID(nil), p.Dupls...)
	return h
}

// ReserveRead reserves pid for a read. On success it returns a handle and
// the chosen node equal to Self. On NotOwner, it returns the node the
// caller should proxy to.
func (m *Manager) ReserveRead(rec *partition.Record) (*Handle, partition.NodeID, uint64, error) {
	return m.reserveFor(rec, true)
}

// ReserveWrite reserves pid for a write, identically to ReserveRead but
// with the write arm of BestNode.
func (m *Manager) ReserveWrite(rec *partition.Record) (*Handle, partition.NodeID, uint64, error) {
	return m.reserveFor(rec, false)
}

func (m *Manager) reserveFor(rec *partition.Record, isRead bool) (*Handle, partition.NodeID, uint64, error) {
	l := rec.Lock()
	defer l.Unlock()

	best := partition.BestNode(l, m.Self, isRead)
	key := l.Rec().ClusterKey
	if best != m.Self {
		m.Logger.Debug("reservation redirected",
			zap.String("namespace", m.Namespace),
			zap.Int("partition", l.Rec().ID),
			zap.Uint64("chosen_node", uint64(best)),
			zap.Bool("read", isRead))
		return nil, best, key, errs.New(errs.NotOwner, "not the owner for this partition")
	}
	return m.reserveLockfree(l), best, key, nil
}

// ReserveMigrate reserves pid unconditionally for the migration sender;
// the chosen node is always Self because migration reserves locally
// regardless of role (spec.md §4.3).
func (m *Manager) ReserveMigrate(rec *partition.Record) *Handle {
	l := rec.Lock()
	defer l.Unlock()
	return m.reserveLockfree(l)
}

// ReserveMigrateTimeout is like ReserveMigrate but returns a Timeout error
// if the lock cannot be acquired within timeout (spec.md §8 scenario 6).
func (m *Manager) ReserveMigrateTimeout(rec *partition.Record, timeout time.Duration) (*Handle, error) {
	l, ok := rec.TryLock(timeout)
	if !ok {
		return nil, errs.New(errs.Timeout, "timed out acquiring partition lock for migration")
	}
	defer l.Unlock()
	return m.reserveLockfree(l), nil
}

// ReserveQuery reserves pid for a query operation, which requires the
// local node to be the working master; unlike ReserveRead/Write it does
// not resolve or report a redirect target.
func (m *Manager) ReserveQuery(rec *partition.Record) (*Handle, error) {
	l := rec.Lock()
	defer l.Unlock()

	if !partition.IsWorkingMaster(l, m.Self) {
		return nil, errs.New(errs.NotOwner, "not the working master for this partition")
	}
	return m.reserveLockfree(l), nil
}

// ReserveXDRRead succeeds iff the partition has data on this node at all,
// including zombies — cross-datacenter replication may read from any node
// that has data (spec.md §4.3).
func (m *Manager) ReserveXDRRead(rec *partition.Record) (*Handle, error) {
	l := rec.Lock()
	defer l.Unlock()

	p := l.Rec()
	hasData := p.Version.IsNull() == false
	if m.Encoding == version.Legacy {
		hasData = p.State != version.Absent
	}
	if !hasData {
		return nil, errs.New(errs.NoData, "no version present for cross-datacenter read")
	}
	return m.reserveLockfree(l), nil
}

// Release decrements the refcounts a successful reservation holds. It
// must be called exactly once per reservation; a second call returns
// errs.AlreadyReleased instead of double-decrementing (spec.md §7).
func (m *Manager) Release(h *Handle) error {
	if !h.markReleased() {
		return errs.New(errs.AlreadyReleased, "reservation released more than once")
	}
	h.Tree.Release()
	if h.SubTree != nil {
		h.SubTree.Release()
	}
	return nil
}

// PrereserveQuery attempts ReserveQuery for every partition in the table,
// returning a queryable bit per partition and the handles obtained. It is
// a best-effort per-partition set taken under a bounded number of
// concurrent lock attempts (PrereserveConcurrency, default 1 = sequential)
// — never a consistent global snapshot (spec.md §5).
func (m *Manager) PrereserveQuery(records []*partition.Record) ([]bool, []*Handle) {
	n := len(records)
	queryable := make([]bool, n)
	handles := make([]*Handle, n)

	weight := m.PrereserveConcurrency
	if weight < 1 {
		weight = 1
	}
	sem := semaphore.NewWeighted(weight)
	ctx := context.Background()

	var done = make(chan struct{}, n)
	for i, rec := range records {
		i, rec := i, rec
		_ = sem.Acquire(ctx, 1)
		go func() {
			defer sem.Release(1)
			defer func() { done <- struct{}{} }()
			h, err := m.ReserveQuery(rec)
			if err == nil {
				queryable[i] = true
				handles[i] = h
			}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	return queryable, handles
}
