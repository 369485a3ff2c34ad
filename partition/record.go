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

// Package partition implements the per-node partition table (C1) and its
// pure role predicates (C2), as specified in spec.md §4.1-§4.2.
package partition

import (
	"sync"
	"time"

	"github.com/atomstate/corekv/tree"
	"github.com/atomstate/corekv/version"
)

// NodeID is an opaque node identifier; 0 means "none/unset".
type NodeID uint64

// NoNode is the unset sentinel, matching spec.md §3's empty-slot convention.
const NoNode NodeID = 0

// Record is one partition's replication state, one per partition per
// namespace (spec.md §3). The lock guards every field below it; callers
// obtain read/write access only through Lock/TryLock, which yield a
// *LockedRecord so the compiler — not a comment — enforces "evaluated
// under the partition's lock" (spec.md §4.2).
type Record struct {
	mu sync.Mutex

	ID int

	Replicas []NodeID // [0] is the eventual master
	Origin   NodeID
	Target   NodeID

	PendingEmigrations   int
	PendingImmigrations  int

	Dupls []NodeID

	ClusterKey uint64

	Version      version.Version
	FinalVersion version.Version
	NTombstones  int

	VP    tree.Tree
	SubVP tree.Tree // present only when LDT is enabled

	State version.LegacyState // meaningful only in Legacy encoding
}

// LockedRecord is proof that Record.mu is held by the current goroutine.
// All of C2's predicates and C3's reservation body take a *LockedRecord.
type LockedRecord struct {
	r *Record
}

// Lock blocks until the partition lock is acquired.
func (p *Record) Lock() *LockedRecord {
	p.mu.Lock()
	return &LockedRecord{r: p}
}

// TryLock attempts to acquire the partition lock within timeout. It
// returns (nil, false) if the timeout elapses first — the distinct
// Timeout outcome spec.md §4.3/§8 scenario 6 requires.
func (p *Record) TryLock(timeout time.Duration) (*LockedRecord, bool) {
	if timeout <= 0 {
		if p.mu.TryLock() {
			return &LockedRecord{r: p}, true
		}
		return nil, false
	}

	done := make(chan struct{})
	go func() {
		p.mu.Lock()
		close(done)
	}()

	select {
	case <-done:
		return &LockedRecord{r: p}, true
	case <-time.After(timeout):
		// The goroutine above may still be blocked waiting for the lock;
		// it will acquire and immediately release it via a follow-up
		// Unlock once some holder releases. We cannot cancel a blocked
		// Mutex.Lock, so instead race a release: when `done` eventually
		// fires we must unlock on behalf of that late acquisition to
		// avoid leaking a held lock no LockedRecord was ever handed out
		// for.
		go func() {
			<-done
			p.mu.Unlock()
		}()
		return nil, false
	}
}

// Unlock releases the partition lock.
func (l *LockedRecord) Unlock() {
	l.r.mu.Unlock()
}

// Rec returns the underlying record. Exported so C3/C5 can read/write
// fields while holding the lock; the capability is in having obtained an
// *LockedRecord at all, not in field visibility.
func (l *LockedRecord) Rec() *Record {
	return l.r
}
