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

package partition

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/atomstate/corekv/tree"
	"github.com/atomstate/corekv/version"
)

// Table is the fixed-size, per-namespace array of partition records
// (spec.md §3/§4.1), indexed directly by partition id.
type Table struct {
	mu         sync.RWMutex
	records    []*Record
	arena      tree.Arena
	roots      *tree.RootStore
	ldtEnabled bool
	encoding   version.Encoding
}

// NewTable allocates an uninitialized table of n partitions. Call Init for
// each partition id before using it.
func NewTable(n int, arena tree.Arena, roots *tree.RootStore, ldtEnabled bool, enc version.Encoding) *Table {
	return &Table{
		records:    make([]*Record, n),
		arena:      arena,
		roots:      roots,
		ldtEnabled: ldtEnabled,
		encoding:   enc,
	}
}

// Len returns the number of partitions in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// Record returns the record for pid, or nil if Init has not been called
// for it yet.
func (t *Table) Record(pid int) *Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if pid < 0 || pid >= len(t.records) {
		return nil
	}
	return t.records[pid]
}

// Init constructs the record for pid, idempotently. If resume is true, the
// partition's tree is rebuilt from a previously persisted root set
// (warm-resume, spec.md §4.1); otherwise a fresh tree is created
// (cold-start).
func (t *Table) Init(pid int, resume bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pid < 0 || pid >= len(t.records) {
		return fmt.Errorf("partition id %d out of range [0,%d)", pid, len(t.records))
	}
	if t.records[pid] != nil {
		return nil // idempotent
	}

	var vp tree.Tree
	if resume {
		roots, ok := t.roots.Get(pid)
		if !ok {
			return fmt.Errorf("warm-resume requested for partition %d with no persisted roots", pid)
		}
		vp = t.arena.Resume(true, roots)
	} else {
		vp = t.arena.Create(true)
	}

	var subVP tree.Tree
	if t.ldtEnabled {
		subVP = t.arena.Create(true)
	}

	rec := &Record{
		ID:    pid,
		VP:    vp,
		SubVP: subVP,
	}
	if t.encoding == version.Legacy {
		rec.State = version.Absent
	} else {
		rec.Version = version.Null
		rec.FinalVersion = version.Null
	}
	t.records[pid] = rec
	return nil
}

// Shutdown acquires pid's lock (never released — the process is exiting)
// and persists its tree's root set into the table's RootStore under pid.
// It is an error to call this for an uninitialized partition.
func (t *Table) Shutdown(pid int) error {
	rec := t.Record(pid)
	if rec == nil {
		return fmt.Errorf("partition %d not initialized", pid)
	}
	rec.mu.Lock() // intentionally never unlocked; see spec.md §4.1

	roots := tree.Roots{Size: rec.VP.Size()}
	t.roots.Put(pid, roots)
	return nil
}

// ShutdownAll shuts down every initialized partition, aggregating any
// per-partition failures with multierr rather than stopping at the first
// one — shutdown should persist as much state as it can.
func (t *Table) ShutdownAll() error {
	var errs error
	for pid := range t.records {
		if t.Record(pid) == nil {
			continue
		}
		if err := t.Shutdown(pid); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
