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

package tree

import "sync"

// RootStore is a concurrency-safe map from partition id to its persisted
// Roots, written by Table.Shutdown and read by Table.Init on warm-resume
// (spec.md §4.1: "shutdown ... writing its root sprig pointers into the
// namespace's persistent root array at offset pid * n_sprigs"). Here the
// "persistent root array" is a plain map keyed by partition id rather than
// a byte offset, since persistence itself is delegated to the index tree
// and out of scope for this module.
type RootStore struct {
	mu    sync.RWMutex
	roots map[int]Roots
}

// NewRootStore creates an empty RootStore.
func NewRootStore() *RootStore {
	return &RootStore{roots: make(map[int]Roots)}
}

// Put records the roots persisted for a partition at shutdown.
func (rs *RootStore) Put(pid int, roots Roots) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.roots[pid] = roots
}

// Get returns the roots previously persisted for a partition, if any.
func (rs *RootStore) Get(pid int) (Roots, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	r, ok := rs.roots[pid]
	return r, ok
}

// Remove drops any persisted roots for a partition.
func (rs *RootStore) Remove(pid int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.roots, pid)
}

// Len returns the number of partitions with persisted roots.
func (rs *RootStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.roots)
}

// ForEach applies f to every persisted (partition id, roots) pair. f must
// not mutate the store.
func (rs *RootStore) ForEach(f func(pid int, roots Roots)) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for pid, r := range rs.roots {
		f(pid, r)
	}
}
