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

// Package tree is the consumed TREE-CONTRACT (spec.md §6.3): the index
// tree and its arena allocator are out of scope for the core, but a
// minimal in-memory implementation is provided here so the rest of the
// module is exercisable without a real storage engine.
package tree

import "sync/atomic"

// Tree is the subset of the index tree's contract the core depends on:
// refcounted lifetime and a size query.
type Tree interface {
	// Reserve increments the tree's refcount.
	Reserve()
	// Release decrements the tree's refcount.
	Release()
	// Size returns the number of live records held by the tree.
	Size() uint64
}

// Arena creates and resumes trees. The real arena allocates tree nodes
// out of a namespace-wide memory arena; ArenaMem below is a map-backed
// substitute with the same refcount semantics.
type Arena interface {
	// Create builds a fresh, empty tree.
	Create(shared bool) Tree
	// Resume rebuilds a tree from a persisted root set.
	Resume(shared bool, roots Roots) Tree
}

// Refcounter is implemented by tree values that expose their current
// refcount, for tests asserting the balance invariant (spec.md §8
// property 4). ArenaMem's trees satisfy it; a real tree implementation
// need not.
type Refcounter interface {
	Refcount() int64
}

// Roots is the durable root-sprig pointer set a tree's Shutdown produces
// and a warm-resume Arena.Resume consumes. The real tree encodes sprig
// pointers; this substitute just carries the size forward so ArenaMem can
// resume with the same record count.
type Roots struct {
	Size uint64
}

// memTree is an in-memory stand-in for the index tree: it tracks a record
// count and a refcount, and nothing else. It is deliberately not a real
// data structure — the core never reads or writes records through this
// contract, only reserves/releases/sizes it.
type memTree struct {
	size     uint64
	refcount int64
}

// ArenaMem is the in-memory Arena implementation used by tests and by
// cmd/corekvctl, which has no other tree implementation available to it.
type ArenaMem struct{}

// Create implements Arena.
func (ArenaMem) Create(shared bool) Tree {
	return &memTree{refcount: 1}
}

// Resume implements Arena.
func (ArenaMem) Resume(shared bool, roots Roots) Tree {
	return &memTree{size: roots.Size, refcount: 1}
}

// Reserve implements Tree.
func (t *memTree) Reserve() {
	atomic.AddInt64(&t.refcount, 1)
}

// Release implements Tree.
func (t *memTree) Release() {
	atomic.AddInt64(&t.refcount, -1)
}

// Size implements Tree.
func (t *memTree) Size() uint64 {
	return atomic.LoadUint64(&t.size)
}

// Refcount exposes the current refcount for tests asserting the balance
// invariant (spec.md §8 property 4). Production code never reads this.
func (t *memTree) Refcount() int64 {
	return atomic.LoadInt64(&t.refcount)
}

// SetSize lets a test or admin tool seed a record count without a real
// write path.
func (t *memTree) SetSize(n uint64) {
	atomic.StoreUint64(&t.size, n)
}

// Shutdown produces a Roots snapshot for warm-resume, mirroring the real
// tree's durable-shutdown path (spec.md §4.1).
func (t *memTree) Shutdown() Roots {
	return Roots{Size: t.Size()}
}
