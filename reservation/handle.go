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

// Package reservation implements the reservation manager (C3): short-lived
// handles that pin a partition's tree(s) against concurrent deletion or
// replacement while a read, write, migration, query, or XDR operation runs
// (spec.md §4.3).
package reservation

import (
	"sync"

	"github.com/atomstate/corekv/partition"
	"github.com/atomstate/corekv/tree"
)

// Handle is a reservation: {ns, partition, tree, sub_tree, cluster_key,
// reject_repl_write, n_dupl, dupl_nodes} (spec.md §3). Copying a Handle by
// value duplicates only the scalar fields and the dupl-node slice header,
// never the refcount it represents — see Copy below and spec.md §9.
type Handle struct {
	Namespace  string
	Partition  *partition.Record
	Tree       tree.Tree
	SubTree    tree.Tree
	ClusterKey uint64

	RejectReplWrite bool
	DuplNodes       []partition.NodeID

	// released guards against a double Release, adapted from the
	// teacher's IdempotentCloser: this is a best-effort programmer-error
	// detector, not a correctness mechanism (spec.md §7 treats a double
	// release as a contract violation, not a recoverable condition).
	released   bool
	releasedMu sync.Mutex
}

// markReleased returns true the first time it is called on this handle,
// and false on every subsequent call.
func (h *Handle) markReleased() bool {
	h.releasedMu.Lock()
	defer h.releasedMu.Unlock()
	if h.released {
		return false
	}
	h.released = true
	return true
}

// Copy duplicates dst's scalar fields and dupl-node list from src. It does
// NOT adjust refcounts: the caller remains responsible for ensuring
// exactly one Release per underlying reservation. This exists to support
// handoff patterns where the source drops its responsibility to release
// (spec.md §4.3/§9) — prefer reserving again when in doubt.
func Copy(dst, src *Handle) {
	dst.Namespace = src.Namespace
	dst.Partition = src.Partition
	dst.Tree = src.Tree
	dst.SubTree = src.SubTree
	dst.ClusterKey = src.ClusterKey
	dst.RejectReplWrite = src.RejectReplWrite
	dst.DuplNodes = append([]partition.NodeID(nil), src.DuplNodes...)
}
