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

import "github.com/atomstate/corekv/version"

// FindSelfIndex returns the index of self in p.Replicas[0:len(Replicas)],
// or -1 if self is not a replica.
func FindSelfIndex(l *LockedRecord, self NodeID) int {
	p := l.Rec()
	for i, id := range p.Replicas {
		if id == self {
			return i
		}
	}
	return -1
}

// IsEventualMaster reports whether self is replicas[0].
func IsEventualMaster(l *LockedRecord, self NodeID) bool {
	return FindSelfIndex(l, self) == 0
}

// IsProle reports whether self is a replica other than the eventual master.
func IsProle(l *LockedRecord, self NodeID) bool {
	return FindSelfIndex(l, self) > 0
}

// IsActingMaster reports whether self is emigrating data as the acting
// master for a partition whose eventual master is elsewhere.
func IsActingMaster(l *LockedRecord) bool {
	return l.Rec().Target != NoNode
}

// IsWorkingMaster reports whether self currently serves writes for this
// partition: either it is the eventual master and nothing elsewhere is
// acting for it, or it is explicitly the acting master.
func IsWorkingMaster(l *LockedRecord, self NodeID) bool {
	if IsEventualMaster(l, self) && l.Rec().Origin == NoNode {
		return true
	}
	return IsActingMaster(l)
}

// BestNode resolves "who should handle this partition?" per spec.md §4.2.
func BestNode(l *LockedRecord, self NodeID, isRead bool) NodeID {
	p := l.Rec()
	if IsWorkingMaster(l, self) {
		return self
	}
	if IsEventualMaster(l, self) {
		return p.Origin
	}
	if isRead && IsProle(l, self) && p.Origin == NoNode {
		return self
	}
	if len(p.Replicas) > 0 {
		return p.Replicas[0]
	}
	return NoNode
}

// ReplicaSelfIndex computes the role index self plays for the client
// replica map (spec.md §4.2): 0 for the working master, the replica index
// for a non-immigrating prole bounded by replicationFactor, or -1 for
// anything else. The replicationFactor bound keeps a dying replica (whose
// transient Replicas slice may be longer than the configured factor during
// a rebalance) from advertising itself.
func ReplicaSelfIndex(l *LockedRecord, self NodeID, replicationFactor int) int {
	if IsWorkingMaster(l, self) {
		return 0
	}
	p := l.Rec()
	idx := FindSelfIndex(l, self)
	if idx > 0 && p.Origin == NoNode && idx < replicationFactor {
		return idx
	}
	return -1
}

// StateChar returns the single-character observable state code of
// spec.md §4.2/§6.4, dispatching on the process-wide version encoding.
func StateChar(l *LockedRecord, self NodeID, enc version.Encoding) byte {
	p := l.Rec()
	if enc == version.Legacy {
		return p.State.Char()
	}
	if FindSelfIndex(l, self) >= 0 {
		if p.PendingImmigrations == 0 {
			return 'S'
		}
		return 'D'
	}
	if p.Version.IsNull() {
		return 'A'
	}
	return 'Z'
}
