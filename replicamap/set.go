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

package replicamap

// Set is the per-namespace collection of replica maps, one per replica
// index 0..cfgReplicationFactor-1 (spec.md §4.4). Index 0 is the master
// map; higher indices expose prole roles.
type Set struct {
	Maps        []*Map
	nPartitions int
}

// NewSet allocates and zeroes all maps for a namespace.
func NewSet(cfgReplicationFactor, nPartitions int) *Set {
	maps := make([]*Map, cfgReplicationFactor)
	for i := range maps {
		maps[i] = newMap(nPartitions)
	}
	return &Set{Maps: maps, nPartitions: nPartitions}
}

// Clear zeroes all bitmaps and re-encodes them; used on cluster-key
// change before rebalance replays partition ownership (spec.md §4.4/§6.1).
func (s *Set) Clear() {
	for _, m := range s.Maps {
		m.clear()
	}
}

// Update recomputes ownership for pid given the replica index self plays
// for it (partition.ReplicaSelfIndex, or -1 for "not a replica"), flipping
// exactly the maps whose bit disagrees. Returns true if any bit changed.
func (s *Set) Update(pid int, replicaSelfIndex int) bool {
	changed := false
	for i, m := range s.Maps {
		owned := replicaSelfIndex == i
		if m.setBit(pid, owned) {
			changed = true
		}
	}
	return changed
}

// IsPartitionQueryable reads the master map's bit for pid, lock-free.
func (s *Set) IsPartitionQueryable(pid int) bool {
	if len(s.Maps) == 0 {
		return false
	}
	return s.Maps[0].isSet(pid)
}

// MasterB64 returns the master map's current Base64 encoding.
func (s *Set) MasterB64() string {
	if len(s.Maps) == 0 {
		return ""
	}
	return s.Maps[0].B64()
}
