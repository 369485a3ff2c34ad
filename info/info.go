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

// Package info implements the read-only admin/operator surface (C5): text
// formatters over a namespace's partition table and replica maps
// (spec.md §4.5/§6.4/§6.5). Every formatter walks partitions under their
// own lock and never mutates state.
package info

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomstate/corekv/partition"
	"github.com/atomstate/corekv/replicamap"
	"github.com/atomstate/corekv/version"
)

// Namespace bundles the read-only view a single namespace exposes to the
// info formatters — everything they need to walk partitions and replica
// maps without reaching into namespace wiring internals.
type Namespace struct {
	Name              string
	Table             *partition.Table
	Replicas          *replicamap.Set
	Self              partition.NodeID
	Encoding          version.Encoding
	LDTEnabled        bool
	ReplicationFactor int
}

// joinSemicolon renders one payload per namespace in the
// "<ns>:<payload>;<ns>:<payload>;..." shape of spec.md §6.4, stripping the
// trailing separator.
func joinSemicolon(views []Namespace, payload func(Namespace) string) string {
	var b strings.Builder
	for _, v := range views {
		b.WriteString(v.Name)
		b.WriteByte(':')
		b.WriteString(payload(v))
		b.WriteByte(';')
	}
	s := b.String()
	return strings.TrimSuffix(s, ";")
}

// MasterMapText renders the master map string: "<ns>:<b64map[0]>;...".
func MasterMapText(views []Namespace) string {
	return joinSemicolon(views, func(v Namespace) string {
		return v.Replicas.MasterB64()
	})
}

// AllReplicasMapText renders "<ns>:<replication_factor>,<b64[0]>,<b64[1]>,...;...".
func AllReplicasMapText(views []Namespace) string {
	return joinSemicolon(views, func(v Namespace) string {
		parts := make([]string, 0, len(v.Replicas.Maps)+1)
		parts = append(parts, strconv.Itoa(v.ReplicationFactor))
		for _, m := range v.Replicas.Maps {
			parts = append(parts, m.B64())
		}
		return strings.Join(parts, ",")
	})
}

// ProleMapText synthesizes, per namespace, a bitmap over every initialized
// partition testing "is self the prole for this partition?" and
// Base64-encodes it (spec.md §6.4's legacy prole map). Unlike the
// replica-map Set's maintained bitmaps, this one is computed fresh on
// every call by walking the table under each partition's lock.
func ProleMapText(views []Namespace) string {
	return joinSemicolon(views, func(v Namespace) string {
		m := replicamap.NewSet(1, v.Table.Len()).Maps[0]
		for pid := 0; pid < v.Table.Len(); pid++ {
			rec := v.Table.Record(pid)
			if rec == nil {
				continue
			}
			l := rec.Lock()
			prole := partition.IsProle(l, v.Self)
			l.Unlock()
			if prole {
				m.Set(pid, true)
			}
		}
		return m.B64()
	})
}

const partitionInfoHeader = "namespace:partition:state:replica:n_dupl:origin:target:emigrates:immigrates:records:sub_records:tombstones:ldt_version:version:final_version"

// PartitionInfoRow mirrors the teacher's PartitionInfo struct shape
// (topic/partition/leader/replicas/... translated to partition-state
// fields), including a String() formatter in the teacher's style for
// human-readable dumps alongside the wire format below.
type PartitionInfoRow struct {
	Namespace      string
	Partition      int
	State          byte
	Replica        int
	NDupl          int
	Origin         partition.NodeID
	Target         partition.NodeID
	Emigrates      int
	Immigrates     int
	Records        uint64
	SubRecords     uint64
	Tombstones     int
	// LDTVersion is always empty: the distilled record model carries no
	// separate large-data-type version field, only sub_vp's size. Kept as
	// a column so the wire format's field count matches spec.md §6.4.
	LDTVersion   string
	Version      string
	FinalVersion string
}

// String renders the row in the teacher's human-readable constructor style.
func (r PartitionInfoRow) String() string {
	return fmt.Sprintf(
		"Partition(namespace = %s, partition = %d, state = %c, replica = %d, records = %d)",
		r.Namespace, r.Partition, r.State, r.Replica, r.Records,
	)
}

// Equals reports whether two rows describe the same observable state,
// field by field. Added because the teacher's domain types universally
// carry an Equals helper (Node.Equal, Cluster.Equals, PartitionInfo.Equals).
func (r PartitionInfoRow) Equals(o PartitionInfoRow) bool {
	return r == o
}

func versionText(v version.Version, enc version.Encoding) string {
	return v.String(enc)
}

// buildRow computes one PartitionInfoRow for pid under its partition lock.
func buildRow(v Namespace, pid int) PartitionInfoRow {
	rec := v.Table.Record(pid)
	l := rec.Lock()
	defer l.Unlock()
	p := l.Rec()

	replica := partition.FindSelfIndex(l, v.Self)
	if replica < 0 {
		replica = len(p.Replicas)
	}

	var subRecords uint64
	if v.LDTEnabled && p.SubVP != nil {
		subRecords = p.SubVP.Size()
	}

	return PartitionInfoRow{
		Namespace:    v.Name,
		Partition:    pid,
		State:        partition.StateChar(l, v.Self, v.Encoding),
		Replica:      replica,
		NDupl:        len(p.Dupls),
		Origin:       p.Origin,
		Target:       p.Target,
		Emigrates:    p.PendingEmigrations,
		Immigrates:   p.PendingImmigrations,
		Records:      p.VP.Size(),
		SubRecords:   subRecords,
		Tombstones:   p.NTombstones,
		Version:      versionText(p.Version, v.Encoding),
		FinalVersion: versionText(p.FinalVersion, v.Encoding),
	}
}

// PartitionInfoRows walks every initialized partition of v under its own
// lock and returns one row per partition, in partition-id order.
func PartitionInfoRows(v Namespace) []PartitionInfoRow {
	rows := make([]PartitionInfoRow, 0, v.Table.Len())
	for pid := 0; pid < v.Table.Len(); pid++ {
		if v.Table.Record(pid) == nil {
			continue
		}
		rows = append(rows, buildRow(v, pid))
	}
	return rows
}

// PartitionInfoText renders the header row followed by one row per
// partition across all namespaces, in the exact field order of spec.md
// §6.4, with origin/target printed as hex.
func PartitionInfoText(views []Namespace) string {
	var b strings.Builder
	b.WriteString(partitionInfoHeader)
	b.WriteByte(';')
	for _, v := range views {
		for _, row := range PartitionInfoRows(v) {
			fmt.Fprintf(&b, "%s:%d:%c:%d:%d:%x:%x:%d:%d:%d:%d:%d:%s:%s:%s;",
				row.Namespace, row.Partition, row.State, row.Replica, row.NDupl,
				uint64(row.Origin), uint64(row.Target), row.Emigrates, row.Immigrates,
				row.Records, row.SubRecords, row.Tombstones, row.LDTVersion,
				row.Version, row.FinalVersion)
		}
	}
	return strings.TrimSuffix(b.String(), ";")
}

// ReplicaStats is the aggregate per-namespace replica classification of
// spec.md §6.5.
type ReplicaStats struct {
	NMasterObjects        uint64
	NMasterSubObjects     uint64
	NMasterTombstones     uint64
	NProleObjects         uint64
	NProleSubObjects      uint64
	NProleTombstones      uint64
	NNonReplicaObjects    uint64
	NNonReplicaSubObjects uint64
	NNonReplicaTombstones uint64
}

// GetReplicaStats classifies every initialized partition of v as master,
// prole, or non-replica per spec.md §4.2 and accumulates object/tombstone
// counts, each partition read under its own lock.
func GetReplicaStats(v Namespace) ReplicaStats {
	var stats ReplicaStats
	for pid := 0; pid < v.Table.Len(); pid++ {
		rec := v.Table.Record(pid)
		if rec == nil {
			continue
		}
		l := rec.Lock()
		p := l.Rec()

		objects := p.VP.Size()
		if int(objects) >= p.NTombstones {
			objects -= uint64(p.NTombstones)
		} else {
			objects = 0
		}
		var subObjects uint64
		if v.LDTEnabled && p.SubVP != nil {
			subObjects = p.SubVP.Size()
		}
		tombstones := uint64(p.NTombstones)

		switch {
		case partition.IsWorkingMaster(l, v.Self):
			stats.NMasterObjects += objects
			stats.NMasterSubObjects += subObjects
			stats.NMasterTombstones += tombstones
		case partition.IsProle(l, v.Self):
			stats.NProleObjects += objects
			stats.NProleSubObjects += subObjects
			stats.NProleTombstones += tombstones
		default:
			stats.NNonReplicaObjects += objects
			stats.NNonReplicaSubObjects += subObjects
			stats.NNonReplicaTombstones += tombstones
		}
		l.Unlock()
	}
	return stats
}
