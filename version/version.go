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

// Package version models the dual legacy/modern encoding of a partition's
// data version described in the core's design notes: new deployments carry
// an opaque modern version tag, while older ones carry a legacy three-field
// tuple (instance id, and two version-tracking-protocol components).
package version

import "fmt"

// Encoding selects which arm of Version is authoritative. It is a
// process-wide choice, mirroring the core's IsNewClustering predicate.
type Encoding int

const (
	// Legacy selects the {IID, VTP0, VTP1} triple and the State enum.
	Legacy Encoding = iota
	// Modern selects the opaque Version/FinalVersion tag.
	Modern
)

// LegacyState is the legacy per-partition state enum, used only when the
// process-wide encoding is Legacy.
type LegacyState byte

const (
	// Undef means the partition has never been initialized.
	Undef LegacyState = iota
	// Sync means this node is caught up with the working master.
	Sync
	// Desync means this node has data but is not caught up.
	Desync
	// Zombie means this node has stale data that must not be preferred.
	Zombie
	// Absent means this node holds no data for the partition.
	Absent
)

// Char returns the single-character code used in the legacy state_char
// observable surface (spec.md §4.2): U, S, D, Z, A.
func (s LegacyState) Char() byte {
	switch s {
	case Undef:
		return 'U'
	case Sync:
		return 'S'
	case Desync:
		return 'D'
	case Zombie:
		return 'Z'
	case Absent:
		return 'A'
	default:
		return '?'
	}
}

// Version is a tagged variant: a null version means "absent/no data". In
// Modern encoding, only Opaque is meaningful; in Legacy encoding, IID/VTP0/
// VTP1 compose the opaque triple and Opaque is unused.
type Version struct {
	null   bool
	Opaque uint64 // modern arm: an opaque monotonic tag

	IID  uint64 // legacy arm: instance id
	VTP0 uint64 // legacy arm: version-tracking-protocol component 0
	VTP1 uint64 // legacy arm: version-tracking-protocol component 1
}

// Null is the canonical "no data" version value.
var Null = Version{null: true}

// NewModern builds a non-null modern version tag.
func NewModern(opaque uint64) Version {
	return Version{Opaque: opaque}
}

// NewLegacy builds a non-null legacy version triple.
func NewLegacy(iid, vtp0, vtp1 uint64) Version {
	return Version{IID: iid, VTP0: vtp0, VTP1: vtp1}
}

// IsNull reports whether this version represents "no data".
func (v Version) IsNull() bool {
	return v.null
}

// String renders the version per spec.md §6.4: in Modern encoding the
// opaque tag as a hex string; in Legacy encoding "<iid-hex>-<vtp0-hex>-<vtp1-hex>".
func (v Version) String(enc Encoding) string {
	if v.null {
		return "null"
	}
	if enc == Modern {
		return fmt.Sprintf("%x", v.Opaque)
	}
	return fmt.Sprintf("%x-%x-%x", v.IID, v.VTP0, v.VTP1)
}
