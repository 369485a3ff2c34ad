package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atomstate/corekv/version"
)

const (
	nodeA NodeID = 0x1111
	nodeB NodeID = 0x2222
	nodeC NodeID = 0x3333
)

func withLock(r *Record, f func(l *LockedRecord)) {
	l := r.Lock()
	defer l.Unlock()
	f(l)
}

// TestScenario1_MasterOnSelf matches spec.md §8 scenario 1.
func TestScenario1_MasterOnSelf(t *testing.T) {
	r := &Record{Replicas: []NodeID{nodeA, nodeB}}
	withLock(r, func(l *LockedRecord) {
		assert.Equal(t, nodeA, BestNode(l, nodeA, false))
		assert.True(t, IsWorkingMaster(l, nodeA))
		assert.Equal(t, byte('S'), StateChar(l, nodeA, version.Modern))
	})
}

// TestScenario2_EventualMasterActingElsewhere matches spec.md §8 scenario 2.
func TestScenario2_EventualMasterActingElsewhere(t *testing.T) {
	r := &Record{Replicas: []NodeID{nodeA, nodeB}, Origin: nodeB, PendingImmigrations: 1}
	withLock(r, func(l *LockedRecord) {
		assert.Equal(t, nodeB, BestNode(l, nodeA, true))
		assert.Equal(t, byte('D'), StateChar(l, nodeA, version.Modern))
		assert.Equal(t, -1, ReplicaSelfIndex(l, nodeA, 2))
	})
}

// TestScenario3_ActingMaster matches spec.md §8 scenario 3.
func TestScenario3_ActingMaster(t *testing.T) {
	r := &Record{Replicas: []NodeID{nodeB, nodeA}, Target: nodeB}
	withLock(r, func(l *LockedRecord) {
		assert.True(t, IsWorkingMaster(l, nodeA))
		assert.Equal(t, nodeA, BestNode(l, nodeA, false))
		assert.Equal(t, 1, FindSelfIndex(l, nodeA))
		assert.Equal(t, 0, ReplicaSelfIndex(l, nodeA, 2))
	})
}

// TestScenario4_ProleNotImmigrating matches spec.md §8 scenario 4.
func TestScenario4_ProleNotImmigrating(t *testing.T) {
	r := &Record{Replicas: []NodeID{nodeB, nodeA}}
	withLock(r, func(l *LockedRecord) {
		assert.Equal(t, nodeA, BestNode(l, nodeA, true))
		assert.Equal(t, nodeB, BestNode(l, nodeA, false))
	})
}

// TestScenario5_NonReplica matches spec.md §8 scenario 5.
func TestScenario5_NonReplica(t *testing.T) {
	r := &Record{Replicas: []NodeID{nodeB, nodeC}, Version: version.Null}
	withLock(r, func(l *LockedRecord) {
		assert.Equal(t, nodeB, BestNode(l, nodeA, true))
		assert.Equal(t, nodeB, BestNode(l, nodeA, false))
		assert.Equal(t, -1, FindSelfIndex(l, nodeA))
	})
}

func TestIsEventualMaster_IsProle_Exclusive(t *testing.T) {
	cases := []struct {
		name     string
		replicas []NodeID
	}{
		{"master", []NodeID{nodeA, nodeB}},
		{"prole", []NodeID{nodeB, nodeA}},
		{"non-replica", []NodeID{nodeB, nodeC}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Record{Replicas: tc.replicas}
			withLock(r, func(l *LockedRecord) {
				master := IsEventualMaster(l, nodeA)
				prole := IsProle(l, nodeA)
				assert.False(t, master && prole, "master and prole must be mutually exclusive")
			})
		})
	}
}

func TestStateChar_Legacy(t *testing.T) {
	r := &Record{State: version.Desync}
	withLock(r, func(l *LockedRecord) {
		assert.Equal(t, byte('D'), StateChar(l, nodeA, version.Legacy))
	})
}

func TestReplicaSelfIndex_BoundedByReplicationFactor(t *testing.T) {
	// self is a prole at index 2, but replicationFactor is 2: must not
	// advertise, per spec.md §4.2's rationale about a dying replica.
	r := &Record{Replicas: []NodeID{nodeB, nodeC, nodeA}}
	withLock(r, func(l *LockedRecord) {
		assert.Equal(t, 2, FindSelfIndex(l, nodeA))
		assert.Equal(t, -1, ReplicaSelfIndex(l, nodeA, 2))
	})
}
