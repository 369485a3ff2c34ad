package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomstate/corekv/config"
	"github.com/atomstate/corekv/info"
	"github.com/atomstate/corekv/partition"
)

const (
	nodeA partition.NodeID = 0x1111
	nodeB partition.NodeID = 0x2222
)

func testConfig() *config.NamespaceConfig {
	return &config.NamespaceConfig{
		Name:                 "test",
		NPartitions:          8,
		ReplicationFactor:    2,
		CfgReplicationFactor: 2,
		NewClustering:        true,
	}
}

func TestNew_AndInitAll(t *testing.T) {
	ns := New(testConfig(), nodeA, nil)
	require.NoError(t, ns.InitAll(false))
	assert.Equal(t, 8, ns.Table.Len())
	for pid := 0; pid < 8; pid++ {
		assert.NotNil(t, ns.Table.Record(pid))
	}
}

func TestRebuildReplicaMaps_ReflectsMasterAndProle(t *testing.T) {
	ns := New(testConfig(), nodeA, nil)
	require.NoError(t, ns.InitAll(false))

	ns.Table.Record(0).Replicas = []partition.NodeID{nodeA, nodeB} // master
	ns.Table.Record(1).Replicas = []partition.NodeID{nodeB, nodeA} // prole

	ns.RebuildReplicaMaps()
	assert.True(t, ns.Replicas.IsPartitionQueryable(0))
	assert.False(t, ns.Replicas.IsPartitionQueryable(1))
}

type recordingListener struct {
	calls []uint64
}

func (r *recordingListener) OnClusterKeyChanged(ns string, newKey uint64) {
	r.calls = append(r.calls, newKey)
}

func TestOnClusterKeyChanged_RebuildsAndNotifies(t *testing.T) {
	ns := New(testConfig(), nodeA, nil)
	require.NoError(t, ns.InitAll(false))
	ns.Table.Record(2).Replicas = []partition.NodeID{nodeA}

	listener := &recordingListener{}
	ns.AddClusterKeyListener(listener)

	ns.OnClusterKeyChanged("test", 42)
	assert.True(t, ns.Replicas.IsPartitionQueryable(2))
	assert.Equal(t, []uint64{42}, listener.calls)
}

func TestAddClusterKeyListener_RejectsNonConformant(t *testing.T) {
	ns := New(testConfig(), nodeA, nil)
	ns.AddClusterKeyListener("not a listener")
	ns.OnClusterKeyChanged("test", 1) // must not panic
}

func TestView_MatchesConfig(t *testing.T) {
	ns := New(testConfig(), nodeA, nil)
	v := ns.View()
	assert.Equal(t, "test", v.Name)
	assert.Equal(t, 2, v.ReplicationFactor)
	assert.IsType(t, info.Namespace{}, v)
}
