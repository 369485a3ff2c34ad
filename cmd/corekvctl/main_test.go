package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ns.yaml")
	content := `
name: test
n_partitions: 8
replication_factor: 2
cfg_replication_factor: 2
new_clustering: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_MasterMap(t *testing.T) {
	path := writeConfig(t)
	var buf bytes.Buffer
	err := run([]string{"master-map", "-config", path}, &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "test:"))
}

func TestRun_ReplicaMap(t *testing.T) {
	path := writeConfig(t)
	var buf bytes.Buffer
	err := run([]string{"replica-map", "-config", path}, &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "test:2,"))
}

func TestRun_PartitionInfo(t *testing.T) {
	path := writeConfig(t)
	var buf bytes.Buffer
	err := run([]string{"partition-info", "-config", path}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "namespace:partition:state:replica")
}

func TestRun_ReplicaStats(t *testing.T) {
	path := writeConfig(t)
	var buf bytes.Buffer
	err := run([]string{"replica-stats", "-config", path}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "NMasterObjects")
}

func TestRun_MissingConfigFlag(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{"master-map", "-self", "1"}, &buf)
	assert.Error(t, err)
}

func TestRun_UnknownSubcommand(t *testing.T) {
	path := writeConfig(t)
	var buf bytes.Buffer
	err := run([]string{"bogus", "-config", path}, &buf)
	assert.Error(t, err)
}

func TestRun_TooFewArgs(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{"master-map"}, &buf)
	assert.Error(t, err)
	err = run(nil, &buf)
	assert.Error(t, err)
}
