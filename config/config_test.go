package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomstate/corekv/errs"
	"github.com/atomstate/corekv/version"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeTemp(t, `
name: test
n_partitions: 4096
replication_factor: 2
cfg_replication_factor: 3
ldt_enabled: true
new_clustering: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Name)
	assert.Equal(t, 4096, cfg.NPartitions)
	assert.Equal(t, 2, cfg.ReplicationFactor)
	assert.Equal(t, 3, cfg.CfgReplicationFactor)
	assert.True(t, cfg.LDTEnabled)
	assert.Equal(t, version.Modern, cfg.Encoding())
}

func TestLoad_LegacyEncoding(t *testing.T) {
	path := writeTemp(t, `
name: test
n_partitions: 1024
replication_factor: 1
cfg_replication_factor: 1
new_clustering: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, version.Legacy, cfg.Encoding())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "not: [valid: yaml")
	_, err := Load(path)
	assert.True(t, errs.Is(err, errs.InvalidConfig))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  NamespaceConfig
	}{
		{"empty name", NamespaceConfig{NPartitions: 1, ReplicationFactor: 1, CfgReplicationFactor: 1}},
		{"zero partitions", NamespaceConfig{Name: "n", ReplicationFactor: 1, CfgReplicationFactor: 1}},
		{"zero replication", NamespaceConfig{Name: "n", NPartitions: 1, CfgReplicationFactor: 1}},
		{"zero cfg replication", NamespaceConfig{Name: "n", NPartitions: 1, ReplicationFactor: 1}},
		{"cfg below replication", NamespaceConfig{Name: "n", NPartitions: 1, ReplicationFactor: 3, CfgReplicationFactor: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.True(t, errs.Is(err, errs.InvalidConfig))
		})
	}
}
