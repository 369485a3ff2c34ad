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

// Package config loads per-namespace configuration for the partition core.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atomstate/corekv/errs"
	"github.com/atomstate/corekv/version"
)

// NamespaceConfig is the on-disk configuration for one namespace.
type NamespaceConfig struct {
	Name                 string `yaml:"name"`
	NPartitions          int    `yaml:"n_partitions"`
	ReplicationFactor    int    `yaml:"replication_factor"`
	CfgReplicationFactor int    `yaml:"cfg_replication_factor"`
	LDTEnabled           bool   `yaml:"ldt_enabled"`
	NewClustering        bool   `yaml:"new_clustering"`
}

// Encoding reports the version encoding this namespace should run with,
// derived from NewClustering (spec.md §6.1's is_new_clustering predicate).
func (c *NamespaceConfig) Encoding() version.Encoding {
	if c.NewClustering {
		return version.Modern
	}
	return version.Legacy
}

// Validate checks the loaded configuration for internally consistent,
// non-nonsensical values, returning errs.InvalidConfig on failure — the
// same explicit range-check-over-panic style the teacher's resource
// constructors use.
func (c *NamespaceConfig) Validate() error {
	if c.Name == "" {
		return errs.New(errs.InvalidConfig, "name must not be empty")
	}
	if c.NPartitions <= 0 {
		return errs.New(errs.InvalidConfig, "n_partitions must be greater than 0")
	}
	if c.ReplicationFactor <= 0 {
		return errs.New(errs.InvalidConfig, "replication_factor must be greater than 0")
	}
	if c.CfgReplicationFactor <= 0 {
		return errs.New(errs.InvalidConfig, "cfg_replication_factor must be greater than 0")
	}
	if c.CfgReplicationFactor < c.ReplicationFactor {
		return errs.New(errs.InvalidConfig, "cfg_replication_factor must be at least replication_factor")
	}
	return nil
}

// Load reads and validates a NamespaceConfig from a YAML file at path.
func Load(path string) (*NamespaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg NamespaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, "parsing config "+path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
