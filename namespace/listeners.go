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

package namespace

import (
	"sync"

	"go.uber.org/zap"
)

// ClusterKeyListener receives notifications when a namespace's cluster key
// changes, the Go-domain analogue of the teacher's ClusterResourceListener
// (pkg/internals/cluster_resource_listeners.go), adapted from
// "cluster metadata updated" to "cluster key changed" per CLUSTER-CONTRACT
// (spec.md §6.1).
type ClusterKeyListener interface {
	OnClusterKeyChanged(ns string, newKey uint64)
}

// ClusterKeyListeners manages a registered set of ClusterKeyListener and
// broadcasts to all of them, exactly mirroring the teacher's
// ClusterResourceListeners broadcast pattern.
type ClusterKeyListeners struct {
	mu        sync.RWMutex
	listeners []ClusterKeyListener
	logger    *zap.Logger
}

// NewClusterKeyListeners creates an empty listener set.
func NewClusterKeyListeners(logger *zap.Logger) *ClusterKeyListeners {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClusterKeyListeners{logger: logger}
}

// MaybeAdd registers candidate if it implements ClusterKeyListener,
// otherwise logs a warning and does nothing.
func (c *ClusterKeyListeners) MaybeAdd(candidate interface{}) {
	listener, ok := candidate.(ClusterKeyListener)
	if !ok {
		c.logger.Warn("candidate does not implement ClusterKeyListener", zap.Any("candidate", candidate))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// MaybeAddAll registers every candidate that implements ClusterKeyListener.
func (c *ClusterKeyListeners) MaybeAddAll(candidates []interface{}) {
	valid := make([]ClusterKeyListener, 0, len(candidates))
	for _, candidate := range candidates {
		listener, ok := candidate.(ClusterKeyListener)
		if !ok {
			c.logger.Warn("candidate does not implement ClusterKeyListener", zap.Any("candidate", candidate))
			continue
		}
		valid = append(valid, listener)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, valid...)
}

// Notify broadcasts a cluster-key change to every registered listener.
func (c *ClusterKeyListeners) Notify(ns string, newKey uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.listeners {
		l.OnClusterKeyChanged(ns, newKey)
	}
}
