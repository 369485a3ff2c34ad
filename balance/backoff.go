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

package balance

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Backoff is a jittered exponential backoff for the scripted migration
// retries a Driver performs between scripted Apply attempts. The core
// itself never retries (spec.md §7); this lives entirely on the
// external-contract side of that boundary.
type Backoff struct {
	initialInterval int64
	multiplier      int64
	maxInterval     int64
	jitter          float64
	expMax          float64
	rng             *rand.Rand
}

// NewBackoff builds a Backoff. initialInterval and maxInterval are in
// milliseconds; multiplier must exceed 1; jitter must be non-negative.
func NewBackoff(initialInterval, multiplier, maxInterval int64, jitter float64) (*Backoff, error) {
	if initialInterval <= 0 {
		return nil, errors.New("initialInterval must be greater than 0")
	}
	if multiplier <= 1 {
		return nil, errors.New("multiplier must be greater than 1")
	}
	if maxInterval < initialInterval {
		return nil, errors.New("maxInterval must be greater than or equal to initialInterval")
	}
	if jitter < 0 {
		return nil, errors.New("jitter must be non-negative")
	}

	expMax := float64(0)
	if maxInterval > initialInterval {
		expMax = math.Log(float64(maxInterval)/float64(initialInterval)) / math.Log(float64(multiplier))
	}

	return &Backoff{
		initialInterval: initialInterval,
		multiplier:      multiplier,
		maxInterval:     maxInterval,
		jitter:          jitter,
		expMax:          expMax,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Wait returns the interval to sleep before attempt number attempts.
func (b *Backoff) Wait(attempts int64) time.Duration {
	if b.expMax == 0 {
		return time.Duration(b.initialInterval) * time.Millisecond
	}

	exp := math.Min(float64(attempts), b.expMax)
	term := float64(b.initialInterval) * math.Pow(float64(b.multiplier), exp)

	randomFactor := 1.0
	if b.jitter > 0 {
		randomFactor = 1.0 + (2.0*b.rng.Float64()-1.0)*b.jitter
	}
	if randomFactor < 1.0 {
		randomFactor = 1.0
	}

	ms := int64(randomFactor * term)
	if ms > b.maxInterval {
		ms = b.maxInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// String describes the Backoff's parameters, matching the teacher's
// diagnostic String() style.
func (b *Backoff) String() string {
	return fmt.Sprintf("Backoff{multiplier=%d, expMax=%f, initialInterval=%d, jitter=%f}",
		b.multiplier, b.expMax, b.initialInterval, b.jitter)
}
