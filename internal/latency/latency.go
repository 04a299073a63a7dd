// Copyright 2023 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

// Package latency holds a bounded recent-sample ring, shared by every
// sinker to answer "how slow have my last deliveries been" without
// retaining an unbounded history.
package latency

import (
	"sync"
	"time"
)

// MaxSamples bounds how many recent delivery durations a Tracker retains.
const MaxSamples = 100

// Tracker is a fixed-capacity ring buffer of recent delivery durations.
// The zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
}

// Observe records a single delivery duration, evicting the oldest sample
// once the tracker is at capacity.
func (t *Tracker) Observe(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.samples) < MaxSamples {
		t.samples = append(t.samples, d)
		return
	}
	t.samples[t.next] = d
	t.next = (t.next + 1) % MaxSamples
}

// Samples returns a copy of the retained durations, oldest first within
// the current window (not globally ordered once the ring has wrapped).
func (t *Tracker) Samples() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.samples))
	copy(out, t.samples)
	return out
}

// Len reports how many samples are currently retained.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.samples)
}

// Mean returns the arithmetic mean of the retained samples, or zero if
// none have been recorded yet.
func (t *Tracker) Mean() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range t.samples {
		total += s
	}
	return total / time.Duration(len(t.samples))
}
