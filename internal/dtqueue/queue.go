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

// Package dtqueue is the bounded, multi-producer/multi-consumer queue that
// sits between extractors and parallelizers, providing backpressure when
// downstream sinks fall behind.
package dtqueue

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/dtcore/internal/cdctype"
)

// Option configures a Queue at construction time, following the
// functional-options shape used throughout this module's resource
// constructors.
type Option func(*Queue)

// WithCapacity sets the queue's item capacity. The default is 16384.
func WithCapacity(n int) Option {
	return func(q *Queue) { q.capacity = n }
}

// Queue is a bounded channel-backed buffer of cdctype.DtItem. Push blocks
// when the queue is full; Pop blocks when it is empty. Both respect
// context cancellation so a shutting-down pipeline doesn't leak goroutines
// parked on a full or empty queue.
type Queue struct {
	capacity int
	items    chan cdctype.DtItem

	recordCount atomic.Int64
	byteCount   atomic.Int64
}

// New constructs a Queue, applying opts over the default 16384-item
// capacity.
func New(opts ...Option) *Queue {
	q := &Queue{capacity: 16384}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan cdctype.DtItem, q.capacity)
	return q
}

// Push enqueues item, blocking while the queue is full. Returns
// ctx.Err() if ctx is canceled first.
func (q *Queue) Push(ctx context.Context, item cdctype.DtItem) error {
	select {
	case q.items <- item:
		q.recordCount.Add(1)
		q.byteCount.Add(int64(itemSize(item)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next item, blocking while the queue is empty. Returns
// ctx.Err() if ctx is canceled first.
func (q *Queue) Pop(ctx context.Context) (cdctype.DtItem, error) {
	select {
	case item := <-q.items:
		q.recordCount.Add(-1)
		q.byteCount.Add(-int64(itemSize(item)))
		return item, nil
	case <-ctx.Done():
		var zero cdctype.DtItem
		return zero, ctx.Err()
	}
}

// TryPop dequeues the next item without blocking, reporting false if the
// queue was empty. Used by Drain loops that want to batch whatever is
// already available rather than wait for more.
func (q *Queue) TryPop() (cdctype.DtItem, bool) {
	select {
	case item := <-q.items:
		q.recordCount.Add(-1)
		q.byteCount.Add(-int64(itemSize(item)))
		return item, true
	default:
		var zero cdctype.DtItem
		return zero, false
	}
}

// Len returns the current number of queued records.
func (q *Queue) Len() int64 { return q.recordCount.Load() }

// Bytes returns the current approximate byte footprint of queued records.
func (q *Queue) Bytes() int64 { return q.byteCount.Load() }

// Cap returns the queue's configured capacity.
func (q *Queue) Cap() int { return q.capacity }

func itemSize(item cdctype.DtItem) int {
	if item.Data.Row != nil {
		return item.Data.Row.Size
	}
	return len(item.Data.RawPayload)
}
