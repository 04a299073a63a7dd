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

// Package parallel defines the common contract every sharding strategy
// implements: draining a batch off the shared queue and fanning it out
// to a set of sinkers. Concrete strategies live in its subpackages
// (partition, clusterslot, merge).
package parallel

import (
	"context"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/dtqueue"
	"github.com/cockroachdb/dtcore/internal/sink"
)

// Parallelizer shards a drained batch of DtItems across a set of Sinkers.
type Parallelizer interface {
	// Drain pops items off queue until either the queue reports no more
	// items are immediately available or this strategy's own boundary
	// rule says to stop (see partition.Parallelizer for the
	// unpartitionable-item break rule).
	Drain(ctx context.Context, queue *dtqueue.Queue) ([]cdctype.DtItem, error)

	// Sink fans items out across sinkers according to this strategy's
	// sharding rule.
	Sink(ctx context.Context, items []cdctype.DtItem, sinkers []sink.Sinker) error
}

// DrainAvailable pops items off queue with TryPop until it is empty,
// shared by every Parallelizer.Drain implementation that has no
// additional boundary rule of its own.
func DrainAvailable(queue *dtqueue.Queue, limit int) []cdctype.DtItem {
	items := make([]cdctype.DtItem, 0, limit)
	for len(items) < limit {
		item, ok := queue.TryPop()
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items
}
