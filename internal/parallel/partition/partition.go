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

// Package partition shards row events across N buckets by hashing each
// row's partitionable key, preserving per-bucket order while giving up
// any ordering guarantee across buckets.
package partition

import (
	"context"
	"hash/fnv"

	"golang.org/x/sync/errgroup"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/dtqueue"
	"github.com/cockroachdb/dtcore/internal/meta"
	"github.com/cockroachdb/dtcore/internal/parallel"
	"github.com/cockroachdb/dtcore/internal/sink"
)

// Partitioner decides whether a row can be sharded at all, and assigns
// already-accumulated items to buckets.
type Partitioner interface {
	// CanBePartitioned reports whether evt carries a key this
	// Partitioner can hash, e.g. a resolvable primary key.
	CanBePartitioned(ctx context.Context, evt *cdctype.RowEvent) (bool, error)

	// Partition splits items into exactly n buckets. Commit markers are
	// duplicated into every bucket so each downstream sinker observes
	// its own commit boundary.
	Partition(ctx context.Context, items []cdctype.DtItem, n int) ([][]cdctype.DtItem, error)
}

// HashPartitioner buckets rows by an FNV hash of their primary-key tuple,
// resolved through a meta.Manager, falling back to "cannot be
// partitioned" when no primary key is known for the row's table.
type HashPartitioner struct {
	Meta meta.Manager
}

var _ Partitioner = (*HashPartitioner)(nil)

// CanBePartitioned reports whether evt's table has a known primary key.
func (h *HashPartitioner) CanBePartitioned(ctx context.Context, evt *cdctype.RowEvent) (bool, error) {
	tm, err := h.Meta.GetTableMeta(ctx, evt.Schema, evt.Table)
	if err != nil {
		return false, err
	}
	return len(tm.KeyMap["primary"]) > 0, nil
}

// Partition hashes each row's primary-key tuple into one of n buckets.
func (h *HashPartitioner) Partition(ctx context.Context, items []cdctype.DtItem, n int) ([][]cdctype.DtItem, error) {
	buckets := make([][]cdctype.DtItem, n)
	for _, item := range items {
		if item.Data.Kind == cdctype.KindCommit {
			for i := range buckets {
				buckets[i] = append(buckets[i], item)
			}
			continue
		}
		if item.Data.Kind != cdctype.KindDml {
			buckets[0] = append(buckets[0], item)
			continue
		}

		evt := item.Data.Row
		tm, err := h.Meta.GetTableMeta(ctx, evt.Schema, evt.Table)
		if err != nil {
			return nil, err
		}
		bucket := hashRow(evt, tm.KeyMap["primary"]) % uint32(n)
		buckets[bucket] = append(buckets[bucket], item)
	}
	return buckets, nil
}

func hashRow(evt *cdctype.RowEvent, pk []string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(evt.Schema))
	h.Write([]byte{0})
	h.Write([]byte(evt.Table))
	src := evt.After
	if evt.Kind == cdctype.Delete {
		src = evt.Before
	}
	for _, col := range pk {
		h.Write([]byte{0})
		v, _ := src[col].MarshalJSON()
		h.Write(v)
	}
	return h.Sum32()
}

// Parallelizer is the row-partition sharding strategy: within a bucket,
// source ordering is preserved; across buckets there is no ordering
// guarantee.
type Parallelizer struct {
	Partitioner  Partitioner
	ParallelSize int
}

var _ parallel.Parallelizer = (*Parallelizer)(nil)

// Drain accumulates Dml items off queue, stopping (after including) the
// first item whose row cannot be partitioned — the boundary at which a
// downstream hash-based fan-out would no longer be meaningful. Commit
// markers are always included. Items of any other kind (DDL, raw) are
// popped off the queue and discarded: they are not part of the returned
// batch.
func (p *Parallelizer) Drain(ctx context.Context, queue *dtqueue.Queue) ([]cdctype.DtItem, error) {
	first, err := queue.Pop(ctx)
	if err != nil {
		return nil, err
	}

	var items []cdctype.DtItem
	item := first
	for {
		switch item.Data.Kind {
		case cdctype.KindDml:
			if p.ParallelSize > 1 {
				can, err := p.Partitioner.CanBePartitioned(ctx, item.Data.Row)
				if err != nil {
					return nil, err
				}
				if !can {
					items = append(items, item)
					return items, nil
				}
			}
			items = append(items, item)
		case cdctype.KindCommit:
			items = append(items, item)
		}

		next, ok := queue.TryPop()
		if !ok {
			return items, nil
		}
		item = next
	}
}

// Sink partitions items into ParallelSize (== len(sinkers)) buckets and
// dispatches each bucket to its corresponding sinker concurrently.
func (p *Parallelizer) Sink(ctx context.Context, items []cdctype.DtItem, sinkers []sink.Sinker) error {
	buckets, err := p.Partitioner.Partition(ctx, items, len(sinkers))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		i, bucket := i, bucket
		g.Go(func() error {
			return sinkers[i].SinkDML(gctx, bucket)
		})
	}
	return g.Wait()
}
