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

// Package clusterslot routes raw commands to the sinker that owns the
// destination cluster node, deriving node identity from the sinker's own
// ID() the first time it is consulted.
package clusterslot

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/dtqueue"
	"github.com/cockroachdb/dtcore/internal/parallel"
	"github.com/cockroachdb/dtcore/internal/redisslot"
	"github.com/cockroachdb/dtcore/internal/sink"
)

// ErrMixedSlot is returned when a single command's keys hash to more than
// one cluster slot, which Redis Cluster itself would refuse to execute.
var ErrMixedSlot = errors.New("redis cluster command keys span more than one slot")

// Parallelizer dispatches raw commands to sinkers by the cluster slot
// their key(s) hash to. SlotNode maps a slot to the address of the node
// that owns it; the mapping from node address to sinker index is bound
// lazily, once, on the first Sink call, by asking each sinker its ID().
// Calls into each sinker are serialized by a per-sinker mutex.
type Parallelizer struct {
	SlotNode map[uint16]string

	bindOnce     sync.Once
	nodeSinkerMu sync.Mutex
	nodeSinker   map[string]int
	sinkerMu     []sync.Mutex
}

var _ parallel.Parallelizer = (*Parallelizer)(nil)

// Drain pops whatever is immediately available off queue; cluster-slot
// dispatch has no additional batching boundary of its own.
func (p *Parallelizer) Drain(ctx context.Context, queue *dtqueue.Queue) ([]cdctype.DtItem, error) {
	first, err := queue.Pop(ctx)
	if err != nil {
		return nil, err
	}
	items := []cdctype.DtItem{first}
	items = append(items, parallel.DrainAvailable(queue, math.MaxInt32)...)
	return items, nil
}

// Sink fans items out to the sinker bound to each item's destination
// node. Keyless commands (e.g. a database-swap admin command) fan out to
// every sinker so every node observes them.
func (p *Parallelizer) Sink(ctx context.Context, items []cdctype.DtItem, sinkers []sink.Sinker) error {
	if len(p.SlotNode) == 0 {
		return dispatchOne(ctx, sinkers, items)
	}

	p.bindOnce.Do(func() {
		p.nodeSinker = make(map[string]int, len(sinkers))
		p.sinkerMu = make([]sync.Mutex, len(sinkers))
		for i, s := range sinkers {
			p.nodeSinker[s.ID()] = i
		}
	})

	nodeData := make([][]cdctype.DtItem, len(sinkers))
	for _, item := range items {
		slots, err := p.slotsFor(item)
		if err != nil {
			return err
		}

		if len(slots) == 0 {
			for i := range nodeData {
				nodeData[i] = append(nodeData[i], item)
			}
			continue
		}

		node, ok := p.SlotNode[slots[0]]
		if !ok {
			return errors.Errorf("clusterslot: no node owns slot %d", slots[0])
		}
		idx, ok := p.nodeSinker[node]
		if !ok {
			return errors.Errorf("clusterslot: no sinker bound to node %q", node)
		}
		nodeData[idx] = append(nodeData[idx], item)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, data := range nodeData {
		if len(data) == 0 {
			continue
		}
		i, data := i, data
		g.Go(func() error {
			p.sinkerMu[i].Lock()
			defer p.sinkerMu[i].Unlock()
			return sinkers[i].SinkRaw(gctx, data, false)
		})
	}
	return g.Wait()
}

func (p *Parallelizer) slotsFor(item cdctype.DtItem) ([]uint16, error) {
	keys := item.Data.RawKeys
	if len(keys) == 0 {
		return nil, nil
	}
	slots := make([]uint16, len(keys))
	for i, k := range keys {
		slots[i] = redisslot.Slot(k)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] != slots[0] {
			return nil, ErrMixedSlot
		}
	}
	return slots, nil
}

func dispatchOne(ctx context.Context, sinkers []sink.Sinker, items []cdctype.DtItem) error {
	if len(sinkers) == 0 {
		return errors.New("clusterslot: no sinkers configured")
	}
	return sinkers[0].SinkRaw(ctx, items, false)
}
