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

// Package merge is the single-bucket pass-through strategy, used when the
// sinker itself serializes concurrent deliveries (or there is exactly one
// sinker and sharding would add nothing).
package merge

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/dtqueue"
	"github.com/cockroachdb/dtcore/internal/parallel"
	"github.com/cockroachdb/dtcore/internal/sink"
)

// Parallelizer hands every drained item to a single sinker, in order.
type Parallelizer struct{}

var _ parallel.Parallelizer = (*Parallelizer)(nil)

// Drain pops everything immediately available off queue.
func (Parallelizer) Drain(ctx context.Context, queue *dtqueue.Queue) ([]cdctype.DtItem, error) {
	first, err := queue.Pop(ctx)
	if err != nil {
		return nil, err
	}
	items := []cdctype.DtItem{first}
	items = append(items, parallel.DrainAvailable(queue, math.MaxInt32)...)
	return items, nil
}

// Sink delivers the whole batch to sinkers[0]. Exactly one sinker is
// expected; passing more is a configuration error since merge performs
// no sharding.
func (Parallelizer) Sink(ctx context.Context, items []cdctype.DtItem, sinkers []sink.Sinker) error {
	if len(sinkers) != 1 {
		return errors.Errorf("merge: expected exactly one sinker, got %d", len(sinkers))
	}
	return sinkers[0].SinkDML(ctx, items)
}
