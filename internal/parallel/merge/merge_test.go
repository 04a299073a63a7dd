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

package merge

import (
	"context"
	"testing"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/dtqueue"
	"github.com/cockroachdb/dtcore/internal/sink"
)

type recordingSinker struct {
	received []cdctype.DtItem
}

func (r *recordingSinker) SinkDML(ctx context.Context, items []cdctype.DtItem) error {
	r.received = append(r.received, items...)
	return nil
}
func (r *recordingSinker) SinkRaw(ctx context.Context, items []cdctype.DtItem, serial bool) error {
	return nil
}
func (r *recordingSinker) Close() error { return nil }
func (r *recordingSinker) ID() string   { return "only" }

func TestDrainReturnsEverythingBuffered(t *testing.T) {
	q := dtqueue.New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = q.Push(ctx, cdctype.DtItem{Data: cdctype.DtData{Kind: cdctype.KindCommit}})
	}

	var p Parallelizer
	items, err := p.Drain(ctx, q)
	if err != nil {
		t.Fatalf("Drain returned error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("len(items) = %d, want 5", len(items))
	}
}

func TestSinkDeliversWholeBatchToSoleSinker(t *testing.T) {
	var p Parallelizer
	s := &recordingSinker{}
	items := []cdctype.DtItem{{}, {}, {}}
	if err := p.Sink(context.Background(), items, []sink.Sinker{s}); err != nil {
		t.Fatalf("Sink returned error: %v", err)
	}
	if len(s.received) != 3 {
		t.Fatalf("len(s.received) = %d, want 3", len(s.received))
	}
}

func TestSinkRejectsMultipleSinkers(t *testing.T) {
	var p Parallelizer
	s1, s2 := &recordingSinker{}, &recordingSinker{}
	err := p.Sink(context.Background(), nil, []sink.Sinker{s1, s2})
	if err == nil {
		t.Fatal("expected an error when more than one sinker is configured for merge")
	}
}
