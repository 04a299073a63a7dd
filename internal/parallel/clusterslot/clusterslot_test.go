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

package clusterslot

import (
	"context"
	"errors"
	"testing"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/redisslot"
	"github.com/cockroachdb/dtcore/internal/sink"
)

type recordingSinker struct {
	id       string
	received [][]cdctype.DtItem
}

func (r *recordingSinker) SinkDML(ctx context.Context, items []cdctype.DtItem) error { return nil }
func (r *recordingSinker) SinkRaw(ctx context.Context, items []cdctype.DtItem, serial bool) error {
	r.received = append(r.received, items)
	return nil
}
func (r *recordingSinker) Close() error { return nil }
func (r *recordingSinker) ID() string   { return r.id }

func rawItem(key string) cdctype.DtItem {
	return cdctype.DtItem{Data: cdctype.DtData{Kind: cdctype.KindRaw, RawKeys: []string{key}}}
}

func TestSinkRoutesByBoundNode(t *testing.T) {
	s0 := &recordingSinker{id: "node-a"}
	s1 := &recordingSinker{id: "node-b"}

	keyA, keyB := "foo", "123456789"
	slotA, slotB := redisslot.Slot(keyA), redisslot.Slot(keyB)
	p := &Parallelizer{SlotNode: map[uint16]string{slotA: "node-a", slotB: "node-b"}}

	items := []cdctype.DtItem{rawItem(keyA), rawItem(keyB)}
	if err := p.Sink(context.Background(), items, []sink.Sinker{s0, s1}); err != nil {
		t.Fatalf("Sink returned error: %v", err)
	}
	if len(s0.received) != 1 || len(s0.received[0]) != 1 {
		t.Fatalf("node-a sinker received %v, want one batch of one item", s0.received)
	}
	if len(s1.received) != 1 || len(s1.received[0]) != 1 {
		t.Fatalf("node-b sinker received %v, want one batch of one item", s1.received)
	}
}

func TestSinkFansKeylessCommandToAllSinkers(t *testing.T) {
	s0 := &recordingSinker{id: "node-a"}
	s1 := &recordingSinker{id: "node-b"}
	p := &Parallelizer{SlotNode: map[uint16]string{0: "node-a", 1: "node-b"}}

	items := []cdctype.DtItem{{Data: cdctype.DtData{Kind: cdctype.KindRaw}}}
	if err := p.Sink(context.Background(), items, []sink.Sinker{s0, s1}); err != nil {
		t.Fatalf("Sink returned error: %v", err)
	}
	if len(s0.received) != 1 || len(s1.received) != 1 {
		t.Fatal("expected the keyless command to be fanned out to every sinker")
	}
}

func TestSinkMixedSlotCommandErrors(t *testing.T) {
	p := &Parallelizer{SlotNode: map[uint16]string{0: "node-a"}}
	s0 := &recordingSinker{id: "node-a"}

	item := cdctype.DtItem{Data: cdctype.DtData{Kind: cdctype.KindRaw, RawKeys: []string{"foo", "bar"}}}
	err := p.Sink(context.Background(), []cdctype.DtItem{item}, []sink.Sinker{s0})
	if !errors.Is(err, ErrMixedSlot) {
		t.Fatalf("err = %v, want ErrMixedSlot", err)
	}
}

func TestSinkWithoutSlotMapDispatchesToFirstSinker(t *testing.T) {
	p := &Parallelizer{}
	s0 := &recordingSinker{id: "only"}

	items := []cdctype.DtItem{rawItem("foo")}
	if err := p.Sink(context.Background(), items, []sink.Sinker{s0}); err != nil {
		t.Fatalf("Sink returned error: %v", err)
	}
	if len(s0.received) != 1 {
		t.Fatal("expected the single sinker to receive the whole batch when no slot map is configured")
	}
}
