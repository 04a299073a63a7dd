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

package resharder

import (
	"testing"
)

func nodeWithSlots(id string, slots ...uint16) Node {
	return Node{ID: id, Host: "127.0.0.1", Port: "7000", Slots: slots}
}

func rangeSlots(lo, hi uint16) []uint16 {
	var s []uint16
	for i := lo; i < hi; i++ {
		s = append(s, i)
	}
	return s
}

func TestPlanBringsEveryNodeToTarget(t *testing.T) {
	topo := &Topology{Nodes: []Node{
		{ID: "a", Slots: rangeSlots(0, 16384)},
		{ID: "b"},
		{ID: "c"},
	}}

	moves := Plan(topo)
	if len(moves) == 0 {
		t.Fatal("expected a non-empty plan when one node owns every slot")
	}

	byID := map[string]int{"a": len(topo.Nodes[0].Slots), "b": 0, "c": 0}
	for _, m := range moves {
		if m.srcNode != "a" {
			t.Fatalf("move source = %q, want %q", m.srcNode, "a")
		}
		byID[m.srcNode]--
		byID[m.dstNode]++
	}

	target := 16384 / 3
	for id, count := range byID {
		if count < target {
			t.Fatalf("node %q ended with %d slots, want at least %d", id, count, target)
		}
	}
}

func TestPlanIsEmptyWhenAlreadyBalanced(t *testing.T) {
	topo := &Topology{Nodes: []Node{
		nodeWithSlots("a", rangeSlots(0, 8192)...),
		nodeWithSlots("b", rangeSlots(8192, 16384)...),
	}}
	if moves := Plan(topo); len(moves) != 0 {
		t.Fatalf("len(moves) = %d, want 0 for an already-balanced topology", len(moves))
	}
}

func TestPlanOnEmptyTopologyIsNoOp(t *testing.T) {
	if moves := Plan(&Topology{}); moves != nil {
		t.Fatalf("moves = %v, want nil for an empty topology", moves)
	}
}

func TestTopologySlotNodeMapsEveryOwnedSlot(t *testing.T) {
	topo := &Topology{Nodes: []Node{
		nodeWithSlots("a", 0, 1, 2),
		nodeWithSlots("b", 3, 4),
	}}
	m := topo.SlotNode()
	if m[0] != "a" || m[2] != "a" || m[3] != "b" || m[4] != "b" {
		t.Fatalf("SlotNode() = %v, want slots 0-2 on a and 3-4 on b", m)
	}
	if len(m) != 5 {
		t.Fatalf("len(SlotNode()) = %d, want 5", len(m))
	}
}
