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

// Package resharder equalizes slot ownership across a Redis Cluster's
// master nodes, issuing the raw CLUSTER SETSLOT/MIGRATE command sequence
// against per-node connections.
package resharder

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/cockroachdb/dtcore/internal/redisslot"
)

// Node is one cluster master and the slots it currently owns.
type Node struct {
	ID    string
	Host  string
	Port  string
	Slots []uint16
}

// Address returns the node's host:port dial target.
func (n Node) Address() string { return n.Host + ":" + n.Port }

// Topology is a point-in-time snapshot of a cluster's master nodes.
type Topology struct {
	Nodes []Node
}

// SlotNode builds the slot -> owning-node-id map for this snapshot. Plan
// does not use it; it reads each node's Slots directly.
func (t Topology) SlotNode() map[uint16]string {
	m := make(map[uint16]string, redisslot.SlotCount)
	for _, n := range t.Nodes {
		for _, s := range n.Slots {
			m[s] = n.ID
		}
	}
	return m
}

// TopologySource fetches the current cluster topology, typically by
// issuing CLUSTER NODES/CLUSTER SLOTS against any live cluster member and
// parsing the result.
type TopologySource interface {
	FetchTopology(ctx context.Context) (*Topology, error)
}

// move is one planned slot relocation.
type move struct {
	slot    uint16
	srcNode string
	dstNode string
}

// Plan computes the slot relocations needed to bring every node to
// floor(SlotCount/len(nodes)) slots: nodes above target give up their
// excess slots (in slot order) to nodes below target, dealt out greedily
// in node iteration order.
func Plan(topo *Topology) []move {
	n := len(topo.Nodes)
	if n == 0 {
		return nil
	}
	target := redisslot.SlotCount / n

	var moveOut []struct {
		slot uint16
		node string
	}
	for _, node := range topo.Nodes {
		slots := append([]uint16(nil), node.Slots...)
		sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
		for i := target; i < len(slots); i++ {
			moveOut = append(moveOut, struct {
				slot uint16
				node string
			}{slots[i], node.ID})
		}
	}

	var moves []move
	i := 0
	for _, node := range topo.Nodes {
		if len(node.Slots) >= target || i >= len(moveOut) {
			continue
		}
		deficit := target - len(node.Slots)
		for j := 0; j < deficit && i < len(moveOut); j++ {
			moves = append(moves, move{slot: moveOut[i].slot, srcNode: moveOut[i].node, dstNode: node.ID})
			i++
		}
	}
	return moves
}

// Resharder executes a Plan against a live cluster, opening one
// *redis.Client per participating node address, memoized and reused for
// every later move that touches the same node.
type Resharder struct {
	Source TopologySource
	// Dial opens a client for a node's address; overridable in tests.
	Dial func(addr string) *redis.Client

	conns map[string]*redis.Client
}

// NewResharder builds a Resharder backed by source, dialing nodes with
// the default redis.NewClient options.
func NewResharder(source TopologySource) *Resharder {
	return &Resharder{
		Source: source,
		Dial:   func(addr string) *redis.Client { return redis.NewClient(&redis.Options{Addr: addr}) },
		conns:  make(map[string]*redis.Client),
	}
}

// Reshard fetches the current topology, computes a Plan, and executes
// every move in order. A single slot failure aborts the whole run:
// partial progress is left observable in the cluster, and the operator
// is expected to re-run once the underlying problem is fixed.
func (r *Resharder) Reshard(ctx context.Context) error {
	topo, err := r.Source.FetchTopology(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	byID := make(map[string]Node, len(topo.Nodes))
	for _, n := range topo.Nodes {
		byID[n.ID] = n
	}

	for _, m := range Plan(topo) {
		src, ok := byID[m.srcNode]
		if !ok {
			return errors.Errorf("resharder: unknown source node %q", m.srcNode)
		}
		dst, ok := byID[m.dstNode]
		if !ok {
			return errors.Errorf("resharder: unknown destination node %q", m.dstNode)
		}
		if err := r.moveSlot(ctx, src, dst, m.slot); err != nil {
			return errors.Wrapf(err, "moving slot %d from %s to %s", m.slot, src.ID, dst.ID)
		}
	}
	return nil
}

func (r *Resharder) conn(addr string) *redis.Client {
	if c, ok := r.conns[addr]; ok {
		return c
	}
	c := r.Dial(addr)
	r.conns[addr] = c
	return c
}

// moveSlot performs the four-step slot migration protocol: mark the slot
// importing on dst and migrating on src, stream every key in the slot
// from src to dst, then assign the slot to dst on both ends.
func (r *Resharder) moveSlot(ctx context.Context, src, dst Node, slot uint16) error {
	srcConn := r.conn(src.Address())
	dstConn := r.conn(dst.Address())

	if err := process(ctx, dstConn, "CLUSTER", "SETSLOT", slot, "IMPORTING", src.ID); err != nil {
		return err
	}
	if err := process(ctx, srcConn, "CLUSTER", "SETSLOT", slot, "MIGRATING", dst.ID); err != nil {
		return err
	}

	keys, err := getKeysInSlot(ctx, srcConn, slot)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := process(ctx, srcConn, "MIGRATE", dst.Host, dst.Port, "", 0, 5000, "KEYS", key); err != nil {
			return err
		}
	}

	if err := process(ctx, dstConn, "CLUSTER", "SETSLOT", slot, "NODE", dst.ID); err != nil {
		return err
	}
	if err := process(ctx, srcConn, "CLUSTER", "SETSLOT", slot, "NODE", dst.ID); err != nil {
		return err
	}
	return nil
}

func getKeysInSlot(ctx context.Context, client *redis.Client, slot uint16) ([]string, error) {
	cmd := redis.NewStringSliceCmd(ctx, "CLUSTER", "GETKEYSINSLOT", slot, 100000000)
	if err := client.Process(ctx, cmd); err != nil {
		return nil, errors.WithStack(err)
	}
	return cmd.Result()
}

func process(ctx context.Context, client *redis.Client, args ...any) error {
	cmd := redis.NewCmd(ctx, args...)
	if err := client.Process(ctx, cmd); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
