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

// Package dedup removes duplicate row mutations from a batch before it
// reaches a sinker, keeping only the most recent mutation per key.
package dedup

import "github.com/cockroachdb/dtcore/internal/cdctype"

// UniqueByKey implements a "last one wins" approach to removing DtItems
// with duplicate row keys from the input slice. If two items share the
// same key, the one with the larger Seq is kept. If two items share the
// same key and Seq, exactly one is kept arbitrarily. Items with no row
// payload (DDL, Commit, Raw) are never deduplicated against each other —
// only KindDml items carry a comparable key.
//
// The modified slice is returned; callers should not use x after calling
// this function.
//
// keyOf must return a non-empty key for every KindDml item; this function
// panics otherwise, since a silently empty key would otherwise let
// unrelated rows collapse into one another.
func UniqueByKey(x []cdctype.DtItem, keyOf func(*cdctype.RowEvent) string) []cdctype.DtItem {
	seenIdx := make(map[string]int, len(x))

	dest := len(x)
	for src := len(x) - 1; src >= 0; src-- {
		if x[src].Data.Kind != cdctype.KindDml {
			dest--
			x[dest] = x[src]
			continue
		}

		key := keyOf(x[src].Data.Row)
		if key == "" {
			panic("dedup: empty row key")
		}

		if curIdx, found := seenIdx[key]; found {
			if x[src].Seq > x[curIdx].Seq {
				x[curIdx] = x[src]
			}
		} else {
			dest--
			seenIdx[key] = dest
			x[dest] = x[src]
		}
	}

	return x[dest:]
}
