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

// Package sink defines the common Sinker contract every downstream
// collaborator (message-bus, warehouse bulk-load) implements, plus a
// fault-injection decorator used to exercise the parallelizer/sinker
// boundary under synthetic failure.
package sink

import (
	"context"

	"github.com/cockroachdb/dtcore/internal/cdctype"
)

// Sinker is the destination contract every parallelizer fans batches out
// to.
type Sinker interface {
	// SinkDML delivers a batch of row/DDL events. Implementations decide
	// internally how to dispatch DDL events (e.g. a warehouse sinker may
	// simply skip them, a message-bus sinker forwards them as-is).
	SinkDML(ctx context.Context, items []cdctype.DtItem) error

	// SinkRaw delivers a batch of raw key/value payloads, used by the
	// cluster-slot parallelizer when the event model is a bare command
	// rather than a row mutation. serial requests in-order delivery
	// instead of the sinker's normal (possibly concurrent) fast path.
	SinkRaw(ctx context.Context, items []cdctype.DtItem, serial bool) error

	// Close releases any resources (producer connections, HTTP clients)
	// held by the sinker.
	Close() error

	// ID identifies the sinker instance, used by parallelizers that bind
	// routing decisions (e.g. cluster slot ownership) to a specific
	// sinker across calls.
	ID() string
}
