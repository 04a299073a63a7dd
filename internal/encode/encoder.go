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

// Package encode defines the common contract every row/DDL payload
// encoder implements; concrete encoders live in its subpackages (json,
// cloudcanal, avro).
package encode

import (
	"context"

	"github.com/cockroachdb/dtcore/internal/cdctype"
)

// Encoder renders row and DDL events into the byte payloads sinkers ship
// downstream.
type Encoder interface {
	// RowKey renders the message key for a row event — typically the
	// primary-key tuple, falling back to "schema_table" when no meta or
	// primary key is available.
	RowKey(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error)

	// RowValue renders the message body for a row event.
	RowValue(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error)

	// DDLValue renders the message body for a DDL event.
	DDLValue(ctx context.Context, evt *cdctype.DdlEvent) ([]byte, error)

	// RefreshMeta notifies the encoder that schema.table's metadata may
	// have changed, so it can drop any per-table cache of its own (e.g.
	// a compiled Avro codec) instead of relying on a stale one until the
	// process restarts.
	RefreshMeta(schema, table string)
}
