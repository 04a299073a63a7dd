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

// Package json is the generic JSON payload encoder: a bare operation/
// schema/table/before/after envelope with no vendor-specific fields.
package json

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/meta"
)

// Encoder is the generic JSON encode.Encoder implementation.
type Encoder struct {
	Meta meta.Manager
}

// New constructs an Encoder backed by the given metadata manager.
func New(m meta.Manager) *Encoder {
	return &Encoder{Meta: m}
}

// RefreshMeta is a no-op: this encoder keeps no per-table state of its
// own beyond what meta.Manager already caches and invalidates.
func (e *Encoder) RefreshMeta(schema, table string) {}

// RowKey resolves the primary-key tuple from the table's meta, falling
// back to "schema_table" when no meta or primary key is available.
func (e *Encoder) RowKey(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error) {
	cols := primaryKeyCols(ctx, e.Meta, evt.Schema, evt.Table)
	if len(cols) == 0 {
		return []byte(fmt.Sprintf("%s_%s", evt.Schema, evt.Table)), nil
	}
	src := evt.After
	if evt.Kind == cdctype.Delete {
		src = evt.Before
	}
	vals := make([]cdctype.ColValue, 0, len(cols))
	for _, c := range cols {
		vals = append(vals, src[c])
	}
	return json.Marshal(vals)
}

// RowValue renders {"operation", "schema", "tb", "before"?, "after"?}.
func (e *Encoder) RowValue(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error) {
	out := map[string]any{
		"operation": operationString(evt.Kind),
		"schema":    evt.Schema,
		"tb":        evt.Table,
	}
	if evt.Before != nil {
		out["before"] = evt.Before
	}
	if evt.After != nil {
		out["after"] = evt.After
	}
	return json.Marshal(out)
}

// DDLValue renders {"ddl":true,"db_type","ddl_type","schema","query"}.
func (e *Encoder) DDLValue(ctx context.Context, evt *cdctype.DdlEvent) ([]byte, error) {
	ddlType := "unknown"
	if evt.Statement != nil {
		ddlType = fmt.Sprintf("%T", evt.Statement)
	}
	out := map[string]any{
		"ddl":      true,
		"db_type":  evt.DbType.String(),
		"ddl_type": ddlType,
		"schema":   evt.DefaultSchema,
		"query":    evt.Query,
	}
	return json.Marshal(out)
}

// operationString renders kind in the lowercase form this encoder's
// "operation" field uses, distinct from CloudCanal's uppercase "action".
func operationString(kind cdctype.RowKind) string {
	switch kind {
	case cdctype.Insert:
		return "insert"
	case cdctype.Update:
		return "update"
	case cdctype.Delete:
		return "delete"
	default:
		return "unknown"
	}
}

func primaryKeyCols(ctx context.Context, m meta.Manager, schema, table string) []string {
	if m == nil {
		return nil
	}
	tm, err := m.GetTableMeta(ctx, schema, table)
	if err != nil || tm == nil {
		return nil
	}
	return tm.KeyMap["primary"]
}
