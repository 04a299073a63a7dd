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

// Package cloudcanal renders the vendor "CloudCanal" JSON template: a
// richer envelope than the generic encoder, carrying per-column JDBC type
// codes alongside the row data.
package cloudcanal

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/meta"
)

// Encoder is the CloudCanal encode.Encoder implementation.
type Encoder struct {
	Meta meta.Manager
	// Now is overridable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

// New constructs an Encoder backed by the given metadata manager.
func New(m meta.Manager) *Encoder {
	return &Encoder{Meta: m, Now: time.Now}
}

func (e *Encoder) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// RefreshMeta is a no-op: jdbcType codes are recomputed from meta.Manager
// on every call, so there is nothing of this encoder's own to drop.
func (e *Encoder) RefreshMeta(schema, table string) {}

// RowKey resolves the primary-key tuple the same way the generic encoder
// does, falling back to "schema_table".
func (e *Encoder) RowKey(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error) {
	cols := e.primaryKeyCols(ctx, evt.Schema, evt.Table)
	if len(cols) == 0 {
		return []byte(evt.Schema + "_" + evt.Table), nil
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

// RowValue renders the CloudCanal row-data envelope.
func (e *Encoder) RowValue(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error) {
	nowMs := e.now().UnixMilli()
	out := map[string]any{
		"action":    evt.Kind.String(),
		"bid":       0,
		"db":        evt.Schema,
		"schema":    evt.Schema,
		"table":     evt.Table,
		"ddl":       false,
		"entryType": "ROWDATA",
		"execTs":    nowMs,
		"sendTs":    nowMs,
		"sql":       nil,
		"pks":       []string{},
	}
	if evt.Before != nil {
		out["before"] = []map[string]cdctype.ColValue{evt.Before}
	}
	if evt.After != nil {
		out["data"] = []map[string]cdctype.ColValue{evt.After}
	}

	tm, _ := e.tableMeta(ctx, evt.Schema, evt.Table)
	if tm != nil {
		if pks, ok := tm.KeyMap["primary"]; ok {
			out["pks"] = pks
		}
		dbValType, jdbcType := jdbcTypeMaps(tm)
		out["dbValType"] = dbValType
		out["jdbcType"] = jdbcType
	}
	return json.Marshal(out)
}

// DDLValue renders the CloudCanal DDL envelope.
func (e *Encoder) DDLValue(ctx context.Context, evt *cdctype.DdlEvent) ([]byte, error) {
	nowMs := e.now().UnixMilli()
	out := map[string]any{
		"action":    "DDL",
		"bid":       0,
		"db":        evt.DefaultSchema,
		"schema":    evt.DefaultSchema,
		"table":     "",
		"ddl":       true,
		"entryType": "DDL",
		"execTs":    nowMs,
		"sendTs":    nowMs,
		"sql":       evt.Query,
		"pks":       []string{},
		"before":    []any{},
		"data":      []any{},
		"dbValType": map[string]string{},
		"jdbcType":  map[string]int{},
	}
	return json.Marshal(out)
}

func (e *Encoder) primaryKeyCols(ctx context.Context, schema, table string) []string {
	tm, _ := e.tableMeta(ctx, schema, table)
	if tm == nil {
		return nil
	}
	return tm.KeyMap["primary"]
}

func (e *Encoder) tableMeta(ctx context.Context, schema, table string) (*meta.TableMeta, error) {
	if e.Meta == nil {
		return nil, nil
	}
	return e.Meta.GetTableMeta(ctx, schema, table)
}

// jdbcTypeMaps builds the per-column dbValType/jdbcType maps using the
// origin-type string-match table: the first matching substring wins, in
// the order bigint, int/integer, varchar/text, timestamp/datetime, json;
// anything else defaults to the VARCHAR code.
func jdbcTypeMaps(tm *meta.TableMeta) (map[string]string, map[string]int) {
	dbValType := make(map[string]string, len(tm.Cols))
	jdbcType := make(map[string]int, len(tm.Cols))
	for _, col := range tm.Cols {
		dbValType[col.Name] = col.OriginType
		jdbcType[col.Name] = jdbcTypeCode(col.OriginType)
	}
	return dbValType, jdbcType
}

func jdbcTypeCode(originType string) int {
	t := strings.ToLower(originType)
	switch {
	case strings.Contains(t, "bigint"):
		return -5
	case strings.Contains(t, "integer"), strings.Contains(t, "int"):
		return 4
	case strings.Contains(t, "varchar"), strings.Contains(t, "text"):
		return 12
	case strings.Contains(t, "timestamp"), strings.Contains(t, "datetime"):
		return 93
	case strings.Contains(t, "json"):
		return 1111
	default:
		return 12
	}
}
