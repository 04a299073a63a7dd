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

// Package avro renders row events as Avro binary records, deriving a
// permissive per-table schema (every column as a nullable string, plus a
// fixed "__op"/"__schema"/"__table" envelope) from table metadata and
// caching the compiled codec until a DDL event invalidates it.
package avro

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/meta"
	"github.com/linkedin/goavro/v2"
)

// Encoder is the Avro encode.Encoder implementation.
type Encoder struct {
	Meta meta.Manager

	mu     sync.Mutex
	codecs map[string]*goavro.Codec // "schema.table" -> compiled value codec
	keys   map[string]*goavro.Codec // "schema.table" -> compiled key codec
}

// New constructs an Encoder backed by the given metadata manager.
func New(m meta.Manager) *Encoder {
	return &Encoder{
		Meta:   m,
		codecs: make(map[string]*goavro.Codec),
		keys:   make(map[string]*goavro.Codec),
	}
}

// RefreshMeta drops the cached codecs for schema.table, so the next
// encode call recompiles them against the table's current column set.
func (e *Encoder) RefreshMeta(schema, table string) {
	key := schema + "." + table
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.codecs, key)
	delete(e.keys, key)
}

// RowKey encodes the primary-key tuple as an Avro record, falling back to
// the literal "schema_table" bytes when no meta or primary key exists.
func (e *Encoder) RowKey(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error) {
	tm, err := e.tableMeta(ctx, evt.Schema, evt.Table)
	if err != nil || tm == nil {
		return []byte(evt.Schema + "_" + evt.Table), nil
	}
	cols := tm.KeyMap["primary"]
	if len(cols) == 0 {
		return []byte(evt.Schema + "_" + evt.Table), nil
	}
	codec, err := e.keyCodec(evt.Schema, evt.Table, cols)
	if err != nil {
		return nil, err
	}
	src := evt.After
	if evt.Kind == cdctype.Delete {
		src = evt.Before
	}
	native := make(map[string]any, len(cols))
	for _, c := range cols {
		native[c] = nativeOf(src[c])
	}
	return codec.BinaryFromNative(nil, native)
}

// RowValue encodes the row's post-image (or pre-image on delete) plus an
// operation envelope as an Avro binary record.
func (e *Encoder) RowValue(ctx context.Context, evt *cdctype.RowEvent) ([]byte, error) {
	tm, err := e.tableMeta(ctx, evt.Schema, evt.Table)
	if err != nil {
		return nil, err
	}
	codec, err := e.valueCodec(evt.Schema, evt.Table, tm)
	if err != nil {
		return nil, err
	}
	src := evt.After
	if evt.Kind == cdctype.Delete {
		src = evt.Before
	}
	native := map[string]any{
		"__op":     evt.Kind.String(),
		"__schema": evt.Schema,
		"__table":  evt.Table,
	}
	for _, col := range tm.Cols {
		v, ok := src[col.Name]
		if !ok {
			native[col.Name] = nil
			continue
		}
		native[col.Name] = map[string]any{"string": stringOf(v)}
	}
	return codec.BinaryFromNative(nil, native)
}

// DDLValue has no schema to encode against, so DDL payloads are rendered
// as a small fixed-shape Avro record instead of going through the
// per-table codec cache.
func (e *Encoder) DDLValue(ctx context.Context, evt *cdctype.DdlEvent) ([]byte, error) {
	codec, err := goavro.NewCodec(ddlSchema)
	if err != nil {
		return nil, fmt.Errorf("avro: compile ddl schema: %w", err)
	}
	native := map[string]any{
		"schema": evt.DefaultSchema,
		"query":  evt.Query,
	}
	return codec.BinaryFromNative(nil, native)
}

const ddlSchema = `{
  "type": "record",
  "name": "DdlEvent",
  "fields": [
    {"name": "schema", "type": "string"},
    {"name": "query", "type": "string"}
  ]
}`

func (e *Encoder) tableMeta(ctx context.Context, schema, table string) (*meta.TableMeta, error) {
	if e.Meta == nil {
		return nil, fmt.Errorf("avro: no meta manager configured for %s.%s", schema, table)
	}
	return e.Meta.GetTableMeta(ctx, schema, table)
}

func (e *Encoder) valueCodec(schema, table string, tm *meta.TableMeta) (*goavro.Codec, error) {
	key := schema + "." + table
	e.mu.Lock()
	if c, ok := e.codecs[key]; ok {
		e.mu.Unlock()
		return c, nil
	}
	e.mu.Unlock()

	c, err := goavro.NewCodec(valueSchemaFor(schema, table, tm))
	if err != nil {
		return nil, fmt.Errorf("avro: compile value schema for %s: %w", key, err)
	}
	e.mu.Lock()
	e.codecs[key] = c
	e.mu.Unlock()
	return c, nil
}

func (e *Encoder) keyCodec(schema, table string, cols []string) (*goavro.Codec, error) {
	key := schema + "." + table
	e.mu.Lock()
	if c, ok := e.keys[key]; ok {
		e.mu.Unlock()
		return c, nil
	}
	e.mu.Unlock()

	c, err := goavro.NewCodec(keySchemaFor(schema, table, cols))
	if err != nil {
		return nil, fmt.Errorf("avro: compile key schema for %s: %w", key, err)
	}
	e.mu.Lock()
	e.keys[key] = c
	e.mu.Unlock()
	return c, nil
}

type avroField struct {
	Name string `json:"name"`
	Type any    `json:"type"`
}

type avroRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

func valueSchemaFor(schema, table string, tm *meta.TableMeta) string {
	fields := []avroField{
		{Name: "__op", Type: "string"},
		{Name: "__schema", Type: "string"},
		{Name: "__table", Type: "string"},
	}
	for _, col := range tm.Cols {
		fields = append(fields, avroField{Name: col.Name, Type: []any{"null", "string"}})
	}
	rec := avroRecord{Type: "record", Name: recordName(schema, table), Fields: fields}
	b, _ := json.Marshal(rec)
	return string(b)
}

func keySchemaFor(schema, table string, cols []string) string {
	fields := make([]avroField, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, avroField{Name: c, Type: "string"})
	}
	rec := avroRecord{Type: "record", Name: recordName(schema, table) + "Key", Fields: fields}
	b, _ := json.Marshal(rec)
	return string(b)
}

func recordName(schema, table string) string {
	return "dtcore_" + sanitize(schema) + "_" + sanitize(table)
}

func sanitize(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func nativeOf(v cdctype.ColValue) string { return stringOf(v) }

// stringOf renders a ColValue into the plain string this encoder's
// permissive per-column schema expects, reusing the shared JSON rendering
// table and trimming any quoting JSON adds to scalars.
func stringOf(v cdctype.ColValue) string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
