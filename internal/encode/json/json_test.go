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

package json

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/ddl"
)

func TestRowValueInsert(t *testing.T) {
	e := New(nil)
	evt := &cdctype.RowEvent{
		Schema: "db1", Table: "t1", Kind: cdctype.Insert,
		After: map[string]cdctype.ColValue{"id": cdctype.NewInt64(cdctype.KInt64, 1)},
	}
	raw, err := e.RowValue(context.Background(), evt)
	if err != nil {
		t.Fatalf("RowValue() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["operation"] != "insert" || got["schema"] != "db1" || got["tb"] != "t1" {
		t.Fatalf("RowValue() = %v", got)
	}
	if _, ok := got["after"]; !ok {
		t.Fatalf("RowValue() missing after: %v", got)
	}
	if _, ok := got["before"]; ok {
		t.Fatalf("RowValue() should omit before on insert: %v", got)
	}
}

func TestRowKeyFallsBackWithoutMeta(t *testing.T) {
	e := New(nil)
	evt := &cdctype.RowEvent{Schema: "db1", Table: "t1", Kind: cdctype.Insert}
	got, err := e.RowKey(context.Background(), evt)
	if err != nil {
		t.Fatalf("RowKey() error = %v", err)
	}
	if string(got) != "db1_t1" {
		t.Fatalf("RowKey() = %q, want %q", got, "db1_t1")
	}
}

func TestDDLValue(t *testing.T) {
	e := New(nil)
	evt := &cdctype.DdlEvent{
		DefaultSchema: "db1",
		Query:         "ALTER TABLE db1.t1 ADD COLUMN x int",
		Statement:     &ddl.MysqlAlterTableStatement{Schema: "db1", Tb: "t1"},
		DbType:        ddl.MySQL,
	}
	raw, err := e.DDLValue(context.Background(), evt)
	if err != nil {
		t.Fatalf("DDLValue() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["ddl"] != true || got["db_type"] != "mysql" || got["schema"] != "db1" {
		t.Fatalf("DDLValue() = %v", got)
	}
	if got["query"] != evt.Query {
		t.Fatalf("DDLValue() query = %v, want %q", got["query"], evt.Query)
	}
}
