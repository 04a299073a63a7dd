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

package ddl

import "testing"

func TestDropMultiTableToSQL(t *testing.T) {
	s := &DropMultiTableStatement{
		SchemaTbs: []SchemaTbPair{{Schema: "db1", Tb: "t1"}, {Schema: "db1", Tb: "t2"}},
		IfExists:  true,
	}
	got := s.ToSQL(MySQL)
	want := "DROP TABLE IF EXISTS `db1`.`t1` `db1`.`t2`"
	if got != want {
		t.Fatalf("ToSQL() = %q, want %q", got, want)
	}
}

func TestDropMultiTableSplitToMulti(t *testing.T) {
	s := &DropMultiTableStatement{
		SchemaTbs: []SchemaTbPair{{Schema: "db1", Tb: "t1"}, {Schema: "db1", Tb: "t2"}},
		IfExists:  true,
	}
	parts := s.SplitToMulti()
	if len(parts) != 2 {
		t.Fatalf("len(SplitToMulti()) = %d, want 2", len(parts))
	}
	for i, p := range parts {
		schema, tb := p.SchemaTb()
		if schema != "db1" || tb != s.SchemaTbs[i].Tb {
			t.Fatalf("part %d SchemaTb() = (%q, %q)", i, schema, tb)
		}
	}
}

func TestRenameMultiTableToSQL(t *testing.T) {
	s := &RenameMultiTableStatement{
		SchemaTbs:    []SchemaTbPair{{Schema: "db1", Tb: "a"}, {Schema: "db1", Tb: "b"}},
		NewSchemaTbs: []SchemaTbPair{{Schema: "db1", Tb: "a2"}, {Schema: "db1", Tb: "b2"}},
	}
	got := s.ToSQL(MySQL)
	want := "RENAME TABLE `db1`.`a` TO `db1`.`a2`, `db1`.`b` TO `db1`.`b2`"
	if got != want {
		t.Fatalf("ToSQL() = %q, want %q", got, want)
	}
}

func TestPgDropMultiIndexToSQL(t *testing.T) {
	s := &PgDropMultiIndexStatement{
		IndexNames:   []string{"idx1", "idx2"},
		Concurrently: true,
		IfExists:     true,
	}
	got := s.ToSQL(Postgres)
	want := `DROP INDEX CONCURRENTLY IF EXISTS "idx1","idx2"`
	if got != want {
		t.Fatalf("ToSQL() = %q, want %q", got, want)
	}
}

func TestRouteEmptySchemaStaysEmpty(t *testing.T) {
	s := &MysqlAlterTableStatement{Schema: "", Tb: "orders"}
	routed := s.Route("dst_schema", "orders2")
	schema, tb := routed.SchemaTb()
	if schema != "" {
		t.Fatalf("routed schema = %q, want empty (unqualified names stay unqualified)", schema)
	}
	if tb != "orders2" {
		t.Fatalf("routed tb = %q, want %q", tb, "orders2")
	}
}

func TestRouteNonEmptySchemaReplaced(t *testing.T) {
	s := &MysqlAlterTableStatement{Schema: "src", Tb: "orders"}
	routed := s.Route("dst", "orders2")
	schema, tb := routed.SchemaTb()
	if schema != "dst" || tb != "orders2" {
		t.Fatalf("routed = (%q, %q), want (\"dst\", \"orders2\")", schema, tb)
	}
}

func TestRouteIsNoOpOnRenameVariant(t *testing.T) {
	s := &MysqlAlterTableRenameStatement{Schema: "src", Tb: "a", NewSchema: "src", NewTb: "b"}
	routed := s.Route("dst", "ignored")
	if routed != Statement(s) {
		t.Fatalf("Route() on a rename variant must be a no-op")
	}
}

func TestRouteRenameTableOnNonRenameVariantIsNoOp(t *testing.T) {
	s := &MysqlAlterTableStatement{Schema: "src", Tb: "a"}
	routed := s.RouteRenameTable("dst", "ignored")
	if routed != Statement(s) {
		t.Fatalf("RouteRenameTable() on a non-rename variant must be a no-op")
	}
}

func TestEscapeIdentifier(t *testing.T) {
	if got := MySQL.EscapeIdentifier("a`b"); got != "`a``b`" {
		t.Fatalf("MySQL.EscapeIdentifier = %q", got)
	}
	if got := Postgres.EscapeIdentifier(`a"b`); got != `"a""b"` {
		t.Fatalf("Postgres.EscapeIdentifier = %q", got)
	}
}

func TestUnknownStatementRoundTrip(t *testing.T) {
	s := &UnknownStatement{Unparsed: "GRANT ALL ON foo TO bar"}
	if schema, tb := s.SchemaTb(); schema != "" || tb != "" {
		t.Fatalf("UnknownStatement.SchemaTb() = (%q, %q), want (\"\", \"\")", schema, tb)
	}
	if got := s.ToSQL(MySQL); got != s.Unparsed {
		t.Fatalf("ToSQL() = %q, want %q", got, s.Unparsed)
	}
}
