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

import "strings"

// PgCreateTableStatement is "CREATE TABLE <schema>.<tb> <unparsed>".
type PgCreateTableStatement struct {
	Schema, Tb string
	Unparsed   string
}

func (s *PgCreateTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *PgCreateTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *PgCreateTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *PgCreateTableStatement) Route(dstSchema, dstTb string) Statement {
	return &PgCreateTableStatement{Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb, Unparsed: s.Unparsed}
}
func (s *PgCreateTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *PgCreateTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *PgCreateTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.Unparsed)
}

// PgAlterTableStatement is "ALTER TABLE <schema>.<tb> <unparsed>".
type PgAlterTableStatement struct {
	Schema, Tb string
	Unparsed   string
}

func (s *PgAlterTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *PgAlterTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *PgAlterTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *PgAlterTableStatement) Route(dstSchema, dstTb string) Statement {
	return &PgAlterTableStatement{Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb, Unparsed: s.Unparsed}
}
func (s *PgAlterTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *PgAlterTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *PgAlterTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.Unparsed)
}

// PgAlterTableRenameStatement is "ALTER TABLE <schema>.<tb> RENAME TO <new_tb>"
// — Postgres renames a table within its own schema; there is no destination
// schema field to carry.
type PgAlterTableRenameStatement struct {
	Schema, Tb string
	NewTb      string
}

func (s *PgAlterTableRenameStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *PgAlterTableRenameStatement) RenameTarget() (string, string) { return s.Schema, s.NewTb }
func (s *PgAlterTableRenameStatement) SplitToMulti() []Statement      { return []Statement{s} }
func (s *PgAlterTableRenameStatement) Route(dstSchema, dstTb string) Statement { return s }

func (s *PgAlterTableRenameStatement) RouteRenameTable(dstSchema, dstTb string) Statement {
	return &PgAlterTableRenameStatement{Schema: s.Schema, Tb: s.Tb, NewTb: dstTb}
}

func (s *PgAlterTableRenameStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	b.WriteString(" RENAME TO")
	appendIdentifier(&b, d, s.NewTb)
	return b.String()
}

func (s *PgAlterTableRenameStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.NewTb)
}

// PgAlterTableSetSchemaStatement is "ALTER TABLE <schema>.<tb> SET SCHEMA <new_schema>".
type PgAlterTableSetSchemaStatement struct {
	Schema, Tb string
	NewSchema  string
}

func (s *PgAlterTableSetSchemaStatement) SchemaTb() (string, string) { return s.Schema, s.Tb }
func (s *PgAlterTableSetSchemaStatement) RenameTarget() (string, string) {
	return s.NewSchema, s.Tb
}
func (s *PgAlterTableSetSchemaStatement) SplitToMulti() []Statement { return []Statement{s} }
func (s *PgAlterTableSetSchemaStatement) Route(dstSchema, dstTb string) Statement { return s }

func (s *PgAlterTableSetSchemaStatement) RouteRenameTable(dstSchema, dstTb string) Statement {
	return &PgAlterTableSetSchemaStatement{
		Schema: s.Schema, Tb: s.Tb,
		NewSchema: routeSchema(s.NewSchema, dstSchema),
	}
}

func (s *PgAlterTableSetSchemaStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	b.WriteString(" SET SCHEMA")
	appendIdentifier(&b, d, s.NewSchema)
	return b.String()
}

func (s *PgAlterTableSetSchemaStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.NewSchema)
}

// PgTruncateTableStatement is "TRUNCATE TABLE <schema>.<tb>".
type PgTruncateTableStatement struct {
	Schema, Tb string
}

func (s *PgTruncateTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *PgTruncateTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *PgTruncateTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *PgTruncateTableStatement) Route(dstSchema, dstTb string) Statement {
	return &PgTruncateTableStatement{Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb}
}
func (s *PgTruncateTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *PgTruncateTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("TRUNCATE TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	return b.String()
}

func (s *PgTruncateTableStatement) SizeOf() int { return stmtOverhead + len(s.Schema) + len(s.Tb) }

// PgCreateIndexStatement is "CREATE INDEX [CONCURRENTLY] <name> ON <schema>.<tb> <unparsed>".
type PgCreateIndexStatement struct {
	Schema, Tb   string
	IndexName    string
	Concurrently bool
	Unparsed     string
}

func (s *PgCreateIndexStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *PgCreateIndexStatement) RenameTarget() (string, string) { return "", "" }
func (s *PgCreateIndexStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *PgCreateIndexStatement) Route(dstSchema, dstTb string) Statement {
	return &PgCreateIndexStatement{
		Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb,
		IndexName: s.IndexName, Concurrently: s.Concurrently, Unparsed: s.Unparsed,
	}
}
func (s *PgCreateIndexStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *PgCreateIndexStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE INDEX")
	if s.Concurrently {
		b.WriteString(" CONCURRENTLY")
	}
	appendIdentifier(&b, d, s.IndexName)
	b.WriteString(" ON")
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *PgCreateIndexStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.IndexName) + len(s.Unparsed)
}
