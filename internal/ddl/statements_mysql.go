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

// MysqlCreateTableStatement is "CREATE TABLE <schema>.<tb> <unparsed>".
type MysqlCreateTableStatement struct {
	Schema, Tb string
	Unparsed   string
}

func (s *MysqlCreateTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *MysqlCreateTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *MysqlCreateTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *MysqlCreateTableStatement) Route(dstSchema, dstTb string) Statement {
	return &MysqlCreateTableStatement{Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb, Unparsed: s.Unparsed}
}
func (s *MysqlCreateTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *MysqlCreateTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *MysqlCreateTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.Unparsed)
}

// MysqlAlterTableStatement is "ALTER TABLE <schema>.<tb> <unparsed>".
type MysqlAlterTableStatement struct {
	Schema, Tb string
	Unparsed   string
}

func (s *MysqlAlterTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *MysqlAlterTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *MysqlAlterTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *MysqlAlterTableStatement) Route(dstSchema, dstTb string) Statement {
	return &MysqlAlterTableStatement{Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb, Unparsed: s.Unparsed}
}
func (s *MysqlAlterTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *MysqlAlterTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *MysqlAlterTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.Unparsed)
}

// MysqlAlterTableRenameStatement is "ALTER TABLE <schema>.<tb> RENAME TO
// <new_schema>.<new_tb>".
type MysqlAlterTableRenameStatement struct {
	Schema, Tb         string
	NewSchema, NewTb   string
}

func (s *MysqlAlterTableRenameStatement) SchemaTb() (string, string) { return s.Schema, s.Tb }
func (s *MysqlAlterTableRenameStatement) RenameTarget() (string, string) {
	return s.NewSchema, s.NewTb
}
func (s *MysqlAlterTableRenameStatement) SplitToMulti() []Statement { return []Statement{s} }
func (s *MysqlAlterTableRenameStatement) Route(dstSchema, dstTb string) Statement { return s }

func (s *MysqlAlterTableRenameStatement) RouteRenameTable(dstSchema, dstTb string) Statement {
	return &MysqlAlterTableRenameStatement{
		Schema: s.Schema, Tb: s.Tb,
		NewSchema: routeSchema(s.NewSchema, dstSchema), NewTb: dstTb,
	}
}

func (s *MysqlAlterTableRenameStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	b.WriteString(" RENAME TO")
	appendTb(&b, d, s.NewSchema, s.NewTb)
	return b.String()
}

func (s *MysqlAlterTableRenameStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.NewSchema) + len(s.NewTb)
}

// MysqlTruncateTableStatement is "TRUNCATE TABLE <schema>.<tb>".
type MysqlTruncateTableStatement struct {
	Schema, Tb string
}

func (s *MysqlTruncateTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *MysqlTruncateTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *MysqlTruncateTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *MysqlTruncateTableStatement) Route(dstSchema, dstTb string) Statement {
	return &MysqlTruncateTableStatement{Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb}
}
func (s *MysqlTruncateTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *MysqlTruncateTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("TRUNCATE TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	return b.String()
}

func (s *MysqlTruncateTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb)
}

// MysqlCreateIndexStatement is "CREATE INDEX <name> ON <schema>.<tb> <unparsed>".
type MysqlCreateIndexStatement struct {
	Schema, Tb string
	IndexName  string
	Unparsed   string
}

func (s *MysqlCreateIndexStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *MysqlCreateIndexStatement) RenameTarget() (string, string) { return "", "" }
func (s *MysqlCreateIndexStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *MysqlCreateIndexStatement) Route(dstSchema, dstTb string) Statement {
	return &MysqlCreateIndexStatement{
		Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb,
		IndexName: s.IndexName, Unparsed: s.Unparsed,
	}
}
func (s *MysqlCreateIndexStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *MysqlCreateIndexStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE INDEX")
	appendIdentifier(&b, d, s.IndexName)
	b.WriteString(" ON")
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *MysqlCreateIndexStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.IndexName) + len(s.Unparsed)
}

// MysqlDropIndexStatement is "DROP INDEX [IF EXISTS] <name> ON <schema>.<tb>".
type MysqlDropIndexStatement struct {
	Schema, Tb string
	IndexName  string
	IfExists   bool
}

func (s *MysqlDropIndexStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *MysqlDropIndexStatement) RenameTarget() (string, string) { return "", "" }
func (s *MysqlDropIndexStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *MysqlDropIndexStatement) Route(dstSchema, dstTb string) Statement {
	return &MysqlDropIndexStatement{
		Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb,
		IndexName: s.IndexName, IfExists: s.IfExists,
	}
}
func (s *MysqlDropIndexStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *MysqlDropIndexStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP INDEX")
	appendIfExists(&b, s.IfExists, false)
	appendIdentifier(&b, d, s.IndexName)
	b.WriteString(" ON")
	appendTb(&b, d, s.Schema, s.Tb)
	return b.String()
}

func (s *MysqlDropIndexStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.IndexName)
}
