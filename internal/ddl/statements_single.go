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

// DropTableStatement is "DROP TABLE [IF EXISTS] <schema>.<tb> <unparsed>".
// It is also the per-pair shape SplitToMulti produces from
// DropMultiTableStatement.
type DropTableStatement struct {
	Schema, Tb string
	IfExists   bool
	Unparsed   string
}

func (s *DropTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *DropTableStatement) RenameTarget() (string, string) { return "", "" }
func (s *DropTableStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *DropTableStatement) Route(dstSchema, dstTb string) Statement {
	return &DropTableStatement{
		Schema: routeSchema(s.Schema, dstSchema), Tb: dstTb,
		IfExists: s.IfExists, Unparsed: s.Unparsed,
	}
}
func (s *DropTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *DropTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP TABLE")
	appendIfExists(&b, s.IfExists, false)
	appendTb(&b, d, s.Schema, s.Tb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *DropTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.Unparsed)
}

// RenameTableStatement is "RENAME TABLE <schema>.<tb> TO <new_schema>.<new_tb>".
// It is also the per-pair shape SplitToMulti produces from
// RenameMultiTableStatement.
type RenameTableStatement struct {
	Schema, Tb       string
	NewSchema, NewTb string
	Unparsed         string
}

func (s *RenameTableStatement) SchemaTb() (string, string)     { return s.Schema, s.Tb }
func (s *RenameTableStatement) RenameTarget() (string, string) { return s.NewSchema, s.NewTb }
func (s *RenameTableStatement) SplitToMulti() []Statement      { return []Statement{s} }
func (s *RenameTableStatement) Route(dstSchema, dstTb string) Statement { return s }

func (s *RenameTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement {
	return &RenameTableStatement{
		Schema: s.Schema, Tb: s.Tb,
		NewSchema: routeSchema(s.NewSchema, dstSchema), NewTb: dstTb,
		Unparsed: s.Unparsed,
	}
}

func (s *RenameTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("RENAME TABLE")
	appendTb(&b, d, s.Schema, s.Tb)
	b.WriteString(" TO")
	appendTb(&b, d, s.NewSchema, s.NewTb)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *RenameTableStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Tb) + len(s.NewSchema) + len(s.NewTb) + len(s.Unparsed)
}

// PgDropIndexStatement is "DROP INDEX [CONCURRENTLY] [IF EXISTS] <name> <unparsed>".
// It is also the per-index shape SplitToMulti produces from
// PgDropMultiIndexStatement.
type PgDropIndexStatement struct {
	IndexName    string
	IfExists     bool
	Concurrently bool
	Unparsed     string
}

func (s *PgDropIndexStatement) SchemaTb() (string, string)     { return "", "" }
func (s *PgDropIndexStatement) RenameTarget() (string, string) { return "", "" }
func (s *PgDropIndexStatement) SplitToMulti() []Statement      { return []Statement{s} }
func (s *PgDropIndexStatement) Route(dstSchema, dstTb string) Statement { return s }
func (s *PgDropIndexStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *PgDropIndexStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP INDEX")
	if s.Concurrently {
		b.WriteString(" CONCURRENTLY")
	}
	appendIfExists(&b, s.IfExists, false)
	appendIdentifier(&b, d, s.IndexName)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *PgDropIndexStatement) SizeOf() int { return stmtOverhead + len(s.IndexName) + len(s.Unparsed) }

// UnknownStatement is the zero value for statements this package could not
// classify; it carries only the raw, unparsed text and routes to nothing.
type UnknownStatement struct {
	Unparsed string
}

func (s *UnknownStatement) SchemaTb() (string, string)                         { return "", "" }
func (s *UnknownStatement) RenameTarget() (string, string)                     { return "", "" }
func (s *UnknownStatement) SplitToMulti() []Statement                          { return []Statement{s} }
func (s *UnknownStatement) Route(dstSchema, dstTb string) Statement            { return s }
func (s *UnknownStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }
func (s *UnknownStatement) ToSQL(d Dialect) string                            { return s.Unparsed }
func (s *UnknownStatement) SizeOf() int                                       { return stmtOverhead + len(s.Unparsed) }
