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

// SchemaTbPair is a (schema, table) pair, used by the multi-table variants.
type SchemaTbPair struct {
	Schema, Tb string
}

// DropMultiTableStatement is "DROP TABLE [IF EXISTS] <s1>.<t1> <s2>.<t2> ...".
// SchemaTb and RenameTarget both return ("", "") since the statement names
// more than one target; use SplitToMulti to obtain the individual targets.
type DropMultiTableStatement struct {
	SchemaTbs []SchemaTbPair
	IfExists  bool
	Unparsed  string
}

func (s *DropMultiTableStatement) SchemaTb() (string, string)     { return "", "" }
func (s *DropMultiTableStatement) RenameTarget() (string, string) { return "", "" }

func (s *DropMultiTableStatement) SplitToMulti() []Statement {
	out := make([]Statement, 0, len(s.SchemaTbs))
	for _, p := range s.SchemaTbs {
		out = append(out, &DropTableStatement{
			Schema: p.Schema, Tb: p.Tb, IfExists: s.IfExists, Unparsed: s.Unparsed,
		})
	}
	return out
}

// Route is a no-op: a statement naming multiple tables has no single
// target to rewrite. Callers must SplitToMulti first.
func (s *DropMultiTableStatement) Route(dstSchema, dstTb string) Statement            { return s }
func (s *DropMultiTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *DropMultiTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP TABLE")
	appendIfExists(&b, s.IfExists, false)
	for _, p := range s.SchemaTbs {
		appendTb(&b, d, p.Schema, p.Tb)
	}
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *DropMultiTableStatement) SizeOf() int {
	n := stmtOverhead + len(s.Unparsed)
	for _, p := range s.SchemaTbs {
		n += len(p.Schema) + len(p.Tb)
	}
	return n
}

// RenameMultiTableStatement is "RENAME TABLE <s1>.<t1> TO <ns1>.<nt1>, <s2>.<t2> TO <ns2>.<nt2>, ...".
type RenameMultiTableStatement struct {
	SchemaTbs    []SchemaTbPair
	NewSchemaTbs []SchemaTbPair
	Unparsed     string
}

func (s *RenameMultiTableStatement) SchemaTb() (string, string)     { return "", "" }
func (s *RenameMultiTableStatement) RenameTarget() (string, string) { return "", "" }

func (s *RenameMultiTableStatement) SplitToMulti() []Statement {
	n := len(s.SchemaTbs)
	if len(s.NewSchemaTbs) < n {
		n = len(s.NewSchemaTbs)
	}
	out := make([]Statement, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &RenameTableStatement{
			Schema: s.SchemaTbs[i].Schema, Tb: s.SchemaTbs[i].Tb,
			NewSchema: s.NewSchemaTbs[i].Schema, NewTb: s.NewSchemaTbs[i].Tb,
			Unparsed: s.Unparsed,
		})
	}
	return out
}

func (s *RenameMultiTableStatement) Route(dstSchema, dstTb string) Statement            { return s }
func (s *RenameMultiTableStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *RenameMultiTableStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("RENAME TABLE")
	n := len(s.SchemaTbs)
	if len(s.NewSchemaTbs) < n {
		n = len(s.NewSchemaTbs)
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		appendTb(&b, d, s.SchemaTbs[i].Schema, s.SchemaTbs[i].Tb)
		b.WriteString(" TO")
		appendTb(&b, d, s.NewSchemaTbs[i].Schema, s.NewSchemaTbs[i].Tb)
	}
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *RenameMultiTableStatement) SizeOf() int {
	n := stmtOverhead + len(s.Unparsed)
	for _, p := range s.SchemaTbs {
		n += len(p.Schema) + len(p.Tb)
	}
	for _, p := range s.NewSchemaTbs {
		n += len(p.Schema) + len(p.Tb)
	}
	return n
}

// PgDropMultiIndexStatement is "DROP INDEX [CONCURRENTLY] [IF EXISTS] <n1>,<n2>,...".
type PgDropMultiIndexStatement struct {
	IndexNames   []string
	IfExists     bool
	Concurrently bool
	Unparsed     string
}

func (s *PgDropMultiIndexStatement) SchemaTb() (string, string)     { return "", "" }
func (s *PgDropMultiIndexStatement) RenameTarget() (string, string) { return "", "" }

func (s *PgDropMultiIndexStatement) SplitToMulti() []Statement {
	out := make([]Statement, 0, len(s.IndexNames))
	for _, name := range s.IndexNames {
		out = append(out, &PgDropIndexStatement{
			IndexName: name, IfExists: s.IfExists, Concurrently: s.Concurrently, Unparsed: s.Unparsed,
		})
	}
	return out
}

func (s *PgDropMultiIndexStatement) Route(dstSchema, dstTb string) Statement            { return s }
func (s *PgDropMultiIndexStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *PgDropMultiIndexStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP INDEX")
	if s.Concurrently {
		b.WriteString(" CONCURRENTLY")
	}
	appendIfExists(&b, s.IfExists, false)
	escaped := make([]string, len(s.IndexNames))
	for i, name := range s.IndexNames {
		escaped[i] = d.EscapeIdentifier(name)
	}
	b.WriteByte(' ')
	b.WriteString(strings.Join(escaped, ","))
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *PgDropMultiIndexStatement) SizeOf() int {
	n := stmtOverhead + len(s.Unparsed)
	for _, name := range s.IndexNames {
		n += len(name)
	}
	return n
}
