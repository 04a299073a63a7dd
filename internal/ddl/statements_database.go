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

// CreateDatabaseStatement is "CREATE DATABASE [IF NOT EXISTS] <db> <unparsed>".
type CreateDatabaseStatement struct {
	Db          string
	IfNotExists bool
	Unparsed    string
}

func (s *CreateDatabaseStatement) SchemaTb() (string, string)     { return "", "" }
func (s *CreateDatabaseStatement) RenameTarget() (string, string) { return "", "" }
func (s *CreateDatabaseStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *CreateDatabaseStatement) Route(dstSchema, dstTb string) Statement {
	return &CreateDatabaseStatement{Db: routeSchema(s.Db, dstSchema), IfNotExists: s.IfNotExists, Unparsed: s.Unparsed}
}
func (s *CreateDatabaseStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *CreateDatabaseStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE DATABASE")
	appendIfExists(&b, s.IfNotExists, true)
	appendIdentifier(&b, d, s.Db)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *CreateDatabaseStatement) SizeOf() int { return stmtOverhead + len(s.Db) + len(s.Unparsed) }

// DropDatabaseStatement is "DROP DATABASE [IF EXISTS] <db> <unparsed>".
type DropDatabaseStatement struct {
	Db       string
	IfExists bool
	Unparsed string
}

func (s *DropDatabaseStatement) SchemaTb() (string, string)     { return "", "" }
func (s *DropDatabaseStatement) RenameTarget() (string, string) { return "", "" }
func (s *DropDatabaseStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *DropDatabaseStatement) Route(dstSchema, dstTb string) Statement {
	return &DropDatabaseStatement{Db: routeSchema(s.Db, dstSchema), IfExists: s.IfExists, Unparsed: s.Unparsed}
}
func (s *DropDatabaseStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *DropDatabaseStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP DATABASE")
	appendIfExists(&b, s.IfExists, false)
	appendIdentifier(&b, d, s.Db)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *DropDatabaseStatement) SizeOf() int { return stmtOverhead + len(s.Db) + len(s.Unparsed) }

// AlterDatabaseStatement is "ALTER DATABASE <db> <unparsed>".
type AlterDatabaseStatement struct {
	Db       string
	Unparsed string
}

func (s *AlterDatabaseStatement) SchemaTb() (string, string)     { return "", "" }
func (s *AlterDatabaseStatement) RenameTarget() (string, string) { return "", "" }
func (s *AlterDatabaseStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *AlterDatabaseStatement) Route(dstSchema, dstTb string) Statement {
	return &AlterDatabaseStatement{Db: routeSchema(s.Db, dstSchema), Unparsed: s.Unparsed}
}
func (s *AlterDatabaseStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *AlterDatabaseStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER DATABASE")
	appendIdentifier(&b, d, s.Db)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *AlterDatabaseStatement) SizeOf() int { return stmtOverhead + len(s.Db) + len(s.Unparsed) }

// CreateSchemaStatement is "CREATE SCHEMA [IF NOT EXISTS] <schema> <unparsed>".
type CreateSchemaStatement struct {
	Schema      string
	IfNotExists bool
	Unparsed    string
}

func (s *CreateSchemaStatement) SchemaTb() (string, string)     { return "", "" }
func (s *CreateSchemaStatement) RenameTarget() (string, string) { return "", "" }
func (s *CreateSchemaStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *CreateSchemaStatement) Route(dstSchema, dstTb string) Statement {
	return &CreateSchemaStatement{Schema: routeSchema(s.Schema, dstSchema), IfNotExists: s.IfNotExists, Unparsed: s.Unparsed}
}
func (s *CreateSchemaStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *CreateSchemaStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE SCHEMA")
	appendIfExists(&b, s.IfNotExists, true)
	appendIdentifier(&b, d, s.Schema)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *CreateSchemaStatement) SizeOf() int {
	return stmtOverhead + len(s.Schema) + len(s.Unparsed)
}

// DropSchemaStatement is "DROP SCHEMA [IF EXISTS] <schema> <unparsed>".
type DropSchemaStatement struct {
	Schema   string
	IfExists bool
	Unparsed string
}

func (s *DropSchemaStatement) SchemaTb() (string, string)     { return "", "" }
func (s *DropSchemaStatement) RenameTarget() (string, string) { return "", "" }
func (s *DropSchemaStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *DropSchemaStatement) Route(dstSchema, dstTb string) Statement {
	return &DropSchemaStatement{Schema: routeSchema(s.Schema, dstSchema), IfExists: s.IfExists, Unparsed: s.Unparsed}
}
func (s *DropSchemaStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *DropSchemaStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("DROP SCHEMA")
	appendIfExists(&b, s.IfExists, false)
	appendIdentifier(&b, d, s.Schema)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *DropSchemaStatement) SizeOf() int { return stmtOverhead + len(s.Schema) + len(s.Unparsed) }

// AlterSchemaStatement is "ALTER SCHEMA <schema> <unparsed>".
type AlterSchemaStatement struct {
	Schema   string
	Unparsed string
}

func (s *AlterSchemaStatement) SchemaTb() (string, string)     { return "", "" }
func (s *AlterSchemaStatement) RenameTarget() (string, string) { return "", "" }
func (s *AlterSchemaStatement) SplitToMulti() []Statement      { return []Statement{s} }

func (s *AlterSchemaStatement) Route(dstSchema, dstTb string) Statement {
	return &AlterSchemaStatement{Schema: routeSchema(s.Schema, dstSchema), Unparsed: s.Unparsed}
}
func (s *AlterSchemaStatement) RouteRenameTable(dstSchema, dstTb string) Statement { return s }

func (s *AlterSchemaStatement) ToSQL(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER SCHEMA")
	appendIdentifier(&b, d, s.Schema)
	appendUnparsed(&b, s.Unparsed)
	return b.String()
}

func (s *AlterSchemaStatement) SizeOf() int { return stmtOverhead + len(s.Schema) + len(s.Unparsed) }
