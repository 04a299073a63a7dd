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

// Package ddl models DDL statements as a closed set of concrete types,
// with operations to split multi-table variants, extract their target
// schema/table, rewrite them for routing, and reconstruct SQL text.
package ddl

import "strings"

// Dialect selects the identifier-quoting and keyword conventions used by
// ToSQL and EscapeIdentifier.
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
)

// String renders the dialect name used in DDL payload envelopes.
func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

// EscapeIdentifier quotes id using the dialect's identifier delimiter,
// doubling any embedded delimiter the way both MySQL and Postgres require.
func (d Dialect) EscapeIdentifier(id string) string {
	switch d {
	case Postgres:
		return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
	default:
		return "`" + strings.ReplaceAll(id, "`", "``") + "`"
	}
}

// appendTb writes "schema.tb" when schema is non-empty, otherwise bare
// "tb", space-prefixed, escaping each identifier with the dialect's
// quoting. Mirrors the original's append_tb helper.
func appendTb(b *strings.Builder, d Dialect, schema, tb string) {
	b.WriteByte(' ')
	if schema != "" {
		b.WriteString(d.EscapeIdentifier(schema))
		b.WriteByte('.')
	}
	b.WriteString(d.EscapeIdentifier(tb))
}

// appendIdentifier writes a single dialect-escaped identifier,
// space-prefixed (a bare database/schema name, or an index name).
func appendIdentifier(b *strings.Builder, d Dialect, id string) {
	b.WriteByte(' ')
	b.WriteString(d.EscapeIdentifier(id))
}

// appendOptStr writes " <s>" when s is non-empty.
func appendOptStr(b *strings.Builder, s string) {
	if s != "" {
		b.WriteByte(' ')
		b.WriteString(s)
	}
}

// appendIfExists writes " IF EXISTS" / " IF NOT EXISTS" when flag is set.
func appendIfExists(b *strings.Builder, flag bool, notExists bool) {
	if !flag {
		return
	}
	if notExists {
		b.WriteString(" IF NOT EXISTS")
	} else {
		b.WriteString(" IF EXISTS")
	}
}

// appendUnparsed writes a single leading space followed by s, when s is
// non-empty, preserving any trailer the extractor could not structure.
func appendUnparsed(b *strings.Builder, s string) {
	if s != "" {
		b.WriteByte(' ')
		b.WriteString(s)
	}
}
