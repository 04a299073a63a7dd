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

// Package meta is the table-metadata facade consumed by encoders and
// sinkers: column list, origin type strings (for jdbcType mapping), and
// primary-key membership, cached per table and invalidated by DDL.
package meta

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"golang.org/x/sync/singleflight"
)

// ColData describes a single column's name and the dialect's own type
// string (e.g. "varchar(255)", "bigint unsigned"), used verbatim by the
// CloudCanal encoder's jdbcType string-match table.
type ColData struct {
	Name       string
	OriginType string
}

// TableMeta is the metadata a single table's encoding and routing decisions
// depend on.
type TableMeta struct {
	Cols          []ColData
	ColOriginType map[string]string // column name -> origin type string
	KeyMap        map[string][]string // key name ("primary") -> ordered column names
}

// Source is the opaque collaborator that reads fresh metadata from the
// upstream dialect (MySQL information_schema, Postgres catalogs, ...).
// Its implementation is outside this repository's scope; internal/pool
// supplies the connection pools a real Source would be built on.
type Source interface {
	FetchTableMeta(ctx context.Context, schema, table string) (*TableMeta, error)
}

// Manager is the facade every encoder and sinker depends on.
type Manager interface {
	GetTableMeta(ctx context.Context, schema, table string) (*TableMeta, error)
	InvalidateByDDL(evt cdctype.DdlEvent)
}

func cacheKey(schema, table string) string {
	return schema + "." + table
}

// CachingManager wraps a Source with an unbounded-by-design cache (table
// counts are small relative to row volume, so no eviction policy is
// needed) and single-flight coalescing, so concurrent encoders resolving
// the same cold table share one Source fetch rather than stampeding it.
type CachingManager struct {
	source Source
	group  singleflight.Group
	cache  sync.Map
}

// NewCachingManager constructs a CachingManager backed by source.
func NewCachingManager(source Source) *CachingManager {
	return &CachingManager{source: source}
}

// GetTableMeta returns the cached TableMeta for (schema, table), fetching
// it from the underlying Source at most once per concurrent miss.
func (m *CachingManager) GetTableMeta(ctx context.Context, schema, table string) (*TableMeta, error) {
	key := cacheKey(schema, table)
	if v, ok := m.cache.Load(key); ok {
		return v.(*TableMeta), nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.cache.Load(key); ok {
			return v, nil
		}
		tm, err := m.source.FetchTableMeta(ctx, schema, table)
		if err != nil {
			return nil, fmt.Errorf("meta: fetch %s.%s: %w", schema, table, err)
		}
		m.cache.Store(key, tm)
		return tm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TableMeta), nil
}

// InvalidateByDDL drops the cache entry for the table(s) a DDL statement
// targets, so the next GetTableMeta call re-fetches. Multi-table
// statements are split first so every affected table is invalidated.
// Statements with no single target (Unknown, or a multi-variant that
// could not be split further) invalidate nothing: there is no schema/table
// to key the cache entry on.
func (m *CachingManager) InvalidateByDDL(evt cdctype.DdlEvent) {
	if evt.Statement == nil {
		return
	}
	for _, part := range evt.Statement.SplitToMulti() {
		schema, tb := part.SchemaTb()
		if schema == "" && tb == "" {
			continue
		}
		m.cache.Delete(cacheKey(schema, tb))
		if newSchema, newTb := part.RenameTarget(); newSchema != "" || newTb != "" {
			m.cache.Delete(cacheKey(newSchema, newTb))
		}
	}
}
