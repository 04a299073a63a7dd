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

package meta

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/ddl"
)

type countingSource struct {
	fetches atomic.Int64
}

func (s *countingSource) FetchTableMeta(ctx context.Context, schema, table string) (*TableMeta, error) {
	s.fetches.Add(1)
	return &TableMeta{
		Cols:          []ColData{{Name: "id", OriginType: "bigint"}},
		ColOriginType: map[string]string{"id": "bigint"},
		KeyMap:        map[string][]string{"primary": {"id"}},
	}, nil
}

func TestGetTableMetaCachesAfterFirstFetch(t *testing.T) {
	src := &countingSource{}
	m := NewCachingManager(src)
	ctx := context.Background()

	if _, err := m.GetTableMeta(ctx, "db1", "t1"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if _, err := m.GetTableMeta(ctx, "db1", "t1"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if got := src.fetches.Load(); got != 1 {
		t.Fatalf("fetches = %d, want 1", got)
	}
}

func TestGetTableMetaCoalescesConcurrentMisses(t *testing.T) {
	src := &countingSource{}
	m := NewCachingManager(src)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.GetTableMeta(ctx, "db1", "hot"); err != nil {
				t.Errorf("GetTableMeta() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if got := src.fetches.Load(); got != 1 {
		t.Fatalf("fetches = %d, want 1 (single-flight coalescing)", got)
	}
}

func TestInvalidateByDDLDropsCacheEntry(t *testing.T) {
	src := &countingSource{}
	m := NewCachingManager(src)
	ctx := context.Background()

	if _, err := m.GetTableMeta(ctx, "db1", "t1"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	m.InvalidateByDDL(cdctype.DdlEvent{
		Statement: &ddl.MysqlAlterTableStatement{Schema: "db1", Tb: "t1"},
	})
	if _, err := m.GetTableMeta(ctx, "db1", "t1"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if got := src.fetches.Load(); got != 2 {
		t.Fatalf("fetches = %d, want 2 after invalidation", got)
	}
}

func TestInvalidateByDDLOnRenameDropsBothEntries(t *testing.T) {
	src := &countingSource{}
	m := NewCachingManager(src)
	ctx := context.Background()

	if _, err := m.GetTableMeta(ctx, "db1", "old"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if _, err := m.GetTableMeta(ctx, "db1", "new"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if got := src.fetches.Load(); got != 2 {
		t.Fatalf("fetches = %d, want 2", got)
	}

	m.InvalidateByDDL(cdctype.DdlEvent{
		Statement: &ddl.RenameTableStatement{Schema: "db1", Tb: "old", NewSchema: "db1", NewTb: "new"},
	})

	if _, err := m.GetTableMeta(ctx, "db1", "old"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if _, err := m.GetTableMeta(ctx, "db1", "new"); err != nil {
		t.Fatalf("GetTableMeta() error = %v", err)
	}
	if got := src.fetches.Load(); got != 4 {
		t.Fatalf("fetches = %d, want 4 after rename invalidation", got)
	}
}
