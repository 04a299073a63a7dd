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

package avro

import (
	"context"
	"testing"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/meta"
)

type fakeSource struct{ tm *meta.TableMeta }

func (s *fakeSource) FetchTableMeta(ctx context.Context, schema, table string) (*meta.TableMeta, error) {
	return s.tm, nil
}

func newTestEncoder() *Encoder {
	src := &fakeSource{tm: &meta.TableMeta{
		Cols:   []meta.ColData{{Name: "id", OriginType: "bigint"}, {Name: "name", OriginType: "varchar(64)"}},
		KeyMap: map[string][]string{"primary": {"id"}},
	}}
	return New(meta.NewCachingManager(src))
}

func TestRowValueRoundTrips(t *testing.T) {
	e := newTestEncoder()
	evt := &cdctype.RowEvent{
		Schema: "db1", Table: "t1", Kind: cdctype.Insert,
		After: map[string]cdctype.ColValue{
			"id":   cdctype.NewInt64(cdctype.KInt64, 42),
			"name": cdctype.NewString(cdctype.KString, "alice"),
		},
	}
	raw, err := e.RowValue(context.Background(), evt)
	if err != nil {
		t.Fatalf("RowValue() error = %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("RowValue() returned empty payload")
	}

	codec, err := e.valueCodec("db1", "t1", &meta.TableMeta{
		Cols: []meta.ColData{{Name: "id"}, {Name: "name"}},
	})
	if err != nil {
		t.Fatalf("valueCodec() error = %v", err)
	}
	native, _, err := codec.NativeFromBinary(raw)
	if err != nil {
		t.Fatalf("NativeFromBinary() error = %v", err)
	}
	rec, ok := native.(map[string]any)
	if !ok {
		t.Fatalf("decoded native is %T, want map[string]any", native)
	}
	if rec["__op"] != "INSERT" {
		t.Fatalf("__op = %v, want INSERT", rec["__op"])
	}
}

func TestRowKeyUsesPrimaryKeyTuple(t *testing.T) {
	e := newTestEncoder()
	evt := &cdctype.RowEvent{
		Schema: "db1", Table: "t1", Kind: cdctype.Insert,
		After: map[string]cdctype.ColValue{"id": cdctype.NewInt64(cdctype.KInt64, 42)},
	}
	raw, err := e.RowKey(context.Background(), evt)
	if err != nil {
		t.Fatalf("RowKey() error = %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("RowKey() returned empty payload")
	}
}

func TestRefreshMetaDropsCachedCodec(t *testing.T) {
	e := newTestEncoder()
	ctx := context.Background()
	evt := &cdctype.RowEvent{
		Schema: "db1", Table: "t1", Kind: cdctype.Insert,
		After: map[string]cdctype.ColValue{"id": cdctype.NewInt64(cdctype.KInt64, 1), "name": cdctype.NewString(cdctype.KString, "a")},
	}
	if _, err := e.RowValue(ctx, evt); err != nil {
		t.Fatalf("RowValue() error = %v", err)
	}
	if len(e.codecs) != 1 {
		t.Fatalf("codecs cache size = %d, want 1", len(e.codecs))
	}
	e.RefreshMeta("db1", "t1")
	if len(e.codecs) != 0 {
		t.Fatalf("codecs cache size after RefreshMeta = %d, want 0", len(e.codecs))
	}
}
