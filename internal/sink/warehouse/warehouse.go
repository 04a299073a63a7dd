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

// Package warehouse bulk-loads row batches into an analytic store over its
// HTTP stream-load endpoint, converting column values into the plain JSON
// shapes the loader expects along the way.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/latency"
	"github.com/cockroachdb/dtcore/internal/meta"
	"github.com/cockroachdb/dtcore/internal/metrics"
)

// Dialect selects which warehouse's header/delete conventions a Sinker
// speaks; the stream-load wire protocol itself is shared.
type Dialect int

const (
	// StarRocks recognizes a dedicated sign column and the __op column
	// header for row-level delete.
	StarRocks Dialect = iota
	// Doris uses a merge_type header instead of a per-row sign column.
	Doris
)

const (
	signColName          = "_sign_"
	syncTimestampColName = "_sync_timestamp_"
)

// Sinker bulk-loads batches sharing (schema, table) into a warehouse's
// stream-load endpoint.
type Sinker struct {
	id       string
	dialect  Dialect
	host     string
	port     string
	username string
	password string
	client   *http.Client
	meta     meta.Manager
	latency  latency.Tracker

	mu            sync.Mutex
	syncTimestamp int64
	now           func() time.Time
}

// Option configures a Sinker at construction.
type Option func(*Sinker)

// WithHTTPClient overrides the default http.Client, used by tests to
// point at an httptest.Server.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sinker) { s.client = c }
}

// WithClock overrides the wall clock used for sync_timestamp, used by
// tests that need deterministic monotonic sequencing.
func WithClock(now func() time.Time) Option {
	return func(s *Sinker) { s.now = now }
}

// New builds a warehouse Sinker targeting host:port with basic-auth
// credentials username/password.
func New(id string, dialect Dialect, host, port, username, password string, m meta.Manager, opts ...Option) *Sinker {
	s := &Sinker{
		id:       id,
		dialect:  dialect,
		host:     host,
		port:     port,
		username: username,
		password: password,
		meta:     m,
		client:   &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the sinker's identity.
func (s *Sinker) ID() string { return s.id }

// Close is a no-op: the sinker holds no resources beyond an http.Client.
func (s *Sinker) Close() error { return nil }

// SinkRaw is unsupported: a warehouse table has no notion of a raw,
// non-row payload.
func (s *Sinker) SinkRaw(ctx context.Context, items []cdctype.DtItem, serial bool) error {
	return errors.New("warehouse sinker: SinkRaw is not supported")
}

// SinkDML loads every row item sharing (schema, table) as a single
// stream-load request. Mixed-table batches are not expected from an
// upstream partitioner and are rejected.
func (s *Sinker) SinkDML(ctx context.Context, items []cdctype.DtItem) error {
	rows := make([]*cdctype.RowEvent, 0, len(items))
	for _, it := range items {
		if it.Data.Kind != cdctype.KindDml {
			continue
		}
		rows = append(rows, it.Data.Row)
	}
	if len(rows) == 0 {
		return nil
	}

	schema, table := rows[0].Schema, rows[0].Table
	for _, r := range rows[1:] {
		if r.Schema != schema || r.Table != table {
			return errors.Errorf("warehouse sinker: mixed-table batch (%s.%s and %s.%s)", schema, table, r.Schema, r.Table)
		}
	}

	start := time.Now()
	tm, err := s.meta.GetTableMeta(ctx, schema, table)
	if err != nil {
		metrics.FlushErrors.WithLabelValues("warehouse", schema, table).Inc()
		return errors.WithStack(err)
	}

	ts := s.bumpSyncTimestamp()

	loadRows := make([]map[string]cdctype.ColValue, 0, len(rows))
	for _, r := range rows {
		loadRows = append(loadRows, s.buildLoadRow(r, tm, ts))
	}

	op := s.deleteOp(rows[0].Kind, tm)
	body, err := json.Marshal(loadRows)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := s.streamLoad(ctx, schema, table, op, body); err != nil {
		metrics.FlushErrors.WithLabelValues("warehouse", schema, table).Inc()
		return err
	}

	s.latency.Observe(time.Since(start))
	metrics.FlushDurations.WithLabelValues("warehouse", schema, table).Observe(time.Since(start).Seconds())
	metrics.FlushRecords.WithLabelValues("warehouse", schema, table).Add(float64(len(rows)))
	metrics.FlushBytes.WithLabelValues("warehouse", schema, table).Add(float64(len(body)))
	return nil
}

// bumpSyncTimestamp advances the per-sinker monotonic sequence so
// successive batches are totally ordered even when the wall clock does
// not advance between them.
func (s *Sinker) bumpSyncTimestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UnixMilli()
	if now > s.syncTimestamp+1 {
		s.syncTimestamp = now
	} else {
		s.syncTimestamp++
	}
	return s.syncTimestamp
}

func (s *Sinker) buildLoadRow(r *cdctype.RowEvent, tm *meta.TableMeta, ts int64) map[string]cdctype.ColValue {
	var src map[string]cdctype.ColValue
	if r.Kind == cdctype.Delete {
		src = r.Before
	} else {
		src = r.After
	}

	out := make(map[string]cdctype.ColValue, len(src)+2)
	for col, v := range src {
		out[col] = convertColValue(v, tm, col)
	}

	if r.Kind == cdctype.Delete && s.dialect == StarRocks {
		out[signColName] = cdctype.NewUint64(cdctype.KBit, 1)
	}
	if s.dialect == StarRocks {
		out[syncTimestampColName] = cdctype.NewInt64(cdctype.KInt64, ts)
	}
	return out
}

// convertColValue applies the stream-load-specific conversions: a JSON
// column whose value arrived as a string gets promoted to structured
// JSON when that string parses; Bytes/RawString are rendered as text;
// Bit is widened to a signed 64-bit integer.
func convertColValue(v cdctype.ColValue, tm *meta.TableMeta, col string) cdctype.ColValue {
	if originType, ok := tm.ColOriginType[col]; ok && isJSONType(originType) {
		if v.Kind == cdctype.KJSONString || v.Kind == cdctype.KString {
			var probe any
			if jsonErr := json.Unmarshal([]byte(v.Str), &probe); jsonErr == nil {
				return cdctype.NewJSONValue(probe)
			}
		}
	}

	switch v.Kind {
	case cdctype.KBytes, cdctype.KRawString:
		return cdctype.NewString(cdctype.KString, string(v.Byt))
	case cdctype.KBit:
		return cdctype.NewInt64(cdctype.KInt64, int64(v.U64))
	default:
		return v
	}
}

func isJSONType(originType string) bool {
	switch originType {
	case "json", "JSON":
		return true
	default:
		return false
	}
}

// deleteOp returns the header value signaling a row-level delete, or ""
// when the batch should be treated as an upsert.
func (s *Sinker) deleteOp(firstKind cdctype.RowKind, tm *meta.TableMeta) string {
	if firstKind != cdctype.Delete {
		return ""
	}
	switch s.dialect {
	case StarRocks:
		if _, hasSignCol := tm.ColOriginType[signColName]; hasSignCol {
			return ""
		}
		return "delete"
	default:
		return "delete"
	}
}

func (s *Sinker) streamLoad(ctx context.Context, schema, table, op string, body []byte) error {
	url := fmt.Sprintf("http://%s:%s/api/%s/%s/_stream_load", s.host, s.port, schema, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("Expect", "100-continue")
	req.Header.Set("format", "json")
	req.Header.Set("strip_outer_array", "true")
	req.Header.Set("timezone", "UTC")
	if op != "" {
		switch s.dialect {
		case StarRocks:
			req.Header.Set("columns", fmt.Sprintf("__op='%s'", op))
		case Doris:
			req.Header.Set("merge_type", op)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "stream load request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading stream load response")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("stream load request failed, status_code: %d, response: %s", resp.StatusCode, respBody)
	}

	var parsed struct {
		Status string
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return errors.Wrapf(err, "parsing stream load response: %s", respBody)
	}
	if parsed.Status != "Success" {
		return errors.Errorf("stream load request failed, status_code: %d, load_result: %s", resp.StatusCode, respBody)
	}
	return nil
}
