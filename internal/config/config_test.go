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

package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSourceDefaultsToLocal(t *testing.T) {
	s, err := ParseSource("")
	if err != nil || s != SourceLocal {
		t.Fatalf("ParseSource(\"\") = %v, %v, want SourceLocal, nil", s, err)
	}
}

func TestParseSourceRejectsUnknown(t *testing.T) {
	if _, err := ParseSource("bogus"); err == nil {
		t.Fatal("expected an error for an unrecognized config source")
	}
}

func TestArgsValidateRequiresConfigPathForLocal(t *testing.T) {
	if err := (Args{Source: SourceLocal}).Validate(); err == nil {
		t.Fatal("expected an error when --config-path is missing for a local source")
	}
}

func TestArgsValidateRequiresNacosFields(t *testing.T) {
	if err := (Args{Source: SourceNacos, NacosDataID: "d"}).Validate(); err == nil {
		t.Fatal("expected an error when --nacos-address is missing")
	}
	if err := (Args{Source: SourceNacos, NacosAddress: "a"}).Validate(); err == nil {
		t.Fatal("expected an error when --nacos-dataid is missing")
	}
}

func TestLoadLocalReadsFileVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "task.ini")
	content := "[extractor]\nurl=mysql://x\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Load(context.Background(), Args{Source: SourceLocal, ConfigPath: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != content {
		t.Fatalf("Load() = %q, want %q", got, content)
	}
}

func TestFilterConfigSectionsKeepsOnlyAllowlist(t *testing.T) {
	in := "[extractor]\nurl=mysql://x\n\n[secrets]\ntoken=abc\n\n[sinker]\nhost=127.0.0.1\n"
	out, err := filterConfigSections(in)
	if err != nil {
		t.Fatalf("filterConfigSections returned error: %v", err)
	}
	if strings.Contains(out, "secrets") || strings.Contains(out, "token") {
		t.Fatalf("filtered output still contains a disallowed section: %q", out)
	}
	if !strings.Contains(out, "[extractor]") || !strings.Contains(out, "url=mysql://x") {
		t.Fatalf("filtered output dropped an allowed section: %q", out)
	}
	if !strings.Contains(out, "[sinker]") {
		t.Fatalf("filtered output dropped an allowed section: %q", out)
	}
}

func TestLoadNacosFetchesAndCaches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[runtime]\nworkers=4\n"))
	}))
	defer srv.Close()

	t.Setenv(envNacosCacheDir, t.TempDir())

	out, err := Load(context.Background(), Args{
		Source:       SourceNacos,
		NacosAddress: srv.URL,
		NacosDataID:  "task1",
		NacosGroup:   DefaultNacosGroup,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.Contains(out, "[runtime]") || !strings.Contains(out, "workers=4") {
		t.Fatalf("Load() = %q, want it to contain the runtime section", out)
	}
}

func TestLoadNacosFallsBackToCacheOnFetchFailure(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envNacosCacheDir, dir)

	address, dataID, group := "http://127.0.0.1:0", "task1", DefaultNacosGroup
	if err := saveCache(address, dataID, group, "[runtime]\nworkers=8\n"); err != nil {
		t.Fatalf("saveCache: %v", err)
	}

	out, err := Load(context.Background(), Args{
		Source:       SourceNacos,
		NacosAddress: address,
		NacosDataID:  dataID,
		NacosGroup:   group,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.Contains(out, "workers=8") {
		t.Fatalf("Load() = %q, want cached content on fetch failure", out)
	}
}

func TestCacheKeySanitizesUnsafeChars(t *testing.T) {
	key := cacheKey("http://nacos:8848", "task?id=1", "GROUP A")
	for _, ch := range []string{":", "/", "?", "=", " "} {
		if strings.Contains(key, ch) {
			t.Fatalf("cacheKey() = %q, still contains unsafe char %q", key, ch)
		}
	}
}
