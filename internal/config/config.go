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

// Package config loads task configuration as an INI document, either from
// a local file or from a Nacos config server, and filters it down to the
// sections a task is allowed to carry when it comes from a shared server.
package config

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const (
	envNacosCacheDir     = "NACOS_CACHE_DIR"
	envNacosCacheTTLSecs = "NACOS_CACHE_TTL_SECS"

	defaultNacosCacheDir = ".nacos_cache"
	defaultNacosCacheTTL = 300 * time.Second

	// DefaultNacosGroup is used when --nacos-group is not given.
	DefaultNacosGroup = "DEFAULT_GROUP"
)

// allowedSections are the only INI sections that survive when a task's
// configuration is sourced from a config server rather than a local file.
var allowedSections = []string{
	"extractor", "sinker", "pipeline", "parallelizer", "runtime", "filter",
	"router", "resumer", "data_marker", "processor", "meta_center",
	"metrics", "precheck",
}

// Source distinguishes where task configuration is read from.
type Source int

const (
	// SourceLocal reads the INI document straight off disk.
	SourceLocal Source = iota
	// SourceNacos fetches it from a Nacos config server, with a local
	// cache it falls back to when the server is unreachable.
	SourceNacos
)

// ParseSource maps a --config-source flag value to a Source.
func ParseSource(s string) (Source, error) {
	switch s {
	case "", "local":
		return SourceLocal, nil
	case "nacos":
		return SourceNacos, nil
	default:
		return 0, errors.Errorf("--config-source must be 'local' or 'nacos', got %q", s)
	}
}

// Args are the resolved, validated startup arguments that determine where
// and how task configuration is loaded from.
type Args struct {
	Source       Source
	ConfigPath   string
	NacosAddress string
	NacosDataID  string
	NacosGroup   string
}

// Validate checks that the combination of fields required by Source is
// present, returning a descriptive error if not.
func (a Args) Validate() error {
	switch a.Source {
	case SourceLocal:
		if a.ConfigPath == "" {
			return errors.New("--config-path is required when --config-source=local")
		}
	case SourceNacos:
		if a.NacosAddress == "" {
			return errors.New("--nacos-address is required when --config-source=nacos")
		}
		if a.NacosDataID == "" {
			return errors.New("--nacos-dataid is required when --config-source=nacos")
		}
	default:
		return errors.Errorf("unknown config source %v", a.Source)
	}
	return nil
}

// Load resolves Args into the final INI document a task runs against:
// the raw local file contents, or a Nacos fetch filtered to the allowed
// sections (falling back to the last successful fetch when Nacos cannot
// be reached).
func Load(ctx context.Context, args Args) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	switch args.Source {
	case SourceLocal:
		b, err := os.ReadFile(args.ConfigPath)
		if err != nil {
			return "", errors.Wrapf(err, "reading ini file %q", args.ConfigPath)
		}
		return string(b), nil
	case SourceNacos:
		return loadNacos(ctx, args.NacosAddress, args.NacosDataID, args.NacosGroup)
	default:
		return "", errors.Errorf("unknown config source %v", args.Source)
	}
}

func loadNacos(ctx context.Context, address, dataID, group string) (string, error) {
	cached, haveCache := loadCache(address, dataID, group)

	fresh, err := fetchNacos(ctx, address, dataID, group)
	if err != nil {
		if haveCache {
			logrus.WithError(err).Warn("fetch nacos config failed, using cached config")
			return filterConfigSections(cached)
		}
		return "", errors.Wrap(err, "fetching nacos config with no cache to fall back to")
	}

	if err := saveCache(address, dataID, group, fresh); err != nil {
		logrus.WithError(err).Warn("failed to write nacos config cache")
	}
	return filterConfigSections(fresh)
}

func fetchNacos(ctx context.Context, address, dataID, group string) (string, error) {
	u := strings.TrimRight(address, "/") + "/nacos/v1/cs/configs?" + url.Values{
		"dataId": {dataID},
		"group":  {group},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", errors.WithStack(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "requesting nacos config")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading nacos response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("nacos returned non-success status %d", resp.StatusCode)
	}
	return string(body), nil
}

func cacheDir() string {
	if d := os.Getenv(envNacosCacheDir); d != "" {
		return d
	}
	return defaultNacosCacheDir
}

func cacheTTL() time.Duration {
	if s := os.Getenv(envNacosCacheTTLSecs); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultNacosCacheTTL
}

// cacheKey builds a filesystem-safe cache file name out of the address,
// data ID, and group that identify a Nacos config.
func cacheKey(address, dataID, group string) string {
	key := address + "_" + dataID + "_" + group
	for _, ch := range []string{":", "/", "\\", "?", "&", "=", "#", " "} {
		key = strings.ReplaceAll(key, ch, "_")
	}
	return key
}

func cachePath(address, dataID, group string) string {
	return filepath.Join(cacheDir(), cacheKey(address, dataID, group))
}

// loadCache returns the cached config content regardless of whether its
// TTL has expired: a stale cache is still a better fallback than nothing
// when the config server is unreachable.
func loadCache(address, dataID, group string) (string, bool) {
	path := cachePath(address, dataID, group)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if age := time.Since(info.ModTime()); age > cacheTTL() {
		logrus.WithField("age", age).Debug("nacos config cache entry is stale, using it anyway")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func saveCache(address, dataID, group, content string) error {
	dir := cacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating nacos cache dir")
	}
	path := cachePath(address, dataID, group)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "writing nacos cache file")
	}
	return nil
}

// filterConfigSections drops every INI section not in allowedSections,
// the policy applied to configuration that comes from a shared server.
func filterConfigSections(content string) (string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, []byte(content))
	if err != nil {
		return "", errors.Wrap(err, "parsing ini content")
	}

	var b strings.Builder
	for _, name := range allowedSections {
		if !f.HasSection(name) {
			continue
		}
		sec := f.Section(name)
		b.WriteString("[" + name + "]\n")
		for _, key := range sec.Keys() {
			b.WriteString(key.Name() + "=" + key.Value() + "\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
