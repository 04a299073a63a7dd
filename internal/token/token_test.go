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

package token

import (
	"reflect"
	"testing"
)

func TestTokenizeEmojiConfig(t *testing.T) {
	p := NewParser(MySQL)
	got := p.Tokenize(`ZADD key 2 val_2_中文 3 "val_3_  😀"`)
	want := []string{"ZADD", "key", "2", "val_2_中文", "3", `"val_3_  😀"`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenizeRegexEscape(t *testing.T) {
	p := NewParser(MySQL)
	got := p.Tokenize(`db1.r#^tbl_[0-9]+#,db2.t2`)
	want := []string{"db1.r#^tbl_[0-9]+#", "db2.t2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenizeRegexEscapeProtectsEmbeddedSpace(t *testing.T) {
	p := NewParser(MySQL)
	got := p.Tokenize(`r#^tbl [0-9]+#,db2.t2`)
	want := []string{"r#^tbl [0-9]+#", "db2.t2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenizeBacktickQuotedProtectsEmbeddedSpace(t *testing.T) {
	p := NewParser(MySQL)
	got := p.Tokenize("`db 1`,db2.tb2")
	want := []string{"`db 1`", "db2.tb2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestParseConfigRejectsInvalidToken(t *testing.T) {
	p := NewParser(Postgres)
	_, err := p.ParseConfig("db1.tb1,!!!")
	if err == nil {
		t.Fatal("expected ConfigError for invalid token")
	}
	var cfgErr *ConfigError
	if !errorsAs(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Token != "!!!" {
		t.Fatalf("ConfigError.Token = %q, want %q", cfgErr.Token, "!!!")
	}
}

func errorsAs(err error, target **ConfigError) bool {
	if ce, ok := err.(*ConfigError); ok {
		*target = ce
		return true
	}
	return false
}

func TestParseConfigAcceptsWildcard(t *testing.T) {
	p := NewParser(MySQL)
	toks, err := p.ParseConfig("db1.*,db2.tb2")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	want := []string{"db1.*", "db2.tb2"}
	if !reflect.DeepEqual(toks, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", toks, want)
	}
}

func TestTokenizeMysqlFilterConfig(t *testing.T) {
	p := &Parser{Delimiters: []rune{'.', ','}, EscapePairs: map[rune]rune{'`': '`'}, Dialect: MySQL}
	config := "db_1.tb_1,`db.2`.`tb.2`,`db\"3`.tb_3,db_4.`tb\"4`,db_5.*,`db.6`.*,db_7*.*,`db.8*`.*,*.*,`*`.`*`,r#.*#.r#.?#,`r#.*#`.`r#.?#`"
	got := p.Tokenize(config)
	want := []string{
		"db_1", "tb_1", "`db.2`", "`tb.2`", "`db\"3`", "tb_3",
		"db_4", "`tb\"4`", "db_5", "*", "`db.6`", "*",
		"db_7*", "*", "`db.8*`", "*", "*", "*",
		"`*`", "`*`", "r#.*#", "r#.?#", "`r#.*#`", "`r#.?#`",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenizeMysqlRouterConfig(t *testing.T) {
	p := &Parser{Delimiters: []rune{'.', ',', ':'}, EscapePairs: map[rune]rune{'`': '`'}, Dialect: MySQL}
	config := "db_1.tb_1:`db.2`.`tb.2`,`db\"3`.tb_3:db_4.`tb\"4`"
	got := p.Tokenize(config)
	want := []string{"db_1", "tb_1", "`db.2`", "`tb.2`", "`db\"3`", "tb_3", "db_4", "`tb\"4`"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenizePgFilterConfig(t *testing.T) {
	p := &Parser{Delimiters: []rune{'.', ','}, EscapePairs: map[rune]rune{'"': '"'}, Dialect: Postgres}
	config := "db_1.tb_1,\"db.2\".\"tb.2\",\"db`3\".tb_3,db_4.\"tb`4\",db_5.*,\"db.6\".*,db_7*.*,\"db.8*\".*,*.*,\"*\".\"*\""
	got := p.Tokenize(config)
	want := []string{
		"db_1", "tb_1", "\"db.2\"", "\"tb.2\"", "\"db`3\"", "tb_3",
		"db_4", "\"tb`4\"", "db_5", "*", "\"db.6\"", "*",
		"db_7*", "*", "\"db.8*\"", "*", "*", "*", "\"*\"", "\"*\"",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}

func TestTokenizePgRouterConfig(t *testing.T) {
	p := &Parser{Delimiters: []rune{'.', ',', ':'}, EscapePairs: map[rune]rune{'"': '"'}, Dialect: Postgres}
	config := "db_1.tb_1:\"db.2\".\"tb.2\",\"db`3\".tb_3:db_4.\"tb`4\""
	got := p.Tokenize(config)
	want := []string{"db_1", "tb_1", "\"db.2\"", "\"tb.2\"", "\"db`3\"", "tb_3", "db_4", "\"tb`4\""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}
