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

package kafka

import "strings"

// Rule maps one `schema.table` pattern, as produced by the config
// tokenizer, to a destination topic name. Either Schema or Table may be
// the wildcard "*".
type Rule struct {
	Schema, Table string
	Topic         string
}

// Router resolves the destination topic for a row event's (schema,
// table) pair against an ordered list of Rules, falling back to
// "schema_table" when nothing matches. Rules are consulted in order;
// the first match wins, mirroring the router config's line order.
type Router struct {
	Rules []Rule
}

// GetTopic returns the topic a (schema, table) pair routes to.
func (r Router) GetTopic(schema, table string) string {
	for _, rule := range r.Rules {
		if matches(rule.Schema, schema) && matches(rule.Table, table) {
			return rule.Topic
		}
	}
	return schema + "_" + table
}

func matches(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// ParseRoutes builds a Router from tokenized `schema.table=topic` pairs,
// one rule per token (as produced by internal/token for a router config
// section). Tokens that do not contain "=" are ignored.
func ParseRoutes(tokens []string) Router {
	var rules []Rule
	for _, tok := range tokens {
		key, topic, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		schema, table, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		rules = append(rules, Rule{Schema: schema, Table: table, Topic: topic})
	}
	return Router{Rules: rules}
}
