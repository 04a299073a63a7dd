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

// Package cdctype contains the data types shared by every stage of the
// streaming core: the row/DDL event model and the closed column-value sum.
package cdctype

import (
	"encoding/base64"
	"encoding/json"
	"math"
)

// Kind discriminates the variant held by a ColValue.
type Kind int

// The closed set of column value variants. Each carries both its value and
// its display/serialization shape.
const (
	KNull Kind = iota
	KBool
	KInt8
	KUint8
	KInt16
	KUint16
	KInt32
	KUint32
	KInt64
	KUint64
	KFloat32
	KFloat64
	KDecimal
	KString
	KBytes
	KRawString
	KDate
	KTime
	KDateTime
	KTimestamp
	KYear
	KBit
	KEnum
	KSet
	KEnumByName
	KSetByName
	KJSONBytes
	KJSONString
	KJSONValue
	KMongoDoc
)

// ColValue is a tagged union over every supported column representation.
// Exactly one payload field is meaningful for a given Kind; the rest are
// zero.
type ColValue struct {
	Kind Kind

	Bool bool
	I64  int64  // Int8/Int16/Int32/Int64 share this field
	U64  uint64 // Uint8/Uint16/Uint32/Uint64/Bit share this field
	F32  float32
	F64  float64
	Str  string // Decimal/String/Date/Time/DateTime/Timestamp/EnumByName/SetByName/JSONString share this field
	Byt  []byte // Bytes/RawString/JSONBytes share this field
	I16  int16  // Year
	U32  uint32 // Enum
	Doc  any    // JSONValue/MongoDoc: already-structured data
}

// NewNull returns the Null variant.
func NewNull() ColValue { return ColValue{Kind: KNull} }

// NewBool returns the Bool variant.
func NewBool(v bool) ColValue { return ColValue{Kind: KBool, Bool: v} }

// NewInt64 returns a signed 64-bit integer variant; callers needing the
// narrower widths (8/16/32) still encode into I64 since JSON rendering and
// arithmetic are identical across widths.
func NewInt64(k Kind, v int64) ColValue { return ColValue{Kind: k, I64: v} }

// NewUint64 returns an unsigned integer variant.
func NewUint64(k Kind, v uint64) ColValue { return ColValue{Kind: k, U64: v} }

// NewFloat32 returns the Float32 variant.
func NewFloat32(v float32) ColValue { return ColValue{Kind: KFloat32, F32: v} }

// NewFloat64 returns the Float64 variant.
func NewFloat64(v float64) ColValue { return ColValue{Kind: KFloat64, F64: v} }

// NewString returns a string-shaped variant (Decimal/String/Date/Time/
// DateTime/Timestamp/EnumByName/SetByName/JSONString all render as JSON
// strings, modulo JSONString's parse-if-valid rule).
func NewString(k Kind, v string) ColValue { return ColValue{Kind: k, Str: v} }

// NewBytes returns a byte-shaped variant (Bytes/RawString/JSONBytes).
func NewBytes(k Kind, v []byte) ColValue { return ColValue{Kind: k, Byt: v} }

// NewYear returns the Year variant.
func NewYear(v int16) ColValue { return ColValue{Kind: KYear, I16: v} }

// NewBit returns the Bit variant.
func NewBit(v uint64) ColValue { return ColValue{Kind: KBit, U64: v} }

// NewEnum returns the Enum variant (ordinal form).
func NewEnum(v uint32) ColValue { return ColValue{Kind: KEnum, U32: v} }

// NewSet returns the Set variant (bitmask form).
func NewSet(v uint64) ColValue { return ColValue{Kind: KSet, U64: v} }

// NewJSONValue returns the JSONValue variant, embedding already-structured data.
func NewJSONValue(v any) ColValue { return ColValue{Kind: KJSONValue, Doc: v} }

// NewMongoDoc returns the MongoDoc variant.
func NewMongoDoc(v any) ColValue { return ColValue{Kind: KMongoDoc, Doc: v} }

// MarshalJSON implements the column-value rendering rules shared by every
// encoder so they live in exactly one place.
func (c ColValue) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KNull:
		return []byte("null"), nil
	case KBool:
		return json.Marshal(c.Bool)
	case KInt8, KInt16, KInt32, KInt64:
		return json.Marshal(c.I64)
	case KUint8, KUint16, KUint32, KUint64:
		return json.Marshal(c.U64)
	case KFloat32:
		if math.IsNaN(float64(c.F32)) || math.IsInf(float64(c.F32), 0) {
			return json.Marshal(formatFloat(float64(c.F32)))
		}
		return json.Marshal(c.F32)
	case KFloat64:
		if math.IsNaN(c.F64) || math.IsInf(c.F64, 0) {
			return json.Marshal(formatFloat(c.F64))
		}
		return json.Marshal(c.F64)
	case KDecimal, KString, KDate, KTime, KDateTime, KTimestamp, KEnumByName, KSetByName:
		return json.Marshal(c.Str)
	case KBytes, KRawString:
		return json.Marshal(base64.StdEncoding.EncodeToString(c.Byt))
	case KYear:
		return json.Marshal(c.I16)
	case KBit, KEnum, KSet:
		if c.Kind == KEnum {
			return json.Marshal(c.U32)
		}
		return json.Marshal(c.U64)
	case KJSONBytes:
		var probe json.RawMessage
		if len(c.Byt) > 0 && json.Valid(c.Byt) && json.Unmarshal(c.Byt, &probe) == nil {
			return c.Byt, nil
		}
		return json.Marshal(base64.StdEncoding.EncodeToString(c.Byt))
	case KJSONString:
		if json.Valid([]byte(c.Str)) {
			return []byte(c.Str), nil
		}
		return json.Marshal(c.Str)
	case KJSONValue:
		return json.Marshal(c.Doc)
	case KMongoDoc:
		// The generic JSON encoder has no native Mongo document shape.
		return []byte("null"), nil
	default:
		return []byte("null"), nil
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	return "-Infinity"
}
