/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Value is a dynamically typed value of one revision of a family: a set of
// named fields and, for enums, the variant they belong to.
type Value struct {
	Variant string
	Fields  map[string]any
}

// StructValue returns a struct value with the given fields.
func StructValue(fields map[string]any) Value {
	return Value{Fields: fields}
}

// EnumValue returns a value of the named variant.
func EnumValue(variant string, fields map[string]any) Value {
	return Value{Variant: variant, Fields: fields}
}

// Get returns the field called name.
func (v Value) Get(name string) (any, bool) {
	val, ok := v.Fields[name]
	return val, ok
}

// Clone returns a copy of v whose field map can be modified independently.
// Field values themselves are shared.
func (v Value) Clone() Value {
	return Value{Variant: v.Variant, Fields: maps.Clone(v.Fields)}
}

// String renders v with its fields in name order.
func (v Value) String() string {
	keys := slices.Sorted(maps.Keys(v.Fields))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%v", k, v.Fields[k])
	}
	body := "{" + strings.Join(parts, " ") + "}"
	if v.Variant != "" {
		return v.Variant + body
	}
	return body
}
