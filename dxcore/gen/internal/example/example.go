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

// Package example holds families generated by package gen and checked in,
// together with the conversions their authors write by hand. Its tests
// exchange envelopes between the generated codecs and dynamic ones.
package example

import (
	"fmt"

	"dirpx.dev/dxrev/dxcore/schema"
)

// RecordSchema describes a struct family. The legacy flag of revisions 1
// and 2 is replaced by a retry budget at revision 3; that step is manual.
func RecordSchema() *schema.Schema {
	return &schema.Schema{
		Name:     "Record",
		Prefix:   "example",
		Revision: 3,
		Manual:   []uint16{2},
		Fields: []schema.Field{
			{Name: "key", Type: "string"},
			{Name: "label", Type: "string", Start: 2, Default: "none"},
			{Name: "retries", Type: "int64", Start: 3},
			{Name: "legacy", Type: "bool", End: 3},
		},
	}
}

// ShapeSchema describes an enum family that gains a variant at revision 2
// and a field at revision 3.
func ShapeSchema() *schema.Schema {
	return &schema.Schema{
		Name:     "Shape",
		Prefix:   "example",
		Kind:     schema.KindEnum,
		Revision: 3,
		Variants: []schema.Variant{
			{Name: "Circle", Fields: []schema.Field{
				{Name: "radius", Type: "float64"},
				{Name: "color", Type: "string", Start: 3, Default: "red"},
			}},
			{Name: "Square", Start: 2, Fields: []schema.Field{
				{Name: "side", Type: "int64"},
			}},
		},
	}
}

// CompileRecord compiles RecordSchema with the dynamic form of its manual
// step.
func CompileRecord(opts ...schema.Option) (*schema.Family, error) {
	opts = append(opts, schema.WithConverter(2, upgradeRecordValue))
	return schema.Compile(RecordSchema(), opts...)
}

// CompileShape compiles ShapeSchema.
func CompileShape(opts ...schema.Option) (*schema.Family, error) {
	return schema.Compile(ShapeSchema(), opts...)
}

func retriesFor(legacy bool) int64 {
	if legacy {
		return 3
	}
	return 0
}

func upgradeRecordV2(v RecordV2) (RecordV3, error) {
	return RecordV3{Key: v.Key, Label: v.Label, Retries: retriesFor(v.Legacy)}, nil
}

// upgradeRecordValue is upgradeRecordV2 for schema.Value.
func upgradeRecordValue(v schema.Value) (schema.Value, error) {
	legacy, ok := v.Fields["legacy"].(bool)
	if !ok {
		return schema.Value{}, fmt.Errorf("legacy is %T, want bool", v.Fields["legacy"])
	}
	return schema.StructValue(map[string]any{
		"key":     v.Fields["key"],
		"label":   v.Fields["label"],
		"retries": retriesFor(legacy),
	}), nil
}
