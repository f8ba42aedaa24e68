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

package schema_test

import (
	"errors"
	"strings"
	"testing"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
	"dirpx.dev/dxrev/dxcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is the max-3 schema with field b added at revision 2.
func record() *schema.Schema {
	return &schema.Schema{
		Name:     "Record",
		Prefix:   "test",
		Revision: 3,
		Fields: []schema.Field{
			{Name: "a", Type: "string"},
			{Name: "b", Type: "string", Start: 2, Default: "none"},
		},
	}
}

// shape is an enum whose Square variant appears at 2 and whose Circle gains
// a color at 3.
func shape() *schema.Schema {
	return &schema.Schema{
		Name:     "Shape",
		Prefix:   "geo",
		Kind:     schema.KindEnum,
		Revision: 3,
		Variants: []schema.Variant{
			{Name: "Circle", Fields: []schema.Field{
				{Name: "radius", Type: "string"},
				{Name: "color", Type: "string", Start: 3, Default: "red"},
			}},
			{Name: "Square", Start: 2, Fields: []schema.Field{
				{Name: "side", Type: "string"},
			}},
		},
	}
}

func TestCompile_Struct(t *testing.T) {
	fam, err := schema.Compile(record())
	require.NoError(t, err)

	revs := fam.Revisions()
	require.Len(t, revs, 3)
	assert.Equal(t, []string{"a"}, revs[0].FieldNames())
	assert.Equal(t, []string{"a", "b"}, revs[1].FieldNames())
	assert.Equal(t, []string{"a", "b"}, revs[2].FieldNames())

	canonID := typeid.Hash("test.Record", nil)
	for i, rt := range revs {
		r := uint16(i + 1)
		assert.Equal(t, r, rt.Revision)
		assert.Equal(t, "RecordV"+string(rune('0'+r)), rt.GoName)
		assert.Equal(t, "test.RecordV"+string(rune('0'+r)), rt.Info.Name)
		assert.Equal(t, canonID, rt.Info.ID, "revision %d shares the canonical identifier", r)
		assert.Equal(t, version.Revision(r), rt.Info.Version)
	}

	canon := fam.Canonical()
	assert.Equal(t, "Record", canon.GoName)
	assert.Equal(t, typeid.Info{Name: "test.Record", ID: canonID, Version: version.Revision(3)}, fam.Info())
	assert.Equal(t, []string{"a", "b"}, canon.FieldNames())

	agg := fam.Aggregate()
	require.Len(t, agg.Cases, 3)
	for i, c := range agg.Cases {
		assert.Equal(t, uint16(i+1), c.Discriminant)
		assert.Same(t, revs[i], c.Type)
	}
	_, ok := agg.Case(4)
	assert.False(t, ok)
}

func TestCompile_Enum(t *testing.T) {
	fam, err := schema.Compile(shape())
	require.NoError(t, err)

	r1, _ := fam.Revision(1)
	r2, _ := fam.Revision(2)
	r3, _ := fam.Revision(3)
	assert.Equal(t, []string{"Circle"}, r1.FieldNames())
	assert.Equal(t, []string{"Circle", "Square"}, r2.FieldNames())

	c1, _ := r1.Variant("Circle")
	c3, _ := r3.Variant("Circle")
	assert.Len(t, c1.Fields, 1)
	assert.Len(t, c3.Fields, 2)

	assert.Equal(t, []string{"Circle"}, fam.Plan().At(1))
	assert.Equal(t, typeid.Hash("geo.Shape", nil), fam.Aggregate().Info.ID)
}

func TestUpgrade_AddedFieldTakesDefault(t *testing.T) {
	fam, err := schema.Compile(record())
	require.NoError(t, err)

	got, err := fam.Upgrade(1, schema.StructValue(map[string]any{"a": "x"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": "none"}, got.Fields)

	got, err = fam.Upgrade(3, schema.StructValue(map[string]any{"a": "x", "b": "y"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": "y"}, got.Fields)
}

func TestUpgrade_Enum(t *testing.T) {
	fam, err := schema.Compile(shape())
	require.NoError(t, err)

	got, err := fam.Upgrade(1, schema.EnumValue("Circle", map[string]any{"radius": "2"}))
	require.NoError(t, err)
	assert.Equal(t, schema.EnumValue("Circle", map[string]any{"radius": "2", "color": "red"}), got)

	got, err = fam.Upgrade(2, schema.EnumValue("Square", map[string]any{"side": "4"}))
	require.NoError(t, err)
	assert.Equal(t, schema.EnumValue("Square", map[string]any{"side": "4"}), got)

	_, err = fam.Upgrade(1, schema.EnumValue("Square", map[string]any{"side": "4"}))
	require.Error(t, err, "Square does not exist at revision 1")
}

func TestCompile_MissingForwardConversion(t *testing.T) {
	s := record()
	s.Fields[1].Default = nil

	_, err := schema.Compile(s)
	require.Error(t, err)

	var se *revision.SchemaError
	require.True(t, errors.As(err, &se), "err = %v", err)
	assert.Equal(t, revision.MissingForwardConversion, se.Kind)
	assert.Equal(t, "test.Record.b", se.Item)
	assert.Equal(t, uint16(1), se.Step)
}

func TestCompile_TypeChangeNeedsDefault(t *testing.T) {
	s := &schema.Schema{
		Name:     "Reading",
		Revision: 2,
		Fields: []schema.Field{
			{Name: "value", Type: "string", End: 2},
			{Name: "value", Type: "bool", Start: 2},
		},
	}
	_, err := schema.Compile(s)
	assert.True(t, revision.IsKind(err, revision.MissingForwardConversion), "err = %v", err)

	s.Fields[1].Default = false
	fam, err := schema.Compile(s)
	require.NoError(t, err)

	got, err := fam.Upgrade(1, schema.StructValue(map[string]any{"value": "yes"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": false}, got.Fields)
}

func TestCompile_RemovedVariant(t *testing.T) {
	s := shape()
	s.Variants = append(s.Variants, schema.Variant{Name: "Blob", End: 2})

	_, err := schema.Compile(s)
	var se *revision.SchemaError
	require.True(t, errors.As(err, &se), "err = %v", err)
	assert.Equal(t, revision.MissingForwardConversion, se.Kind)
	assert.Equal(t, "geo.Shape.Blob", se.Item)

	toCircle := func(v schema.Value) (schema.Value, error) {
		if v.Variant == "Blob" {
			return schema.EnumValue("Circle", map[string]any{"radius": "0"}), nil
		}
		return v, nil
	}
	fam, err := schema.Compile(s, schema.WithConverter(1, toCircle))
	require.NoError(t, err)
	assert.True(t, fam.HasConverter(1))

	got, err := fam.Upgrade(1, schema.EnumValue("Blob", nil))
	require.NoError(t, err)
	assert.Equal(t, schema.EnumValue("Circle", map[string]any{"radius": "0", "color": "red"}), got)
}

func TestCompile_ManualStep(t *testing.T) {
	s := record()
	s.Fields[1].Default = nil
	s.Manual = []uint16{1}

	fam, err := schema.Compile(s)
	require.NoError(t, err)

	_, err = fam.Upgrade(1, schema.StructValue(map[string]any{"a": "x"}))
	assert.True(t, revision.IsKind(err, revision.MissingForwardConversion), "err = %v", err)

	fam, err = schema.Compile(s, schema.WithConverter(1, func(v schema.Value) (schema.Value, error) {
		out := v.Clone()
		out.Fields["b"] = strings.ToUpper(v.Fields["a"].(string))
		return out, nil
	}))
	require.NoError(t, err)

	got, err := fam.Upgrade(1, schema.StructValue(map[string]any{"a": "x"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": "X"}, got.Fields)
}

func TestCompile_ConverterMustConform(t *testing.T) {
	fam, err := schema.Compile(record(), schema.WithConverter(1, func(v schema.Value) (schema.Value, error) {
		return v, nil
	}))
	require.NoError(t, err)

	_, err = fam.Upgrade(1, schema.StructValue(map[string]any{"a": "x"}))
	var ve *dxerrors.ValidationError
	require.True(t, errors.As(err, &ve), "err = %v", err)
	assert.Equal(t, "b", ve.Field)
}

func TestCompile_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.Schema)
		kind   revision.ErrorKind
	}{
		{"zero revision", func(s *schema.Schema) { s.Revision = 0 }, revision.InvalidRevision},
		{"window past max", func(s *schema.Schema) { s.Fields[1].Start = 4 }, revision.RevisionOutOfRange},
		{"end past max", func(s *schema.Schema) { s.Fields[0].End = 5 }, revision.RevisionOutOfRange},
		{"duplicate field", func(s *schema.Schema) {
			s.Fields = append(s.Fields, schema.Field{Name: "a", Type: "string"})
		}, revision.DuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := record()
			tt.mutate(s)
			_, err := schema.Compile(s)
			assert.True(t, revision.IsKind(err, tt.kind), "err = %v", err)
		})
	}
}

func TestCompile_ConverterOutOfRange(t *testing.T) {
	_, err := schema.Compile(record(), schema.WithConverter(3, func(v schema.Value) (schema.Value, error) { return v, nil }))
	assert.True(t, revision.IsKind(err, revision.InvalidRevision), "err = %v", err)
}

func TestCompile_Registry(t *testing.T) {
	sink := &typeid.MemorySink{}
	reg := typeid.NewRegistry(typeid.WithSink(sink))

	fam, err := schema.Compile(record(), schema.WithRegistry(reg))
	require.NoError(t, err)

	info, ok := reg.Lookup("test.RecordV2")
	require.True(t, ok)
	assert.Equal(t, fam.Info().ID, info.ID)
	assert.Equal(t, version.Revision(2), info.Version)
	assert.Len(t, sink.Entries(), 4)

	_, err = schema.Compile(record(), schema.WithRegistry(reg))
	require.NoError(t, err, "compiling the same schema twice is idempotent")
}

func TestFamily_Conform(t *testing.T) {
	fam, err := schema.Compile(shape())
	require.NoError(t, err)

	tests := []struct {
		name    string
		r       uint16
		v       schema.Value
		wantErr string
	}{
		{"ok", 1, schema.EnumValue("Circle", map[string]any{"radius": "1"}), ""},
		{"missing field", 3, schema.EnumValue("Circle", map[string]any{"radius": "1"}), "missing field"},
		{"unknown field", 1, schema.EnumValue("Circle", map[string]any{"radius": "1", "x": "2"}), "unknown field"},
		{"unknown variant", 1, schema.EnumValue("Square", map[string]any{"side": "1"}), "unknown variant"},
		{"bad revision", 4, schema.EnumValue("Circle", nil), "outside 1..3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fam.Conform(tt.r, tt.v)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFamily_WrapUnwrap(t *testing.T) {
	fam, err := schema.Compile(record())
	require.NoError(t, err)

	v := schema.StructValue(map[string]any{"a": "x", "b": "y"})
	tagged, err := fam.Wrap(2, v)
	require.NoError(t, err)
	r, back := fam.Unwrap(tagged)
	assert.Equal(t, uint16(2), r)
	assert.Equal(t, v, back)

	_, err = fam.Wrap(1, v)
	assert.Error(t, err)
}

func TestFamily_Payload(t *testing.T) {
	fam, err := schema.Compile(shape())
	require.NoError(t, err)

	v := schema.EnumValue("Square", map[string]any{"side": "3"})
	p := fam.ToPayload(v)
	assert.Equal(t, map[string]any{"Square": map[string]any{"side": "3"}}, p)

	back, err := fam.FromPayload(2, p)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = fam.FromPayload(2, map[string]any{"Square": map[string]any{"side": "3"}, "Circle": map[string]any{}})
	assert.Error(t, err)

	back, err = fam.FromPayload(2, map[any]any{"Circle": map[any]any{"radius": "1"}})
	require.NoError(t, err)
	assert.Equal(t, schema.EnumValue("Circle", map[string]any{"radius": "1"}), back)

	_, err = fam.FromPayload(2, "nope")
	assert.Error(t, err)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "{a:1 b:2}", schema.StructValue(map[string]any{"b": 2, "a": 1}).String())
	assert.Equal(t, "Circle{radius:1}", schema.EnumValue("Circle", map[string]any{"radius": 1}).String())
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       schema.Schema
		wantErr string
	}{
		{"bad name", schema.Schema{Name: "1x", Revision: 1}, "Schema.Name"},
		{"struct with variants", schema.Schema{Name: "X", Revision: 1, Variants: []schema.Variant{{Name: "A"}}}, "no variants"},
		{"enum with fields", schema.Schema{Name: "X", Kind: schema.KindEnum, Revision: 1, Fields: []schema.Field{{Name: "a", Type: "bool"}}, Variants: []schema.Variant{{Name: "A"}}}, "per variant"},
		{"enum without variants", schema.Schema{Name: "X", Kind: schema.KindEnum, Revision: 1}, "at least one variant"},
		{"field without type", schema.Schema{Name: "X", Revision: 1, Fields: []schema.Field{{Name: "a"}}}, "Field.Type"},
		{"manual out of range", schema.Schema{Name: "X", Revision: 2, Manual: []uint16{2}}, "outside 1..2"},
		{"manual twice", schema.Schema{Name: "X", Revision: 3, Manual: []uint16{1, 1}}, "listed twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.s.Validate(), tt.wantErr)
		})
	}

	ok := record()
	assert.NoError(t, ok.Validate())
}
