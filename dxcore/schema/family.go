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
	"slices"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"github.com/sirupsen/logrus"
)

// RevisionType describes the concrete type of one revision: the fields (or
// variants) alive at that revision, in declaration order.
type RevisionType struct {
	Kind     Kind
	Revision uint16
	GoName   string
	Info     typeid.Info
	Fields   []Field
	Variants []VariantType
}

// VariantType is an enum variant as it exists at one revision.
type VariantType struct {
	Name   string
	Fields []Field
}

// Field returns the field called name.
func (t *RevisionType) Field(name string) (Field, bool) {
	return fieldNamed(t.Fields, name)
}

// Variant returns the variant called name.
func (t *RevisionType) Variant(name string) (VariantType, bool) {
	i := slices.IndexFunc(t.Variants, func(v VariantType) bool { return v.Name == name })
	if i < 0 {
		return VariantType{}, false
	}
	return t.Variants[i], true
}

// FieldNames returns the names of t's fields, or of its variants for an
// enum, in declaration order.
func (t *RevisionType) FieldNames() []string {
	if t.Kind == KindEnum {
		names := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			names[i] = v.Name
		}
		return names
	}
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

func fieldNamed(fields []Field, name string) (Field, bool) {
	i := slices.IndexFunc(fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return fields[i], true
}

// Case is one case of the aggregate type. Discriminant always equals the
// revision number of Type.
type Case struct {
	Discriminant uint16
	Type         *RevisionType
}

// Aggregate is the union of every revision of a family. It shares the
// canonical identifier.
type Aggregate struct {
	Info  typeid.Info
	Cases []Case
}

// Case returns the case with discriminant d.
func (a Aggregate) Case(d uint16) (Case, bool) {
	if d < 1 || int(d) > len(a.Cases) {
		return Case{}, false
	}
	return a.Cases[d-1], true
}

// Tagged is a value of the aggregate: a revision value together with the
// discriminant of its case.
type Tagged struct {
	Revision uint16
	Value    Value
}

// Converter carries a value of revision r to revision r+1.
type Converter func(Value) (Value, error)

// Family is a compiled schema. It is immutable and safe for concurrent use.
type Family struct {
	schema     Schema
	plan       *revision.Plan
	revisions  []*RevisionType
	canonical  *RevisionType
	aggregate  Aggregate
	converters map[uint16]Converter
	log        logrus.FieldLogger
}

// Schema returns the schema the family was compiled from.
func (f *Family) Schema() Schema { return f.schema }

// Kind returns the kind of the family's types.
func (f *Family) Kind() Kind { return f.schema.Kind }

// Max returns the current revision N.
func (f *Family) Max() uint16 { return f.schema.Revision }

// Plan returns the resolved windows of the top-level fields or variants.
func (f *Family) Plan() *revision.Plan { return f.plan }

// Info returns the canonical identity: the qualified name, the shared
// identifier and version (N, 0, 0).
func (f *Family) Info() typeid.Info { return f.canonical.Info }

// Canonical returns the canonical type, which has the shape of revision N.
func (f *Family) Canonical() *RevisionType { return f.canonical }

// Aggregate returns the aggregate type.
func (f *Family) Aggregate() Aggregate { return f.aggregate }

// Revisions returns the revision types 1..N.
func (f *Family) Revisions() []*RevisionType { return slices.Clone(f.revisions) }

// Revision returns the type of revision r.
func (f *Family) Revision(r uint16) (*RevisionType, bool) {
	if r < 1 || r > f.Max() {
		return nil, false
	}
	return f.revisions[r-1], true
}

// HasConverter reports whether step r -> r+1 uses an author conversion.
func (f *Family) HasConverter(r uint16) bool {
	_, ok := f.converters[r]
	return ok
}

func (f *Family) revisionType(r uint16) (*RevisionType, error) {
	t, ok := f.Revision(r)
	if !ok {
		return nil, &dxerrors.ValidationError{
			Type:   f.canonical.GoName,
			Field:  "Revision",
			Reason: fmt.Sprintf("revision %d outside 1..%d", r, f.Max()),
			Value:  r,
		}
	}
	return t, nil
}

// Conform checks that v is a value of revision r: the variant, if any, is
// alive at r and the fields are exactly those of the type.
func (f *Family) Conform(r uint16, v Value) error {
	t, err := f.revisionType(r)
	if err != nil {
		return err
	}

	fields := t.Fields
	owner := t.GoName
	if f.Kind() == KindEnum {
		vt, ok := t.Variant(v.Variant)
		if !ok {
			return &dxerrors.ValidationError{Type: owner, Field: v.Variant, Reason: "unknown variant"}
		}
		fields = vt.Fields
		owner += "." + vt.Name
	} else if v.Variant != "" {
		return &dxerrors.ValidationError{Type: owner, Field: v.Variant, Reason: "struct value has a variant"}
	}

	for _, fd := range fields {
		if _, ok := v.Fields[fd.Name]; !ok {
			return &dxerrors.ValidationError{Type: owner, Field: fd.Name, Reason: "missing field"}
		}
	}
	for name := range v.Fields {
		if _, ok := fieldNamed(fields, name); !ok {
			return &dxerrors.ValidationError{Type: owner, Field: name, Reason: "unknown field"}
		}
	}
	return nil
}

// Wrap turns a revision value into an aggregate value.
func (f *Family) Wrap(r uint16, v Value) (Tagged, error) {
	if err := f.Conform(r, v); err != nil {
		return Tagged{}, err
	}
	return Tagged{Revision: r, Value: v}, nil
}

// Unwrap returns the revision and value held by t.
func (f *Family) Unwrap(t Tagged) (uint16, Value) {
	return t.Revision, t.Value
}

// Step converts a value of revision r into a value of revision r+1, using
// the author conversion when one is registered and the structural mapping
// otherwise.
func (f *Family) Step(r uint16, v Value) (Value, error) {
	if r < 1 || r >= f.Max() {
		return Value{}, &dxerrors.ValidationError{
			Type:   f.canonical.GoName,
			Field:  "Revision",
			Reason: fmt.Sprintf("no step from revision %d", r),
			Value:  r,
		}
	}

	if conv, ok := f.converters[r]; ok {
		out, err := conv(v)
		if err != nil {
			return Value{}, fmt.Errorf("converting %s: %w", f.schema.RevisionName(r), err)
		}
		if err := f.Conform(r+1, out); err != nil {
			return Value{}, fmt.Errorf("converting %s: %w", f.schema.RevisionName(r), err)
		}
		return out, nil
	}

	if f.schema.IsManual(r) {
		return Value{}, &revision.SchemaError{
			Kind:   revision.MissingForwardConversion,
			Item:   f.Info().Name,
			Step:   r,
			Reason: "manual step has no converter",
		}
	}

	from, to := f.revisions[r-1], f.revisions[r]
	if f.Kind() == KindStruct {
		return Value{Fields: carry(from.Fields, to.Fields, v.Fields)}, nil
	}

	src, _ := from.Variant(v.Variant)
	dst, ok := to.Variant(v.Variant)
	if !ok {
		return Value{}, &revision.SchemaError{
			Kind:   revision.MissingForwardConversion,
			Item:   f.Info().Name + "." + v.Variant,
			Step:   r,
			Reason: "variant is gone",
		}
	}
	return Value{Variant: v.Variant, Fields: carry(src.Fields, dst.Fields, v.Fields)}, nil
}

// carry maps field values onto the next revision's fields: a value is kept
// when a field of the same name and type exists on both sides, otherwise
// the target field's default is used.
func carry(from, to []Field, src map[string]any) map[string]any {
	out := make(map[string]any, len(to))
	for _, fd := range to {
		if prev, ok := fieldNamed(from, fd.Name); ok && prev.Type == fd.Type {
			if val, ok := src[fd.Name]; ok {
				out[fd.Name] = val
				continue
			}
		}
		out[fd.Name] = fd.Default
	}
	return out
}

// Upgrade converts a value of revision from into a canonical value, one
// step at a time.
func (f *Family) Upgrade(from uint16, v Value) (Value, error) {
	if err := f.Conform(from, v); err != nil {
		return Value{}, err
	}

	for r := from; r < f.Max(); r++ {
		next, err := f.Step(r, v)
		if err != nil {
			return Value{}, fmt.Errorf("upgrading %s from revision %d: %w", f.Info().Name, from, err)
		}
		v = next
	}

	if from < f.Max() {
		f.log.WithFields(logrus.Fields{
			"type":     f.Info().Name,
			"revision": from,
		}).Debug("value upgraded")
	}
	return v, nil
}

// ToPayload returns the wire shape of v: the field map for a struct, and
// {variant: fields} for an enum.
func (f *Family) ToPayload(v Value) map[string]any {
	fields := v.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	if f.Kind() == KindEnum {
		return map[string]any{v.Variant: fields}
	}
	return fields
}

// FromPayload converts a decoded wire payload of revision r back into a
// Value and checks it against the revision's type.
func (f *Family) FromPayload(r uint16, payload any) (Value, error) {
	m, err := asMap(payload)
	if err != nil {
		return Value{}, err
	}

	var v Value
	if f.Kind() == KindEnum {
		if len(m) != 1 {
			return Value{}, &dxerrors.UnmarshalError{
				Type:   f.schema.RevisionName(r),
				Reason: fmt.Sprintf("enum payload holds %d variants, want 1", len(m)),
			}
		}
		for name, body := range m {
			fields, err := asMap(body)
			if err != nil {
				return Value{}, err
			}
			v = Value{Variant: name, Fields: fields}
		}
	} else {
		v = Value{Fields: m}
	}

	if err := f.Conform(r, v); err != nil {
		return Value{}, err
	}
	return v, nil
}

func asMap(p any) (map[string]any, error) {
	switch m := p.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	default:
		return nil, &dxerrors.UnmarshalError{Type: "Value", Reason: fmt.Sprintf("payload is %T, want a map", p)}
	}
}
