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

// Package schema compiles an evolving type definition into a family of
// per-revision type descriptors and converts dynamic values between them.
//
// A Schema names a struct or enum, its maximum revision N, and for every
// field or variant the window of revisions it is alive in. Compile resolves
// the windows, checks that every step r -> r+1 can be carried out, and
// returns a Family: one RevisionType per revision, the canonical type (the
// shape of revision N) and the aggregate whose r-th case has discriminant r.
//
// Schemas are usually loaded from YAML or TOML documents:
//
//	name: Shape
//	prefix: geo
//	kind: enum
//	revision: 2
//	variants:
//	  - name: Circle
//	    fields:
//	      - {name: radius, type: float64}
//	  - name: Square
//	    start: 2
//	    fields:
//	      - {name: side, type: float64}
package schema

import (
	"fmt"
	"go/token"
	"slices"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/rxmerr"
)

// Field is one field of a struct, or of an enum variant.
//
// Start and End form the field's revision window (see revision.Window).
// Default is the value given to the field when a value of the previous
// revision is carried forward and has no field of that name and type.
type Field struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Type    string `json:"type" yaml:"type" toml:"type"`
	Start   uint16 `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End     uint16 `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
}

// Window returns the revision window of f.
func (f Field) Window() revision.Window {
	return revision.Window{Start: f.Start, End: f.End}
}

// Variant is one case of an enum.
type Variant struct {
	Name   string  `json:"name" yaml:"name" toml:"name"`
	Start  uint16  `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End    uint16  `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// Window returns the revision window of v.
func (v Variant) Window() revision.Window {
	return revision.Window{Start: v.Start, End: v.End}
}

// Schema is the definition of one evolving type.
type Schema struct {
	// Name is the unqualified type name, a Go identifier.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Prefix qualifies identifiers: "<prefix>.<Name>".
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`

	Kind Kind `json:"kind" yaml:"kind" toml:"kind"`

	// Revision is the maximum (current) revision N.
	Revision uint16 `json:"revision" yaml:"revision" toml:"revision"`

	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty" toml:"variants,omitempty"`

	// Manual lists the steps r (meaning r -> r+1) whose conversion the
	// author writes by hand.
	Manual []uint16 `json:"manual,omitempty" yaml:"manual,omitempty" toml:"manual,omitempty"`
}

// Qualified returns name prefixed with the schema prefix.
func (s *Schema) Qualified(name string) string {
	if s.Prefix == "" {
		return name
	}
	return s.Prefix + "." + name
}

// RevisionName returns the Go name of revision r, "<Name>V<r>".
func (s *Schema) RevisionName(r uint16) string {
	return fmt.Sprintf("%sV%d", s.Name, r)
}

func (s *Schema) clone() Schema {
	out := *s
	out.Fields = slices.Clone(s.Fields)
	out.Manual = slices.Clone(s.Manual)
	out.Variants = make([]Variant, len(s.Variants))
	for i, v := range s.Variants {
		v.Fields = slices.Clone(v.Fields)
		out.Variants[i] = v
	}
	return out
}

// IsManual reports whether step r -> r+1 is written by hand.
func (s *Schema) IsManual(r uint16) bool {
	return slices.Contains(s.Manual, r)
}

// Validate checks the parts of a schema that do not need window
// resolution: names, kinds, the revision bound and the manual step list.
// All problems are reported together.
func (s *Schema) Validate() error {
	c := rxmerr.NewCollector()

	if !token.IsIdentifier(s.Name) {
		c.Append(&dxerrors.ValidationError{Type: "Schema", Field: "Name", Reason: "must be a Go identifier", Value: s.Name})
	}
	if err := s.Kind.Validate(); err != nil {
		c.Append(err)
	}
	if err := revision.CheckMax(int(s.Revision)); err != nil {
		c.Append(err)
	}

	switch s.Kind {
	case KindStruct:
		if len(s.Variants) > 0 {
			c.Append(&dxerrors.ValidationError{Type: "Schema", Field: "Variants", Reason: "a struct has no variants"})
		}
		for _, err := range validateFields(s.Name, s.Fields) {
			c.Append(err)
		}
	case KindEnum:
		if len(s.Fields) > 0 {
			c.Append(&dxerrors.ValidationError{Type: "Schema", Field: "Fields", Reason: "an enum declares fields per variant"})
		}
		if len(s.Variants) == 0 {
			c.Append(&dxerrors.ValidationError{Type: "Schema", Field: "Variants", Reason: "an enum needs at least one variant"})
		}
		for _, v := range s.Variants {
			if !token.IsIdentifier(v.Name) {
				c.Append(&dxerrors.ValidationError{Type: "Variant", Field: "Name", Reason: "must be a Go identifier", Value: v.Name})
			}
			for _, err := range validateFields(s.Name+"."+v.Name, v.Fields) {
				c.Append(err)
			}
		}
	}

	seen := make(map[uint16]bool, len(s.Manual))
	for _, r := range s.Manual {
		switch {
		case seen[r]:
			c.Append(&revision.SchemaError{Kind: revision.DuplicateRevisionSpecified, Step: r, Reason: "manual step listed twice"})
		case r < 1 || r >= s.Revision:
			c.Append(&revision.SchemaError{
				Kind:   revision.InvalidRevision,
				Reason: fmt.Sprintf("manual step %d -> %d is outside 1..%d", r, r+1, s.Revision),
			})
		}
		seen[r] = true
	}

	return c.Err()
}

func validateFields(owner string, fields []Field) []error {
	var errs []error
	for _, f := range fields {
		if !token.IsIdentifier(f.Name) {
			errs = append(errs, &dxerrors.ValidationError{Type: "Field", Field: "Name", Reason: "must be an identifier in " + owner, Value: f.Name})
		}
		if f.Type == "" {
			errs = append(errs, &dxerrors.ValidationError{Type: "Field", Field: "Type", Reason: "must not be empty", Value: owner + "." + f.Name})
		}
	}
	return errs
}
