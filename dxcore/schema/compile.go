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

	"dirpx.dev/dxrev/dxcore/internal/logging"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
	"dirpx.dev/rxmerr"
	"github.com/sirupsen/logrus"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	converters map[uint16]Converter
	registry   *typeid.Registry
	log        logrus.FieldLogger
}

// WithConverter supplies the conversion for step r -> r+1. It replaces the
// structural mapping and is required for steps listed as manual.
func WithConverter(r uint16, fn Converter) Option {
	return func(o *options) {
		if o.converters == nil {
			o.converters = make(map[uint16]Converter)
		}
		o.converters[r] = fn
	}
}

// WithRegistry declares the canonical type and every revision type in reg.
// Without it the family resolves identifiers in a private registry.
func WithRegistry(reg *typeid.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithLogger sets the logger for compilation and upgrade events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = logging.Or(l)
	}
}

// Compile resolves the schema's windows, builds the revision types and
// verifies that every step r -> r+1 can be carried out.
//
// A step is derivable when every field alive at r+1 either exists at r with
// the same name and type or declares a default, and every enum variant
// alive at r is still alive at r+1. Steps that are not derivable need a
// WithConverter option or a manual entry in the schema; otherwise Compile
// fails with MissingForwardConversion. All schema errors found are returned
// together.
func Compile(s *Schema, opts ...Option) (*Family, error) {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := revision.CheckMax(int(s.Revision)); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	c := compiler{schema: s, max: s.Revision, errs: rxmerr.NewCollector()}
	plan := c.resolve()
	if err := c.errs.Err(); err != nil {
		return nil, err
	}

	for r := range o.converters {
		if r < 1 || r >= s.Revision {
			c.errs.Append(&revision.SchemaError{
				Kind:   revision.InvalidRevision,
				Item:   s.Qualified(s.Name),
				Reason: fmt.Sprintf("converter for step %d -> %d outside 1..%d", r, r+1, s.Revision),
			})
		}
	}

	revs := c.build()
	for r := uint16(1); r < s.Revision; r++ {
		if s.IsManual(r) {
			continue
		}
		if _, ok := o.converters[r]; ok {
			continue
		}
		c.checkStep(revs[r-1], revs[r])
	}
	if err := c.errs.Err(); err != nil {
		return nil, err
	}

	reg := o.registry
	if reg == nil {
		reg = typeid.NewRegistry()
	}
	canonicalName := s.Qualified(s.Name)
	decls := []typeid.Declaration{{
		Name:            canonicalName,
		Version:         version.Revision(s.Revision),
		OmitVersionHash: true,
	}}
	for _, t := range revs {
		decls = append(decls, typeid.Declaration{
			Name:    s.Qualified(t.GoName),
			Version: version.Revision(t.Revision),
			EqualTo: canonicalName,
		})
	}
	infos, err := reg.DeclareAll(decls)
	if err != nil {
		return nil, err
	}

	for i, t := range revs {
		t.Info = infos[i+1]
	}
	last := revs[len(revs)-1]
	canonical := &RevisionType{
		Kind:     s.Kind,
		Revision: s.Revision,
		GoName:   s.Name,
		Info:     infos[0],
		Fields:   last.Fields,
		Variants: last.Variants,
	}

	cases := make([]Case, len(revs))
	for i, t := range revs {
		cases[i] = Case{Discriminant: t.Revision, Type: t}
	}

	f := &Family{
		schema:     s.clone(),
		plan:       plan,
		revisions:  revs,
		canonical:  canonical,
		aggregate:  Aggregate{Info: infos[0], Cases: cases},
		converters: o.converters,
		log:        o.log,
	}

	o.log.WithFields(logrus.Fields{
		"type":     canonicalName,
		"type_id":  infos[0].ID.Hex(),
		"revision": s.Revision,
	}).Debug("schema compiled")

	return f, nil
}

type compiler struct {
	schema *Schema
	max    uint16
	errs   *rxmerr.Collector
}

// collect keeps the schema errors held by err and drops anything else.
func (c *compiler) collect(err error) {
	for _, se := range revision.SchemaErrors(err) {
		c.errs.Append(se)
	}
}

// resolve validates every window and reports names alive twice at one
// revision. It returns the plan of the top-level items.
func (c *compiler) resolve() *revision.Plan {
	s := c.schema

	if s.Kind == KindStruct {
		plan, err := revision.Resolve(c.max, fieldItems("", s.Fields))
		c.collect(err)
		c.checkDuplicates(s.Name, plan)
		return plan
	}

	items := make([]revision.Item, len(s.Variants))
	for i, v := range s.Variants {
		items[i] = revision.Item{Name: v.Name, Window: v.Window()}
	}
	plan, err := revision.Resolve(c.max, items)
	c.collect(err)
	c.checkDuplicates(s.Name, plan)

	for _, v := range s.Variants {
		fplan, err := revision.Resolve(c.max, fieldItems(v.Name+".", v.Fields))
		c.collect(err)
		c.checkDuplicates(s.Name, fplan)
	}
	return plan
}

func fieldItems(owner string, fields []Field) []revision.Item {
	items := make([]revision.Item, len(fields))
	for i, f := range fields {
		items[i] = revision.Item{Name: owner + f.Name, Window: f.Window()}
	}
	return items
}

func (c *compiler) checkDuplicates(owner string, plan *revision.Plan) {
	if plan == nil {
		return
	}
	reported := make(map[string]bool)
	for r := uint16(1); r <= c.max; r++ {
		seen := make(map[string]bool)
		for _, name := range plan.At(r) {
			if seen[name] && !reported[name] {
				c.errs.Append(&revision.SchemaError{
					Kind:   revision.DuplicateName,
					Item:   owner + "." + name,
					Reason: fmt.Sprintf("alive twice at revision %d", r),
				})
				reported[name] = true
			}
			seen[name] = true
		}
		if r == revision.MaxRevision {
			break
		}
	}
}

// build returns the revision types 1..N without identities.
func (c *compiler) build() []*RevisionType {
	s := c.schema
	revs := make([]*RevisionType, c.max)
	for r := uint16(1); ; r++ {
		t := &RevisionType{Kind: s.Kind, Revision: r, GoName: s.RevisionName(r)}
		if s.Kind == KindStruct {
			t.Fields = fieldsAt(s.Fields, r)
		} else {
			t.Variants = []VariantType{}
			for _, v := range s.Variants {
				if v.Window().Contains(r) {
					t.Variants = append(t.Variants, VariantType{Name: v.Name, Fields: fieldsAt(v.Fields, r)})
				}
			}
		}
		revs[r-1] = t
		if r == c.max {
			break
		}
	}
	return revs
}

func fieldsAt(fields []Field, r uint16) []Field {
	out := []Field{}
	for _, f := range fields {
		if f.Window().Contains(r) {
			out = append(out, f)
		}
	}
	return out
}

func (c *compiler) checkStep(from, to *RevisionType) {
	s := c.schema
	step := from.Revision

	if s.Kind == KindStruct {
		c.checkFields(s.Qualified(s.Name), step, from.Fields, to.Fields)
		return
	}

	for _, src := range from.Variants {
		dst, ok := to.Variant(src.Name)
		if !ok {
			c.errs.Append(&revision.SchemaError{
				Kind:   revision.MissingForwardConversion,
				Item:   s.Qualified(s.Name) + "." + src.Name,
				Step:   step,
				Reason: fmt.Sprintf("variant is not alive at revision %d", step+1),
			})
			continue
		}
		c.checkFields(s.Qualified(s.Name)+"."+src.Name, step, src.Fields, dst.Fields)
	}
}

func (c *compiler) checkFields(owner string, step uint16, from, to []Field) {
	for _, f := range to {
		if prev, ok := fieldNamed(from, f.Name); ok && prev.Type == f.Type {
			continue
		}
		if f.Default != nil {
			continue
		}
		c.errs.Append(&revision.SchemaError{
			Kind:   revision.MissingForwardConversion,
			Item:   owner + "." + f.Name,
			Step:   step,
			Reason: fmt.Sprintf("field has no %s counterpart at revision %d and no default", f.Type, step),
		})
	}
}
