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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/rxmerr"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DocFormat is the syntax of a schema document.
type DocFormat string

const (
	DocYAML DocFormat = "yaml"
	DocTOML DocFormat = "toml"
)

// DocFormatOf picks the document format from a file extension.
func DocFormatOf(path string) (DocFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DocYAML, nil
	case ".toml":
		return DocTOML, nil
	default:
		return "", &dxerrors.ParseError{Type: "DocFormat", Value: path}
	}
}

// LoadOption adjusts how a document is turned into a Schema.
type LoadOption func(*loadOptions)

type loadOptions struct {
	revision *int
}

// WithRevision supplies the maximum revision from outside the document, for
// example from a build flag. Giving it both here and in the document is a
// DuplicateRevisionSpecified error.
func WithRevision(r int) LoadOption {
	return func(o *loadOptions) {
		o.revision = &r
	}
}

// document mirrors Schema with a revision wide enough to detect values
// that do not fit in 16 bits, and absent enough to detect a missing one.
type document struct {
	Name     string    `yaml:"name" toml:"name"`
	Prefix   string    `yaml:"prefix" toml:"prefix"`
	Kind     Kind      `yaml:"kind" toml:"kind"`
	Revision *int      `yaml:"revision" toml:"revision"`
	Fields   []docField   `yaml:"fields" toml:"fields"`
	Variants []docVariant `yaml:"variants" toml:"variants"`
	Manual   []uint16     `yaml:"manual" toml:"manual"`
}

// docField and docVariant keep window bounds as pointers so that a bound
// written as 0 can be told apart from one left out.
type docField struct {
	Name    string `yaml:"name" toml:"name"`
	Type    string `yaml:"type" toml:"type"`
	Start   *int   `yaml:"start" toml:"start"`
	End     *int   `yaml:"end" toml:"end"`
	Default any    `yaml:"default" toml:"default"`
}

type docVariant struct {
	Name   string     `yaml:"name" toml:"name"`
	Start  *int       `yaml:"start" toml:"start"`
	End    *int       `yaml:"end" toml:"end"`
	Fields []docField `yaml:"fields" toml:"fields"`
}

// Load reads and parses the schema document at path. The format follows
// the file extension.
func Load(path string, opts ...LoadOption) (*Schema, error) {
	format, err := DocFormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	s, err := Parse(data, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema document and validates it.
func Parse(data []byte, format DocFormat, opts ...LoadOption) (*Schema, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	var doc document
	switch format {
	case DocYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, &dxerrors.UnmarshalError{Type: "Schema", Data: data, Reason: err.Error()}
		}
	case DocTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, &dxerrors.UnmarshalError{Type: "Schema", Data: data, Reason: err.Error()}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, &dxerrors.UnmarshalError{
				Type:   "Schema",
				Data:   data,
				Reason: fmt.Sprintf("unknown keys %v", undecoded),
			}
		}
	default:
		return nil, &dxerrors.ParseError{Type: "DocFormat", Value: string(format)}
	}

	var max int
	switch {
	case doc.Revision != nil && o.revision != nil:
		return nil, &revision.SchemaError{
			Kind:   revision.DuplicateRevisionSpecified,
			Item:   doc.Name,
			Reason: "revision given in the document and by the caller",
		}
	case doc.Revision != nil:
		max = *doc.Revision
	case o.revision != nil:
		max = *o.revision
	default:
		return nil, &revision.SchemaError{
			Kind:   revision.MissingRevisionSpecified,
			Item:   doc.Name,
			Reason: "no revision given",
		}
	}
	if err := revision.CheckMax(max); err != nil {
		return nil, err
	}

	errs := rxmerr.NewCollector()
	s := &Schema{
		Name:     doc.Name,
		Prefix:   doc.Prefix,
		Kind:     doc.Kind,
		Revision: uint16(max),
		Fields:   fieldsOf(doc.Name, doc.Fields, errs),
		Variants: variantsOf(doc.Name, doc.Variants, errs),
		Manual:   doc.Manual,
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func fieldsOf(owner string, in []docField, errs *rxmerr.Collector) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, 0, len(in))
	for _, f := range in {
		item := owner + "." + f.Name
		out = append(out, Field{
			Name:    f.Name,
			Type:    f.Type,
			Start:   bound(item, "start", f.Start, errs),
			End:     bound(item, "end", f.End, errs),
			Default: f.Default,
		})
	}
	return out
}

func variantsOf(owner string, in []docVariant, errs *rxmerr.Collector) []Variant {
	if in == nil {
		return nil
	}
	out := make([]Variant, 0, len(in))
	for _, v := range in {
		item := owner + "." + v.Name
		out = append(out, Variant{
			Name:   v.Name,
			Start:  bound(item, "start", v.Start, errs),
			End:    bound(item, "end", v.End, errs),
			Fields: fieldsOf(item, v.Fields, errs),
		})
	}
	return out
}

// bound converts a window bound. Revisions count from 1, so an explicit 0
// is an error rather than a spelling of "unset".
func bound(item, key string, p *int, errs *rxmerr.Collector) uint16 {
	if p == nil {
		return 0
	}
	if *p < 1 || *p > revision.MaxRevision {
		errs.Append(&revision.SchemaError{
			Kind:   revision.InvalidRevision,
			Item:   item,
			Reason: fmt.Sprintf("%s %d outside 1..%d", key, *p, revision.MaxRevision),
		})
		return 0
	}
	return uint16(*p)
}
