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

// Package gen emits Go source for a compiled schema family.
//
// For a family Record with three revisions the generated file declares
// RecordV1, RecordV2 and RecordV3, the alias Record = RecordV3, one
// UpgradeRecordV<r> function per step, RecordFromV<r> functions carrying
// any revision to the current one, and RegisterRecord, which wires them
// into an envelope codec.
//
// Structural steps are generated. A step that the schema marks manual, or
// that the family converts with a registered converter, calls an
// unexported upgradeRecordV<r> function that the author writes next to the
// generated file; the package does not build until it exists.
package gen

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"text/template"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/schema"
)

//go:embed family.go.tmpl
var familyTemplate string

var tmpl = template.Must(template.New("family").Parse(familyTemplate))

// Options controls the generated file.
type Options struct {
	// Package is the package clause of the generated file.
	Package string

	// Imports lists extra import paths needed by field types, for example
	// "time" for a time.Time field.
	Imports []string
}

type fileData struct {
	Package   string
	Imports   []string
	Name      string
	Qualified string
	Enum      bool
	Current   string
	Canonical infoData
	Revisions []revData
	Steps     []stepData
	Chain     []chainData
}

type infoData struct {
	Name  string
	ID    string
	Major uint64
}

type revData struct {
	GoName   string
	Revision uint16
	Info     infoData
	Fields   []fieldData
	Variants []variantData
}

type fieldData struct {
	GoName string
	Type   string
	Tag    string
}

type variantData struct {
	Name    string
	GoType  string
	Tag     string
	Fields  []fieldData
	Assigns []assign
}

type assign struct {
	GoName string
	Expr   string
}

type stepData struct {
	Func     string
	From     string
	To       string
	Author   string
	Assigns  []assign
	Variants []variantData
}

type chainData struct {
	Func     string
	From     string
	Revision uint16
	Step     string
	Next     string
}

// Generate returns the formatted Go source of fam's revision types.
func Generate(fam *schema.Family, opts Options) ([]byte, error) {
	if !token.IsIdentifier(opts.Package) {
		return nil, &dxerrors.ValidationError{Type: "Options", Field: "Package", Reason: "not a Go identifier", Value: opts.Package}
	}

	data, err := build(fam, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("generating %s: %w", data.Qualified, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("formatting %s: %w", data.Qualified, err)
	}
	return src, nil
}

func build(fam *schema.Family, opts Options) (*fileData, error) {
	s := fam.Schema()
	revs := fam.Revisions()

	data := &fileData{
		Package:   opts.Package,
		Imports:   opts.Imports,
		Name:      s.Name,
		Qualified: fam.Info().Name,
		Enum:      fam.Kind() == schema.KindEnum,
		Current:   revs[len(revs)-1].GoName,
		Canonical: infoOf(fam.Info()),
	}

	for _, rt := range revs {
		rd := revData{GoName: rt.GoName, Revision: rt.Revision, Info: infoOf(rt.Info)}
		if data.Enum {
			for _, vt := range rt.Variants {
				fields, err := fieldsOf(rt.GoName+"."+vt.Name, vt.Fields)
				if err != nil {
					return nil, err
				}
				rd.Variants = append(rd.Variants, variantData{
					Name:   vt.Name,
					GoType: rt.GoName + vt.Name,
					Tag:    fmt.Sprintf("`json:%q yaml:%q`", vt.Name+",omitempty", vt.Name+",omitempty"),
					Fields: fields,
				})
			}
		} else {
			fields, err := fieldsOf(rt.GoName, rt.Fields)
			if err != nil {
				return nil, err
			}
			rd.Fields = fields
		}
		data.Revisions = append(data.Revisions, rd)
	}

	for i := 0; i+1 < len(revs); i++ {
		step, err := stepOf(fam, revs[i], revs[i+1])
		if err != nil {
			return nil, err
		}
		data.Steps = append(data.Steps, step)
	}

	for i, rt := range revs {
		c := chainData{
			Func:     fmt.Sprintf("%sFromV%d", s.Name, rt.Revision),
			From:     rt.GoName,
			Revision: rt.Revision,
		}
		if i+1 < len(revs) {
			c.Step = data.Steps[i].Func
			c.Next = fmt.Sprintf("%sFromV%d", s.Name, revs[i+1].Revision)
		}
		data.Chain = append(data.Chain, c)
	}

	return data, nil
}

func infoOf(info typeid.Info) infoData {
	return infoData{Name: info.Name, ID: info.ID.Hex(), Major: info.Version.Major}
}

func fieldsOf(owner string, fields []schema.Field) ([]fieldData, error) {
	seen := make(map[string]string, len(fields))
	out := make([]fieldData, 0, len(fields))
	for _, f := range fields {
		name := exported(f.Name)
		if prev, ok := seen[name]; ok {
			return nil, &dxerrors.ValidationError{
				Type:   owner,
				Field:  f.Name,
				Reason: fmt.Sprintf("Go name %s is also used by %s", name, prev),
			}
		}
		seen[name] = f.Name

		if _, err := parser.ParseExpr(f.Type); err != nil {
			return nil, &dxerrors.ValidationError{
				Type:   owner,
				Field:  f.Name,
				Reason: fmt.Sprintf("type %q is not a Go type", f.Type),
			}
		}
		out = append(out, fieldData{
			GoName: name,
			Type:   f.Type,
			Tag:    fmt.Sprintf("`json:%q yaml:%q`", f.Name, f.Name),
		})
	}
	return out, nil
}

func stepOf(fam *schema.Family, from, to *schema.RevisionType) (stepData, error) {
	s := fam.Schema()
	r := from.Revision
	step := stepData{
		Func: "Upgrade" + from.GoName,
		From: from.GoName,
		To:   to.GoName,
	}
	if s.IsManual(r) || fam.HasConverter(r) {
		step.Author = "upgrade" + from.GoName
		return step, nil
	}

	if fam.Kind() == schema.KindStruct {
		assigns, err := assignsOf(to.GoName, "v.", from.Fields, to.Fields)
		if err != nil {
			return stepData{}, err
		}
		step.Assigns = assigns
		return step, nil
	}

	for _, src := range from.Variants {
		dst, ok := to.Variant(src.Name)
		if !ok {
			return stepData{}, fmt.Errorf("%s: variant %s has no successor", step.Func, src.Name)
		}
		assigns, err := assignsOf(to.GoName+"."+dst.Name, "v."+src.Name+".", src.Fields, dst.Fields)
		if err != nil {
			return stepData{}, err
		}
		step.Variants = append(step.Variants, variantData{
			Name:    dst.Name,
			GoType:  to.GoName + dst.Name,
			Assigns: assigns,
		})
	}
	return step, nil
}

// assignsOf maps each field of to onto the same-named field of from, or
// onto its default.
func assignsOf(owner, prefix string, from, to []schema.Field) ([]assign, error) {
	out := make([]assign, 0, len(to))
	for _, f := range to {
		name := exported(f.Name)
		if prev, ok := fieldNamed(from, f.Name); ok && prev.Type == f.Type {
			out = append(out, assign{GoName: name, Expr: prefix + name})
			continue
		}
		lit, err := literal(f.Default)
		if err != nil {
			return nil, &dxerrors.ValidationError{Type: owner, Field: f.Name, Reason: err.Error(), Value: f.Default}
		}
		out = append(out, assign{GoName: name, Expr: lit})
	}
	return out, nil
}

func fieldNamed(fields []schema.Field, name string) (schema.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return schema.Field{}, false
}

// literal renders a default as a Go constant.
func literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", fmt.Errorf("no default")
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("default of type %T has no Go literal", v)
	}
}

// exported turns a schema name such as "created_at" into "CreatedAt".
func exported(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "X" + name
	}
	return b.String()
}
