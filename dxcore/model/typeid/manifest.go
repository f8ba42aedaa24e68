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

package typeid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model"
)

// Manifest is a batch of declarations kept in a file, for identities that
// are not produced by a compiled schema. Overrides may point at any member
// of the batch.
//
//	declarations:
//	  - name: billing.Invoice
//	    version: 2.0.0
//	  - name: billing.LegacyInvoice
//	    equal_to: billing.Invoice
type Manifest struct {
	Declarations []Declaration `json:"declarations" yaml:"declarations"`
}

// TypeName returns "Manifest".
func (Manifest) TypeName() string { return "Manifest" }

// Validate checks every declaration and reports all failures together.
func (m Manifest) Validate() error {
	return model.ValidateAll(m.Declarations)
}

// DecodeManifest parses a manifest written in syntax, "json" or "yaml".
func DecodeManifest(data []byte, syntax string) (Manifest, error) {
	var m Manifest
	var err error
	switch syntax {
	case "json":
		err = model.FromJSON(data, &m)
	case "yaml", "yml":
		err = model.FromYAML(data, &m)
	default:
		return Manifest{}, &dxerrors.ParseError{Type: "ManifestSyntax", Value: syntax}
	}
	if err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// EncodeManifest renders m in syntax, "json" or "yaml".
func EncodeManifest(m Manifest, syntax string) ([]byte, error) {
	switch syntax {
	case "json":
		return model.ToJSON(m)
	case "yaml", "yml":
		return model.ToYAML(m)
	default:
		return nil, &dxerrors.ParseError{Type: "ManifestSyntax", Value: syntax}
	}
}

// ReadManifest loads the manifest at path. The syntax follows the file
// extension.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := DecodeManifest(data, syntaxOf(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteManifest stores m at path in the syntax named by its extension.
func WriteManifest(path string, m Manifest) error {
	data, err := EncodeManifest(m, syntaxOf(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func syntaxOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// DeclareManifest declares every entry of m as one batch.
func (r *Registry) DeclareManifest(m Manifest) ([]Info, error) {
	return r.DeclareAll(m.Declarations)
}
