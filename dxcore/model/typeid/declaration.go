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
	"encoding/json"
	"fmt"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model"
	"dirpx.dev/dxrev/dxcore/model/version"
	"gopkg.in/yaml.v3"
)

// Declaration describes how a type obtains its identifier.
//
// By default the identifier is Hash(Name, &Version). OmitVersionHash hashes
// the name alone. EqualTo names another declared type whose identifier is
// adopted instead; the declaration still keeps its own Version.
type Declaration struct {
	Name            string          `json:"name" yaml:"name" toml:"name"`
	Version         version.Version `json:"version,omitzero" yaml:"version,omitempty" toml:"version,omitempty"`
	OmitVersionHash bool            `json:"omit_version_hash,omitempty" yaml:"omit_version_hash,omitempty" toml:"omit_version_hash,omitempty"`
	EqualTo         string          `json:"equal_to,omitempty" yaml:"equal_to,omitempty" toml:"equal_to,omitempty"`
}

// OwnID returns the identifier the declaration hashes to on its own,
// ignoring EqualTo.
func (d Declaration) OwnID() ID {
	if d.OmitVersionHash {
		return Hash(d.Name, nil)
	}
	v := d.Version
	return Hash(d.Name, &v)
}

// String renders "name@version", followed by " = target" for an override.
func (d Declaration) String() string {
	s := d.Name + "@" + d.Version.String()
	if d.EqualTo != "" {
		s += " = " + d.EqualTo
	}
	return s
}

// Redacted is the same as String.
func (d Declaration) Redacted() string { return d.String() }

// TypeName returns "Declaration".
func (Declaration) TypeName() string { return "Declaration" }

// IsZero reports whether every field is unset.
func (d Declaration) IsZero() bool { return d == Declaration{} }

// Validate requires a name. Override targets are checked by the Registry.
func (d Declaration) Validate() error {
	if d.Name == "" {
		return &dxerrors.ValidationError{Type: "Declaration", Field: "Name", Reason: "must not be empty"}
	}
	return nil
}

// MarshalJSON validates d before encoding it.
func (d Declaration) MarshalJSON() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	type alias Declaration
	return json.Marshal(alias(d))
}

// UnmarshalJSON decodes d and validates the result.
func (d *Declaration) UnmarshalJSON(data []byte) error {
	type alias Declaration
	if err := json.Unmarshal(data, (*alias)(d)); err != nil {
		return &dxerrors.UnmarshalError{Type: "Declaration", Data: data, Reason: err.Error()}
	}
	return d.Validate()
}

// MarshalYAML validates d before encoding it.
func (d Declaration) MarshalYAML() (interface{}, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	type alias Declaration
	return alias(d), nil
}

// UnmarshalYAML decodes d and validates the result.
func (d *Declaration) UnmarshalYAML(node *yaml.Node) error {
	type alias Declaration
	if err := node.Decode((*alias)(d)); err != nil {
		return &dxerrors.UnmarshalError{Type: "Declaration", Reason: err.Error()}
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("unmarshaled Declaration is invalid: %w", err)
	}
	return nil
}

var _ model.Model = (*Declaration)(nil)
