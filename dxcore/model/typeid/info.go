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

// UnregisteredName is the name reported for values with no declaration.
const UnregisteredName = "NOT_IMPLEMENTED"

// Unregistered is the Info returned by Registry.Of for values whose type
// was never declared.
var Unregistered = model.MustValidate(Info{
	Name:    UnregisteredName,
	ID:      Hash(UnregisteredName, &version.None),
	Version: version.None,
})

// Info is the resolved identity of a declared type.
type Info struct {
	Name    string          `json:"name" yaml:"name"`
	ID      ID              `json:"id" yaml:"id"`
	Version version.Version `json:"version" yaml:"version"`
}

// Typed is implemented by values that report their own identity, such as
// generated revision types.
type Typed interface {
	TypeInfo() Info
}

// NoVersion reports whether the type does not take part in schema
// evolution.
func (i Info) NoVersion() bool {
	return i.Version.IsNone()
}

// SameType reports whether two infos carry the same identifier. Revisions
// of one family are the same type at different versions.
func (i Info) SameType(other Info) bool {
	return i.ID == other.ID
}

// String renders "name@version#0x...".
func (i Info) String() string {
	return fmt.Sprintf("%s@%s#%s", i.Name, i.Version, i.ID.Hex())
}

// Redacted is the same as String.
func (i Info) Redacted() string { return i.String() }

// TypeName returns "Info".
func (Info) TypeName() string { return "Info" }

// IsZero reports whether i is the zero Info.
func (i Info) IsZero() bool { return i == Info{} }

// Validate requires a name.
func (i Info) Validate() error {
	if i.Name == "" {
		return &dxerrors.ValidationError{Type: "Info", Field: "Name", Reason: "must not be empty"}
	}
	return nil
}

// MarshalJSON validates i and encodes name, id and version.
func (i Info) MarshalJSON() ([]byte, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	type alias Info
	return json.Marshal(alias(i))
}

// UnmarshalJSON decodes and validates an Info.
func (i *Info) UnmarshalJSON(data []byte) error {
	type alias Info
	if err := json.Unmarshal(data, (*alias)(i)); err != nil {
		return &dxerrors.UnmarshalError{Type: "Info", Data: data, Reason: err.Error()}
	}
	return i.Validate()
}

// MarshalYAML validates i and encodes name, id and version.
func (i Info) MarshalYAML() (interface{}, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	type alias Info
	return alias(i), nil
}

// UnmarshalYAML decodes and validates an Info.
func (i *Info) UnmarshalYAML(node *yaml.Node) error {
	type alias Info
	if err := node.Decode((*alias)(i)); err != nil {
		return &dxerrors.UnmarshalError{Type: "Info", Reason: err.Error()}
	}
	return i.Validate()
}

var _ model.Model = (*Info)(nil)
