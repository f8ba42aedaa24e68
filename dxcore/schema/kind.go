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
	"encoding/json"

	"dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model"
	"gopkg.in/yaml.v3"
)

// Kind is the shape of an evolving type: a struct whose fields come and go,
// or an enum whose variants do.
//
// The zero value is KindStruct, so schema documents may omit the kind of a
// struct.
type Kind int

const (
	// KindStruct is a record with named fields.
	KindStruct Kind = iota

	// KindEnum is a tagged union of named variants, each with its own
	// fields.
	KindEnum
)

const (
	KindStructStr = "struct"
	KindEnumStr   = "enum"
)

// ParseKind converts a textual kind into a Kind. The match is exact apart
// from the capitalised forms "Struct" and "Enum".
func ParseKind(s string) (Kind, error) {
	switch s {
	case KindStructStr, "Struct", "":
		return KindStruct, nil
	case KindEnumStr, "Enum":
		return KindEnum, nil
	default:
		return KindStruct, &errors.ParseError{Type: "Kind", Value: s}
	}
}

// String returns "struct" or "enum".
func (k Kind) String() string {
	switch k {
	case KindStruct:
		return KindStructStr
	case KindEnum:
		return KindEnumStr
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k == KindStruct || k == KindEnum
}

// TypeName returns "Kind".
func (k Kind) TypeName() string { return "Kind" }
func (k Kind) Redacted() string { return k.String() }
func (k Kind) IsZero() bool { return k == KindStruct }

// Validate rejects values other than KindStruct and KindEnum.
func (k Kind) Validate() error {
	if !k.Valid() {
		return &errors.ValidationError{
			Type:   "Kind",
			Reason: "invalid Kind value",
			Value:  int(k),
		}
	}
	return nil
}

// MarshalJSON encodes k as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, &errors.MarshalError{Type: "Kind", Value: int(k)}
	}
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON accepts the names ParseKind does.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &errors.UnmarshalError{Type: "Kind", Data: data, Reason: err.Error()}
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes k as its name.
func (k Kind) MarshalYAML() (any, error) {
	if !k.Valid() {
		return nil, &errors.MarshalError{Type: "Kind", Value: int(k)}
	}
	return k.String(), nil
}

// UnmarshalYAML accepts the names ParseKind does.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return &errors.UnmarshalError{Type: "Kind", Data: []byte(node.Value), Reason: err.Error()}
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText and UnmarshalText let TOML documents carry a kind.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, &errors.MarshalError{Type: "Kind", Value: int(k)}
	}
	return []byte(k.String()), nil
}

// UnmarshalText lets TOML documents name the kind.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

var _ model.Model = (*Kind)(nil)
