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

// Package model defines the contracts shared by dxrev value types: type
// versions, identifiers, revision windows, declarations and envelope tags.
//
// Every value that crosses a boundary (a schema document, a wire envelope, a
// debug dump) implements Model so that it can be validated, serialized to
// JSON and YAML, logged, and named in error messages the same way. The
// generic helpers in this package (ValidateAll, MustValidate, SafeString,
// ToJSON, ToYAML, FromJSON, FromYAML) are constrained to the parts of Model
// they call.
//
// Model values are immutable once constructed. Concurrent reads are safe;
// the Unmarshal methods mutate their receiver and need exclusive access.
package model

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Model is the root contract of every dxrev value type.
//
// A conforming type validates its own invariants, round-trips through JSON
// and YAML, renders itself for logs, reports a constant type name and knows
// when it holds no data.
//
//	var _ model.Model = (*Version)(nil)
type Model interface {
	Validatable
	Serializable
	Loggable
	Identifiable
	ZeroCheckable
}

// Validatable is implemented by types that check their own invariants.
//
// Validate MUST be pure: no I/O, no logging, no mutation of the receiver,
// and the same answer on every call. It returns nil only when the value is
// fully usable. Marshal methods call Validate before emitting anything and
// Unmarshal methods call it after decoding, so invalid values never leave
// or enter the process through a serializer.
type Validatable interface {
	Validate() error
}

// Serializable is implemented by types with JSON and YAML representations.
//
// Implementations usually delegate to the standard encoders through a local
// alias type to avoid recursion:
//
//	func (w Window) MarshalJSON() ([]byte, error) {
//	    if err := w.Validate(); err != nil {
//	        return nil, err
//	    }
//	    type alias Window
//	    return json.Marshal(alias(w))
//	}
//
// Decoding failures are reported as *errors.UnmarshalError.
type Serializable interface {
	json.Marshaler
	json.Unmarshaler
	yaml.Marshaler
	yaml.Unmarshaler
}

// Loggable provides the two textual renderings of a value.
//
// String is the full representation used in error messages and tests.
// Redacted is what structured logs receive. dxrev values carry no secrets,
// so most types return the same text from both; the split is kept so that
// schema payloads wrapped by callers can hide their content.
type Loggable interface {
	Redacted() string
	String() string
}

// Identifiable reports the constant, unqualified name of a type ("Version",
// "Window", "Tag"). It is used as the Type field of the errors package's
// value errors and as the "model" log field.
type Identifiable interface {
	TypeName() string
}

// ZeroCheckable reports whether a value is the zero value of its type.
//
// For Version the zero value doubles as the no-version sentinel, so IsZero
// and IsNone agree by construction.
type ZeroCheckable interface {
	IsZero() bool
}

// Comparable is implemented by value types with a semantic equality that
// differs from ==, or that want a method for use in generic code.
type Comparable[T any] interface {
	Equal(other T) bool
}

// Checked is the subset of Model the generic helpers need. Value types whose
// Unmarshal methods have pointer receivers satisfy it directly, so helpers
// accept []Window as well as []*Window.
type Checked interface {
	Validatable
	Identifiable
}
