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

// Package errors provides the value error types shared by the dxrev model
// packages (version, typeid, revision, schema).
//
// The errors here are plain value carriers with stable message formats. They
// are returned by the Parse / Marshal / Unmarshal / Validate methods of model
// types and are meant to be recognized with errors.As rather than by
// comparing strings:
//
//   - ParseError: textual input (a schema document, a version string, a kind
//     name) could not be interpreted.
//   - MarshalError: an invalid value was about to be emitted into JSON, YAML
//     or text.
//   - UnmarshalError: decoding into a model type failed.
//   - ValidationError: a model value violates one of its invariants.
//
// Domain specific failures live next to the code that raises them:
// revision.SchemaError for schema-definition mistakes and the envelope
// package's protocol errors for runtime decode rejections.
//
// Packages usually re-export the types they use through aliases:
//
//	type ParseError = errors.ParseError
package errors

import "strconv"

// ParseError is returned when a textual representation cannot be parsed into
// a model value.
//
// Type names the logical type being parsed (for example "Version" or
// "Kind") and Value holds the exact input that was rejected.
type ParseError struct {
	// Type is the logical name of the type being parsed.
	Type string

	// Value is the rejected textual input.
	Value string
}

// Error implements the error interface.
//
// Format:
//
//	"dxrev: invalid {Type} value: {Value}"
func (e *ParseError) Error() string {
	return "dxrev: invalid " + e.Type + " value: " + e.Value
}

// MarshalError is returned when marshaling a value that does not correspond
// to a known constant (for example an out-of-range Kind).
type MarshalError struct {
	// Type is the logical name of the type being marshaled.
	Type string

	// Value is the numeric representation that could not be marshaled.
	Value int
}

// Error implements the error interface.
//
// Format:
//
//	"dxrev: cannot marshal invalid {Type} value: {Value}"
func (e *MarshalError) Error() string {
	return "dxrev: cannot marshal invalid " + e.Type + " value: " + strconv.Itoa(e.Value)
}

// UnmarshalError is returned when decoding data into a model type fails.
//
// Data keeps the raw input so callers can log it when appropriate; it is
// intentionally left out of Error().
type UnmarshalError struct {
	// Type is the logical name of the type being unmarshaled into.
	Type string

	// Data is the raw input that failed to unmarshal.
	Data []byte

	// Reason is a short, human-readable explanation of the failure.
	Reason string
}

// Error implements the error interface.
//
// Format:
//
//	"dxrev: cannot unmarshal {Type}: {Reason}"
func (e *UnmarshalError) Error() string {
	return "dxrev: cannot unmarshal " + e.Type + ": " + e.Reason
}

// ValidationError is returned by Validate methods when a model value violates
// one of its invariants.
//
// Field is optional; when empty the error applies to the whole value.
type ValidationError struct {
	// Type is the logical name of the type being validated.
	Type string

	// Field is the name of the offending field, if any.
	Field string

	// Reason explains why validation failed.
	Reason string

	// Value optionally carries the offending value.
	Value any
}

// Error implements the error interface.
//
// Format:
//
//	"dxrev: invalid {Type}.{Field}: {Reason}" (when Field is set)
//	"dxrev: invalid {Type}: {Reason}"         (otherwise)
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "dxrev: invalid " + e.Type + "." + e.Field + ": " + e.Reason
	}
	return "dxrev: invalid " + e.Type + ": " + e.Reason
}
