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

// Package format implements the wire encodings of tagged envelopes.
//
// Every encoding stores the type identifier and version next to the
// payload, never inside it, so that PeekTag can read them without decoding
// the payload. Two self-describing text encodings (JSON, YAML) and one
// fixed-layout binary encoding are provided.
package format

import (
	"strings"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
)

// Tag is the part of an envelope that can be read on its own.
type Tag struct {
	ID      typeid.ID
	Version version.Version
}

// String renders "0x<id>@<version>".
func (t Tag) String() string {
	return t.ID.Hex() + "@" + t.Version.String()
}

// Format encodes and decodes envelopes.
//
// Implementations are stateless and safe for concurrent use.
type Format interface {
	// Name returns a short lower-case name such as "json".
	Name() string

	// Encode writes tag and payload as one envelope.
	Encode(tag Tag, payload any) ([]byte, error)

	// PeekTag reads only the tag of an envelope.
	PeekTag(data []byte) (Tag, error)

	// DecodePayload decodes the payload of an envelope into into, which
	// must be a pointer.
	DecodePayload(data []byte, into any) error
}

// ByName returns the format called name: "json", "yaml" or "binary".
func ByName(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "binary", "cbor":
		return Binary{}, nil
	default:
		return nil, &dxerrors.ParseError{Type: "Format", Value: name}
	}
}
