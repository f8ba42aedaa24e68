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

// Package typeid assigns stable 64-bit identifiers to named, versioned
// types and keeps the registry that resolves identifier overrides.
//
// An identifier is derived only from a type's declared name and version, so
// independently compiled programs that declare the same type agree on its
// identifier without coordination. Identifiers are not cryptographic: two
// different declarations collide with the probability of a 64-bit hash.
package typeid

import (
	"encoding/json"
	"math/bits"
	"strconv"
	"strings"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model"
	"dirpx.dev/dxrev/dxcore/model/version"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

// ID is a type identifier.
type ID uint64

// HashName returns the identifier of a bare name.
func HashName(name string) ID {
	return ID(xxh3.HashString(name))
}

// HashBytes hashes an arbitrary byte string with the identifier hash.
func HashBytes(b []byte) ID {
	return ID(xxh3.Hash(b))
}

// Mix folds two hashes into one with a 64x64 -> 128 bit multiply, returning
// the xor of the high and low halves of the product.
func Mix(a, b ID) ID {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return ID(hi ^ lo)
}

// Hash returns the identifier of name at version v. With a nil v only the
// name is hashed; this is how revision families share one identifier across
// versions.
func Hash(name string, v *version.Version) ID {
	h := HashName(name)
	if v == nil {
		return h
	}
	b := v.Bytes()
	return Mix(h, HashBytes(b[:]))
}

// ParseID parses a decimal identifier or a 0x-prefixed hexadecimal one.
func ParseID(s string) (ID, error) {
	base, digits := 10, s
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		base, digits = 16, rest
	}
	n, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, &dxerrors.ParseError{Type: "ID", Value: s}
	}
	return ID(n), nil
}

// String returns the identifier in decimal.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Hex returns the identifier as 0x followed by 16 hex digits.
func (id ID) Hex() string {
	s := strconv.FormatUint(uint64(id), 16)
	return "0x" + strings.Repeat("0", 16-len(s)) + s
}

// Redacted returns the hexadecimal form; identifiers are not secret.
func (id ID) Redacted() string { return id.Hex() }

// TypeName returns "ID".
func (ID) TypeName() string { return "ID" }

// IsZero reports whether id is 0, which no declaration is expected to hash to.
func (id ID) IsZero() bool { return id == 0 }

// Validate accepts every value.
func (ID) Validate() error { return nil }

// MarshalJSON encodes id as a bare decimal number. Readers that parse JSON
// numbers as float64 lose precision above 2^53; decode into ID or uint64.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON accepts a decimal number.
func (id *ID) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return &dxerrors.UnmarshalError{Type: "ID", Data: data, Reason: err.Error()}
	}
	*id = ID(n)
	return nil
}

// MarshalYAML encodes id as a decimal integer.
func (id ID) MarshalYAML() (interface{}, error) {
	return uint64(id), nil
}

// UnmarshalYAML accepts the forms ParseID does.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseID(node.Value)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

var _ model.Model = (*ID)(nil)
