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

// Package version implements the three-part type version carried next to
// every type identifier.
//
// A type version is a plain (major, minor, patch) triple without pre-release
// or build metadata. Generated revision types use (r, 0, 0) where r is the
// revision number, so ordering versions orders revisions. The zero value,
// None, marks a type that does not take part in schema evolution.
package version

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model"
	msemver "github.com/Masterminds/semver/v3"
	bsemver "github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"
)

// Size is the length in bytes of the encoding returned by Bytes.
const Size = 24

// Version is a (major, minor, patch) type version.
//
// Versions are totally ordered by comparing Major, then Minor, then Patch.
// Compatibility (IsCompatible) is a separate, caret-style relation.
type Version struct {
	Major uint64 `json:"major" yaml:"major"`
	Minor uint64 `json:"minor" yaml:"minor"`
	Patch uint64 `json:"patch" yaml:"patch"`
}

// None is the no-version sentinel (0.0.0).
var None = Version{}

// New returns the version major.minor.patch.
func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Revision returns the version of revision r of an evolving type, (r, 0, 0).
func Revision(r uint16) Version {
	return Version{Major: uint64(r)}
}

// Parse parses "major.minor.patch", with an optional leading "v".
//
// Pre-release and build metadata are rejected: type versions never carry
// them, and accepting them would make two distinct strings hash to the same
// identifier.
func Parse(s string) (Version, error) {
	bv, err := bsemver.Parse(strings.TrimPrefix(s, "v"))
	if err != nil {
		return Version{}, &dxerrors.ParseError{Type: "Version", Value: s}
	}
	if len(bv.Pre) > 0 || len(bv.Build) > 0 {
		return Version{}, &dxerrors.ParseError{Type: "Version", Value: s}
	}
	return Version{Major: bv.Major, Minor: bv.Minor, Patch: bv.Patch}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Bytes returns the little-endian encoding major || minor || patch. It is
// the hash input for versioned identifiers and the version field of the
// binary envelope header.
func (v Version) Bytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint64(b[0:8], v.Major)
	binary.LittleEndian.PutUint64(b[8:16], v.Minor)
	binary.LittleEndian.PutUint64(b[16:24], v.Patch)
	return b
}

// FromBytes decodes the encoding produced by Bytes.
func FromBytes(b []byte) (Version, error) {
	if len(b) != Size {
		return Version{}, &dxerrors.UnmarshalError{
			Type:   "Version",
			Data:   b,
			Reason: fmt.Sprintf("want %d bytes, got %d", Size, len(b)),
		}
	}
	return Version{
		Major: binary.LittleEndian.Uint64(b[0:8]),
		Minor: binary.LittleEndian.Uint64(b[8:16]),
		Patch: binary.LittleEndian.Uint64(b[16:24]),
	}, nil
}

// IsNone reports whether v is the no-version sentinel.
func (v Version) IsNone() bool {
	return v == None
}

// IsCompatible reports whether a value of version v can be accepted where
// want is expected, following the caret rule:
//
//   - want.Major > 0: same major and v >= want
//   - want is 0.y.z with y > 0: same major and minor, and v >= want
//   - want is 0.0.z: exactly want
//
// None is compatible only with None.
func (v Version) IsCompatible(want Version) bool {
	if want.IsNone() || v.IsNone() {
		return v == want
	}

	c, err := msemver.NewConstraint("^" + want.String())
	if err != nil {
		return false
	}
	return c.Check(msemver.New(v.Major, v.Minor, v.Patch, "", ""))
}

// Compare returns -1, 0 or +1 as v is less than, equal to or greater than
// other.
func (v Version) Compare(other Version) int {
	return v.blang().Compare(other.blang())
}

// Compare is the package-level form of a.Compare(b), usable with
// slices.SortFunc.
func Compare(a, b Version) int {
	return a.Compare(b)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Greater reports whether v sorts after other.
func (v Version) Greater(other Version) bool {
	return v.Compare(other) > 0
}

// Equal reports whether v and other are the same version.
func (v Version) Equal(other Version) bool {
	return v == other
}

func (v Version) blang() bsemver.Version {
	return bsemver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Redacted returns the same text as String; versions are not sensitive.
func (v Version) Redacted() string {
	return v.String()
}

// TypeName implements model.Identifiable.
func (Version) TypeName() string {
	return "Version"
}

// IsZero reports whether v is 0.0.0.
func (v Version) IsZero() bool {
	return v.IsNone()
}

// Validate always succeeds: every triple is a valid type version.
func (Version) Validate() error {
	return nil
}

// MarshalJSON encodes v as {"major":M,"minor":m,"patch":p}.
func (v Version) MarshalJSON() ([]byte, error) {
	type alias Version
	return json.Marshal(alias(v))
}

// UnmarshalJSON accepts the object form written by MarshalJSON or a
// "major.minor.patch" string.
func (v *Version) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &dxerrors.UnmarshalError{Type: "Version", Data: data, Reason: err.Error()}
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}

	type alias Version
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return &dxerrors.UnmarshalError{Type: "Version", Data: data, Reason: err.Error()}
	}
	*v = Version(a)
	return nil
}

// MarshalYAML encodes v as a "major.minor.patch" scalar.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML accepts a "major.minor.patch" scalar or a mapping with
// major, minor and patch keys.
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case yaml.MappingNode:
		type alias Version
		var a alias
		if err := node.Decode(&a); err != nil {
			return &dxerrors.UnmarshalError{Type: "Version", Reason: err.Error()}
		}
		*v = Version(a)
		return nil
	default:
		return &dxerrors.UnmarshalError{
			Type:   "Version",
			Reason: fmt.Sprintf("unexpected YAML node kind %d", node.Kind),
		}
	}
}

// MarshalText encodes v as "major.minor.patch".
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses "major.minor.patch".
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

var _ model.Model = (*Version)(nil)
var _ model.Comparable[Version] = Version{}
