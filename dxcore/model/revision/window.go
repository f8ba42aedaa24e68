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

// Package revision resolves revision windows: for a schema with maximum
// revision N it computes, for every r in 1..N, which fields or variants are
// alive at r.
//
// An item is alive at r when Start <= r and, if End is set, r < End. End is
// exclusive: a field with End 3 is last present in revision 2.
package revision

import (
	"encoding/json"
	"strconv"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model"
	"gopkg.in/yaml.v3"
)

// MaxRevision is the largest revision a schema may declare.
const MaxRevision = 1<<16 - 1

// Window is the revision range of one field or variant.
//
// A zero Start means the item exists from revision 1, a zero End means it is
// never removed. The zero Window therefore covers every revision. Zero is
// only the unset value: schema documents that write a bound of 0 are
// rejected when parsed.
type Window struct {
	Start uint16 `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End   uint16 `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
}

// Since returns the window opened at revision start and never closed.
func Since(start uint16) Window {
	return Window{Start: start}
}

// Between returns the window [start, end).
func Between(start, end uint16) Window {
	return Window{Start: start, End: end}
}

// First returns the first revision of w.
func (w Window) First() uint16 {
	if w.Start == 0 {
		return 1
	}
	return w.Start
}

// Bounded reports whether w has an end revision.
func (w Window) Bounded() bool {
	return w.End != 0
}

// Contains reports whether revision r lies inside w.
func (w Window) Contains(r uint16) bool {
	return w.First() <= r && (!w.Bounded() || r < w.End)
}

// check validates w against a maximum revision.
func (w Window) check(item string, max uint16) *SchemaError {
	first := w.First()
	if first > max || (w.Bounded() && (w.End <= first || w.End > max)) {
		return &SchemaError{Kind: RevisionOutOfRange, Item: item, Window: w, Max: max}
	}
	return nil
}

// String renders w as "[start, end)", with "open" for an unbounded end.
func (w Window) String() string {
	end := "open"
	if w.Bounded() {
		end = strconv.Itoa(int(w.End))
	}
	return "[" + strconv.Itoa(int(w.First())) + ", " + end + ")"
}

// Redacted is the same as String.
func (w Window) Redacted() string { return w.String() }

// TypeName returns "Window".
func (Window) TypeName() string { return "Window" }

// IsZero reports whether both bounds are unset.
func (w Window) IsZero() bool { return w == Window{} }

// Validate checks the part of the window invariant that does not depend on
// the schema's maximum revision: End, when set, lies after First.
func (w Window) Validate() error {
	if w.Bounded() && w.End <= w.First() {
		return &dxerrors.ValidationError{
			Type:   "Window",
			Field:  "End",
			Reason: "must be greater than Start",
			Value:  w.End,
		}
	}
	return nil
}

// MarshalJSON validates w and encodes it as {"start","end"}.
func (w Window) MarshalJSON() ([]byte, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	type alias Window
	return json.Marshal(alias(w))
}

// UnmarshalJSON decodes w and validates the result.
func (w *Window) UnmarshalJSON(data []byte) error {
	type alias Window
	if err := json.Unmarshal(data, (*alias)(w)); err != nil {
		return &dxerrors.UnmarshalError{Type: "Window", Data: data, Reason: err.Error()}
	}
	return w.Validate()
}

// MarshalYAML validates w and encodes it as a start/end mapping.
func (w Window) MarshalYAML() (interface{}, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	type alias Window
	return alias(w), nil
}

// UnmarshalYAML decodes w and validates the result.
func (w *Window) UnmarshalYAML(node *yaml.Node) error {
	type alias Window
	if err := node.Decode((*alias)(w)); err != nil {
		return &dxerrors.UnmarshalError{Type: "Window", Reason: err.Error()}
	}
	return w.Validate()
}

var _ model.Model = (*Window)(nil)
