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

package revision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dirpx.dev/rxmerr"
)

// ErrorKind classifies a SchemaError.
type ErrorKind int

const (
	// RevisionOutOfRange: a field or variant window leaves [1, max].
	RevisionOutOfRange ErrorKind = iota + 1

	// InvalidRevision: the maximum revision is 0 or wider than 16 bits.
	InvalidRevision

	// DuplicateRevisionSpecified: the maximum revision, or a handler for
	// one revision, was given twice.
	DuplicateRevisionSpecified

	// MissingRevisionSpecified: no maximum revision was given, or a
	// revision has no handler.
	MissingRevisionSpecified

	// MissingForwardConversion: a step r -> r+1 can neither be derived
	// structurally nor has an author-supplied conversion.
	MissingForwardConversion

	// DuplicateName: two fields or variants with one name are alive at the
	// same revision, or a type name is declared twice.
	DuplicateName

	// UnknownOverride: a declaration adopts the identifier of a type that
	// was never declared.
	UnknownOverride

	// OverrideCycle: identifier overrides form a cycle.
	OverrideCycle
)

// String returns the kind name, for example "MissingForwardConversion".
func (k ErrorKind) String() string {
	switch k {
	case RevisionOutOfRange:
		return "revision out of range"
	case InvalidRevision:
		return "invalid revision"
	case DuplicateRevisionSpecified:
		return "revision specified twice"
	case MissingRevisionSpecified:
		return "revision not specified"
	case MissingForwardConversion:
		return "missing forward conversion"
	case DuplicateName:
		return "duplicate name"
	case UnknownOverride:
		return "unknown override"
	case OverrideCycle:
		return "override cycle"
	default:
		return "unknown schema error"
	}
}

// SchemaError reports a mistake in a schema definition. Schema errors are
// raised once, when a schema is resolved or compiled, and are not
// recoverable at runtime.
type SchemaError struct {
	Kind ErrorKind

	// Item names the offending field, variant or type, if any.
	Item string

	// Window is the declared window of Item (RevisionOutOfRange).
	Window Window

	// Max is the maximum revision the schema declares.
	Max uint16

	// Step is r for a failing conversion r -> r+1.
	Step uint16

	Reason string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("dxrev: ")
	b.WriteString(e.Kind.String())
	if e.Item != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Item))
	}
	if e.Kind == RevisionOutOfRange {
		fmt.Fprintf(&b, ": window %s outside [1, %d]", e.Window, e.Max)
	}
	if e.Step != 0 {
		fmt.Fprintf(&b, " at step %d -> %d", e.Step, e.Step+1)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is matches another *SchemaError of the same kind. A target with a
// non-empty Item also has to name the same item.
func (e *SchemaError) Is(target error) bool {
	t, ok := target.(*SchemaError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Item == "" || t.Item == e.Item)
}

// IsKind reports whether err, or any error it wraps, is a SchemaError of
// kind k.
func IsKind(err error, k ErrorKind) bool {
	return errors.Is(err, &SchemaError{Kind: k})
}

// SchemaErrors returns every *SchemaError held by err, in the order they
// were collected. It flattens errors aggregated with rxmerr.
func SchemaErrors(err error) []*SchemaError {
	if err == nil {
		return nil
	}
	var out []*SchemaError
	for _, e := range rxmerr.Errors(err) {
		var se *SchemaError
		if errors.As(e, &se) {
			out = append(out, se)
		}
	}
	return out
}
