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

// Package envelope implements the tagged envelope protocol.
//
// An envelope carries a type identifier and a version next to a payload.
// Readers peek the tag first and decide, before anything is decoded,
// whether they understand the payload:
//
//	Start -> TagPeeked -> Validated -> Decoded
//	Start -> TagPeeked -> Rejected
//
// A payload whose identifier belongs to another type, or whose revision is
// newer than the reader's current one, is rejected with a typed error and
// never decoded. Older revisions are decoded into their own revision type
// and converted forward to the canonical one.
//
// Writers always encode the current revision:
//
//	b := envelope.NewBuilder[RecordV3](fam, format.JSON{})
//	envelope.On(b, 1, func(v RecordV1) (RecordV3, error) { ... })
//	envelope.On(b, 2, func(v RecordV2) (RecordV3, error) { ... })
//	envelope.On(b, 3, func(v RecordV3) (RecordV3, error) { return v, nil })
//	codec, err := b.Build()
package envelope

import (
	"dirpx.dev/dxrev/dxcore/format"
	"dirpx.dev/dxrev/dxcore/model/typeid"
)

// Tag is the identifier and version of an envelope.
type Tag = format.Tag

// IDTag is the identifier-only view of a tag.
type IDTag struct {
	ID typeid.ID
}

// Envelope is a decoded envelope: the tag as it was read and the payload
// converted to the current revision.
type Envelope[T any] struct {
	Tag     Tag
	Payload T
}

// IDTag returns the identifier-only view of e's tag.
func (e Envelope[T]) IDTag() IDTag {
	return IDTag{ID: e.Tag.ID}
}

// Revision returns the revision the payload was written at.
func (e Envelope[T]) Revision() uint16 {
	return uint16(e.Tag.Version.Major)
}

// State is a step of the read state machine.
type State int

const (
	Start State = iota
	TagPeeked
	Validated
	Decoded
	Rejected
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case TagPeeked:
		return "tag-peeked"
	case Validated:
		return "validated"
	case Decoded:
		return "decoded"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}
