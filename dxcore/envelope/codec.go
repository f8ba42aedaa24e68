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

package envelope

import (
	"errors"
	"fmt"

	"dirpx.dev/dxrev/dxcore/format"
	"dirpx.dev/dxrev/dxcore/model/version"
	"dirpx.dev/dxrev/dxcore/schema"
	"github.com/sirupsen/logrus"
)

// Codec writes envelopes at the current revision of a family and reads
// envelopes of any revision up to it. A Codec is immutable and safe for
// concurrent use.
type Codec[T any] struct {
	fam      *schema.Family
	format   format.Format
	tag      Tag
	handlers []handler[T]
	encode   func(T) (any, error)
	metrics  *Metrics
	log      logrus.FieldLogger
}

// Family returns the family the codec was built for.
func (c *Codec[T]) Family() *schema.Family { return c.fam }

// Format returns the codec's encoding.
func (c *Codec[T]) Format() format.Format { return c.format }

// Tag returns the tag written by Marshal.
func (c *Codec[T]) Tag() Tag { return c.tag }

// Marshal encodes v as an envelope of the current revision.
func (c *Codec[T]) Marshal(v T) ([]byte, error) {
	payload, err := c.encode(v)
	if err != nil {
		return nil, err
	}
	data, err := c.format.Encode(c.tag, payload)
	if err != nil {
		return nil, err
	}
	c.metrics.encoded(c.fam.Info().Name, c.format.Name())
	return data, nil
}

// Unmarshal decodes an envelope and returns its payload converted to the
// current revision.
func (c *Codec[T]) Unmarshal(data []byte) (T, error) {
	env, err := c.Decode(data)
	return env.Payload, err
}

// Decode reads an envelope. See Reader.Read.
func (c *Codec[T]) Decode(data []byte) (Envelope[T], error) {
	return c.NewReader().Read(data)
}

// Peek reads and checks the tag of an envelope without decoding the
// payload.
func (c *Codec[T]) Peek(data []byte) (Tag, error) {
	tag, err := c.format.PeekTag(data)
	if err != nil {
		return Tag{}, err
	}
	if _, err := c.check(tag); err != nil {
		return tag, err
	}
	return tag, nil
}

// check returns the revision named by tag, or the protocol error that
// rejects it.
func (c *Codec[T]) check(tag Tag) (uint16, error) {
	if tag.ID != c.tag.ID {
		return 0, &TypeIDMismatchError{Got: tag.ID, Want: c.tag.ID}
	}
	v := tag.Version
	if v.Major == 0 {
		return 0, &UnknownRevisionError{Version: v}
	}
	if v.Major > uint64(c.fam.Max()) {
		return 0, &VersionTooNewError{Got: v, CurrentMax: version.Revision(c.fam.Max())}
	}
	if v.Minor != 0 || v.Patch != 0 {
		return 0, &UnknownRevisionError{Version: v}
	}
	return uint16(v.Major), nil
}

// NewReader returns a Reader for one envelope.
func (c *Codec[T]) NewReader() *Reader[T] {
	return &Reader[T]{codec: c}
}

// Reader reads one envelope and records the state it stopped in. It is not
// safe for concurrent use.
type Reader[T any] struct {
	codec *Codec[T]
	state State
	tag   Tag
}

// State returns the state the last Read stopped in.
func (r *Reader[T]) State() State { return r.state }

// Tag returns the tag peeked by the last Read, if any.
func (r *Reader[T]) Tag() Tag { return r.tag }

// Read peeks the tag of data, checks it against the codec's family and,
// only when it is accepted, decodes the payload with the handler of its
// revision.
func (r *Reader[T]) Read(data []byte) (Envelope[T], error) {
	c := r.codec
	r.state, r.tag = Start, Tag{}

	tag, err := c.format.PeekTag(data)
	if err != nil {
		return Envelope[T]{}, r.reject(OutcomeMalformed, err)
	}
	r.state, r.tag = TagPeeked, tag

	rev, err := c.check(tag)
	if err != nil {
		return Envelope[T]{}, r.reject(outcomeOf(err), err)
	}
	r.state = Validated

	v, err := c.handlers[rev-1](c.format, data)
	if err != nil {
		err = fmt.Errorf("decoding %s revision %d: %w", c.fam.Info().Name, rev, err)
		return Envelope[T]{}, r.reject(OutcomePayload, err)
	}
	r.state = Decoded

	c.metrics.decoded(c.fam.Info().Name, c.format.Name(), OutcomeOK)
	return Envelope[T]{Tag: tag, Payload: v}, nil
}

func (r *Reader[T]) reject(outcome string, err error) error {
	c := r.codec
	r.state = Rejected
	c.metrics.decoded(c.fam.Info().Name, c.format.Name(), outcome)
	c.log.WithFields(logrus.Fields{
		"type_id": r.tag.ID.Hex(),
		"version": r.tag.Version.String(),
		"outcome": outcome,
	}).WithError(err).Debug("envelope rejected")
	return err
}

func outcomeOf(err error) string {
	var (
		mismatch *TypeIDMismatchError
		tooNew   *VersionTooNewError
	)
	switch {
	case errors.As(err, &mismatch):
		return OutcomeTypeMismatch
	case errors.As(err, &tooNew):
		return OutcomeTooNew
	default:
		return OutcomeUnknownRevision
	}
}
