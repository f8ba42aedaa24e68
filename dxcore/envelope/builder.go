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
	"fmt"

	"dirpx.dev/dxrev/dxcore/format"
	"dirpx.dev/dxrev/dxcore/internal/logging"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/dxrev/dxcore/schema"
	"dirpx.dev/rxmerr"
	"github.com/sirupsen/logrus"
)

// Option configures a Builder.
type Option func(*config)

type config struct {
	metrics *Metrics
	log     logrus.FieldLogger
}

// WithMetrics counts encoded and decoded envelopes on m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithLogger logs rejected envelopes at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = logging.Or(l)
	}
}

// handler decodes the payload of one revision and converts it to T.
type handler[T any] func(f format.Format, data []byte) (T, error)

// Builder collects one handler per revision of a family.
type Builder[T any] struct {
	fam      *schema.Family
	format   format.Format
	handlers []handler[T]
	encode   func(T) (any, error)
	errs     error
	cfg      config
}

// NewBuilder starts a codec for fam in format f. T is the type values are
// decoded into, normally the canonical revision type.
func NewBuilder[T any](fam *schema.Family, f format.Format, opts ...Option) *Builder[T] {
	b := &Builder[T]{
		fam:      fam,
		format:   f,
		handlers: make([]handler[T], fam.Max()),
		encode:   func(v T) (any, error) { return v, nil },
		cfg:      config{log: logging.Discard()},
	}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	return b
}

// On registers fn as the handler of revision r: payloads tagged with r are
// decoded into R and passed to fn.
//
// A second handler for r, or an r outside the family, is reported by Build.
func On[T, R any](b *Builder[T], r uint16, fn func(R) (T, error)) *Builder[T] {
	b.add(r, func(f format.Format, data []byte) (T, error) {
		var in R
		if err := f.DecodePayload(data, &in); err != nil {
			var zero T
			return zero, err
		}
		return fn(in)
	})
	return b
}

func (b *Builder[T]) add(r uint16, h handler[T]) {
	name := b.fam.Info().Name
	switch {
	case r < 1 || r > b.fam.Max():
		rxmerr.AppendInto(&b.errs, &revision.SchemaError{
			Kind:   revision.InvalidRevision,
			Item:   name,
			Reason: fmt.Sprintf("handler for revision %d outside 1..%d", r, b.fam.Max()),
		})
	case b.handlers[r-1] != nil:
		rxmerr.AppendInto(&b.errs, &revision.SchemaError{
			Kind:   revision.DuplicateRevisionSpecified,
			Item:   name,
			Reason: fmt.Sprintf("second handler for revision %d", r),
		})
	default:
		b.handlers[r-1] = h
	}
}

// Build returns the codec, or every problem found while registering
// handlers. Each revision of the family needs exactly one handler.
func (b *Builder[T]) Build() (*Codec[T], error) {
	errs := rxmerr.NewCollector()
	errs.Append(b.errs)
	for i, h := range b.handlers {
		if h == nil {
			errs.Append(&revision.SchemaError{
				Kind:   revision.MissingRevisionSpecified,
				Item:   b.fam.Info().Name,
				Reason: fmt.Sprintf("no handler for revision %d", i+1),
			})
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	info := b.fam.Info()
	return &Codec[T]{
		fam:      b.fam,
		format:   b.format,
		tag:      Tag{ID: info.ID, Version: info.Version},
		handlers: append([]handler[T](nil), b.handlers...),
		encode:   b.encode,
		metrics:  b.cfg.metrics,
		log: b.cfg.log.WithFields(logrus.Fields{
			"type":   info.Name,
			"format": b.format.Name(),
		}),
	}, nil
}
