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
	"dirpx.dev/dxrev/dxcore/format"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/dxrev/dxcore/schema"
	"dirpx.dev/rxmerr"
)

// NewDynamic returns a codec for fam that needs no generated types: every
// revision is decoded into a schema.Value, checked against its revision
// type and upgraded with Family.Upgrade.
//
// Manual steps must have a converter registered with schema.WithConverter;
// otherwise NewDynamic fails with MissingForwardConversion.
func NewDynamic(fam *schema.Family, f format.Format, opts ...Option) (*Codec[schema.Value], error) {
	if err := checkManual(fam); err != nil {
		return nil, err
	}

	b := NewBuilder[schema.Value](fam, f, opts...)
	b.encode = func(v schema.Value) (any, error) {
		if err := fam.Conform(fam.Max(), v); err != nil {
			return nil, err
		}
		return fam.ToPayload(v), nil
	}

	for i := 1; i <= int(fam.Max()); i++ {
		r := uint16(i)
		b.add(r, func(f format.Format, data []byte) (schema.Value, error) {
			var payload any
			if err := f.DecodePayload(data, &payload); err != nil {
				return schema.Value{}, err
			}
			v, err := fam.FromPayload(r, payload)
			if err != nil {
				return schema.Value{}, err
			}
			return fam.Upgrade(r, v)
		})
	}
	return b.Build()
}

func checkManual(fam *schema.Family) error {
	s := fam.Schema()
	errs := rxmerr.NewCollector()
	for _, r := range s.Manual {
		if fam.HasConverter(r) {
			continue
		}
		errs.Append(&revision.SchemaError{
			Kind:   revision.MissingForwardConversion,
			Item:   fam.Info().Name,
			Step:   r,
			Reason: "manual step has no converter",
		})
	}
	return errs.Err()
}
