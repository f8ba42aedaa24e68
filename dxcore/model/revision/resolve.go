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
	"slices"
	"strconv"

	"dirpx.dev/rxmerr"
)

// Item is one field or variant together with its declared window.
type Item struct {
	Name   string
	Window Window
}

// Plan is the resolved inclusion table of a schema: for every revision
// 1..Max the names of the items alive at that revision, in declaration
// order. A Plan is immutable.
type Plan struct {
	max   uint16
	items []Item
	alive [][]string
}

// CheckMax validates a declared maximum revision. Loaders that read wider
// integers call it before narrowing to uint16.
func CheckMax(max int) error {
	switch {
	case max < 1:
		return &SchemaError{Kind: InvalidRevision, Reason: "revision versions start at 1"}
	case max > MaxRevision:
		return &SchemaError{
			Kind:   InvalidRevision,
			Reason: "revision " + strconv.Itoa(max) + " exceeds " + strconv.Itoa(MaxRevision),
		}
	}
	return nil
}

// Resolve validates every window against max and computes the inclusion
// set of each revision.
//
// All out-of-range windows are reported together; SchemaErrors lists them. Resolution
// does not start until validation passes.
func Resolve(max uint16, items []Item) (*Plan, error) {
	if err := CheckMax(int(max)); err != nil {
		return nil, err
	}

	c := rxmerr.NewCollector()
	for _, it := range items {
		if err := it.Window.check(it.Name, max); err != nil {
			c.Append(err)
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	p := &Plan{
		max:   max,
		items: slices.Clone(items),
		alive: make([][]string, max),
	}
	for r := uint16(1); r <= max; r++ {
		for _, it := range items {
			if it.Window.Contains(r) {
				p.alive[r-1] = append(p.alive[r-1], it.Name)
			}
		}
		if r == MaxRevision {
			break
		}
	}
	return p, nil
}

// Max returns the highest revision of the plan.
func (p *Plan) Max() uint16 {
	return p.max
}

// Items returns the items the plan was resolved from.
func (p *Plan) Items() []Item {
	return slices.Clone(p.items)
}

// At returns the names alive at revision r, or nil when r is outside
// 1..Max.
func (p *Plan) At(r uint16) []string {
	if r < 1 || r > p.max {
		return nil
	}
	return slices.Clone(p.alive[r-1])
}

// Includes reports whether name is alive at revision r.
func (p *Plan) Includes(r uint16, name string) bool {
	if r < 1 || r > p.max {
		return false
	}
	return slices.Contains(p.alive[r-1], name)
}

// Introduced returns the names alive at r but not at r-1. At revision 1
// every alive name is introduced.
func (p *Plan) Introduced(r uint16) []string {
	var out []string
	for _, name := range p.At(r) {
		if !p.Includes(r-1, name) {
			out = append(out, name)
		}
	}
	return out
}

// Retired returns the names alive at r-1 but no longer at r.
func (p *Plan) Retired(r uint16) []string {
	if r < 2 || r > p.max {
		return nil
	}
	var out []string
	for _, name := range p.At(r - 1) {
		if !p.Includes(r, name) {
			out = append(out, name)
		}
	}
	return out
}
