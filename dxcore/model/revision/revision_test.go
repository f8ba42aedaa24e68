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

package revision_test

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/model/revision"
)

func TestResolve_Example(t *testing.T) {
	// max 3; a always present, b from 2, c retired at 3.
	plan, err := revision.Resolve(3, []revision.Item{
		{Name: "a"},
		{Name: "b", Window: revision.Since(2)},
		{Name: "c", Window: revision.Between(1, 3)},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := map[uint16][]string{
		1: {"a", "c"},
		2: {"a", "b", "c"},
		3: {"a", "b"},
	}
	for r, names := range want {
		if got := plan.At(r); !slices.Equal(got, names) {
			t.Errorf("At(%d) = %v, want %v", r, got, names)
		}
	}

	if plan.Max() != 3 {
		t.Errorf("Max() = %d", plan.Max())
	}
	if got := plan.Introduced(2); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Introduced(2) = %v", got)
	}
	if got := plan.Retired(3); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Retired(3) = %v", got)
	}
	if got := plan.Introduced(1); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Introduced(1) = %v", got)
	}
	if plan.At(0) != nil || plan.At(4) != nil || plan.Includes(4, "a") {
		t.Error("revisions outside 1..Max are not empty")
	}
	if !plan.Includes(2, "b") || plan.Includes(1, "b") {
		t.Error("Includes() disagrees with At()")
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		max   uint16
		items []revision.Item
		kinds []revision.ErrorKind
		names []string
	}{
		{
			name:  "zero max",
			max:   0,
			kinds: []revision.ErrorKind{revision.InvalidRevision},
		},
		{
			name:   "start past max",
			max:    3,
			items:  []revision.Item{{Name: "x", Window: revision.Since(4)}},
			kinds:  []revision.ErrorKind{revision.RevisionOutOfRange},
			names:  []string{"x"},
		},
		{
			name:   "end past max",
			max:    3,
			items:  []revision.Item{{Name: "x", Window: revision.Between(1, 4)}},
			kinds:  []revision.ErrorKind{revision.RevisionOutOfRange},
			names:  []string{"x"},
		},
		{
			name:   "end before start",
			max:    5,
			items:  []revision.Item{{Name: "x", Window: revision.Between(3, 3)}},
			kinds:  []revision.ErrorKind{revision.RevisionOutOfRange},
			names:  []string{"x"},
		},
		{
			name: "all violations reported",
			max:  2,
			items: []revision.Item{
				{Name: "ok"},
				{Name: "p", Window: revision.Since(3)},
				{Name: "q", Window: revision.Between(2, 9)},
			},
			kinds:  []revision.ErrorKind{revision.RevisionOutOfRange, revision.RevisionOutOfRange},
			names:  []string{"p", "q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := revision.Resolve(tt.max, tt.items)
			if err == nil {
				t.Fatalf("Resolve() = %v, want error", plan)
			}

			errs := revision.SchemaErrors(err)
			if len(errs) != len(tt.kinds) {
				t.Fatalf("got %d errors, want %d: %v", len(errs), len(tt.kinds), err)
			}
			for i, e := range errs {
				if e.Kind != tt.kinds[i] {
					t.Errorf("errs[%d].Kind = %v, want %v", i, e.Kind, tt.kinds[i])
				}
				if tt.names != nil && e.Item != tt.names[i] {
					t.Errorf("errs[%d].Item = %q, want %q", i, e.Item, tt.names[i])
				}
				if !revision.IsKind(err, tt.kinds[i]) {
					t.Errorf("IsKind(err, %v) = false", tt.kinds[i])
				}
			}
		})
	}
}

func TestSchemaError_Message(t *testing.T) {
	err := &revision.SchemaError{
		Kind:   revision.RevisionOutOfRange,
		Item:   "b",
		Window: revision.Between(2, 5),
		Max:    3,
	}
	want := `dxrev: revision out of range "b": window [2, 5) outside [1, 3]`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &revision.SchemaError{Kind: revision.MissingForwardConversion, Item: "Shape.Circle", Step: 2, Reason: "field r has no default"}
	if !strings.Contains(err.Error(), "at step 2 -> 3") {
		t.Errorf("Error() = %q", err.Error())
	}

	if revision.IsKind(err, revision.DuplicateName) {
		t.Error("IsKind matched the wrong kind")
	}
	if !errors.Is(err, &revision.SchemaError{Kind: revision.MissingForwardConversion, Item: "Shape.Circle"}) {
		t.Error("errors.Is did not match kind and item")
	}
}

func TestCheckMax(t *testing.T) {
	for _, tt := range []struct {
		max int
		ok  bool
	}{{0, false}, {-1, false}, {1, true}, {65535, true}, {65536, false}} {
		err := revision.CheckMax(tt.max)
		if (err == nil) != tt.ok {
			t.Errorf("CheckMax(%d) error = %v", tt.max, err)
		}
		if err != nil && !revision.IsKind(err, revision.InvalidRevision) {
			t.Errorf("CheckMax(%d) kind = %v", tt.max, err)
		}
	}
	if err := revision.CheckMax(0); !strings.Contains(err.Error(), "start at 1") {
		t.Errorf("CheckMax(0) = %q", err)
	}
}

func TestResolve_MaxWidth(t *testing.T) {
	plan, err := revision.Resolve(revision.MaxRevision, []revision.Item{
		{Name: "late", Window: revision.Since(revision.MaxRevision)},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !plan.Includes(revision.MaxRevision, "late") || plan.Includes(revision.MaxRevision-1, "late") {
		t.Error("late item resolved at the wrong revisions")
	}
}

// TestResolve_Random compares Resolve against a direct evaluation of the
// inclusion rule over random windows, valid and invalid.
func TestResolve_Random(t *testing.T) {
	rng := rand.New(rand.NewPCG(20251016, 7))

	for iter := 0; iter < 500; iter++ {
		max := uint16(1 + rng.IntN(12))
		n := rng.IntN(8)
		items := make([]revision.Item, n)
		valid := true
		for i := range items {
			start := uint16(rng.IntN(int(max) + 2))
			var end uint16
			if rng.IntN(2) == 0 {
				end = uint16(rng.IntN(int(max) + 3))
			}
			items[i] = revision.Item{Name: "f" + strconv.Itoa(i), Window: revision.Window{Start: start, End: end}}

			first := start
			if first == 0 {
				first = 1
			}
			if first > max || (end != 0 && (end <= first || end > max)) {
				valid = false
			}
		}

		plan, err := revision.Resolve(max, items)
		if (err == nil) != valid {
			t.Fatalf("iter %d: Resolve(%d, %v) error = %v, want valid=%v", iter, max, items, err, valid)
		}
		if !valid {
			continue
		}

		for r := uint16(1); r <= max; r++ {
			var want []string
			for _, it := range items {
				first := it.Window.Start
				if first == 0 {
					first = 1
				}
				if first <= r && (it.Window.End == 0 || r < it.Window.End) {
					want = append(want, it.Name)
				}
			}
			if got := plan.At(r); !slices.Equal(got, want) {
				t.Fatalf("iter %d: At(%d) = %v, want %v", iter, r, got, want)
			}
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		w        revision.Window
		str      string
		contains []uint16
		excludes []uint16
	}{
		{revision.Window{}, "[1, open)", []uint16{1, 2, 100}, []uint16{0}},
		{revision.Since(2), "[2, open)", []uint16{2, 3}, []uint16{1}},
		{revision.Between(2, 4), "[2, 4)", []uint16{2, 3}, []uint16{1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if tt.w.String() != tt.str {
				t.Errorf("String() = %q", tt.w.String())
			}
			for _, r := range tt.contains {
				if !tt.w.Contains(r) {
					t.Errorf("Contains(%d) = false", r)
				}
			}
			for _, r := range tt.excludes {
				if tt.w.Contains(r) {
					t.Errorf("Contains(%d) = true", r)
				}
			}
		})
	}
}

func TestWindow_JSON(t *testing.T) {
	data, err := json.Marshal(revision.Between(2, 4))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"start":2,"end":4}` {
		t.Errorf("Marshal() = %s", data)
	}

	var w revision.Window
	if err := json.Unmarshal([]byte(`{"start":3}`), &w); err != nil || w != revision.Since(3) {
		t.Errorf("Unmarshal() = %v, %v", w, err)
	}

	err = json.Unmarshal([]byte(`{"start":3,"end":2}`), &w)
	var ve *dxerrors.ValidationError
	if !errors.As(err, &ve) || ve.Field != "End" {
		t.Errorf("Unmarshal(end < start) error = %v", err)
	}

	if _, err := json.Marshal(revision.Between(5, 5)); err == nil {
		t.Error("Marshal() accepted an empty window")
	}
}
