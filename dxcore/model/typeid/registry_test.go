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

package typeid_test

import (
	"errors"
	"testing"

	"dirpx.dev/dxrev/dxcore/model/revision"
	"dirpx.dev/dxrev/dxcore/model/typeid"
	"dirpx.dev/dxrev/dxcore/model/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Declare(t *testing.T) {
	reg := typeid.NewRegistry()

	info, err := reg.Declare(typeid.Declaration{Name: "app.Config", Version: version.New(1, 2, 0)})
	require.NoError(t, err)
	v := version.New(1, 2, 0)
	assert.Equal(t, typeid.Hash("app.Config", &v), info.ID)
	assert.Equal(t, version.New(1, 2, 0), info.Version)

	plain, err := reg.Declare(typeid.Declaration{Name: "app.Plain", Version: version.Revision(4), OmitVersionHash: true})
	require.NoError(t, err)
	assert.Equal(t, typeid.Hash("app.Plain", nil), plain.ID)

	got, ok := reg.Lookup("app.Config")
	require.True(t, ok)
	assert.Equal(t, info, got)

	_, ok = reg.Lookup("app.Missing")
	assert.False(t, ok)
}

func TestRegistry_Declare_Idempotent(t *testing.T) {
	reg := typeid.NewRegistry()
	d := typeid.Declaration{Name: "app.Config", Version: version.Revision(1)}

	first, err := reg.Declare(d)
	require.NoError(t, err)
	second, err := reg.Declare(d)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = reg.Declare(typeid.Declaration{Name: "app.Config", Version: version.Revision(2)})
	assert.True(t, revision.IsKind(err, revision.DuplicateName), "err = %v", err)
}

func TestRegistry_EqualTo(t *testing.T) {
	reg := typeid.NewRegistry()

	canon, err := reg.Declare(typeid.Declaration{Name: "app.Shape", Version: version.Revision(3), OmitVersionHash: true})
	require.NoError(t, err)

	for r := uint16(1); r <= 3; r++ {
		info, err := reg.Declare(typeid.Declaration{
			Name:    "app.ShapeV" + string(rune('0'+r)),
			Version: version.Revision(r),
			EqualTo: "app.Shape",
		})
		require.NoError(t, err)
		assert.Equal(t, canon.ID, info.ID, "revision %d", r)
		assert.Equal(t, version.Revision(r), info.Version, "override keeps own version")
	}
}

func TestRegistry_OverrideErrors(t *testing.T) {
	reg := typeid.NewRegistry()

	_, err := reg.Declare(typeid.Declaration{Name: "a", EqualTo: "nowhere"})
	assert.True(t, revision.IsKind(err, revision.UnknownOverride), "err = %v", err)

	_, err = reg.Declare(typeid.Declaration{Name: "a", EqualTo: "a"})
	assert.True(t, revision.IsKind(err, revision.OverrideCycle), "err = %v", err)

	_, err = reg.Declare(typeid.Declaration{})
	require.Error(t, err)
}

func TestRegistry_DeclareAll(t *testing.T) {
	reg := typeid.NewRegistry()

	infos, err := reg.DeclareAll([]typeid.Declaration{
		{Name: "c", Version: version.Revision(2), EqualTo: "b"},
		{Name: "b", Version: version.Revision(1), EqualTo: "a"},
		{Name: "a", OmitVersionHash: true},
	})
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "c", infos[0].Name)
	assert.Equal(t, typeid.Hash("a", nil), infos[0].ID)
	assert.Equal(t, infos[2].ID, infos[1].ID)
	assert.Equal(t, version.Revision(2), infos[0].Version)
}

func TestRegistry_DeclareAll_Cycle(t *testing.T) {
	reg := typeid.NewRegistry()

	_, err := reg.DeclareAll([]typeid.Declaration{
		{Name: "A", EqualTo: "B"},
		{Name: "B", EqualTo: "A"},
	})
	var se *revision.SchemaError
	require.True(t, errors.As(err, &se), "err = %v", err)
	assert.Equal(t, revision.OverrideCycle, se.Kind)
	assert.Equal(t, "A -> B -> A", se.Reason)
}

func TestRegistry_DeclareAll_Invalid(t *testing.T) {
	reg := typeid.NewRegistry()

	_, err := reg.DeclareAll([]typeid.Declaration{{Name: "ok"}, {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model[1] (Declaration)")

	_, err = reg.DeclareAll([]typeid.Declaration{{Name: "x"}, {Name: "x"}})
	assert.True(t, revision.IsKind(err, revision.DuplicateName), "err = %v", err)
}

type boundValue struct{ N int }

type selfTyped struct{}

func (selfTyped) TypeInfo() typeid.Info {
	return typeid.Info{Name: "self", ID: 99}
}

func TestRegistry_Of(t *testing.T) {
	reg := typeid.NewRegistry()
	info, err := reg.Declare(typeid.Declaration{Name: "app.Bound", Version: version.Revision(1)})
	require.NoError(t, err)

	assert.Equal(t, typeid.Unregistered, reg.Of(boundValue{}))
	assert.Equal(t, typeid.UnregisteredName, reg.Of(42).Name)
	assert.True(t, reg.Of(42).NoVersion())
	assert.Equal(t, typeid.Hash("NOT_IMPLEMENTED", &version.None), reg.Of(42).ID)

	require.NoError(t, reg.Bind(boundValue{}, "app.Bound"))
	assert.Equal(t, info, reg.Of(boundValue{N: 3}))

	assert.Equal(t, typeid.ID(99), reg.Of(selfTyped{}).ID)

	err = reg.Bind(struct{}{}, "app.Unknown")
	assert.ErrorIs(t, err, typeid.ErrNotDeclared)
}

func TestRegistry_Sink(t *testing.T) {
	sink := &typeid.MemorySink{}
	reg := typeid.NewRegistry(typeid.WithSink(sink), typeid.WithLogger(nil))

	a, err := reg.Declare(typeid.Declaration{Name: "a"})
	require.NoError(t, err)
	b, err := reg.Declare(typeid.Declaration{Name: "b", EqualTo: "a"})
	require.NoError(t, err)

	assert.Equal(t, map[string]typeid.ID{"a": a.ID, "b": b.ID}, sink.Entries())
	assert.Equal(t, []typeid.Info{a, b}, reg.Infos())
}

type failingSink struct{}

func (failingSink) Record(string, typeid.ID) error { return errors.New("disk full") }

func TestRegistry_SinkFailure(t *testing.T) {
	reg := typeid.NewRegistry(typeid.WithSink(failingSink{}))

	_, err := reg.Declare(typeid.Declaration{Name: "a"})
	require.ErrorContains(t, err, "disk full")

	_, ok := reg.Lookup("a")
	assert.False(t, ok, "failed declaration must not be stored")
}

func TestRegistry_DeclareAll_Atomic(t *testing.T) {
	sink := &typeid.MemorySink{}
	reg := typeid.NewRegistry(typeid.WithSink(sink))
	_, err := reg.Declare(typeid.Declaration{Name: "taken", Version: version.Revision(1)})
	require.NoError(t, err)

	tests := []struct {
		name  string
		decls []typeid.Declaration
		kind  revision.ErrorKind
	}{
		{"unknown override", []typeid.Declaration{
			{Name: "a"},
			{Name: "b", EqualTo: "a"},
			{Name: "c", EqualTo: "nowhere"},
		}, revision.UnknownOverride},
		{"clash with registry", []typeid.Declaration{
			{Name: "a"},
			{Name: "taken", Version: version.Revision(2)},
		}, revision.DuplicateName},
		{"cycle after valid entries", []typeid.Declaration{
			{Name: "a"},
			{Name: "x", EqualTo: "y"},
			{Name: "y", EqualTo: "x"},
		}, revision.OverrideCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.DeclareAll(tt.decls)
			assert.True(t, revision.IsKind(err, tt.kind), "err = %v", err)

			for _, d := range tt.decls {
				if d.Name == "taken" {
					continue
				}
				_, ok := reg.Lookup(d.Name)
				assert.False(t, ok, "%s declared by a failed batch", d.Name)
			}
			assert.Len(t, sink.Entries(), 1)
			assert.Len(t, reg.Infos(), 1)
		})
	}
}

func TestRegistry_DeclareAll_SinkFailure(t *testing.T) {
	reg := typeid.NewRegistry(typeid.WithSink(failingSink{}))

	_, err := reg.DeclareAll([]typeid.Declaration{{Name: "a"}, {Name: "b", EqualTo: "a"}})
	require.ErrorContains(t, err, "disk full")
	assert.Empty(t, reg.Infos())
}

func TestRegistry_DeclareAll_Repeated(t *testing.T) {
	sink := &typeid.MemorySink{}
	reg := typeid.NewRegistry(typeid.WithSink(sink))
	batch := []typeid.Declaration{{Name: "a"}, {Name: "b", EqualTo: "a"}}

	first, err := reg.DeclareAll(batch)
	require.NoError(t, err)
	second, err := reg.DeclareAll(batch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, sink.Entries(), 2)
}
