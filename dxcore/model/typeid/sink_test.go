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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dirpx.dev/dxrev/dxcore/model/typeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_MergesAndSorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typeids.txt")
	require.NoError(t, os.WriteFile(path, []byte("# earlier build\nzeta = 26\nalpha = 1\n"), 0o644))

	sink := typeid.NewFileSink(path, nil)
	require.NoError(t, sink.Record("mid", 13))
	require.NoError(t, sink.Record("alpha", 2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alpha = 2\nmid = 13\nzeta = 26\n", string(data))
}

func TestFileSink_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids")
	sink := typeid.NewFileSink(path, nil)
	assert.Equal(t, path, sink.Path())

	reg := typeid.NewRegistry(typeid.WithSink(sink))
	info, err := reg.Declare(typeid.Declaration{Name: "app.Config"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "app.Config = "+info.ID.String()+"\n", string(data))
}

func TestFileSink_RejectsCorruptDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids")
	require.NoError(t, os.WriteFile(path, []byte("not a pair\n"), 0o644))

	err := typeid.NewFileSink(path, nil).Record("a", 1)
	require.Error(t, err)
}

func TestDump_RoundTrip(t *testing.T) {
	in := map[string]typeid.ID{"b": 2, "a": ^typeid.ID(0), "c.d": 0x10}

	var buf bytes.Buffer
	require.NoError(t, typeid.WriteDump(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "a = 18446744073709551615\n"))

	out, err := typeid.ReadDump(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = typeid.ReadDump(strings.NewReader(" = 3\n"))
	require.Error(t, err)
	_, err = typeid.ReadDump(strings.NewReader("a = x\n"))
	require.Error(t, err)
}

func TestDiscardSink(t *testing.T) {
	assert.NoError(t, typeid.DiscardSink{}.Record("x", 1))
}
