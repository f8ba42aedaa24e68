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

package typeid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	dxerrors "dirpx.dev/dxrev/dxcore/errors"
	"dirpx.dev/dxrev/dxcore/internal/logging"
	"github.com/sirupsen/logrus"
)

// Sink receives every identifier the registry assigns. It exists for
// debugging: a dump of name/identifier pairs lets two builds be compared.
type Sink interface {
	Record(name string, id ID) error
}

// DiscardSink drops every record.
type DiscardSink struct{}

// Record does nothing.
func (DiscardSink) Record(string, ID) error { return nil }

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	entries map[string]ID
}

// Record stores the pair, replacing an earlier identifier for name.
func (s *MemorySink) Record(name string, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries == nil {
		s.entries = make(map[string]ID)
	}
	s.entries[name] = id
	return nil
}

// Entries returns a copy of the recorded pairs.
func (s *MemorySink) Entries() map[string]ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]ID, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// FileSink keeps a "name = id" dump file up to date. Every Record reads the
// current file, merges the new pair and rewrites the file sorted by name, so
// several programs sharing one dump accumulate their declarations. Writes
// from one FileSink are serialized; concurrent writers in other processes
// are not coordinated.
type FileSink struct {
	mu   sync.Mutex
	path string
	log  logrus.FieldLogger
}

// NewFileSink returns a sink writing to path. A nil log discards output.
func NewFileSink(path string, log logrus.FieldLogger) *FileSink {
	return &FileSink{path: path, log: logging.Or(log)}
}

// Path returns the dump file location.
func (s *FileSink) Path() string {
	return s.path
}

// Record merges the pair into the dump file. The file is rewritten through
// a temporary file and a rename, and left untouched when it already holds
// the same pair.
func (s *FileSink) Record(name string, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if prev, ok := entries[name]; ok && prev == id {
		return nil
	}
	entries[name] = id

	if err := s.write(entries); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"type":    name,
		"type_id": id.Hex(),
		"path":    s.path,
	}).Debug("identifier recorded")
	return nil
}

func (s *FileSink) read() (map[string]ID, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]ID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading identifier dump: %w", err)
	}
	defer f.Close()

	return ReadDump(f)
}

func (s *FileSink) write(entries map[string]ID) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".typeid-*")
	if err != nil {
		return fmt.Errorf("writing identifier dump: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteDump(tmp, entries); err != nil {
		tmp.Close()
		return fmt.Errorf("writing identifier dump: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing identifier dump: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing identifier dump: %w", err)
	}
	return nil
}

// ReadDump parses "name = id" lines. Blank lines and lines starting with
// '#' are skipped.
func ReadDump(r io.Reader) (map[string]ID, error) {
	entries := make(map[string]ID)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &dxerrors.ParseError{Type: "Dump", Value: line}
		}
		id, err := ParseID(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		entries[name] = id
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading identifier dump: %w", err)
	}
	return entries, nil
}

// WriteDump writes entries as "name = id" lines sorted by name.
func WriteDump(w io.Writer, entries map[string]ID) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		if _, err := fmt.Fprintf(bw, "%s = %d\n", name, uint64(entries[name])); err != nil {
			return err
		}
	}
	return bw.Flush()
}
