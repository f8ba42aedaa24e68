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
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"dirpx.dev/dxrev/dxcore/internal/logging"
	"dirpx.dev/dxrev/dxcore/model"
	"dirpx.dev/dxrev/dxcore/model/revision"
	"github.com/sirupsen/logrus"
)

// ErrNotDeclared is returned by Bind for a name that has no declaration.
var ErrNotDeclared = errors.New("dxrev: type not declared")

// Registry maps declared type names to their resolved identity.
//
// Lookups take a read lock; declarations are expected at start-up and take
// the write lock. A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Info
	byType map[reflect.Type]string
	sink   Sink
	log    logrus.FieldLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithSink records every new declaration into s.
func WithSink(s Sink) Option {
	return func(r *Registry) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithLogger sets the logger used for declaration events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) {
		r.log = logging.Or(l)
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName: make(map[string]Info),
		byType: make(map[reflect.Type]string),
		sink:   DiscardSink{},
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Declare resolves d and stores the result.
//
// Declaring the same name twice is allowed only when both declarations
// resolve to the same Info. An EqualTo target must already be declared.
func (r *Registry) Declare(d Declaration) (Info, error) {
	if err := d.Validate(); err != nil {
		return Info{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	info, fresh, err := r.resolveLocked(d, nil)
	if err != nil {
		return Info{}, err
	}
	if fresh {
		if err := r.commitLocked([]Info{info}); err != nil {
			return Info{}, err
		}
	}
	return info, nil
}

// resolveLocked computes the Info of d without storing it. EqualTo targets
// are looked up in staged first, then among the declared types. fresh is
// false when d repeats an existing declaration.
func (r *Registry) resolveLocked(d Declaration, staged map[string]Info) (info Info, fresh bool, err error) {
	if d.EqualTo == d.Name {
		return Info{}, false, &revision.SchemaError{
			Kind:   revision.OverrideCycle,
			Item:   d.Name,
			Reason: d.Name + " -> " + d.Name,
		}
	}

	info = Info{Name: d.Name, ID: d.OwnID(), Version: d.Version}
	if d.EqualTo != "" {
		target, ok := staged[d.EqualTo]
		if !ok {
			target, ok = r.byName[d.EqualTo]
		}
		if !ok {
			return Info{}, false, &revision.SchemaError{
				Kind:   revision.UnknownOverride,
				Item:   d.Name,
				Reason: fmt.Sprintf("equal_to %q is not declared", d.EqualTo),
			}
		}
		info.ID = target.ID
	}

	if prev, ok := r.byName[d.Name]; ok {
		if prev == info {
			return prev, false, nil
		}
		return Info{}, false, &revision.SchemaError{
			Kind:   revision.DuplicateName,
			Item:   d.Name,
			Reason: fmt.Sprintf("already declared as %s", prev),
		}
	}
	return info, true, nil
}

// commitLocked records infos to the sink and then stores them. Nothing is
// stored unless every record succeeds.
func (r *Registry) commitLocked(infos []Info) error {
	for _, info := range infos {
		if err := r.sink.Record(info.Name, info.ID); err != nil {
			return fmt.Errorf("recording %s: %w", info.Name, err)
		}
	}
	for _, info := range infos {
		r.byName[info.Name] = info
		r.log.WithFields(logrus.Fields{
			"type":    info.Name,
			"type_id": info.ID.Hex(),
			"version": model.SafeString(info.Version, false),
		}).Debug("type declared")
	}
	return nil
}

// DeclareAll declares a batch in which overrides may point at other members
// of the batch, in any order. Targets are declared before the declarations
// that adopt their identifier; cycles are reported as OverrideCycle with the
// full path. The returned infos follow the order of decls.
//
// The batch is resolved completely before anything is stored: when one
// declaration fails, none of the batch is declared or sent to the sink.
func (r *Registry) DeclareAll(decls []Declaration) ([]Info, error) {
	if err := model.ValidateAll(decls); err != nil {
		return nil, err
	}

	pending := make(map[string]Declaration, len(decls))
	for _, d := range decls {
		if _, dup := pending[d.Name]; dup {
			return nil, &revision.SchemaError{Kind: revision.DuplicateName, Item: d.Name, Reason: "declared twice in one batch"}
		}
		pending[d.Name] = d
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := make(map[string]Info, len(decls))
	var added []Info
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if _, done := resolved[name]; done {
			return nil
		}
		if i := slices.Index(path, name); i >= 0 {
			cycle := append(slices.Clone(path[i:]), name)
			return &revision.SchemaError{
				Kind:   revision.OverrideCycle,
				Item:   name,
				Reason: strings.Join(cycle, " -> "),
			}
		}

		d := pending[name]
		if _, inBatch := pending[d.EqualTo]; inBatch && d.EqualTo != name {
			if err := visit(d.EqualTo, append(path, name)); err != nil {
				return err
			}
		}

		info, fresh, err := r.resolveLocked(d, resolved)
		if err != nil {
			return err
		}
		resolved[name] = info
		if fresh {
			added = append(added, info)
		}
		return nil
	}

	infos := make([]Info, len(decls))
	for i, d := range decls {
		if err := visit(d.Name, nil); err != nil {
			return nil, err
		}
		infos[i] = resolved[d.Name]
	}
	if err := r.commitLocked(added); err != nil {
		return nil, err
	}
	return infos, nil
}

// Lookup returns the Info declared under name.
func (r *Registry) Lookup(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.byName[name]
	return info, ok
}

// Bind associates the dynamic type of value with the declared name, so that
// Of can identify values that do not implement Typed.
func (r *Registry) Bind(value any, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotDeclared, name)
	}
	r.byType[reflect.TypeOf(value)] = name
	return nil
}

// Of returns the identity of value: its own TypeInfo when it implements
// Typed, else the declaration bound to its type, else Unregistered.
func (r *Registry) Of(value any) Info {
	if t, ok := value.(Typed); ok {
		return t.TypeInfo()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.byType[reflect.TypeOf(value)]; ok {
		return r.byName[name]
	}
	return Unregistered
}

// Infos returns every declared Info sorted by name.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.byName))
	for _, info := range r.byName {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out
}
