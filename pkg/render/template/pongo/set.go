// Package pongo executes page templates with a pongo2 template set loaded
// from an fs.FS.
package pongo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formwizard/pkg/render/template"
)

// FieldIDPrefix prefixes the element id derived from a field name.
const FieldIDPrefix = "fw-"

var registerFilters sync.Once

// Option configures a Set.
type Option func(*Set) error

// WithHelpers exposes callables to every template as globals. A
// pongo2.FilterFunction is registered as a filter under its name instead;
// filters are process-wide in pongo2, so an existing name is left alone.
func WithHelpers(helpers map[string]any) Option {
	return func(s *Set) error {
		for name, fn := range helpers {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			if filter, ok := fn.(pongo2.FilterFunction); ok {
				if !pongo2.FilterExists(name) {
					if err := pongo2.RegisterFilter(name, filter); err != nil {
						return err
					}
				}
				continue
			}
			if reflect.ValueOf(fn).Kind() != reflect.Func {
				return fmt.Errorf("pongo: helper %q is %T, not a function", name, fn)
			}
			s.set.Globals[name] = fn
		}
		return nil
	}
}

// WithGlobals seeds plain values visible to every template.
func WithGlobals(values map[string]any) Option {
	return func(s *Set) error {
		ctx, err := Context(values)
		if err != nil {
			return err
		}
		s.set.Globals.Update(ctx)
		return nil
	}
}

// Set caches parsed templates by name.
type Set struct {
	set *pongo2.TemplateSet

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var _ template.Engine = (*Set)(nil)

// New builds a Set reading templates from files.
func New(files fs.FS, options ...Option) (*Set, error) {
	if files == nil {
		return nil, errors.New("pongo: template bundle is required")
	}
	registerFilters.Do(func() {
		_ = pongo2.RegisterFilter("fieldid", filterFieldID)
	})

	s := &Set{
		set:   pongo2.NewSet("formwizard", pongo2.NewFSLoader(files)),
		cache: make(map[string]*pongo2.Template),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Execute implements template.Engine.
func (s *Set) Execute(w io.Writer, name string, data any) error {
	tpl, err := s.lookup(name)
	if err != nil {
		return err
	}
	ctx, err := Context(data)
	if err != nil {
		return fmt.Errorf("pongo: %s: %w", name, err)
	}
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("pongo: execute %s: %w", name, err)
	}
	return nil
}

// ExecuteString renders inline template source. The result is not cached.
func (s *Set) ExecuteString(src string, data any) (string, error) {
	tpl, err := s.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	ctx, err := Context(data)
	if err != nil {
		return "", err
	}
	return tpl.Execute(ctx)
}

func (s *Set) lookup(name string) (*pongo2.Template, error) {
	s.mu.RLock()
	tpl, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tpl, ok := s.cache[name]; ok {
		return tpl, nil
	}
	tpl, err := s.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %s: %w", name, err)
	}
	s.cache[name] = tpl
	return tpl, nil
}

// Context converts data to a pongo2 context. Values pass through
// encoding/json so templates address struct fields by their json names.
func Context(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode template data: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("template data of type %T is not an object: %w", data, err)
	}
	if out == nil {
		out = make(map[string]any)
	}
	return pongo2.Context(out), nil
}

// filterFieldID turns a field name into the element id shared by labels and
// the live-total script: "rent" becomes "fw-rent".
func filterFieldID(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	name := strings.TrimSpace(in.String())
	if name == "" {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(FieldIDPrefix + name), nil
}
