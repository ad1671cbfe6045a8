package render

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrRendererNotFound is returned for a front end name nobody registered.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry maps front end names to renderers. It is fixed at construction
// and safe for concurrent use.
type Registry struct {
	byName map[string]Renderer
}

// NewRegistry indexes renderers by Name. A nil renderer, an empty name or a
// repeated name is a wiring mistake and panics.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		if renderer == nil || renderer.Name() == "" {
			panic("render: renderer with a name is required")
		}
		if _, dup := r.byName[renderer.Name()]; dup {
			panic(fmt.Sprintf("render: renderer %q registered twice", renderer.Name()))
		}
		r.byName[renderer.Name()] = renderer
	}
	return r
}

// Lookup returns the renderer registered under name.
func (r *Registry) Lookup(name string) (Renderer, bool) {
	renderer, ok := r.byName[name]
	return renderer, ok
}

// Names lists the registered front ends in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render draws view with the named front end and reports the content type
// to serve it with.
func (r *Registry) Render(ctx context.Context, name string, view View) ([]byte, string, error) {
	renderer, ok := r.Lookup(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	out, err := renderer.Render(ctx, view)
	if err != nil {
		return nil, "", fmt.Errorf("render: %s: %w", name, err)
	}
	return out, renderer.ContentType(), nil
}
