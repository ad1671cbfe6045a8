// Package formwizard is the top-level entry point for embedding the intake
// wizards: it re-exports the orchestrator and the embedded definitions,
// templates and browser assets.
package formwizard

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/orchestrator"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/session"
)

// Orchestrator aliases orchestrator.Orchestrator.
type Orchestrator = orchestrator.Orchestrator

// Option aliases orchestrator.Option.
type Option = orchestrator.Option

// Session is one in-memory wizard run.
type Session = session.Session

// RenderOptions describes per-request presentation settings.
type RenderOptions = render.RenderOptions

// Violation is a definition lint finding.
type Violation = orchestrator.Violation

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(ctx context.Context, options ...Option) (*Orchestrator, error) {
	return orchestrator.New(ctx, options...)
}

// DefaultForms returns the compiled bundled definitions.
func DefaultForms() (*formdef.Store, error) {
	return formdef.Default()
}

// LoadForms compiles every definition found in fsys.
func LoadForms(fsys fs.FS) (*formdef.Store, error) {
	return formdef.LoadFS(fsys)
}

// LintForms reports definition problems in store.
func LintForms(ctx context.Context, store *formdef.Store) []Violation {
	return orchestrator.Lint(ctx, store)
}
