// Package html renders wizard views as server-side HTML pages with pongo2
// templates, go-theme manifests for styling tokens, and markdown step
// descriptions.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwizard/pkg/render"
	rendertemplate "github.com/goliatone/go-formwizard/pkg/render/template"
	"github.com/goliatone/go-formwizard/pkg/render/template/pongo"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

const (
	wizardTemplate = "templates/wizard.tmpl"
	indexTemplate  = "templates/index.tmpl"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	engine     rendertemplate.Engine
	selector   theme.ThemeSelector
	translator render.Translator
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithEngine replaces the pongo2 engine. The templates bundle is then
// ignored.
func WithEngine(engine rendertemplate.Engine) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// WithThemeSelector replaces the bundled manifest selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
	}
}

// WithTranslator backs the translate template helper.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// Renderer draws the active step of a wizard as a full HTML page.
type Renderer struct {
	templates rendertemplate.Engine
	selector  theme.ThemeSelector
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	if cfg.selector == nil {
		selector, err := NewManifestSelector(DefaultManifest())
		if err != nil {
			return nil, fmt.Errorf("html renderer: default theme: %w", err)
		}
		cfg.selector = selector
	}

	engine := cfg.engine
	if engine == nil {
		set, err := pongo.New(cfg.templateFS,
			pongo.WithHelpers(render.TemplateHelpers(cfg.translator, nil)),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
		engine = set
	}

	return &Renderer{templates: engine, selector: cfg.selector}, nil
}

// Name implements render.Renderer.
func (r *Renderer) Name() string {
	return Name
}

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(_ context.Context, view render.View) ([]byte, error) {
	themeCtx, err := r.theme(view.Theme, view.Variant)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = r.templates.Execute(&buf, wizardTemplate, map[string]any{
		"view":        view,
		"title":       view.Title,
		"locale":      view.Locale,
		"description": Markdown(view.Step.Description),
		"theme":       themeCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render step: %w", err)
	}
	return buf.Bytes(), nil
}

// FormLink is one entry of the index page.
type FormLink struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
}

// RenderIndex renders the list of available forms.
func (r *Renderer) RenderIndex(_ context.Context, title string, forms []FormLink) ([]byte, error) {
	themeCtx, err := r.theme("", "")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = r.templates.Execute(&buf, indexTemplate, map[string]any{
		"title": title,
		"forms": forms,
		"theme": themeCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render index: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) theme(name, variant string) (themeView, error) {
	sel, err := r.selector.Select(name, variant)
	if err != nil {
		return themeView{}, fmt.Errorf("html renderer: select theme: %w", err)
	}
	return buildThemeView(RendererConfig(sel)), nil
}
