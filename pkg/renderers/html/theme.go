package html

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Asset keys resolved through the theme manifest.
const (
	AssetStylesheet = "stylesheet"
	AssetScript     = "script"
)

// DefaultThemeName is the manifest bundled with the renderer.
const DefaultThemeName = "formwizard"

// DefaultManifest returns the bundled theme: the embedded stylesheet and
// script served under /assets, with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#1f4e79",
			"surface": "#ffffff",
			"text":    "#1d1d1f",
			"warning": "#b54708",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: StylesheetName,
				AssetScript:     ScriptName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#111827",
					"text":    "#f3f4f6",
				},
			},
		},
	}
}

// ManifestSelector resolves theme selections from registered manifests.
// Manifests are validated by a go-theme registry on registration.
type ManifestSelector struct {
	mu        sync.RWMutex
	registry  theme.ThemeProvider
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests; the first one is the fallback for
// empty theme names.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	registry := theme.NewRegistry()
	s := &ManifestSelector{
		registry:  registry,
		manifests: make(map[string]*theme.Manifest),
	}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("html: register theme %q: %w", m.Name, err)
		}
		s.manifests[m.Name] = m
		if s.fallback == "" {
			s.fallback = m.Name
		}
	}
	return s, nil
}

// Select implements theme.ThemeSelector. Unknown variants fall back to the
// base manifest.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(name) == "" {
		name = s.fallback
	}
	m, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("html: theme %q not registered", name)
	}
	if _, ok := m.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

// Provider exposes the go-theme registry holding the manifests.
func (s *ManifestSelector) Provider() theme.ThemeProvider {
	return s.registry
}

// Themes lists the registered theme names.
func (s *ManifestSelector) Themes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RendererConfig flattens a selection: variant tokens, templates, and asset
// files override the base manifest, and every token becomes a --css var.
func RendererConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	tokens := mergeStrings(m.Tokens, nil)
	partials := mergeStrings(m.Templates, nil)
	files := mergeStrings(m.Assets.Files, nil)
	prefix := m.Assets.Prefix
	if v, ok := m.Variants[sel.Variant]; ok {
		tokens = mergeStrings(tokens, v.Tokens)
		partials = mergeStrings(partials, v.Templates)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

// themeView is the template-facing projection of a RendererConfig.
type themeView struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVarsStyle string            `json:"cssVarsStyle,omitempty"`
	Stylesheet   string            `json:"stylesheet,omitempty"`
	Script       string            `json:"script,omitempty"`
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		Tokens:       cfg.Tokens,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(AssetStylesheet)
		view.Script = cfg.AssetURL(AssetScript)
	}
	return view
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key]+";")
	}
	return strings.Join(parts, " ")
}

func mergeStrings(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
