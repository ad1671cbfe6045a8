package tui

import (
	"io"

	"github.com/goliatone/go-formwizard/pkg/render"
)

// Theme holds the prefixes put in front of printed messages.
type Theme struct {
	InfoPrefix    string
	WarningPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used when no theme is supplied.
var DefaultTheme = Theme{
	WarningPrefix: "! ",
	ErrorPrefix:   "x ",
}

type config struct {
	prompter   Prompter
	out        io.Writer
	theme      Theme
	renderOpts render.RenderOptions
}

// Option configures the text renderer and the runner.
type Option func(*config)

// WithPrompter replaces the survey prompter.
func WithPrompter(p Prompter) Option {
	return func(cfg *config) {
		if p != nil {
			cfg.prompter = p
		}
	}
}

// WithOutput sets where the survey prompter prints messages.
func WithOutput(out io.Writer) Option {
	return func(cfg *config) {
		cfg.out = out
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(cfg *config) {
		cfg.theme = theme
	}
}

// WithRenderOptions sets the locale and translator used to build views.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(cfg *config) {
		cfg.renderOpts = opts
	}
}

func newConfig(options []Option) config {
	cfg := config{theme: DefaultTheme}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.prompter == nil {
		cfg.prompter = NewSurveyPrompter(cfg.out)
	}
	return cfg
}
