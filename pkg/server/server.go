// Package server exposes the form wizards over HTTP: server-rendered steps,
// JSON state for scripted clients, payload previews, and PDF summaries.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	formwizardmiddleware "github.com/goliatone/go-formwizard/pkg/server/middleware"
	"github.com/goliatone/go-formwizard/pkg/session"
)

// Dependencies are the collaborators the handlers use.
type Dependencies struct {
	Forms    *formdef.Store
	Sessions *session.Store
	// HTML defaults to html.New() when nil.
	HTML *html.Renderer
	// SessionOptions returns per-form options for new sessions, such as the
	// submit endpoint and contract.
	SessionOptions func(*model.Form) []session.Option
}

// Config configures the web API.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	SweepInterval   time.Duration
	Locale          string
	Translator      render.Translator
	Theme           string
	Variant         string
	Dependencies    Dependencies
}

// WebAPI owns the router and the HTTP server.
type WebAPI struct {
	router    *chi.Mux
	logger    *zerolog.Logger
	server    *http.Server
	cfg       Config
	forms     *formdef.Store
	sessions  *session.Store
	html      *html.Renderer
	renderers *render.Registry
}

// NewWebAPI wires the routes.
func NewWebAPI(logger zerolog.Logger, cfg Config) (*WebAPI, error) {
	deps := cfg.Dependencies
	if deps.Forms == nil || deps.Forms.Empty() {
		return nil, errors.New("server: no form definitions")
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewStore()
	}
	if deps.HTML == nil {
		renderer, err := html.New(html.WithTranslator(cfg.Translator))
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		deps.HTML = renderer
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	cfg.Dependencies = deps

	w := &WebAPI{
		logger:    &logger,
		cfg:       cfg,
		forms:     deps.Forms,
		sessions:  deps.Sessions,
		html:      deps.HTML,
		renderers: render.NewRegistry(deps.HTML, tui.New()),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(formwizardmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", w.health)
	router.Get("/", w.index)
	router.Get("/api/forms", w.listForms)
	router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(html.AssetsFS()))))

	router.Route("/forms/{formID}/sessions", func(r chi.Router) {
		r.Post("/", w.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", w.showStep)
			r.Post("/", w.postStep)
			r.Get("/state", w.state)
			r.Patch("/fields", w.patchFields)
			r.Get("/payload", w.payload)
			r.Get("/summary.pdf", w.summaryPDF)
		})
	})

	w.router = router
	w.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return w, nil
}

// Handler returns the router.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains outstanding requests.
func (w *WebAPI) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go w.sessions.Run(w.logger.WithContext(ctx), w.cfg.SweepInterval)

	serverErrors := make(chan error, 1)
	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.cfg.ShutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		return err
	}
}
