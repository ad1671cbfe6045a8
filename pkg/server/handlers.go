package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/report"
	"github.com/goliatone/go-formwizard/pkg/session"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

// maxFieldsBody caps PATCH bodies.
const maxFieldsBody = 1 << 20

// FormSummary is one entry of GET /api/forms.
type FormSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps"`
	Start       string   `json:"start"`
}

// SessionCreated is the JSON reply to POST /forms/{formID}/sessions.
type SessionCreated struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// FieldsReply is the JSON reply to PATCH .../fields.
type FieldsReply struct {
	session.LiveState
	Error string `json:"error,omitempty"`
}

func (w *WebAPI) health(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (w *WebAPI) index(rw http.ResponseWriter, r *http.Request) {
	links := make([]html.FormLink, 0)
	for _, form := range w.forms.Forms() {
		links = append(links, html.FormLink{
			ID:          form.ID,
			Title:       form.Title,
			Description: form.Description,
			Start:       startURL(form.ID),
		})
	}
	out, err := w.html.RenderIndex(r.Context(), "Forms", links)
	if err != nil {
		writeError(rw, r, http.StatusInternalServerError, err)
		return
	}
	rw.Header().Set("Content-Type", w.html.ContentType())
	_, _ = rw.Write(out)
}

func (w *WebAPI) listForms(rw http.ResponseWriter, r *http.Request) {
	out := make([]FormSummary, 0)
	for _, form := range w.forms.Forms() {
		summary := FormSummary{
			ID:          form.ID,
			Title:       form.Title,
			Description: form.Description,
			Start:       startURL(form.ID),
		}
		for _, step := range form.Steps {
			summary.Steps = append(summary.Steps, step.ID)
		}
		out = append(out, summary)
	}
	writeJSON(rw, r, http.StatusOK, out)
}

func (w *WebAPI) createSession(rw http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	form, ok := w.forms.Form(formID)
	if !ok {
		writeError(rw, r, http.StatusNotFound, fmt.Errorf("form %q not found", formID))
		return
	}

	var opts []session.Option
	if w.cfg.Dependencies.SessionOptions != nil {
		opts = w.cfg.Dependencies.SessionOptions(form)
	}
	sess := w.sessions.Create(form, opts...)
	zerolog.Ctx(r.Context()).Info().Str("form", formID).Str("session", sess.ID()).Msg("session started")

	location := sessionURL(formID, sess.ID())
	if wantsJSON(r) {
		rw.Header().Set("Location", location)
		writeJSON(rw, r, http.StatusCreated, SessionCreated{SessionID: sess.ID(), URL: location})
		return
	}
	http.Redirect(rw, r, location, http.StatusSeeOther)
}

func (w *WebAPI) showStep(rw http.ResponseWriter, r *http.Request) {
	sess, ok := w.lookup(rw, r)
	if !ok {
		return
	}
	name := html.Name
	if wantsText(r) {
		name = tui.Name
	}
	out, contentType, err := w.renderers.Render(r.Context(), name, sess.View(w.renderOptions(r, sess)))
	if err != nil {
		writeError(rw, r, http.StatusInternalServerError, err)
		return
	}
	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Cache-Control", "no-store")
	_, _ = rw.Write(out)
}

func (w *WebAPI) postStep(rw http.ResponseWriter, r *http.Request) {
	sess, ok := w.lookup(rw, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(rw, r, http.StatusBadRequest, err)
		return
	}
	action, err := session.ParseAction(r.PostForm.Get("action"))
	if err != nil {
		writeError(rw, r, http.StatusBadRequest, err)
		return
	}
	logger := zerolog.Ctx(r.Context()).With().Str("session", sess.ID()).Str("action", string(action)).Logger()
	location := sessionURL(sess.Form().ID, sess.ID())

	if raw := r.PostForm.Get(render.HiddenStep); raw != "" {
		if step, err := strconv.Atoi(raw); err == nil && step != sess.StepIndex() {
			logger.Warn().Int("posted", step).Int("active", sess.StepIndex()).Msg("stale step post ignored")
			http.Redirect(rw, r, location, http.StatusSeeOther)
			return
		}
	}

	values := formValues(sess.Form(), r.PostForm)
	result, err := sess.Apply(logger.WithContext(r.Context()), action, values)
	switch {
	case errors.Is(err, session.ErrSessionClosed):
		writeError(rw, r, http.StatusGone, err)
		return
	case errors.Is(err, session.ErrNotFinalStep), errors.Is(err, submit.ErrInFlight):
		writeError(rw, r, http.StatusConflict, err)
		return
	case errors.Is(err, session.ErrStepIncomplete):
	case err != nil:
		writeError(rw, r, http.StatusInternalServerError, err)
		return
	}

	if result != nil && result.Outcome == submit.OutcomeRedirect {
		location = result.RedirectURL
	}
	http.Redirect(rw, r, location, http.StatusSeeOther)
}

func (w *WebAPI) state(rw http.ResponseWriter, r *http.Request) {
	sess, ok := w.lookup(rw, r)
	if !ok {
		return
	}
	writeJSON(rw, r, http.StatusOK, sess.View(w.renderOptions(r, sess)))
}

func (w *WebAPI) patchFields(rw http.ResponseWriter, r *http.Request) {
	sess, ok := w.lookup(rw, r)
	if !ok {
		return
	}
	values, err := decodeFields(io.LimitReader(r.Body, maxFieldsBody))
	if err != nil {
		writeError(rw, r, http.StatusBadRequest, err)
		return
	}

	state, err := sess.Patch(values)
	switch {
	case errors.Is(err, session.ErrSessionClosed):
		writeError(rw, r, http.StatusGone, err)
	case errors.Is(err, fields.ErrUnknownField), errors.Is(err, fields.ErrInvalidOption):
		writeJSON(rw, r, http.StatusUnprocessableEntity, FieldsReply{LiveState: state, Error: err.Error()})
	case err != nil:
		writeError(rw, r, http.StatusInternalServerError, err)
	default:
		writeJSON(rw, r, http.StatusOK, FieldsReply{LiveState: state})
	}
}

func (w *WebAPI) payload(rw http.ResponseWriter, r *http.Request) {
	sess, ok := w.lookup(rw, r)
	if !ok {
		return
	}
	writeJSON(rw, r, http.StatusOK, sess.Payload())
}

func (w *WebAPI) summaryPDF(rw http.ResponseWriter, r *http.Request) {
	sess, ok := w.lookup(rw, r)
	if !ok {
		return
	}
	var out []byte
	err := sess.Inspect(func(reg *fields.Registry, snap *aggregate.Snapshot) error {
		var err error
		out, err = report.Generate(reg, snap, report.WithTranslator(w.cfg.Translator, w.cfg.Locale))
		return err
	})
	if err != nil {
		writeError(rw, r, http.StatusInternalServerError, err)
		return
	}
	rw.Header().Set("Content-Type", "application/pdf")
	rw.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sess.Form().ID+"-summary.pdf"))
	_, _ = rw.Write(out)
}

func (w *WebAPI) lookup(rw http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := w.sessions.Get(chi.URLParam(r, "formID"), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(rw, r, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

func (w *WebAPI) renderOptions(r *http.Request, sess *session.Session) render.RenderOptions {
	opts := render.RenderOptions{
		Locale:     w.cfg.Locale,
		Translator: w.cfg.Translator,
		Action:     sessionURL(sess.Form().ID, sess.ID()),
		Hidden:     render.MergeHiddenFields(nil, render.StepField(sess.StepIndex()), render.SessionField(sess.ID())),
		Theme:      w.cfg.Theme,
		Variant:    w.cfg.Variant,
	}
	query := r.URL.Query()
	if locale := query.Get("locale"); locale != "" {
		opts.Locale = locale
	}
	if variant := query.Get("variant"); variant != "" {
		opts.Variant = variant
	}
	return opts
}

// formValues keeps the posted entries that name a declared form field;
// chrome inputs such as action and step are dropped.
func formValues(form *model.Form, posted map[string][]string) map[string]string {
	values := make(map[string]string)
	for name, entries := range posted {
		if _, ok := form.Field(name); !ok || len(entries) == 0 {
			continue
		}
		values[name] = entries[len(entries)-1]
	}
	return values
}

// decodeFields accepts a JSON object of field names to strings, numbers,
// booleans, or null.
func decodeFields(body io.Reader) (map[string]string, error) {
	var raw map[string]any
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	values := make(map[string]string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			values[name] = ""
		case string:
			values[name] = v
		case json.Number:
			values[name] = v.String()
		case bool:
			values[name] = strconv.FormatBool(v)
		default:
			return nil, fmt.Errorf("decode fields: %s must be a scalar", name)
		}
	}
	return values, nil
}

func startURL(formID string) string {
	return "/forms/" + formID + "/sessions"
}

func sessionURL(formID, sessionID string) string {
	return startURL(formID) + "/" + sessionID
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func wantsText(r *http.Request) bool {
	if r.URL.Query().Get("format") == "text" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.HasPrefix(accept, "text/plain")
}

func writeJSON(rw http.ResponseWriter, r *http.Request, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(rw http.ResponseWriter, r *http.Request, status int, err error) {
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(rw, r, status, map[string]string{"error": err.Error()})
}
