// Package submit sends a built payload to the form's remote endpoint with a
// single POST and reports the outcome the way the front ends display it:
// control state plus a notification.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/render"
)

// Outcome classifies a finished submission.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRedirect Outcome = "redirect"
	OutcomeFailed   Outcome = "failed"
	OutcomeNetwork  Outcome = "network"
	OutcomeRejected Outcome = "rejected"
)

// maxErrorBody caps how much of a failed response is read for an error
// document.
const maxErrorBody = 64 << 10

// Control is the submit button state.
type Control struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Result describes a settled submission.
type Result struct {
	Outcome      Outcome      `json:"outcome"`
	Status       int          `json:"status,omitempty"`
	Notification string       `json:"notification,omitempty"`
	RedirectURL  string       `json:"redirectUrl,omitempty"`
	Errors       ErrorMapping `json:"errors,omitempty"`
	Err          error        `json:"-"`
}

// OK reports whether the remote endpoint accepted the payload.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeRedirect
}

// Coordinator owns the submit control for one form instance.
type Coordinator struct {
	form       *model.Form
	client     *http.Client
	endpoint   string
	timeout    time.Duration
	contract   *payload.Contract
	strict     bool
	translator render.Translator
	locale     string

	inFlight atomic.Bool
	mu       sync.Mutex
	control  Control
}

// New builds a coordinator posting to the form's submit URL.
func New(form *model.Form, opts ...Option) *Coordinator {
	c := &Coordinator{
		form:     form,
		client:   http.DefaultClient,
		endpoint: form.Submit.URL,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.control = Control{Label: c.text(render.MsgSubmit)}
	return c
}

// Control returns the current control state.
func (c *Coordinator) Control() Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control
}

// InFlight reports whether a submission is running.
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}

// Submit POSTs doc as JSON. Re-entrant calls fail fast with ErrInFlight and
// leave the running submission untouched. The control is disabled while the
// request runs and restored once it settles, whatever the outcome. Transport
// and HTTP failures are reported through Result, not the error.
func (c *Coordinator) Submit(ctx context.Context, doc map[string]any) (Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrInFlight
	}
	defer c.inFlight.Store(false)

	if c.endpoint == "" {
		return Result{}, fmt.Errorf("%w: %s", ErrNoEndpoint, c.form.ID)
	}

	logger := zerolog.Ctx(ctx).With().Str("form", c.form.ID).Str("endpoint", c.endpoint).Logger()

	if c.contract != nil {
		if err := c.contract.Validate(doc); err != nil {
			if c.strict {
				logger.Warn().Err(err).Msg("payload rejected by contract")
				return Result{Outcome: OutcomeRejected, Notification: c.text(render.MsgSubmitFailed), Err: err}, nil
			}
			logger.Warn().Err(err).Msg("payload does not match contract")
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return Result{}, fmt.Errorf("submit: encode payload: %w", err)
	}

	c.setControl(Control{Label: c.text(render.MsgSubmitting), Disabled: true})
	defer c.setControl(Control{Label: c.text(render.MsgSubmit)})

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("submit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("submission transport failure")
		return Result{Outcome: OutcomeNetwork, Notification: c.text(render.MsgNetworkError), Err: err}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		result := Result{
			Outcome:      OutcomeFailed,
			Status:       resp.StatusCode,
			Notification: c.text(render.MsgSubmitFailed),
			Errors:       MapErrorPayload(c.form, decodeErrorDocument(raw)),
			Err:          fmt.Errorf("submit: endpoint returned %s", resp.Status),
		}
		logger.Error().Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("submission failed")
		return result, nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	logger.Info().Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("submission accepted")
	if redirect := c.form.Submit.Redirect; redirect != "" {
		return Result{Outcome: OutcomeRedirect, Status: resp.StatusCode, RedirectURL: redirect}, nil
	}
	message := c.form.Submit.SuccessMessage
	if message == "" {
		message = c.text(render.MsgSubmitSuccess)
	}
	return Result{Outcome: OutcomeSuccess, Status: resp.StatusCode, Notification: message}, nil
}

func (c *Coordinator) setControl(control Control) {
	c.mu.Lock()
	c.control = control
	c.mu.Unlock()
}

func (c *Coordinator) text(key string) string {
	return render.Text(c.translator, c.locale, key)
}

// decodeErrorDocument accepts the common error shapes:
//
//	{"errors": {"field": ["msg"]}}
//	{"errors": {"field": "msg"}}
//	{"errors": [{"field": "x", "message": "msg"}]}
//	{"error": "msg"} / {"message": "msg"}
func decodeErrorDocument(raw []byte) map[string][]string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var doc struct {
		Errors  json.RawMessage `json:"errors"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	out := make(map[string][]string)
	if len(doc.Errors) > 0 {
		var byField map[string]any
		var list []struct {
			Field   string `json:"field"`
			Path    string `json:"path"`
			Message string `json:"message"`
		}
		switch {
		case json.Unmarshal(doc.Errors, &byField) == nil:
			for key, value := range byField {
				switch v := value.(type) {
				case string:
					out[key] = append(out[key], v)
				case []any:
					for _, item := range v {
						if s, ok := item.(string); ok {
							out[key] = append(out[key], s)
						}
					}
				}
			}
		case json.Unmarshal(doc.Errors, &list) == nil:
			for _, item := range list {
				key := item.Field
				if key == "" {
					key = item.Path
				}
				out[key] = append(out[key], item.Message)
			}
		}
	}
	if doc.Error != "" {
		out["form"] = append(out["form"], doc.Error)
	}
	if doc.Message != "" {
		out["form"] = append(out["form"], doc.Message)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
