package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/session"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

// DefaultSubmitTimeout bounds a single submission.
const DefaultSubmitTimeout = 30 * time.Second

// ErrFormNotFound is returned for an unknown form id.
var ErrFormNotFound = errors.New("orchestrator: form not found")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithForms injects a pre-loaded definition store.
func WithForms(store *formdef.Store) Option {
	return func(o *Orchestrator) {
		o.forms = store
	}
}

// WithFormsDir loads definitions from a directory instead of the embedded
// set. An empty dir keeps the default.
func WithFormsDir(dir string) Option {
	return func(o *Orchestrator) {
		o.formsDir = dir
	}
}

// WithSessionStore injects the store new sessions are registered in.
func WithSessionStore(store *session.Store) Option {
	return func(o *Orchestrator) {
		o.sessions = store
	}
}

// WithSubmitTimeout overrides DefaultSubmitTimeout.
func WithSubmitTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithEndpoint sends every submission to url instead of the form's own URL.
func WithEndpoint(url string) Option {
	return func(o *Orchestrator) {
		o.endpoint = url
	}
}

// WithStrictContract blocks submissions that fail the form's contract.
func WithStrictContract(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// WithTranslator sets the catalogue used for notifications and chrome text.
func WithTranslator(t render.Translator, locale string) Option {
	return func(o *Orchestrator) {
		o.translator = t
		o.locale = locale
	}
}

// WithHTTPClient sets the client used for submissions.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		o.client = client
	}
}

// WithClock replaces time.Now for auto-filled dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator owns the form definitions, their payload contracts and the
// submit settings shared by every session it starts.
type Orchestrator struct {
	forms      *formdef.Store
	formsDir   string
	sessions   *session.Store
	contracts  map[string]*payload.Contract
	timeout    time.Duration
	endpoint   string
	strict     bool
	translator render.Translator
	locale     string
	client     *http.Client
	now        func() time.Time
}

// New applies options, loads the definitions (embedded unless a store or
// directory is given) and compiles every referenced contract.
func New(ctx context.Context, options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		timeout:   DefaultSubmitTimeout,
		now:       time.Now,
		contracts: make(map[string]*payload.Contract),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}

	if o.forms == nil {
		store, err := loadForms(o.formsDir)
		if err != nil {
			return nil, err
		}
		o.forms = store
	}
	if o.forms.Empty() {
		return nil, errors.New("orchestrator: no form definitions found")
	}
	if o.sessions == nil {
		o.sessions = session.NewStore()
	}

	for _, form := range o.forms.Forms() {
		if form.Contract == "" {
			continue
		}
		contract, err := loadContract(ctx, o.forms, form)
		if err != nil {
			return nil, err
		}
		o.contracts[form.ID] = contract
	}
	return o, nil
}

func loadForms(dir string) (*formdef.Store, error) {
	if dir == "" {
		return formdef.Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: forms dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("orchestrator: forms dir %s is not a directory", dir)
	}
	return formdef.LoadFS(os.DirFS(dir))
}

func loadContract(ctx context.Context, store *formdef.Store, form *model.Form) (*payload.Contract, error) {
	raw, err := store.ReadFile(form.Contract)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: form %s: %w", form.ID, err)
	}
	contract, err := payload.LoadContract(ctx, raw, form.Submit.URL)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: form %s: %w", form.ID, err)
	}
	return contract, nil
}

// Forms returns the definition store.
func (o *Orchestrator) Forms() *formdef.Store {
	return o.forms
}

// Sessions returns the session store.
func (o *Orchestrator) Sessions() *session.Store {
	return o.sessions
}

// Form looks up a definition by id.
func (o *Orchestrator) Form(id string) (*model.Form, error) {
	form, ok := o.forms.Form(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}
	return form, nil
}

// Contract returns the compiled contract for a form, or nil.
func (o *Orchestrator) Contract(formID string) *payload.Contract {
	return o.contracts[formID]
}

// SessionOptions returns the options every session of form is created with.
func (o *Orchestrator) SessionOptions(form *model.Form) []session.Option {
	submitOpts := []submit.Option{submit.WithTimeout(o.timeout)}
	if o.endpoint != "" {
		submitOpts = append(submitOpts, submit.WithEndpoint(o.endpoint))
	}
	if o.client != nil {
		submitOpts = append(submitOpts, submit.WithHTTPClient(o.client))
	}
	if o.translator != nil {
		submitOpts = append(submitOpts, submit.WithTranslator(o.translator, o.locale))
	}
	if contract := o.contracts[form.ID]; contract != nil {
		submitOpts = append(submitOpts, submit.WithContract(contract, o.strict))
	}
	return []session.Option{
		session.WithClock(o.now),
		session.WithSubmitOptions(submitOpts...),
	}
}

// NewSession starts a session for formID in the session store.
func (o *Orchestrator) NewSession(formID string) (*session.Session, error) {
	form, err := o.Form(formID)
	if err != nil {
		return nil, err
	}
	return o.sessions.Create(form, o.SessionOptions(form)...), nil
}

// Payload builds the submission document for formID from raw values without
// starting a session. Invalid values are reported but valid ones still count.
func (o *Orchestrator) Payload(formID string, values map[string]string) (map[string]any, error) {
	form, err := o.Form(formID)
	if err != nil {
		return nil, err
	}
	reg, snap, setErr := fill(form, values, o.now())
	doc := payload.Build(reg, snap)
	if setErr != nil {
		return doc, fmt.Errorf("orchestrator: form %s: %w", formID, setErr)
	}
	return doc, nil
}

// Validate checks doc against the form's contract; forms without one pass.
func (o *Orchestrator) Validate(formID string, doc map[string]any) error {
	return o.contracts[formID].Validate(doc)
}

func fill(form *model.Form, values map[string]string, now time.Time) (*fields.Registry, *aggregate.Snapshot, error) {
	reg := fields.New(form)
	err := reg.SetAll(values)
	reg.ApplyAuto(now)
	return reg, aggregate.Recompute(reg), err
}
