package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Action is a user command posted with a step.
type Action string

const (
	ActionUpdate Action = "update"
	ActionNext   Action = "next"
	ActionBack   Action = "back"
	ActionSubmit Action = "submit"
)

// ParseAction validates a posted action. Blank means update.
func ParseAction(raw string) (Action, error) {
	switch action := Action(strings.ToLower(strings.TrimSpace(raw))); action {
	case "":
		return ActionUpdate, nil
	case ActionUpdate, ActionNext, ActionBack, ActionSubmit:
		return action, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// Option configures a Session.
type Option func(*Session)

// WithClock supplies the current time for auto-filled date fields.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSubmitOptions configures the session's submit coordinator.
func WithSubmitOptions(opts ...submit.Option) Option {
	return func(s *Session) {
		s.submitOpts = append(s.submitOpts, opts...)
	}
}

// WithControllerOptions configures the step controller.
func WithControllerOptions(opts ...wizard.Option) Option {
	return func(s *Session) {
		s.ctlOpts = append(s.ctlOpts, opts...)
	}
}

// LiveState is the recomputed state returned after a field update, enough
// for a scripted client to refresh totals without re-rendering the page.
type LiveState struct {
	Displays    map[string]string `json:"displays"`
	Derived     map[string]string `json:"derived,omitempty"`
	NextEnabled bool              `json:"nextEnabled"`
	Warning     bool              `json:"warning"`
}

// Session is one in-memory wizard instance.
type Session struct {
	id   string
	form *model.Form
	now  func() time.Time

	submitOpts []submit.Option
	ctlOpts    []wizard.Option

	mu           sync.Mutex
	reg          *fields.Registry
	ctl          *wizard.Controller
	coord        *submit.Coordinator
	snap         *aggregate.Snapshot
	notification string
	errors       submit.ErrorMapping
	redirect     string
	done         bool
}

// New starts a session on step 0 with auto fields filled.
func New(id string, form *model.Form, opts ...Option) *Session {
	s := &Session{
		id:   id,
		form: form,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.reg = fields.New(form)
	s.reg.ApplyAuto(s.now())
	s.ctl = wizard.NewController(s.reg, s.ctlOpts...)
	s.coord = submit.New(form, s.submitOpts...)
	s.snap = aggregate.Recompute(s.reg)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Form returns the compiled form.
func (s *Session) Form() *model.Form { return s.form }

// Done reports whether a submission redirected away from the session.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// StepIndex returns the active step.
func (s *Session) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Index()
}

// Update applies field values and recomputes totals. Valid entries are kept
// even when others fail. Any numeric input hides the validation warning.
func (s *Session) Update(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return ErrSessionClosed
	}
	return s.update(values)
}

func (s *Session) update(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	err := s.reg.SetAll(values)
	for name := range values {
		if field, ok := s.form.Field(name); ok && field.Kind.Numeric() {
			s.ctl.ClearWarning()
			break
		}
	}
	s.snap = aggregate.Recompute(s.reg)
	s.notification = ""
	if err != nil {
		return fmt.Errorf("session: update: %w", err)
	}
	return nil
}

// Patch applies values and returns the live state.
func (s *Session) Patch(values map[string]string) (LiveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return LiveState{}, ErrSessionClosed
	}
	err := s.update(values)
	return s.liveState(), err
}

func (s *Session) liveState() LiveState {
	state := LiveState{
		Displays:    make(map[string]string, len(s.snap.Displays)),
		NextEnabled: s.ctl.NextEnabled(),
		Warning:     s.ctl.WarningVisible(),
	}
	for id, text := range s.snap.Displays {
		state.Displays[id] = text
	}
	for _, field := range s.form.Fields {
		if field.Derived == "" {
			continue
		}
		if state.Derived == nil {
			state.Derived = make(map[string]string)
		}
		state.Derived[field.Name] = s.reg.Derived(field.Name)
	}
	return state
}

// Next advances when the active step validates.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Advance()
}

// Back returns to the previous step.
func (s *Session) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Retreat()
}

// Apply posts values then runs action. Submit results are returned; other
// actions return a nil result.
func (s *Session) Apply(ctx context.Context, action Action, values map[string]string) (*submit.Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("form", s.form.ID).Str("session", s.id).Str("action", string(action)).Logger()

	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if err := s.update(values); err != nil {
		logger.Warn().Err(err).Msg("rejected field values")
	}

	switch action {
	case ActionUpdate:
		s.mu.Unlock()
		return nil, nil
	case ActionNext:
		moved := s.ctl.Advance()
		step := s.ctl.Index()
		s.mu.Unlock()
		logger.Debug().Bool("moved", moved).Int("step", step).Msg("advance")
		return nil, nil
	case ActionBack:
		s.ctl.Retreat()
		s.mu.Unlock()
		return nil, nil
	case ActionSubmit:
		s.mu.Unlock()
		result, err := s.Submit(ctx)
		if err != nil {
			return nil, err
		}
		return &result, nil
	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Payload builds the payload from the current values.
func (s *Session) Payload() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return payload.Build(s.reg, s.snap)
}

// Snapshot returns the latest aggregate snapshot.
func (s *Session) Snapshot() *aggregate.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Submit sends the payload. The session lock is released while the request
// runs so views keep rendering the disabled control; the coordinator's
// in-flight guard rejects a second submit.
func (s *Session) Submit(ctx context.Context) (submit.Result, error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return submit.Result{}, ErrSessionClosed
	}
	if !s.ctl.IsLast() {
		s.mu.Unlock()
		return submit.Result{}, ErrNotFinalStep
	}
	if !s.ctl.Valid() {
		s.ctl.Advance()
		s.mu.Unlock()
		return submit.Result{}, ErrStepIncomplete
	}
	s.reg.ApplyAuto(s.now())
	s.snap = aggregate.Recompute(s.reg)
	doc := payload.Build(s.reg, s.snap)
	s.errors = submit.ErrorMapping{}
	s.notification = ""
	s.mu.Unlock()

	result, err := s.coord.Submit(ctx, doc)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notification = result.Notification
	s.errors = result.Errors
	if result.Outcome == submit.OutcomeRedirect {
		s.redirect = result.RedirectURL
		s.done = true
	}
	return result, nil
}

// View projects the session into a render.View.
func (s *Session) View(opts render.RenderOptions) render.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	control := s.coord.Control()
	return render.BuildView(render.ViewState{
		SessionID:    s.id,
		Controller:   s.ctl,
		Registry:     s.reg,
		Snapshot:     s.snap,
		Control:      render.ControlView{Label: control.Label, Disabled: control.Disabled},
		Notification: s.notification,
		FieldErrors:  s.errors.Fields,
		FormErrors:   s.errors.Form,
		RedirectURL:  s.redirect,
		Done:         s.done,
	}, opts)
}

// Values returns a copy of the user-entered values.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Values()
}

// Inspect runs fn against the registry and latest snapshot while holding the
// session lock. fn must not retain either value.
func (s *Session) Inspect(fn func(reg *fields.Registry, snap *aggregate.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.reg, s.snap)
}
