package wizard

import (
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
)

// Option configures a Controller.
type Option func(*Controller)

// WithValidator replaces the implementation behind a validator name.
func WithValidator(name string, fn Validator) Option {
	return func(c *Controller) {
		if name != "" && fn != nil {
			c.validators[name] = fn
		}
	}
}

// Controller walks a form linearly. Exactly one step is active; back and
// next visibility, the indicator, and the validation warning derive from the
// active index.
type Controller struct {
	form       *model.Form
	reg        *fields.Registry
	validators map[string]Validator
	index      int
	warning    bool
}

// NewController starts at step 0.
func NewController(reg *fields.Registry, opts ...Option) *Controller {
	c := &Controller{
		form:       reg.Form(),
		reg:        reg,
		validators: DefaultValidators(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Index is the 0-based active step.
func (c *Controller) Index() int { return c.index }

// Count is the number of steps.
func (c *Controller) Count() int { return len(c.form.Steps) }

// Step returns the active step.
func (c *Controller) Step() model.Step { return c.form.Steps[c.index] }

// IsLast reports whether the active step is the final one.
func (c *Controller) IsLast() bool { return c.index == len(c.form.Steps)-1 }

// BackVisible is false on the first step.
func (c *Controller) BackVisible() bool { return c.index > 0 }

// NextVisible is false on the last step, where submit takes its place.
func (c *Controller) NextVisible() bool { return !c.IsLast() }

// WarningVisible reports whether the last Advance failed validation.
func (c *Controller) WarningVisible() bool { return c.warning }

// ClearWarning hides the warning; inputs call it as the user types.
func (c *Controller) ClearWarning() { c.warning = false }

// Indicator renders "Label · Step i of n", or "Step i of n" for unlabeled
// steps.
func (c *Controller) Indicator() string {
	text := fmt.Sprintf("Step %d of %d", c.index+1, len(c.form.Steps))
	if label := c.Step().Label; label != "" {
		return label + " · " + text
	}
	return text
}

// ShowStep activates the step at index and clears the warning.
func (c *Controller) ShowStep(index int) error {
	if index < 0 || index >= len(c.form.Steps) {
		return fmt.Errorf("%w: %d (form %q has %d steps)", ErrStepOutOfRange, index, c.form.ID, len(c.form.Steps))
	}
	c.index = index
	c.warning = false
	return nil
}

// Valid runs the active step's validator without side effects.
func (c *Controller) Valid() bool {
	return c.validate(c.index)
}

// NextEnabled mirrors the live button state: always enabled on summary and
// last steps, otherwise the validator result.
func (c *Controller) NextEnabled() bool {
	if c.Step().Summary || c.IsLast() {
		return true
	}
	return c.Valid()
}

// Advance moves forward when the active step validates. On failure the
// warning is shown and the index stays put, so repeated calls are idempotent.
func (c *Controller) Advance() bool {
	if !c.validate(c.index) {
		c.warning = true
		return false
	}
	if c.IsLast() {
		return false
	}
	// ShowStep cannot fail: index+1 is in range when not last.
	_ = c.ShowStep(c.index + 1)
	return true
}

// Retreat moves back one step; at step 0 it does nothing.
func (c *Controller) Retreat() bool {
	if c.index == 0 {
		return false
	}
	_ = c.ShowStep(c.index - 1)
	return true
}

func (c *Controller) validate(index int) bool {
	step := c.form.Steps[index]
	if step.Summary {
		return true
	}
	fn, ok := c.validators[step.Validator]
	if !ok {
		fn = Always
	}
	return fn(c.reg, c.form.StepFields(index))
}
