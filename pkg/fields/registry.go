package fields

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formwizard/pkg/model"
)

// DateLayout is the ISO date format used for auto-filled date fields.
const DateLayout = "2006-01-02"

// Registry is the single source of field values for one form instance. User
// input lives in one layer and auto-computed values (row sums) in another, so
// a derived value never overwrites what the user typed.
//
// A Registry is not safe for concurrent use; sessions serialise access.
type Registry struct {
	form    *model.Form
	values  map[string]string
	derived map[string]string
}

// New builds an empty registry for form.
func New(form *model.Form) *Registry {
	return &Registry{
		form:    form,
		values:  make(map[string]string),
		derived: make(map[string]string),
	}
}

// Form returns the compiled form backing the registry.
func (r *Registry) Form() *model.Form {
	return r.form
}

// Set stores raw user input for name. Text is stripped of markup, choice
// values must match an option value or label and are stored as the value.
func (r *Registry) Set(name, raw string) error {
	field, ok := r.form.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	value := strings.TrimSpace(raw)
	switch field.Kind {
	case model.KindText, model.KindTextArea:
		value = sanitizeText(raw)
	case model.KindChoice, model.KindYesNo:
		if value != "" {
			opt, ok := matchOption(field.Options, value)
			if !ok {
				return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, raw)
			}
			value = opt.Value
		}
	}

	if value == "" {
		delete(r.values, name)
		return nil
	}
	r.values[name] = value
	return nil
}

// SetAll applies every entry in values, in name order, and reports all
// failures together. Valid entries are applied even when others fail.
func (r *Registry) SetAll(values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := r.Set(name, values[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Raw returns the user-entered value, ignoring the derived layer.
func (r *Registry) Raw(name string) string {
	return r.values[name]
}

// Value returns the user-entered value, falling back to a derived value.
func (r *Registry) Value(name string) string {
	if v, ok := r.values[name]; ok {
		return v
	}
	return r.derived[name]
}

// Lookup implements visibility.Source.
func (r *Registry) Lookup(name string) (string, bool) {
	if _, ok := r.form.Field(name); !ok {
		return "", false
	}
	return r.Value(name), true
}

// Number parses the field's value. ok is false for blank or non-numeric
// values, which callers treat as zero.
func (r *Registry) Number(name string) (decimal.Decimal, bool) {
	return ParseNumber(r.Value(name))
}

// Selected returns the option chosen for a choice field.
func (r *Registry) Selected(name string) (model.Option, bool) {
	field, ok := r.form.Field(name)
	if !ok {
		return model.Option{}, false
	}
	value := r.values[name]
	if value == "" {
		return model.Option{}, false
	}
	for _, opt := range field.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return model.Option{}, false
}

// Derived returns the auto-computed value for name.
func (r *Registry) Derived(name string) string {
	return r.derived[name]
}

// SetDerived writes the auto-computed layer. Blank clears it. Only fields
// declaring a derived strategy accept derived values.
func (r *Registry) SetDerived(name, value string) error {
	field, ok := r.form.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if field.Derived == "" {
		return fmt.Errorf("fields: %q is not a derived field", name)
	}
	if value == "" {
		delete(r.derived, name)
		return nil
	}
	r.derived[name] = value
	return nil
}

// Visible evaluates the field's visibleIf rule against current values.
func (r *Registry) Visible(name string) bool {
	return r.form.Rule(name).Eval(r)
}

// ApplyAuto fills blank auto fields. Date fields marked "today" receive now
// formatted as YYYY-MM-DD.
func (r *Registry) ApplyAuto(now time.Time) {
	for _, field := range r.form.Fields {
		if field.Auto != model.AutoToday {
			continue
		}
		if _, set := r.values[field.Name]; set {
			continue
		}
		r.values[field.Name] = now.Format(DateLayout)
	}
}

// Values returns a copy of the merged value layers keyed by field name.
func (r *Registry) Values() map[string]string {
	out := make(map[string]string, len(r.values)+len(r.derived))
	for k, v := range r.derived {
		out[k] = v
	}
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Reset drops every stored value.
func (r *Registry) Reset() {
	r.values = make(map[string]string)
	r.derived = make(map[string]string)
}

// ParseNumber parses a numeric input. Blank and non-numeric text report
// ok=false.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func matchOption(options []model.Option, value string) (model.Option, bool) {
	for _, opt := range options {
		if opt.Value == value {
			return opt, true
		}
	}
	for _, opt := range options {
		if (opt.Label != "" && strings.EqualFold(opt.Label, value)) || (opt.Text != "" && strings.EqualFold(opt.Text, value)) {
			return opt, true
		}
	}
	return model.Option{}, false
}
