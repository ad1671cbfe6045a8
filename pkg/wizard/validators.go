package wizard

import (
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
)

// Validator decides whether the user may leave a step. It receives the
// fields owned by the step.
type Validator func(reg *fields.Registry, stepFields []model.Field) bool

// DefaultValidators returns the built-in validators keyed by the names used
// in form definitions.
func DefaultValidators() map[string]Validator {
	return map[string]Validator{
		model.ValidatorAnyPositive: AnyPositive,
		model.ValidatorAllSelected: AllSelected,
		model.ValidatorAlways:      Always,
	}
}

// AnyPositive passes when at least one visible numeric input on the step
// holds a value greater than zero.
func AnyPositive(reg *fields.Registry, stepFields []model.Field) bool {
	for _, field := range stepFields {
		if !field.Kind.Numeric() || field.Derived != "" || !reg.Visible(field.Name) {
			continue
		}
		if n, ok := fields.ParseNumber(reg.Raw(field.Name)); ok && n.IsPositive() {
			return true
		}
	}
	return false
}

// AllSelected passes when every visible choice group on the step has a
// selection.
func AllSelected(reg *fields.Registry, stepFields []model.Field) bool {
	for _, field := range stepFields {
		if field.Kind != model.KindChoice || !reg.Visible(field.Name) {
			continue
		}
		if _, ok := reg.Selected(field.Name); !ok {
			return false
		}
	}
	return true
}

// Always passes.
func Always(*fields.Registry, []model.Field) bool {
	return true
}
