package fields

import "errors"

var (
	// ErrUnknownField is returned when a name is not declared by the form.
	ErrUnknownField = errors.New("fields: unknown field")
	// ErrInvalidOption is returned when a choice value matches no option.
	ErrInvalidOption = errors.New("fields: value is not one of the field options")
)
