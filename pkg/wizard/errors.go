package wizard

import "errors"

var (
	// ErrStepOutOfRange is returned by ShowStep for an index outside the form.
	ErrStepOutOfRange = errors.New("wizard: step index out of range")
)
