package template

import "io"

// Engine executes a named template from its bundle against data and writes
// the result to w. Names are paths inside the bundle, extension included.
type Engine interface {
	Execute(w io.Writer, name string, data any) error
}
