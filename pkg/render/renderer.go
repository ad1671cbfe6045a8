package render

import "context"

// Renderer draws a View in one output format. The HTML page and the plain
// text transcript are the two front ends.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}
