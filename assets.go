package formwizard

import (
	"io/fs"

	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// EmbeddedDefinitions exposes the bundled form definitions and contracts.
func EmbeddedDefinitions() fs.FS {
	return formdef.EmbeddedFS()
}

// AssetsFS exposes the stylesheet and live-totals script so Go applications
// can serve them without a build step.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formwizard.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
