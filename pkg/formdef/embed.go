package formdef

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed defs
var embeddedDefs embed.FS

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// EmbeddedFS returns the bundled form definitions and contracts.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefs, "defs")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default loads the embedded definitions once and caches the result.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultStore, defaultErr
}
