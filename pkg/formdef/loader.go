package formdef

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/model"
)

// contractDir holds OpenAPI documents referenced by definitions. Files below
// it are never parsed as form definitions.
const contractDir = "contracts"

// Store indexes compiled forms by id and keeps the source filesystem so
// referenced contract documents can be read later.
type Store struct {
	fsys  fs.FS
	forms map[string]*model.Form
}

// LoadFS walks the provided filesystem and compiles every JSON/YAML form
// definition it finds. When fsys is nil the returned store is empty.
// Contract references are not resolved here; see Store.ReadFile.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{fsys: fsys, forms: make(map[string]*model.Form)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if entry.Name() == contractDir {
				return fs.SkipDir
			}
			return nil
		}
		if !isDefinitionFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("formdef: read %s: %w", name, err)
		}

		def, err := parseDefinition(data, name)
		if err != nil {
			return err
		}
		def.Source = name

		form, err := model.Compile(def)
		if err != nil {
			return fmt.Errorf("formdef: compile %s: %w", name, err)
		}
		if _, exists := store.forms[form.ID]; exists {
			return fmt.Errorf("formdef: duplicate form %q (file %s)", form.ID, name)
		}
		store.forms[form.ID] = form
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Form returns the compiled form for id.
func (s *Store) Form(id string) (*model.Form, bool) {
	if s == nil {
		return nil, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// Forms returns every compiled form sorted by id.
func (s *Store) Forms() []*model.Form {
	if s == nil {
		return nil
	}
	out := make([]*model.Form, 0, len(s.forms))
	for _, form := range s.forms {
		out = append(out, form)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// ReadFile returns a file from the definition filesystem, typically a
// contract document referenced by a form.
func (s *Store) ReadFile(name string) ([]byte, error) {
	if s == nil || s.fsys == nil {
		return nil, fmt.Errorf("formdef: read %s: %w", name, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("formdef: read %s: %w", name, err)
	}
	return data, nil
}

func parseDefinition(data []byte, source string) (model.Definition, error) {
	var def model.Definition
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.Definition{}, fmt.Errorf("formdef: file %s is empty", source)
	}

	if strings.EqualFold(path.Ext(source), ".json") {
		if err := json.Unmarshal(data, &def); err != nil {
			return model.Definition{}, fmt.Errorf("formdef: parse %s: %w", source, err)
		}
		return def, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return model.Definition{}, fmt.Errorf("formdef: parse %s: %w", source, err)
	}
	return def, nil
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
