// Package testsupport holds fixtures shared by package tests: the bundled
// forms, a fixed clock and a recording submit endpoint.
package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/model"
)

// MustForm returns a bundled form, failing the test when it is missing.
func MustForm(t testing.TB, id string) *model.Form {
	t.Helper()
	store, err := formdef.Default()
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	form, ok := store.Form(id)
	if !ok {
		t.Fatalf("form %s missing", id)
	}
	return form
}

// MustRegistry returns a registry for a bundled form holding values.
func MustRegistry(t testing.TB, id string, values map[string]string) *fields.Registry {
	t.Helper()
	reg := fields.New(MustForm(t, id))
	if err := reg.SetAll(values); err != nil {
		t.Fatalf("set values: %v", err)
	}
	return reg
}

// FixedClock always reports 2024-05-01 09:30 UTC.
func FixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
}

// Endpoint is a test submit server that records decoded JSON bodies.
type Endpoint struct {
	*httptest.Server

	mu       sync.Mutex
	received []map[string]any
}

// NewEndpoint starts a server replying with status (and body when not
// empty). It is closed when the test ends.
func NewEndpoint(t testing.TB, status int, body string) *Endpoint {
	t.Helper()
	e := &Endpoint{}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		e.mu.Lock()
		e.received = append(e.received, doc)
		e.mu.Unlock()

		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		if body != "" {
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(e.Close)
	return e
}

// Received returns a copy of the recorded submissions.
func (e *Endpoint) Received() []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]map[string]any(nil), e.received...)
}
