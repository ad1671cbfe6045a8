package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

func restored(t *testing.T, c *submit.Coordinator) {
	t.Helper()
	want := submit.Control{Label: "Submit"}
	if diff := cmp.Diff(want, c.Control()); diff != "" {
		t.Fatalf("control not restored (-want +got):\n%s", diff)
	}
	if c.InFlight() {
		t.Fatalf("coordinator still in flight")
	}
}

func TestSubmit_ServerErrorRestoresControl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":{"data.housing.rent":["must be a number"],"__all__":["try later"]}}`))
	}))
	defer server.Close()

	c := submit.New(testsupport.MustForm(t, "retirement-budget"), submit.WithEndpoint(server.URL))
	result, err := c.Submit(context.Background(), map[string]any{"formId": "retirement-budget"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Outcome != submit.OutcomeFailed || result.Status != http.StatusInternalServerError {
		t.Fatalf("result = %+v", result)
	}
	if result.Notification != "❌ Submission failed. Please try again." {
		t.Fatalf("notification = %q", result.Notification)
	}
	wantErrors := submit.ErrorMapping{
		Fields: map[string][]string{"rent": {"must be a number"}},
		Form:   []string{"try later"},
	}
	if diff := cmp.Diff(wantErrors, result.Errors); diff != "" {
		t.Fatalf("error mapping mismatch (-want +got):\n%s", diff)
	}
	restored(t, c)
}

func TestSubmit_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	c := submit.New(testsupport.MustForm(t, "risk-tolerance-assessment"), submit.WithEndpoint(endpoint))
	result, err := c.Submit(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Outcome != submit.OutcomeNetwork || result.Err == nil {
		t.Fatalf("result = %+v", result)
	}
	if result.Notification != "❌ Network error. Please check your connection and try again." {
		t.Fatalf("notification = %q", result.Notification)
	}
	restored(t, c)
}

func TestSubmit_SuccessRedirect(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := submit.New(testsupport.MustForm(t, "retirement-income-fact-finder"), submit.WithEndpoint(server.URL))
	result, err := c.Submit(context.Background(), map[string]any{"formId": "retirement-income-fact-finder"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Outcome != submit.OutcomeRedirect || result.RedirectURL != "https://marrafinancialgroup.com/forms/thank-you/" {
		t.Fatalf("result = %+v", result)
	}
	if !result.OK() {
		t.Fatalf("redirect should count as accepted")
	}
	if got["formId"] != "retirement-income-fact-finder" {
		t.Fatalf("posted body = %v", got)
	}
	restored(t, c)
}

func TestSubmit_SuccessNotification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := submit.New(testsupport.MustForm(t, "retirement-budget"), submit.WithEndpoint(server.URL))
	result, err := c.Submit(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Outcome != submit.OutcomeSuccess || result.Notification != "✅ Budget submitted. Thank you!" {
		t.Fatalf("result = %+v", result)
	}
}

func TestSubmit_RejectsReentrantCalls(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
	}))
	defer server.Close()

	c := submit.New(testsupport.MustForm(t, "retirement-budget"), submit.WithEndpoint(server.URL))
	done := make(chan submit.Result, 1)
	go func() {
		result, _ := c.Submit(context.Background(), map[string]any{})
		done <- result
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Control().Disabled {
		if time.Now().After(deadline) {
			t.Fatalf("control never disabled")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := c.Control().Label; got != "Submitting..." {
		t.Fatalf("label while in flight = %q", got)
	}

	if _, err := c.Submit(context.Background(), map[string]any{}); !errors.Is(err, submit.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	close(release)
	result := <-done
	if result.Outcome != submit.OutcomeSuccess {
		t.Fatalf("first submission outcome = %s", result.Outcome)
	}
	if calls.Load() != 1 {
		t.Fatalf("endpoint called %d times", calls.Load())
	}
	restored(t, c)
}

func TestSubmit_TimeoutReleasesControl(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := submit.New(testsupport.MustForm(t, "retirement-budget"),
		submit.WithEndpoint(server.URL),
		submit.WithTimeout(50*time.Millisecond),
	)
	result, err := c.Submit(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Outcome != submit.OutcomeNetwork || !errors.Is(result.Err, context.DeadlineExceeded) {
		t.Fatalf("result = %+v", result)
	}
	restored(t, c)
}

func TestSubmit_StrictContractBlocks(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	store, err := formdef.Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form := testsupport.MustForm(t, "risk-tolerance-assessment")
	raw, err := store.ReadFile(form.Contract)
	if err != nil {
		t.Fatalf("read contract: %v", err)
	}
	contract, err := payload.LoadContract(context.Background(), raw, form.Submit.URL)
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}

	c := submit.New(form, submit.WithEndpoint(server.URL), submit.WithContract(contract, true))
	result, err := c.Submit(context.Background(), map[string]any{"formId": "nope"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Outcome != submit.OutcomeRejected || !errors.Is(result.Err, payload.ErrContractViolation) {
		t.Fatalf("result = %+v", result)
	}
	if calls.Load() != 0 {
		t.Fatalf("rejected payload must not be posted")
	}
	restored(t, c)
}

func TestSubmit_Translator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	es := render.MapTranslator{
		render.MsgSubmit:       "Enviar",
		render.MsgSubmitFailed: "❌ Error al enviar.",
	}
	c := submit.New(testsupport.MustForm(t, "retirement-budget"), submit.WithEndpoint(server.URL), submit.WithTranslator(es, "es"))
	result, _ := c.Submit(context.Background(), map[string]any{})
	if result.Notification != "❌ Error al enviar." {
		t.Fatalf("notification = %q", result.Notification)
	}
	if got := c.Control().Label; got != "Enviar" {
		t.Fatalf("label = %q", got)
	}
}

func TestMapErrorPayload(t *testing.T) {
	form := testsupport.MustForm(t, "retirement-income-fact-finder")
	got := submit.MapErrorPayload(form, map[string][]string{
		"/assets/k401/client":       {"too large"},
		"meta.clientName":           {" required ", "required"},
		"body.additional.homeValue": {"invalid"},
		"spouseDob":                 {"bad date"},
		"unknown.path":              {"mystery"},
	})
	want := submit.ErrorMapping{
		Fields: map[string][]string{
			"401kClient": {"too large"},
			"clientName": {"required"},
			"homeValue":  {"invalid"},
			"spouseDob":  {"bad date"},
		},
		Form: []string{"mystery"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}
