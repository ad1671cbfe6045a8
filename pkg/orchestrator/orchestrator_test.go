package orchestrator_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/orchestrator"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

func TestNew_LoadsEmbeddedFormsAndContracts(t *testing.T) {
	o, err := orchestrator.New(context.Background())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	var ids []string
	for _, form := range o.Forms().Forms() {
		ids = append(ids, form.ID)
	}
	want := []string{"retirement-budget", "retirement-income-fact-finder", "risk-tolerance-assessment"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}

	if o.Contract("retirement-budget") != nil {
		t.Fatalf("budget declares no contract")
	}
	contract := o.Contract("risk-tolerance-assessment")
	if contract == nil || contract.Path != "/api/submit" {
		t.Fatalf("risk contract = %+v", contract)
	}
}

func TestNew_BadFormsDir(t *testing.T) {
	if _, err := orchestrator.New(context.Background(), orchestrator.WithFormsDir(t.TempDir())); err == nil {
		t.Fatalf("expected empty directory to fail")
	}
	if _, err := orchestrator.New(context.Background(), orchestrator.WithFormsDir("does-not-exist")); err == nil {
		t.Fatalf("expected missing directory to fail")
	}
}

func TestNew_MissingContract(t *testing.T) {
	store, err := formdef.LoadFS(fstest.MapFS{"broken.yaml": {Data: []byte(brokenContractForm)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := orchestrator.New(context.Background(), orchestrator.WithForms(store)); err == nil {
		t.Fatalf("expected missing contract to fail")
	}
}

func TestPayload(t *testing.T) {
	o, err := orchestrator.New(context.Background(), orchestrator.WithClock(testsupport.FixedClock))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	doc, err := o.Payload("retirement-budget", map[string]string{"rent": "1500", "utilities": "200.5"})
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got, _ := payload.GetPath(doc, "data.housing.total"); got != 1700.5 {
		t.Fatalf("data.housing.total = %v", got)
	}
	if got, _ := payload.GetPath(doc, "meta.submissionDate"); got != "2024-05-01" {
		t.Fatalf("meta.submissionDate = %v", got)
	}

	doc, err = o.Payload("retirement-budget", map[string]string{"rent": "10", "nope": "1"})
	if !errors.Is(err, fields.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if got, _ := payload.GetPath(doc, "data.housing.total"); got != float64(10) {
		t.Fatalf("valid values should still count, data.housing.total = %v", got)
	}

	if _, err := o.Payload("missing", nil); !errors.Is(err, orchestrator.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	o, err := orchestrator.New(context.Background())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	doc, err := o.Payload("risk-tolerance-assessment", map[string]string{"objective": "12"})
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if err := o.Validate("risk-tolerance-assessment", doc); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	delete(doc, "meta")
	if err := o.Validate("risk-tolerance-assessment", doc); !errors.Is(err, payload.ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	if err := o.Validate("retirement-budget", doc); err != nil {
		t.Fatalf("forms without a contract always pass, got %v", err)
	}
}

func TestNewSession_UsesEndpointOverride(t *testing.T) {
	upstream := testsupport.NewEndpoint(t, http.StatusNoContent, "")

	o, err := orchestrator.New(context.Background(),
		orchestrator.WithEndpoint(upstream.URL),
		orchestrator.WithSubmitTimeout(5*time.Second),
		orchestrator.WithClock(testsupport.FixedClock),
		orchestrator.WithStrictContract(true),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	sess, err := o.NewSession("risk-tolerance-assessment")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if o.Sessions().Len() != 1 {
		t.Fatalf("session not registered")
	}

	answers := map[string]string{
		"objective": "15", "horizon": "11", "portfolio": "11", "risklevel": "10",
		"recovery": "10", "incomeStability": "10", "emergency": "10",
	}
	if err := sess.Update(answers); err != nil {
		t.Fatalf("update: %v", err)
	}
	for sess.StepIndex() < len(sess.Form().Steps)-1 {
		if !sess.Next() {
			t.Fatalf("stuck on step %d", sess.StepIndex())
		}
	}

	result, err := sess.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Outcome != submit.OutcomeSuccess {
		t.Fatalf("outcome = %s (%v)", result.Outcome, result.Err)
	}
	received := upstream.Received()
	if len(received) != 1 {
		t.Fatalf("submissions = %d, want 1", len(received))
	}
	if received[0]["profile"] != "aggressive" {
		t.Fatalf("profile = %v", received[0]["profile"])
	}
	if got, _ := payload.GetPath(received[0], "meta.submissionDate"); got != "2024-05-01" {
		t.Fatalf("meta.submissionDate = %v", got)
	}
}

func TestLint_EmbeddedFormsAreClean(t *testing.T) {
	store, err := formdef.Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if violations := orchestrator.Lint(context.Background(), store); len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
}

func TestLint_ReportsProblems(t *testing.T) {
	store, err := formdef.LoadFS(fstest.MapFS{
		"broken.yaml":              {Data: []byte(brokenContractForm)},
		"relative.yaml":            {Data: []byte(relativeURLForm)},
		"contracts/.keep":          {Data: []byte("")},
		"contracts/unrelated.yaml": {Data: []byte("not: [a contract")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	violations := orchestrator.Lint(context.Background(), store)
	var got []string
	for _, v := range violations {
		got = append(got, v.Form+" "+v.Location)
	}
	want := []string{
		"broken contract",
		"relative submit > redirect",
		"relative submit > url",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(violations[0].String(), "broken: contract -> ") {
		t.Fatalf("string form = %q", violations[0].String())
	}
}

const brokenContractForm = `
id: broken
title: Broken
submit:
  url: https://example.com/api/submit
contract: contracts/missing.yaml
meta: [clientName]
steps:
  - id: details
    label: Details
    fields:
      - { name: clientName, label: Client Name, kind: text }
payload:
  - { key: additional, kind: fields, fields: [clientName] }
`

const relativeURLForm = `
id: relative
title: Relative
submit:
  url: /api/submit
  redirect: thank-you
meta: [clientName]
steps:
  - id: details
    label: Details
    fields:
      - { name: clientName, label: Client Name, kind: text }
payload:
  - { key: additional, kind: fields, fields: [clientName] }
`
