package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func newState(t *testing.T, id string, values map[string]string) render.ViewState {
	t.Helper()
	store, err := formdef.Default()
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	form, ok := store.Form(id)
	if !ok {
		t.Fatalf("form %s not found", id)
	}
	reg := fields.New(form)
	if err := reg.SetAll(values); err != nil {
		t.Fatalf("set values: %v", err)
	}
	return render.ViewState{
		SessionID:  "s-1",
		Controller: wizard.NewController(reg),
		Registry:   reg,
		Snapshot:   aggregate.Recompute(reg),
	}
}

func TestBuildView_BudgetHousingStep(t *testing.T) {
	state := newState(t, "retirement-budget", map[string]string{"rent": "1500", "utilities": "200"})

	view := render.BuildView(state, render.RenderOptions{Action: "/forms/retirement-budget/sessions/s-1"})

	if view.Indicator != "Housing · Step 1 of 8" {
		t.Fatalf("indicator = %q", view.Indicator)
	}
	if view.BackVisible || !view.NextVisible || view.SubmitVisible {
		t.Fatalf("unexpected buttons back=%v next=%v submit=%v", view.BackVisible, view.NextVisible, view.SubmitVisible)
	}
	if !view.NextEnabled {
		t.Fatalf("expected next enabled with positive amounts")
	}
	if view.Warning != "" {
		t.Fatalf("unexpected warning %q", view.Warning)
	}
	if view.Control.Label != "Submit" {
		t.Fatalf("control label = %q", view.Control.Label)
	}

	want := []render.TotalView{{ID: "housing-total", Label: "Housing Total", Value: "1700.00"}}
	if diff := cmp.Diff(want, view.Step.Totals); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}
	if got := len(view.Step.Fields); got != 6 {
		t.Fatalf("expected 6 housing fields, got %d", got)
	}
	if view.Step.Fields[0].Name != "rent" || view.Step.Fields[0].Value != "1500" {
		t.Fatalf("unexpected first field %+v", view.Step.Fields[0])
	}
	if view.Displays["grand-total"] != "1700.00" {
		t.Fatalf("grand total display = %q", view.Displays["grand-total"])
	}
}

func TestBuildView_WarningAfterFailedAdvance(t *testing.T) {
	state := newState(t, "retirement-budget", nil)
	if state.Controller.Advance() {
		t.Fatalf("advance should fail on an empty housing step")
	}

	view := render.BuildView(state, render.RenderOptions{})
	if view.Warning != render.DefaultMessages[render.MsgWarnPositive] {
		t.Fatalf("warning = %q", view.Warning)
	}
	if view.NextEnabled {
		t.Fatalf("next should be disabled")
	}
}

func TestBuildView_SummaryLines(t *testing.T) {
	state := newState(t, "retirement-budget", map[string]string{"rent": "1000", "fuel": "150.5"})
	if err := state.Controller.ShowStep(6); err != nil {
		t.Fatalf("show summary: %v", err)
	}

	view := render.BuildView(state, render.RenderOptions{})

	var got []string
	for _, line := range view.Summary {
		got = append(got, line.ID+"="+line.Value)
	}
	want := []string{
		"summary-housing=1000.00",
		"summary-transport=150.50",
		"summary-living=0.00",
		"summary-health=0.00",
		"summary-lifestyle=0.00",
		"summary-debt=0.00",
		"grand-total=1150.50",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildView_RiskQuestionsAndConfirmation(t *testing.T) {
	state := newState(t, "risk-tolerance-assessment", map[string]string{"objective": "12"})

	view := render.BuildView(state, render.RenderOptions{})
	if len(view.Step.Questions) == 0 {
		t.Fatalf("expected questions on the first step")
	}
	q := view.Step.Questions[0]
	if q.Key != "objective" || q.Score.Value != "12" {
		t.Fatalf("unexpected question view %+v", q)
	}
	var selected []string
	for _, opt := range q.Options {
		if opt.Selected {
			selected = append(selected, opt.Value)
		}
	}
	if diff := cmp.Diff([]string{"12"}, selected); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	if err := state.Controller.ShowStep(state.Controller.Count() - 1); err != nil {
		t.Fatalf("show confirmation: %v", err)
	}
	view = render.BuildView(state, render.RenderOptions{})
	if !view.SubmitVisible || view.NextVisible {
		t.Fatalf("confirmation should show submit only")
	}
	found := map[string]string{}
	for _, line := range view.Summary {
		found[line.ID] = line.Value
	}
	if found[aggregate.DisplayTotalRiskScore] != "12" {
		t.Fatalf("total risk score = %q", found[aggregate.DisplayTotalRiskScore])
	}
	if found[aggregate.DisplayRiskProfile] != "" {
		t.Fatalf("risk profile = %q", found[aggregate.DisplayRiskProfile])
	}
}

func TestBuildView_SpouseColumnFollowsSpouseName(t *testing.T) {
	state := newState(t, "retirement-income-fact-finder", nil)
	if err := state.Controller.ShowStep(1); err != nil {
		t.Fatalf("show income: %v", err)
	}

	spouseVisible := func(view render.View) bool {
		for _, column := range view.Step.Tables[0].Columns {
			if column.Key == "spouse" {
				return column.Visible
			}
		}
		t.Fatalf("spouse column missing")
		return false
	}

	if spouseVisible(render.BuildView(state, render.RenderOptions{})) {
		t.Fatalf("spouse column should be hidden without a spouse name")
	}
	if err := state.Registry.Set("spouseName", "Pat"); err != nil {
		t.Fatalf("set spouse: %v", err)
	}
	view := render.BuildView(state, render.RenderOptions{})
	if !spouseVisible(view) {
		t.Fatalf("spouse column should be visible")
	}
	if got := len(view.Step.Tables[0].Rows[0].Cells); got != 3 {
		t.Fatalf("expected 3 income cells per row, got %d", got)
	}
}

func TestBuildView_TranslatedChrome(t *testing.T) {
	state := newState(t, "retirement-budget", nil)
	tr := render.MapTranslator{
		render.MsgNext:      "Siguiente",
		render.MsgIndicator: "Paso %d de %d",
	}

	view := render.BuildView(state, render.RenderOptions{Locale: "es", Translator: tr})
	if view.Labels.Next != "Siguiente" {
		t.Fatalf("next label = %q", view.Labels.Next)
	}
	if view.Labels.Back != "Back" {
		t.Fatalf("missing keys should fall back, got %q", view.Labels.Back)
	}
	if view.Indicator != "Housing · Paso 1 de 8" {
		t.Fatalf("indicator = %q", view.Indicator)
	}
}
