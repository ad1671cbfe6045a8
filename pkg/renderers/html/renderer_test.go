package html_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func buildView(t *testing.T, id string, values map[string]string, step int, opts render.RenderOptions) render.View {
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
	ctl := wizard.NewController(reg)
	if err := ctl.ShowStep(step); err != nil {
		t.Fatalf("show step: %v", err)
	}
	return render.BuildView(render.ViewState{
		SessionID:  "abc",
		Controller: ctl,
		Registry:   reg,
		Snapshot:   aggregate.Recompute(reg),
	}, opts)
}

func newRenderer(t *testing.T) *html.Renderer {
	t.Helper()
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderer_BudgetHousingStep(t *testing.T) {
	view := buildView(t, "retirement-budget", map[string]string{"rent": "1500", "utilities": "200"}, 0, render.RenderOptions{
		Action: "/forms/retirement-budget/sessions/abc",
		Hidden: render.MergeHiddenFields(nil, render.StepField(0)),
	})

	out, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		`<p class="fw-indicator" id="step-indicator">Housing · Step 1 of 8</p>`,
		`<output id="housing-total" data-display="housing-total">1700.00</output>`,
		`name="rent" value="1500"`,
		`<input type="hidden" name="step" value="0">`,
		`action="/forms/retirement-budget/sessions/abc"`,
		`<strong>monthly</strong>`,
		`value="update"`,
		`Update totals`,
		`href="/assets/wizard.css"`,
		`src="/assets/wizard.js"`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q\n%s", want, page)
		}
	}
	if strings.Contains(page, `value="back"`) {
		t.Fatalf("back button should be hidden on the first step")
	}
	if strings.Contains(page, `value="submit"`) {
		t.Fatalf("submit button should only render on the last step")
	}
}

func TestRenderer_WarningAndLastStep(t *testing.T) {
	view := buildView(t, "retirement-budget", nil, 7, render.RenderOptions{})
	view.Warning = "Please complete this step to continue."
	view.Control = render.ControlView{Label: "Submitting...", Disabled: true}

	out, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		`id="validation-warning">Please complete this step to continue.</p>`,
		`id="submit-button" disabled>Submitting...</button>`,
		`value="back"`,
		`type="date" id="fw-submissionDate" name="submissionDate"`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q\n%s", want, page)
		}
	}
	if strings.Contains(page, `value="next"`) {
		t.Fatalf("next button should be hidden on the last step")
	}
}

func TestRenderer_RiskQuestions(t *testing.T) {
	view := buildView(t, "risk-tolerance-assessment", map[string]string{"objective": "accumulation"}, 0, render.RenderOptions{})

	out, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		`<input type="radio" name="objective" value="12" checked>`,
		`<input type="radio" name="objective" value="3">`,
		`data-display="score-objective" hidden>12</output>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestRenderer_DerivedCellRendersAsPlaceholder(t *testing.T) {
	view := buildView(t, "retirement-income-fact-finder", map[string]string{
		"savingsClient": "100",
		"savingsJoint":  "50",
	}, 2, render.RenderOptions{})

	out, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	want := `name="savingsCurrentValue" aria-label="Savings Current Value" value="" placeholder="150" data-derived="true"`
	if !strings.Contains(page, want) {
		t.Fatalf("page missing %q", want)
	}
	if !strings.Contains(page, `data-display="assets-currentValue-total">150.00</output>`) {
		t.Fatalf("current value column total missing")
	}
	if !strings.Contains(page, `<td hidden><input type="number" step="0.01" min="0" inputmode="decimal" id="fw-savingsSpouse"`) {
		t.Fatalf("spouse cells should be hidden without a spouse name")
	}
}

func TestRenderer_DarkVariant(t *testing.T) {
	view := buildView(t, "retirement-budget", nil, 0, render.RenderOptions{Theme: html.DefaultThemeName, Variant: "dark"})

	out, err := newRenderer(t).Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, "fw-variant-dark") {
		t.Fatalf("variant class missing")
	}
	if !strings.Contains(page, "--surface: #111827;") {
		t.Fatalf("variant tokens missing from css vars")
	}
}

func TestRenderer_Index(t *testing.T) {
	out, err := newRenderer(t).RenderIndex(context.Background(), "Forms", []html.FormLink{
		{ID: "retirement-budget", Title: "Retirement Budget", Start: "/forms/retirement-budget/sessions"},
	})
	if err != nil {
		t.Fatalf("render index: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, `<form method="post" action="/forms/retirement-budget/sessions">`) {
		t.Fatalf("index missing start form\n%s", page)
	}
	if !strings.Contains(page, "<title>Forms</title>") {
		t.Fatalf("index missing title")
	}
}

func TestManifestSelector(t *testing.T) {
	selector, err := html.NewManifestSelector(html.DefaultManifest())
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	if diff := cmp.Diff([]string{html.DefaultThemeName}, selector.Themes()); diff != "" {
		t.Fatalf("themes mismatch (-want +got):\n%s", diff)
	}

	sel, err := selector.Select("", "missing")
	if err != nil {
		t.Fatalf("select default: %v", err)
	}
	if sel.Theme != html.DefaultThemeName || sel.Variant != "" {
		t.Fatalf("unexpected selection %s/%s", sel.Theme, sel.Variant)
	}
	cfg := html.RendererConfig(sel)
	if got := cfg.AssetURL(html.AssetStylesheet); got != "/assets/wizard.css" {
		t.Fatalf("stylesheet url = %q", got)
	}
	if cfg.CSSVars["--brand"] != "#1f4e79" {
		t.Fatalf("brand css var = %q", cfg.CSSVars["--brand"])
	}

	if _, err := selector.Select("unknown", ""); err == nil {
		t.Fatalf("expected unknown theme to fail")
	}
}

func TestMarkdown(t *testing.T) {
	got := html.Markdown("Enter your **monthly** costs.<script>alert(1)</script>")
	if !strings.Contains(got, "<strong>monthly</strong>") {
		t.Fatalf("markdown not rendered: %q", got)
	}
	if strings.Contains(got, "<script") {
		t.Fatalf("script not sanitised: %q", got)
	}
	if html.Markdown("   ") != "" {
		t.Fatalf("blank markdown should render empty")
	}
}

func TestAssetsFS(t *testing.T) {
	for _, name := range []string{html.StylesheetName, html.ScriptName} {
		data, err := fs.ReadFile(html.AssetsFS(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}
