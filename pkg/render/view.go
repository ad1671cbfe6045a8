package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// ViewState is the live state of one wizard instance at render time.
type ViewState struct {
	SessionID    string
	Controller   *wizard.Controller
	Registry     *fields.Registry
	Snapshot     *aggregate.Snapshot
	Control      ControlView
	Notification string
	FieldErrors  map[string][]string
	FormErrors   []string
	RedirectURL  string
	Done         bool
}

// ControlView is the submit button state.
type ControlView struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Labels carries the translated chrome strings.
type Labels struct {
	Back   string `json:"back"`
	Next   string `json:"next"`
	Submit string `json:"submit"`
	Total  string `json:"total"`
}

// OptionView is one selectable answer.
type OptionView struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// FieldView is one input as the front ends show it.
type FieldView struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Kind        string       `json:"kind"`
	Value       string       `json:"value"`
	Placeholder string       `json:"placeholder,omitempty"`
	Help        string       `json:"help,omitempty"`
	Visible     bool         `json:"visible"`
	Derived     bool         `json:"derived,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
}

// TotalView is a formatted display element.
type TotalView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ColumnView is a table header plus its running total.
type ColumnView struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Visible bool      `json:"visible"`
	Total   TotalView `json:"total"`
}

// RowView is one table row. Cells follow the column order.
type RowView struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Cells []FieldView `json:"cells"`
}

// TableView is a payer-split table.
type TableView struct {
	Section string       `json:"section"`
	Label   string       `json:"label"`
	Columns []ColumnView `json:"columns"`
	Rows    []RowView    `json:"rows"`
	Total   TotalView    `json:"total"`
}

// QuestionView is a scored radio group.
type QuestionView struct {
	Key     string       `json:"key"`
	Label   string       `json:"label"`
	Options []OptionView `json:"options"`
	Score   TotalView    `json:"score"`
	Errors  []string     `json:"errors,omitempty"`
}

// StepView is the active step.
type StepView struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Summary     bool           `json:"summary,omitempty"`
	Fields      []FieldView    `json:"fields,omitempty"`
	Tables      []TableView    `json:"tables,omitempty"`
	Questions   []QuestionView `json:"questions,omitempty"`
	Totals      []TotalView    `json:"totals,omitempty"`
}

// StepLink lists a step in the progress trail.
type StepLink struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
	Done   bool   `json:"done"`
}

// View is everything a renderer needs to draw the active step. It is plain
// data so template engines and JSON clients can consume it directly.
type View struct {
	FormID        string            `json:"formId"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	SessionID     string            `json:"sessionId,omitempty"`
	Locale        string            `json:"locale,omitempty"`
	Action        string            `json:"action,omitempty"`
	Theme         string            `json:"theme,omitempty"`
	Variant       string            `json:"variant,omitempty"`
	StepIndex     int               `json:"stepIndex"`
	StepCount     int               `json:"stepCount"`
	Indicator     string            `json:"indicator"`
	Step          StepView          `json:"step"`
	Steps         []StepLink        `json:"steps"`
	BackVisible   bool              `json:"backVisible"`
	NextVisible   bool              `json:"nextVisible"`
	SubmitVisible bool              `json:"submitVisible"`
	NextEnabled   bool              `json:"nextEnabled"`
	Warning       string            `json:"warning,omitempty"`
	Control       ControlView       `json:"control"`
	Notification  string            `json:"notification,omitempty"`
	FormErrors    []string          `json:"formErrors,omitempty"`
	Summary       []TotalView       `json:"summary,omitempty"`
	Displays      map[string]string `json:"displays"`
	Hidden        []HiddenField     `json:"hidden,omitempty"`
	Labels        Labels            `json:"labels"`
	RedirectURL   string            `json:"redirectUrl,omitempty"`
	Done          bool              `json:"done,omitempty"`
}

// BuildView projects the wizard state into a View.
func BuildView(state ViewState, opts RenderOptions) View {
	ctl := state.Controller
	reg := state.Registry
	form := reg.Form()
	snap := state.Snapshot
	if snap == nil {
		snap = aggregate.Recompute(reg)
	}
	tr := func(key string, args ...any) string {
		return Text(opts.Translator, opts.Locale, key, args...)
	}

	step := ctl.Step()
	view := View{
		FormID:        form.ID,
		Title:         form.Title,
		Description:   form.Description,
		SessionID:     state.SessionID,
		Locale:        opts.Locale,
		Action:        opts.Action,
		Theme:         opts.Theme,
		Variant:       opts.Variant,
		StepIndex:     ctl.Index(),
		StepCount:     ctl.Count(),
		Indicator:     indicator(step.Label, ctl.Index(), ctl.Count(), tr),
		BackVisible:   ctl.BackVisible(),
		NextVisible:   ctl.NextVisible(),
		SubmitVisible: ctl.IsLast(),
		NextEnabled:   ctl.NextEnabled(),
		Control:       state.Control,
		Notification:  state.Notification,
		FormErrors:    state.FormErrors,
		Displays:      copyDisplays(snap.Displays),
		Hidden:        SortedHiddenFields(opts.Hidden),
		RedirectURL:   state.RedirectURL,
		Done:          state.Done,
		Labels: Labels{
			Back:   tr(MsgBack),
			Next:   tr(MsgNext),
			Submit: tr(MsgSubmit),
			Total:  tr(MsgTotal),
		},
	}
	if view.Control.Label == "" {
		view.Control.Label = view.Labels.Submit
	}
	if ctl.WarningVisible() {
		view.Warning = warningText(step.Validator, tr)
	}

	for i, s := range form.Steps {
		view.Steps = append(view.Steps, StepLink{
			ID:     s.ID,
			Label:  s.Label,
			Active: i == ctl.Index(),
			Done:   i < ctl.Index(),
		})
	}

	view.Step = buildStep(form, reg, snap, ctl.Index(), state.FieldErrors, tr)
	if step.Summary {
		view.Summary = summaryLines(form, snap, tr)
	}
	return view
}

func indicator(label string, index, count int, tr func(string, ...any) string) string {
	text := tr(MsgIndicator, index+1, count)
	if label != "" {
		return label + " · " + text
	}
	return text
}

func warningText(validator string, tr func(string, ...any) string) string {
	switch validator {
	case model.ValidatorAnyPositive:
		return tr(MsgWarnPositive)
	case model.ValidatorAllSelected:
		return tr(MsgWarnSelected)
	default:
		return tr(MsgWarnGeneric)
	}
}

func buildStep(form *model.Form, reg *fields.Registry, snap *aggregate.Snapshot, index int, errs map[string][]string, tr func(string, ...any) string) StepView {
	step := form.Steps[index]
	out := StepView{
		ID:          step.ID,
		Label:       step.Label,
		Description: step.Description,
		Summary:     step.Summary,
	}

	var groups []string
	seenGroup := make(map[string]struct{})
	for _, field := range form.StepFields(index) {
		if field.Section != "" || field.Question {
			continue
		}
		out.Fields = append(out.Fields, fieldView(reg, field, errs[field.Name]))
		if field.Group == "" {
			continue
		}
		if _, ok := seenGroup[field.Group]; !ok {
			seenGroup[field.Group] = struct{}{}
			groups = append(groups, field.Group)
		}
	}
	for _, group := range groups {
		id := group + "-total"
		out.Totals = append(out.Totals, TotalView{ID: id, Label: groupLabel(form, group) + " " + tr(MsgTotal), Value: snap.Display(id)})
	}

	for _, table := range step.Tables {
		out.Tables = append(out.Tables, tableView(form, reg, snap, table, errs, tr))
	}

	for _, question := range step.Questions {
		field, _ := form.Field(question.Key)
		fv := fieldView(reg, field, errs[question.Key])
		id := question.ScoreDisplayID()
		out.Questions = append(out.Questions, QuestionView{
			Key:     question.Key,
			Label:   question.Label,
			Options: fv.Options,
			Score:   TotalView{ID: id, Label: question.Label, Value: snap.Display(id)},
			Errors:  fv.Errors,
		})
	}
	return out
}

func tableView(form *model.Form, reg *fields.Registry, snap *aggregate.Snapshot, table model.Table, errs map[string][]string, tr func(string, ...any) string) TableView {
	section := strings.TrimSpace(table.Section)
	out := TableView{Section: section, Label: table.Label}

	visible := make([]bool, len(table.Columns))
	for i, column := range table.Columns {
		visible[i] = columnVisible(reg, table, column)
		id := section + "-" + column.Key + "-total"
		out.Columns = append(out.Columns, ColumnView{
			Key:     column.Key,
			Label:   column.Label,
			Visible: visible[i],
			Total:   TotalView{ID: id, Label: column.Label, Value: snap.Display(id)},
		})
	}
	for _, row := range table.Rows {
		rv := RowView{Key: row.Key, Label: row.Label}
		for i, column := range table.Columns {
			name := model.CellName(row, column.Key)
			field, ok := form.Field(name)
			if !ok {
				continue
			}
			cell := fieldView(reg, field, errs[name])
			cell.Visible = visible[i]
			rv.Cells = append(rv.Cells, cell)
		}
		out.Rows = append(out.Rows, rv)
	}
	id := section + "-total"
	out.Total = TotalView{ID: id, Label: table.Label + " " + tr(MsgTotal), Value: snap.Display(id)}
	return out
}

// columnVisible evaluates the rule of the column's first cell; every cell of
// a column shares the column's visibleIf.
func columnVisible(reg *fields.Registry, table model.Table, column model.Column) bool {
	if len(table.Rows) == 0 {
		return true
	}
	return reg.Visible(model.CellName(table.Rows[0], column.Key))
}

func fieldView(reg *fields.Registry, field model.Field, errs []string) FieldView {
	value := reg.Value(field.Name)
	fv := FieldView{
		Name:        field.Name,
		Label:       field.Label,
		Kind:        string(field.Kind),
		Value:       value,
		Placeholder: field.Placeholder,
		Help:        field.Help,
		Visible:     reg.Visible(field.Name),
		Derived:     field.Derived != "" && reg.Raw(field.Name) == "",
		Errors:      errs,
	}
	for _, opt := range field.Options {
		text := opt.Text
		if text == "" {
			text = opt.Label
		}
		fv.Options = append(fv.Options, OptionView{
			Value:    opt.Value,
			Text:     text,
			Selected: value != "" && opt.Value == value,
		})
	}
	return fv
}

func summaryLines(form *model.Form, snap *aggregate.Snapshot, tr func(string, ...any) string) []TotalView {
	var out []TotalView
	for _, group := range form.Groups {
		id := "summary-" + group.Key
		out = append(out, TotalView{ID: id, Label: group.Label, Value: snap.Display(id)})
	}
	for _, grand := range form.GrandTotals {
		out = append(out, TotalView{ID: grand.Key, Label: grand.Label, Value: snap.Display(grand.Key)})
	}
	for _, question := range form.Questions() {
		id := question.ScoreDisplayID()
		out = append(out, TotalView{ID: id, Label: question.Label, Value: snap.Display(id)})
	}
	if len(form.Questions()) > 0 {
		out = append(out,
			TotalView{ID: aggregate.DisplayTotalRiskScore, Label: tr(MsgRiskScore), Value: snap.Display(aggregate.DisplayTotalRiskScore)},
			TotalView{ID: aggregate.DisplayRiskProfile, Label: tr(MsgRiskProfile), Value: snap.Display(aggregate.DisplayRiskProfile)},
		)
	}
	return out
}

func groupLabel(form *model.Form, key string) string {
	for _, group := range form.Groups {
		if group.Key == key {
			return group.Label
		}
	}
	return key
}

func copyDisplays(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

// DisplayIDs returns the display ids in a stable order.
func (v View) DisplayIDs() []string {
	ids := make([]string, 0, len(v.Displays))
	for id := range v.Displays {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
