// Package payload assembles the JSON document submitted for a form and
// optionally checks it against an OpenAPI request body contract.
package payload

import (
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
)

// Top-level keys present in every payload.
const (
	KeyFormID         = "formId"
	KeyMeta           = "meta"
	KeySubmissionDate = "submissionDate"
	KeyTotalRiskScore = "totalRiskScore"
	KeyProfile        = "profile"
	KeyTotals         = "totals"

	// KeyTotalLeaf names the computed total inside a group or row object.
	KeyTotalLeaf = "total"
)

// Build assembles the payload from current values and a snapshot. Numeric
// leaves default to 0 and text leaves to "", so the key set depends only on
// the definition. Hidden fields report their zero value. Build performs no
// validation.
func Build(reg *fields.Registry, snap *aggregate.Snapshot) map[string]any {
	form := reg.Form()
	if snap == nil {
		snap = aggregate.Recompute(reg)
	}

	out := map[string]any{KeyFormID: form.ID}

	meta := make(map[string]any, len(form.Meta)+1)
	for _, name := range form.Meta {
		meta[name] = reg.Value(name)
	}
	if _, ok := meta[KeySubmissionDate]; !ok {
		meta[KeySubmissionDate] = reg.Value(KeySubmissionDate)
	}
	out[KeyMeta] = meta

	for _, section := range form.Payload {
		switch section.Kind {
		case model.SectionGroups:
			buildGroups(out, form, reg, snap, section)
		case model.SectionGrand:
			for _, grand := range form.GrandTotals {
				key := grand.PayloadKey
				if key == "" {
					key = grand.Key
				}
				setPath(out, section.Key+"."+key, number(snap.Grand[grand.Key]))
			}
		case model.SectionRows:
			buildRows(out, form, reg, snap, section)
		case model.SectionFields:
			for _, name := range section.Fields {
				setPath(out, section.Key+"."+name, leaf(form, reg, name))
			}
		case model.SectionQuestions:
			buildQuestions(out, form, reg, snap, section)
		}
	}

	return out
}

func buildGroups(out map[string]any, form *model.Form, reg *fields.Registry, snap *aggregate.Snapshot, section model.PayloadSection) {
	groups := section.Groups
	if len(groups) == 0 {
		for _, group := range form.Groups {
			groups = append(groups, group.Key)
		}
	}
	for _, group := range groups {
		base := section.Key + "." + group
		for _, field := range form.GroupFields(group) {
			setPath(out, base+"."+field.Name, numberOf(reg, field.Name))
		}
		setPath(out, base+"."+KeyTotalLeaf, number(snap.Group(group)))
	}
}

func buildRows(out map[string]any, form *model.Form, reg *fields.Registry, snap *aggregate.Snapshot, section model.PayloadSection) {
	table, ok := form.Table(section.Table)
	if !ok {
		return
	}
	for _, row := range table.Rows {
		base := section.Key + "." + row.Key
		for _, column := range table.Columns {
			setPath(out, base+"."+column.Key, numberOf(reg, model.CellName(row, column.Key)))
		}
		setPath(out, base+"."+KeyTotalLeaf, number(snap.Group(table.Section+"-"+row.Key)))
	}
	for _, column := range table.Columns {
		setPath(out, section.Key+"."+KeyTotals+"."+column.Key, number(snap.Column(table.Section, column.Key)))
	}
	setPath(out, section.Key+"."+KeyTotals+"."+KeyTotalLeaf, number(snap.Column(table.Section, aggregate.ColumnTotal)))
}

func buildQuestions(out map[string]any, form *model.Form, reg *fields.Registry, snap *aggregate.Snapshot, section model.PayloadSection) {
	for _, question := range form.Questions() {
		selected := ""
		if opt, ok := reg.Selected(question.Key); ok {
			selected = opt.Label
			if selected == "" {
				selected = opt.Value
			}
		}
		setPath(out, section.Key+"."+question.Key, map[string]any{
			"selected": selected,
			"score":    snap.Scores[question.Key],
		})
	}
	out[KeyTotalRiskScore] = snap.TotalScore
	out[KeyProfile] = snap.Profile
}

func leaf(form *model.Form, reg *fields.Registry, name string) any {
	field, _ := form.Field(name)
	if field.Kind.Numeric() {
		return numberOf(reg, name)
	}
	if !reg.Visible(name) {
		return ""
	}
	return reg.Value(name)
}

func numberOf(reg *fields.Registry, name string) float64 {
	if !reg.Visible(name) {
		return 0
	}
	n, _ := reg.Number(name)
	return number(n)
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
