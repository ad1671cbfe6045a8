// Package aggregate recomputes every derived number on a form: group totals,
// payer column totals, grand totals, risk scores, and the formatted display
// strings the front ends show next to the inputs.
package aggregate

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
)

// ColumnTotal is the key under which a table's payer columns are summed.
const ColumnTotal = "total"

// Display ids that do not derive from a definition key.
const (
	DisplayTotalRiskScore = "total-risk-score"
	DisplayRiskProfile    = "risk-profile"
)

// Snapshot holds the result of one recompute. It is never updated in place;
// every input produces a new one.
type Snapshot struct {
	Groups     map[string]decimal.Decimal
	Columns    map[string]map[string]decimal.Decimal
	Grand      map[string]decimal.Decimal
	Scores     map[string]int
	TotalScore int
	Profile    string
	Displays   map[string]string
}

// Group returns the total for a group key, zero when unknown.
func (s *Snapshot) Group(key string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return s.Groups[key]
}

// Column returns a table column total, zero when unknown.
func (s *Snapshot) Column(section, column string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return s.Columns[section][column]
}

// Display returns the formatted text for a display element id.
func (s *Snapshot) Display(id string) string {
	if s == nil {
		return ""
	}
	return s.Displays[id]
}

// FormatCurrency renders an amount with two fixed decimals and no grouping.
func FormatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Recompute scans the registry and returns a fresh snapshot. Blank and
// non-numeric inputs contribute zero, as do fields hidden by their
// visibility rule. Derived cells are refreshed first so column totals
// include auto-filled row sums. The profile stays empty until every
// question is answered.
func Recompute(reg *fields.Registry) *Snapshot {
	form := reg.Form()
	snap := &Snapshot{
		Groups:   make(map[string]decimal.Decimal),
		Columns:  make(map[string]map[string]decimal.Decimal),
		Grand:    make(map[string]decimal.Decimal),
		Scores:   make(map[string]int),
		Displays: make(map[string]string),
	}

	fillRowSums(reg)

	for _, group := range form.GroupKeys() {
		total := decimal.Zero
		for _, field := range form.GroupFields(group) {
			if n, ok := visibleNumber(reg, field.Name); ok {
				total = total.Add(n)
			}
		}
		snap.Groups[group] = total
		snap.Displays[group+"-total"] = FormatCurrency(total)
	}
	for _, group := range form.Groups {
		snap.Displays["summary-"+group.Key] = FormatCurrency(snap.Groups[group.Key])
	}

	for _, grand := range form.GrandTotals {
		total := decimal.Zero
		for _, group := range grand.Groups {
			total = total.Add(snap.Groups[group])
		}
		snap.Grand[grand.Key] = total
		snap.Displays[grand.Key] = FormatCurrency(total)
	}

	for _, section := range form.TableSections() {
		table, _ := form.Table(section)
		columns := make(map[string]decimal.Decimal, len(table.Columns)+1)
		payers := decimal.Zero
		for _, column := range table.Columns {
			total := decimal.Zero
			for _, row := range table.Rows {
				if n, ok := visibleNumber(reg, model.CellName(row, column.Key)); ok {
					total = total.Add(n)
				}
			}
			columns[column.Key] = total
			if column.Derived == "" {
				payers = payers.Add(total)
			}
			snap.Displays[section+"-"+column.Key+"-total"] = FormatCurrency(total)
		}
		columns[ColumnTotal] = payers
		snap.Displays[section+"-total"] = FormatCurrency(payers)
		snap.Columns[section] = columns
	}

	answered := 0
	for _, question := range form.Questions() {
		score := 0
		if opt, ok := reg.Selected(question.Key); ok {
			score = opt.Score
			answered++
		}
		snap.Scores[question.Key] = score
		snap.TotalScore += score
		snap.Displays[question.ScoreDisplayID()] = strconv.Itoa(score)
	}
	if questions := len(form.Questions()); questions > 0 {
		snap.Displays[DisplayTotalRiskScore] = strconv.Itoa(snap.TotalScore)
		if answered == questions {
			snap.Profile = Profile(form.Profiles, snap.TotalScore)
		}
		snap.Displays[DisplayRiskProfile] = snap.Profile
	}

	return snap
}

// Profile returns the label of the band containing total, or "" when no band
// matches.
func Profile(bands []model.ScoreBand, total int) string {
	for _, band := range bands {
		if total >= band.Min && total <= band.Max {
			return band.Label
		}
	}
	return ""
}

// visibleNumber parses the value of name, reporting false when the field is
// hidden. Hidden values stay in the registry and count again once shown.
func visibleNumber(reg *fields.Registry, name string) (decimal.Decimal, bool) {
	if !reg.Visible(name) {
		return decimal.Zero, false
	}
	return reg.Number(name)
}

// fillRowSums writes the visible payer cells of a row into its blank derived
// cells. A zero sum clears the derived value so the cell renders blank.
func fillRowSums(reg *fields.Registry) {
	form := reg.Form()
	for _, section := range form.TableSections() {
		table, _ := form.Table(section)
		for _, column := range table.Columns {
			if column.Derived != model.DerivedRowSum {
				continue
			}
			for _, row := range table.Rows {
				cell := model.CellName(row, column.Key)
				if reg.Raw(cell) != "" {
					_ = reg.SetDerived(cell, "")
					continue
				}
				sum := decimal.Zero
				for _, payer := range table.Columns {
					if payer.Derived != "" {
						continue
					}
					name := model.CellName(row, payer.Key)
					if !reg.Visible(name) {
						continue
					}
					if n, ok := fields.ParseNumber(reg.Raw(name)); ok {
						sum = sum.Add(n)
					}
				}
				if sum.IsZero() {
					_ = reg.SetDerived(cell, "")
					continue
				}
				_ = reg.SetDerived(cell, sum.String())
			}
		}
	}
}
