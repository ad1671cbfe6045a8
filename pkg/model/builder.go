package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-formwizard/pkg/visibility"
)

// Form is a normalised Definition: table cells and questions are expanded
// into concrete fields and every lookup the engine needs is indexed once.
type Form struct {
	Definition

	Fields []Field

	index     map[string]int
	groups    map[string]struct{}
	tables    map[string]Table
	questions []Question
	rules     map[string]*visibility.Rule
}

// Compile validates a definition and expands it into a Form.
func Compile(def Definition) (*Form, error) {
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return nil, fmt.Errorf("model: definition %s has an empty id", sourceHint(def))
	}
	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("model: form %q declares no steps", id)
	}

	form := &Form{
		Definition: def,
		index:      make(map[string]int),
		groups:     make(map[string]struct{}),
		tables:     make(map[string]Table),
		rules:      make(map[string]*visibility.Rule),
	}
	form.ID = id

	for _, group := range def.Groups {
		key := strings.TrimSpace(group.Key)
		if key == "" {
			return nil, fmt.Errorf("model: form %q declares a group with an empty key", id)
		}
		form.groups[key] = struct{}{}
	}

	steps := make([]Step, len(def.Steps))
	seenSteps := make(map[string]struct{}, len(def.Steps))
	for i, step := range def.Steps {
		step.ID = strings.TrimSpace(step.ID)
		if step.ID == "" {
			step.ID = "step-" + strconv.Itoa(i+1)
		}
		if _, dup := seenSteps[step.ID]; dup {
			return nil, fmt.Errorf("model: form %q declares step %q twice", id, step.ID)
		}
		seenSteps[step.ID] = struct{}{}
		if !KnownValidator(step.Validator) {
			return nil, fmt.Errorf("model: form %q step %q uses unknown validator %q", id, step.ID, step.Validator)
		}
		if step.Validator == "" {
			step.Validator = ValidatorAlways
		}

		names, err := form.expandStep(i, step)
		if err != nil {
			return nil, err
		}
		step.FieldNames = names
		steps[i] = step
	}
	form.Steps = steps

	for _, name := range def.Meta {
		if _, ok := form.index[name]; !ok {
			return nil, fmt.Errorf("model: form %q meta field %q is not declared by any step", id, name)
		}
	}

	if err := form.compileRules(); err != nil {
		return nil, err
	}

	for _, grand := range def.GrandTotals {
		if strings.TrimSpace(grand.Key) == "" {
			return nil, fmt.Errorf("model: form %q declares a grand total with an empty key", id)
		}
		for _, group := range grand.Groups {
			if !form.HasGroup(group) {
				return nil, fmt.Errorf("model: form %q grand total %q references unknown group %q", id, grand.Key, group)
			}
		}
	}

	for _, band := range def.Profiles {
		if band.Min > band.Max || strings.TrimSpace(band.Label) == "" {
			return nil, fmt.Errorf("model: form %q declares an invalid profile band %d-%d %q", id, band.Min, band.Max, band.Label)
		}
	}

	if err := form.checkPayload(); err != nil {
		return nil, err
	}

	return form, nil
}

func (f *Form) expandStep(stepIndex int, step Step) ([]string, error) {
	var names []string

	for _, field := range step.Fields {
		field.Step = stepIndex
		if err := f.addField(field); err != nil {
			return nil, err
		}
		names = append(names, field.Name)
	}

	for _, table := range step.Tables {
		section := strings.TrimSpace(table.Section)
		if section == "" {
			return nil, fmt.Errorf("model: form %q step %q declares a table without a section", f.ID, step.ID)
		}
		if _, dup := f.tables[section]; dup {
			return nil, fmt.Errorf("model: form %q declares table %q twice", f.ID, section)
		}
		table.Section = section
		for i := range table.Rows {
			if strings.TrimSpace(table.Rows[i].Prefix) == "" {
				table.Rows[i].Prefix = table.Rows[i].Key
			}
		}
		f.tables[section] = table

		for _, row := range table.Rows {
			group := section + "-" + row.Key
			f.groups[group] = struct{}{}
			for _, column := range table.Columns {
				cell := Field{
					Name:      row.Prefix + upperFirst(column.Key),
					Label:     strings.TrimSpace(row.Label + " " + column.Label),
					Kind:      KindNumber,
					Section:   section,
					Row:       row.Key,
					Column:    column.Key,
					Derived:   column.Derived,
					VisibleIf: column.VisibleIf,
					Step:      stepIndex,
				}
				if column.Derived == "" {
					cell.Group = group
				}
				if err := f.addField(cell); err != nil {
					return nil, err
				}
				names = append(names, cell.Name)
			}
		}
	}

	for _, question := range step.Questions {
		if len(question.Options) == 0 {
			return nil, fmt.Errorf("model: form %q question %q has no options", f.ID, question.Key)
		}
		options := make([]Option, len(question.Options))
		for i, opt := range question.Options {
			if opt.Value == "" {
				opt.Value = strconv.Itoa(opt.Score)
			}
			options[i] = opt
		}
		question.Options = options
		f.questions = append(f.questions, question)

		field := Field{
			Name:     question.Key,
			Label:    question.Label,
			Kind:     KindChoice,
			Options:  options,
			Question: true,
			Step:     stepIndex,
		}
		if err := f.addField(field); err != nil {
			return nil, err
		}
		names = append(names, field.Name)
	}

	return names, nil
}

func (f *Form) addField(field Field) error {
	field.Name = strings.TrimSpace(field.Name)
	if field.Name == "" {
		return fmt.Errorf("model: form %q declares a field with an empty name", f.ID)
	}
	if _, dup := f.index[field.Name]; dup {
		return fmt.Errorf("model: form %q declares field %q twice", f.ID, field.Name)
	}
	if field.Kind == "" {
		field.Kind = KindText
	}
	if field.Kind == KindYesNo && len(field.Options) == 0 {
		field.Options = []Option{{Value: "yes", Text: "Yes"}, {Value: "no", Text: "No"}}
	}
	if field.Group != "" && !f.HasGroup(field.Group) {
		return fmt.Errorf("model: form %q field %q references unknown group %q", f.ID, field.Name, field.Group)
	}
	if field.Group != "" && !field.Kind.Numeric() {
		return fmt.Errorf("model: form %q field %q is grouped but not numeric", f.ID, field.Name)
	}
	f.index[field.Name] = len(f.Fields)
	f.Fields = append(f.Fields, field)
	return nil
}

func (f *Form) compileRules() error {
	for _, field := range f.Fields {
		if strings.TrimSpace(field.VisibleIf) == "" {
			continue
		}
		rule, err := visibility.Compile(field.VisibleIf)
		if err != nil {
			return fmt.Errorf("model: form %q field %q visibleIf: %w", f.ID, field.Name, err)
		}
		for _, name := range rule.Identifiers() {
			if _, ok := f.index[name]; !ok {
				return fmt.Errorf("model: form %q field %q visibleIf references unknown field %q", f.ID, field.Name, name)
			}
		}
		f.rules[field.Name] = rule
	}
	return nil
}

func (f *Form) checkPayload() error {
	if len(f.Payload) == 0 {
		return fmt.Errorf("model: form %q declares no payload sections", f.ID)
	}
	seen := make(map[string]struct{}, len(f.Payload))
	for _, section := range f.Payload {
		key := strings.TrimSpace(section.Key)
		if key == "" || key == "formId" || key == "meta" {
			return fmt.Errorf("model: form %q payload section key %q is reserved or empty", f.ID, section.Key)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("model: form %q payload section %q declared twice", f.ID, key)
		}
		seen[key] = struct{}{}

		switch section.Kind {
		case SectionGroups:
			for _, group := range section.Groups {
				if !f.HasGroup(group) {
					return fmt.Errorf("model: form %q payload section %q references unknown group %q", f.ID, key, group)
				}
			}
		case SectionGrand:
			if len(f.GrandTotals) == 0 {
				return fmt.Errorf("model: form %q payload section %q needs grand totals", f.ID, key)
			}
		case SectionRows:
			if _, ok := f.tables[section.Table]; !ok {
				return fmt.Errorf("model: form %q payload section %q references unknown table %q", f.ID, key, section.Table)
			}
		case SectionFields:
			for _, name := range section.Fields {
				if _, ok := f.index[name]; !ok {
					return fmt.Errorf("model: form %q payload section %q references unknown field %q", f.ID, key, name)
				}
			}
		case SectionQuestions:
			if len(f.questions) == 0 {
				return fmt.Errorf("model: form %q payload section %q needs questions", f.ID, key)
			}
		default:
			return fmt.Errorf("model: form %q payload section %q has unknown kind %q", f.ID, key, section.Kind)
		}
	}
	return nil
}

// Field returns the field registered under name.
func (f *Form) Field(name string) (Field, bool) {
	if f == nil {
		return Field{}, false
	}
	idx, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.Fields[idx], true
}

// Rule returns the compiled visibility rule for a field, nil when the field
// is always visible.
func (f *Form) Rule(name string) *visibility.Rule {
	if f == nil {
		return nil
	}
	return f.rules[name]
}

// HasGroup reports whether a group key is declared or derived from a table.
func (f *Form) HasGroup(key string) bool {
	if f == nil {
		return false
	}
	_, ok := f.groups[key]
	return ok
}

// GroupKeys returns declared groups first, then table row groups in table order.
func (f *Form) GroupKeys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, 0, len(f.groups))
	seen := make(map[string]struct{}, len(f.groups))
	for _, group := range f.Groups {
		keys = append(keys, group.Key)
		seen[group.Key] = struct{}{}
	}
	for _, field := range f.Fields {
		if field.Group == "" {
			continue
		}
		if _, ok := seen[field.Group]; ok {
			continue
		}
		seen[field.Group] = struct{}{}
		keys = append(keys, field.Group)
	}
	return keys
}

// GroupFields returns the numeric fields belonging to group in declaration order.
func (f *Form) GroupFields(group string) []Field {
	if f == nil {
		return nil
	}
	var out []Field
	for _, field := range f.Fields {
		if field.Group == group {
			out = append(out, field)
		}
	}
	return out
}

// Table returns the table declared for section.
func (f *Form) Table(section string) (Table, bool) {
	if f == nil {
		return Table{}, false
	}
	table, ok := f.tables[section]
	return table, ok
}

// TableSections lists table sections in step order.
func (f *Form) TableSections() []string {
	if f == nil {
		return nil
	}
	var out []string
	for _, step := range f.Steps {
		for _, table := range step.Tables {
			out = append(out, strings.TrimSpace(table.Section))
		}
	}
	return out
}

// Questions returns the scored questions in step order.
func (f *Form) Questions() []Question {
	if f == nil {
		return nil
	}
	return f.questions
}

// StepFields returns the fields owned by the step at index.
func (f *Form) StepFields(index int) []Field {
	if f == nil || index < 0 || index >= len(f.Steps) {
		return nil
	}
	names := f.Steps[index].FieldNames
	out := make([]Field, 0, len(names))
	for _, name := range names {
		if field, ok := f.Field(name); ok {
			out = append(out, field)
		}
	}
	return out
}

// CellName returns the field name for a table cell.
func CellName(row Row, column string) string {
	prefix := row.Prefix
	if prefix == "" {
		prefix = row.Key
	}
	return prefix + upperFirst(column)
}

// IsPayer reports whether a column key is one of the payer columns.
func IsPayer(column string) bool {
	switch column {
	case PayerClient, PayerSpouse, PayerJoint:
		return true
	default:
		return false
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func sourceHint(def Definition) string {
	if def.Source == "" {
		return "(inline)"
	}
	return def.Source
}
