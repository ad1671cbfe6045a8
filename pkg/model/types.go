package model

// FieldKind is the simplified enum for wizard input kinds.
type FieldKind string

const (
	KindNumber   FieldKind = "number"
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindDate     FieldKind = "date"
	KindChoice   FieldKind = "choice"
	KindYesNo    FieldKind = "yesno"
)

// Numeric reports whether the kind contributes to totals.
func (k FieldKind) Numeric() bool {
	return k == KindNumber
}

// Payer columns used by row tables.
const (
	PayerClient = "client"
	PayerSpouse = "spouse"
	PayerJoint  = "joint"
)

// Derived column strategies.
const (
	// DerivedRowSum fills a blank cell with the sum of the row's payer cells.
	DerivedRowSum = "rowSum"
)

// Step validator names. An empty validator means ValidatorAlways.
const (
	ValidatorAnyPositive = "anyPositive"
	ValidatorAllSelected = "allSelected"
	ValidatorAlways      = "always"
)

// KnownValidator reports whether name is a validator the engine implements.
func KnownValidator(name string) bool {
	switch name {
	case "", ValidatorAnyPositive, ValidatorAllSelected, ValidatorAlways:
		return true
	default:
		return false
	}
}

// AutoToday marks date fields that default to the submission date.
const AutoToday = "today"

// Option describes a selectable answer. Scored options (risk questions) carry
// a numeric score plus the semantic label the score maps to.
type Option struct {
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Score int    `json:"score,omitempty" yaml:"score,omitempty"`
}

// Field models an individual named input.
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Group       string    `json:"group,omitempty" yaml:"group,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string    `json:"help,omitempty" yaml:"help,omitempty"`
	VisibleIf   string    `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
	Auto        string    `json:"auto,omitempty" yaml:"auto,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`

	// Populated during normalisation for table cells and questions.
	Section  string `json:"section,omitempty" yaml:"-"`
	Row      string `json:"row,omitempty" yaml:"-"`
	Column   string `json:"column,omitempty" yaml:"-"`
	Derived  string `json:"derived,omitempty" yaml:"-"`
	Question bool   `json:"question,omitempty" yaml:"-"`
	Step     int    `json:"step" yaml:"-"`
}

// Payer returns the payer a table cell belongs to, or "" for other fields.
func (f Field) Payer() string {
	if IsPayer(f.Column) {
		return f.Column
	}
	return ""
}

// Column is a table column; payer columns take part in the row total.
type Column struct {
	Key       string `json:"key" yaml:"key"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	Derived   string `json:"derived,omitempty" yaml:"derived,omitempty"`
	VisibleIf string `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
}

// Row is a table row. Prefix is the field-name stem ("401k") and Key the
// payload key ("k401"); Prefix defaults to Key.
type Row struct {
	Key    string `json:"key" yaml:"key"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Table lays out payer-split rows (income, assets). Each cell becomes a field
// named <prefix><Column> in group <section>-<row>.
type Table struct {
	Section string   `json:"section" yaml:"section"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// Question is a scored radio group.
type Question struct {
	Key     string   `json:"key" yaml:"key"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Options []Option `json:"options" yaml:"options"`

	// Display overrides the key in the score display id.
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// ScoreDisplayID returns the id of the element showing the question score.
func (q Question) ScoreDisplayID() string {
	if q.Display != "" {
		return "score-" + q.Display
	}
	return "score-" + q.Key
}

// Step is one section of the wizard, shown exclusively of the others.
type Step struct {
	ID          string     `json:"id" yaml:"id"`
	Label       string     `json:"label,omitempty" yaml:"label,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Summary     bool       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Validator   string     `json:"validator,omitempty" yaml:"validator,omitempty"`
	Fields      []Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Tables      []Table    `json:"tables,omitempty" yaml:"tables,omitempty"`
	Questions   []Question `json:"questions,omitempty" yaml:"questions,omitempty"`

	// FieldNames lists every field owned by the step after normalisation.
	FieldNames []string `json:"fieldNames,omitempty" yaml:"-"`
}

// Group is a named cluster of numeric fields whose values are summed.
type Group struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// GrandTotal sums several group totals into one display.
type GrandTotal struct {
	Key        string   `json:"key" yaml:"key"`
	Label      string   `json:"label,omitempty" yaml:"label,omitempty"`
	PayloadKey string   `json:"payloadKey,omitempty" yaml:"payloadKey,omitempty"`
	Groups     []string `json:"groups" yaml:"groups"`
}

// ScoreBand maps a total risk score range (inclusive) to a profile label.
type ScoreBand struct {
	Min   int    `json:"min" yaml:"min"`
	Max   int    `json:"max" yaml:"max"`
	Label string `json:"label" yaml:"label"`
}

// Payload section kinds.
const (
	SectionGroups    = "groups"
	SectionGrand     = "grand"
	SectionRows      = "rows"
	SectionFields    = "fields"
	SectionQuestions = "questions"
)

// PayloadSection declares one top-level key of the submitted payload.
type PayloadSection struct {
	Key    string   `json:"key" yaml:"key"`
	Kind   string   `json:"kind" yaml:"kind"`
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Table  string   `json:"table,omitempty" yaml:"table,omitempty"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Submit configures the remote endpoint.
type Submit struct {
	URL            string `json:"url" yaml:"url"`
	Redirect       string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
}

// Definition is the per-form configuration driving the wizard engine.
type Definition struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Submit      Submit           `json:"submit" yaml:"submit"`
	Contract    string           `json:"contract,omitempty" yaml:"contract,omitempty"`
	Meta        []string         `json:"meta" yaml:"meta"`
	Groups      []Group          `json:"groups,omitempty" yaml:"groups,omitempty"`
	GrandTotals []GrandTotal     `json:"grandTotals,omitempty" yaml:"grandTotals,omitempty"`
	Profiles    []ScoreBand      `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Steps       []Step           `json:"steps" yaml:"steps"`
	Payload     []PayloadSection `json:"payload" yaml:"payload"`

	// Source records the file the definition was loaded from.
	Source string `json:"-" yaml:"-"`
}
