// Package report renders a completed form as a printable PDF summary: the
// client details, every total the wizard shows, and the entered amounts.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/render"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	labelWidth   = contentWidth * 0.65
	amountWidth  = contentWidth - labelWidth
)

// Option configures a report.
type Option func(*config)

type config struct {
	generated  time.Time
	compress   bool
	translator render.Translator
	locale     string
}

// WithGeneratedAt fixes the generation timestamp printed on the report.
func WithGeneratedAt(t time.Time) Option {
	return func(c *config) {
		c.generated = t
	}
}

// WithCompression toggles page stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(c *config) {
		c.compress = on
	}
}

// WithTranslator translates the summary labels.
func WithTranslator(t render.Translator, locale string) Option {
	return func(c *config) {
		c.translator = t
		c.locale = locale
	}
}

type builder struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	cfg  config
	form *model.Form
	reg  *fields.Registry
	snap *aggregate.Snapshot
}

// Generate renders the registry's values and the snapshot's totals as PDF.
func Generate(reg *fields.Registry, snap *aggregate.Snapshot, opts ...Option) ([]byte, error) {
	cfg := config{generated: time.Now(), compress: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if snap == nil {
		snap = aggregate.Recompute(reg)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCompression(cfg.compress)
	pdf.SetCreationDate(cfg.generated)
	pdf.SetModificationDate(cfg.generated)

	b := &builder{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		cfg:  cfg,
		form: reg.Form(),
		reg:  reg,
		snap: snap,
	}
	pdf.SetTitle(b.form.Title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s - %d", b.tr(b.form.Title), pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	b.addHeader()
	b.addDetails()
	b.addGroups()
	b.addTables()
	b.addQuestions()

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *builder) text(key string) string {
	return render.Text(b.cfg.translator, b.cfg.locale, key)
}

func (b *builder) addHeader() {
	b.pdf.SetFont("Arial", "B", 20)
	b.pdf.SetTextColor(31, 78, 121)
	b.pdf.CellFormat(contentWidth, 12, b.tr(b.form.Title), "", 1, "L", false, 0, "")

	b.pdf.SetFont("Arial", "I", 10)
	b.pdf.SetTextColor(90, 90, 90)
	b.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", b.cfg.generated.Format("2 January 2006")), "", 1, "L", false, 0, "")
	if desc := b.form.Description; desc != "" {
		b.pdf.MultiCell(contentWidth, 5, b.tr(desc), "", "L", false)
	}
	b.pdf.Ln(6)
}

func (b *builder) section(title string) {
	b.pdf.Ln(4)
	b.pdf.SetFont("Arial", "B", 12)
	b.pdf.SetTextColor(255, 255, 255)
	b.pdf.SetFillColor(31, 78, 121)
	b.pdf.CellFormat(contentWidth, 8, b.tr(title), "", 1, "L", true, 0, "")
	b.pdf.SetTextColor(29, 29, 31)
	b.pdf.SetFont("Arial", "", 10)
}

func (b *builder) line(label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	b.pdf.SetFont("Arial", style, 10)
	b.pdf.SetDrawColor(220, 220, 220)
	b.pdf.CellFormat(labelWidth, 7, b.tr(label), "B", 0, "L", false, 0, "")
	b.pdf.CellFormat(amountWidth, 7, b.tr(value), "B", 1, "R", false, 0, "")
}

func (b *builder) addDetails() {
	var rows [][2]string
	for _, name := range b.form.Meta {
		value := b.reg.Value(name)
		if value == "" {
			continue
		}
		label := name
		if field, ok := b.form.Field(name); ok && field.Label != "" {
			label = field.Label
		}
		rows = append(rows, [2]string{label, value})
	}
	if len(rows) == 0 {
		return
	}
	b.section("Client Details")
	for _, row := range rows {
		b.line(row[0], row[1], false)
	}
}

func (b *builder) addGroups() {
	if len(b.form.Groups) == 0 {
		return
	}
	for _, group := range b.form.Groups {
		b.section(group.Label)
		for _, field := range b.form.GroupFields(group.Key) {
			if n, ok := b.reg.Number(field.Name); ok {
				b.line(field.Label, aggregate.FormatCurrency(n), false)
			}
		}
		b.line(group.Label+" "+b.text(render.MsgTotal), b.snap.Display(group.Key+"-total"), true)
	}
	if len(b.form.GrandTotals) == 0 {
		return
	}
	b.section(b.text(render.MsgTotal))
	for _, grand := range b.form.GrandTotals {
		b.line(grand.Label, b.snap.Display(grand.Key), true)
	}
}

func (b *builder) addTables() {
	for _, section := range b.form.TableSections() {
		table, _ := b.form.Table(section)
		b.section(table.Label)

		colWidth := (contentWidth - 50) / float64(len(table.Columns))
		b.pdf.SetFont("Arial", "B", 9)
		b.pdf.SetFillColor(245, 247, 250)
		b.pdf.CellFormat(50, 7, "", "1", 0, "L", true, 0, "")
		for _, column := range table.Columns {
			b.pdf.CellFormat(colWidth, 7, b.tr(column.Label), "1", 0, "C", true, 0, "")
		}
		b.pdf.Ln(-1)

		b.pdf.SetFont("Arial", "", 9)
		for _, row := range table.Rows {
			b.pdf.CellFormat(50, 7, b.tr(row.Label), "1", 0, "L", false, 0, "")
			for _, column := range table.Columns {
				cell := ""
				if n, ok := b.reg.Number(model.CellName(row, column.Key)); ok {
					cell = aggregate.FormatCurrency(n)
				}
				b.pdf.CellFormat(colWidth, 7, cell, "1", 0, "R", false, 0, "")
			}
			b.pdf.Ln(-1)
		}

		b.pdf.SetFont("Arial", "B", 9)
		b.pdf.CellFormat(50, 7, b.tr(b.text(render.MsgTotal)), "1", 0, "L", true, 0, "")
		for _, column := range table.Columns {
			b.pdf.CellFormat(colWidth, 7, b.snap.Display(section+"-"+column.Key+"-total"), "1", 0, "R", true, 0, "")
		}
		b.pdf.Ln(-1)
		b.line(table.Label+" "+b.text(render.MsgTotal), b.snap.Display(section+"-total"), true)
	}
}

func (b *builder) addQuestions() {
	questions := b.form.Questions()
	if len(questions) == 0 {
		return
	}
	b.section(b.text(render.MsgRiskScore))
	for _, question := range questions {
		answer := "-"
		if opt, ok := b.reg.Selected(question.Key); ok {
			answer = opt.Text
			if answer == "" {
				answer = opt.Label
			}
		}
		b.pdf.SetFont("Arial", "", 10)
		b.pdf.MultiCell(contentWidth, 5, b.tr(question.Label), "", "L", false)
		b.line("    "+answer, b.snap.Display(question.ScoreDisplayID()), false)
	}
	b.line(b.text(render.MsgRiskScore), b.snap.Display(aggregate.DisplayTotalRiskScore), true)
	b.line(b.text(render.MsgRiskProfile), b.snap.Display(aggregate.DisplayRiskProfile), true)
}
