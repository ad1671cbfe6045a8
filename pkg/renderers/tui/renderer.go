// Package tui drives a wizard session from the terminal. Renderer prints a
// plain-text rendition of a view; Runner walks a session step by step with
// survey prompts.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/render"
)

// Name is the registry name of the text renderer.
const Name = "tui"

// Renderer prints a view as plain text.
type Renderer struct {
	theme Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the text renderer.
func New(options ...Option) *Renderer {
	cfg := config{theme: DefaultTheme}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Renderer{theme: cfg.theme}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the output format.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(r.Text(view)), nil
}

// Text renders the active step, its totals, and any messages.
func (r *Renderer) Text(view render.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n", view.Title, view.Indicator)
	if desc := strings.TrimSpace(view.Step.Description); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}

	if len(view.Step.Fields) > 0 {
		b.WriteString("\n")
		for _, field := range view.Step.Fields {
			if !field.Visible {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s\n", field.Label, fieldText(field))
		}
	}

	for _, table := range view.Step.Tables {
		fmt.Fprintf(&b, "\n%s\n", table.Label)
		for _, row := range table.Rows {
			var parts []string
			for i, cell := range row.Cells {
				if !cell.Visible || i >= len(table.Columns) {
					continue
				}
				text := fieldText(cell)
				if text == "" {
					continue
				}
				parts = append(parts, table.Columns[i].Label+" "+text)
			}
			if len(parts) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s\n", row.Label, strings.Join(parts, ", "))
		}
		for _, column := range table.Columns {
			if column.Visible {
				fmt.Fprintf(&b, "  %s %s: %s\n", column.Label, view.Labels.Total, column.Total.Value)
			}
		}
		fmt.Fprintf(&b, "  %s: %s\n", table.Total.Label, table.Total.Value)
	}

	for _, question := range view.Step.Questions {
		answer := "-"
		for _, opt := range question.Options {
			if opt.Selected {
				answer = opt.Text
			}
		}
		fmt.Fprintf(&b, "\n  %s\n    %s (%s)\n", question.Label, answer, question.Score.Value)
	}

	if len(view.Step.Totals) > 0 {
		b.WriteString("\n")
		for _, total := range view.Step.Totals {
			fmt.Fprintf(&b, "%s: %s\n", total.Label, total.Value)
		}
	}

	if len(view.Summary) > 0 {
		b.WriteString("\n")
		for _, line := range view.Summary {
			fmt.Fprintf(&b, "  %s: %s\n", line.Label, line.Value)
		}
	}

	if view.Warning != "" {
		fmt.Fprintf(&b, "\n%s%s\n", r.theme.WarningPrefix, view.Warning)
	}
	for _, msg := range view.FormErrors {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, msg)
	}
	if view.Notification != "" {
		fmt.Fprintf(&b, "\n%s%s\n", r.theme.InfoPrefix, view.Notification)
	}
	return b.String()
}

// fieldText is the value shown for a field; choices show the option text.
func fieldText(field render.FieldView) string {
	for _, opt := range field.Options {
		if opt.Selected {
			return opt.Text
		}
	}
	return field.Value
}
