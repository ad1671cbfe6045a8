package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/session"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

// Navigation choices offered after each step.
const (
	choiceNext = "next"
	choiceBack = "back"
	choiceSend = "submit"
	choiceQuit = "quit"
)

// Runner walks a session from the terminal.
type Runner struct {
	prompter   Prompter
	text       *Renderer
	renderOpts render.RenderOptions
}

// NewRunner builds a runner that asks through survey unless a Prompter is
// given.
func NewRunner(options ...Option) *Runner {
	cfg := newConfig(options)
	return &Runner{
		prompter:   cfg.prompter,
		text:       &Renderer{theme: cfg.theme},
		renderOpts: cfg.renderOpts,
	}
}

// Run prompts for every visible field of the active step, prints the
// recomputed totals, then asks where to go next. It returns once a
// submission is accepted, or the submission result when the user declines
// to retry a failed one.
func (r *Runner) Run(ctx context.Context, sess *session.Session) (*submit.Result, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		view := sess.View(r.renderOpts)
		if view.Done {
			return nil, nil
		}

		values, err := r.promptStep(ctx, view.Step)
		if err != nil {
			return nil, err
		}
		if err := sess.Update(values); err != nil {
			if infoErr := r.prompter.Say(ctx, r.text.theme.ErrorPrefix+err.Error()); infoErr != nil {
				return nil, infoErr
			}
		}

		view = sess.View(r.renderOpts)
		if err := r.prompter.Say(ctx, r.text.Text(view)); err != nil {
			return nil, err
		}

		choice, err := r.navigate(ctx, view)
		if err != nil {
			return nil, err
		}
		switch choice {
		case choiceNext:
			if !sess.Next() {
				if err := r.warn(ctx, sess); err != nil {
					return nil, err
				}
			}
		case choiceBack:
			sess.Back()
		case choiceQuit:
			return nil, ErrAborted
		case choiceSend:
			result, done, err := r.submit(ctx, sess)
			if err != nil || done {
				return result, err
			}
		}
	}
}

func (r *Runner) submit(ctx context.Context, sess *session.Session) (*submit.Result, bool, error) {
	result, err := sess.Submit(ctx)
	if errors.Is(err, session.ErrStepIncomplete) {
		return nil, false, r.warn(ctx, sess)
	}
	if err != nil {
		return nil, true, err
	}
	if result.Notification != "" {
		if err := r.prompter.Say(ctx, result.Notification); err != nil {
			return nil, true, err
		}
	}
	if result.OK() {
		return &result, true, nil
	}

	for _, name := range sortedKeys(result.Errors.Fields) {
		msg := fmt.Sprintf("%s%s: %s", r.text.theme.ErrorPrefix, name, strings.Join(result.Errors.Fields[name], "; "))
		if err := r.prompter.Say(ctx, msg); err != nil {
			return nil, true, err
		}
	}
	retry, err := r.prompter.Ask(ctx, Prompt{Kind: PromptConfirm, Message: "Try again?", Yes: true})
	if err != nil {
		return nil, true, err
	}
	return &result, !retry.Yes, nil
}

func (r *Runner) warn(ctx context.Context, sess *session.Session) error {
	view := sess.View(r.renderOpts)
	if view.Warning == "" {
		return nil
	}
	return r.prompter.Say(ctx, r.text.theme.WarningPrefix+view.Warning)
}

func (r *Runner) navigate(ctx context.Context, view render.View) (string, error) {
	var labels, choices []string
	if view.NextVisible {
		labels = append(labels, view.Labels.Next)
		choices = append(choices, choiceNext)
	}
	if view.SubmitVisible {
		labels = append(labels, view.Control.Label)
		choices = append(choices, choiceSend)
	}
	if view.BackVisible {
		labels = append(labels, view.Labels.Back)
		choices = append(choices, choiceBack)
	}
	labels = append(labels, "Quit")
	choices = append(choices, choiceQuit)

	answer, err := r.prompter.Ask(ctx, Prompt{Kind: PromptChoice, Message: view.Indicator, Options: labels, Selected: -1})
	if err != nil {
		return "", err
	}
	if answer.Index < 0 || answer.Index >= len(choices) {
		return "", fmt.Errorf("tui: invalid navigation choice %d", answer.Index)
	}
	return choices[answer.Index], nil
}

func (r *Runner) promptStep(ctx context.Context, step render.StepView) (map[string]string, error) {
	values := make(map[string]string)

	for _, field := range step.Fields {
		if !field.Visible {
			continue
		}
		value, err := r.promptField(ctx, field, field.Label)
		if err != nil {
			return nil, err
		}
		values[field.Name] = value
	}

	for _, table := range step.Tables {
		for _, row := range table.Rows {
			for i, cell := range row.Cells {
				if !cell.Visible || i >= len(table.Columns) {
					continue
				}
				value, err := r.promptField(ctx, cell, row.Label+" · "+table.Columns[i].Label)
				if err != nil {
					return nil, err
				}
				values[cell.Name] = value
			}
		}
	}

	for _, question := range step.Questions {
		value, err := r.promptChoice(ctx, question.Label, "", question.Options)
		if err != nil {
			return nil, err
		}
		values[question.Key] = value
	}
	return values, nil
}

func (r *Runner) promptField(ctx context.Context, field render.FieldView, message string) (string, error) {
	switch model.FieldKind(field.Kind) {
	case model.KindChoice, model.KindYesNo:
		return r.promptChoice(ctx, message, field.Help, field.Options)
	}

	p := Prompt{Kind: PromptLine, Message: message, Default: field.Value, Help: field.Help}
	switch model.FieldKind(field.Kind) {
	case model.KindTextArea:
		p.Kind = PromptMultiline
	case model.KindNumber:
		p.Validate = validateNumber
		if field.Derived {
			p.Default = ""
			p.Help = fmt.Sprintf("Leave blank to use %s", field.Value)
		}
	case model.KindDate:
		p.Validate = validateDate
	}
	answer, err := r.prompter.Ask(ctx, p)
	if err != nil {
		return "", err
	}
	if p.Kind == PromptMultiline {
		return answer.Text, nil
	}
	return strings.TrimSpace(answer.Text), nil
}

func (r *Runner) promptChoice(ctx context.Context, message, help string, options []render.OptionView) (string, error) {
	p := Prompt{Kind: PromptChoice, Message: message, Help: help, Selected: -1}
	for i, opt := range options {
		p.Options = append(p.Options, opt.Text)
		if opt.Selected {
			p.Selected = i
		}
	}
	answer, err := r.prompter.Ask(ctx, p)
	if err != nil {
		return "", err
	}
	if answer.Index < 0 || answer.Index >= len(options) {
		return "", fmt.Errorf("tui: invalid option %d for %q", answer.Index, message)
	}
	return options[answer.Index].Value, nil
}

func validateNumber(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, ok := fields.ParseNumber(raw); !ok {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func validateDate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := time.Parse(fields.DateLayout, strings.TrimSpace(raw)); err != nil {
		return fmt.Errorf("use the %s format", fields.DateLayout)
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
