package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var (
	// ErrAborted is returned when the user interrupts a prompt or quits.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSession is returned when Run is given a nil session.
	ErrNoSession = errors.New("tui: session is required")
)

// PromptKind selects how a question is put to the user.
type PromptKind int

const (
	PromptLine PromptKind = iota
	PromptMultiline
	PromptChoice
	PromptConfirm
)

// Prompt is one question. Options and Selected apply to PromptChoice;
// Selected is -1 when nothing is preselected. Yes is the PromptConfirm
// default.
type Prompt struct {
	Kind     PromptKind
	Message  string
	Help     string
	Default  string
	Options  []string
	Selected int
	Yes      bool
	Validate func(string) error
}

// Answer carries the reply matching the prompt kind.
type Answer struct {
	Text  string
	Index int
	Yes   bool
}

// Prompter puts questions to the user and prints messages. The runner talks
// only to a Prompter, so tests can script one.
type Prompter interface {
	Ask(ctx context.Context, p Prompt) (Answer, error)
	Say(ctx context.Context, msg string) error
}

// SurveyPrompter asks on the controlling terminal.
type SurveyPrompter struct {
	out io.Writer
}

// NewSurveyPrompter prints messages to out, or stdout when out is nil.
func NewSurveyPrompter(out io.Writer) *SurveyPrompter {
	if out == nil {
		out = os.Stdout
	}
	return &SurveyPrompter{out: out}
}

// Ask implements Prompter.
func (s *SurveyPrompter) Ask(ctx context.Context, p Prompt) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}

	var (
		answer Answer
		err    error
	)
	switch p.Kind {
	case PromptLine:
		var opts []survey.AskOpt
		if p.Validate != nil {
			opts = append(opts, survey.WithValidator(func(ans any) error {
				text, _ := ans.(string)
				return p.Validate(text)
			}))
		}
		err = survey.AskOne(&survey.Input{Message: p.Message, Help: p.Help, Default: p.Default}, &answer.Text, opts...)
	case PromptMultiline:
		err = survey.AskOne(&survey.Multiline{Message: p.Message, Help: p.Help, Default: p.Default}, &answer.Text)
	case PromptChoice:
		sel := &survey.Select{Message: p.Message, Help: p.Help, Options: p.Options}
		if p.Selected >= 0 && p.Selected < len(p.Options) {
			sel.Default = p.Options[p.Selected]
		}
		err = survey.AskOne(sel, &answer.Index)
	case PromptConfirm:
		err = survey.AskOne(&survey.Confirm{Message: p.Message, Help: p.Help, Default: p.Yes}, &answer.Yes)
	default:
		return Answer{}, fmt.Errorf("tui: unknown prompt kind %d", p.Kind)
	}

	if errors.Is(err, terminal.InterruptErr) {
		return Answer{}, ErrAborted
	}
	return answer, err
}

// Say implements Prompter.
func (s *SurveyPrompter) Say(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.out, msg)
	return err
}
