package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/session"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

// scriptedPrompter answers line and multiline prompts from lines, choices
// from picks and confirmations from confirms, in order.
type scriptedPrompter struct {
	lines    []string
	picks    []int
	confirms []bool
	said     []string
	choices  []Prompt
}

func (s *scriptedPrompter) Ask(_ context.Context, p Prompt) (Answer, error) {
	switch p.Kind {
	case PromptChoice:
		s.choices = append(s.choices, p)
		if len(s.picks) == 0 {
			return Answer{}, errors.New("no choice scripted")
		}
		idx := s.picks[0]
		s.picks = s.picks[1:]
		return Answer{Index: idx}, nil
	case PromptConfirm:
		if len(s.confirms) == 0 {
			return Answer{}, errors.New("no confirm scripted")
		}
		yes := s.confirms[0]
		s.confirms = s.confirms[1:]
		return Answer{Yes: yes}, nil
	}
	if len(s.lines) == 0 {
		return Answer{}, errors.New("no line scripted")
	}
	text := s.lines[0]
	s.lines = s.lines[1:]
	if p.Validate != nil {
		if err := p.Validate(text); err != nil {
			return Answer{}, err
		}
	}
	return Answer{Text: text}, nil
}

func (s *scriptedPrompter) Say(_ context.Context, msg string) error {
	s.said = append(s.said, msg)
	return nil
}

func (s *scriptedPrompter) printed(substr string) bool {
	for _, msg := range s.said {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestRenderer_Text(t *testing.T) {
	s := session.New("s1", testsupport.MustForm(t, "retirement-budget"))
	if err := s.Update(map[string]string{"rent": "1500", "utilities": "200"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	out, err := New().Render(context.Background(), s.View(render.RenderOptions{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"Retirement Budget\nHousing · Step 1 of 8\n",
		"  Rent / Mortgage: 1500\n",
		"Housing Total: 1700.00\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("text missing %q\n%s", want, text)
		}
	}
}

func TestRunner_RiskAssessment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := session.New("s1", testsupport.MustForm(t, "risk-tolerance-assessment"),
		session.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }),
		session.WithSubmitOptions(submit.WithEndpoint(server.URL)),
	)
	prompter := &scriptedPrompter{
		picks: []int{
			// investment profile, then next
			3, 3, 3, 3, 0,
			// financial resilience, then next
			3, 3, 3, 0,
			// submit
			0,
		},
		lines: []string{"Ana Ruiz", "2024-05-01"},
	}

	result, err := NewRunner(WithPrompter(prompter)).Run(context.Background(), s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result == nil || result.Outcome != submit.OutcomeSuccess {
		t.Fatalf("result = %+v", result)
	}
	if !prompter.printed("✅ Assessment submitted. Thank you!") {
		t.Fatalf("success notification not printed: %q", prompter.said)
	}
	if got := s.Snapshot().Profile; got != "aggressive" {
		t.Fatalf("profile = %q", got)
	}

	last := prompter.choices[len(prompter.choices)-1]
	if diff := cmp.Diff([]string{"Submit", "Back", "Quit"}, last.Options); diff != "" {
		t.Fatalf("final navigation mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_BlockedNextShowsWarning(t *testing.T) {
	s := session.New("s1", testsupport.MustForm(t, "retirement-budget"))
	prompter := &scriptedPrompter{
		lines: []string{
			// housing, left blank
			"", "", "", "", "", "",
			// housing again
			"1200", "", "", "", "", "",
			// transport
			"", "", "", "", "",
		},
		picks: []int{0, 0, 2},
	}

	_, err := NewRunner(WithPrompter(prompter)).Run(context.Background(), s)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if !prompter.printed("! Please enter at least one amount greater than zero to continue.") {
		t.Fatalf("warning not printed: %q", prompter.said)
	}
	if s.StepIndex() != 1 {
		t.Fatalf("step = %d, want 1", s.StepIndex())
	}
}

func TestValidateNumberAndDate(t *testing.T) {
	if err := validateNumber("12.5"); err != nil {
		t.Fatalf("validateNumber: %v", err)
	}
	if err := validateNumber("twelve"); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
	if err := validateDate("2024-05-01"); err != nil {
		t.Fatalf("validateDate: %v", err)
	}
	if err := validateDate("05/01/2024"); err == nil {
		t.Fatalf("expected error for wrong date layout")
	}
}
