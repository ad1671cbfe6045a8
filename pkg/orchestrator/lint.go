package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/fields"
	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/payload"
)

// Violation is one lint finding.
type Violation struct {
	Form     string `json:"form"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s -> %s", v.Form, v.Location, v.Message)
}

// Lint checks every definition in store for problems the compiler accepts
// but a live submission would trip over: unreachable URLs, unusable steps and
// payloads their contract rejects. Findings are sorted by form then location.
func Lint(ctx context.Context, store *formdef.Store) []Violation {
	var result []Violation
	for _, form := range store.Forms() {
		result = append(result, lintForm(ctx, store, form)...)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Form == result[j].Form {
			if result[i].Location == result[j].Location {
				return result[i].Message < result[j].Message
			}
			return result[i].Location < result[j].Location
		}
		return result[i].Form < result[j].Form
	})
	return result
}

func lintForm(ctx context.Context, store *formdef.Store, form *model.Form) []Violation {
	var result []Violation
	report := func(path []string, format string, args ...any) {
		result = append(result, Violation{
			Form:     form.ID,
			Location: formatLocation(path),
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if msg := checkURL(form.Submit.URL); msg != "" {
		report([]string{"submit", "url"}, "%s", msg)
	}
	if form.Submit.Redirect != "" {
		if msg := checkURL(form.Submit.Redirect); msg != "" {
			report([]string{"submit", "redirect"}, "%s", msg)
		}
	}

	for index, step := range form.Steps {
		base := []string{"steps", step.ID}
		if !step.Summary && len(form.StepFields(index)) == 0 {
			report(base, "step has no inputs")
		}
		if step.Validator == model.ValidatorAnyPositive && !hasNumeric(form.StepFields(index)) {
			report(append(base, "validator"), "%s needs at least one number field", step.Validator)
		}
		if step.Validator == model.ValidatorAllSelected && len(step.Questions) == 0 {
			report(append(base, "validator"), "%s needs at least one question", step.Validator)
		}
	}

	if form.Contract == "" {
		return result
	}
	contract, err := loadContract(ctx, store, form)
	if err != nil {
		report([]string{"contract"}, "%v", err)
		return result
	}

	blank, sample := samplePayloads(form)
	if err := contract.Validate(blank); err != nil {
		report([]string{"contract", "blank"}, "%v", err)
	}
	if err := contract.Validate(sample); err != nil {
		report([]string{"contract", "sample"}, "%v", err)
	}
	return result
}

func checkURL(raw string) string {
	u, err := url.Parse(raw)
	switch {
	case strings.TrimSpace(raw) == "":
		return "url is empty"
	case err != nil:
		return fmt.Sprintf("url does not parse: %v", err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Sprintf("url %q must be absolute http(s)", raw)
	case u.Host == "":
		return fmt.Sprintf("url %q has no host", raw)
	}
	return ""
}

func hasNumeric(list []model.Field) bool {
	for _, field := range list {
		if field.Kind.Numeric() {
			return true
		}
	}
	return false
}

// samplePayloads returns the payload of an untouched form and of one where
// every input holds a plausible value.
func samplePayloads(form *model.Form) (map[string]any, map[string]any) {
	now := time.Now()
	blankReg, blankSnap, _ := fill(form, nil, now)

	values := make(map[string]string)
	for _, field := range form.Fields {
		if field.Derived != "" {
			continue
		}
		switch field.Kind {
		case model.KindNumber:
			values[field.Name] = "1"
		case model.KindDate:
			values[field.Name] = now.Format(fields.DateLayout)
		case model.KindChoice, model.KindYesNo:
			if len(field.Options) > 0 {
				values[field.Name] = optionValue(field.Options[0])
			}
		default:
			values[field.Name] = "sample"
		}
	}
	sampleReg, sampleSnap, _ := fill(form, values, now)
	return payload.Build(blankReg, blankSnap), payload.Build(sampleReg, sampleSnap)
}

func optionValue(opt model.Option) string {
	if opt.Value != "" {
		return opt.Value
	}
	return opt.Label
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
