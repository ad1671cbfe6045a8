package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/report"
)

func TestGenerate_AllForms(t *testing.T) {
	cases := map[string]map[string]string{
		"retirement-budget": {
			"rent":       "1500",
			"utilities":  "200",
			"clientName": "Ana Ruiz",
		},
		"retirement-income-fact-finder": {
			"clientName":    "Ana Ruiz",
			"savingsClient": "100",
			"savingsJoint":  "50",
		},
		"risk-tolerance-assessment": {
			"objective": "12",
			"horizon":   "11",
		},
	}
	for id, values := range cases {
		t.Run(id, func(t *testing.T) {
			reg := testsupport.MustRegistry(t, id, values)
			out, err := report.Generate(reg, aggregate.Recompute(reg),
				report.WithGeneratedAt(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
			)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Fatalf("output is not a pdf: %q", out[:min(len(out), 16)])
			}
		})
	}
}

func TestGenerate_UncompressedContent(t *testing.T) {
	reg := testsupport.MustRegistry(t, "retirement-budget", map[string]string{"rent": "1500", "utilities": "200"})
	out, err := report.Generate(reg, nil,
		report.WithCompression(false),
		report.WithGeneratedAt(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, want := range []string{"Retirement Budget", "1700.00", "Generated: 1 May 2024"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Fatalf("pdf missing %q", want)
		}
	}
}
