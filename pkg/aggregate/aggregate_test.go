package aggregate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formwizard/pkg/aggregate"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

func TestRecompute_BudgetHousing(t *testing.T) {
	reg := testsupport.MustRegistry(t, "retirement-budget", map[string]string{
		"rent":      "1500",
		"utilities": "200",
		"hoa":       "n/a",
		"fuel":      "80.5",
	})

	snap := aggregate.Recompute(reg)

	want := map[string]string{
		"housing-total":   "1700.00",
		"summary-housing": "1700.00",
		"transport-total": "80.50",
		"living-total":    "0.00",
		"grand-total":     "1780.50",
	}
	for id, text := range want {
		if got := snap.Display(id); got != text {
			t.Fatalf("display %s = %q, want %q", id, got, text)
		}
	}
	if !snap.Group("housing").Equal(decimal.NewFromInt(1700)) {
		t.Fatalf("housing total = %s", snap.Group("housing"))
	}
}

func TestRecompute_FactFinderColumnsAndRowSums(t *testing.T) {
	reg := testsupport.MustRegistry(t, "retirement-income-fact-finder", map[string]string{
		"spouseName":           "Pat Ruiz",
		"ss67Client":           "2100",
		"ss67Spouse":           "1400",
		"pensionJoint":         "500",
		"savingsClient":        "1000",
		"savingsJoint":         "250",
		"checkingSpouse":       "300",
		"checkingCurrentValue": "900",
	})

	snap := aggregate.Recompute(reg)

	if got := reg.Value("savingsCurrentValue"); got != "1250" {
		t.Fatalf("row sum for savings = %q", got)
	}
	if got := reg.Value("checkingCurrentValue"); got != "900" {
		t.Fatalf("user current value overwritten: %q", got)
	}
	if got := reg.Value("cdsCurrentValue"); got != "" {
		t.Fatalf("empty row must stay blank, got %q", got)
	}

	wantIncome := map[string]string{
		"income-client-total": "2100.00",
		"income-spouse-total": "1400.00",
		"income-joint-total":  "500.00",
		"income-total":        "4000.00",
		"income-ss67-total":   "3500.00",
	}
	for id, text := range wantIncome {
		if got := snap.Display(id); got != text {
			t.Fatalf("display %s = %q, want %q", id, got, text)
		}
	}

	if got := snap.Display("assets-currentValue-total"); got != "2150.00" {
		t.Fatalf("current value column = %q", got)
	}
	if got := snap.Column("assets", aggregate.ColumnTotal); !got.Equal(decimal.NewFromInt(1550)) {
		t.Fatalf("assets payer total = %s", got)
	}
}

func TestRecompute_RowSumClearsWhenInputsRemoved(t *testing.T) {
	reg := testsupport.MustRegistry(t, "retirement-income-fact-finder", map[string]string{"goldClient": "40"})
	aggregate.Recompute(reg)
	if got := reg.Value("goldCurrentValue"); got != "40" {
		t.Fatalf("row sum = %q", got)
	}

	if err := reg.Set("goldClient", ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	aggregate.Recompute(reg)
	if got := reg.Value("goldCurrentValue"); got != "" {
		t.Fatalf("row sum should clear, got %q", got)
	}
}

func TestRecompute_RiskScores(t *testing.T) {
	reg := testsupport.MustRegistry(t, "risk-tolerance-assessment", map[string]string{
		"objective": "12",
		"horizon":   "11",
		"recovery":  "hold",
	})

	snap := aggregate.Recompute(reg)

	wantScores := map[string]int{
		"objective":       12,
		"horizon":         11,
		"portfolio":       0,
		"risklevel":       0,
		"recovery":        7,
		"incomeStability": 0,
		"emergency":       0,
	}
	if diff := cmp.Diff(wantScores, snap.Scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
	if snap.TotalScore != 30 {
		t.Fatalf("total score = %d", snap.TotalScore)
	}
	if got := snap.Display(aggregate.DisplayTotalRiskScore); got != "30" {
		t.Fatalf("total display = %q", got)
	}
	if got := snap.Display("score-portfolio"); got != "0" {
		t.Fatalf("unanswered score display = %q", got)
	}
	if snap.Profile != "" {
		t.Fatalf("profile with unanswered questions = %q", snap.Profile)
	}
	if got := snap.Display(aggregate.DisplayRiskProfile); got != "" {
		t.Fatalf("profile display with unanswered questions = %q", got)
	}
}

func TestRecompute_RiskProfile(t *testing.T) {
	cases := []struct {
		name    string
		answers map[string]string
		want    string
	}{
		{name: "empty", want: ""},
		{
			name: "lowest answers",
			answers: map[string]string{
				"objective": "3", "horizon": "2", "portfolio": "2", "risklevel": "1",
				"recovery": "1", "incomeStability": "1", "emergency": "1",
			},
			want: "conservative",
		},
		{
			name: "mixed answers",
			answers: map[string]string{
				"objective": "6", "horizon": "5", "portfolio": "5", "risklevel": "4",
				"recovery": "4", "incomeStability": "4", "emergency": "4",
			},
			want: "moderately-conservative",
		},
		{
			name: "one unanswered",
			answers: map[string]string{
				"objective": "15", "horizon": "11", "portfolio": "11", "risklevel": "10",
				"recovery": "10", "incomeStability": "10",
			},
			want: "",
		},
		{
			name: "highest answers",
			answers: map[string]string{
				"objective": "15", "horizon": "11", "portfolio": "11", "risklevel": "10",
				"recovery": "10", "incomeStability": "10", "emergency": "10",
			},
			want: "aggressive",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := aggregate.Recompute(testsupport.MustRegistry(t, "risk-tolerance-assessment", tc.answers))
			if snap.Profile != tc.want {
				t.Fatalf("profile = %q, want %q", snap.Profile, tc.want)
			}
			if got := snap.Display(aggregate.DisplayRiskProfile); got != tc.want {
				t.Fatalf("profile display = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecompute_IncomeStabilityDisplayID(t *testing.T) {
	reg := testsupport.MustRegistry(t, "risk-tolerance-assessment", map[string]string{"incomeStability": "7"})
	snap := aggregate.Recompute(reg)
	if got := snap.Display("score-income"); got != "7" {
		t.Fatalf("score-income = %q", got)
	}
	if _, ok := snap.Displays["score-incomeStability"]; ok {
		t.Fatalf("score keyed by question key should not be emitted")
	}
}

func TestRecompute_HiddenSpouseCellsExcluded(t *testing.T) {
	values := map[string]string{
		"ss62Client":    "100",
		"ss62Spouse":    "50",
		"savingsClient": "1000",
		"savingsSpouse": "500",
	}
	reg := testsupport.MustRegistry(t, "retirement-income-fact-finder", values)

	snap := aggregate.Recompute(reg)

	want := map[string]string{
		"income-ss62-total":   "100.00",
		"income-spouse-total": "0.00",
		"income-total":        "100.00",
		"assets-total":        "1000.00",
	}
	for id, text := range want {
		if got := snap.Display(id); got != text {
			t.Fatalf("display %s = %q, want %q", id, got, text)
		}
	}
	if got := reg.Value("savingsCurrentValue"); got != "1000" {
		t.Fatalf("row sum with hidden spouse = %q", got)
	}

	if err := reg.Set("spouseName", "Pat Ruiz"); err != nil {
		t.Fatalf("set spouse: %v", err)
	}
	snap = aggregate.Recompute(reg)
	if got := snap.Display("income-total"); got != "150.00" {
		t.Fatalf("income total with spouse shown = %q", got)
	}
	if got := reg.Value("savingsCurrentValue"); got != "1500" {
		t.Fatalf("row sum with spouse shown = %q", got)
	}
}

func TestProfile_NoBand(t *testing.T) {
	if got := aggregate.Profile(nil, 40); got != "" {
		t.Fatalf("profile without bands = %q", got)
	}
}
