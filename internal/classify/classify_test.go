package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/hargabyte/bomcov/internal/coverage"
)

func ids(s ...string) []coverage.ComponentID {
	out := make([]coverage.ComponentID, len(s))
	for i, v := range s {
		out[i] = coverage.ComponentID(v)
	}
	return out
}

func classifyText(t *testing.T, text string, id string) Classification {
	t.Helper()
	result := Classify(ids(id), coverage.Extract(text))
	c, ok := result.Lookup(coverage.ComponentID(id))
	if !ok {
		t.Fatalf("no classification for %s", id)
	}
	return c
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		id           string
		wantStatus   Status
		wantCoverage string
		wantRemark   string
		wantRule     string
	}{
		{
			name:         "test summary coverage",
			text:         "Test Summary for U10 (MC14519)\n  Faults: 39\n  Totals: 39/40 97.50%\n",
			id:           "U10",
			wantStatus:   StatusOK,
			wantCoverage: "97.50%",
			wantRule:     RuleCoverage,
		},
		{
			name:       "tested in parallel",
			text:       "Untested Devices\n  R22 (COMPONENT IS TESTED IN PARALLEL WITH R21) NOTEST\n",
			id:         "R22",
			wantStatus: StatusSousTest,
			wantRemark: "COMPONENT IS TESTED IN PARALLEL WITH R21",
			wantRule:   RuleParallel,
		},
		{
			name:       "pmsg not used",
			text:       "Untested Devices\n  C5 (PMSG is not used)\n",
			id:         "C5",
			wantStatus: StatusNoTest,
			wantRule:   RulePmsgNotUsed,
		},
		{
			name:       "single passing test block",
			text:       "*U7 Units\n  Vout 4.98 V  PASS\n",
			id:         "U7",
			wantStatus: StatusOK,
			wantRule:   RulePassUnique,
		},
		{
			name:         "pass and fail blocks",
			text:         "*U8_A Units\n  high PASS\n*U8_B Units\n  low FAIL\n",
			id:           "U8",
			wantStatus:   StatusUnclassified,
			wantCoverage: "0%",
			wantRule:     RuleUnclassified,
		},
		{
			name:         "absent from report",
			text:         "Test Summary for U10 (MC14519)\nTotals: 97.50%\n",
			id:           "Q1",
			wantStatus:   StatusUnclassified,
			wantCoverage: "0%",
			wantRule:     RuleUnclassified,
		},
		{
			name:         "single failing test block",
			text:         "*U9 Units\n  leakage FAIL\n",
			id:           "U9",
			wantStatus:   StatusUnclassified,
			wantCoverage: "0%",
			wantRule:     RuleUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classifyText(t, tt.text, tt.id)
			if c.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, c.Status)
			}
			if got := c.CoverageText(); got != tt.wantCoverage {
				t.Errorf("expected coverage %q, got %q", tt.wantCoverage, got)
			}
			if c.Remark != tt.wantRemark {
				t.Errorf("expected remark %q, got %q", tt.wantRemark, c.Remark)
			}
			if c.Rule != tt.wantRule {
				t.Errorf("expected rule %q, got %q", tt.wantRule, c.Rule)
			}
		})
	}
}

func TestClassify_PassUniqueHasNoCoverage(t *testing.T) {
	c := classifyText(t, "*U7 Units\n PASS\n", "U7")
	if c.Coverage != nil {
		t.Errorf("pass-unique component must not carry a coverage value, got %v", *c.Coverage)
	}
}

func TestClassify_CoverageBeatsUntested(t *testing.T) {
	text := "Test Summary for R22 (RES)\nTotals: 80.00%\n" +
		"Untested Devices\n R22 (COMPONENT IS TESTED IN PARALLEL WITH R21) NOTEST\n R22 (PMSG is not used)\n"

	c := classifyText(t, text, "R22")
	if c.Status != StatusOK {
		t.Fatalf("expected OK, got %s", c.Status)
	}
	if c.CoverageText() != "80.00%" {
		t.Errorf("expected coverage 80.00%%, got %q", c.CoverageText())
	}
	if c.Remark != "" {
		t.Errorf("expected no remark, got %q", c.Remark)
	}
}

func TestClassify_ParallelBeatsPmsg(t *testing.T) {
	text := "Untested Devices\n Q4 (PMSG is not used)\n Q4 (COMPONENT IS TESTED IN PARALLEL WITH Q3) NOTEST\n"

	c := classifyText(t, text, "Q4")
	if c.Status != StatusSousTest {
		t.Errorf("expected SOUS_TEST, got %s", c.Status)
	}
}

func TestClassify_UntestedBeatsPassUnique(t *testing.T) {
	text := "*C5 Units\n PASS\nUntested Devices\n C5 (PMSG is not used)\n"

	c := classifyText(t, text, "C5")
	if c.Status != StatusNoTest {
		t.Errorf("expected NOTEST, got %s", c.Status)
	}
}

func TestClassify_RegionBoundary(t *testing.T) {
	text := "Untested Devices\n R1 (PMSG is not used)\nGeneral Summary Report\n C5 (PMSG is not used)\n"

	c := classifyText(t, text, "C5")
	if c.Status != StatusUnclassified {
		t.Errorf("expected UNCLASSIFIED for text past the region, got %s", c.Status)
	}
}

func TestClassify_SkipsBlankAndDuplicates(t *testing.T) {
	facts := coverage.Extract("Test Summary for U10 (X)\nTotals: 50.00%\n")

	result := Classify(ids("U10", "", "  ", "R1", " U10 ", "R1"), facts)

	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", result.Skipped)
	}
	if result.Total() != 2 {
		t.Fatalf("expected 2 components, got %d", result.Total())
	}
	if result.Components[0].ID != "U10" || result.Components[1].ID != "R1" {
		t.Errorf("expected first-seen order [U10 R1], got [%s %s]",
			result.Components[0].ID, result.Components[1].ID)
	}
	if result.Counts[StatusOK] != 1 || result.Counts[StatusUnclassified] != 1 {
		t.Errorf("unexpected counts: %v", result.Counts)
	}
}

func TestClassify_EmptyFactSet(t *testing.T) {
	for _, facts := range []*coverage.FactSet{nil, coverage.Extract("")} {
		result := Classify(ids("U1", "U2"), facts)
		if result.Counts[StatusUnclassified] != 2 {
			t.Errorf("expected every component unclassified, got %v", result.Counts)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	text := "Test Summary for U10 (X)\nTotals: 97.50%\n*U7 Units PASS\n" +
		"Untested Devices\n R22 (COMPONENT IS TESTED IN PARALLEL WITH R21) NOTEST\n C5 (PMSG is not used)\n"
	list := ids("U10", "U7", "R22", "C5", "Z9")

	first := Classify(list, coverage.Extract(text))
	second := Classify(list, coverage.Extract(text))

	opts := cmpopts.IgnoreUnexported(Result{})
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("Classify is not deterministic (-first +second):\n%s", diff)
	}
}

func TestClassifyStrings(t *testing.T) {
	result := ClassifyStrings([]string{"U7", ""}, coverage.Extract("*U7 Units PASS"))
	if result.Total() != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 component and 1 skipped, got %d and %d", result.Total(), result.Skipped)
	}
	if result.Components[0].Status != StatusOK {
		t.Errorf("expected OK, got %s", result.Components[0].Status)
	}
}

func TestRulesEndWithCatchAll(t *testing.T) {
	last := Rules[len(Rules)-1]
	if last.Name != RuleUnclassified {
		t.Fatalf("expected last rule %q, got %q", RuleUnclassified, last.Name)
	}
	if _, ok := last.Match("X1", coverage.NewFactSet()); !ok {
		t.Error("last rule must always match")
	}
}

func TestStatusMappings(t *testing.T) {
	tests := []struct {
		status Status
		ppvs   string
		color  Color
	}{
		{StatusOK, "OK", ColorGreen},
		{StatusSousTest, "SOUS-TEST", ColorYellow},
		{StatusNoTest, "NOTEST", ColorRed},
		{StatusUnclassified, "", ColorNone},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.PPVS(); got != tt.ppvs {
				t.Errorf("PPVS() = %q, want %q", got, tt.ppvs)
			}
			if got := tt.status.Color(); got != tt.color {
				t.Errorf("Color() = %q, want %q", got, tt.color)
			}
		})
	}
}
