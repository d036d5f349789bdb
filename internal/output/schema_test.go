package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/coverage"
)

const report = `Test Summary for U10 (MC14519)
  Totals: 39/40 97.50%
*U7 Units
  Vout PASS
Untested Devices
  R22 (COMPONENT IS TESTED IN PARALLEL WITH R21) NOTEST
  C5 (PMSG is not used)
General Summary Report
`

func sampleOutput(t *testing.T) (*ClassifyOutput, *classify.Result) {
	t.Helper()
	facts := coverage.Extract(report)
	result := classify.ClassifyStrings([]string{"U10", "R22", "C5", "U7", "Q1", " "}, facts)
	return NewClassifyOutput(result, facts), result
}

func TestNewClassifyOutput(t *testing.T) {
	out, _ := sampleOutput(t)

	wantSummary := SummaryOutput{Total: 5, OK: 2, SousTest: 1, NoTest: 1, Unclassified: 1, Skipped: 1}
	if diff := cmp.Diff(wantSummary, out.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	want := []ComponentOutput{
		{ID: "U10", Status: "OK", PPVS: "OK", Coverage: "97.50%", Rule: classify.RuleCoverage},
		{ID: "R22", Status: "SOUS_TEST", PPVS: "SOUS-TEST", Remark: "COMPONENT IS TESTED IN PARALLEL WITH R21", Rule: classify.RuleParallel},
		{ID: "C5", Status: "NOTEST", PPVS: "NOTEST", Rule: classify.RulePmsgNotUsed},
		{ID: "U7", Status: "OK", PPVS: "OK", Rule: classify.RulePassUnique},
		{ID: "Q1", Status: "UNCLASSIFIED", Coverage: "0%", Rule: classify.RuleUnclassified},
	}
	if diff := cmp.Diff(want, out.Components); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryOutput_NoFacts(t *testing.T) {
	facts := coverage.Extract("not a test report")
	result := classify.ClassifyStrings([]string{"U1"}, facts)

	s := NewSummaryOutput(result, facts)
	if !s.NoFacts {
		t.Error("expected NoFacts for an empty fact set")
	}
	if s.Unclassified != 1 {
		t.Errorf("expected 1 unclassified, got %d", s.Unclassified)
	}
}

func TestClassifyOutput_AtDensity(t *testing.T) {
	out, _ := sampleOutput(t)

	sparse := out.AtDensity(DensitySparse).(*ClassifyOutput)
	if len(sparse.Components) != 0 || sparse.Facts != nil {
		t.Errorf("sparse should carry the summary only, got %+v", sparse)
	}

	medium := out.AtDensity(DensityMedium).(*ClassifyOutput)
	if len(medium.Components) != 5 {
		t.Fatalf("expected 5 components at medium, got %d", len(medium.Components))
	}
	if medium.Components[0].Rule != "" {
		t.Error("medium density must not carry rule names")
	}
	if medium.Facts != nil {
		t.Error("medium density must not carry facts")
	}
	if out.Components[0].Rule == "" {
		t.Error("AtDensity must not modify the original output")
	}

	dense := out.AtDensity(DensityDense).(*ClassifyOutput)
	if dense.Facts == nil || len(dense.Facts.Occurrences) != 1 {
		t.Errorf("dense density should carry facts with occurrences, got %+v", dense.Facts)
	}
}

func TestNewFactsOutput(t *testing.T) {
	out := NewFactsOutput(coverage.Extract(report))

	want := &FactsOutput{
		Count:    FactsCount{Coverage: 1, Untested: 2, Occurrences: 1, PassUnique: 1},
		Coverage: map[string]string{"U10": "97.50%"},
		Untested: map[string]UntestedOutput{
			"R22": {ParallelWith: "R21"},
			"C5":  {PmsgNotUsed: true},
		},
		PassUnique:  []string{"U7"},
		Occurrences: []OccurrenceOutput{{Test: "U7", Component: "U7", Result: "PASS"}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("facts output mismatch (-want +got):\n%s", diff)
	}

	medium := out.AtDensity(DensityMedium).(*FactsOutput)
	if medium.Occurrences != nil {
		t.Error("medium density must not carry occurrences")
	}
	sparse := out.AtDensity(DensitySparse).(*FactsOutput)
	if sparse.Coverage != nil || sparse.Count != out.Count {
		t.Errorf("sparse density should carry counts only, got %+v", sparse)
	}
}

func TestYAMLFormatter(t *testing.T) {
	out, _ := sampleOutput(t)

	text, err := NewYAMLFormatter().Format(out, DensityMedium)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded ClassifyOutput
	if err := yaml.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, text)
	}
	if decoded.Summary.SousTest != 1 {
		t.Errorf("expected sous_test 1, got %d", decoded.Summary.SousTest)
	}
	if !strings.Contains(text, "ppvs: SOUS-TEST") {
		t.Errorf("expected ppvs key in output:\n%s", text)
	}
	if strings.Contains(text, "rule:") {
		t.Errorf("medium YAML must not include rules:\n%s", text)
	}
}

func TestJSONFormatter(t *testing.T) {
	out, _ := sampleOutput(t)

	var buf bytes.Buffer
	if err := NewJSONFormatter().FormatToWriter(&buf, out, DensitySparse); err != nil {
		t.Fatalf("FormatToWriter failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["components"]; ok {
		t.Error("sparse JSON must omit components")
	}
}

func TestMsgPackFormatter(t *testing.T) {
	out, _ := sampleOutput(t)

	var buf bytes.Buffer
	if err := NewMsgPackFormatter().FormatToWriter(&buf, out, DensityMedium); err != nil {
		t.Fatalf("FormatToWriter failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := msgpack.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid MessagePack: %v", err)
	}
	summary, ok := decoded["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected summary map keyed by json names, got %v", decoded)
	}
	if _, ok := summary["sous_test"]; !ok {
		t.Errorf("expected sous_test key, got %v", summary)
	}
}

func TestBatchOutput_AtDensity(t *testing.T) {
	summary := &SummaryOutput{Total: 1, OK: 1}
	out := &BatchOutput{
		Jobs:      []JobOutput{{Table: "a.csv", Report: "a.txt", Summary: summary}},
		Succeeded: 1,
	}

	sparse := out.AtDensity(DensitySparse).(*BatchOutput)
	if sparse.Jobs[0].Summary != nil {
		t.Error("sparse batch output must drop job summaries")
	}
	if out.Jobs[0].Summary == nil {
		t.Error("AtDensity must not modify the original output")
	}
}
