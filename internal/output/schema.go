package output

import (
	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/coverage"
)

// SummaryOutput counts classified components per status.
type SummaryOutput struct {
	Total        int `yaml:"total" json:"total"`
	OK           int `yaml:"ok" json:"ok"`
	SousTest     int `yaml:"sous_test" json:"sous_test"`
	NoTest       int `yaml:"notest" json:"notest"`
	Unclassified int `yaml:"unclassified" json:"unclassified"`

	// Skipped counts table rows with a blank component identifier
	Skipped int `yaml:"skipped,omitempty" json:"skipped,omitempty"`

	// NoFacts is set when the report yielded no fact at all, which usually
	// means the wrong file or an unexpected report layout
	NoFacts bool `yaml:"no_facts,omitempty" json:"no_facts,omitempty"`
}

// NewSummaryOutput counts the statuses of a classification result.
func NewSummaryOutput(result *classify.Result, facts *coverage.FactSet) SummaryOutput {
	s := SummaryOutput{
		Total:        result.Total(),
		OK:           result.Counts[classify.StatusOK],
		SousTest:     result.Counts[classify.StatusSousTest],
		NoTest:       result.Counts[classify.StatusNoTest],
		Unclassified: result.Counts[classify.StatusUnclassified],
		Skipped:      result.Skipped,
	}
	if facts == nil || facts.IsEmpty() {
		s.NoFacts = true
	}
	return s
}

// ComponentOutput is one classified component.
type ComponentOutput struct {
	ID     string `yaml:"id" json:"id"`
	Status string `yaml:"status" json:"status"`

	// PPVS is the value written to the table, empty for unclassified components
	PPVS string `yaml:"ppvs,omitempty" json:"ppvs,omitempty"`

	// Coverage is the COVERAGE % cell value, e.g. "97.50%" or "0%"
	Coverage string `yaml:"coverage,omitempty" json:"coverage,omitempty"`

	Remark string `yaml:"remark,omitempty" json:"remark,omitempty"`

	// Rule names the classification rule that matched (dense only)
	Rule string `yaml:"rule,omitempty" json:"rule,omitempty"`
}

// ClassifyOutput is the output of bomcov classify and bomcov annotate.
type ClassifyOutput struct {
	Summary    SummaryOutput     `yaml:"summary" json:"summary"`
	Components []ComponentOutput `yaml:"components,omitempty" json:"components,omitempty"`
	Facts      *FactsOutput      `yaml:"facts,omitempty" json:"facts,omitempty"`
}

// NewClassifyOutput builds the full output of a classification. Use a Formatter
// with a density to trim it.
func NewClassifyOutput(result *classify.Result, facts *coverage.FactSet) *ClassifyOutput {
	out := &ClassifyOutput{
		Summary:    NewSummaryOutput(result, facts),
		Components: make([]ComponentOutput, 0, len(result.Components)),
	}
	for _, c := range result.Components {
		out.Components = append(out.Components, ComponentOutput{
			ID:       string(c.ID),
			Status:   c.Status.String(),
			PPVS:     c.Status.PPVS(),
			Coverage: c.CoverageText(),
			Remark:   c.Remark,
			Rule:     c.Rule,
		})
	}
	if facts != nil {
		out.Facts = NewFactsOutput(facts)
	}
	return out
}

// AtDensity returns a copy of o trimmed to density.
func (o *ClassifyOutput) AtDensity(density Density) interface{} {
	trimmed := &ClassifyOutput{Summary: o.Summary}
	if density.IncludesComponents() {
		trimmed.Components = make([]ComponentOutput, len(o.Components))
		copy(trimmed.Components, o.Components)
		if !density.IncludesRules() {
			for i := range trimmed.Components {
				trimmed.Components[i].Rule = ""
			}
		}
	}
	if density.IncludesFacts() && o.Facts != nil {
		trimmed.Facts = o.Facts.AtDensity(density).(*FactsOutput)
	}
	return trimmed
}

// FactsCount counts the facts of each kind.
type FactsCount struct {
	Coverage    int `yaml:"coverage" json:"coverage"`
	Untested    int `yaml:"untested" json:"untested"`
	Occurrences int `yaml:"occurrences" json:"occurrences"`
	PassUnique  int `yaml:"pass_unique" json:"pass_unique"`
}

// UntestedOutput is the reason a component is listed as untested.
type UntestedOutput struct {
	ParallelWith string `yaml:"parallel_with,omitempty" json:"parallel_with,omitempty"`
	PmsgNotUsed  bool   `yaml:"pmsg_not_used,omitempty" json:"pmsg_not_used,omitempty"`
}

// OccurrenceOutput is one test block of the report.
type OccurrenceOutput struct {
	Test      string `yaml:"test" json:"test"`
	Component string `yaml:"component" json:"component"`
	Result    string `yaml:"result" json:"result"`
}

// FactsOutput is the output of bomcov extract.
type FactsOutput struct {
	Count FactsCount `yaml:"count" json:"count"`

	// Coverage maps a component to its formatted coverage, e.g. "97.50%"
	Coverage map[string]string `yaml:"coverage,omitempty" json:"coverage,omitempty"`

	Untested    map[string]UntestedOutput `yaml:"untested,omitempty" json:"untested,omitempty"`
	PassUnique  []string                  `yaml:"pass_unique,omitempty" json:"pass_unique,omitempty"`
	Occurrences []OccurrenceOutput        `yaml:"occurrences,omitempty" json:"occurrences,omitempty"`
}

// NewFactsOutput converts a fact set into its output form.
func NewFactsOutput(facts *coverage.FactSet) *FactsOutput {
	out := &FactsOutput{
		Count: FactsCount{
			Coverage:    len(facts.Coverage),
			Untested:    len(facts.Untested),
			Occurrences: len(facts.Occurrences),
			PassUnique:  len(facts.PassUnique),
		},
	}

	if len(facts.Coverage) > 0 {
		out.Coverage = make(map[string]string, len(facts.Coverage))
		for id, pct := range facts.Coverage {
			out.Coverage[string(id)] = coverage.FormatCoverage(pct)
		}
	}

	if len(facts.Untested) > 0 {
		out.Untested = make(map[string]UntestedOutput, len(facts.Untested))
		for id, reason := range facts.Untested {
			out.Untested[string(id)] = UntestedOutput{
				ParallelWith: string(reason.ParallelWith),
				PmsgNotUsed:  reason.PmsgNotUsed,
			}
		}
	}

	for _, id := range facts.PassUniqueIDs() {
		out.PassUnique = append(out.PassUnique, string(id))
	}

	for _, occ := range facts.Occurrences {
		out.Occurrences = append(out.Occurrences, OccurrenceOutput{
			Test:      occ.TestID,
			Component: string(occ.Component),
			Result:    string(occ.Result),
		})
	}

	return out
}

// AtDensity returns a copy of o trimmed to density.
func (o *FactsOutput) AtDensity(density Density) interface{} {
	trimmed := &FactsOutput{Count: o.Count}
	if density.IncludesComponents() {
		trimmed.Coverage = o.Coverage
		trimmed.Untested = o.Untested
		trimmed.PassUnique = o.PassUnique
	}
	if density.IncludesOccurrences() {
		trimmed.Occurrences = o.Occurrences
	}
	return trimmed
}

// JobOutput reports one annotate job of a batch run.
type JobOutput struct {
	Table   string         `yaml:"table" json:"table"`
	Report  string         `yaml:"report" json:"report"`
	Output  string         `yaml:"output,omitempty" json:"output,omitempty"`
	Summary *SummaryOutput `yaml:"summary,omitempty" json:"summary,omitempty"`
	Error   string         `yaml:"error,omitempty" json:"error,omitempty"`
}

// BatchOutput is the output of bomcov batch.
type BatchOutput struct {
	Jobs      []JobOutput `yaml:"jobs" json:"jobs"`
	Succeeded int         `yaml:"succeeded" json:"succeeded"`
	Failed    int         `yaml:"failed" json:"failed"`
}

// AtDensity drops per-job summaries below medium density.
func (o *BatchOutput) AtDensity(density Density) interface{} {
	if density.IncludesComponents() {
		return o
	}
	trimmed := &BatchOutput{Succeeded: o.Succeeded, Failed: o.Failed, Jobs: make([]JobOutput, len(o.Jobs))}
	for i, job := range o.Jobs {
		job.Summary = nil
		trimmed.Jobs[i] = job
	}
	return trimmed
}
