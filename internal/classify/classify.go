package classify

import (
	"strings"

	"github.com/hargabyte/bomcov/internal/coverage"
)

// UnclassifiedCoverage is the coverage text written for components without any fact.
const UnclassifiedCoverage = "0%"

// Classification is the outcome for one component.
type Classification struct {
	ID       coverage.ComponentID
	Status   Status
	Coverage *float64 // set only when a Test Summary gave a figure
	Remark   string   // set only for SOUS_TEST
	Rule     string   // name of the rule that matched
}

// CoverageText returns the COVERAGE % cell value: "97.50%" when a coverage figure
// exists, "0%" for unclassified components and "" when the cell must be left as is.
func (c Classification) CoverageText() string {
	if c.Coverage != nil {
		return coverage.FormatCoverage(*c.Coverage)
	}
	if c.Status == StatusUnclassified {
		return UnclassifiedCoverage
	}
	return ""
}

// Result holds the classification of every distinct component, in first-seen order.
type Result struct {
	Components []Classification
	Counts     map[Status]int // components resolved under each status
	Skipped    int            // blank identifiers ignored

	index map[coverage.ComponentID]int
}

// Lookup returns the classification of id.
func (r *Result) Lookup(id coverage.ComponentID) (Classification, bool) {
	i, ok := r.index[coverage.ComponentID(strings.TrimSpace(string(id)))]
	if !ok {
		return Classification{}, false
	}
	return r.Components[i], true
}

// Total returns the number of classified components.
func (r *Result) Total() int {
	return len(r.Components)
}

// Classify resolves every identifier against the fact set using the Rules table.
// Identifiers are trimmed; blank ones are skipped and duplicates are classified once.
// Each identifier is classified independently of the others.
func Classify(ids []coverage.ComponentID, facts *coverage.FactSet) *Result {
	if facts == nil {
		facts = coverage.NewFactSet()
	}

	result := &Result{
		Components: make([]Classification, 0, len(ids)),
		Counts:     make(map[Status]int),
		index:      make(map[coverage.ComponentID]int),
	}

	for _, raw := range ids {
		id := coverage.ComponentID(strings.TrimSpace(string(raw)))
		if id == "" {
			result.Skipped++
			continue
		}
		if _, seen := result.index[id]; seen {
			continue
		}

		c := classifyOne(id, facts)
		result.index[id] = len(result.Components)
		result.Components = append(result.Components, c)
		result.Counts[c.Status]++
	}

	return result
}

// ClassifyStrings is Classify for raw cell values.
func ClassifyStrings(ids []string, facts *coverage.FactSet) *Result {
	converted := make([]coverage.ComponentID, len(ids))
	for i, id := range ids {
		converted[i] = coverage.ComponentID(id)
	}
	return Classify(converted, facts)
}

func classifyOne(id coverage.ComponentID, facts *coverage.FactSet) Classification {
	for _, rule := range Rules {
		if c, ok := rule.Match(id, facts); ok {
			c.Rule = rule.Name
			return c
		}
	}
	// unreachable: the last rule always matches
	return Classification{ID: id, Status: StatusUnclassified, Rule: RuleUnclassified}
}
