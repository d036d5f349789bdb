package classify

import (
	"github.com/hargabyte/bomcov/internal/coverage"
)

// Rule is one entry of the precedence table. Match returns the classification of id
// and true when the rule applies.
type Rule struct {
	Name  string
	Match func(id coverage.ComponentID, facts *coverage.FactSet) (Classification, bool)
}

// Rule names, as reported in Classification.Rule.
const (
	RuleCoverage     = "coverage"
	RuleParallel     = "parallel"
	RulePmsgNotUsed  = "pmsg-not-used"
	RulePassUnique   = "pass-unique"
	RuleUnclassified = "unclassified"
)

// Rules is the precedence table, evaluated top to bottom; the first match wins.
// A component present in several fact sets therefore resolves to exactly one status.
// The last rule always matches.
var Rules = []Rule{
	{Name: RuleCoverage, Match: matchCoverage},
	{Name: RuleParallel, Match: matchParallel},
	{Name: RulePmsgNotUsed, Match: matchPmsgNotUsed},
	{Name: RulePassUnique, Match: matchPassUnique},
	{Name: RuleUnclassified, Match: matchUnclassified},
}

func matchCoverage(id coverage.ComponentID, facts *coverage.FactSet) (Classification, bool) {
	pct, ok := facts.Coverage[id]
	if !ok {
		return Classification{}, false
	}
	return Classification{ID: id, Status: StatusOK, Coverage: &pct}, true
}

func matchParallel(id coverage.ComponentID, facts *coverage.FactSet) (Classification, bool) {
	reason, ok := facts.Untested[id]
	if !ok || !reason.IsParallel() {
		return Classification{}, false
	}
	return Classification{
		ID:     id,
		Status: StatusSousTest,
		Remark: coverage.ParallelRemarkPrefix + string(reason.ParallelWith),
	}, true
}

func matchPmsgNotUsed(id coverage.ComponentID, facts *coverage.FactSet) (Classification, bool) {
	reason, ok := facts.Untested[id]
	if !ok || !reason.PmsgNotUsed {
		return Classification{}, false
	}
	return Classification{ID: id, Status: StatusNoTest}, true
}

func matchPassUnique(id coverage.ComponentID, facts *coverage.FactSet) (Classification, bool) {
	if !facts.HasPassUnique(id) {
		return Classification{}, false
	}
	return Classification{ID: id, Status: StatusOK}, true
}

func matchUnclassified(id coverage.ComponentID, _ *coverage.FactSet) (Classification, bool) {
	return Classification{ID: id, Status: StatusUnclassified}, true
}
