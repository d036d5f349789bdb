// Package coverage extracts test-coverage facts from in-circuit test reports.
// It parses the free-form report text produced by the test equipment into a
// FactSet keyed by component identifier (U10, R204, ...).
package coverage

import (
	"fmt"
	"regexp"
	"sort"
)

// ComponentID identifies a single component, e.g. "U10" or "R204".
// It is one or more uppercase letters followed by digits.
type ComponentID string

var componentIDPattern = regexp.MustCompile(`^[A-Z]+\d+$`)

// ValidComponentID reports whether s is a well-formed component identifier.
func ValidComponentID(s string) bool {
	return componentIDPattern.MatchString(s)
}

// Outcome is the result of a single test block.
type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
)

// UntestedReason records why a component appears in the Untested Devices region.
// Both variants may be set when the report lists the component twice.
type UntestedReason struct {
	ParallelWith ComponentID // non-empty when tested in parallel with another component
	PmsgNotUsed  bool        // diagnostic message path unused
}

// IsParallel returns true if the component is only tested in parallel with another one.
func (r UntestedReason) IsParallel() bool {
	return r.ParallelWith != ""
}

// TestOccurrence is one "*<id> Units ... PASS|FAIL" block of the report.
type TestOccurrence struct {
	TestID    string      // compound identifier, e.g. "U10_A"
	Component ComponentID // TestID up to the first underscore
	Result    Outcome
}

// FactSet holds everything extracted from one report.
type FactSet struct {
	Coverage    map[ComponentID]float64
	Untested    map[ComponentID]UntestedReason
	Occurrences []TestOccurrence
	PassUnique  map[ComponentID]struct{}
}

// NewFactSet returns an empty fact set with all maps allocated.
func NewFactSet() *FactSet {
	return &FactSet{
		Coverage:   make(map[ComponentID]float64),
		Untested:   make(map[ComponentID]UntestedReason),
		PassUnique: make(map[ComponentID]struct{}),
	}
}

// IsEmpty returns true when the report yielded no usable fact.
// Test occurrences alone do not count: only their pass-unique projection does.
func (f *FactSet) IsEmpty() bool {
	return len(f.Coverage) == 0 && len(f.Untested) == 0 && len(f.PassUnique) == 0
}

// HasPassUnique reports whether id passed its one and only test block.
func (f *FactSet) HasPassUnique(id ComponentID) bool {
	_, ok := f.PassUnique[id]
	return ok
}

// PassUniqueIDs returns the pass-unique components in sorted order.
func (f *FactSet) PassUniqueIDs() []ComponentID {
	return sortedKeys(f.PassUnique)
}

// CoverageIDs returns the components with a coverage fact in sorted order.
func (f *FactSet) CoverageIDs() []ComponentID {
	return sortedKeys(f.Coverage)
}

// UntestedIDs returns the components listed as untested in sorted order.
func (f *FactSet) UntestedIDs() []ComponentID {
	return sortedKeys(f.Untested)
}

func sortedKeys[V any](m map[ComponentID]V) []ComponentID {
	ids := make([]ComponentID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FormatCoverage renders a coverage percentage with two decimals, e.g. "97.50%".
func FormatCoverage(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}
