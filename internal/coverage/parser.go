package coverage

import (
	"regexp"
	"strconv"
	"strings"
)

// Section markers of the report.
const (
	UntestedMarker       = "Untested Devices"
	GeneralSummaryMarker = "General Summary Report"
)

// ParallelRemarkPrefix is the report wording for components tested in parallel.
// It is reused verbatim as the row remark.
const ParallelRemarkPrefix = "COMPONENT IS TESTED IN PARALLEL WITH "

var (
	// Test Summary for U10 (MC14519) ... Totals: ... 97.50%
	// A suffixed id (U10_A, U10A) records its leading component.
	summaryPattern = regexp.MustCompile(`(?s)Test Summary for ([A-Z]+\d+).*?Totals:.*?(\d+\.\d+)%`)

	// R22 (COMPONENT IS TESTED IN PARALLEL WITH R21) NOTEST
	parallelPattern = regexp.MustCompile(`\b([A-Z]+\d+)\s*\(COMPONENT IS TESTED IN PARALLEL WITH ([A-Z]+\d+)\)\s*NOTEST\b`)

	// C5 (PMSG is not used)
	pmsgPattern = regexp.MustCompile(`\b([A-Z]+\d+)\s*\(PMSG is not used\)`)

	// *U10_A Units ... PASS
	occurrencePattern = regexp.MustCompile(`(?s)\*([A-Z]+\d+(?:_[A-Za-z0-9]+)*)\s+Units\b.*?\b(PASS|FAIL)\b`)
)

// Extract scans a report and returns every fact it contains.
// It never fails: text that matches none of the known sections yields an empty set.
// The three passes are independent of each other.
func Extract(text string) *FactSet {
	facts := NewFactSet()
	facts.Coverage = ExtractCoverage(text)
	facts.Untested = ExtractUntested(text)
	facts.Occurrences = ExtractOccurrences(text)
	facts.PassUnique = PassUnique(facts.Occurrences)
	return facts
}

// ExtractCoverage returns the "Totals:" percentage of every Test Summary block.
// When a component has several summary blocks the last one wins.
func ExtractCoverage(text string) map[ComponentID]float64 {
	result := make(map[ComponentID]float64)

	for _, m := range summaryPattern.FindAllStringSubmatch(text, -1) {
		pct, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		result[ComponentID(m[1])] = pct
	}

	return result
}

// UntestedRegion returns the slice of text between the Untested Devices marker
// and the next General Summary Report marker (or the end of text).
// ok is false when the report has no Untested Devices section.
func UntestedRegion(text string) (region string, ok bool) {
	start := strings.Index(text, UntestedMarker)
	if start == -1 {
		return "", false
	}
	region = text[start+len(UntestedMarker):]

	if end := strings.Index(region, GeneralSummaryMarker); end != -1 {
		region = region[:end]
	}
	return region, true
}

// ExtractUntested returns the untested-device reasons listed in the Untested Devices
// region. Matching text outside that region is ignored.
func ExtractUntested(text string) map[ComponentID]UntestedReason {
	result := make(map[ComponentID]UntestedReason)

	region, ok := UntestedRegion(text)
	if !ok {
		return result
	}

	for _, m := range parallelPattern.FindAllStringSubmatch(region, -1) {
		id := ComponentID(m[1])
		reason := result[id]
		reason.ParallelWith = ComponentID(m[2])
		result[id] = reason
	}

	for _, m := range pmsgPattern.FindAllStringSubmatch(region, -1) {
		id := ComponentID(m[1])
		reason := result[id]
		reason.PmsgNotUsed = true
		result[id] = reason
	}

	return result
}

// ExtractOccurrences returns every test block in report order.
// A block starts at "*<id>[_suffix...] Units" and ends at the next PASS or FAIL word.
func ExtractOccurrences(text string) []TestOccurrence {
	matches := occurrencePattern.FindAllStringSubmatch(text, -1)
	occurrences := make([]TestOccurrence, 0, len(matches))

	for _, m := range matches {
		occurrences = append(occurrences, TestOccurrence{
			TestID:    m[1],
			Component: MainComponent(m[1]),
			Result:    Outcome(m[2]),
		})
	}

	return occurrences
}

// MainComponent strips the underscore suffixes of a compound test identifier.
// "U10_A_2" -> "U10".
func MainComponent(testID string) ComponentID {
	if idx := strings.IndexByte(testID, '_'); idx != -1 {
		return ComponentID(testID[:idx])
	}
	return ComponentID(testID)
}

// PassUnique returns the components that are the main component of exactly one
// occurrence, that occurrence being a PASS.
func PassUnique(occurrences []TestOccurrence) map[ComponentID]struct{} {
	byComponent := make(map[ComponentID][]TestOccurrence)
	for _, occ := range occurrences {
		byComponent[occ.Component] = append(byComponent[occ.Component], occ)
	}

	result := make(map[ComponentID]struct{})
	for id, group := range byComponent {
		if len(group) == 1 && group[0].Result == OutcomePass {
			result[id] = struct{}{}
		}
	}
	return result
}
