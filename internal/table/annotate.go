package table

import (
	"fmt"
	"strings"

	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/config"
	"github.com/hargabyte/bomcov/internal/coverage"
)

// StatusMap holds the colour intent of every data row, in row order.
type StatusMap []classify.Color

// Count returns how many rows carry color.
func (m StatusMap) Count(color classify.Color) int {
	n := 0
	for _, c := range m {
		if c == color {
			n++
		}
	}
	return n
}

// AnnotatedColumns are the column indexes used by an annotation.
type AnnotatedColumns struct {
	Component int
	Coverage  int
	Status    int
	Remarks   int
}

// CellRef addresses a data cell: Row indexes Table.Rows, Col indexes the header.
type CellRef struct {
	Row int
	Col int
}

// Annotation describes what Annotate did to a table.
type Annotation struct {
	Statuses StatusMap
	Columns  AnnotatedColumns
	Skipped  int       // rows with a blank component identifier
	Edits    []CellRef // cells Annotate wrote, in write order
}

func (a *Annotation) set(t *Table, row, col int, value string) {
	t.Set(row, col, value)
	a.Edits = append(a.Edits, CellRef{Row: row, Col: col})
}

// ComponentIDs returns the component column in row order, untrimmed.
func ComponentIDs(t *Table, cols config.ColumnsConfig) ([]coverage.ComponentID, error) {
	idx := t.Index(cols.Component)
	if idx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Component)
	}

	values := t.Column(idx)
	ids := make([]coverage.ComponentID, len(values))
	for i, v := range values {
		ids[i] = coverage.ComponentID(v)
	}
	return ids, nil
}

// Annotate writes the classification of every row into the coverage, status and
// remarks columns, appending the columns that do not exist yet.
//
// Rows with a blank component are left untouched. Every written cell is listed in
// Annotation.Edits. OK rows without a coverage figure
// and SOUS-TEST/NOTEST rows keep their existing coverage cell, unless
// cols.ClearStaleCoverage is set for the latter. Remarks are only written for
// SOUS-TEST rows.
func Annotate(t *Table, result *classify.Result, cols config.ColumnsConfig) (*Annotation, error) {
	compIdx := t.Index(cols.Component)
	if compIdx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Component)
	}

	ann := &Annotation{
		Statuses: make(StatusMap, len(t.Rows)),
		Columns: AnnotatedColumns{
			Component: compIdx,
			Coverage:  t.EnsureColumn(cols.Coverage),
			Status:    t.EnsureColumn(cols.Status),
			Remarks:   t.EnsureColumn(cols.Remarks, cols.RemarkAliases...),
		},
	}

	for i := range t.Rows {
		ann.Statuses[i] = classify.ColorNone

		id := strings.TrimSpace(t.Cell(i, compIdx))
		if id == "" {
			ann.Skipped++
			continue
		}

		c, ok := result.Lookup(coverage.ComponentID(id))
		if !ok {
			continue
		}

		if ppvs := c.Status.PPVS(); ppvs != "" {
			ann.set(t, i, ann.Columns.Status, ppvs)
		}

		if text := c.CoverageText(); text != "" {
			ann.set(t, i, ann.Columns.Coverage, text)
		} else if cols.ClearStaleCoverage && (c.Status == classify.StatusSousTest || c.Status == classify.StatusNoTest) {
			ann.set(t, i, ann.Columns.Coverage, "")
		}

		if c.Status == classify.StatusSousTest {
			ann.set(t, i, ann.Columns.Remarks, c.Remark)
		}

		ann.Statuses[i] = c.Status.Color()
	}

	return ann, nil
}
