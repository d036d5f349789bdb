package table

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hargabyte/bomcov/internal/classify"
)

// Style carries the spreadsheet styling applied on export.
type Style struct {
	Fills       map[classify.Color]string // RGB hex per colour intent
	ColumnWidth float64                   // 0 keeps the workbook widths
}

// ReadXLSX reads the first worksheet of a workbook. The first row is the header.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	t := &Table{Kind: KindXLSX, Sheet: sheets[0]}
	if len(rows) > 0 {
		t.Header = rows[0]
		t.Rows = rows[1:]
	}
	return t, nil
}

// writeXLSXFile writes t to path. When t was read from a workbook, that workbook is
// reopened and only the header and the cells listed in ann.Edits are rewritten, so
// other sheets, untouched cell values and their types, formulas and formatting
// survive. Otherwise a new workbook is created with every cell.
func writeXLSXFile(t *Table, path string, ann *Annotation, style Style) error {
	var (
		f     *excelize.File
		sheet string
		err   error
	)

	reopen := t.Kind == KindXLSX && t.Source != "" && t.Sheet != ""
	if reopen {
		f, err = excelize.OpenFile(t.Source)
		if err != nil {
			return fmt.Errorf("reopen workbook: %w", err)
		}
		sheet = t.Sheet
	} else {
		f = excelize.NewFile()
		sheet = f.GetSheetName(0)
	}
	defer f.Close()

	for col, name := range t.Header {
		if err := setCell(f, sheet, col, 0, name); err != nil {
			return err
		}
	}

	if reopen {
		if ann != nil {
			for _, ref := range ann.Edits {
				if err := setCell(f, sheet, ref.Col, ref.Row+1, t.Cell(ref.Row, ref.Col)); err != nil {
					return err
				}
			}
		}
	} else {
		width := t.Width()
		for r := range t.Rows {
			for col := 0; col < width; col++ {
				if err := setCell(f, sheet, col, r+1, t.Cell(r, col)); err != nil {
					return err
				}
			}
		}
	}

	if ann != nil {
		if err := applyStyle(f, sheet, t, ann, style); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}

// applyStyle fills every annotated row with its colour, sets column widths and
// restricts the status column to the PPVS values.
func applyStyle(f *excelize.File, sheet string, t *Table, ann *Annotation, style Style) error {
	width := t.Width()
	if width == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}

	styleIDs := make(map[classify.Color]int)
	for color, rgb := range style.Fills {
		if color == classify.ColorNone || rgb == "" {
			continue
		}
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(rgb, "#")}},
		})
		if err != nil {
			return fmt.Errorf("create %s style: %w", color, err)
		}
		styleIDs[color] = id
	}

	for r, color := range ann.Statuses {
		id, ok := styleIDs[color]
		if !ok {
			continue
		}
		row := r + 2
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), id); err != nil {
			return fmt.Errorf("style row %d: %w", row, err)
		}
	}

	if style.ColumnWidth > 0 {
		if err := f.SetColWidth(sheet, "A", lastCol, style.ColumnWidth); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if ann.Columns.Status >= 0 && len(t.Rows) > 0 {
		col, err := excelize.ColumnNumberToName(ann.Columns.Status + 1)
		if err != nil {
			return err
		}
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s%d", col, col, len(t.Rows)+1)
		if err := dv.SetDropList(classify.PPVSValues); err != nil {
			return fmt.Errorf("status drop-down: %w", err)
		}
		if err := f.AddDataValidation(sheet, dv); err != nil {
			return fmt.Errorf("status drop-down: %w", err)
		}
	}

	return nil
}
