package table

import (
	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/config"
)

// StyleFromConfig builds the export style from the style configuration.
func StyleFromConfig(cfg config.StyleConfig) Style {
	return Style{
		Fills: map[classify.Color]string{
			classify.ColorGreen:  cfg.Green,
			classify.ColorYellow: cfg.Yellow,
			classify.ColorRed:    cfg.Red,
		},
		ColumnWidth: cfg.Width(),
	}
}

// Write saves t to path in the format implied by the path's extension.
// ann may be nil; styling only applies to XLSX output.
func Write(t *Table, path string, ann *Annotation, style Style) error {
	kind, err := KindOf(path)
	if err != nil {
		return err
	}

	switch kind {
	case KindXLSX:
		return writeXLSXFile(t, path, ann, style)
	default:
		return writeCSVFile(t, path)
	}
}
