package spreadsheet

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 10
	maxColWidth = 60
)

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return errors.Wrap(err, "naming cell")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", idx+1)
		}
	}
	return nil
}

// formatSheet makes the header bold, adds an autofilter on it and sizes columns to their content.
func formatSheet(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return errors.Wrap(err, "reading rows")
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	cols := len(rows[0])
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return errors.Wrap(err, "naming column")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return errors.Wrap(err, "styling header")
	}
	if err := f.AutoFilter(sheet, "A1:"+lastCol+"1", nil); err != nil {
		return errors.Wrap(err, "adding autofilter")
	}

	widths := make([]float64, cols)
	for rIdx, row := range rows {
		for cIdx := 0; cIdx < cols && cIdx < len(row); cIdx++ {
			w := float64(utf8.RuneCountInString(row[cIdx])) * 1.1
			if rIdx == 0 {
				w += 1.5
			}
			if w > widths[cIdx] {
				widths[cIdx] = w
			}
		}
	}
	for cIdx, w := range widths {
		switch {
		case w < minColWidth:
			w = minColWidth
		case w > maxColWidth:
			w = maxColWidth
		}
		col, _ := excelize.ColumnNumberToName(cIdx + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return errors.Wrap(err, "sizing column")
		}
	}
	return nil
}
