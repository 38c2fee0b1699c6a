package sheet

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Report row layout: three title lines, a blank row, the header row, data.
const (
	ReportHeaderRow = 5
	ReportDataRow   = 6
)

// Report is a titled table export.
type Report struct {
	Sheet     string
	Title     string
	Subtitle  string
	Generated time.Time
	Columns   []string
	Rows      [][]string
}

// WriteReport writes rep as a single-sheet xlsx workbook.
func WriteReport(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet, err := renameDefault(f, rep.Sheet)
	if err != nil {
		return err
	}

	titles := []string{
		rep.Title,
		rep.Subtitle,
		"Dibuat: " + rep.Generated.Format("02-01-2006 15:04"),
	}
	for i, title := range titles {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), title); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
	}
	if len(rep.Columns) > 1 {
		last, _ := excelize.ColumnNumberToName(len(rep.Columns))
		if err := f.MergeCell(sheet, "A1", last+"1"); err != nil {
			return fmt.Errorf("merge title: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return fmt.Errorf("style title: %w", err)
	}

	if err := writeTable(f, sheet, ReportHeaderRow, rep.Columns, rep.Rows, bold); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteTable writes columns and rows starting at A1 of a sheet named sheet.
func WriteTable(w io.Writer, sheet string, columns []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	name, err := renameDefault(f, sheet)
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := writeTable(f, name, 1, columns, rows, bold); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteMarked writes grid as-is with the cell at (row, col), zero-based,
// filled yellow. It is used to confirm a table's starting position.
func WriteMarked(w io.Writer, grid [][]string, row, col int) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, r := range grid {
		if err := setRow(f, sheet, i+1, r); err != nil {
			return err
		}
	}

	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("mark cell: %w", err)
	}
	fill, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, fill); err != nil {
		return fmt.Errorf("mark cell: %w", err)
	}
	return f.Write(w)
}

func renameDefault(f *excelize.File, sheet string) (string, error) {
	if sheet == "" || sheet == "Sheet1" {
		return "Sheet1", nil
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("name sheet %q: %w", sheet, err)
	}
	return sheet, nil
}

func writeTable(f *excelize.File, sheet string, headerRow int, columns []string, rows [][]string, headerStyle int) error {
	if err := setRow(f, sheet, headerRow, columns); err != nil {
		return err
	}
	if len(columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
		if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	for i, r := range rows {
		if err := setRow(f, sheet, headerRow+1+i, r); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
