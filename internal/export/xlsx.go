// Package export writes desk tables to spreadsheets for printing.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Requests"

// Sheet is one table ready to be written.
type Sheet struct {
	Title          string
	PrintDateLabel string
	PrintedAt      time.Time
	Headers        []string
	Rows           [][]string
	RightToLeft    bool
}

// Row layout of the written sheet.
const (
	titleRow  = 1
	dateRow   = 2
	headerRow = 3
	firstData = 4
)

func build(s Sheet) (*excelize.File, error) {
	if len(s.Headers) == 0 {
		return nil, fmt.Errorf("sheet %q has no columns", s.Title)
	}

	f := excelize.NewFile()
	done := false
	defer func() {
		if !done {
			f.Close()
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	rtl := s.RightToLeft
	if err := f.SetSheetView(sheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, fmt.Errorf("set sheet view: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.Headers))
	if err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	titleCell := cell(1, titleRow)
	if err := f.MergeCell(sheetName, titleCell, fmt.Sprintf("%s%d", lastCol, titleRow)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, titleCell, s.Title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, titleCell, titleCell, titleStyle); err != nil {
		return nil, err
	}

	printedAt := s.PrintedAt
	if printedAt.IsZero() {
		printedAt = time.Now()
	}
	if err := f.SetCellValue(sheetName, cell(1, dateRow), s.PrintDateLabel); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, cell(2, dateRow), printedAt.Format("2006-01-02 15:04")); err != nil {
		return nil, err
	}

	for i, h := range s.Headers {
		c := cell(i+1, headerRow)
		if err := f.SetCellValue(sheetName, c, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, c, c, headerStyle); err != nil {
			return nil, err
		}
	}

	for r, row := range s.Rows {
		for i, v := range row {
			if err := f.SetCellValue(sheetName, cell(i+1, firstData+r), v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, 15); err != nil {
		return nil, err
	}
	done = true
	return f, nil
}

// Write renders s as an XLSX workbook to w.
func Write(w io.Writer, s Sheet) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Save renders s to an XLSX file at path.
func Save(path string, s Sheet) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
