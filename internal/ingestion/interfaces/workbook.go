package interfaces

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one tabular sheet: a header row plus data rows, cells as raw values.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// ReadWorkbook loads every non-empty sheet of an xlsx stream. The first row of
// each sheet is treated as the header.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook: open: %w", err)
	}
	defer file.Close()
	return readSheets(file)
}

// ReadWorkbookFile loads a workbook from disk.
func ReadWorkbookFile(path string) ([]Sheet, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", path, err)
	}
	defer file.Close()
	return readSheets(file)
}

func readSheets(file *excelize.File) ([]Sheet, error) {
	var sheets []Sheet
	for _, name := range file.GetSheetList() {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("workbook: read sheet %s: %w", name, err)
		}
		if len(rows) < 2 {
			continue
		}
		sheet := Sheet{Name: name, Header: rows[0]}
		for _, row := range rows[1:] {
			cells := make([]any, len(row))
			for i, cell := range row {
				cells[i] = cell
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		sheets = append(sheets, sheet)
	}
	if len(sheets) == 0 {
		return nil, errors.New("workbook: no data sheets")
	}
	return sheets, nil
}
