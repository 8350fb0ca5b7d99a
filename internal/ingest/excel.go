package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readExcel parses the first sheet of an OOXML workbook into a raw table,
// reading at most maxRows data rows after the header.
func readExcel(raw []byte, headerRow, maxRows int) (*rawTable, bool, error) {
	grid, err := excelGrid(raw)
	if err != nil {
		return nil, false, err
	}
	return gridTable(grid, headerRow, maxRows)
}

// readExcelHeadless reads the first n raw rows of the first sheet with no
// header assumption, for header-row detection.
func readExcelHeadless(raw []byte, n int) ([][]string, error) {
	grid, err := excelGrid(raw)
	if err != nil {
		return nil, err
	}
	if len(grid) > n {
		grid = grid[:n]
	}
	return grid, nil
}

func excelGrid(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// gridTable turns the raw row grid of a workbook sheet into a table. Rows
// before headerRow are skipped; the row at headerRow becomes the header.
// Ragged rows are padded to the widest row so every record aligns with the
// header. The bool reports whether the row cap truncated the sheet.
func gridTable(rows [][]string, headerRow, maxRows int) (*rawTable, bool, error) {
	if headerRow >= len(rows) {
		return nil, false, fmt.Errorf("header row %d beyond sheet end", headerRow)
	}

	width := 0
	for _, r := range rows[headerRow:] {
		if len(r) > width {
			width = len(r)
		}
	}

	table := &rawTable{header: normalizeHeader(padRow(rows[headerRow], width))}
	truncated := false
	for _, r := range rows[headerRow+1:] {
		row := padRow(r, width)
		if rowIsEmpty(row) {
			continue
		}
		if len(table.rows) == maxRows {
			truncated = true
			break
		}
		table.rows = append(table.rows, row)
	}
	return table, truncated, nil
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
