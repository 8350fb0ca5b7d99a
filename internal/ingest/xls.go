package ingest

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// readXLS parses the first sheet of a legacy BIFF workbook into a raw
// table. Excelize only reads OOXML, so xls files go through a dedicated
// reader and land in the same grid path as xlsx.
func readXLS(raw []byte, headerRow, maxRows int) (*rawTable, bool, error) {
	grid, err := xlsGrid(raw)
	if err != nil {
		return nil, false, err
	}
	return gridTable(grid, headerRow, maxRows)
}

// readXLSHeadless reads the first n raw rows of the first sheet with no
// header assumption, for header-row detection.
func readXLSHeadless(raw []byte, n int) ([][]string, error) {
	grid, err := xlsGrid(raw)
	if err != nil {
		return nil, err
	}
	if len(grid) > n {
		grid = grid[:n]
	}
	return grid, nil
}

func xlsGrid(raw []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, err
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
