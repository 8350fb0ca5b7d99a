package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
)

// readCSV parses CSV bytes into a raw table. Rows before headerRow are
// skipped and the row at headerRow becomes the header. Data rows are read
// in chunks of chunkRows and fully-empty rows are dropped per chunk, so
// peak memory is bounded by maxRows surviving rows plus one chunk.
// The second return value reports whether the row cap cut the read short.
func readCSV(ctx context.Context, raw []byte, headerRow, maxRows, chunkRows int) (*rawTable, bool, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	for i := 0; i < headerRow; i++ {
		if _, err := r.Read(); err != nil {
			return nil, false, err
		}
	}

	hdr, err := r.Read()
	if err != nil {
		return nil, false, err
	}
	table := &rawTable{header: normalizeHeader(hdr)}

	if chunkRows <= 0 {
		chunkRows = 1000
	}

	truncated := false
	for len(table.rows) < maxRows {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		chunk, eof, err := readChunk(r, chunkRows)
		if err != nil {
			return nil, false, err
		}
		for _, row := range chunk {
			if rowIsEmpty(row) {
				continue
			}
			table.rows = append(table.rows, row)
			if len(table.rows) == maxRows {
				break
			}
		}
		if eof {
			return table, false, nil
		}
	}

	// Cap reached; check whether any data remains. Blank trailing rows do
	// not count as truncation.
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if !rowIsEmpty(rec) {
			truncated = true
			break
		}
	}
	return table, truncated, nil
}

// readChunk reads up to n records, reporting EOF via the bool.
func readChunk(r *csv.Reader, n int) ([][]string, bool, error) {
	out := make([][]string, 0, n)
	for len(out) < n {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		row := make([]string, len(rec))
		copy(row, rec)
		out = append(out, row)
	}
	return out, false, nil
}

// readCSVHeadless reads the first n raw rows with no header assumption,
// for header-row detection.
func readCSVHeadless(raw []byte, n int) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for len(rows) < n {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]string, len(rec))
		copy(row, rec)
		rows = append(rows, row)
	}
	return rows, nil
}
