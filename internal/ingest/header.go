package ingest

import (
	"regexp"
	"strings"
)

// Spreadsheets exported from formatted reports often carry title or blank
// rows above the real header, which leaves the assumed header position
// full of empty cells and the parse full of placeholder column names.
// Header recovery re-reads the first few raw rows and looks for the first
// row that plausibly names columns.

// headerScanRows bounds the recovery scan; real header rows sit near the top.
const headerScanRows = 10

var placeholderPattern = regexp.MustCompile(`^column_\d+$`)

func isPlaceholder(name string) bool {
	return placeholderPattern.MatchString(name)
}

// mostlyPlaceholders reports whether more than half of the column names
// were auto-generated, the trigger condition for header recovery.
func mostlyPlaceholders(names []string) bool {
	n := 0
	for _, name := range names {
		if isPlaceholder(name) {
			n++
		}
	}
	return n*2 > len(names)
}

// findHeaderRow scans raw rows for the first that qualifies as a header:
// at least two non-missing cells and at least one cell longer than two
// characters. The length check rejects rows of short numeric tokens.
// Returns the row index and whether a qualifying row was found.
func findHeaderRow(rows [][]string) (int, bool) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		nonEmpty, hasLong := 0, false
		for _, cell := range rows[i] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			nonEmpty++
			if len(cell) > 2 {
				hasLong = true
			}
		}
		if nonEmpty >= 2 && hasLong {
			return i, true
		}
	}
	return 0, false
}
