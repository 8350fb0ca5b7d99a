package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/tabviz/internal/dataset"
)

// rawTable is the untyped parse result: a header plus string cells where
// "" means missing. Typing into a dataset happens once, after header
// recovery had its chance to re-anchor the header row.
type rawTable struct {
	header []string
	rows   [][]string
}

func (t *rawTable) width() int { return len(t.header) }

// placeholderName is the auto-generated name used when a header cell is
// blank. Header recovery keys off this pattern.
func placeholderName(idx int) string {
	return "column_" + strconv.Itoa(idx+1)
}

// normalizeHeader trims header cells, strips a leading BOM, fills blanks
// with placeholder names and de-duplicates repeats.
func normalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, h := range cells {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = placeholderName(i)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = h + "_" + strconv.Itoa(n+1)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}

// cell parse layouts tried in order for datetime inference.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"01-02-06", // excelize default date rendering
}

// toDataset types each column of a raw table by scanning its non-missing
// cells: all-integral becomes an integer column, numeric-with-fractions a
// float column, all-parseable-dates a datetime column, anything else text.
func (t *rawTable) toDataset() (*dataset.Dataset, error) {
	cols := make([]dataset.Column, t.width())
	for c := range t.header {
		cells := make([]string, len(t.rows))
		for r, row := range t.rows {
			if c < len(row) {
				cells[r] = strings.TrimSpace(row[c])
			}
		}
		cols[c] = typeColumn(t.header[c], cells)
	}
	return dataset.New(cols)
}

func typeColumn(name string, cells []string) dataset.Column {
	kind := inferKind(cells)
	col := dataset.Column{Name: name, Kind: kind, Values: make([]dataset.Value, len(cells))}
	if kind == dataset.KindInteger || kind == dataset.KindFloat {
		col.Width = 64
	}
	for i, s := range cells {
		col.Values[i] = coerce(kind, s)
	}
	return col
}

func inferKind(cells []string) dataset.ValueKind {
	allInt, allFloat, allTime := true, true, true
	any := false
	for _, s := range cells {
		if s == "" {
			continue
		}
		any = true
		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloat = false
			}
		}
		if allTime {
			if _, ok := parseTime(s); !ok {
				allTime = false
			}
		}
		if !allInt && !allFloat && !allTime {
			break
		}
	}
	switch {
	case !any:
		return dataset.KindText
	case allInt:
		return dataset.KindInteger
	case allFloat:
		return dataset.KindFloat
	case allTime:
		return dataset.KindDateTime
	default:
		return dataset.KindText
	}
}

func coerce(kind dataset.ValueKind, s string) dataset.Value {
	if s == "" {
		return dataset.Missing()
	}
	switch kind {
	case dataset.KindInteger:
		i, _ := strconv.ParseInt(s, 10, 64)
		return dataset.Int(i)
	case dataset.KindFloat:
		f, _ := strconv.ParseFloat(s, 64)
		return dataset.Float(f)
	case dataset.KindDateTime:
		t, _ := parseTime(s)
		return dataset.Time(t)
	default:
		return dataset.Text(s)
	}
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func rowIsEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
