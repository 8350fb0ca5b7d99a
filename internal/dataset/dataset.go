// Package dataset defines the normalized in-memory table produced by
// ingestion and the derived column classification consumed by the chart
// builders. Cell values are a tagged variant resolved once at ingestion
// time; downstream code switches on the value kind instead of re-inferring
// types.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindInteger
	KindFloat
	KindText
	KindDateTime
)

// String returns the kind name used in serialized form and log output.
func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindDateTime:
		return "datetime"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero value is the missing placeholder.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Missing returns the null placeholder value.
func Missing() Value { return Value{} }

// Int wraps an integer cell value.
func Int(v int64) Value { return Value{kind: KindInteger, i: v} }

// Float wraps a floating-point cell value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text wraps a text cell value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Time wraps a datetime cell value.
func Time(v time.Time) Value { return Value{kind: KindDateTime, t: v} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether the value is the null placeholder.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Int returns the integer payload. Valid only for KindInteger.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. Valid only for KindFloat.
func (v Value) Float() float64 { return v.f }

// Text returns the text payload. Valid only for KindText.
func (v Value) Text() string { return v.s }

// Time returns the datetime payload. Valid only for KindDateTime.
func (v Value) Time() time.Time { return v.t }

// Numeric returns the value as a float64 when it holds a number.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// String renders the value for display. Missing renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindDateTime:
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Column is an ordered sequence of values sharing one semantic kind.
// Width records the storage width chosen by the optimizer: 8/16/32/64
// for integer columns, 32/64 for float columns, 0 otherwise.
type Column struct {
	Name   string
	Kind   ValueKind
	Width  int
	Values []Value
}

// IsEmpty reports whether every value in the column is missing.
func (c *Column) IsEmpty() bool {
	for _, v := range c.Values {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

// MinMax returns the numeric bounds over the non-missing values.
// ok is false for non-numeric columns and all-missing columns.
func (c *Column) MinMax() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range c.Values {
		f, isNum := v.Numeric()
		if !isNum {
			if !v.IsMissing() {
				return 0, 0, false
			}
			continue
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// Dataset is an ordered collection of equally sized, uniquely named columns.
type Dataset struct {
	cols []Column
}

// New builds a Dataset, enforcing the shape invariants: all columns have
// the same length and column names are unique and non-empty.
func New(cols []Column) (*Dataset, error) {
	seen := make(map[string]struct{}, len(cols))
	rows := -1
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column with empty name")
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Dataset{cols: cols}, nil
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0].Values)
}

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.cols) }

// Columns returns the columns in order.
func (d *Dataset) Columns() []Column { return d.cols }

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.cols {
		if d.cols[i].Name == name {
			return &d.cols[i], true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// DropEmpty removes columns that are missing in every row, then rows that
// are missing in every remaining column. Returns a new Dataset; the
// receiver is not modified.
func (d *Dataset) DropEmpty() *Dataset {
	kept := make([]Column, 0, len(d.cols))
	for _, c := range d.cols {
		if !c.IsEmpty() {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		return &Dataset{}
	}

	rows := len(kept[0].Values)
	keepRow := make([]bool, rows)
	for _, c := range kept {
		for i, v := range c.Values {
			if !v.IsMissing() {
				keepRow[i] = true
			}
		}
	}

	out := make([]Column, len(kept))
	for i, c := range kept {
		vals := make([]Value, 0, rows)
		for r, v := range c.Values {
			if keepRow[r] {
				vals = append(vals, v)
			}
		}
		out[i] = Column{Name: c.Name, Kind: c.Kind, Width: c.Width, Values: vals}
	}
	return &Dataset{cols: out}
}

// HeadRows renders the first n rows as strings for tabular preview.
func (d *Dataset) HeadRows(n int) [][]string {
	if n > d.RowCount() {
		n = d.RowCount()
	}
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(d.cols))
		for c := range d.cols {
			row[c] = d.cols[c].Values[r].String()
		}
		rows[r] = row
	}
	return rows
}
