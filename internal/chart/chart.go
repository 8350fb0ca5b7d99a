// Package chart builds declarative chart specs from a dataset and the
// user's column selections. A spec names the chart kind, labels and
// label/value series; rendering belongs to the browser-side backend and
// never happens here.
package chart

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/tabviz/internal/dataset"
)

// Kind is the chart type.
type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

// ErrInsufficientColumns indicates the dataset has too few columns for
// the requested chart kind.
var ErrInsufficientColumns = errors.New("not enough columns")

// ErrNoNumericColumn indicates no numeric column is available for the
// value axis.
var ErrNoNumericColumn = errors.New("no numeric column")

// ErrUnknownColumn indicates a selection named a column that does not
// exist in the dataset.
var ErrUnknownColumn = errors.New("unknown column")

// BuildError wraps a column-requirement failure with the chart kind.
type BuildError struct {
	Kind Kind
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s chart: %v", e.Kind, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Selections carries the user's column choices. Empty fields fall back to
// the first suitable column.
type Selections struct {
	X        string `json:"x_col"`
	Y        string `json:"y_col"`
	Category string `json:"cat_col"`
	Value    string `json:"val_col"`
	Column   string `json:"line_col"`
}

// Spec is the declarative chart description handed to the rendering
// backend. Labels/Values are aligned pairs; for line charts Labels may be
// row indices or datetime strings.
type Spec struct {
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Build produces a chart spec. Pure: no side effects on the dataset.
func Build(ds *dataset.Dataset, kind Kind, sel Selections) (*Spec, error) {
	var (
		spec *Spec
		err  error
	)
	switch kind {
	case KindBar:
		spec, err = buildBar(ds, sel)
	case KindLine:
		spec, err = buildLine(ds, sel)
	case KindPie:
		spec, err = buildPie(ds, sel)
	default:
		err = fmt.Errorf("unknown chart kind %q", kind)
	}
	if err != nil {
		return nil, &BuildError{Kind: kind, Err: err}
	}
	return spec, nil
}

func buildBar(ds *dataset.Dataset, sel Selections) (*Spec, error) {
	if ds.ColumnCount() < 2 {
		return nil, ErrInsufficientColumns
	}
	yCol, err := pickNumeric(ds, sel.Y)
	if err != nil {
		return nil, err
	}
	xCol, err := pickAny(ds, sel.X)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, ds.RowCount())
	values := make([]float64, 0, ds.RowCount())
	for i := range yCol.Values {
		v, ok := yCol.Values[i].Numeric()
		if !ok {
			continue
		}
		labels = append(labels, xCol.Values[i].String())
		values = append(values, v)
	}

	return &Spec{
		Kind:   KindBar,
		Title:  fmt.Sprintf("%s by %s", yCol.Name, xCol.Name),
		XLabel: xCol.Name,
		YLabel: yCol.Name,
		Labels: labels,
		Values: values,
	}, nil
}

func buildLine(ds *dataset.Dataset, sel Selections) (*Spec, error) {
	col, err := pickNumeric(ds, sel.Column)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, ds.RowCount())
	for _, v := range col.Values {
		if f, ok := v.Numeric(); ok {
			values = append(values, f)
		}
	}

	// Prefer a datetime axis when one aligns one-to-one with the chosen
	// column's non-missing values; otherwise plot against row order.
	xLabel := "Index"
	labels := make([]string, len(values))
	if dt := alignedDateTime(ds, len(values)); dt != nil {
		xLabel = dt.Name
		i := 0
		for _, v := range dt.Values {
			if !v.IsMissing() {
				labels[i] = v.String()
				i++
			}
		}
	} else {
		for i := range labels {
			labels[i] = fmt.Sprintf("%d", i)
		}
	}

	return &Spec{
		Kind:   KindLine,
		Title:  fmt.Sprintf("%s Over Time", col.Name),
		XLabel: xLabel,
		YLabel: col.Name,
		Labels: labels,
		Values: values,
	}, nil
}

func buildPie(ds *dataset.Dataset, sel Selections) (*Spec, error) {
	if ds.ColumnCount() < 2 {
		return nil, ErrInsufficientColumns
	}
	valCol, err := pickNumeric(ds, sel.Value)
	if err != nil {
		return nil, err
	}
	catCol, err := pickCategory(ds, sel.Category, valCol.Name)
	if err != nil {
		return nil, err
	}

	// Sum values grouped by category, preserving first-seen slice order.
	// Missing categories are dropped; missing values contribute nothing.
	sums := make(map[string]float64)
	var order []string
	for i := range catCol.Values {
		if catCol.Values[i].IsMissing() {
			continue
		}
		key := catCol.Values[i].String()
		if _, seen := sums[key]; !seen {
			order = append(order, key)
			sums[key] = 0
		}
		if f, ok := valCol.Values[i].Numeric(); ok {
			sums[key] += f
		}
	}

	values := make([]float64, len(order))
	for i, key := range order {
		values[i] = sums[key]
	}

	return &Spec{
		Kind:   KindPie,
		Title:  fmt.Sprintf("%s Distribution by %s", valCol.Name, catCol.Name),
		XLabel: catCol.Name,
		YLabel: valCol.Name,
		Labels: order,
		Values: values,
	}, nil
}

// pickNumeric returns the named numeric column, or the first numeric
// column when name is empty.
func pickNumeric(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	cls := dataset.Classify(ds)
	if len(cls.Numeric) == 0 {
		return nil, ErrNoNumericColumn
	}
	if name == "" {
		name = cls.Numeric[0]
	}
	col, ok := ds.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if col.Kind != dataset.KindInteger && col.Kind != dataset.KindFloat {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrNoNumericColumn, name)
	}
	return col, nil
}

// pickAny returns the named column, or the first column when name is empty.
func pickAny(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	if name == "" {
		cols := ds.Columns()
		return &cols[0], nil
	}
	col, ok := ds.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col, nil
}

// pickCategory prefers a true categorical column; when none exists every
// column except the value column is a candidate.
func pickCategory(ds *dataset.Dataset, name, valName string) (*dataset.Column, error) {
	if name != "" {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		return col, nil
	}
	cls := dataset.Classify(ds)
	if len(cls.Categorical) > 0 {
		col, _ := ds.Column(cls.Categorical[0])
		return col, nil
	}
	for i := range ds.Columns() {
		if ds.Columns()[i].Name != valName {
			return &ds.Columns()[i], nil
		}
	}
	return nil, ErrInsufficientColumns
}

// alignedDateTime finds a datetime column whose non-missing count matches
// n. Returns nil when none aligns.
func alignedDateTime(ds *dataset.Dataset, n int) *dataset.Column {
	for i := range ds.Columns() {
		col := &ds.Columns()[i]
		if col.Kind != dataset.KindDateTime {
			continue
		}
		count := 0
		for _, v := range col.Values {
			if !v.IsMissing() {
				count++
			}
		}
		if count == n {
			return col
		}
	}
	return nil
}
