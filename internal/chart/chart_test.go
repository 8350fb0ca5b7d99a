package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tabviz/internal/dataset"
)

func salesDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.Column{
		{Name: "Region", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.Text("North"), dataset.Text("North"), dataset.Text("South"),
		}},
		{Name: "Sales", Kind: dataset.KindInteger, Values: []dataset.Value{
			dataset.Int(10), dataset.Int(20), dataset.Int(5),
		}},
	})
	require.NoError(t, err)
	return ds
}

func TestBuildPieGroupsByCategory(t *testing.T) {
	spec, err := Build(salesDataset(t), KindPie, Selections{Category: "Region", Value: "Sales"})
	require.NoError(t, err)

	assert.Equal(t, KindPie, spec.Kind)
	assert.Equal(t, "Sales Distribution by Region", spec.Title)
	assert.Equal(t, []string{"North", "South"}, spec.Labels)
	assert.Equal(t, []float64{30, 5}, spec.Values)
}

func TestBuildPieDefaultsToFirstCategorical(t *testing.T) {
	spec, err := Build(salesDataset(t), KindPie, Selections{})
	require.NoError(t, err)

	assert.Equal(t, "Region", spec.XLabel)
	assert.Equal(t, "Sales", spec.YLabel)
	assert.Equal(t, []float64{30, 5}, spec.Values)
}

func TestBuildPieSkipsMissingCategories(t *testing.T) {
	ds, err := dataset.New([]dataset.Column{
		{Name: "cat", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.Text("a"), dataset.Missing(), dataset.Text("a"),
		}},
		{Name: "v", Kind: dataset.KindInteger, Values: []dataset.Value{
			dataset.Int(1), dataset.Int(100), dataset.Int(2),
		}},
	})
	require.NoError(t, err)

	spec, err := Build(ds, KindPie, Selections{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, spec.Labels)
	assert.Equal(t, []float64{3}, spec.Values)
}

func TestBuildBar(t *testing.T) {
	spec, err := Build(salesDataset(t), KindBar, Selections{X: "Region", Y: "Sales"})
	require.NoError(t, err)

	assert.Equal(t, "Sales by Region", spec.Title)
	assert.Equal(t, []string{"North", "North", "South"}, spec.Labels)
	assert.Equal(t, []float64{10, 20, 5}, spec.Values)
}

func TestBuildBarSkipsMissingValues(t *testing.T) {
	ds, err := dataset.New([]dataset.Column{
		{Name: "x", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.Text("a"), dataset.Text("b"), dataset.Text("c"),
		}},
		{Name: "y", Kind: dataset.KindInteger, Values: []dataset.Value{
			dataset.Int(1), dataset.Missing(), dataset.Int(3),
		}},
	})
	require.NoError(t, err)

	spec, err := Build(ds, KindBar, Selections{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, spec.Labels)
	assert.Equal(t, []float64{1, 3}, spec.Values)
}

func TestBuildLineWithDateTimeAxis(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds, err := dataset.New([]dataset.Column{
		{Name: "when", Kind: dataset.KindDateTime, Values: []dataset.Value{
			dataset.Time(ts), dataset.Time(ts.AddDate(0, 0, 1)),
		}},
		{Name: "amount", Kind: dataset.KindFloat, Values: []dataset.Value{
			dataset.Float(1.5), dataset.Float(2.5),
		}},
	})
	require.NoError(t, err)

	spec, err := Build(ds, KindLine, Selections{Column: "amount"})
	require.NoError(t, err)

	assert.Equal(t, "amount Over Time", spec.Title)
	assert.Equal(t, "when", spec.XLabel)
	assert.Equal(t, []string{"2024-01-01 00:00:00", "2024-01-02 00:00:00"}, spec.Labels)
	assert.Equal(t, []float64{1.5, 2.5}, spec.Values)
}

func TestBuildLineFallsBackToIndexAxis(t *testing.T) {
	ds, err := dataset.New([]dataset.Column{
		{Name: "amount", Kind: dataset.KindInteger, Values: []dataset.Value{
			dataset.Int(1), dataset.Int(2), dataset.Int(3),
		}},
	})
	require.NoError(t, err)

	spec, err := Build(ds, KindLine, Selections{})
	require.NoError(t, err)

	assert.Equal(t, "Index", spec.XLabel)
	assert.Equal(t, []string{"0", "1", "2"}, spec.Labels)
}

func TestBuildLineMisalignedDateTimeUsesIndex(t *testing.T) {
	// The datetime column has fewer non-missing entries than the value
	// column, so it cannot serve as the axis.
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds, err := dataset.New([]dataset.Column{
		{Name: "when", Kind: dataset.KindDateTime, Values: []dataset.Value{
			dataset.Time(ts), dataset.Missing(), dataset.Missing(),
		}},
		{Name: "amount", Kind: dataset.KindInteger, Values: []dataset.Value{
			dataset.Int(1), dataset.Int(2), dataset.Int(3),
		}},
	})
	require.NoError(t, err)

	spec, err := Build(ds, KindLine, Selections{})
	require.NoError(t, err)
	assert.Equal(t, "Index", spec.XLabel)
}

func TestBuildErrors(t *testing.T) {
	oneCol, err := dataset.New([]dataset.Column{
		{Name: "only", Kind: dataset.KindInteger, Values: []dataset.Value{dataset.Int(1)}},
	})
	require.NoError(t, err)

	textOnly, err := dataset.New([]dataset.Column{
		{Name: "a", Kind: dataset.KindText, Values: []dataset.Value{dataset.Text("x")}},
		{Name: "b", Kind: dataset.KindText, Values: []dataset.Value{dataset.Text("y")}},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		ds      *dataset.Dataset
		kind    Kind
		sel     Selections
		wantErr error
	}{
		{"bar needs two columns", oneCol, KindBar, Selections{}, ErrInsufficientColumns},
		{"pie needs two columns", oneCol, KindPie, Selections{}, ErrInsufficientColumns},
		{"bar needs a numeric column", textOnly, KindBar, Selections{}, ErrNoNumericColumn},
		{"line needs a numeric column", textOnly, KindLine, Selections{}, ErrNoNumericColumn},
		{"unknown y column", salesDataset(t), KindBar, Selections{Y: "nope"}, ErrUnknownColumn},
		{"unknown category column", salesDataset(t), KindPie, Selections{Category: "nope"}, ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.ds, tt.kind, tt.sel)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var berr *BuildError
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, tt.kind, berr.Kind)
		})
	}
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := Build(salesDataset(t), Kind("scatter"), Selections{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scatter")
}
