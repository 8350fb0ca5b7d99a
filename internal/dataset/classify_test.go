package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds, err := New([]Column{
		{Name: "id", Kind: KindInteger, Values: []Value{Int(1), Int(2), Int(3)}},
		{Name: "score", Kind: KindFloat, Values: []Value{Float(1.5), Float(2.5), Missing()}},
		{Name: "label", Kind: KindText, Values: []Value{Text("a"), Text("b"), Text("a")}},
		{Name: "when", Kind: KindDateTime, Values: []Value{Time(ts), Time(ts.AddDate(0, 0, 1)), Missing()}},
	})
	require.NoError(t, err)
	return ds
}

func TestClassify(t *testing.T) {
	c := Classify(sampleDataset(t))

	assert.Equal(t, []string{"id", "score"}, c.Numeric)
	assert.Equal(t, []string{"label"}, c.Categorical)
	assert.Equal(t, []string{"when"}, c.DateTime)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleDataset(t))

	assert.Equal(t, Summary{Rows: 3, Columns: 4, Numeric: 2, Categorical: 1}, s)
}

func TestDescribe(t *testing.T) {
	stats := Describe(sampleDataset(t))
	require.Len(t, stats, 2)

	assert.Equal(t, ColumnStats{Name: "id", Count: 3, Mean: 2, Min: 1, Max: 3}, stats[0])

	// Missing values are excluded from the aggregates.
	assert.Equal(t, ColumnStats{Name: "score", Count: 2, Mean: 2, Min: 1.5, Max: 2.5}, stats[1])
}

func TestDescribeSkipsNonNumeric(t *testing.T) {
	ds, err := New([]Column{
		{Name: "label", Kind: KindText, Values: []Value{Text("a")}},
	})
	require.NoError(t, err)

	assert.Empty(t, Describe(ds))
}
