package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridTable(t *testing.T) {
	grid := [][]string{
		{"name", "amount", "note"},
		{"widget", "10"},
		nil,
		{"gadget", "25", "x"},
	}

	table, truncated, err := gridTable(grid, 0, 10)
	require.NoError(t, err)

	assert.False(t, truncated)
	assert.Equal(t, []string{"name", "amount", "note"}, table.header)
	require.Len(t, table.rows, 2)

	// Ragged rows pad to the header width.
	assert.Equal(t, []string{"widget", "10", ""}, table.rows[0])
	assert.Equal(t, []string{"gadget", "25", "x"}, table.rows[1])
}

func TestGridTableHeaderOffset(t *testing.T) {
	grid := [][]string{
		{"Report"},
		{"name", "amount"},
		{"widget", "10"},
	}

	table, _, err := gridTable(grid, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "amount"}, table.header)
	require.Len(t, table.rows, 1)
}

func TestGridTableTruncates(t *testing.T) {
	grid := [][]string{
		{"n"},
		{"1"},
		{"2"},
		{"3"},
	}

	table, truncated, err := gridTable(grid, 0, 2)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, table.rows, 2)
}

func TestGridTableBlankTrailerNotTruncation(t *testing.T) {
	grid := [][]string{
		{"n"},
		{"1"},
		{"2"},
		{""},
		nil,
	}

	table, truncated, err := gridTable(grid, 0, 2)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, table.rows, 2)
}

func TestGridTableHeaderBeyondEnd(t *testing.T) {
	_, _, err := gridTable([][]string{{"only"}}, 3, 10)
	assert.Error(t, err)
}
