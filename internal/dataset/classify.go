package dataset

// Classification partitions column names by representation kind. It is a
// derived, read-only view: recompute it whenever the dataset changes.
type Classification struct {
	Numeric     []string
	Categorical []string
	DateTime    []string
}

// Classify buckets every column by its representation kind. Integer and
// float columns are numeric, text columns are categorical, datetime
// columns are datetime. No value-based inference happens here; kinds were
// resolved at ingestion.
func Classify(d *Dataset) Classification {
	var c Classification
	for _, col := range d.Columns() {
		switch col.Kind {
		case KindInteger, KindFloat:
			c.Numeric = append(c.Numeric, col.Name)
		case KindDateTime:
			c.DateTime = append(c.DateTime, col.Name)
		default:
			c.Categorical = append(c.Categorical, col.Name)
		}
	}
	return c
}

// Summary holds the headline counts shown above the data preview.
type Summary struct {
	Rows        int `json:"rows"`
	Columns     int `json:"columns"`
	Numeric     int `json:"numeric_columns"`
	Categorical int `json:"categorical_columns"`
}

// Summarize computes the preview counts for a dataset.
func Summarize(d *Dataset) Summary {
	c := Classify(d)
	return Summary{
		Rows:        d.RowCount(),
		Columns:     d.ColumnCount(),
		Numeric:     len(c.Numeric),
		Categorical: len(c.Categorical),
	}
}

// ColumnStats describes one numeric column for the preview surface.
type ColumnStats struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Describe computes summary statistics for every numeric column.
func Describe(d *Dataset) []ColumnStats {
	var out []ColumnStats
	for _, col := range d.Columns() {
		if col.Kind != KindInteger && col.Kind != KindFloat {
			continue
		}
		stats := ColumnStats{Name: col.Name}
		var sum float64
		first := true
		for _, v := range col.Values {
			f, ok := v.Numeric()
			if !ok {
				continue
			}
			stats.Count++
			sum += f
			if first || f < stats.Min {
				stats.Min = f
			}
			if first || f > stats.Max {
				stats.Max = f
			}
			first = false
		}
		if stats.Count > 0 {
			stats.Mean = sum / float64(stats.Count)
		}
		out = append(out, stats)
	}
	return out
}
