package dataset

import "math"

// Integer width bounds for the downcast ladder. A column only narrows to a
// width whose range contains its [min, max]; anything that does not fit in
// 32 bits stays at the original 64-bit width.
const (
	widthDefault = 64
)

// Optimize narrows the storage width of every numeric column: integer
// columns downcast to the smallest of 8/16/32 bits that holds their range,
// float columns downcast to 32 bits when every value survives the round
// trip. Text and datetime columns pass through. A column whose contents
// contradict its declared kind is left unmodified; per-column failure
// never aborts the pass.
//
// Width is column metadata consumed by serialization and the preview
// surface; in-memory cells keep their 64-bit representation in Value.
func Optimize(d *Dataset) *Dataset {
	cols := d.Columns()
	out := make([]Column, len(cols))
	for i, c := range cols {
		if narrowed, ok := optimizeColumn(c); ok {
			out[i] = narrowed
		} else {
			out[i] = c
		}
	}
	opt, err := New(out)
	if err != nil {
		// Shape is unchanged, so this cannot happen; fall back to the input.
		return d
	}
	return opt
}

func optimizeColumn(c Column) (Column, bool) {
	switch c.Kind {
	case KindInteger:
		return downcastInt(c)
	case KindFloat:
		return downcastFloat(c)
	default:
		return c, false
	}
}

func downcastInt(c Column) (Column, bool) {
	min, max, ok := c.MinMax()
	if !ok {
		return c, false
	}
	width := intWidth(int64(min), int64(max))
	c.Width = width
	return c, true
}

func intWidth(min, max int64) int {
	switch {
	case min >= math.MinInt8 && max <= math.MaxInt8:
		return 8
	case min >= math.MinInt16 && max <= math.MaxInt16:
		return 16
	case min >= math.MinInt32 && max <= math.MaxInt32:
		return 32
	default:
		return widthDefault
	}
}

func downcastFloat(c Column) (Column, bool) {
	lossless := true
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		if v.Kind() != KindFloat {
			// Mixed content slipped through introspection; leave as-is.
			return c, false
		}
		f := v.Float()
		if float64(float32(f)) != f {
			lossless = false
			break
		}
	}
	if lossless {
		c.Width = 32
	} else {
		c.Width = widthDefault
	}
	return c, true
}
