package dataset

import (
	"encoding/json"
	"fmt"
	"time"
)

// Serialized form used by the session store. Each column carries its kind
// so values decode without re-running inference: integers and floats are
// JSON numbers, text is a string, datetimes are RFC 3339 strings, and
// missing cells are null.
type columnJSON struct {
	Name   string            `json:"name"`
	Kind   string            `json:"kind"`
	Width  int               `json:"width,omitempty"`
	Values []json.RawMessage `json:"values"`
}

type datasetJSON struct {
	Columns []columnJSON `json:"columns"`
}

var jsonNull = json.RawMessage("null")

// MarshalJSON implements json.Marshaler.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	out := datasetJSON{Columns: make([]columnJSON, 0, d.ColumnCount())}
	for _, c := range d.Columns() {
		cj := columnJSON{
			Name:   c.Name,
			Kind:   c.Kind.String(),
			Width:  c.Width,
			Values: make([]json.RawMessage, len(c.Values)),
		}
		for i, v := range c.Values {
			raw, err := marshalValue(v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", c.Name, i, err)
			}
			cj.Values[i] = raw
		}
		out.Columns = append(out.Columns, cj)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var in datasetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cols := make([]Column, len(in.Columns))
	for i, cj := range in.Columns {
		kind, err := parseKind(cj.Kind)
		if err != nil {
			return fmt.Errorf("column %q: %w", cj.Name, err)
		}
		col := Column{Name: cj.Name, Kind: kind, Width: cj.Width, Values: make([]Value, len(cj.Values))}
		for j, raw := range cj.Values {
			v, err := unmarshalValue(kind, raw)
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", cj.Name, j, err)
			}
			col.Values[j] = v
		}
		cols[i] = col
	}
	decoded, err := New(cols)
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}

func marshalValue(v Value) (json.RawMessage, error) {
	switch v.Kind() {
	case KindMissing:
		return jsonNull, nil
	case KindInteger:
		return json.Marshal(v.Int())
	case KindFloat:
		return json.Marshal(v.Float())
	case KindText:
		return json.Marshal(v.Text())
	case KindDateTime:
		return json.Marshal(v.Time().Format(time.RFC3339Nano))
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind())
	}
}

func unmarshalValue(kind ValueKind, raw json.RawMessage) (Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Missing(), nil
	}
	switch kind {
	case KindInteger:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return Missing(), err
		}
		return Int(i), nil
	case KindFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Missing(), err
		}
		return Float(f), nil
	case KindDateTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Missing(), err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Missing(), err
		}
		return Time(t), nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Missing(), err
		}
		return Text(s), nil
	}
}

func parseKind(s string) (ValueKind, error) {
	switch s {
	case "integer":
		return KindInteger, nil
	case "float":
		return KindFloat, nil
	case "text":
		return KindText, nil
	case "datetime":
		return KindDateTime, nil
	case "missing":
		return KindMissing, nil
	default:
		return KindMissing, fmt.Errorf("unknown column kind %q", s)
	}
}
