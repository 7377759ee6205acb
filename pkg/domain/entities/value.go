package entities

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValueKind represents the shape of a named variable
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindSeries
	KindText
	// KindDummy carries no data; it only orders execution between disciplines.
	KindDummy
)

// String method for ValueKind enum
func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindSeries:
		return "Series"
	case KindText:
		return "Text"
	case KindDummy:
		return "Dummy"
	default:
		return "Unknown"
	}
}

// Value is a named variable payload: a scalar, a time series, a text or a dummy
type Value struct {
	kind   ValueKind
	scalar float64
	series TimeSeries
	text   string
}

// ScalarValue wraps a float
func ScalarValue(v float64) Value { return Value{kind: KindScalar, scalar: v} }

// SeriesValue wraps a time series
func SeriesValue(ts TimeSeries) Value { return Value{kind: KindSeries, series: ts} }

// TextValue wraps a string parameter
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// DummyValue returns the placeholder used by ordering-only coupling variables
func DummyValue() Value { return Value{kind: KindDummy} }

// Kind returns the value kind
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the scalar payload (0 for other kinds)
func (v Value) Float() float64 { return v.scalar }

// Series returns the time-series payload (empty for other kinds)
func (v Value) Series() TimeSeries { return v.series }

// Text returns the text payload
func (v Value) Text() string { return v.text }

// Equal reports whether two values have the same kind and identical payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == o.scalar || (math.IsNaN(v.scalar) && math.IsNaN(o.scalar))
	case KindSeries:
		return v.series.Equal(o.series)
	case KindText:
		return v.text == o.text
	default:
		return true
	}
}

// String renders the value for logs and text reports
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return fmt.Sprintf("%g", v.scalar)
	case KindSeries:
		return v.series.String()
	case KindText:
		return v.text
	default:
		return "<dummy>"
	}
}

// MarshalJSON encodes scalars as numbers (null for NaN), series as objects and texts as strings
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		if math.IsNaN(v.scalar) || math.IsInf(v.scalar, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.scalar)
	case KindSeries:
		return json.Marshal(v.series)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}
