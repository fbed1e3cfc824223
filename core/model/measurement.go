package model

import (
	"fmt"
	"strings"
)

// Field identifies one of the four iris measurements.
type Field string

const (
	FieldSepalLength Field = "sepal_length"
	FieldSepalWidth  Field = "sepal_width"
	FieldPetalLength Field = "petal_length"
	FieldPetalWidth  Field = "petal_width"
)

// Fields lists the measurement fields in canonical order. Validation and
// rendering walk the fields in this order.
var Fields = []Field{FieldSepalLength, FieldSepalWidth, FieldPetalLength, FieldPetalWidth}

// Label returns the human readable name of the field ("sepal length").
func (f Field) Label() string {
	return strings.ReplaceAll(string(f), "_", " ")
}

// Measurement holds the four iris features in centimetres.
type Measurement struct {
	SepalLength float64 `json:"sepal_length"`
	SepalWidth  float64 `json:"sepal_width"`
	PetalLength float64 `json:"petal_length"`
	PetalWidth  float64 `json:"petal_width"`
}

// Get returns the value stored for f.
func (m Measurement) Get(f Field) (float64, error) {
	switch f {
	case FieldSepalLength:
		return m.SepalLength, nil
	case FieldSepalWidth:
		return m.SepalWidth, nil
	case FieldPetalLength:
		return m.PetalLength, nil
	case FieldPetalWidth:
		return m.PetalWidth, nil
	}
	return 0, fmt.Errorf("unknown field %q", f)
}

// Set stores v for f.
func (m *Measurement) Set(f Field, v float64) error {
	switch f {
	case FieldSepalLength:
		m.SepalLength = v
	case FieldSepalWidth:
		m.SepalWidth = v
	case FieldPetalLength:
		m.PetalLength = v
	case FieldPetalWidth:
		m.PetalWidth = v
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Vector returns the features in canonical field order.
func (m Measurement) Vector() []float64 {
	return []float64{m.SepalLength, m.SepalWidth, m.PetalLength, m.PetalWidth}
}

// Range is an inclusive numeric bound applied to every measurement.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }
