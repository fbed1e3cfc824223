package form

import (
	"strconv"
	"sync"

	"github.com/kilianp07/iris/core/model"
)

// Values are the raw, unparsed contents of the form.
type Values struct {
	Model       string `json:"model"`
	SepalLength string `json:"sepal_length"`
	SepalWidth  string `json:"sepal_width"`
	PetalLength string `json:"petal_length"`
	PetalWidth  string `json:"petal_width"`
}

// Get returns the raw value of a measurement field.
func (v Values) Get(f model.Field) string {
	switch f {
	case model.FieldSepalLength:
		return v.SepalLength
	case model.FieldSepalWidth:
		return v.SepalWidth
	case model.FieldPetalLength:
		return v.PetalLength
	case model.FieldPetalWidth:
		return v.PetalWidth
	}
	return ""
}

// Set stores the raw value of a measurement field. Unknown fields are ignored.
func (v *Values) Set(f model.Field, s string) {
	switch f {
	case model.FieldSepalLength:
		v.SepalLength = s
	case model.FieldSepalWidth:
		v.SepalWidth = s
	case model.FieldPetalLength:
		v.PetalLength = s
	case model.FieldPetalWidth:
		v.PetalWidth = s
	}
}

// FormatValue renders a measurement the way it appears in an input box.
func FormatValue(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// FromMeasurement converts m into raw values keeping the given model.
func FromMeasurement(m model.Measurement, modelID string) Values {
	v := Values{Model: modelID}
	for _, f := range model.Fields {
		x, _ := m.Get(f)
		v.Set(f, FormatValue(x))
	}
	return v
}

// Form is the controller's handle on the input fields.
type Form interface {
	Values() Values
	// Fill overwrites the four measurement fields, leaving the model
	// selection untouched.
	Fill(m model.Measurement)
	// Replace overwrites every entry, model included.
	Replace(v Values)
}

// Fields is an in-memory Form safe for concurrent use.
type Fields struct {
	mu sync.RWMutex
	v  Values
}

// NewFields returns a Fields with the given default model selected.
func NewFields(defaultModel string) *Fields {
	return &Fields{v: Values{Model: defaultModel}}
}

func (f *Fields) Values() Values {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v
}

func (f *Fields) Fill(m model.Measurement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = FromMeasurement(m, f.v.Model)
}

// Update replaces the non-empty entries of v. An empty Model keeps the
// current selection only when keepModel is set.
func (f *Fields) Update(v Values, keepModel bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.Model != "" || !keepModel {
		f.v.Model = v.Model
	}
	for _, field := range model.Fields {
		if s := v.Get(field); s != "" {
			f.v.Set(field, s)
		}
	}
}

// Replace overwrites every entry, empty ones included.
func (f *Fields) Replace(v Values) {
	f.mu.Lock()
	f.v = v
	f.mu.Unlock()
}

// SetModel changes the selected model.
func (f *Fields) SetModel(id string) {
	f.mu.Lock()
	f.v.Model = id
	f.mu.Unlock()
}

// SetValue changes a single measurement field.
func (f *Fields) SetValue(field model.Field, s string) {
	f.mu.Lock()
	f.v.Set(field, s)
	f.mu.Unlock()
}
