// Package examples holds the reference measurements used to pre-fill the
// prediction form.
package examples

import (
	"math/rand"

	"github.com/kilianp07/iris/core/model"
)

var table = map[model.Species][]model.Measurement{
	model.Setosa: {
		{SepalLength: 5.1, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2},
		{SepalLength: 4.9, SepalWidth: 3.0, PetalLength: 1.4, PetalWidth: 0.2},
		{SepalLength: 5.4, SepalWidth: 3.9, PetalLength: 1.7, PetalWidth: 0.4},
		{SepalLength: 5.0, SepalWidth: 3.6, PetalLength: 1.4, PetalWidth: 0.2},
	},
	model.Versicolor: {
		{SepalLength: 6.0, SepalWidth: 2.9, PetalLength: 4.5, PetalWidth: 1.5},
		{SepalLength: 5.7, SepalWidth: 2.8, PetalLength: 4.5, PetalWidth: 1.3},
		{SepalLength: 6.3, SepalWidth: 3.3, PetalLength: 4.7, PetalWidth: 1.6},
		{SepalLength: 5.6, SepalWidth: 3.0, PetalLength: 4.5, PetalWidth: 1.5},
	},
	model.Virginica: {
		{SepalLength: 6.5, SepalWidth: 3.0, PetalLength: 5.8, PetalWidth: 2.2},
		{SepalLength: 7.7, SepalWidth: 3.8, PetalLength: 6.7, PetalWidth: 2.2},
		{SepalLength: 6.7, SepalWidth: 3.3, PetalLength: 5.7, PetalWidth: 2.5},
		{SepalLength: 6.9, SepalWidth: 3.1, PetalLength: 5.4, PetalWidth: 2.1},
	},
}

// Example is a reference measurement tagged with its species.
type Example struct {
	Species     model.Species
	Measurement model.Measurement
}

// For returns a copy of the examples recorded for s.
func For(s model.Species) []model.Measurement {
	src := table[s]
	out := make([]model.Measurement, len(src))
	copy(out, src)
	return out
}

// All returns every example in species order.
func All() []Example {
	var out []Example
	for _, s := range model.AllSpecies {
		for _, m := range table[s] {
			out = append(out, Example{Species: s, Measurement: m})
		}
	}
	return out
}

// Random picks a species uniformly, then one of its examples uniformly.
func Random(r *rand.Rand) Example {
	s := model.AllSpecies[r.Intn(len(model.AllSpecies))]
	list := table[s]
	return Example{Species: s, Measurement: list[r.Intn(len(list))]}
}
