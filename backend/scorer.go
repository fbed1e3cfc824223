package backend

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/iris/core/examples"
	"github.com/kilianp07/iris/core/model"
)

// Score returns a probability per species derived from the distance to the
// nearest reference example of each species. It is a deterministic stand-in
// for a trained classifier.
func Score(m model.Measurement) map[string]float64 {
	x := m.Vector()
	nearest := make(map[model.Species]float64, len(model.AllSpecies))
	for _, ex := range examples.All() {
		d := floats.Distance(x, ex.Measurement.Vector(), 2)
		if cur, ok := nearest[ex.Species]; !ok || d < cur {
			nearest[ex.Species] = d
		}
	}

	weights := make([]float64, len(model.AllSpecies))
	for i, s := range model.AllSpecies {
		weights[i] = math.Exp(-2 * nearest[s])
	}
	sum := floats.Sum(weights)
	if sum == 0 {
		for i := range weights {
			weights[i] = 1
		}
		sum = float64(len(weights))
	}
	floats.Scale(1/sum, weights)

	out := make(map[string]float64, len(weights))
	for i, s := range model.AllSpecies {
		out[s.Label()] = math.Round(weights[i]*1e4) / 1e4
	}
	return out
}

// Predict builds a full response for m using info.
func Predict(m model.Measurement, info ModelInfo) model.PredictionResponse {
	conf := Score(m)
	var (
		best  string
		bestP = -1.0
	)
	for _, s := range model.AllSpecies {
		if p := conf[s.Label()]; p > bestP {
			best, bestP = s.Label(), p
		}
	}
	return model.PredictionResponse{
		Species:              best,
		ModelName:            info.Name,
		ModelAccuracy:        info.Accuracy,
		ConfidencePercentage: bestP * 100,
		Confidence:           conf,
	}
}
