package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// PredictionRequest is the body posted to the prediction endpoint.
type PredictionRequest struct {
	Measurement
	Model string `json:"model"`
	// RequestID travels as a header, not in the body.
	RequestID string `json:"-"`
}

// PredictionResponse is the success body returned by the prediction endpoint.
type PredictionResponse struct {
	Species              string             `json:"species"`
	ModelName            string             `json:"model_name"`
	ModelAccuracy        float64            `json:"model_accuracy"`
	ConfidencePercentage float64            `json:"confidence_percentage"`
	Confidence           map[string]float64 `json:"confidence"`
}

// ErrorResponse is the body returned with a non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Validate checks that the response carries a species and a usable
// confidence map. Probabilities are not required to sum to one.
func (r PredictionResponse) Validate() error {
	if r.Species == "" {
		return fmt.Errorf("missing species")
	}
	if len(r.Confidence) == 0 {
		return fmt.Errorf("missing confidence")
	}
	for label, p := range r.Confidence {
		if p < 0 || p > 1 {
			return fmt.Errorf("confidence for %s out of range: %v", label, p)
		}
	}
	return nil
}

// Normalize fills ConfidencePercentage from the highest probability when the
// endpoint omitted it.
func (r *PredictionResponse) Normalize() {
	if r.ConfidencePercentage > 0 || len(r.Confidence) == 0 {
		return
	}
	probs := make([]float64, 0, len(r.Confidence))
	for _, p := range r.Confidence {
		probs = append(probs, p)
	}
	r.ConfidencePercentage = floats.Max(probs) * 100
}
