package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/iris/core/model"
)

// Validator turns raw form values into a prediction request.
type Validator struct {
	bounds   model.Range
	rangeTag string
	validate *validator.Validate
}

// NewValidator builds a validator for the given measurement range.
func NewValidator(bounds model.Range) *Validator {
	return &Validator{
		bounds:   bounds,
		rangeTag: fmt.Sprintf("gte=%s,lte=%s", FormatValue(bounds.Min), FormatValue(bounds.Max)),
		validate: validator.New(),
	}
}

// Range returns the accepted measurement range.
func (v *Validator) Range() model.Range { return v.bounds }

// Validate checks the model selection first, then each measurement in
// canonical order, and stops at the first problem.
func (v *Validator) Validate(vals Values) (model.PredictionRequest, error) {
	modelID := strings.TrimSpace(vals.Model)
	if err := v.validate.Var(modelID, "required"); err != nil {
		return model.PredictionRequest{}, &ValidationError{Field: "model", Message: MsgSelectModel}
	}
	req := model.PredictionRequest{Model: modelID}
	for _, f := range model.Fields {
		x, ok := v.parse(vals.Get(f))
		if !ok {
			return model.PredictionRequest{}, v.invalid(f)
		}
		if err := req.Set(f, x); err != nil {
			return model.PredictionRequest{}, err
		}
	}
	return req, nil
}

func (v *Validator) parse(raw string) (float64, bool) {
	x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	if err := v.validate.Var(x, v.rangeTag); err != nil {
		return 0, false
	}
	return x, true
}

func (v *Validator) invalid(f model.Field) *ValidationError {
	return &ValidationError{
		Field: string(f),
		Message: fmt.Sprintf("Invalid value for %s. Please enter a number between %s and %s.",
			f.Label(), FormatValue(v.bounds.Min), FormatValue(v.bounds.Max)),
	}
}
