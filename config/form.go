package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/render"
)

// DefaultModels is the selector content used when none is configured.
var DefaultModels = []model.ModelOption{
	{ID: "Random Forest", Name: "Random Forest"},
	{ID: "SVM", Name: "SVM"},
	{ID: "Decision Tree", Name: "Decision Tree"},
	{ID: "K-Nearest Neighbors", Name: "K-Nearest Neighbors"},
	{ID: "Naive Bayes", Name: "Naive Bayes"},
	{ID: "knn", Name: "KNN"},
}

// FormConfig holds the controller and presentation constants.
type FormConfig struct {
	Min            float64             `json:"min"`
	Max            float64             `json:"max"`
	ErrorDisplayMS int                 `json:"error_display_ms"`
	Models         []model.ModelOption `json:"models"`
	// DefaultModel is preselected; empty leaves the selector unset.
	DefaultModel    string            `json:"default_model"`
	Markers         map[string]string `json:"markers"`
	DefaultMarker   string            `json:"default_marker"`
	HighThreshold   float64           `json:"high_threshold"`
	MediumThreshold float64           `json:"medium_threshold"`
}

// SetDefaults applies the stock range, timer, catalogue and badge settings.
func (c *FormConfig) SetDefaults() {
	if c.Min == 0 && c.Max == 0 {
		c.Max = 10
	}
	if c.ErrorDisplayMS <= 0 {
		c.ErrorDisplayMS = 5000
	}
	if len(c.Models) == 0 {
		c.Models = append([]model.ModelOption(nil), DefaultModels...)
	}
	for i := range c.Models {
		if c.Models[i].Name == "" {
			c.Models[i].Name = c.Models[i].ID
		}
	}
	def := render.DefaultConfig()
	if len(c.Markers) == 0 {
		c.Markers = def.Markers
	}
	if c.DefaultMarker == "" {
		c.DefaultMarker = def.DefaultMarker
	}
	if c.HighThreshold == 0 {
		c.HighThreshold = def.HighThreshold
	}
	if c.MediumThreshold == 0 {
		c.MediumThreshold = def.MediumThreshold
	}
}

// Validate checks ranges, thresholds and the default model.
func (c FormConfig) Validate() error {
	if c.Min >= c.Max {
		return fmt.Errorf("min %v must be below max %v", c.Min, c.Max)
	}
	if c.MediumThreshold >= c.HighThreshold {
		return fmt.Errorf("medium_threshold %v must be below high_threshold %v", c.MediumThreshold, c.HighThreshold)
	}
	for _, m := range c.Models {
		if m.ID == "" {
			return fmt.Errorf("model option without id")
		}
	}
	if c.DefaultModel != "" && !c.HasModel(c.DefaultModel) {
		return fmt.Errorf("default_model %q is not in models", c.DefaultModel)
	}
	return nil
}

// HasModel reports whether id is a configured option.
func (c FormConfig) HasModel(id string) bool {
	for _, m := range c.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Range returns the accepted measurement bounds.
func (c FormConfig) Range() model.Range { return model.Range{Min: c.Min, Max: c.Max} }

// ErrorDisplay returns how long an error stays visible.
func (c FormConfig) ErrorDisplay() time.Duration {
	return time.Duration(c.ErrorDisplayMS) * time.Millisecond
}

// RenderConfig returns the presentation settings.
func (c FormConfig) RenderConfig() render.Config {
	return render.Config{
		Markers:         c.Markers,
		DefaultMarker:   c.DefaultMarker,
		HighThreshold:   c.HighThreshold,
		MediumThreshold: c.MediumThreshold,
	}
}
