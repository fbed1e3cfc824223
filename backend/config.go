package backend

import "fmt"

// ModelInfo describes a model served by the mock endpoint.
type ModelInfo struct {
	Name string `json:"name"`
	// Accuracy is a percentage in [0, 100].
	Accuracy float64 `json:"accuracy"`
}

// Config configures the mock prediction server.
type Config struct {
	Address string `json:"address"`
	// Models is keyed by the identifier sent in the request's model field.
	Models map[string]ModelInfo `json:"models"`
}

// DefaultModels mirrors the stock selector catalogue.
func DefaultModels() map[string]ModelInfo {
	return map[string]ModelInfo{
		"Random Forest":       {Name: "Random Forest", Accuracy: 90},
		"SVM":                 {Name: "SVM", Accuracy: 96.67},
		"Decision Tree":       {Name: "Decision Tree", Accuracy: 93.33},
		"K-Nearest Neighbors": {Name: "K-Nearest Neighbors", Accuracy: 96.67},
		"Naive Bayes":         {Name: "Naive Bayes", Accuracy: 96.67},
		"knn":                 {Name: "KNN", Accuracy: 96.67},
	}
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":5000"
	}
	if len(c.Models) == 0 {
		c.Models = DefaultModels()
	}
}

// Validate checks model accuracies.
func (c Config) Validate() error {
	for id, m := range c.Models {
		if m.Accuracy < 0 || m.Accuracy > 100 {
			return fmt.Errorf("model %s: accuracy %v outside [0, 100]", id, m.Accuracy)
		}
	}
	return nil
}
