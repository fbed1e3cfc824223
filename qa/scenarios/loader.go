// Package scenarios replays YAML described form submissions against a
// prediction endpoint and checks the settled state.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/iris/core/form"
)

// Expected describes the state a case must settle in. Exactly one of
// Species and Error should be set.
type Expected struct {
	Species string `yaml:"species,omitempty"`
	// Error is matched against the displayed message.
	Error         string  `yaml:"error,omitempty"`
	MinConfidence float64 `yaml:"min_confidence,omitempty"`
}

// Case is one submission. Measurements are kept as typed text so invalid
// input can be replayed.
type Case struct {
	Name        string   `yaml:"name"`
	Model       *string  `yaml:"model,omitempty"`
	SepalLength string   `yaml:"sepal_length"`
	SepalWidth  string   `yaml:"sepal_width"`
	PetalLength string   `yaml:"petal_length"`
	PetalWidth  string   `yaml:"petal_width"`
	Expected    Expected `yaml:"expected"`
}

// Values returns the form contents for c, falling back to the scenario model.
func (c Case) Values(defaultModel string) form.Values {
	m := defaultModel
	if c.Model != nil {
		m = *c.Model
	}
	return form.Values{
		Model:       m,
		SepalLength: c.SepalLength,
		SepalWidth:  c.SepalWidth,
		PetalLength: c.PetalLength,
		PetalWidth:  c.PetalWidth,
	}
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Model       string `yaml:"model"`
	Cases       []Case `yaml:"cases"`
}

// Load reads and checks a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Cases) == 0 {
		return nil, fmt.Errorf("scenario %q has no cases", sc.Name)
	}
	for i, c := range sc.Cases {
		if c.Expected.Species == "" && c.Expected.Error == "" {
			return nil, fmt.Errorf("case %d (%s): expected species or error", i, c.Name)
		}
		if c.Name == "" {
			sc.Cases[i].Name = fmt.Sprintf("case-%d", i+1)
		}
	}
	return &sc, nil
}
