// Package render turns a form state into the view model every view draws.
package render

import (
	"fmt"
	"sort"

	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/state"
)

// Config holds the presentation constants.
type Config struct {
	Markers         map[string]string `json:"markers"`
	DefaultMarker   string            `json:"default_marker"`
	HighThreshold   float64           `json:"high_threshold"`
	MediumThreshold float64           `json:"medium_threshold"`
}

// DefaultConfig returns the stock marker table and badge thresholds.
func DefaultConfig() Config {
	return Config{
		Markers: map[string]string{
			"Setosa":     "🌸",
			"Versicolor": "🌺",
			"Virginica":  "🌼",
		},
		DefaultMarker:   "🌸",
		HighThreshold:   80,
		MediumThreshold: 60,
	}
}

// Badge is the qualitative confidence label.
type Badge struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Entry is one line of the confidence breakdown.
type Entry struct {
	Label       string  `json:"label"`
	Marker      string  `json:"marker"`
	Probability float64 `json:"probability"`
	Percent     string  `json:"percent"`
}

func (e Entry) String() string { return fmt.Sprintf("%s: %s%%", e.Label, e.Percent) }

// Result is the populated section for the results state.
type Result struct {
	Title         string  `json:"title"`
	Species       string  `json:"species"`
	Marker        string  `json:"marker"`
	ModelName     string  `json:"model_name"`
	ModelAccuracy string  `json:"model_accuracy"`
	Confidence    string  `json:"confidence"`
	Badge         Badge   `json:"badge"`
	Breakdown     []Entry `json:"breakdown"`
}

// ViewModel is what a view draws. Exactly one of the sections matching
// State is populated.
type ViewModel struct {
	State  string  `json:"state"`
	Busy   bool    `json:"busy"`
	Error  string  `json:"error,omitempty"`
	Result *Result `json:"result,omitempty"`
}

// Renderer maps states to view models.
type Renderer struct {
	cfg Config
}

// New returns a Renderer, filling zero fields of cfg from DefaultConfig.
func New(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Markers == nil {
		cfg.Markers = def.Markers
	}
	if cfg.DefaultMarker == "" {
		cfg.DefaultMarker = def.DefaultMarker
	}
	if cfg.HighThreshold == 0 {
		cfg.HighThreshold = def.HighThreshold
	}
	if cfg.MediumThreshold == 0 {
		cfg.MediumThreshold = def.MediumThreshold
	}
	return &Renderer{cfg: cfg}
}

// View renders s.
func (r *Renderer) View(s state.State) ViewModel {
	vm := ViewModel{State: s.Kind.String()}
	switch s.Kind {
	case state.KindLoading:
		vm.Busy = true
	case state.KindError:
		vm.Error = s.Message
	case state.KindResults:
		if s.Result != nil {
			res := r.Result(*s.Result)
			vm.Result = &res
		}
	}
	return vm
}

// Result renders a prediction response.
func (r *Renderer) Result(p model.PredictionResponse) Result {
	species := model.DisplayLabel(p.Species)
	return Result{
		Title:         "Iris " + species,
		Species:       species,
		Marker:        r.Marker(species),
		ModelName:     p.ModelName,
		ModelAccuracy: fmt.Sprintf("%.2f%%", p.ModelAccuracy),
		Confidence:    fmt.Sprintf("%.2f%%", p.ConfidencePercentage),
		Badge:         r.Badge(p.ConfidencePercentage),
		Breakdown:     r.Breakdown(p.Confidence),
	}
}

// Marker returns the decorative marker for a species label.
func (r *Renderer) Marker(label string) string {
	if m, ok := r.cfg.Markers[label]; ok {
		return m
	}
	if m, ok := r.cfg.Markers[model.DisplayLabel(label)]; ok {
		return m
	}
	return r.cfg.DefaultMarker
}

// Badge derives the qualitative badge. Lower tier bounds are inclusive.
func (r *Renderer) Badge(confidence float64) Badge {
	switch {
	case confidence >= r.cfg.HighThreshold:
		return Badge{Label: "High", Text: "High Confidence", Color: "#2e7d32"}
	case confidence >= r.cfg.MediumThreshold:
		return Badge{Label: "Medium", Text: "Medium Confidence", Color: "#f57c00"}
	default:
		return Badge{Label: "Low", Text: "Low Confidence", Color: "#d32f2f"}
	}
}

// Breakdown sorts the confidence map by descending probability. Ties are
// ordered by label so output is stable.
func (r *Renderer) Breakdown(conf map[string]float64) []Entry {
	out := make([]Entry, 0, len(conf))
	for label, p := range conf {
		out = append(out, Entry{
			Label:       label,
			Marker:      r.Marker(label),
			Probability: p,
			Percent:     fmt.Sprintf("%.2f", p*100),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Label < out[j].Label
	})
	return out
}
