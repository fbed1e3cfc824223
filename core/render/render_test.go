package render

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/state"
)

func TestBadgeTiers(t *testing.T) {
	r := New(Config{})
	cases := []struct {
		conf float64
		want string
	}{
		{100, "High"},
		{80, "High"},
		{79.99, "Medium"},
		{60, "Medium"},
		{59.99, "Low"},
		{0, "Low"},
	}
	for _, c := range cases {
		b := r.Badge(c.conf)
		assert.Equal(t, c.want, b.Label, "confidence %v", c.conf)
		assert.Equal(t, c.want+" Confidence", b.Text)
	}
	assert.NotEqual(t, r.Badge(90).Color, r.Badge(70).Color)
	assert.NotEqual(t, r.Badge(70).Color, r.Badge(10).Color)
}

func TestBadgeCustomThresholds(t *testing.T) {
	r := New(Config{HighThreshold: 90, MediumThreshold: 50})
	assert.Equal(t, "Medium", r.Badge(85).Label)
	assert.Equal(t, "Medium", r.Badge(50).Label)
	assert.Equal(t, "Low", r.Badge(49).Label)
}

func TestMarkerLookup(t *testing.T) {
	r := New(Config{})
	assert.Equal(t, "🌸", r.Marker("Setosa"))
	assert.Equal(t, "🌺", r.Marker("Versicolor"))
	assert.Equal(t, "🌼", r.Marker("Virginica"))
	assert.Equal(t, "🌼", r.Marker("virginica"))
	assert.Equal(t, "🌸", r.Marker("Hybrid"))

	custom := New(Config{Markers: map[string]string{"Setosa": "*"}, DefaultMarker: "?"})
	assert.Equal(t, "*", custom.Marker("Setosa"))
	assert.Equal(t, "?", custom.Marker("Virginica"))
}

func TestBreakdownSortedDescending(t *testing.T) {
	r := New(Config{})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		conf := map[string]float64{}
		for j := 0; j < 1+rng.Intn(6); j++ {
			conf[string(rune('A'+j))] = rng.Float64()
		}
		entries := r.Breakdown(conf)
		require.Len(t, entries, len(conf))
		assert.True(t, sort.SliceIsSorted(entries, func(a, b int) bool {
			return entries[a].Probability > entries[b].Probability
		}))
	}
}

func TestBreakdownFormatting(t *testing.T) {
	r := New(Config{})
	entries := r.Breakdown(map[string]float64{"Setosa": 0.982, "Versicolor": 0.015, "Virginica": 0.003})
	require.Len(t, entries, 3)
	assert.Equal(t, "Setosa: 98.20%", entries[0].String())
	assert.Equal(t, "Versicolor: 1.50%", entries[1].String())
	assert.Equal(t, "Virginica: 0.30%", entries[2].String())
}

func TestBreakdownTiesByLabel(t *testing.T) {
	r := New(Config{})
	entries := r.Breakdown(map[string]float64{"B": 0.5, "A": 0.5})
	assert.Equal(t, "A", entries[0].Label)
}

func TestViewSetosaScenario(t *testing.T) {
	r := New(Config{})
	vm := r.View(state.Results(model.PredictionResponse{
		Species:              "Setosa",
		ModelName:            "KNN",
		ModelAccuracy:        96.67,
		ConfidencePercentage: 98.2,
		Confidence:           map[string]float64{"Setosa": 0.982, "Versicolor": 0.015, "Virginica": 0.003},
	}))
	require.NotNil(t, vm.Result)
	assert.Equal(t, "results", vm.State)
	assert.Empty(t, vm.Error)
	assert.Equal(t, "Iris Setosa", vm.Result.Title)
	assert.Equal(t, "High Confidence", vm.Result.Badge.Text)
	assert.Equal(t, "96.67%", vm.Result.ModelAccuracy)
	assert.Equal(t, "98.20%", vm.Result.Confidence)
	var order []string
	for _, e := range vm.Result.Breakdown {
		order = append(order, e.Label)
	}
	assert.Equal(t, []string{"Setosa", "Versicolor", "Virginica"}, order)
}

func TestViewOnlyOneSection(t *testing.T) {
	r := New(Config{})

	idle := r.View(state.Idle())
	assert.Equal(t, ViewModel{State: "idle"}, idle)

	loading := r.View(state.Loading())
	assert.True(t, loading.Busy)
	assert.Nil(t, loading.Result)
	assert.Empty(t, loading.Error)

	failed := r.View(state.Failed("model not found"))
	assert.Equal(t, "model not found", failed.Error)
	assert.Nil(t, failed.Result)
	assert.False(t, failed.Busy)
}
