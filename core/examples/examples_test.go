package examples

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/iris/core/model"
)

func TestTableShape(t *testing.T) {
	for _, s := range model.AllSpecies {
		assert.Len(t, For(s), 4, s)
	}
	assert.Len(t, All(), 12)
}

func TestForReturnsCopy(t *testing.T) {
	got := For(model.Setosa)
	got[0].SepalLength = 99
	assert.Equal(t, 5.1, For(model.Setosa)[0].SepalLength)
}

func TestRandomDrawsFromTable(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	seen := map[model.Species]int{}
	for i := 0; i < 600; i++ {
		ex := Random(r)
		require.Contains(t, For(ex.Species), ex.Measurement)
		seen[ex.Species]++
	}
	for _, s := range model.AllSpecies {
		assert.Greater(t, seen[s], 100, "species %s under-sampled", s)
	}
}

func TestRandomDeterministicForSeed(t *testing.T) {
	a := Random(rand.New(rand.NewSource(7)))
	b := Random(rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestExamplesWithinDefaultRange(t *testing.T) {
	r := model.Range{Min: 0, Max: 10}
	for _, ex := range All() {
		for _, v := range ex.Measurement.Vector() {
			assert.True(t, r.Contains(v))
		}
	}
}
