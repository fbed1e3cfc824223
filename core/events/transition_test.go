package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/state"
)

func TestTransitionOutcome(t *testing.T) {
	cases := []struct {
		from, to state.State
		want     string
		terminal bool
	}{
		{state.Idle(), state.Loading(), "submitted", false},
		{state.Loading(), state.Results(model.PredictionResponse{}), "success", true},
		{state.Loading(), state.Failed("x"), "request_error", true},
		{state.Idle(), state.Failed("x"), "validation_error", true},
		{state.Results(model.PredictionResponse{}), state.Failed("x"), "validation_error", true},
		{state.Failed("x"), state.Idle(), "dismissed", false},
	}
	for _, c := range cases {
		tr := Transition{From: c.from, To: c.to}
		assert.Equal(t, c.want, tr.Outcome())
		assert.Equal(t, c.terminal, tr.Terminal())
	}
}
