package events

import (
	"time"

	"github.com/kilianp07/iris/core/state"
)

// Transition is published every time the form changes state.
type Transition struct {
	From      state.State
	To        state.State
	RequestID string
	Model     string
	// Field names the rejected input on a validation failure.
	Field string
	// Latency is the time spent in flight, set when leaving Loading.
	Latency time.Duration
	// Err is the cause of a failed request.
	Err error
	At      time.Time
}

// Outcome classifies the transition for metrics and publishing.
func (t Transition) Outcome() string {
	switch t.To.Kind {
	case state.KindResults:
		return "success"
	case state.KindError:
		if t.From.Kind == state.KindLoading {
			return "request_error"
		}
		return "validation_error"
	case state.KindLoading:
		return "submitted"
	default:
		return "dismissed"
	}
}

// Terminal reports whether the transition ends a submission.
func (t Transition) Terminal() bool {
	return t.To.Kind == state.KindResults || t.To.Kind == state.KindError
}
