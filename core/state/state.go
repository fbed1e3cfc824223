// Package state defines the four mutually exclusive states of the
// prediction form.
package state

import "github.com/kilianp07/iris/core/model"

// Kind tags the active state.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindResults
	KindError
)

var kindNames = [...]string{"idle", "loading", "results", "error"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// State is a tagged union. Result is only set for KindResults and Message
// only for KindError; use the constructors to keep it that way.
type State struct {
	Kind    Kind
	Result  *model.PredictionResponse
	Message string
}

// Idle is the welcome state.
func Idle() State { return State{Kind: KindIdle} }

// Loading is shown while a prediction request is in flight.
func Loading() State { return State{Kind: KindLoading} }

// Results carries a successful prediction.
func Results(r model.PredictionResponse) State {
	return State{Kind: KindResults, Result: &r}
}

// Failed carries the message of a validation or request error.
func Failed(msg string) State { return State{Kind: KindError, Message: msg} }

func (s State) String() string { return s.Kind.String() }
