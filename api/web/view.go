package web

import (
	"encoding/json"
	"sync"

	"github.com/kilianp07/iris/core/examples"
	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/render"
	"github.com/kilianp07/iris/core/state"
)

// Message is pushed to websocket clients.
type Message struct {
	// Type is "state" or "example".
	Type    string            `json:"type"`
	View    *render.ViewModel `json:"view,omitempty"`
	Example *ExampleMessage   `json:"example,omitempty"`
}

// ExampleMessage carries a freshly loaded random example.
type ExampleMessage struct {
	Species string      `json:"species"`
	Values  form.Values `json:"values"`
}

// View keeps the latest view model and pushes every change to the hub.
type View struct {
	mu   sync.RWMutex
	r    *render.Renderer
	hub  *Hub
	last render.ViewModel
}

// NewView returns a View broadcasting on hub. A nil hub disables pushing.
func NewView(r *render.Renderer, hub *Hub) *View {
	v := &View{r: r, hub: hub, last: r.View(state.Idle())}
	if hub != nil {
		hub.onConnect = v.snapshot
	}
	return v
}

// Render stores and broadcasts the view model for s.
func (v *View) Render(s state.State) {
	vm := v.r.View(s)
	v.mu.Lock()
	v.last = vm
	v.mu.Unlock()
	v.push(Message{Type: "state", View: &vm})
}

// Acknowledge broadcasts the example now in the form.
func (v *View) Acknowledge(ex examples.Example) {
	v.push(Message{Type: "example", Example: &ExampleMessage{
		Species: ex.Species.Label(),
		Values:  form.FromMeasurement(ex.Measurement, ""),
	}})
}

// Current returns the latest view model.
func (v *View) Current() render.ViewModel {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last
}

func (v *View) snapshot() []byte {
	vm := v.Current()
	data, _ := json.Marshal(Message{Type: "state", View: &vm})
	return data
}

func (v *View) push(m Message) {
	if v.hub == nil {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	v.hub.Broadcast(data)
}
