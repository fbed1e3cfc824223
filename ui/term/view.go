// Package term draws the prediction form state as plain text.
package term

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kilianp07/iris/core/examples"
	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/render"
	"github.com/kilianp07/iris/core/state"
)

const idleText = "Enter the flower measurements, choose a model and press Predict."

// View writes one block per rendered state to w.
type View struct {
	mu   sync.Mutex
	w    io.Writer
	r    *render.Renderer
	last render.ViewModel
	// Quiet suppresses Idle and Loading output.
	Quiet bool
}

// New returns a View writing to w.
func New(w io.Writer, r *render.Renderer) *View {
	return &View{w: w, r: r}
}

// Render draws s.
func (v *View) Render(s state.State) {
	vm := v.r.View(s)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = vm
	if v.Quiet && (s.Kind == state.KindIdle || s.Kind == state.KindLoading) {
		return
	}
	fmt.Fprint(v.w, Format(vm))
}

// Acknowledge reports the example that was filled in.
func (v *View) Acknowledge(ex examples.Example) {
	vals := make([]string, 0, 4)
	for _, x := range ex.Measurement.Vector() {
		vals = append(vals, form.FormatValue(x))
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "Loaded random %s example: %s\n", ex.Species.Label(), strings.Join(vals, ", "))
}

// Last returns the most recently rendered view model.
func (v *View) Last() render.ViewModel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// Format renders a view model as text.
func Format(vm render.ViewModel) string {
	var b strings.Builder
	switch {
	case vm.Busy:
		b.WriteString("Predicting...\n")
	case vm.Error != "":
		fmt.Fprintf(&b, "Error: %s\n", vm.Error)
	case vm.Result != nil:
		res := vm.Result
		fmt.Fprintf(&b, "%s %s\n", res.Marker, res.Title)
		fmt.Fprintf(&b, "Model: %s (accuracy %s)\n", res.ModelName, res.ModelAccuracy)
		fmt.Fprintf(&b, "Confidence: %s [%s]\n", res.Confidence, res.Badge.Text)
		b.WriteString("Breakdown:\n")
		for _, e := range res.Breakdown {
			fmt.Fprintf(&b, "  %s %s\n", e.Marker, e)
		}
	default:
		b.WriteString(idleText + "\n")
	}
	return b.String()
}
