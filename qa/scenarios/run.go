package scenarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/core/examples"
	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/state"
)

// Result is the outcome of a single case.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Want   string `json:"want"`
	Got    string `json:"got"`
}

// Report collects the results of a scenario run.
type Report struct {
	Scenario string   `json:"scenario"`
	Results  []Result `json:"results"`
	Failures int      `json:"failures"`
}

// OK reports whether every case passed.
func (r Report) OK() bool { return r.Failures == 0 }

type discardView struct{}

func (discardView) Render(state.State)         {}
func (discardView) Acknowledge(examples.Example) {}

// Run replays every case through a fresh form controller.
func Run(ctx context.Context, sc *Scenario, cfg controller.Config, p controller.Predictor, opts ...controller.Option) (Report, error) {
	fields := form.NewFields(sc.Model)
	ctl, err := controller.New(cfg, fields, discardView{}, p, opts...)
	if err != nil {
		return Report{}, err
	}
	defer ctl.Close()

	rep := Report{Scenario: sc.Name}
	for _, c := range sc.Cases {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		fields.Replace(c.Values(sc.Model))
		st, _ := ctl.Submit(ctx)
		res := check(c, st)
		if !res.Passed {
			rep.Failures++
		}
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

func check(c Case, st state.State) Result {
	res := Result{Name: c.Name}
	exp := c.Expected
	if exp.Error != "" {
		res.Want = "error: " + exp.Error
	} else {
		res.Want = exp.Species
		if exp.MinConfidence > 0 {
			res.Want += fmt.Sprintf(" >= %.2f%%", exp.MinConfidence)
		}
	}

	switch st.Kind {
	case state.KindError:
		res.Got = "error: " + st.Message
		res.Passed = exp.Error != "" && strings.Contains(st.Message, exp.Error)
	case state.KindResults:
		r := st.Result
		res.Got = fmt.Sprintf("%s %.2f%%", r.Species, r.ConfidencePercentage)
		res.Passed = exp.Error == "" &&
			strings.EqualFold(r.Species, exp.Species) &&
			r.ConfidencePercentage >= exp.MinConfidence
	default:
		res.Got = st.String()
	}
	return res
}
