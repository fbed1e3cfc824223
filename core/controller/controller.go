package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/iris/core/events"
	"github.com/kilianp07/iris/core/examples"
	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/logger"
	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/state"
)

// DefaultErrorDisplay is how long an error stays visible.
const DefaultErrorDisplay = 5 * time.Second

var (
	// ErrBusy is returned by Submit while a request is in flight.
	ErrBusy = errors.New("prediction already in progress")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("controller closed")
)

// View draws the controller state.
type View interface {
	Render(s state.State)
	// Acknowledge gives brief feedback after the form was refilled with a
	// random example.
	Acknowledge(ex examples.Example)
}

// Predictor performs the prediction call.
type Predictor interface {
	Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResponse, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, req model.PredictionRequest) (model.PredictionResponse, error)

func (f PredictorFunc) Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResponse, error) {
	return f(ctx, req)
}

// Publisher receives every transition.
type Publisher interface {
	Publish(events.Transition)
}

// Config holds the controller constants.
type Config struct {
	Range        model.Range
	ErrorDisplay time.Duration
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

// WithRand sets the source used to draw random examples.
func WithRand(r *rand.Rand) Option { return func(ctl *Controller) { ctl.rng = r } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(ctl *Controller) { ctl.log = l } }

// WithPublisher sets the transition publisher.
func WithPublisher(p Publisher) Option { return func(ctl *Controller) { ctl.pub = p } }

// Controller is the prediction form controller.
type Controller struct {
	cfg       Config
	form      form.Form
	view      View
	predictor Predictor
	validator *form.Validator
	clock     Clock
	rng       *rand.Rand
	log       logger.Logger
	pub       Publisher

	mu     sync.Mutex
	cur    state.State
	gen    uint64
	timer  Timer
	closed bool
}

// New builds a controller in the Idle state with the form pre-filled by a
// random example.
func New(cfg Config, f form.Form, v View, p Predictor, opts ...Option) (*Controller, error) {
	if f == nil || v == nil || p == nil {
		return nil, fmt.Errorf("form, view and predictor are required")
	}
	if cfg.Range.Min > cfg.Range.Max {
		return nil, fmt.Errorf("invalid range [%v, %v]", cfg.Range.Min, cfg.Range.Max)
	}
	if cfg.ErrorDisplay <= 0 {
		cfg.ErrorDisplay = DefaultErrorDisplay
	}
	c := &Controller{
		cfg:       cfg,
		form:      f,
		view:      v,
		predictor: p,
		validator: form.NewValidator(cfg.Range),
		clock:     realClock{},
		log:       logger.NopLogger{},
		cur:       state.Idle(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(c.clock.Now().UnixNano()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ex := examples.Random(c.rng)
	c.form.Fill(ex.Measurement)
	c.view.Render(c.cur)
	return c, nil
}

// State returns the current state.
func (c *Controller) State() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Submit validates the form and, when valid, performs the prediction call.
// It returns the state reached once the submission has settled.
func (c *Controller) Submit(ctx context.Context) (state.State, error) {
	return c.submit(ctx, nil)
}

// SubmitValues stores vals in the form and submits them in one step, so a
// concurrent caller cannot swap the values between the two.
func (c *Controller) SubmitValues(ctx context.Context, vals form.Values) (state.State, error) {
	return c.submit(ctx, &vals)
}

func (c *Controller) submit(ctx context.Context, override *form.Values) (state.State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return state.State{}, ErrClosed
	}
	if c.cur.Kind == state.KindLoading {
		cur := c.cur
		c.mu.Unlock()
		return cur, ErrBusy
	}
	var vals form.Values
	if override != nil {
		vals = *override
		c.form.Replace(vals)
	} else {
		vals = c.form.Values()
	}
	req, err := c.validator.Validate(vals)
	if err != nil {
		c.log.Warnf("validation failed: %v", err)
		meta := events.Transition{Model: vals.Model}
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			meta.Field = ve.Field
		}
		c.transition(state.Failed(form.Message(err)), meta)
		cur := c.cur
		c.mu.Unlock()
		return cur, err
	}
	req.RequestID = uuid.NewString()
	c.transition(state.Loading(), events.Transition{RequestID: req.RequestID, Model: req.Model})
	gen := c.gen
	c.mu.Unlock()

	start := c.clock.Now()
	resp, err := c.predictor.Predict(ctx, req)
	latency := c.clock.Now().Sub(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// Closed while in flight; the late response is dropped.
		c.log.Debugf("dropping stale response for %s", req.RequestID)
		return c.cur, ErrClosed
	}
	meta := events.Transition{RequestID: req.RequestID, Model: req.Model, Latency: latency}
	if err != nil {
		meta.Err = err
		var re *form.RequestError
		if errors.As(err, &re) {
			c.log.Errorf("prediction %s failed: %s", req.RequestID, re.Detail())
		} else {
			c.log.Errorf("prediction %s failed: %v", req.RequestID, err)
		}
		c.transition(state.Failed(form.Message(err)), meta)
		return c.cur, err
	}
	resp.Normalize()
	c.log.Infof("prediction %s: %s (%.2f%%) via %s in %s", req.RequestID, resp.Species, resp.ConfidencePercentage, resp.ModelName, latency)
	c.transition(state.Results(resp), meta)
	return c.cur, nil
}

// RandomExample refills the form with a random reference example. The
// state is left unchanged.
func (c *Controller) RandomExample() examples.Example {
	c.mu.Lock()
	defer c.mu.Unlock()
	ex := examples.Random(c.rng)
	c.form.Fill(ex.Measurement)
	c.view.Acknowledge(ex)
	return ex
}

// Close cancels the pending auto-dismiss and rejects further submissions.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.stopTimer()
	c.gen++
	return nil
}

// transition must be called with mu held.
func (c *Controller) transition(next state.State, ev events.Transition) {
	c.stopTimer()
	c.gen++
	prev := c.cur
	c.cur = next
	c.view.Render(next)
	if next.Kind == state.KindError {
		gen := c.gen
		c.timer = c.clock.AfterFunc(c.cfg.ErrorDisplay, func() { c.dismiss(gen) })
	}
	c.log.Debugw("state transition", map[string]any{
		"from":       prev.Kind.String(),
		"to":         next.Kind.String(),
		"request_id": ev.RequestID,
	})
	if c.pub != nil {
		ev.From = prev
		ev.To = next
		ev.At = c.clock.Now()
		c.pub.Publish(ev)
	}
}

func (c *Controller) dismiss(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.cur.Kind != state.KindError {
		return
	}
	c.timer = nil
	c.transition(state.Idle(), events.Transition{})
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
