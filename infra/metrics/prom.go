package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/iris/core/metrics"
)

// PromSink records form activity in Prometheus metrics.
type PromSink struct {
	submissions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	validation  *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	submissions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_prediction_submissions_total",
		Help: "Prediction requests by model and outcome",
	}, []string{"model", "outcome"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iris_prediction_latency_seconds",
		Help:    "Time between submit and response",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "outcome"}))
	if err != nil {
		return nil, err
	}
	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_form_transitions_total",
		Help: "Form state changes",
	}, []string{"from", "to"}))
	if err != nil {
		return nil, err
	}
	validation, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_validation_failures_total",
		Help: "Submissions rejected before sending, by field",
	}, []string{"field"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{
		submissions: submissions,
		latency:     latency,
		transitions: transitions,
		validation:  validation,
	}, nil
}

// register returns the already registered collector when one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// RecordSubmission counts the submission and observes its latency.
func (s *PromSink) RecordSubmission(ev coremetrics.SubmissionEvent) error {
	s.submissions.WithLabelValues(ev.Model, ev.Outcome).Inc()
	s.latency.WithLabelValues(ev.Model, ev.Outcome).Observe(ev.Latency.Seconds())
	return nil
}

// RecordTransition counts a state change.
func (s *PromSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	s.transitions.WithLabelValues(ev.From, ev.To).Inc()
	return nil
}

// RecordValidationFailure counts a rejected submission.
func (s *PromSink) RecordValidationFailure(ev coremetrics.ValidationEvent) error {
	s.validation.WithLabelValues(ev.Field).Inc()
	return nil
}
