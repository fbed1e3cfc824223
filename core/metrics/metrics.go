package metrics

import "time"

// SubmissionEvent describes a finished prediction request.
type SubmissionEvent struct {
	RequestID string
	Model     string
	// Outcome is "success" or "request_error".
	Outcome    string
	Species    string
	Confidence float64
	Message    string
	Latency    time.Duration
	Time       time.Time
}

// MetricsSink records submissions for observability purposes.
type MetricsSink interface {
	RecordSubmission(ev SubmissionEvent) error
}

// TransitionEvent is a single state change of the form.
type TransitionEvent struct {
	From string
	To   string
	Time time.Time
}

// TransitionRecorder is implemented by sinks able to record state changes.
type TransitionRecorder interface {
	RecordTransition(ev TransitionEvent) error
}

// ValidationEvent records input rejected before any request was sent.
type ValidationEvent struct {
	Field string
	Time  time.Time
}

// ValidationRecorder records validation failures.
type ValidationRecorder interface {
	RecordValidationFailure(ev ValidationEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSubmission(SubmissionEvent) error        { return nil }
func (NopSink) RecordTransition(TransitionEvent) error        { return nil }
func (NopSink) RecordValidationFailure(ValidationEvent) error { return nil }
