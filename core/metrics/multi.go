package metrics

import (
	"errors"
	"io"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSubmission forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSubmission(ev SubmissionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSubmission(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransition forwards state changes when supported by the sink.
func (m *MultiSink) RecordTransition(ev TransitionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TransitionRecorder); ok {
			if err := rec.RecordTransition(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordValidationFailure forwards validation failures when supported by the sink.
func (m *MultiSink) RecordValidationFailure(ev ValidationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ValidationRecorder); ok {
			if err := rec.RecordValidationFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, CloseSink(s))
	}
	return errors.Join(errs...)
}

// CloseSink releases s when it implements io.Closer.
func CloseSink(s MetricsSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
