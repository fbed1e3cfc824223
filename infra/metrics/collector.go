package metrics

import (
	"context"

	"github.com/kilianp07/iris/core/events"
	coremetrics "github.com/kilianp07/iris/core/metrics"
	"github.com/kilianp07/iris/core/state"
	"github.com/kilianp07/iris/infra/logger"
)

// TransitionSource is the subscription side of the transition bus.
type TransitionSource interface {
	Subscribe() <-chan events.Transition
	Unsubscribe(<-chan events.Transition)
}

// StartEventCollector subscribes to the bus and records metrics for every
// transition. It stops when the context is canceled or the bus closes. The
// returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus TransitionSource, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := Record(sink, ev); err != nil {
					log.Warnf("record %s transition: %v", ev.Outcome(), err)
				}
			}
		}
	}()
	return done
}

// Record maps a single transition onto the sink's recorders.
func Record(sink coremetrics.MetricsSink, ev events.Transition) error {
	if r, ok := sink.(coremetrics.TransitionRecorder); ok {
		if err := r.RecordTransition(coremetrics.TransitionEvent{
			From: ev.From.Kind.String(),
			To:   ev.To.Kind.String(),
			Time: ev.At,
		}); err != nil {
			return err
		}
	}
	switch ev.Outcome() {
	case "validation_error":
		if r, ok := sink.(coremetrics.ValidationRecorder); ok {
			return r.RecordValidationFailure(coremetrics.ValidationEvent{Field: ev.Field, Time: ev.At})
		}
	case "success", "request_error":
		sub := coremetrics.SubmissionEvent{
			RequestID: ev.RequestID,
			Model:     ev.Model,
			Outcome:   ev.Outcome(),
			Latency:   ev.Latency,
			Time:      ev.At,
		}
		if ev.To.Kind == state.KindResults && ev.To.Result != nil {
			sub.Species = ev.To.Result.Species
			sub.Confidence = ev.To.Result.ConfidencePercentage
		} else {
			sub.Message = ev.To.Message
		}
		return sink.RecordSubmission(sub)
	}
	return nil
}
