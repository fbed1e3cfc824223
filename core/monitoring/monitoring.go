// Package monitoring forwards failed prediction requests to an error
// tracker.
package monitoring

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/kilianp07/iris/core/events"
	"github.com/kilianp07/iris/core/form"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// Source is the subscription side of the transition bus.
type Source interface {
	Subscribe() <-chan events.Transition
	Unsubscribe(<-chan events.Transition)
}

// Report captures ev when it is a failed request. Validation failures are
// user input and never reported.
func Report(m Monitor, ev events.Transition) bool {
	if ev.Outcome() != "request_error" {
		return false
	}
	err := ev.Err
	if err == nil {
		err = errors.New(ev.To.Message)
	}
	tags := map[string]string{
		"model":      ev.Model,
		"request_id": ev.RequestID,
	}
	var re *form.RequestError
	if errors.As(err, &re) && re.Status != 0 {
		tags["http_status"] = strconv.Itoa(re.Status)
	}
	m.CaptureException(err, tags)
	return true
}

// StartReporter reports failed requests from src until ctx is canceled or
// the bus closes. The returned channel is closed on exit.
func StartReporter(ctx context.Context, src Source, m Monitor) <-chan struct{} {
	done := make(chan struct{})
	sub := src.Subscribe()
	go func() {
		defer close(done)
		defer src.Unsubscribe(sub)
		defer m.Recover()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				Report(m, ev)
			}
		}
	}()
	return done
}
