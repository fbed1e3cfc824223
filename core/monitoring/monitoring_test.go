package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/iris/core/events"
	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/state"
	"github.com/kilianp07/iris/internal/eventbus"
)

type captured struct {
	err  error
	tags map[string]string
}

type fakeMonitor struct {
	mu     sync.Mutex
	events []captured
}

func (f *fakeMonitor) CaptureException(err error, tags map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, captured{err, tags})
}
func (f *fakeMonitor) Recover()            {}
func (f *fakeMonitor) Flush(time.Duration) {}

func (f *fakeMonitor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func requestFailure() events.Transition {
	return events.Transition{
		From:      state.Loading(),
		To:        state.Failed("Invalid model: x"),
		RequestID: "r1",
		Model:     "x",
		Err:       &form.RequestError{Status: 400, Message: "Invalid model: x", Err: errors.New("predict /predict: 400 Bad Request")},
	}
}

func TestReportRequestFailure(t *testing.T) {
	m := &fakeMonitor{}
	assert.True(t, Report(m, requestFailure()))
	require.Len(t, m.events, 1)
	assert.Equal(t, "400", m.events[0].tags["http_status"])
	assert.Equal(t, "r1", m.events[0].tags["request_id"])
	assert.Equal(t, "Invalid model: x", m.events[0].err.Error())
}

func TestReportSkipsOtherOutcomes(t *testing.T) {
	m := &fakeMonitor{}
	assert.False(t, Report(m, events.Transition{From: state.Idle(), To: state.Failed(form.MsgSelectModel)}))
	assert.False(t, Report(m, events.Transition{From: state.Idle(), To: state.Loading()}))
	assert.Empty(t, m.events)
}

func TestReportWithoutCause(t *testing.T) {
	m := &fakeMonitor{}
	ev := requestFailure()
	ev.Err = nil
	require.True(t, Report(m, ev))
	assert.EqualError(t, m.events[0].err, "Invalid model: x")
	assert.NotContains(t, m.events[0].tags, "http_status")
}

func TestStartReporter(t *testing.T) {
	bus := eventbus.NewTyped[events.Transition]()
	m := &fakeMonitor{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartReporter(ctx, bus, m)

	// Wait for the subscription before publishing.
	require.Eventually(t, func() bool {
		bus.Publish(requestFailure())
		return m.count() > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}
}
