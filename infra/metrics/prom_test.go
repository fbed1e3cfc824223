package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/iris/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSubmission(coremetrics.SubmissionEvent{Model: "knn", Outcome: "success", Latency: 20 * time.Millisecond}))
	require.NoError(t, sink.RecordSubmission(coremetrics.SubmissionEvent{Model: "knn", Outcome: "success"}))
	require.NoError(t, sink.RecordTransition(coremetrics.TransitionEvent{From: "idle", To: "loading"}))
	require.NoError(t, sink.RecordValidationFailure(coremetrics.ValidationEvent{Field: "sepal_length"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.submissions.WithLabelValues("knn", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.transitions.WithLabelValues("idle", "loading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.validation.WithLabelValues("sepal_length")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.latency))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordTransition(coremetrics.TransitionEvent{From: "error", To: "idle"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.transitions.WithLabelValues("error", "idle")))
}
