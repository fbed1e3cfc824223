package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/iris/core/metrics"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndQuery(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordSubmission(coremetrics.SubmissionEvent{
		RequestID: "r1", Model: "SVM", Outcome: "success", Species: "setosa",
		Confidence: 97.5, Latency: 20 * time.Millisecond, Time: base,
	}))
	require.NoError(t, s.RecordSubmission(coremetrics.SubmissionEvent{
		RequestID: "r2", Model: "Random Forest", Outcome: "request_error",
		Message: "Network error", Latency: 5 * time.Millisecond, Time: base.Add(time.Minute),
	}))

	all, err := s.Query(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r2", all[0].RequestID)
	assert.Equal(t, "Network error", all[0].Message)
	assert.Equal(t, "setosa", all[1].Species)
	assert.InDelta(t, 20.0, all[1].LatencyMS, 1e-9)
	assert.True(t, base.Equal(all[1].Time))

	ok, err := s.Query(Filter{Outcome: "success"})
	require.NoError(t, err)
	require.Len(t, ok, 1)
	assert.Equal(t, "r1", ok[0].RequestID)

	recent, err := s.Query(Filter{Since: base.Add(30 * time.Second)})
	require.NoError(t, err)
	require.Len(t, recent, 1)

	limited, err := s.Query(Filter{Limit: 1, Model: "SVM"})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "SVM", limited[0].Model)
}

func TestSummarize(t *testing.T) {
	s := openTemp(t)
	for i, lat := range []time.Duration{10, 30} {
		require.NoError(t, s.RecordSubmission(coremetrics.SubmissionEvent{
			RequestID: string(rune('a' + i)), Model: "SVM", Outcome: "success", Latency: lat * time.Millisecond,
		}))
	}
	sum, err := s.Summarize()
	require.NoError(t, err)
	require.Len(t, sum, 1)
	assert.Equal(t, 2, sum[0].Count)
	assert.InDelta(t, 20.0, sum[0].AvgLatencyMS, 1e-9)
}

func TestReplaceOnDuplicateRequest(t *testing.T) {
	s := openTemp(t)
	ev := coremetrics.SubmissionEvent{RequestID: "dup", Model: "SVM", Outcome: "request_error"}
	require.NoError(t, s.RecordSubmission(ev))
	ev.Outcome = "success"
	require.NoError(t, s.RecordSubmission(ev))
	all, err := s.Query(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "success", all[0].Outcome)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
