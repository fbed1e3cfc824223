package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/iris/infra/history"
)

func sample() []history.Record {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []history.Record{
		{RequestID: "a", Time: ts, Model: "SVM", Outcome: "success", Species: "setosa", Confidence: 98.5, LatencyMS: 12},
		{RequestID: "b", Time: ts, Model: "SVM", Outcome: "request_error", Message: "Invalid model: SVM, x", LatencyMS: 3.25},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "request_id", rows[0][0])
	assert.Equal(t, []string{"a", "2025-03-01T12:00:00Z", "SVM", "success", "setosa", "98.5", "12.000", ""}, rows[1])
	assert.Equal(t, "Invalid model: SVM, x", rows[2][7])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", sample()))
	var got []history.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "setosa", got[0].Species)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil))
}
