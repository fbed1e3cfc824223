// Package export writes stored submissions in exchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/iris/infra/history"
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "json"}

// Write encodes records in the named format.
func Write(w io.Writer, format string, records []history.Record) error {
	switch format {
	case "csv":
		return WriteCSV(w, records)
	case "json":
		return WriteJSON(w, records)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteJSON writes the records as a JSON array.
func WriteJSON(w io.Writer, records []history.Record) error {
	if records == nil {
		records = []history.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes the records with a header row.
func WriteCSV(w io.Writer, records []history.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"request_id", "time", "model", "outcome", "species", "confidence", "latency_ms", "message"}); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.RequestID,
			r.Time.Format(time.RFC3339Nano),
			r.Model,
			r.Outcome,
			r.Species,
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			strconv.FormatFloat(r.LatencyMS, 'f', 3, 64),
			r.Message,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
