// Package history keeps a local log of settled prediction submissions.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	coremetrics "github.com/kilianp07/iris/core/metrics"
)

// Record is one stored submission.
type Record struct {
	RequestID  string    `json:"request_id"`
	Time       time.Time `json:"time"`
	Model      string    `json:"model"`
	Outcome    string    `json:"outcome"`
	Species    string    `json:"species,omitempty"`
	Confidence float64   `json:"confidence"`
	Message    string    `json:"message,omitempty"`
	LatencyMS  float64   `json:"latency_ms"`
}

// Filter narrows a query. Zero values match everything.
type Filter struct {
	Model   string
	Outcome string
	Since   time.Time
	Limit   int
}

// Summary aggregates submissions per model and outcome.
type Summary struct {
	Model        string  `json:"model"`
	Outcome      string  `json:"outcome"`
	Count        int     `json:"count"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// SQLiteStore persists submissions in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Config selects the database file.
type Config struct {
	Path string `json:"path"`
}

// Open opens or creates the database and ensures the schema.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history: empty database path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serialises writers.
	db.SetMaxOpenConns(1)
	schema := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
            request_id TEXT PRIMARY KEY,
            ts INTEGER NOT NULL,
            model TEXT NOT NULL,
            outcome TEXT NOT NULL,
            species TEXT,
            confidence REAL,
            message TEXT,
            latency_ms REAL
        )`,
		`CREATE INDEX IF NOT EXISTS submissions_ts ON submissions(ts)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// RecordSubmission stores ev. A repeated request ID replaces the earlier row.
func (s *SQLiteStore) RecordSubmission(ev coremetrics.SubmissionEvent) error {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO submissions
        (request_id, ts, model, outcome, species, confidence, message, latency_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RequestID, ts.UnixNano(), ev.Model, ev.Outcome, ev.Species, ev.Confidence, ev.Message,
		float64(ev.Latency)/float64(time.Millisecond))
	return err
}

// Query returns matching records, newest first.
func (s *SQLiteStore) Query(f Filter) ([]Record, error) {
	q := `SELECT request_id, ts, model, outcome, species, confidence, message, latency_ms
        FROM submissions WHERE 1 = 1`
	var args []any
	if f.Model != "" {
		q += " AND model = ?"
		args = append(args, f.Model)
	}
	if f.Outcome != "" {
		q += " AND outcome = ?"
		args = append(args, f.Outcome)
	}
	if !f.Since.IsZero() {
		q += " AND ts >= ?"
		args = append(args, f.Since.UnixNano())
	}
	q += " ORDER BY ts DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var (
			r       Record
			ts      int64
			species sql.NullString
			message sql.NullString
			conf    sql.NullFloat64
			latency sql.NullFloat64
		)
		if err := rows.Scan(&r.RequestID, &ts, &r.Model, &r.Outcome, &species, &conf, &message, &latency); err != nil {
			return nil, err
		}
		r.Time = time.Unix(0, ts).UTC()
		r.Species = species.String
		r.Message = message.String
		r.Confidence = conf.Float64
		r.LatencyMS = latency.Float64
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Summarize groups stored submissions by model and outcome.
func (s *SQLiteStore) Summarize() ([]Summary, error) {
	rows, err := s.db.Query(`SELECT model, outcome, COUNT(*), AVG(latency_ms)
        FROM submissions GROUP BY model, outcome ORDER BY model, outcome`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Summary
	for rows.Next() {
		var sm Summary
		var avg sql.NullFloat64
		if err := rows.Scan(&sm.Model, &sm.Outcome, &sm.Count, &avg); err != nil {
			return nil, err
		}
		sm.AvgLatencyMS = avg.Float64
		res = append(res, sm)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
