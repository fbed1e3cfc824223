// Package e2e holds container backed tests of the full submission flow.
package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small query helper used to read back what the influx
// sink wrote.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// Submission is one prediction_submission point as read back.
type Submission struct {
	Model   string
	Outcome string
	Species string
}

// Submissions returns the prediction_submission points of the last hour.
func (c *InfluxClient) Submissions(ctx context.Context) ([]Submission, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == "prediction_submission" and r._field == "latency_ms")`, c.bucket)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	var out []Submission
	for res.Next() {
		rec := res.Record()
		s := Submission{}
		if v, ok := rec.ValueByKey("model").(string); ok {
			s.Model = v
		}
		if v, ok := rec.ValueByKey("outcome").(string); ok {
			s.Outcome = v
		}
		if v, ok := rec.ValueByKey("species").(string); ok {
			s.Species = v
		}
		out = append(out, s)
	}
	return out, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
