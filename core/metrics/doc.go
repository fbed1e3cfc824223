// Package metrics defines the sinks that record prediction form activity.
// Concrete sinks (Prometheus, InfluxDB) live in infra/metrics and register
// themselves with RegisterMetricsSink. NewMetricsSink returns a MultiSink
// when several sinks are configured.
package metrics
