package metrics

import (
	"github.com/kilianp07/iris/core/factory"
	coremetrics "github.com/kilianp07/iris/core/metrics"
	"github.com/kilianp07/iris/infra/history"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})

	_ = coremetrics.RegisterMetricsSink("sqlite", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c history.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		store, err := history.Open(c.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}
