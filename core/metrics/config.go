package metrics

import "github.com/kilianp07/iris/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	// PrometheusPort is the listen address of the /metrics endpoint.
	// Empty disables the endpoint.
	PrometheusPort string                 `json:"prometheus_port"`
	Sinks          []factory.ModuleConfig `json:"sinks"`
}
