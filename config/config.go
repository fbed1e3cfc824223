// Package config loads the iris configuration from a YAML or JSON file with
// IRIS_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/iris/backend"
	"github.com/kilianp07/iris/core/metrics"
	"github.com/kilianp07/iris/infra/logger"
	"github.com/kilianp07/iris/infra/mqtt"
)

// EnvPrefix marks environment overrides. IRIS_FORM__ERROR_DISPLAY_MS maps
// to form.error_display_ms.
const EnvPrefix = "IRIS_"

type Config struct {
	Endpoint EndpointConfig `json:"endpoint"`
	Form     FormConfig     `json:"form"`
	Logging  logger.Config  `json:"logging"`
	Metrics  metrics.Config `json:"metrics"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Server   ServerConfig   `json:"server"`
	Mock     backend.Config `json:"mock"`
	Sentry   SentryConfig   `json:"sentry"`
}

// Load reads path, applies env overrides and defaults, then validates. An
// empty path yields the defaults plus env overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Endpoint.SetDefaults()
	c.Form.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.Server.SetDefaults()
	c.Mock.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Endpoint.Validate(); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if err := c.Form.Validate(); err != nil {
		return fmt.Errorf("form: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Mock.Validate(); err != nil {
		return fmt.Errorf("mock: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
