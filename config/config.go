package config

import (
	"fmt"

	"github.com/apokryfos/Enumerable/logger"
	"github.com/apokryfos/Enumerable/validation"
)

// ServiceName names the command in logs, telemetry and file lookup.
const ServiceName = "enumerate"

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the enumerate command configuration.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Input       InputConfig   `yaml:"input" mapstructure:"input"`
	Output      OutputConfig  `yaml:"output" mapstructure:"output"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// InputConfig describes how input documents are decoded.
type InputConfig struct {
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json yaml"`
}

// OutputConfig describes how results are written.
type OutputConfig struct {
	Pretty bool `yaml:"pretty" mapstructure:"pretty"`
}

// MetricsConfig selects where pipeline telemetry goes.
type MetricsConfig struct {
	// Prometheus collects terminal counters in a local registry.
	Prometheus bool `yaml:"prometheus" mapstructure:"prometheus"`
	// OTLPEndpoint enables OTLP export of metrics and traces when set.
	OTLPEndpoint string `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint" validate:"omitempty,hostname_port"`
	Insecure     bool   `yaml:"insecure" mapstructure:"insecure"`
}

// OTLP reports whether OTLP export is configured.
func (c *MetricsConfig) OTLP() bool {
	return c.OTLPEndpoint != ""
}

// ApplyDefaults fills in unset values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Input.Format == "" {
		c.Input.Format = FormatJSON
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
