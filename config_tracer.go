package fmtasks

import "github.com/pkg/errors"

// TracerConfig configures the OpenTelemetry tracer provider. If not enabled traces will not be sent.
type TracerConfig struct {
	Enabled           bool   `yaml:"enabled" toml:"enabled"`
	CollectorEndpoint string `yaml:"collector_endpoint" toml:"collector_endpoint"`
	// Insecure disables TLS on the connection to the collector.
	Insecure bool `yaml:"insecure" toml:"insecure"`
}

// ValidateAndDefault validates the tracer configuration.
func (c *TracerConfig) ValidateAndDefault() error {
	if c.Enabled && c.CollectorEndpoint == "" {
		return errors.New("tracer can't be enabled without a collector endpoint")
	}
	return nil
}
