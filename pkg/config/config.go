// Package config defines the configuration of the tables CLI and the
// defaults it hands to builders and codecs.
//
// The configuration is organized into sections:
//   - Logging: zap level, encoding and outputs
//   - Builder: derivation dependency policy
//   - Codec: text codec read mode
//   - Envelope: payload compression for framed envelopes
//   - Metrics: Prometheus namespace
//   - Tracing: OpenTelemetry exporter and sampling
//
// Example usage:
//
//	cfg := config.NewConfig()
//	if err := config.Load("tables.yaml", cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ajitpratap0/tables/pkg/compression"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
)

// Config is the root configuration
type Config struct {
	// Name identifies the process in traces and logs
	Name string `yaml:"name" json:"name"`

	Logging  logger.Config  `yaml:"logging" json:"logging"`
	Builder  BuilderConfig  `yaml:"builder" json:"builder"`
	Codec    CodecConfig    `yaml:"codec" json:"codec"`
	Envelope EnvelopeConfig `yaml:"envelope" json:"envelope"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
}

// BuilderConfig contains table builder settings
type BuilderConfig struct {
	// LenientDependencies makes row expressions read missing columns as
	// absent instead of failing
	LenientDependencies bool `yaml:"lenient_dependencies" json:"lenient_dependencies"`
}

// CodecConfig contains text codec settings
type CodecConfig struct {
	// Eager parses the whole body on read and fails on malformed cells;
	// otherwise cells are parsed on access
	Eager bool `yaml:"eager" json:"eager"`
}

// EnvelopeConfig contains framed envelope settings
type EnvelopeConfig struct {
	// Compression selects the payload algorithm (none, gzip, snappy, lz4, zstd, s2, deflate, xz)
	Compression string `yaml:"compression" json:"compression"`
	// CompressionLevel sets ratio vs speed (1, 5, 7 or 9)
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// TracingConfig contains tracing settings
type TracingConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Exporter selects the span exporter (stdout)
	Exporter   string  `yaml:"exporter" json:"exporter"`
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewConfig returns a configuration with defaults applied
func NewConfig() *Config {
	return &Config{
		Name: "tables",
		Logging: logger.Config{
			Level:    "info",
			Encoding: "console",
		},
		Codec: CodecConfig{
			Eager: true,
		},
		Envelope: EnvelopeConfig{
			Compression:      string(compression.None),
			CompressionLevel: int(compression.Default),
		},
		Metrics: MetricsConfig{
			Namespace: "tables",
		},
		Tracing: TracingConfig{
			Exporter:   "stdout",
			SampleRate: 1.0,
		},
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "invalid log encoding: %q", c.Logging.Encoding)
	}

	if _, err := compression.ParseAlgorithm(c.Envelope.Compression); err != nil {
		return err
	}
	switch compression.Level(c.Envelope.CompressionLevel) {
	case compression.Fastest, compression.Default, compression.Better, compression.Best:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "invalid compression level: %d", c.Envelope.CompressionLevel)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New(errors.ErrorTypeConfig, "metrics namespace must be set when metrics are enabled")
	}

	if c.Tracing.Enabled {
		if c.Tracing.Exporter != "stdout" {
			return errors.Newf(errors.ErrorTypeConfig, "unsupported trace exporter: %q", c.Tracing.Exporter)
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return errors.Newf(errors.ErrorTypeConfig, "trace sample rate must be within [0, 1], got %g", c.Tracing.SampleRate)
		}
	}
	return nil
}

// CompressionConfig returns the envelope compression settings
func (c *Config) CompressionConfig() *compression.Config {
	algorithm, _ := compression.ParseAlgorithm(c.Envelope.Compression)
	return &compression.Config{
		Algorithm: algorithm,
		Level:     compression.Level(c.Envelope.CompressionLevel),
	}
}
