package main

import (
	"context"
	"io"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/config"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
	"github.com/ajitpratap0/tables/pkg/metrics"
	"github.com/ajitpratap0/tables/pkg/observability"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/tables/textio"
)

// app carries what every subcommand shares once setup has run
type app struct {
	viper      *viper.Viper
	configFile string

	cfg      *config.Config
	log      *zap.Logger
	metrics  *metrics.Collector
	shutdown func(context.Context) error
}

// flag name -> configuration key
var flagKeys = map[string]string{
	"log-level":         "logging.level",
	"log-format":        "logging.encoding",
	"lenient":           "builder.lenient_dependencies",
	"compression":       "envelope.compression",
	"compression-level": "envelope.compression_level",
	"metrics":           "metrics.enabled",
	"trace":             "tracing.enabled",
}

func (a *app) bindFlags(root *cobra.Command) {
	a.viper = viper.New()
	a.viper.SetEnvPrefix("TABLES")
	a.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.viper.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to a YAML configuration file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log encoding (console, json)")
	flags.Bool("lenient", false, "Read columns missing from a derivation as absent instead of failing")
	flags.String("compression", "", "Envelope payload compression (none, gzip, snappy, lz4, zstd, s2, deflate, xz)")
	flags.Int("compression-level", 0, "Compression level (1, 5, 7, 9)")
	flags.Bool("metrics", false, "Print Prometheus metrics to stderr when the command ends")
	flags.Bool("trace", false, "Export spans to stderr")

	for flag, key := range flagKeys {
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// setup resolves the configuration (defaults < file < env < flags) and
// starts logging, metrics and tracing
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewConfig()
	if a.configFile != "" {
		if err := config.Load(a.configFile, cfg); err != nil {
			return err
		}
	}

	v := a.viper
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.encoding", cfg.Logging.Encoding)
	v.SetDefault("builder.lenient_dependencies", cfg.Builder.LenientDependencies)
	v.SetDefault("envelope.compression", cfg.Envelope.Compression)
	v.SetDefault("envelope.compression_level", cfg.Envelope.CompressionLevel)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)

	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Encoding = v.GetString("logging.encoding")
	cfg.Builder.LenientDependencies = v.GetBool("builder.lenient_dependencies")
	cfg.Envelope.Compression = v.GetString("envelope.compression")
	cfg.Envelope.CompressionLevel = v.GetInt("envelope.compression_level")
	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Tracing.Enabled = v.GetBool("tracing.enabled")

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	a.log = logger.With(zap.String("command", cmd.Name()))

	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewCollector(cfg.Metrics.Namespace, nil)
	}

	a.shutdown = func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: version,
			SamplingRate:   cfg.Tracing.SampleRate,
			ExporterType:   cfg.Tracing.Exporter,
			Writer:         cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	a.log.Debug("configuration resolved",
		zap.String("config_file", a.configFile),
		zap.String("compression", cfg.Envelope.Compression),
		zap.Bool("lenient_dependencies", cfg.Builder.LenientDependencies),
		zap.Bool("tracing", cfg.Tracing.Enabled))
	return nil
}

// teardown flushes spans and dumps metrics. It runs after every command,
// failed ones included, and is a no-op when setup never ran.
func (a *app) teardown(cmd *cobra.Command) error {
	var firstErr error
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			firstErr = errors.Wrap(err, errors.ErrorTypeInternal, "failed to flush spans")
		}
		a.shutdown = nil
	}
	if a.metrics != nil {
		if err := a.dumpMetrics(cmd.ErrOrStderr()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return firstErr
}

func (a *app) dumpMetrics(w io.Writer) error {
	families, err := a.metrics.Registry().Gather()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics")
		}
	}
	return nil
}

func (a *app) builderOptions() []tables.Option {
	opts := []tables.Option{tables.WithLogger(a.log), tables.WithMetrics(a.metrics)}
	if a.cfg.Builder.LenientDependencies {
		opts = append(opts, tables.WithLenientDependencies())
	}
	return opts
}

func (a *app) codecOptions() []textio.Option {
	return []textio.Option{textio.WithLogger(a.log), textio.WithMetrics(a.metrics)}
}
