package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tables/pkg/compression"
	"github.com/ajitpratap0/tables/pkg/errors"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, compression.None, cfg.CompressionConfig().Algorithm)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log encoding", func(c *Config) { c.Logging.Encoding = "xml" }},
		{"compression", func(c *Config) { c.Envelope.Compression = "brotli" }},
		{"compression level", func(c *Config) { c.Envelope.CompressionLevel = 3 }},
		{"metrics namespace", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }},
		{"trace exporter", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "jaeger" }},
		{"sample rate", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.SampleRate = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TABLES_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := `
name: inspector
logging:
  level: ${TABLES_LOG_LEVEL}
  encoding: ${TABLES_LOG_ENCODING:-json}
builder:
  lenient_dependencies: true
envelope:
  compression: zstd
  compression_level: 9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := NewConfig()
	require.NoError(t, Load(path, cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "inspector", cfg.Name)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.True(t, cfg.Builder.LenientDependencies)
	assert.True(t, cfg.Codec.Eager, "defaults survive for absent sections")
	assert.Equal(t, &compression.Config{Algorithm: compression.Zstd, Level: compression.Best}, cfg.CompressionConfig())
}

func TestLoadErrors(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), NewConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [unclosed"), 0o600))
	err = Load(path, NewConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Metrics.Enabled = true
	cfg.Tracing.SampleRate = 0.25
	cfg.Logging.OutputPaths = []string{"stderr"}

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	loaded := &Config{}
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A", "1")
	t.Setenv("EMPTY", "")

	assert.Equal(t, "x=1 y= z=fallback w=", substituteEnvVars("x=${A} y=${UNSET_VAR_FOR_TEST} z=${EMPTY:-fallback} w=${EMPTY}"))
	assert.Equal(t, "open ${A", substituteEnvVars("open ${A"))
}
