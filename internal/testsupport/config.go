package testsupport

import (
	"path/filepath"
	"testing"

	"kallisto/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLockTTLSeconds overrides the page lock TTL on the test config.
func WithLockTTLSeconds(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cleaning.LockTTLSeconds = seconds
	}
}

// WithTranscriptName overrides the export transcript name on the test config.
func WithTranscriptName(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cleaning.TranscriptName = name
	}
}
