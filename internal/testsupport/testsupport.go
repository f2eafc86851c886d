package testsupport

import (
	"path/filepath"
	"testing"

	"swansong/internal/config"
	"swansong/internal/session"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Replicate.APIToken = "test-token"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithStoreBackend selects the session store backend on the test config.
func WithStoreBackend(backend string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Store.Backend = backend
	}
}

// WithStages overrides the enabled pipeline stage list.
func WithStages(stages ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.Stages = stages
	}
}

// MustOpenStore opens the configured session store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) session.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close session store: %v", err)
		}
	})
	return store
}
