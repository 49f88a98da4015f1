package testsupport

import (
	"path/filepath"
	"testing"

	"tagres/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Output, state and history live below one temp root; no resource groups are
// configured unless an option adds them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.BaseDir = base
	cfgVal.Paths.OutputDir = filepath.Join(base, "generated")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithResourceDir adds a resource group rooted at dir with optional include
// globs.
func WithResourceDir(dir string, includes ...string) ConfigOption {
	return func(b *configBuilder) {
		if err := b.cfg.AddResource(dir, includes, nil); err != nil {
			b.t.Fatalf("add resource %s: %v", dir, err)
		}
	}
}

// WithChecksum selects the checksum algorithm.
func WithChecksum(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tagging.Checksum = name
	}
}

// WithIndexEncoding selects the index charset.
func WithIndexEncoding(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tagging.IndexEncoding = name
	}
}

// WithHistoryDisabled turns off the run ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.BaseDir
}
