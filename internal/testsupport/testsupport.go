// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/sciados/campaign-backend-sub004/internal/config"
)

// NewConfig returns a default configuration rooted in a per-test temp
// directory so tests never touch real user paths.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}
