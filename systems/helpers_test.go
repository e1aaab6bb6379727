package systems

import (
	"testing"

	"github.com/pthm-cable/gulp/config"
)

// testConfig loads the embedded defaults and lets a test tweak them.
func testConfig(t testing.TB, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}
