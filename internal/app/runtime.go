package app

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// TestModeEnv set to 1 keeps main from starting the register.
const TestModeEnv = "POS_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeInit sync.Once
)

func loadTestMode() {
	testMode.Store(os.Getenv(TestModeEnv) == "1")
}

// InTestMode reports whether main should skip terminal and network side effects.
func InTestMode() bool {
	testModeInit.Do(loadTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads POS_TEST_MODE after the environment changed.
func RefreshTestMode() {
	testModeInit.Do(func() {})
	loadTestMode()
}

// StoreDir resolves POS_STORE_PATH, expanding a leading ~ to the user's home.
func (c *Config) StoreDir() string {
	path := strings.TrimSpace(c.StorePath)
	if path == "" {
		path = ".odyssey-pos"
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}
