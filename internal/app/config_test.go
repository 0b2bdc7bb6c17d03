package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "exact", cfg.TenderMode)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.BaseURL)
	assert.Zero(t, cfg.ReportsCacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("POS_BRANCH_ID=7\nPOS_TENDER_MODE=CENTS\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("POS_BRANCH_ID")
		_ = os.Unsetenv("POS_TENDER_MODE")
	})

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.EqualValues(t, 7, cfg.BranchID)
	assert.Equal(t, "cents", cfg.TenderMode)
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("POS_STORE", "indexeddb")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestValidateRejectsUnknownTenderMode(t *testing.T) {
	cfg := Config{Store: "memory", TenderMode: "epsilon", BaseURL: "http://x", SearchDebounce: time.Second}
	require.Error(t, cfg.Validate())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &Config{LogFormat: "json", LogLevel: "debug"})
	logger.Debug("cart saved", "lines", 2)

	assert.Contains(t, buf.String(), `"msg":"cart saved"`)
	assert.Contains(t, buf.String(), `"lines":2`)
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &Config{LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInTestMode(t *testing.T) {
	t.Setenv(TestModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(TestModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

func TestStoreDirExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Config{StorePath: "~/pos"}
	assert.Equal(t, filepath.Join(home, "pos"), cfg.StoreDir())

	cfg.StorePath = ""
	assert.Equal(t, ".odyssey-pos", cfg.StoreDir())
}

func TestLoadConfigReportsCacheTTL(t *testing.T) {
	t.Setenv("POS_REPORTS_CACHE_TTL", "2m")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.ReportsCacheTTL)

	t.Setenv("POS_REPORTS_CACHE_TTL", "-1s")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
