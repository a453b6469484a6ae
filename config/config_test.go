package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidatesInPaperMode(t *testing.T) {
	cfg := Default()
	cfg.Paper = true
	assert.NoError(t, cfg.Validate())
}

func TestLiveModeRequiresCredentials(t *testing.T) {
	cfg := Default()
	cfg.Paper = false
	cfg.Credentials = Credentials{}
	assert.Error(t, cfg.Validate())

	cfg.Credentials = Credentials{BybitKey: "k", BybitSecret: "s"}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "key-from-env")
	t.Setenv("BYBIT_API_SECRET", "secret-from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbols: [ETHUSDT, SOLUSDT]
interval: "5"
cadence: 15s
journal: sqlite
journal_path: trades.db
strategy:
  rsi_long: 20
risk:
  risk_pct: 0.01
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, cfg.Symbols)
	assert.Equal(t, "5", cfg.Interval)
	assert.Equal(t, 15*time.Second, cfg.Cadence.Std())
	assert.Equal(t, "sqlite", cfg.Journal)
	assert.Equal(t, 20.0, cfg.Strategy.RSILong)
	assert.Equal(t, 0.01, cfg.Risk.RiskPct)

	// Untouched keys keep their defaults.
	assert.Equal(t, 200, cfg.KlineLimit)
	assert.Equal(t, 5*time.Minute, cfg.PendingTTL.Std())

	assert.Equal(t, "key-from-env", cfg.Credentials.BybitKey)
	assert.Equal(t, "secret-from-env", cfg.Credentials.BybitSecret)
}

func TestLoad_RejectsBadJournal(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "k")
	t.Setenv("BYBIT_API_SECRET", "s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal: mongodb\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal")
}

func TestValidate_StrategyErrorsPropagate(t *testing.T) {
	cfg := Default()
	cfg.Paper = true
	cfg.Strategy.RSIPeriod = 0
	assert.Error(t, cfg.Validate())
}
