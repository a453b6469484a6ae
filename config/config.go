// Package config loads the bot's configuration: a YAML file for
// strategy and risk tuning, environment variables (optionally via a
// .env file) for credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"springbot/risk"
	"springbot/strategy"
)

// Duration accepts "30s" / "5m" style values in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"30s\"")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Credentials come exclusively from the environment, never from the
// YAML file, so config files stay shareable.
type Credentials struct {
	BybitKey    string
	BybitSecret string

	TelegramToken  string
	TelegramChatID string
}

// Config is the full runtime configuration.
type Config struct {
	// Symbols the bot trades, in venue notation (e.g. BTCUSDT).
	Symbols []string `yaml:"symbols"`

	// Interval is the candle interval in venue notation ("15" for
	// 15 minutes).
	Interval string `yaml:"interval"`

	// KlineLimit is how much history each evaluation fetches.
	KlineLimit int `yaml:"kline_limit"`

	// Cadence between evaluation cycles.
	Cadence Duration `yaml:"cadence"`

	// PendingTTL bounds how long an unconfirmed entry blocks a symbol.
	PendingTTL Duration `yaml:"pending_ttl"`

	// Testnet routes orders to the venue's paper environment.
	Testnet bool `yaml:"testnet"`

	// Paper simulates fills in-process; no venue orders at all. Market
	// data still comes from the venue.
	Paper bool `yaml:"paper"`

	// PaperBalance funds the simulated account.
	PaperBalance float64 `yaml:"paper_balance"`

	// Journal selects the trade log backend: "csv" or "sqlite".
	Journal     string `yaml:"journal"`
	JournalPath string `yaml:"journal_path"`

	// MetricsAddr exposes Prometheus metrics when set (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`

	Strategy strategy.Config `yaml:"strategy"`
	Risk     risk.Config     `yaml:"risk"`

	Credentials Credentials `yaml:"-"`
}

// Default returns the configuration the bot runs with when no file is
// given.
func Default() Config {
	return Config{
		Symbols:      []string{"BTCUSDT"},
		Interval:     "15",
		KlineLimit:   200,
		Cadence:      Duration(30 * time.Second),
		PendingTTL:   Duration(5 * time.Minute),
		Testnet:      true,
		PaperBalance: 10000,
		Journal:      "csv",
		JournalPath:  "trades.csv",
		Strategy:     strategy.DefaultConfig(),
		Risk:         risk.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, overlays the YAML file
// at path when non-empty, then reads credentials from the environment.
// A .env file in the working directory is honored when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// Missing .env is fine; the explicit environment always wins.
	_ = godotenv.Load()

	cfg.Credentials = Credentials{
		BybitKey:       os.Getenv("BYBIT_API_KEY"),
		BybitSecret:    os.Getenv("BYBIT_API_SECRET"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: at least one symbol is required")
	}
	for _, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("config: empty symbol")
		}
	}
	if c.Interval == "" {
		return fmt.Errorf("config: interval is required")
	}
	if c.KlineLimit <= 0 {
		return fmt.Errorf("config: kline_limit must be positive")
	}
	if c.Cadence <= 0 {
		return fmt.Errorf("config: cadence must be positive")
	}
	if c.PendingTTL < 0 {
		return fmt.Errorf("config: pending_ttl must not be negative")
	}
	switch c.Journal {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("config: journal must be csv or sqlite, got %q", c.Journal)
	}
	if c.JournalPath == "" {
		return fmt.Errorf("config: journal_path is required")
	}
	if c.Paper && c.PaperBalance <= 0 {
		return fmt.Errorf("config: paper_balance must be positive in paper mode")
	}
	if !c.Paper && c.Credentials.BybitKey == "" {
		return fmt.Errorf("config: BYBIT_API_KEY is required for live trading")
	}
	if !c.Paper && c.Credentials.BybitSecret == "" {
		return fmt.Errorf("config: BYBIT_API_SECRET is required for live trading")
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	return c.Risk.Validate()
}
