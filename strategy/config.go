package strategy

import "fmt"

// Config carries every tunable of the decision engine. It is immutable
// once handed to NewEngine; the engine never reads ambient state.
type Config struct {
	EnableLong  bool `yaml:"enable_long"`
	EnableShort bool `yaml:"enable_short"`

	RSIPeriod int     `yaml:"rsi_period"`
	RSILong   float64 `yaml:"rsi_long"`  // long candidate when RSI below
	RSIShort  float64 `yaml:"rsi_short"` // short candidate when RSI above

	EMAPeriod    int     `yaml:"ema_period"`
	ATRPeriod    int     `yaml:"atr_period"`
	VolumePeriod int     `yaml:"volume_period"`
	VolumeMult   float64 `yaml:"volume_mult"`

	// MinATRPct gates out dead markets: skip the symbol when ATR as a
	// percentage of the last close is below this. Zero disables.
	MinATRPct float64 `yaml:"min_atr_pct"`

	TPLongATR  float64 `yaml:"tp_long_atr"`
	SLLongATR  float64 `yaml:"sl_long_atr"`
	TPShortATR float64 `yaml:"tp_short_atr"`
	SLShortATR float64 `yaml:"sl_short_atr"`

	// MinTPPct / MinSLPct keep targets from collapsing onto the entry
	// in low-ATR regimes.
	MinTPPct float64 `yaml:"min_tp_pct"`
	MinSLPct float64 `yaml:"min_sl_pct"`

	EnablePatterns bool `yaml:"enable_patterns"`
	UseTrendFilter bool `yaml:"use_trend_filter"`
}

// DefaultConfig returns the engine defaults: oversold/overbought RSI
// reversal on the 15m timeframe with EMA trend confirmation.
func DefaultConfig() Config {
	return Config{
		EnableLong:     true,
		EnableShort:    true,
		RSIPeriod:      14,
		RSILong:        25,
		RSIShort:       70,
		EMAPeriod:      50,
		ATRPeriod:      14,
		VolumePeriod:   20,
		VolumeMult:     1.5,
		MinATRPct:      0.3,
		TPLongATR:      2.5,
		SLLongATR:      1.2,
		TPShortATR:     2.5,
		SLShortATR:     1.2,
		MinTPPct:       0.01,
		MinSLPct:       0.01,
		EnablePatterns: false,
		UseTrendFilter: true,
	}
}

// Validate checks the parameters a broken value of which would make
// evaluation nonsensical rather than merely unprofitable.
func (c Config) Validate() error {
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("strategy: rsi_period must be positive")
	}
	if c.ATRPeriod <= 0 {
		return fmt.Errorf("strategy: atr_period must be positive")
	}
	if c.EMAPeriod <= 0 {
		return fmt.Errorf("strategy: ema_period must be positive")
	}
	if c.VolumePeriod <= 0 {
		return fmt.Errorf("strategy: volume_period must be positive")
	}
	if c.RSILong < 0 || c.RSILong > 100 || c.RSIShort < 0 || c.RSIShort > 100 {
		return fmt.Errorf("strategy: RSI thresholds must be in [0,100]")
	}
	if c.MinTPPct < 0 || c.MinSLPct < 0 {
		return fmt.Errorf("strategy: min_tp_pct and min_sl_pct must not be negative")
	}
	return nil
}
