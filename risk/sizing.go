// Package risk computes position sizes under an explicit risk budget.
package risk

import (
	"fmt"
	"math"
)

// Config bounds every order the bot may place. Values are fractions,
// not percentages.
type Config struct {
	// RiskPct is the fraction of the account balance risked between
	// entry and stop on a single trade.
	RiskPct float64 `yaml:"risk_pct"`

	// MinOrderNotional is the venue's minimum order value in the quote
	// coin; risk-derived quantities below it are bumped up to meet it.
	MinOrderNotional float64 `yaml:"min_order_notional"`

	// MaxPositionPct caps the position's notional as a fraction of the
	// account balance.
	MaxPositionPct float64 `yaml:"max_position_pct"`
}

func DefaultConfig() Config {
	return Config{
		RiskPct:          0.02,
		MinOrderNotional: 5,
		MaxPositionPct:   0.10,
	}
}

func (c Config) Validate() error {
	if c.RiskPct <= 0 || c.RiskPct > 1 {
		return fmt.Errorf("risk: risk_pct must be in (0,1]")
	}
	if c.MinOrderNotional <= 0 {
		return fmt.Errorf("risk: min_order_notional must be positive")
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("risk: max_position_pct must be in (0,1]")
	}
	return nil
}

// Quantity converts a risk budget into an integer-lot order size.
//
// The risk-derived quantity is floored, bumped up to the venue's
// minimum notional when too small, then capped by the maximum position
// size. A result of zero means the signal is not actionable at current
// capital; it is a rejection, not an error.
func Quantity(cfg Config, balance, entry, stop float64) float64 {
	if cfg.Validate() != nil {
		return 0
	}
	if balance <= 0 || entry <= 0 {
		return 0
	}

	// Zero risk distance is undefined, not infinite size.
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return 0
	}

	riskNotional := balance * cfg.RiskPct
	qty := math.Floor(riskNotional / dist)

	if entry*qty < cfg.MinOrderNotional {
		qty = math.Ceil(cfg.MinOrderNotional / entry)
	}

	maxQty := math.Floor(cfg.MaxPositionPct * balance / entry)
	if qty > maxQty {
		qty = maxQty
	}

	if qty < 1 {
		return 0
	}
	return qty
}
