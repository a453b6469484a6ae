// Package exchange defines the interfaces the core trades through. The
// bybit package implements them against the real venue; the paper
// package implements them in memory for dry runs and tests.
package exchange

import (
	"context"

	"springbot/market"
)

// Side is an order direction in venue terms.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// Position is one venue-reported open position. Side reflects the
// direction the venue has on record, which closure accounting relies
// on instead of re-deriving direction from price movement.
type Position struct {
	Symbol     string
	Side       Side
	Size       float64
	EntryPrice float64
}

// Order is a market order request. TakeProfit and StopLoss are
// optional; zero means "do not attach".
type Order struct {
	Symbol     string
	Side       Side
	Qty        float64
	TakeProfit float64
	StopLoss   float64
}

// MarketData serves candle history, oldest first. An empty result
// means the venue has no data for the symbol; it is not an error.
type MarketData interface {
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error)
}

// Gateway is the full trading surface the core consumes. All calls are
// blocking; transport-level timeouts and retries belong to the
// implementation.
type Gateway interface {
	MarketData

	// GetPositions returns the venue's open positions for the symbol.
	GetPositions(ctx context.Context, symbol string) ([]Position, error)

	// GetBalances maps coin to available balance.
	GetBalances(ctx context.Context) (map[string]float64, error)

	// PlaceMarketOrder submits the order and returns once the venue
	// acknowledges it.
	PlaceMarketOrder(ctx context.Context, order Order) error
}
