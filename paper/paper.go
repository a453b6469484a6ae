// Package paper implements exchange.Gateway in memory. Market data is
// delegated to a real feed while orders, positions and balances are
// simulated, so a dry run exercises the full decision and entry path
// without risking capital.
package paper

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"springbot/exchange"
	"springbot/market"
)

// settleCoin is the coin simulated fills settle into.
const settleCoin = "USDT"

type position struct {
	exchange.Position
	takeProfit float64
	stopLoss   float64
}

// Gateway simulates the trading surface over a real market data feed.
// Fills happen at the last close; take-profit and stop-loss are settled
// against the most recent candle on each position read, stop first.
type Gateway struct {
	md       exchange.MarketData
	log      zerolog.Logger
	interval string

	mu        sync.Mutex
	balances  map[string]float64
	positions map[string]*position
}

// NewGateway builds a simulated gateway funded with balance units of
// USDT. interval is the candle interval used for fill and settlement
// prices, in venue notation.
func NewGateway(md exchange.MarketData, log zerolog.Logger, interval string, balance float64) *Gateway {
	return &Gateway{
		md:       md,
		log:      log.With().Str("component", "paper").Logger(),
		interval: interval,
		balances:  map[string]float64{settleCoin: balance},
		positions: make(map[string]*position),
	}
}

func (g *Gateway) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	return g.md.GetKlines(ctx, symbol, interval, limit)
}

// GetPositions settles any take-profit or stop-loss crossed by the
// latest candle, then reports what remains open.
func (g *Gateway) GetPositions(ctx context.Context, symbol string) ([]exchange.Position, error) {
	g.mu.Lock()
	p, ok := g.positions[symbol]
	g.mu.Unlock()

	if !ok {
		return nil, nil
	}

	candles, err := g.md.GetKlines(ctx, symbol, g.interval, 1)
	if err != nil {
		return nil, err
	}
	if len(candles) > 0 {
		last := candles[len(candles)-1]
		if exit, hit := p.exitPrice(last.High, last.Low); hit {
			g.settle(symbol, p, exit)
			return nil, nil
		}
	}
	return []exchange.Position{p.Position}, nil
}

func (g *Gateway) GetBalances(ctx context.Context) (map[string]float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]float64, len(g.balances))
	for coin, v := range g.balances {
		out[coin] = v
	}
	return out, nil
}

// PlaceMarketOrder fills immediately at the latest close. One net
// position per symbol, matching the venue's one-way mode.
func (g *Gateway) PlaceMarketOrder(ctx context.Context, order exchange.Order) error {
	if order.Qty <= 0 {
		return fmt.Errorf("paper: quantity must be positive, got %v", order.Qty)
	}

	candles, err := g.md.GetKlines(ctx, order.Symbol, g.interval, 1)
	if err != nil {
		return fmt.Errorf("paper: fill price: %w", err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("paper: no market data for %s", order.Symbol)
	}
	fill := candles[len(candles)-1].Close

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.positions[order.Symbol]; ok {
		return fmt.Errorf("paper: position already open for %s", order.Symbol)
	}

	g.positions[order.Symbol] = &position{
		Position: exchange.Position{
			Symbol:     order.Symbol,
			Side:       order.Side,
			Size:       order.Qty,
			EntryPrice: fill,
		},
		takeProfit: order.TakeProfit,
		stopLoss:   order.StopLoss,
	}

	g.log.Info().
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Float64("qty", order.Qty).
		Float64("fill", fill).
		Msg("simulated fill")
	return nil
}

// exitPrice reports whether the candle's range crossed the stop or
// target. The stop wins when both are inside the same candle.
func (p *position) exitPrice(high, low float64) (float64, bool) {
	if p.Side == exchange.Buy {
		if p.stopLoss > 0 && low <= p.stopLoss {
			return p.stopLoss, true
		}
		if p.takeProfit > 0 && high >= p.takeProfit {
			return p.takeProfit, true
		}
		return 0, false
	}
	if p.stopLoss > 0 && high >= p.stopLoss {
		return p.stopLoss, true
	}
	if p.takeProfit > 0 && low <= p.takeProfit {
		return p.takeProfit, true
	}
	return 0, false
}

func (g *Gateway) settle(symbol string, p *position, exit float64) {
	pnl := (exit - p.EntryPrice) * p.Size
	if p.Side == exchange.Sell {
		pnl = -pnl
	}

	g.mu.Lock()
	delete(g.positions, symbol)
	g.balances[settleCoin] += pnl
	g.mu.Unlock()

	g.log.Info().
		Str("symbol", symbol).
		Str("side", string(p.Side)).
		Float64("exit", exit).
		Float64("pnl", pnl).
		Msg("simulated close")
}
