// Package orders turns actionable signals into venue orders under the
// position ledger's single-entry discipline.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"springbot/exchange"
	"springbot/journal"
	"springbot/metrics"
	"springbot/notify"
	"springbot/positions"
	"springbot/risk"
	"springbot/strategy"
)

// quoteCoin is the balance coin order sizes are budgeted against.
const quoteCoin = "USDT"

// Controller places entry orders. Every attempt runs the same
// sequence: fresh position check, pending marker, sizing, order; the
// marker is rolled back on any failure so later cycles may retry.
type Controller struct {
	gw      exchange.Gateway
	ledger  *positions.Ledger
	risk    risk.Config
	journal journal.Journal
	notify  notify.Notifier
	log     zerolog.Logger
	now     func() time.Time
}

func NewController(
	gw exchange.Gateway,
	ledger *positions.Ledger,
	riskCfg risk.Config,
	jnl journal.Journal,
	notifier notify.Notifier,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		gw:      gw,
		ledger:  ledger,
		risk:    riskCfg,
		journal: jnl,
		notify:  notifier,
		log:     log.With().Str("component", "orders").Logger(),
		now:     time.Now,
	}
}

// Enter attempts the entry a signal asks for. A false return with nil
// error means the attempt was skipped (position already held, lost the
// pending race, or size rounded to zero); an error means the attempt
// was made and failed.
func (c *Controller) Enter(ctx context.Context, sig strategy.Signal) (bool, error) {
	if !sig.Actionable() {
		return false, fmt.Errorf("orders: signal for %s is not actionable", sig.Symbol)
	}

	// A fresh venue read, not the cached view: capital is at stake.
	if c.ledger.HasOpenPosition(ctx, sig.Symbol, false) {
		c.log.Debug().Str("symbol", sig.Symbol).Msg("entry skipped, position held")
		return false, nil
	}
	if !c.ledger.MarkPending(sig.Symbol) {
		c.log.Debug().Str("symbol", sig.Symbol).Msg("entry skipped, lost pending race")
		return false, nil
	}

	balances, err := c.gw.GetBalances(ctx)
	if err != nil {
		c.ledger.ClearPending(sig.Symbol)
		metrics.OrderFailures.WithLabelValues(sig.Symbol).Inc()
		return false, fmt.Errorf("orders: fetch balance: %w", err)
	}
	balance := balances[quoteCoin]

	qty := risk.Quantity(c.risk, balance, sig.Entry, sig.StopLoss)
	if qty == 0 {
		c.ledger.ClearPending(sig.Symbol)
		c.log.Info().
			Str("symbol", sig.Symbol).
			Float64("balance", balance).
			Float64("entry", sig.Entry).
			Float64("stop", sig.StopLoss).
			Msg("entry skipped, size rounds to zero")
		return false, nil
	}

	order := exchange.Order{
		Symbol:     sig.Symbol,
		Side:       sideFor(sig.Direction),
		Qty:        qty,
		TakeProfit: sig.TakeProfit,
		StopLoss:   sig.StopLoss,
	}
	if err := c.gw.PlaceMarketOrder(ctx, order); err != nil {
		c.ledger.ClearPending(sig.Symbol)
		metrics.OrderFailures.WithLabelValues(sig.Symbol).Inc()
		return false, fmt.Errorf("orders: place order: %w", err)
	}

	metrics.Orders.WithLabelValues(sig.Symbol, sig.Direction.String()).Inc()
	c.log.Info().
		Str("symbol", sig.Symbol).
		Str("direction", sig.Direction.String()).
		Float64("qty", qty).
		Float64("entry", sig.Entry).
		Float64("tp", sig.TakeProfit).
		Float64("sl", sig.StopLoss).
		Msg("entry order placed")

	// Bookkeeping failures must not unwind a live order.
	rec := journal.TradeRecord{
		ID:         journal.NewTradeID(),
		Time:       c.now().UTC(),
		Symbol:     sig.Symbol,
		Direction:  sig.Direction.String(),
		Entry:      sig.Entry,
		TakeProfit: sig.TakeProfit,
		StopLoss:   sig.StopLoss,
	}
	if err := c.journal.RecordTrade(rec); err != nil {
		c.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("journal entry record failed")
	}
	c.notify.Send(ctx, fmt.Sprintf(
		"ENTRY %s %s qty=%v entry=%v tp=%v sl=%v",
		sig.Symbol, sig.Direction, qty, sig.Entry, sig.TakeProfit, sig.StopLoss,
	))
	return true, nil
}

func sideFor(d strategy.Direction) exchange.Side {
	if d == strategy.Short {
		return exchange.Sell
	}
	return exchange.Buy
}
