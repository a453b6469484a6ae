// Package bot wires the decision engine, position ledger, entry
// controller and journal into the periodic trading loop.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"springbot/exchange"
	"springbot/journal"
	"springbot/metrics"
	"springbot/notify"
	"springbot/orders"
	"springbot/positions"
	"springbot/strategy"
)

// Runner drives the trading loop: one evaluation cycle per symbol per
// tick.
type Runner struct {
	gw       exchange.Gateway
	engine   *strategy.Engine
	ledger   *positions.Ledger
	entry    *orders.Controller
	journal  journal.Journal
	notify   notify.Notifier
	log      zerolog.Logger
	now      func() time.Time

	symbols    []string
	interval   string
	klineLimit int
	cadence    time.Duration

	// lastOpen remembers the most recent Open entry per symbol so a
	// later Absent report can be recognized as a closure and priced
	// with the recorded direction.
	mu       sync.Mutex
	lastOpen map[string]positions.Entry
}

// Options carries the loop parameters.
type Options struct {
	Symbols    []string
	Interval   string
	KlineLimit int
	Cadence    time.Duration
}

func NewRunner(
	gw exchange.Gateway,
	engine *strategy.Engine,
	ledger *positions.Ledger,
	entry *orders.Controller,
	jnl journal.Journal,
	notifier notify.Notifier,
	log zerolog.Logger,
	opts Options,
) *Runner {
	return &Runner{
		gw:         gw,
		engine:     engine,
		ledger:     ledger,
		entry:      entry,
		journal:    jnl,
		notify:     notifier,
		log:        log.With().Str("component", "bot").Logger(),
		now:        time.Now,
		symbols:    opts.Symbols,
		interval:   opts.Interval,
		klineLimit: opts.KlineLimit,
		cadence:    opts.Cadence,
		lastOpen:   make(map[string]positions.Entry),
	}
}

// Run starts the loop and blocks until the context is canceled. The
// first cycle runs immediately; later ones on the configured cadence,
// with overlapping ticks skipped.
func (r *Runner) Run(ctx context.Context) error {
	r.startup(ctx)

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", r.cadence), func() {
		r.cycleAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("bot: schedule: %w", err)
	}

	r.cycleAll(ctx)
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()

	r.notify.Send(context.Background(), "springbot stopped")
	r.log.Info().Msg("stopped")
	return ctx.Err()
}

// startup reports account and journal state before the first cycle.
func (r *Runner) startup(ctx context.Context) {
	if balances, err := r.gw.GetBalances(ctx); err != nil {
		r.log.Warn().Err(err).Msg("startup balance check failed")
	} else {
		r.log.Info().Interface("balances", balances).Msg("account balances")
	}

	if s, err := r.journal.Summary(); err != nil {
		r.log.Warn().Err(err).Msg("journal summary failed")
	} else if s.Total > 0 {
		r.log.Info().
			Int("trades", s.Total).
			Int("wins", s.Wins).
			Int("losses", s.Losses).
			Float64("win_rate", s.WinRate).
			Float64("pnl", s.TotalPnL).
			Msg("journal summary")
	}

	r.notify.Send(ctx, fmt.Sprintf(
		"springbot started: %d symbol(s), %s candles, every %s",
		len(r.symbols), r.interval, r.cadence,
	))
	r.log.Info().
		Strs("symbols", r.symbols).
		Str("interval", r.interval).
		Dur("cadence", r.cadence).
		Msg("started")
}

// cycleAll runs one cycle per symbol. A panic in one symbol's cycle is
// contained so the remaining symbols still run.
func (r *Runner) cycleAll(ctx context.Context) {
	for _, symbol := range r.symbols {
		func() {
			defer func() {
				if p := recover(); p != nil {
					r.log.Error().Str("symbol", symbol).
						Interface("panic", p).Msg("cycle panicked")
					r.notify.Send(ctx, fmt.Sprintf("ALERT: cycle for %s panicked: %v", symbol, p))
				}
			}()
			if err := r.ProcessCycle(ctx, symbol); err != nil {
				r.log.Error().Err(err).Str("symbol", symbol).Msg("cycle failed")
			}
		}()
	}
}

// ProcessCycle runs one full cycle for a symbol: reconcile the ledger,
// account for any closure, evaluate, and enter when signaled.
func (r *Runner) ProcessCycle(ctx context.Context, symbol string) error {
	metrics.Cycles.WithLabelValues(symbol).Inc()

	cur := r.ledger.Refresh(ctx, symbol)
	r.accountClosure(ctx, symbol, cur)

	candles, err := r.gw.GetKlines(ctx, symbol, r.interval, r.klineLimit)
	if err != nil {
		return fmt.Errorf("bot: fetch klines: %w", err)
	}

	sig := r.engine.Evaluate(symbol, candles, cur.State != positions.Absent)
	r.log.Debug().
		Str("symbol", symbol).
		Str("direction", sig.Direction.String()).
		Str("reason", sig.Reason).
		Strs("trace", sig.Trace).
		Msg("evaluated")

	if !sig.Actionable() {
		return nil
	}
	metrics.Signals.WithLabelValues(symbol, sig.Direction.String()).Inc()

	entered, err := r.entry.Enter(ctx, sig)
	if err != nil {
		return err
	}
	if entered {
		if e := r.ledger.Get(symbol); e.State == positions.Open {
			r.rememberOpen(e)
		}
	}
	return nil
}

// accountClosure compares the refreshed state with the last observed
// open position. Open to Absent means the venue closed the position
// (TP, SL or manual); the closure is priced at the latest close using
// the direction recorded at entry.
func (r *Runner) accountClosure(ctx context.Context, symbol string, cur positions.Entry) {
	r.mu.Lock()
	prev, had := r.lastOpen[symbol]
	if cur.State == positions.Open {
		r.lastOpen[symbol] = cur
	} else if cur.State == positions.Absent && had {
		delete(r.lastOpen, symbol)
	}
	r.mu.Unlock()

	if !had || cur.State != positions.Absent {
		return
	}

	candles, err := r.gw.GetKlines(ctx, symbol, r.interval, 1)
	if err != nil || len(candles) == 0 {
		r.log.Warn().Err(err).Str("symbol", symbol).
			Msg("closure detected but exit price unavailable")
		return
	}
	exit := candles[len(candles)-1].Close

	pnl := (exit - prev.EntryPrice) * prev.Size
	direction := "long"
	if prev.Side == exchange.Sell {
		pnl = -pnl
		direction = "short"
	}
	var roi float64
	if notional := prev.EntryPrice * prev.Size; notional > 0 {
		roi = pnl / notional * 100
	}

	rec := journal.TradeRecord{
		ID:        journal.NewTradeID(),
		Time:      r.now().UTC(),
		Symbol:    symbol,
		Direction: direction,
		Entry:     prev.EntryPrice,
		ExitPrice: &exit,
		PnL:       &pnl,
		ROI:       &roi,
	}
	if err := r.journal.RecordTrade(rec); err != nil {
		r.log.Error().Err(err).Str("symbol", symbol).Msg("journal closure record failed")
	}

	metrics.Closures.WithLabelValues(symbol, rec.Result()).Inc()
	r.log.Info().
		Str("symbol", symbol).
		Str("direction", direction).
		Float64("entry", prev.EntryPrice).
		Float64("exit", exit).
		Float64("pnl", pnl).
		Float64("roi", roi).
		Msg("position closed")
	r.notify.Send(ctx, fmt.Sprintf(
		"CLOSED %s %s entry=%v exit=%v pnl=%.2f roi=%.2f%%",
		symbol, direction, prev.EntryPrice, exit, pnl, roi,
	))
}

func (r *Runner) rememberOpen(e positions.Entry) {
	r.mu.Lock()
	r.lastOpen[e.Symbol] = e
	r.mu.Unlock()
}
