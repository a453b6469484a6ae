package strategy

import (
	"fmt"
	"math"

	"springbot/indicators"
	"springbot/market"
)

// Rejection reasons, in gate order. Cheap data-availability checks run
// first so the reason is always the most specific one available.
const (
	ReasonNoData          = "no data"
	ReasonMalformedData   = "malformed data"
	ReasonInsufficientRSI = "insufficient data for RSI"
	ReasonInsufficientATR = "insufficient data for ATR"
	ReasonLowVolatility   = "volatility too low"
	ReasonPositionOpen    = "position already open"
	ReasonNoSignal        = "no signal"
	ReasonWeakVolume      = "weak volume"
	ReasonAgainstTrend    = "against trend"
	ReasonPatternAbsent   = "pattern absent"
)

// Engine evaluates candle histories against an immutable Config.
// Evaluate is deterministic, side-effect-free and total: every failure
// mode degrades to a None signal with a reason, never an error.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate turns one symbol's history into a Signal. Candles must be
// ordered oldest to newest. hasOpenOrPending is the caller's (possibly
// cached) view of the position ledger; the engine itself never touches
// the exchange.
func (e *Engine) Evaluate(symbol string, candles []market.Candle, hasOpenOrPending bool) Signal {
	reject := func(reason string, trace []string) Signal {
		return Signal{Symbol: symbol, Direction: None, Reason: reason, Trace: trace}
	}

	if len(candles) == 0 {
		return reject(ReasonNoData, nil)
	}
	for _, c := range candles {
		if !c.Valid() {
			return reject(ReasonMalformedData, nil)
		}
	}

	last := candles[len(candles)-1]
	closes := market.Closes(candles)
	volumes := market.Volumes(candles)

	rsi, ok := indicators.RSI(closes, e.cfg.RSIPeriod)
	if !ok {
		return reject(ReasonInsufficientRSI, nil)
	}
	atr, ok := indicators.ATR(candles, e.cfg.ATRPeriod)
	if !ok {
		return reject(ReasonInsufficientATR, nil)
	}

	ema, emaOK := indicators.EMA(closes, e.cfg.EMAPeriod)
	volAvg, volOK := indicators.VolumeAverage(volumes, e.cfg.VolumePeriod)

	trace := []string{fmt.Sprintf("RSI=%.2f", rsi)}
	if emaOK {
		trace = append(trace, fmt.Sprintf("EMA%d=%.4f", e.cfg.EMAPeriod, ema))
	} else {
		trace = append(trace, fmt.Sprintf("EMA%d=n/a", e.cfg.EMAPeriod))
	}
	trace = append(trace, fmt.Sprintf("ATR=%.6f", atr))
	if volOK {
		trace = append(trace, fmt.Sprintf("volume=%.2f avg=%.2f", last.Volume, volAvg))
	} else {
		trace = append(trace, fmt.Sprintf("volume=%.2f avg=n/a", last.Volume))
	}

	if e.cfg.MinATRPct > 0 {
		atrPct := atr / last.Close * 100
		trace = append(trace, fmt.Sprintf("ATR%%=%.2f", atrPct))
		if atrPct < e.cfg.MinATRPct {
			return reject(ReasonLowVolatility, trace)
		}
	}

	if hasOpenOrPending {
		return reject(ReasonPositionOpen, trace)
	}

	switch {
	case e.cfg.EnableLong && rsi < e.cfg.RSILong:
		if volOK && last.Volume < volAvg*e.cfg.VolumeMult {
			return reject(ReasonWeakVolume, trace)
		}
		if e.cfg.UseTrendFilter && emaOK && last.Close < ema {
			return reject(ReasonAgainstTrend, trace)
		}
		if e.cfg.EnablePatterns && !indicators.ReversalDown(last) {
			return reject(ReasonPatternAbsent, trace)
		}
		return e.long(symbol, last.Close, atr, rsi, trace)

	case e.cfg.EnableShort && rsi > e.cfg.RSIShort:
		if volOK && last.Volume < volAvg*e.cfg.VolumeMult {
			return reject(ReasonWeakVolume, trace)
		}
		if e.cfg.UseTrendFilter && emaOK && last.Close > ema {
			return reject(ReasonAgainstTrend, trace)
		}
		if e.cfg.EnablePatterns && !indicators.ReversalUp(last) {
			return reject(ReasonPatternAbsent, trace)
		}
		return e.short(symbol, last.Close, atr, rsi, trace)
	}

	return reject(ReasonNoSignal, trace)
}

func (e *Engine) long(symbol string, entry, atr, rsi float64, trace []string) Signal {
	return Signal{
		Symbol:     symbol,
		Direction:  Long,
		Entry:      entry,
		TakeProfit: math.Max(entry+atr*e.cfg.TPLongATR, entry*(1+e.cfg.MinTPPct)),
		StopLoss:   math.Min(entry-atr*e.cfg.SLLongATR, entry*(1-e.cfg.MinSLPct)),
		Reason:     fmt.Sprintf("long: RSI %.2f below %.0f", rsi, e.cfg.RSILong),
		Trace:      trace,
	}
}

func (e *Engine) short(symbol string, entry, atr, rsi float64, trace []string) Signal {
	return Signal{
		Symbol:     symbol,
		Direction:  Short,
		Entry:      entry,
		TakeProfit: math.Min(entry-atr*e.cfg.TPShortATR, entry*(1-e.cfg.MinTPPct)),
		StopLoss:   math.Max(entry+atr*e.cfg.SLShortATR, entry*(1+e.cfg.MinSLPct)),
		Reason:     fmt.Sprintf("short: RSI %.2f above %.0f", rsi, e.cfg.RSIShort),
		Trace:      trace,
	}
}
