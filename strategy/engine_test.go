package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"springbot/market"
)

// testConfig keeps every optional filter off so individual gates can be
// switched on per test.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EnablePatterns = false
	cfg.UseTrendFilter = false
	cfg.MinATRPct = 0.3
	return cfg
}

// trending builds n candles stepping the close by step each bar, with a
// 3-point true range and constant volume except the final bar.
func trending(start, step float64, n int, lastVolume float64) []market.Candle {
	candles := make([]market.Candle, 0, n)
	close := start
	for i := 0; i < n; i++ {
		open := close
		close = open + step
		hi, lo := open, close
		if lo > hi {
			hi, lo = lo, hi
		}
		c := market.Candle{
			Open:   open,
			High:   hi + 0.5,
			Low:    lo - 0.5,
			Close:  close,
			Volume: 1000,
		}
		if i == n-1 {
			c.Volume = lastVolume
		}
		candles = append(candles, c)
	}
	return candles
}

// flat builds identical candles with the given high-low range.
func flat(close, rng float64, n int) []market.Candle {
	candles := make([]market.Candle, n)
	for i := range candles {
		candles[i] = market.Candle{
			Open:   close,
			High:   close + rng/2,
			Low:    close - rng/2,
			Close:  close,
			Volume: 1000,
		}
	}
	return candles
}

func TestEvaluate_DataGates(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testConfig())

	sig := engine.Evaluate("BTCUSDT", nil, false)
	assert.Equal(t, None, sig.Direction)
	assert.Equal(t, ReasonNoData, sig.Reason)

	bad := flat(100, 1, 60)
	bad[10].Close = -5
	sig = engine.Evaluate("BTCUSDT", bad, false)
	assert.Equal(t, ReasonMalformedData, sig.Reason)
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testConfig())

	sig := engine.Evaluate("BTCUSDT", flat(100, 1, 10), false)
	assert.Equal(t, ReasonInsufficientRSI, sig.Reason)

	cfg := testConfig()
	cfg.RSIPeriod = 5
	cfg.ATRPeriod = 100
	sig = NewEngine(cfg).Evaluate("BTCUSDT", flat(100, 1, 60), false)
	assert.Equal(t, ReasonInsufficientATR, sig.Reason)
}

func TestEvaluate_VolatilityGate(t *testing.T) {
	t.Parallel()

	// Flat candles with a 0.2 range around 100: ATR% = 0.2, below the
	// 0.3 minimum. RSI on an all-flat series is 100, so the short
	// threshold is crossed; the volatility gate must still win.
	engine := NewEngine(testConfig())
	sig := engine.Evaluate("BTCUSDT", flat(100, 0.2, 60), false)

	assert.Equal(t, None, sig.Direction)
	assert.Equal(t, ReasonLowVolatility, sig.Reason)
}

func TestEvaluate_VolatilityGateDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MinATRPct = 0
	sig := NewEngine(cfg).Evaluate("BTCUSDT", flat(100, 0.2, 60), false)
	assert.NotEqual(t, ReasonLowVolatility, sig.Reason)
}

func TestEvaluate_PositionGate(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testConfig())
	sig := engine.Evaluate("BTCUSDT", flat(100, 1, 60), true)
	assert.Equal(t, ReasonPositionOpen, sig.Reason)
}

func TestEvaluate_NoSignal(t *testing.T) {
	t.Parallel()

	// Flat series: RSI is exactly 100 which does not exceed a short
	// threshold of 100, and is not below any long threshold.
	cfg := testConfig()
	cfg.RSIShort = 100
	sig := NewEngine(cfg).Evaluate("BTCUSDT", flat(100, 1, 60), false)
	assert.Equal(t, ReasonNoSignal, sig.Reason)
	assert.NotEmpty(t, sig.Trace)
}

func TestEvaluate_LongSignal(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testConfig())
	candles := trending(300, -2, 60, 5000)

	sig := engine.Evaluate("BTCUSDT", candles, false)
	require.Equal(t, Long, sig.Direction, "reason: %s", sig.Reason)

	last := candles[len(candles)-1].Close
	assert.Equal(t, last, sig.Entry)
	assert.Less(t, sig.StopLoss, sig.Entry)
	assert.Greater(t, sig.TakeProfit, sig.Entry)
	assert.NotEmpty(t, sig.Trace)
}

func TestEvaluate_ShortSignal(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testConfig())
	candles := trending(100, 2, 60, 5000)

	sig := engine.Evaluate("ETHUSDT", candles, false)
	require.Equal(t, Short, sig.Direction, "reason: %s", sig.Reason)

	assert.Greater(t, sig.StopLoss, sig.Entry)
	assert.Less(t, sig.TakeProfit, sig.Entry)
}

func TestEvaluate_DirectionsDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.EnableLong = false
	sig := NewEngine(cfg).Evaluate("BTCUSDT", trending(300, -2, 60, 5000), false)
	assert.Equal(t, ReasonNoSignal, sig.Reason)

	cfg = testConfig()
	cfg.EnableShort = false
	sig = NewEngine(cfg).Evaluate("BTCUSDT", trending(100, 2, 60, 5000), false)
	assert.Equal(t, ReasonNoSignal, sig.Reason)
}

func TestEvaluate_WeakVolume(t *testing.T) {
	t.Parallel()

	// Last volume 100 against a 1000 average and 1.5 multiplier.
	engine := NewEngine(testConfig())
	sig := engine.Evaluate("BTCUSDT", trending(300, -2, 60, 100), false)
	assert.Equal(t, ReasonWeakVolume, sig.Reason)
}

func TestEvaluate_TrendFilter(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.UseTrendFilter = true

	// In a falling market the last close is below the EMA, so a long
	// is against the trend.
	sig := NewEngine(cfg).Evaluate("BTCUSDT", trending(300, -2, 60, 5000), false)
	assert.Equal(t, ReasonAgainstTrend, sig.Reason)

	// And in a rising market a short is against the trend.
	sig = NewEngine(cfg).Evaluate("BTCUSDT", trending(100, 2, 60, 5000), false)
	assert.Equal(t, ReasonAgainstTrend, sig.Reason)
}

func TestEvaluate_PatternFilter(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.EnablePatterns = true
	engine := NewEngine(cfg)

	// The generator's final bar closes bearish: no spring.
	candles := trending(300, -2, 60, 5000)
	sig := engine.Evaluate("BTCUSDT", candles, false)
	assert.Equal(t, ReasonPatternAbsent, sig.Reason)

	// Replace the final bar with a spring: long lower wick, bullish
	// close above the midpoint.
	prev := candles[len(candles)-2].Close
	candles[len(candles)-1] = market.Candle{
		Open:   prev,
		High:   prev + 1,
		Low:    prev - 6,
		Close:  prev + 0.8,
		Volume: 5000,
	}
	sig = engine.Evaluate("BTCUSDT", candles, false)
	assert.Equal(t, Long, sig.Direction, "reason: %s", sig.Reason)
}

func TestEvaluate_MinPercentFloors(t *testing.T) {
	t.Parallel()

	// Tiny ATR with the volatility gate off: the percentage floors must
	// keep TP/SL from collapsing onto the entry.
	cfg := testConfig()
	cfg.MinATRPct = 0
	cfg.RSIShort = 99  // flat series RSI is 100
	cfg.VolumeMult = 1 // constant volume must pass the volume gate
	sig := NewEngine(cfg).Evaluate("BTCUSDT", flat(100, 0.01, 60), false)

	require.Equal(t, Short, sig.Direction, "reason: %s", sig.Reason)
	assert.InDelta(t, 100*(1-cfg.MinTPPct), sig.TakeProfit, 1e-9)
	assert.InDelta(t, 100*(1+cfg.MinSLPct), sig.StopLoss, 1e-9)
}
