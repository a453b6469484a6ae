package indicators

import "springbot/market"

// wickFraction is the minimum share of the candle's range a wick must
// cover for the reversal patterns to fire.
const wickFraction = 0.45

// ReversalDown detects a spring: a failed breakout below support. The
// lower wick exceeds 45% of the candle range, the close is bullish,
// and the close sits above the open/close midpoint. A zero-range
// candle never fires.
func ReversalDown(c market.Candle) bool {
	rng := c.Range()
	if rng == 0 {
		return false
	}

	lowerWick := min(c.Open, c.Close) - c.Low
	return lowerWick > rng*wickFraction &&
		c.Close > c.Open &&
		c.Close > (c.Open+c.Close)/2
}

// ReversalUp detects an upthrust: the bearish mirror of the spring,
// keyed on the upper wick.
func ReversalUp(c market.Candle) bool {
	rng := c.Range()
	if rng == 0 {
		return false
	}

	upperWick := c.High - max(c.Open, c.Close)
	return upperWick > rng*wickFraction &&
		c.Close < c.Open &&
		c.Close < (c.Open+c.Close)/2
}
