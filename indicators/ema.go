package indicators

// EMA computes an exponential moving average over the close series,
// seeded with the first value in the window rather than a simple
// average. Requires at least period samples.
func EMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	k := 2.0 / float64(period+1)
	ema := closes[0]
	for _, price := range closes[1:] {
		ema = price*k + ema*(1-k)
	}
	return ema, true
}
