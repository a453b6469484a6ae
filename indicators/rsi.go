// Package indicators provides the technical analysis primitives the
// decision engine is built from. All functions are pure: they never
// mutate their input, and when the series is too short for the
// requested period they report absence via the second return value
// instead of producing a sentinel number.
package indicators

// RSI computes the Wilder-smoothed Relative Strength Index over the
// close series. It needs at least period+1 closes (period deltas seed
// the simple averages, later deltas use the smoothed recurrence).
//
// When the average loss is exactly zero the result is 100: the series
// is fully overbought and dividing by zero is not an option.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	deltas := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		deltas[i-1] = closes[i] - closes[i-1]
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		if deltas[i] > 0 {
			avgGain += deltas[i]
		} else {
			avgLoss -= deltas[i]
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	p := float64(period)
	for i := period; i < len(deltas); i++ {
		gain, loss := 0.0, 0.0
		if deltas[i] > 0 {
			gain = deltas[i]
		} else {
			loss = -deltas[i]
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}
