// Package market defines the core market data types shared across the bot.
package market

import (
	"math"
	"time"
)

// Candle is a single OHLCV bar. Histories are always ordered
// oldest-to-newest; gateways are responsible for normalizing order.
type Candle struct {
	Start  time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the candle carries usable numbers: positive,
// finite prices and a non-negative finite volume.
func (c Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if c.Volume < 0 || math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) {
		return false
	}
	return true
}

// Range is the high-low spread of the bar.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Closes extracts the close series from a candle history.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume series from a candle history.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
