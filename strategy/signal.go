// Package strategy holds the decision engine: the pure function that
// turns one symbol's candle history into a trade verdict.
package strategy

// Direction is the verdict of one evaluation.
type Direction int

const (
	// None means no actionable signal this cycle; Reason says why.
	None Direction = iota
	Long
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "none"
	}
}

// Signal is the full output of one evaluation. Directional signals
// carry entry, take-profit and stop-loss levels; rejections carry only
// the reason. Trace holds formatted indicator values for audit logging
// in either case.
type Signal struct {
	Symbol    string
	Direction Direction

	Entry      float64
	TakeProfit float64
	StopLoss   float64

	Reason string
	Trace  []string
}

// Actionable reports whether the signal asks for an entry.
func (s Signal) Actionable() bool {
	return s.Direction == Long || s.Direction == Short
}
