// Package journal is the append-only trade log. The core records one
// row when a position is opened and one when its closure is detected;
// past rows are never mutated.
package journal

import "time"

// Trade results as stored in the journal.
const (
	ResultOpen   = "open"
	ResultWin    = "win"
	ResultLoss   = "loss"
	ResultClosed = "closed"
)

// TradeRecord is one journal row. Exit-side fields are nil for entry
// records; they are populated on the closure record only.
type TradeRecord struct {
	ID        string
	Time      time.Time
	Symbol    string
	Direction string // "long" or "short", as recorded at entry

	Entry      float64
	TakeProfit float64
	StopLoss   float64

	ExitPrice *float64
	PnL       *float64
	ROI       *float64
}

// Result classifies the record for reporting.
func (t TradeRecord) Result() string {
	switch {
	case t.ExitPrice == nil:
		return ResultOpen
	case t.PnL == nil:
		return ResultClosed
	case *t.PnL > 0:
		return ResultWin
	default:
		return ResultLoss
	}
}

// Journal persists trade records.
type Journal interface {
	RecordTrade(TradeRecord) error
	Summary() (Summary, error)
	Close() error
}

// Summary aggregates the journal for reporting.
type Summary struct {
	Total  int
	Open   int
	Closed int
	Wins   int
	Losses int

	WinRate      float64 // percent of closed trades won
	TotalPnL     float64
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64
}

func summarize(records []TradeRecord) Summary {
	var s Summary
	var winSum, lossSum float64

	for _, r := range records {
		s.Total++
		switch r.Result() {
		case ResultOpen:
			s.Open++
			continue
		case ResultWin:
			s.Wins++
		case ResultLoss:
			s.Losses++
		}
		s.Closed++
		if r.PnL != nil {
			s.TotalPnL += *r.PnL
			if *r.PnL > 0 {
				winSum += *r.PnL
			} else {
				lossSum += *r.PnL
			}
		}
	}

	if s.Closed > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Closed) * 100
	}
	if s.Wins > 0 {
		s.AvgWin = winSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = lossSum / float64(s.Losses)
	}
	if lossSum != 0 {
		s.ProfitFactor = winSum / -lossSum
	}
	return s
}
