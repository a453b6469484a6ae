package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func sampleRecords() []TradeRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return []TradeRecord{
		{
			ID: NewTradeID(), Time: now, Symbol: "BTCUSDT", Direction: "long",
			Entry: 100, TakeProfit: 110, StopLoss: 95,
		},
		{
			ID: NewTradeID(), Time: now.Add(time.Minute), Symbol: "ETHUSDT", Direction: "short",
			Entry: 50, TakeProfit: 45, StopLoss: 53,
			ExitPrice: ptr(46), PnL: ptr(8), ROI: ptr(8),
		},
		{
			ID: NewTradeID(), Time: now.Add(2 * time.Minute), Symbol: "ETHUSDT", Direction: "long",
			Entry: 50, TakeProfit: 55, StopLoss: 48,
			ExitPrice: ptr(48), PnL: ptr(-4), ROI: ptr(-4),
		},
	}
}

func TestTradeRecordResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ResultOpen, TradeRecord{}.Result())
	assert.Equal(t, ResultClosed, TradeRecord{ExitPrice: ptr(10)}.Result())
	assert.Equal(t, ResultWin, TradeRecord{ExitPrice: ptr(10), PnL: ptr(1)}.Result())
	assert.Equal(t, ResultLoss, TradeRecord{ExitPrice: ptr(10), PnL: ptr(-1)}.Result())
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := summarize(sampleRecords())
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Open)
	assert.Equal(t, 2, s.Closed)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 50.0, s.WinRate, 1e-9)
	assert.InDelta(t, 4.0, s.TotalPnL, 1e-9)
	assert.InDelta(t, 8.0, s.AvgWin, 1e-9)
	assert.InDelta(t, -4.0, s.AvgLoss, 1e-9)
	assert.InDelta(t, 2.0, s.ProfitFactor, 1e-9)
}

func TestCSVJournal_AppendAndSummarize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(path)
	require.NoError(t, err)

	records := sampleRecords()
	for _, rec := range records[:2] {
		require.NoError(t, j.RecordTrade(rec))
	}
	require.NoError(t, j.Close())

	// Reopen: the header must not be duplicated and earlier rows must
	// still count.
	j, err = NewCSV(path)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.RecordTrade(records[2]))

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Open)
	assert.Equal(t, 2, s.Closed)
}

func TestSQLiteJournal_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	for _, rec := range sampleRecords() {
		require.NoError(t, j.RecordTrade(rec))
	}

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 4.0, s.TotalPnL, 1e-9)
}

func TestNewTradeID_Sortable(t *testing.T) {
	t.Parallel()

	a := NewTradeID()
	b := NewTradeID()
	assert.Len(t, a, 26)
	assert.Less(t, a, b, "same-millisecond IDs must stay ordered")
}
