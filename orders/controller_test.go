package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"springbot/exchange"
	"springbot/journal"
	"springbot/market"
	"springbot/notify"
	"springbot/positions"
	"springbot/risk"
	"springbot/strategy"
)

type fakeGateway struct {
	positions  []exchange.Position
	balances   map[string]float64
	balanceErr error
	orderErr   error
	orders     []exchange.Order
}

func (g *fakeGateway) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	return nil, nil
}

func (g *fakeGateway) GetPositions(ctx context.Context, symbol string) ([]exchange.Position, error) {
	return g.positions, nil
}

func (g *fakeGateway) GetBalances(ctx context.Context) (map[string]float64, error) {
	return g.balances, g.balanceErr
}

func (g *fakeGateway) PlaceMarketOrder(ctx context.Context, order exchange.Order) error {
	if g.orderErr != nil {
		return g.orderErr
	}
	g.orders = append(g.orders, order)
	return nil
}

type memJournal struct {
	records []journal.TradeRecord
	err     error
}

func (j *memJournal) RecordTrade(t journal.TradeRecord) error {
	if j.err != nil {
		return j.err
	}
	j.records = append(j.records, t)
	return nil
}

func (j *memJournal) Summary() (journal.Summary, error) { return journal.Summary{}, nil }
func (j *memJournal) Close() error                      { return nil }

func longSignal() strategy.Signal {
	return strategy.Signal{
		Symbol:     "BTCUSDT",
		Direction:  strategy.Long,
		Entry:      100,
		TakeProfit: 110,
		StopLoss:   98,
	}
}

func newController(gw *fakeGateway, jnl *memJournal) (*Controller, *positions.Ledger) {
	ledger := positions.NewLedger(gw, zerolog.Nop(), 0)
	c := NewController(gw, ledger, risk.DefaultConfig(), jnl, notify.Nop{}, zerolog.Nop())
	return c, ledger
}

func TestEnter_PlacesOrderAndRecords(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{balances: map[string]float64{"USDT": 1000}}
	jnl := &memJournal{}
	c, ledger := newController(gw, jnl)

	entered, err := c.Enter(context.Background(), longSignal())
	require.NoError(t, err)
	assert.True(t, entered)

	require.Len(t, gw.orders, 1)
	order := gw.orders[0]
	assert.Equal(t, exchange.Buy, order.Side)
	// risk 2% of 1000 over distance 2 gives 10 lots; the 10% position
	// cap (floor(0.10*1000/100)) trims it to 1.
	assert.Equal(t, 1.0, order.Qty)
	assert.Equal(t, 110.0, order.TakeProfit)
	assert.Equal(t, 98.0, order.StopLoss)

	require.Len(t, jnl.records, 1)
	assert.Equal(t, "BTCUSDT", jnl.records[0].Symbol)
	assert.Equal(t, "long", jnl.records[0].Direction)
	assert.Nil(t, jnl.records[0].ExitPrice)

	assert.Equal(t, positions.Pending, ledger.Get("BTCUSDT").State)
}

func TestEnter_ShortUsesSellSide(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{balances: map[string]float64{"USDT": 1000}}
	c, _ := newController(gw, &memJournal{})

	sig := strategy.Signal{
		Symbol: "ETHUSDT", Direction: strategy.Short,
		Entry: 100, TakeProfit: 92, StopLoss: 103,
	}
	entered, err := c.Enter(context.Background(), sig)
	require.NoError(t, err)
	assert.True(t, entered)
	require.Len(t, gw.orders, 1)
	assert.Equal(t, exchange.Sell, gw.orders[0].Side)
}

func TestEnter_SkipsWhenPositionHeld(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		balances: map[string]float64{"USDT": 1000},
		positions: []exchange.Position{
			{Symbol: "BTCUSDT", Side: exchange.Buy, Size: 1, EntryPrice: 90},
		},
	}
	c, _ := newController(gw, &memJournal{})

	entered, err := c.Enter(context.Background(), longSignal())
	require.NoError(t, err)
	assert.False(t, entered)
	assert.Empty(t, gw.orders)
}

func TestEnter_SecondAttemptLosesPendingRace(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{balances: map[string]float64{"USDT": 1000}}
	c, _ := newController(gw, &memJournal{})

	entered, err := c.Enter(context.Background(), longSignal())
	require.NoError(t, err)
	require.True(t, entered)

	// The venue still reports no position, but the pending marker must
	// block a second order.
	entered, err = c.Enter(context.Background(), longSignal())
	require.NoError(t, err)
	assert.False(t, entered)
	assert.Len(t, gw.orders, 1)
}

func TestEnter_OrderFailureClearsPending(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		balances: map[string]float64{"USDT": 1000},
		orderErr: errors.New("venue rejected"),
	}
	c, ledger := newController(gw, &memJournal{})

	entered, err := c.Enter(context.Background(), longSignal())
	require.Error(t, err)
	assert.False(t, entered)
	assert.Equal(t, positions.Absent, ledger.Get("BTCUSDT").State,
		"failed attempt must not block later cycles")
}

func TestEnter_BalanceFailureClearsPending(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{balanceErr: errors.New("timeout")}
	c, ledger := newController(gw, &memJournal{})

	entered, err := c.Enter(context.Background(), longSignal())
	require.Error(t, err)
	assert.False(t, entered)
	assert.Equal(t, positions.Absent, ledger.Get("BTCUSDT").State)
	assert.Empty(t, gw.orders)
}

func TestEnter_ZeroQuantityIsASkip(t *testing.T) {
	t.Parallel()

	// Balance so small the max-position cap rounds the size below one
	// lot.
	gw := &fakeGateway{balances: map[string]float64{"USDT": 50}}
	c, ledger := newController(gw, &memJournal{})

	entered, err := c.Enter(context.Background(), longSignal())
	require.NoError(t, err)
	assert.False(t, entered)
	assert.Empty(t, gw.orders)
	assert.Equal(t, positions.Absent, ledger.Get("BTCUSDT").State)
}

func TestEnter_JournalFailureDoesNotUnwindOrder(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{balances: map[string]float64{"USDT": 1000}}
	jnl := &memJournal{err: errors.New("disk full")}
	c, _ := newController(gw, jnl)

	entered, err := c.Enter(context.Background(), longSignal())
	require.NoError(t, err)
	assert.True(t, entered)
	assert.Len(t, gw.orders, 1)
}

func TestEnter_RejectsNonActionableSignal(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{balances: map[string]float64{"USDT": 1000}}
	c, _ := newController(gw, &memJournal{})

	_, err := c.Enter(context.Background(), strategy.Signal{
		Symbol: "BTCUSDT", Direction: strategy.None, Reason: "no signal",
	})
	assert.Error(t, err)
}
