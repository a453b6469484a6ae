// Package positions tracks per-symbol position state reconciled
// against the exchange. The ledger is authoritative only within one
// process lifetime: every cycle re-reads the venue and overwrites the
// cache, falling back to the last known state only when the venue is
// unreachable.
package positions

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"springbot/exchange"
)

// State is the per-symbol position lifecycle.
type State int

const (
	// Absent: no position and no outstanding entry attempt.
	Absent State = iota
	// Pending: an entry order went out and the venue has not yet
	// reported the resulting position. Pending blocks further entries.
	Pending
	// Open: the venue reports size > 0.
	Open
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Open:
		return "open"
	default:
		return "absent"
	}
}

// Entry is the cached view of one symbol. Side, Size and EntryPrice
// are meaningful only while State is Open; Side is recorded from the
// venue so closure accounting never re-derives direction from price.
type Entry struct {
	Symbol     string
	State      State
	Side       exchange.Side
	Size       float64
	EntryPrice float64
}

// slot is one symbol's record plus its exclusion primitive. The
// mark-pending / place-order / clear-or-confirm sequence runs under
// this lock, never under a ledger-wide one.
type slot struct {
	mu           sync.Mutex
	entry        Entry
	pendingSince time.Time
}

// Ledger caches position state per symbol.
type Ledger struct {
	gw         exchange.Gateway
	log        zerolog.Logger
	pendingTTL time.Duration
	now        func() time.Time

	mu    sync.Mutex
	slots map[string]*slot
}

// NewLedger builds a ledger over the gateway. pendingTTL bounds how
// long a pending marker survives without the venue confirming an open
// position; zero means it never expires on its own.
func NewLedger(gw exchange.Gateway, log zerolog.Logger, pendingTTL time.Duration) *Ledger {
	return &Ledger{
		gw:         gw,
		log:        log.With().Str("component", "ledger").Logger(),
		pendingTTL: pendingTTL,
		now:        time.Now,
		slots:      make(map[string]*slot),
	}
}

func (l *Ledger) slotFor(symbol string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[symbol]
	if !ok {
		s = &slot{entry: Entry{Symbol: symbol, State: Absent}}
		l.slots[symbol] = s
	}
	return s
}

// Get returns the cached entry without touching the exchange.
func (l *Ledger) Get(symbol string) Entry {
	s := l.slotFor(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry
}

// Refresh queries the venue for the symbol's open positions and
// overwrites the cache. On a transient gateway failure the previous
// cached value is returned unchanged; the caller must treat it as
// "unknown, assume previous state". A pending marker survives a
// size-zero report until it either resolves into an open position or
// outlives the pending TTL.
func (l *Ledger) Refresh(ctx context.Context, symbol string) Entry {
	s := l.slotFor(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()

	reported, err := l.gw.GetPositions(ctx, symbol)
	if err != nil {
		l.log.Warn().Err(err).Str("symbol", symbol).
			Msg("position refresh failed, keeping cached state")
		return s.entry
	}

	// At most one net position per symbol by venue design; take the
	// first entry with size.
	for _, p := range reported {
		if p.Size > 0 {
			s.entry = Entry{
				Symbol:     symbol,
				State:      Open,
				Side:       p.Side,
				Size:       p.Size,
				EntryPrice: p.EntryPrice,
			}
			s.pendingSince = time.Time{}
			return s.entry
		}
	}

	if s.entry.State == Pending {
		if l.pendingTTL > 0 && l.now().Sub(s.pendingSince) > l.pendingTTL {
			l.log.Warn().Str("symbol", symbol).
				Msg("pending entry never settled, clearing marker")
			s.entry = Entry{Symbol: symbol, State: Absent}
			s.pendingSince = time.Time{}
		}
		return s.entry
	}

	s.entry = Entry{Symbol: symbol, State: Absent}
	return s.entry
}

// HasOpenPosition reports whether the symbol has an open or pending
// position. With useCache it trusts the cached view (the decision
// engine's cheap per-cycle check); without it, it refreshes first (the
// entry controller's guaranteed-fresh check before risking capital).
func (l *Ledger) HasOpenPosition(ctx context.Context, symbol string, useCache bool) bool {
	if useCache {
		return l.Get(symbol).State != Absent
	}
	return l.Refresh(ctx, symbol).State != Absent
}

// MarkPending flips the symbol from Absent to Pending, returning false
// if a position is already open or pending. The compare-and-set runs
// under the slot lock, so two concurrent entry attempts cannot both
// succeed.
func (l *Ledger) MarkPending(symbol string) bool {
	s := l.slotFor(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry.State != Absent {
		return false
	}
	s.entry = Entry{Symbol: symbol, State: Pending}
	s.pendingSince = l.now()
	return true
}

// ClearPending removes a pending marker after a failed entry attempt
// so later cycles may retry. An Open entry is left untouched.
func (l *Ledger) ClearPending(symbol string) {
	s := l.slotFor(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry.State == Pending {
		s.entry = Entry{Symbol: symbol, State: Absent}
		s.pendingSince = time.Time{}
	}
}
