// Package notify pushes operator-facing messages. Delivery is
// best-effort: a failed send is logged and never fails the trading
// path.
package notify

import "context"

// Notifier delivers a plain-text message to the operator.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// Nop discards every message. Used when no channel is configured.
type Nop struct{}

func (Nop) Send(context.Context, string) {}
