package notify

import "context"

// Fanout dispatches every alert to all of its sinks, logging through
// whichever still succeeds rather than aborting the whole notification
// when one sink (usually Telegram) is down.
type Fanout struct {
	sinks []Notifier
}

// NewFanout builds a Fanout over sinks, skipping any nil entry so a
// disabled optional sink (e.g. Telegram with no bot token configured)
// can be passed in unconditionally by the caller.
func NewFanout(sinks ...Notifier) *Fanout {
	out := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			out.sinks = append(out.sinks, s)
		}
	}
	return out
}

func (f *Fanout) NotifyFill(ctx context.Context, assetID, side string, price, size float64) error {
	return f.each(func(n Notifier) error { return n.NotifyFill(ctx, assetID, side, price, size) })
}

func (f *Fanout) NotifyArbitrage(ctx context.Context, coin, market string, upAsk, downAsk, spread float64) error {
	return f.each(func(n Notifier) error { return n.NotifyArbitrage(ctx, coin, market, upAsk, downAsk, spread) })
}

func (f *Fanout) NotifyStopLoss(ctx context.Context, assetID string, pnl float64) error {
	return f.each(func(n Notifier) error { return n.NotifyStopLoss(ctx, assetID, pnl) })
}

func (f *Fanout) NotifyEmergencyStop(ctx context.Context) error {
	return f.each(func(n Notifier) error { return n.NotifyEmergencyStop(ctx) })
}

func (f *Fanout) NotifyDailySummary(ctx context.Context, pnl float64, fills int, volume float64) error {
	return f.each(func(n Notifier) error { return n.NotifyDailySummary(ctx, pnl, fills, volume) })
}

// each calls fn on every sink and returns the first error encountered,
// after still giving every sink a chance to fire.
func (f *Fanout) each(fn func(Notifier) error) error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := fn(sink); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
