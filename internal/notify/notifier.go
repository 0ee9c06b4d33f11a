package notify

import "context"

// Notifier is the alerting surface both the arb and copy engines push
// through. TelegramNotifier and ConsoleNotifier both satisfy it so the
// executors can fan an event out to whichever sinks are configured
// without knowing which ones are active.
type Notifier interface {
	NotifyFill(ctx context.Context, assetID, side string, price, size float64) error
	NotifyArbitrage(ctx context.Context, coin, market string, upAsk, downAsk, spread float64) error
	NotifyStopLoss(ctx context.Context, assetID string, pnl float64) error
	NotifyEmergencyStop(ctx context.Context) error
	NotifyDailySummary(ctx context.Context, pnl float64, fills int, volume float64) error
}
