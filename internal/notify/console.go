package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleNotifier logs every alert at a severity matching its urgency.
// Unlike the Telegram notifier it is never disabled — it is the fallback
// every deployment gets even with no Telegram credentials configured.
type ConsoleNotifier struct {
	log zerolog.Logger
}

// NewConsoleNotifier builds a ConsoleNotifier writing through log.
func NewConsoleNotifier(log zerolog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) NotifyFill(_ context.Context, assetID, side string, price, size float64) error {
	c.log.Info().Str("asset", assetID).Str("side", side).Float64("price", price).Float64("size", size).Msg("fill")
	return nil
}

func (c *ConsoleNotifier) NotifyArbitrage(_ context.Context, coin, market string, upAsk, downAsk, spread float64) error {
	c.log.Info().Str("coin", coin).Str("market", market).Float64("up_ask", upAsk).Float64("down_ask", downAsk).Float64("spread", spread).Msg("arbitrage fired")
	return nil
}

func (c *ConsoleNotifier) NotifyStopLoss(_ context.Context, assetID string, pnl float64) error {
	c.log.Warn().Str("asset", assetID).Float64("pnl", pnl).Msg("stop-loss triggered")
	return nil
}

func (c *ConsoleNotifier) NotifyEmergencyStop(_ context.Context) error {
	c.log.Error().Msg("EMERGENCY STOP: all trading halted")
	return nil
}

func (c *ConsoleNotifier) NotifyDailySummary(_ context.Context, pnl float64, fills int, volume float64) error {
	c.log.Info().Float64("pnl", pnl).Int("fills", fills).Float64("volume", volume).Msg("daily summary")
	return nil
}
