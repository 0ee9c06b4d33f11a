// Package executor runs the two trading loops that turn a detected
// signal into a live order: the copy engine's per-leader buy/sell
// strategies, and the arbitrage engine's UP/DOWN pair buy. Both share
// the same order-placement, risk-gating and notification surface;
// narrow interfaces here keep that surface fakeable in tests without
// reaching into the exchange SDK.
package executor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/copysizer"
	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// minOrderSizeUSD and minOrderSizeTokens mirror the exchange's own order
// minimums: an order below either floor is rejected outright, so there
// is no point walking the book further once remaining size drops
// below it.
const (
	minOrderSizeUSD    = 1.0
	minOrderSizeTokens = 1.0
)

// OrderPlacer submits buy/sell orders to the exchange. Gateway
// implements this; a fake stands in for it in tests since the real
// type wraps the exchange SDK's client directly.
type OrderPlacer interface {
	PlaceMarketOrder(ctx context.Context, tokenID, side string, amountUSDC float64) (model.OrderResult, error)
	PlaceLimitOrder(ctx context.Context, tokenID, side string, price, sizeUSDC float64) (model.OrderResult, error)
}

// BookSource is the orderbook lookup the copy strategies walk when
// sizing each child order. Unlike the arb engine's fixed 15-minute
// markets, a leader's trade can land on any market, so the copy
// engine fetches a fresh book over REST before every child order
// rather than reading a WS cache. marketfeed.RESTBook implements this.
type BookSource interface {
	Snapshot(ctx context.Context, assetID string) (model.OrderbookSnapshot, bool, error)
}

// PortfolioSource is the vault's own live position/balance view.
// portfolio.PortfolioTracker implements this.
type PortfolioSource interface {
	VaultPosition(assetID string) (model.VaultPosition, bool)
	TotalValue() float64
}

// RiskGate is consulted before every child order. risk.Manager
// implements this.
type RiskGate interface {
	Allow(tokenID string, amountUSDC float64) error
}

// Notifier fires a fill alert after every successful child order.
// notify.TelegramNotifier implements this.
type Notifier interface {
	NotifyFill(ctx context.Context, assetID, side string, price, size float64) error
}

// Sizer turns a leader's trade size into the operator's copy amount.
// Its arithmetic runs on decimal.Decimal, not float64, matching the
// exchange's fixed-point precision rules. copysizer.Sizer implements
// this.
type Sizer interface {
	Calculate(traderOrderSize, availableBalance, currentPositionSize decimal.Decimal) copysizer.Calculation
	TradeMultiplier(traderOrderSize decimal.Decimal) decimal.Decimal
}
