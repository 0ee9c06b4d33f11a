package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// ArbNotifier fires an arbitrage alert once both legs are attempted.
type ArbNotifier interface {
	Notifier
	NotifyArbitrage(ctx context.Context, coin, market string, upAsk, downAsk, spread float64) error
}

// ArbExecutor buys a fixed token amount on both legs of a detected
// UP/DOWN arbitrage opportunity, UP first then DOWN. There is no
// rollback if only one leg fills: a half-filled pair is a known,
// accepted risk of the strategy, not a bug to guard against here.
//
// One ArbExecutor is shared across every coin's Scanner, so Execute
// latches on inflight: only one arbitrage trade runs at a time across
// the whole process, and a second coin's simultaneous detection is
// dropped rather than queued or run concurrently.
type ArbExecutor struct {
	gateway     OrderPlacer
	risk        RiskGate
	notifier    ArbNotifier
	tokenAmount float64
	log         zerolog.Logger

	inflight sync.Mutex
}

// NewArbExecutor builds an ArbExecutor that buys tokenAmount tokens per
// leg (spec default 5).
func NewArbExecutor(gw OrderPlacer, risk RiskGate, notifier ArbNotifier, tokenAmount float64, log zerolog.Logger) *ArbExecutor {
	if tokenAmount <= 0 {
		tokenAmount = 5
	}
	return &ArbExecutor{gateway: gw, risk: risk, notifier: notifier, tokenAmount: tokenAmount, log: log}
}

// Execute buys both legs of opp sequentially. It returns an error only
// when both legs fail; a single-leg failure is logged and the working
// leg's fill still stands.
//
// If another Execute call is already in flight — from this coin's own
// Scanner or another coin's — this call drops opp and returns nil rather
// than blocking behind it or running alongside it.
func (e *ArbExecutor) Execute(ctx context.Context, opp model.ArbOpportunity) error {
	if !e.inflight.TryLock() {
		e.log.Warn().Str("market", opp.Market.Slug).Msg("arb executor: dropping opportunity, another arb trade is already in flight")
		return nil
	}
	defer e.inflight.Unlock()

	upPrice, _ := opp.UpAsk.Float64()
	downPrice, _ := opp.DownAsk.Float64()

	upOK := e.buyLeg(ctx, opp.Market.UpTokenID, upPrice, "UP")
	downOK := e.buyLeg(ctx, opp.Market.DownTokenID, downPrice, "DOWN")

	if e.notifier != nil {
		spread, _ := opp.Spread.Float64()
		_ = e.notifier.NotifyArbitrage(ctx, string(opp.Coin), opp.Market.Slug, upPrice, downPrice, spread)
	}

	if !upOK && !downOK {
		return fmt.Errorf("executor: both arb legs failed for %s", opp.Market.Slug)
	}
	return nil
}

func (e *ArbExecutor) buyLeg(ctx context.Context, tokenID string, price float64, label string) bool {
	if tokenID == "" || price <= 0 {
		e.log.Warn().Str("leg", label).Msg("arb executor: missing token or price")
		return false
	}

	usdcDec := decimal.NewFromFloat(e.tokenAmount).Mul(decimal.NewFromFloat(price)).Truncate(4)
	usdc, _ := usdcDec.Float64()
	if usdc < minOrderSizeUSD {
		e.log.Warn().Str("leg", label).Float64("usdc", usdc).Msg("arb executor: leg below minimum order size")
		return false
	}

	if err := e.risk.Allow(tokenID, usdc); err != nil {
		e.log.Warn().Err(err).Str("leg", label).Msg("arb executor: risk gate blocked leg")
		return false
	}

	result, err := e.gateway.PlaceMarketOrder(ctx, tokenID, string(model.SideBuy), usdc)
	if err != nil {
		e.log.Warn().Err(err).Str("leg", label).Msg("arb executor: leg order error")
		return false
	}
	if !result.Success {
		e.log.Warn().Str("leg", label).Str("error", result.ErrorMsg).Msg("arb executor: leg order rejected")
		return false
	}

	if e.notifier != nil {
		_ = e.notifier.NotifyFill(ctx, tokenID, string(model.SideBuy), price, e.tokenAmount)
	}
	return true
}
