package executor

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/aggregator"
	"github.com/GoPolymarket/polymarket-trader/internal/gateway"
	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/store"
)

// copyPollInterval is the cadence at which each tracked leader's
// unprocessed-trade queue is drained.
const copyPollInterval = 300 * time.Millisecond

// CopyExecutor drains each tracked leader's unprocessed activity queue
// and mirrors every BUY/SELL into a vault order, sized by Sizer and
// gated by RiskGate. One goroutine runs per leader so a slow book walk
// on one leader never delays another's.
type CopyExecutor struct {
	store      store.Store
	book       BookSource
	portfolio  PortfolioSource
	risk       RiskGate
	gateway    OrderPlacer
	notifier   Notifier
	sizer      Sizer
	aggregator *aggregator.Aggregator

	leaders    []string
	retryLimit int
	log        zerolog.Logger
}

// NewCopyExecutor builds a CopyExecutor for the given leader wallets.
// aggregationWindow of 0 disables trade aggregation: every qualifying
// small trade is copied immediately instead of being buffered.
func NewCopyExecutor(
	st store.Store,
	book BookSource,
	portfolio PortfolioSource,
	risk RiskGate,
	gw OrderPlacer,
	notifier Notifier,
	sizer Sizer,
	leaders []string,
	retryLimit int,
	aggregationWindow time.Duration,
	log zerolog.Logger,
) *CopyExecutor {
	if retryLimit <= 0 {
		retryLimit = 3
	}
	e := &CopyExecutor{
		store:      st,
		book:       book,
		portfolio:  portfolio,
		risk:       risk,
		gateway:    gw,
		notifier:   notifier,
		sizer:      sizer,
		leaders:    leaders,
		retryLimit: retryLimit,
		log:        log,
	}
	if aggregationWindow > 0 {
		e.aggregator = aggregator.New(aggregationWindow, log, e.handleAggregateFire)
	}
	return e
}

// Run starts one goroutine per tracked leader, each draining that
// leader's queue on a fixed cadence, plus the aggregation sweep if
// aggregation is enabled, until ctx is cancelled. A slow book walk on one
// leader never delays another's tick.
func (e *CopyExecutor) Run(ctx context.Context) error {
	if e.aggregator != nil {
		go e.aggregator.Run(ctx)
	}

	var wg sync.WaitGroup
	for _, leader := range e.leaders {
		wg.Add(1)
		go func(leader string) {
			defer wg.Done()
			e.runLeader(ctx, leader)
		}(leader)
	}
	wg.Wait()
	return ctx.Err()
}

func (e *CopyExecutor) runLeader(ctx context.Context, leader string) {
	ticker := time.NewTicker(copyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.drainLeader(ctx, leader)
		}
	}
}

func (e *CopyExecutor) drainLeader(ctx context.Context, leader string) {
	trades, err := e.store.FindUnprocessedTrades(ctx, leader)
	if err != nil {
		e.log.Warn().Err(err).Str("leader", leader).Msg("copy executor: find unprocessed trades")
		return
	}

	for _, act := range trades {
		claimed, err := e.store.ClaimActivity(ctx, leader, act.ID)
		if err != nil {
			e.log.Warn().Err(err).Str("leader", leader).Msg("copy executor: claim activity")
			continue
		}
		if !claimed {
			continue // another tick already claimed this row
		}

		if e.aggregator != nil && aggregator.Qualifies(act) {
			e.aggregator.Add(act)
			continue
		}
		e.executeTrade(ctx, leader, act, act.ID)
	}
}

// handleAggregateFire runs when a buffered group of small BUY trades has
// aged past the aggregation window with a combined size of at least the
// aggregation minimum. Only the group's first
// trade carries the final tracked purchase basis; the rest stay claimed
// but otherwise untouched, matching how they were already excluded from
// future polls at claim time.
func (e *CopyExecutor) handleAggregateFire(group model.AggregationGroup) {
	if len(group.Trades) == 0 {
		return
	}
	synthetic := group.Trades[0]
	synthetic.USDCSize = group.TotalUSDC
	synthetic.Price = group.WeightedAvgPrice
	synthetic.Side = model.SideBuy

	e.executeTrade(context.Background(), group.LeaderWallet, synthetic, group.Trades[0].ID)
}

func (e *CopyExecutor) executeTrade(ctx context.Context, leader string, act model.LeaderActivity, id any) {
	switch act.Side {
	case model.SideBuy:
		e.executeBuy(ctx, leader, act, id)
	case model.SideSell:
		e.executeSell(ctx, leader, act, id)
	default:
		e.log.Warn().Str("side", string(act.Side)).Msg("copy executor: unknown trade side")
		_ = e.store.MarkActivityExecuted(ctx, leader, id, "")
	}
}

func (e *CopyExecutor) executeBuy(ctx context.Context, leader string, act model.LeaderActivity, id any) {
	assetID := act.AssetID
	if assetID == "" {
		e.log.Warn().Msg("copy executor: buy with no asset")
		_ = e.store.MarkActivityExecuted(ctx, leader, id, "")
		return
	}

	availableBalance := e.portfolio.TotalValue()

	currentPositionValue := decimal.Zero
	if vaultPos, ok := e.portfolio.VaultPosition(assetID); ok {
		currentPositionValue = vaultPos.Size.Mul(vaultPos.AvgPrice)
	}

	calc := e.sizer.Calculate(act.USDCSize, decimal.NewFromFloat(availableBalance), currentPositionValue)
	e.log.Info().Str("reasoning", calc.Reasoning).Msg("copy executor: buy sizing")
	finalAmount, _ := calc.FinalAmount.Float64()
	if calc.BelowMinimum {
		e.log.Warn().Float64("final_amount", finalAmount).Msg("copy executor: buy below minimum, skipping")
		_ = e.store.MarkActivityExecuted(ctx, leader, id, "")
		return
	}

	remaining := finalAmount
	available := availableBalance
	retry := 0
	totalBoughtTokens := decimal.Zero

	for remaining > 0 && retry < e.retryLimit {
		book, ok, err := e.book.Snapshot(ctx, assetID)
		if err != nil {
			e.log.Warn().Err(err).Str("asset", assetID).Msg("copy executor: book fetch failed")
			break
		}
		if !ok {
			e.log.Warn().Str("asset", assetID).Msg("copy executor: no book snapshot")
			break
		}
		bestAsk, ok := book.BestAsk()
		if !ok {
			e.log.Warn().Str("asset", assetID).Msg("copy executor: no asks")
			break
		}
		price, _ := bestAsk.Price.Float64()
		size, _ := bestAsk.Size.Float64()
		if price <= 0 {
			break
		}

		if remaining < minOrderSizeUSD {
			break
		}

		orderSize := remaining
		if maxOrderSize := size * price; maxOrderSize < orderSize {
			orderSize = maxOrderSize
		}
		if orderSize < minOrderSizeUSD {
			break
		}
		if available < orderSize {
			e.log.Warn().Float64("need", orderSize).Float64("have", available).Msg("copy executor: insufficient balance")
			break
		}

		if err := e.risk.Allow(assetID, orderSize); err != nil {
			e.log.Warn().Err(err).Str("asset", assetID).Msg("copy executor: risk gate blocked buy")
			break
		}

		result, err := e.gateway.PlaceMarketOrder(ctx, assetID, string(model.SideBuy), orderSize)
		if err != nil {
			retry++
			e.log.Warn().Err(err).Int("retry", retry).Msg("copy executor: buy order error")
			continue
		}
		if !result.Success {
			if gateway.IsFatal(result.ErrorMsg) {
				e.log.Warn().Str("error", result.ErrorMsg).Msg("copy executor: buy rejected, aborting")
				break
			}
			retry++
			e.log.Warn().Str("error", result.ErrorMsg).Int("retry", retry).Msg("copy executor: buy order rejected")
			continue
		}

		retry = 0
		tokensBought := orderSize / price
		totalBoughtTokens = totalBoughtTokens.Add(decimal.NewFromFloat(tokensBought))
		remaining -= orderSize
		available -= orderSize

		if e.notifier != nil {
			_ = e.notifier.NotifyFill(ctx, assetID, string(model.SideBuy), price, tokensBought)
		}
	}

	if err := e.store.MarkActivityExecuted(ctx, leader, id, totalBoughtTokens.String()); err != nil {
		e.log.Warn().Err(err).Msg("copy executor: mark buy executed")
	}
}

func (e *CopyExecutor) executeSell(ctx context.Context, leader string, act model.LeaderActivity, id any) {
	assetID := act.AssetID
	if assetID == "" {
		e.log.Warn().Msg("copy executor: sell with no asset")
		_ = e.store.MarkActivityExecuted(ctx, leader, id, "")
		return
	}

	vaultPos, ok := e.portfolio.VaultPosition(assetID)
	if !ok {
		e.log.Info().Str("asset", assetID).Msg("copy executor: no position to sell")
		_ = e.store.MarkActivityExecuted(ctx, leader, id, "")
		return
	}
	vaultSize, _ := vaultPos.Size.Float64()

	previousBuys, err := e.store.FindOpenBuysForAsset(ctx, leader, assetID, act.ConditionID)
	if err != nil {
		e.log.Warn().Err(err).Msg("copy executor: find open buys")
	}
	totalBought := decimal.Zero
	for _, b := range previousBuys {
		totalBought = totalBought.Add(b.MyBoughtSize)
	}
	totalBoughtF, _ := totalBought.Float64()

	remaining := e.sellAmount(ctx, leader, assetID, act, vaultSize, totalBoughtF)
	if remaining < minOrderSizeTokens {
		e.log.Warn().Float64("remaining", remaining).Msg("copy executor: sell below minimum, skipping")
		_ = e.store.MarkActivityExecuted(ctx, leader, id, "")
		return
	}
	if remaining > vaultSize {
		remaining = vaultSize
	}

	retry := 0
	totalSoldTokens := 0.0

	for remaining > 0 && retry < e.retryLimit {
		book, ok, err := e.book.Snapshot(ctx, assetID)
		if err != nil {
			e.log.Warn().Err(err).Str("asset", assetID).Msg("copy executor: book fetch failed")
			break
		}
		if !ok {
			break
		}
		bestBid, ok := book.BestBid()
		if !ok {
			break
		}
		price, _ := bestBid.Price.Float64()
		bidSize, _ := bestBid.Size.Float64()
		if price <= 0 {
			break
		}

		if remaining < minOrderSizeTokens {
			break
		}
		sellAmount := remaining
		if bidSize < sellAmount {
			sellAmount = bidSize
		}
		if sellAmount < minOrderSizeTokens {
			break
		}

		usdc := sellAmount * price
		if err := e.risk.Allow(assetID, usdc); err != nil {
			e.log.Warn().Err(err).Str("asset", assetID).Msg("copy executor: risk gate blocked sell")
			break
		}

		result, err := e.gateway.PlaceLimitOrder(ctx, assetID, string(model.SideSell), price, usdc)
		if err != nil {
			retry++
			e.log.Warn().Err(err).Int("retry", retry).Msg("copy executor: sell order error")
			continue
		}
		if !result.Success {
			if gateway.IsFatal(result.ErrorMsg) {
				e.log.Warn().Str("error", result.ErrorMsg).Msg("copy executor: sell rejected, aborting")
				break
			}
			retry++
			e.log.Warn().Str("error", result.ErrorMsg).Int("retry", retry).Msg("copy executor: sell order rejected")
			continue
		}

		retry = 0
		totalSoldTokens += sellAmount
		remaining -= sellAmount

		if e.notifier != nil {
			_ = e.notifier.NotifyFill(ctx, assetID, string(model.SideSell), price, sellAmount)
		}
	}

	if totalSoldTokens > 0 && totalBoughtF > 0 {
		sellPercentage := totalSoldTokens / totalBoughtF
		if sellPercentage >= 0.99 {
			if _, err := e.store.ReduceBoughtSize(ctx, leader, assetID, act.ConditionID, "0"); err != nil {
				e.log.Warn().Err(err).Msg("copy executor: clear bought size")
			}
		} else {
			remainingFraction := strconv.FormatFloat(1-sellPercentage, 'f', -1, 64)
			if _, err := e.store.ReduceBoughtSize(ctx, leader, assetID, act.ConditionID, remainingFraction); err != nil {
				e.log.Warn().Err(err).Msg("copy executor: reduce bought size")
			}
		}
	}

	if err := e.store.MarkActivityExecuted(ctx, leader, id, ""); err != nil {
		e.log.Warn().Err(err).Msg("copy executor: mark sell executed")
	}
}

// sellAmount computes how many tokens to sell: the whole vault position
// if the leader has fully exited, otherwise the leader's own sell
// percentage applied to the tracked purchase basis (or, lacking tracked
// basis, the raw vault position), scaled by the trade-size multiplier.
func (e *CopyExecutor) sellAmount(ctx context.Context, leader, assetID string, act model.LeaderActivity, vaultSize, totalBoughtF float64) float64 {
	leaderPositions, err := e.store.Positions(ctx, leader)
	if err != nil {
		e.log.Warn().Err(err).Msg("copy executor: load leader positions")
	}

	var leaderSize float64
	found := false
	for _, p := range leaderPositions {
		if p.AssetID != assetID {
			continue
		}
		leaderSize, _ = p.Size.Float64()
		found = true
		break
	}

	if !found || leaderSize <= 0 {
		return vaultSize
	}

	tradeSize, _ := act.Size.Float64()
	sellPct := tradeSize / (leaderSize + tradeSize)

	var baseSellSize float64
	if totalBoughtF > 0 {
		baseSellSize = totalBoughtF * sellPct
	} else {
		baseSellSize = vaultSize * sellPct
	}

	multiplier, _ := e.sizer.TradeMultiplier(act.USDCSize).Float64()
	return baseSellSize * multiplier
}
