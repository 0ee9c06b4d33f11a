// Package aggregator buffers leader BUY trades too small to copy
// individually, combining them into one synthetic trade once the
// aggregation window has elapsed since the group's first trade, provided
// the group's combined USDC size is at least minAggregateUSDC; smaller
// groups are dropped. Trades already large enough to copy, and all SELL
// trades, bypass aggregation entirely.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// minAggregateUSDC is the floor below which an aggregated group is
// dropped instead of emitted — matching the per-trade minimum the
// original bot ignores trades under.
const minAggregateUSDC = 1.0

// Aggregator buffers small trades per (leader, condition, asset, side)
// and emits them as a single synthetic trade once ready.
type Aggregator struct {
	window time.Duration
	log    zerolog.Logger
	onFire func(model.AggregationGroup)

	mu     sync.Mutex
	groups map[string]*model.AggregationGroup
}

// New builds an Aggregator with the given window; the too-small threshold
// is the fixed minAggregateUSDC ($1). onFire is invoked synchronously by
// the expiry sweep, after the group lock is released, whenever a group is
// ready to copy.
func New(window time.Duration, log zerolog.Logger, onFire func(model.AggregationGroup)) *Aggregator {
	return &Aggregator{
		window: window,
		log:    log,
		onFire: onFire,
		groups: make(map[string]*model.AggregationGroup),
	}
}

// Qualifies reports whether a trade is small enough to need aggregation
// at all: only BUY trades under the per-trade USDC floor qualify: SELLs
// and trades that already clear the floor should be copied immediately.
func Qualifies(act model.LeaderActivity) bool {
	return act.Side == model.SideBuy && act.USDCSize.LessThan(decimal.NewFromFloat(minAggregateUSDC))
}

// Add buffers a qualifying trade into its group, creating the group on
// first sight. Call Qualifies first; Add does not filter.
func (a *Aggregator) Add(act model.LeaderActivity) {
	a.mu.Lock()
	defer a.mu.Unlock()

	group := model.AggregationGroup{
		LeaderWallet: act.LeaderWallet,
		ConditionID:  act.ConditionID,
		AssetID:      act.AssetID,
		Side:         act.Side,
	}
	key := group.Key()

	existing, ok := a.groups[key]
	if !ok {
		existing = &model.AggregationGroup{
			LeaderWallet: act.LeaderWallet,
			ConditionID:  act.ConditionID,
			AssetID:      act.AssetID,
			Side:         act.Side,
			FirstSeen:    time.Now(),
		}
		a.groups[key] = existing
	}

	existing.Trades = append(existing.Trades, act)
	existing.TotalUSDC = existing.TotalUSDC.Add(act.USDCSize)
	existing.LastSeen = time.Now()
	existing.WeightedAvgPrice = weightedAvgPrice(existing.Trades)

	a.log.Debug().
		Str("key", key).
		Int("trades", len(existing.Trades)).
		Str("total_usdc", existing.TotalUSDC.String()).
		Msg("aggregator: buffered trade")
}

func weightedAvgPrice(trades []model.LeaderActivity) decimal.Decimal {
	totalUSDC := decimal.Zero
	totalSize := decimal.Zero
	for _, t := range trades {
		totalUSDC = totalUSDC.Add(t.USDCSize)
		totalSize = totalSize.Add(t.Size)
	}
	if totalSize.IsZero() {
		return decimal.Zero
	}
	return totalUSDC.Div(totalSize)
}

// Run periodically sweeps groups past their window and fires or drops
// each, until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.flushExpired()
		}
	}
}

func (a *Aggregator) tickInterval() time.Duration {
	if a.window <= 0 {
		return time.Second
	}
	if a.window > 10*time.Second {
		return 5 * time.Second
	}
	return a.window / 2
}

func (a *Aggregator) flushExpired() {
	now := time.Now()

	a.mu.Lock()
	var ready []model.AggregationGroup
	for key, group := range a.groups {
		if now.Sub(group.FirstSeen) < a.window {
			continue
		}
		ready = append(ready, *group)
		delete(a.groups, key)
	}
	a.mu.Unlock()

	for _, group := range ready {
		if group.TotalUSDC.LessThan(decimal.NewFromFloat(minAggregateUSDC)) {
			a.log.Debug().
				Str("leader", group.LeaderWallet).
				Str("asset", group.AssetID).
				Str("total_usdc", group.TotalUSDC.String()).
				Msg("aggregator: dropping group below minimum")
			continue
		}
		a.log.Info().
			Str("leader", group.LeaderWallet).
			Str("asset", group.AssetID).
			Int("trades", len(group.Trades)).
			Str("total_usdc", group.TotalUSDC.String()).
			Msg("aggregator: emitting synthetic trade")
		if a.onFire != nil {
			a.onFire(group)
		}
	}
}
