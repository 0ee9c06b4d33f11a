// Package leaderpositions periodically refreshes the State Store's mirror
// of each tracked leader wallet's positions from the Data API. The copy
// engine's sell strategy reads these rows to decide whether a leader has
// fully exited a market.
package leaderpositions

import (
	"context"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/data"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/store"
)

// defaultInterval matches the original bot's 30s position poll cadence.
const defaultInterval = 30 * time.Second

// Poller refreshes LeaderPosition rows for a fixed set of leader wallets.
type Poller struct {
	data     data.Client
	st       store.Store
	leaders  []string
	interval time.Duration
	log      zerolog.Logger
}

// New builds a Poller. interval of 0 uses the default 30s cadence.
func New(dataClient data.Client, st store.Store, leaders []string, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{data: dataClient, st: st, leaders: leaders, interval: interval, log: log}
}

// Run polls every leader's positions on a ticker until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.pollAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

func (p *Poller) pollAll(ctx context.Context) {
	for _, leader := range p.leaders {
		if err := p.pollOne(ctx, leader); err != nil {
			p.log.Warn().Err(err).Str("leader", leader).Msg("leader position poll failed")
		}
	}
}

func (p *Poller) pollOne(ctx context.Context, leader string) error {
	addr := common.HexToAddress(leader)
	positions, err := p.data.Positions(ctx, &data.PositionsRequest{User: addr})
	if err != nil {
		return err
	}
	for _, pos := range positions {
		row := model.LeaderPosition{
			LeaderWallet: leader,
			AssetID:      pos.Asset,
			ConditionID:  pos.ConditionID,
			Size:         decimal.NewFromFloat(pos.Size),
			AvgPrice:     decimal.NewFromFloat(pos.AvgPrice),
			CurrentValue: decimal.NewFromFloat(pos.CurrentValue),
			InitialValue: decimal.NewFromFloat(pos.InitialValue),
			RealizedPnL:  decimal.NewFromFloat(pos.RealizedPnL),
			PercentPnL:   decimal.NewFromFloat(pos.PercentPnL),
		}
		if err := p.st.UpsertPosition(ctx, leader, row); err != nil {
			return err
		}
	}
	return nil
}
