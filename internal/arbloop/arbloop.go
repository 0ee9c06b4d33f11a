// Package arbloop drives the arbitrage engine's scan-detect-execute
// cycle for one coin: rediscover the live 15-minute market on a fixed
// interval, keep its UP/DOWN books warm over the market feed's
// websocket, and hand every fresh pair to the Detector.
package arbloop

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoPolymarket/polymarket-trader/internal/detector"
	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// MarketFinder locates the current tradeable market for a coin.
// discovery.Client implements this.
type MarketFinder interface {
	Find(ctx context.Context, coin model.Coin) (model.Market, bool, error)
}

// BookFeed is the live orderbook cache the loop reads UP/DOWN snapshots
// from, and the subscription it re-points whenever discovery rolls over
// to a new market window. marketfeed.Client implements this.
type BookFeed interface {
	Snapshot(assetID string) (model.OrderbookSnapshot, bool)
	Run(ctx context.Context, assetIDs []string) error

	// OnUpdate registers the callback fired after every fresh snapshot.
	// Must be called before Run.
	OnUpdate(fn func(model.OrderbookSnapshot))
}

// Executor places both legs of a detected opportunity. executor.ArbExecutor
// implements this.
type Executor interface {
	Execute(ctx context.Context, opp model.ArbOpportunity) error
}

// Scanner runs one coin's discover/detect/execute cycle.
type Scanner struct {
	coin     model.Coin
	discover MarketFinder
	feed     BookFeed
	detect   *detector.Detector
	exec     Executor
	interval time.Duration
	log      zerolog.Logger

	mu      sync.RWMutex
	current model.Market
}

// NewScanner builds a Scanner for coin, polling discovery every
// scanInterval (spec default 5s) for a fresh market window. Evaluation
// itself is not on this interval: it registers onBookUpdate with feed so
// every fresh snapshot triggers a check, not just the discovery tick.
func NewScanner(coin model.Coin, discover MarketFinder, feed BookFeed, detect *detector.Detector, exec Executor, scanInterval time.Duration, log zerolog.Logger) *Scanner {
	if scanInterval <= 0 {
		scanInterval = 5 * time.Second
	}
	s := &Scanner{
		coin:     coin,
		discover: discover,
		feed:     feed,
		detect:   detect,
		exec:     exec,
		interval: scanInterval,
		log:      log,
	}
	feed.OnUpdate(s.onBookUpdate)
	return s
}

// Run rediscovers the current market on every tick and resubscribes the
// feed whenever the market has changed. It runs until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var feedCancel context.CancelFunc
	defer func() {
		if feedCancel != nil {
			feedCancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			market, ok, err := s.discover.Find(ctx, s.coin)
			if err != nil {
				s.log.Warn().Err(err).Str("coin", string(s.coin)).Msg("arbloop: discovery failed")
				continue
			}
			if !ok {
				continue
			}
			if market.Slug != s.trackedMarket().Slug {
				if feedCancel != nil {
					feedCancel()
				}
				s.setTrackedMarket(market)
				s.log.Info().Str("coin", string(s.coin)).Str("market", market.Slug).Msg("arbloop: tracking new market")

				var feedCtx context.Context
				feedCtx, feedCancel = context.WithCancel(ctx)
				assetIDs := []string{market.UpTokenID, market.DownTokenID}
				go func() {
					if err := s.feed.Run(feedCtx, assetIDs); err != nil && feedCtx.Err() == nil {
						s.log.Warn().Err(err).Msg("arbloop: book feed stopped")
					}
				}()
			}
		}
	}
}

func (s *Scanner) trackedMarket() model.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Scanner) setTrackedMarket(m model.Market) {
	s.mu.Lock()
	s.current = m
	s.mu.Unlock()
}

// onBookUpdate fires on every fresh snapshot the feed produces. It always
// evaluates the market currently being tracked, not whichever asset the
// update belongs to — evaluate re-reads both legs from the feed's cache,
// so a stray update for a market that just rolled over is harmless.
func (s *Scanner) onBookUpdate(_ model.OrderbookSnapshot) {
	market := s.trackedMarket()
	if market.Slug == "" {
		return
	}
	s.evaluate(context.Background(), market)
}

func (s *Scanner) evaluate(ctx context.Context, market model.Market) {
	if market.Slug == "" {
		return
	}
	up, ok := s.feed.Snapshot(market.UpTokenID)
	if !ok {
		return
	}
	down, ok := s.feed.Snapshot(market.DownTokenID)
	if !ok {
		return
	}

	opp, fire, warning := s.detect.Evaluate(s.coin, market, up, down)
	if warning != "" {
		s.log.Warn().Str("market", market.Slug).Str("warning", warning).Msg("arbloop: market closing soon")
	}
	if !fire {
		return
	}
	if err := s.exec.Execute(ctx, opp); err != nil {
		s.log.Error().Err(err).Str("market", market.Slug).Msg("arbloop: execute failed")
	}
}
