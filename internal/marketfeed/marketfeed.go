// Package marketfeed wraps the exchange SDK's orderbook websocket,
// keeping a snapshot cache per asset and fanning every update out to a
// registered callback. A snapshot always replaces, never patches, the
// prior one for that asset.
package marketfeed

import (
	"context"
	"sync"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/ws"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// reconnectDelay is fixed, unlike the activity feed's backoff — market
// data reconnects are cheap and frequent, so there is no value in
// escalating the delay.
const reconnectDelay = 5 * time.Second

// OrderbookSource is the slice of the exchange SDK's websocket client
// this package depends on. Narrowing to just this method keeps the feed
// testable without a fake implementing the SDK's entire client surface.
type OrderbookSource interface {
	SubscribeOrderbook(ctx context.Context, assetIDs []string) (<-chan ws.OrderbookEvent, error)
}

// Client subscribes to live orderbook updates for a set of assets and
// keeps the most recent snapshot for each.
type Client struct {
	ws  OrderbookSource
	log zerolog.Logger

	mu       sync.RWMutex
	books    map[string]model.OrderbookSnapshot
	onUpdate func(model.OrderbookSnapshot)
}

func New(wsClient OrderbookSource, log zerolog.Logger) *Client {
	return &Client{
		ws:    wsClient,
		log:   log,
		books: make(map[string]model.OrderbookSnapshot),
	}
}

// OnUpdate registers the callback invoked after every snapshot replace.
// Must be called before Run. The callback must not block — it runs
// inline on the feed's read loop.
func (c *Client) OnUpdate(fn func(model.OrderbookSnapshot)) {
	c.onUpdate = fn
}

// Snapshot returns the most recent book for assetID, if any.
func (c *Client) Snapshot(assetID string) (model.OrderbookSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.books[assetID]
	return b, ok
}

// Run subscribes to assetIDs and processes updates until ctx is
// cancelled, reconnecting on a fixed delay whenever the subscription
// channel closes.
func (c *Client) Run(ctx context.Context, assetIDs []string) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bookCh, err := c.ws.SubscribeOrderbook(ctx, assetIDs)
		if err != nil {
			c.log.Warn().Err(err).Msg("orderbook subscribe failed, retrying")
			if !sleepOrDone(ctx, reconnectDelay) {
				return ctx.Err()
			}
			continue
		}

		c.log.Info().Int("assets", len(assetIDs)).Msg("orderbook feed connected")
		drained := c.drain(ctx, bookCh)
		if !drained {
			return ctx.Err()
		}

		c.log.Warn().Msg("orderbook feed closed, reconnecting")
		if !sleepOrDone(ctx, reconnectDelay) {
			return ctx.Err()
		}
	}
}

// drain consumes events until the channel closes or ctx is done. It
// returns false when ctx is done (the caller should stop entirely) and
// true when the channel merely closed (the caller should reconnect).
func (c *Client) drain(ctx context.Context, bookCh <-chan ws.OrderbookEvent) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-bookCh:
			if !ok {
				return true
			}
			c.handle(ev)
		}
	}
}

func (c *Client) handle(ev ws.OrderbookEvent) {
	snapshot := model.OrderbookSnapshot{
		AssetID:     ev.AssetID,
		Market:      ev.Market,
		TimestampMS: time.Now().UnixMilli(),
		Bids:        parseLevels(ev.Bids),
		Asks:        parseLevels(ev.Asks),
	}

	c.mu.Lock()
	c.books[ev.AssetID] = snapshot
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(snapshot)
	}
}

// parseLevels converts the SDK's string-encoded price/size pairs into
// decimal levels, dropping any level that fails to parse rather than
// failing the whole snapshot.
func parseLevels(levels []ws.OrderbookLevel) []model.OrderbookLevel {
	out := make([]model.OrderbookLevel, 0, len(levels))
	for _, lvl := range levels {
		price, err := decimal.NewFromString(lvl.Price)
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(lvl.Size)
		if err != nil {
			continue
		}
		out = append(out, model.OrderbookLevel{Price: price, Size: size})
	}
	return out
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
