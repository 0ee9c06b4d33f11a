package marketfeed

import (
	"context"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/ratelimit"
)

// restRequestsPerSecond bounds RESTBook's per-child-order book fetches.
// The copy engine can retry several times per leader trade across
// several leaders, so this is the one REST path most likely to burst.
const restRequestsPerSecond = 10

// OrderbookFetcher is the slice of the exchange SDK's REST client this
// package depends on for a one-off book lookup. clob.Client implements
// this.
type OrderbookFetcher interface {
	OrderBook(ctx context.Context, req *clobtypes.BookRequest) (clobtypes.OrderBook, error)
}

// RESTBook fetches a fresh orderbook over REST on every Snapshot call,
// rather than reading from a cache. The copy engine mirrors leader
// trades on whatever market the leader happens to trade, so there is no
// fixed, small asset set worth keeping a websocket subscription warm
// for the way the arb engine's Client does.
type RESTBook struct {
	clob    OrderbookFetcher
	limiter *ratelimit.Limiter
}

func NewRESTBook(clob OrderbookFetcher) *RESTBook {
	return &RESTBook{clob: clob, limiter: ratelimit.New(restRequestsPerSecond)}
}

// Snapshot fetches the current book for assetID. The bool return is
// always true on success; it exists so RESTBook satisfies the same
// BookSource interface as a cached feed, where "no snapshot yet" is a
// real, non-error state.
func (r *RESTBook) Snapshot(ctx context.Context, assetID string) (model.OrderbookSnapshot, bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return model.OrderbookSnapshot{}, false, err
	}
	book, err := r.clob.OrderBook(ctx, &clobtypes.BookRequest{TokenID: assetID})
	if err != nil {
		return model.OrderbookSnapshot{}, false, err
	}
	return model.OrderbookSnapshot{
		AssetID:     assetID,
		TimestampMS: time.Now().UnixMilli(),
		Bids:        parsePriceLevels(book.Bids),
		Asks:        parsePriceLevels(book.Asks),
	}, true, nil
}

// parsePriceLevels converts the SDK's string-encoded REST price levels
// into decimal levels, dropping any level that fails to parse rather
// than failing the whole snapshot.
func parsePriceLevels(levels []clobtypes.PriceLevel) []model.OrderbookLevel {
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
