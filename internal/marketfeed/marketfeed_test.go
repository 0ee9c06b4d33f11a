package marketfeed

import (
	"context"
	"testing"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/ws"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

type fakeSource struct {
	ch  chan ws.OrderbookEvent
	err error
}

func (f *fakeSource) SubscribeOrderbook(ctx context.Context, assetIDs []string) (<-chan ws.OrderbookEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func TestHandleReplacesSnapshotAndFansOut(t *testing.T) {
	c := New(&fakeSource{}, zerolog.Nop())

	var got model.OrderbookSnapshot
	c.OnUpdate(func(s model.OrderbookSnapshot) { got = s })

	c.handle(ws.OrderbookEvent{
		AssetID: "asset-1",
		Market:  "mkt-1",
		Bids:    []ws.OrderbookLevel{{Price: "0.45", Size: "10"}},
		Asks:    []ws.OrderbookLevel{{Price: "0.55", Size: "12"}},
	})

	if got.AssetID != "asset-1" {
		t.Fatalf("expected callback to fire with asset-1, got %q", got.AssetID)
	}
	snap, ok := c.Snapshot("asset-1")
	if !ok {
		t.Fatal("expected snapshot to be cached")
	}
	bid, ok := snap.BestBid()
	if !ok || !bid.Price.Equal(decimal.RequireFromString("0.45")) {
		t.Fatalf("expected best bid 0.45, got %+v", bid)
	}

	// A second, smaller book replaces the first entirely.
	c.handle(ws.OrderbookEvent{AssetID: "asset-1", Bids: nil, Asks: nil})
	snap, _ = c.Snapshot("asset-1")
	if len(snap.Bids) != 0 {
		t.Fatalf("expected replace to clear bids, got %d", len(snap.Bids))
	}
}

func TestRunReconnectsOnSubscribeError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(&fakeSource{err: context.DeadlineExceeded}, zerolog.Nop())
	err := c.Run(ctx, []string{"asset-1"})
	if err == nil {
		t.Fatal("expected Run to return once ctx is done")
	}
}
