package marketfeed

import (
	"context"
	"errors"
	"testing"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
)

type fakeOrderbookFetcher struct {
	book clobtypes.OrderBook
	err  error
}

func (f *fakeOrderbookFetcher) OrderBook(ctx context.Context, req *clobtypes.BookRequest) (clobtypes.OrderBook, error) {
	return f.book, f.err
}

func TestRESTBookSnapshotParsesLevels(t *testing.T) {
	fetcher := &fakeOrderbookFetcher{book: clobtypes.OrderBook{
		Bids: []clobtypes.PriceLevel{{Price: "0.45", Size: "10"}},
		Asks: []clobtypes.PriceLevel{{Price: "0.55", Size: "12"}},
	}}
	r := NewRESTBook(fetcher)

	snap, ok, err := r.Snapshot(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true on a successful fetch")
	}
	bid, ok := snap.BestBid()
	if !ok || bid.Price.String() != "0.45" {
		t.Fatalf("expected best bid 0.45, got %+v", bid)
	}
	ask, ok := snap.BestAsk()
	if !ok || ask.Price.String() != "0.55" {
		t.Fatalf("expected best ask 0.55, got %+v", ask)
	}
}

func TestRESTBookSnapshotDropsUnparsableLevels(t *testing.T) {
	fetcher := &fakeOrderbookFetcher{book: clobtypes.OrderBook{
		Bids: []clobtypes.PriceLevel{{Price: "not-a-number", Size: "10"}},
	}}
	r := NewRESTBook(fetcher)

	snap, ok, err := r.Snapshot(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true even when every level is dropped")
	}
	if len(snap.Bids) != 0 {
		t.Fatalf("expected unparsable bid to be dropped, got %d", len(snap.Bids))
	}
}

func TestRESTBookSnapshotReturnsFetchError(t *testing.T) {
	fetcher := &fakeOrderbookFetcher{err: errors.New("book fetch failed")}
	r := NewRESTBook(fetcher)

	_, ok, err := r.Snapshot(context.Background(), "asset-1")
	if err == nil {
		t.Fatal("expected the fetch error to propagate")
	}
	if ok {
		t.Fatal("expected ok=false on a fetch error")
	}
}
