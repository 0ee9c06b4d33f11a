package arbloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/detector"
	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

type fakeFinder struct {
	market model.Market
	ok     bool
}

func (f *fakeFinder) Find(ctx context.Context, coin model.Coin) (model.Market, bool, error) {
	return f.market, f.ok, nil
}

type fakeFeed struct {
	mu       sync.RWMutex
	books    map[string]model.OrderbookSnapshot
	onUpdate func(model.OrderbookSnapshot)
}

func newFakeFeed() *fakeFeed { return &fakeFeed{books: make(map[string]model.OrderbookSnapshot)} }

// set stores snap and, mirroring marketfeed.Client, fires the registered
// OnUpdate callback inline so callers can exercise the event-driven path.
func (f *fakeFeed) set(assetID string, snap model.OrderbookSnapshot) {
	f.mu.Lock()
	f.books[assetID] = snap
	cb := f.onUpdate
	f.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}

func (f *fakeFeed) Snapshot(assetID string) (model.OrderbookSnapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.books[assetID]
	return b, ok
}

func (f *fakeFeed) Run(ctx context.Context, assetIDs []string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeFeed) OnUpdate(fn func(model.OrderbookSnapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUpdate = fn
}

type fakeExecutor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeExecutor) Execute(ctx context.Context, opp model.ArbOpportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func askBook(price float64) model.OrderbookSnapshot {
	return model.OrderbookSnapshot{Asks: []model.OrderbookLevel{{Price: decimal.NewFromFloat(price), Size: decimal.NewFromInt(100)}}}
}

func TestScannerExecutesOnFiredOpportunity(t *testing.T) {
	market := model.Market{Slug: "btc-updown-15m-1", UpTokenID: "up", DownTokenID: "down", EndDate: time.Now().Add(time.Minute)}
	finder := &fakeFinder{market: market, ok: true}
	feed := newFakeFeed()
	exec := &fakeExecutor{}
	d := detector.New(1.0)

	s := NewScanner(model.CoinBTC, finder, feed, d, exec, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	// Give discovery's first tick a chance to start tracking the market
	// before pushing a book update; evaluation is event-driven off of
	// that update, not this ticker.
	time.Sleep(20 * time.Millisecond)
	feed.set("up", askBook(0.47))
	feed.set("down", askBook(0.48))

	deadline := time.Now().Add(200 * time.Millisecond)
	for exec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if exec.count() == 0 {
		t.Fatal("expected the scanner to execute on a book update once a market is tracked")
	}
}

func TestScannerSkipsWhenNoMarketFound(t *testing.T) {
	finder := &fakeFinder{ok: false}
	feed := newFakeFeed()
	exec := &fakeExecutor{}
	d := detector.New(1.0)

	s := NewScanner(model.CoinBTC, finder, feed, d, exec, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	if exec.count() != 0 {
		t.Fatalf("expected no executions without a discovered market, got %d", exec.count())
	}
}
