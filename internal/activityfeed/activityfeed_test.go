package activityfeed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

type fakeStore struct {
	byTx    map[string]*model.LeaderActivity
	inserts []*model.LeaderActivity
}

func newFakeStore() *fakeStore {
	return &fakeStore{byTx: map[string]*model.LeaderActivity{}}
}

func (f *fakeStore) CountActivities(ctx context.Context, leader string) (int64, error) { return 0, nil }

func (f *fakeStore) InsertActivity(ctx context.Context, leader string, activity *model.LeaderActivity) error {
	f.inserts = append(f.inserts, activity)
	f.byTx[activity.TransactionHash] = activity
	return nil
}

func (f *fakeStore) FindActivityByTx(ctx context.Context, leader, txHash string) (*model.LeaderActivity, bool, error) {
	a, ok := f.byTx[txHash]
	return a, ok, nil
}

func (f *fakeStore) FindUnprocessedTrades(ctx context.Context, leader string) ([]model.LeaderActivity, error) {
	return nil, nil
}

func (f *fakeStore) ClaimActivity(ctx context.Context, leader string, id any) (bool, error) {
	return true, nil
}

func (f *fakeStore) MarkActivityExecuted(ctx context.Context, leader string, id any, myBoughtSize string) error {
	return nil
}

func (f *fakeStore) MarkHistoricalProcessed(ctx context.Context, leader string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) UpsertPosition(ctx context.Context, leader string, pos model.LeaderPosition) error {
	return nil
}

func (f *fakeStore) Positions(ctx context.Context, leader string) ([]model.LeaderPosition, error) {
	return nil, nil
}

func (f *fakeStore) FindOpenBuysForAsset(ctx context.Context, leader, assetID, conditionID string) ([]model.LeaderActivity, error) {
	return nil, nil
}

func (f *fakeStore) ReduceBoughtSize(ctx context.Context, leader, assetID, conditionID string, remainingFraction string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) SetConfig(ctx context.Context, key, value string) error { return nil }

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) Close(ctx context.Context) error { return nil }

func TestProcessTradeActivityInsertsNewTrade(t *testing.T) {
	st := newFakeStore()
	c := New(st, []string{"0xLeader"}, 24*time.Hour, zerolog.Nop())

	act := Activity{
		ProxyWallet:     "0xleader",
		ConditionID:     "cond-1",
		Asset:           "asset-1",
		Side:            "buy",
		Size:            "10",
		USDCSize:        "5",
		Price:           "0.5",
		TransactionHash: "0xabc",
		Timestamp:       time.Now().UnixMilli(),
	}
	c.processTradeActivity(context.Background(), "0xleader", act)

	if len(st.inserts) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(st.inserts))
	}
	if st.inserts[0].Side != model.SideBuy {
		t.Fatalf("expected side normalized to BUY, got %q", st.inserts[0].Side)
	}
}

func TestProcessTradeActivitySkipsDuplicateTx(t *testing.T) {
	st := newFakeStore()
	c := New(st, []string{"0xLeader"}, 24*time.Hour, zerolog.Nop())

	act := Activity{
		ProxyWallet:     "0xleader",
		TransactionHash: "0xabc",
		Timestamp:       time.Now().UnixMilli(),
		Side:            "buy",
	}
	c.processTradeActivity(context.Background(), "0xleader", act)
	c.processTradeActivity(context.Background(), "0xleader", act)

	if len(st.inserts) != 1 {
		t.Fatalf("expected dedup to suppress second insert, got %d inserts", len(st.inserts))
	}
}

func TestProcessTradeActivityDropsStaleTrade(t *testing.T) {
	st := newFakeStore()
	c := New(st, []string{"0xLeader"}, time.Hour, zerolog.Nop())

	act := Activity{
		ProxyWallet:     "0xleader",
		TransactionHash: "0xold",
		Timestamp:       time.Now().Add(-3 * time.Hour).UnixMilli(),
		Side:            "sell",
	}
	c.processTradeActivity(context.Background(), "0xleader", act)

	if len(st.inserts) != 0 {
		t.Fatalf("expected stale trade to be dropped, got %d inserts", len(st.inserts))
	}
}

func TestProcessTradeActivityRequiresTxHash(t *testing.T) {
	st := newFakeStore()
	c := New(st, []string{"0xLeader"}, 24*time.Hour, zerolog.Nop())

	act := Activity{ProxyWallet: "0xleader", Timestamp: time.Now().UnixMilli(), Side: "buy"}
	c.processTradeActivity(context.Background(), "0xleader", act)

	if len(st.inserts) != 0 {
		t.Fatalf("expected missing tx hash to be dropped, got %d inserts", len(st.inserts))
	}
}

func TestProcessTradeActivityNormalizesSecondsTimestamp(t *testing.T) {
	st := newFakeStore()
	c := New(st, []string{"0xLeader"}, 24*time.Hour, zerolog.Nop())

	nowSec := time.Now().Unix()
	act := Activity{
		ProxyWallet:     "0xleader",
		TransactionHash: "0xsec",
		Timestamp:       nowSec,
		Side:            "buy",
	}
	c.processTradeActivity(context.Background(), "0xleader", act)

	if len(st.inserts) != 1 {
		t.Fatalf("expected insert, got %d", len(st.inserts))
	}
	if st.inserts[0].TimestampMS < nowSec*1000 {
		t.Fatalf("expected timestamp normalized to ms, got %d", st.inserts[0].TimestampMS)
	}
}
