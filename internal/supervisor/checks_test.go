package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
)

type fakeStorePinger struct{ err error }

func (f *fakeStorePinger) Ping(ctx context.Context) error { return f.err }

func TestStoreCheck(t *testing.T) {
	if err := StoreCheck(&fakeStorePinger{})(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := StoreCheck(&fakeStorePinger{err: errors.New("down")})(context.Background()); err == nil {
		t.Fatal("expected an error to propagate")
	}
}

type fakeBlockNumberer struct {
	n   uint64
	err error
}

func (f *fakeBlockNumberer) BlockNumber(ctx context.Context) (uint64, error) { return f.n, f.err }

func TestRPCCheck(t *testing.T) {
	if err := RPCCheck(&fakeBlockNumberer{n: 1234})(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := RPCCheck(&fakeBlockNumberer{err: errors.New("no peers")})(context.Background()); err == nil {
		t.Fatal("expected an error to propagate")
	}
}

type fakeMarketsLister struct {
	resp *clobtypes.MarketsResponse
	err  error
}

func (f *fakeMarketsLister) Markets(ctx context.Context, req *clobtypes.MarketsRequest) (*clobtypes.MarketsResponse, error) {
	return f.resp, f.err
}

func TestExchangeRESTCheck(t *testing.T) {
	if err := ExchangeRESTCheck(&fakeMarketsLister{resp: &clobtypes.MarketsResponse{}})(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := ExchangeRESTCheck(&fakeMarketsLister{err: errors.New("timeout")})(context.Background()); err == nil {
		t.Fatal("expected an error to propagate")
	}
}

type fakeVaultSyncer struct{ err error }

func (f *fakeVaultSyncer) Sync(ctx context.Context) error { return f.err }

func TestVaultBalanceCheck(t *testing.T) {
	if err := VaultBalanceCheck(&fakeVaultSyncer{})(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := VaultBalanceCheck(&fakeVaultSyncer{err: errors.New("data api down")})(context.Background()); err == nil {
		t.Fatal("expected an error to propagate")
	}
}
