package supervisor

import (
	"context"
	"fmt"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
)

// StorePinger is the reachability probe the State Store exposes.
// store.Store implements this.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// BlockNumberer reports the current chain head, used as an RPC
// liveness probe. *ethclient.Client implements this.
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// MarketsLister is the cheapest authenticated CLOB REST call available,
// used as an exchange liveness probe. clob.Client implements this.
type MarketsLister interface {
	Markets(ctx context.Context, req *clobtypes.MarketsRequest) (*clobtypes.MarketsResponse, error)
}

// VaultSyncer refreshes the operator's own balance/positions from the
// Data API. portfolio.PortfolioTracker implements this.
type VaultSyncer interface {
	Sync(ctx context.Context) error
}

// StoreCheck probes State Store reachability.
func StoreCheck(store StorePinger) CheckFunc {
	return func(ctx context.Context) error {
		return store.Ping(ctx)
	}
}

// RPCCheck probes the configured chain RPC endpoint by fetching the
// current block number.
func RPCCheck(rpc BlockNumberer) CheckFunc {
	return func(ctx context.Context) error {
		_, err := rpc.BlockNumber(ctx)
		return err
	}
}

// ExchangeRESTCheck probes exchange REST liveness with a one-market
// lookup — the cheapest call the CLOB REST surface offers.
func ExchangeRESTCheck(clob MarketsLister) CheckFunc {
	limit := 1
	return func(ctx context.Context) error {
		_, err := clob.Markets(ctx, &clobtypes.MarketsRequest{Limit: limit})
		return err
	}
}

// VaultBalanceCheck probes that the vault's USDC balance/positions can
// be fetched from the Data API.
func VaultBalanceCheck(portfolio VaultSyncer) CheckFunc {
	return func(ctx context.Context) error {
		if err := portfolio.Sync(ctx); err != nil {
			return fmt.Errorf("vault balance sync: %w", err)
		}
		return nil
	}
}
