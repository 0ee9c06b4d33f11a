// Package gateway builds, signs, and submits orders against the
// exchange's CLOB, and classifies order failures as fatal (retrying
// won't help) or transient (worth another attempt). It never reads
// order books itself — callers pass prices and sizes already decided
// against a live marketfeed snapshot.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/decimalutil"
	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// Gateway wraps an exchange client and the wallet signer, exposing
// order placement as a flat request/result call instead of the SDK's
// builder chain. clob.NewOrderBuilder takes the full clob.Client, so
// Gateway can't narrow to a smaller interface the way marketfeed does
// for the websocket client.
type Gateway struct {
	client clob.Client
	signer auth.Signer
}

// New builds a Gateway from an already-authenticated CLOB client and signer.
func New(client clob.Client, signer auth.Signer) *Gateway {
	return &Gateway{client: client, signer: signer}
}

// PlaceMarketOrder submits a fill-and-kill market order for amountUSDC of
// tokenID on side ("BUY" or "SELL").
func (g *Gateway) PlaceMarketOrder(ctx context.Context, tokenID, side string, amountUSDC float64) (model.OrderResult, error) {
	floored, _ := decimalutil.Floor2(decimal.NewFromFloat(amountUSDC)).Float64()
	builder := clob.NewOrderBuilder(g.client, g.signer).
		TokenID(tokenID).
		Side(side).
		AmountUSDC(floored).
		OrderType(clobtypes.OrderTypeFAK)

	signable, err := builder.BuildMarketWithContext(ctx)
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("gateway: build market order: %w", err)
	}
	return g.submit(ctx, signable)
}

// PlaceLimitOrder submits a fill-or-kill limit order for sizeUSDC worth of
// tokenID at price, on side ("BUY" or "SELL"). The copy engine's sell
// strategy uses this; FOK means a partial cross never leaves a resting
// order behind. That caller passes its token quantity times the best bid
// as sizeUSDC, which is floored to 2 decimals here.
func (g *Gateway) PlaceLimitOrder(ctx context.Context, tokenID, side string, price, sizeUSDC float64) (model.OrderResult, error) {
	flooredPrice, _ := decimalutil.Floor4(decimal.NewFromFloat(price)).Float64()
	flooredAmount, _ := decimalutil.Floor2(decimal.NewFromFloat(sizeUSDC)).Float64()
	builder := clob.NewOrderBuilder(g.client, g.signer).
		TokenID(tokenID).
		Side(side).
		Price(flooredPrice).
		AmountUSDC(flooredAmount).
		OrderType(clobtypes.OrderTypeFOK)

	signable, err := builder.BuildSignableWithContext(ctx)
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("gateway: build limit order: %w", err)
	}
	return g.submit(ctx, signable)
}

func (g *Gateway) submit(ctx context.Context, signable clobtypes.Signable) (model.OrderResult, error) {
	resp, err := g.client.CreateOrderFromSignable(ctx, signable)
	if err != nil {
		return model.OrderResult{Success: false, ErrorMsg: err.Error()}, nil
	}
	return model.OrderResult{Success: true, OrderID: resp.ID}, nil
}

// CancelOrders cancels a batch of resting orders by ID.
func (g *Gateway) CancelOrders(ctx context.Context, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	_, err := g.client.CancelOrders(ctx, &clobtypes.CancelOrdersRequest{OrderIDs: orderIDs})
	return err
}

// IsFatal reports whether an order rejection is balance- or
// allowance-related, meaning a retry of the same order would fail again
// for the same reason. Any other rejection (timeout, bad price, book
// moved) is treated as transient and worth a retry.
func IsFatal(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	return strings.Contains(lower, "not enough balance") || strings.Contains(lower, "allowance")
}
