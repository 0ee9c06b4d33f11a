// Package model holds the shared data types that cross component
// boundaries: markets, orderbook snapshots, leader activity rows and
// positions. Nothing here owns a mutex or talks to the network — this is
// plain data.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is a trade or order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Coin is a supported 15-minute-market underlying.
type Coin string

const (
	CoinBTC Coin = "BTC"
	CoinETH Coin = "ETH"
	CoinSOL Coin = "SOL"
	CoinXRP Coin = "XRP"
)

// SlugPrefix returns the market-slug prefix for this coin, e.g. "btc-updown-15m".
func (c Coin) SlugPrefix() string {
	switch c {
	case CoinBTC:
		return "btc-updown-15m"
	case CoinETH:
		return "eth-updown-15m"
	case CoinSOL:
		return "sol-updown-15m"
	case CoinXRP:
		return "xrp-updown-15m"
	default:
		return ""
	}
}

// Market is a single 15-minute binary market.
type Market struct {
	Slug            string
	Question        string
	UpTokenID       string
	DownTokenID     string
	EndDate         time.Time
	AcceptingOrders bool
}

// OrderbookLevel is one price/size pair. Price has 4-decimal precision,
// size has 2-decimal precision — both enforced by decimalutil, not here.
type OrderbookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// OrderbookSnapshot is the authoritative book state for one asset at a
// point in time. It replaces, never patches, any prior snapshot.
type OrderbookSnapshot struct {
	AssetID     string
	Market      string
	TimestampMS int64
	Bids        []OrderbookLevel // sorted descending by price
	Asks        []OrderbookLevel // sorted ascending by price
	Hash        string
}

// BestBid returns the top bid level, or false if the book has no bids.
func (s OrderbookSnapshot) BestBid() (OrderbookLevel, bool) {
	if len(s.Bids) == 0 {
		return OrderbookLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level, or false if the book has no asks.
func (s OrderbookSnapshot) BestAsk() (OrderbookLevel, bool) {
	if len(s.Asks) == 0 {
		return OrderbookLevel{}, false
	}
	return s.Asks[0], true
}

// LeaderActivity is one detected leader-wallet trade.
type LeaderActivity struct {
	ID                    any             `bson:"_id,omitempty"`
	LeaderWallet          string          `bson:"leaderWallet"`
	TimestampMS           int64           `bson:"timestampMs"`
	ConditionID           string          `bson:"conditionId"`
	AssetID               string          `bson:"asset"`
	Side                  Side            `bson:"side"`
	Size                  decimal.Decimal `bson:"size"`
	USDCSize              decimal.Decimal `bson:"usdcSize"`
	Price                 decimal.Decimal `bson:"price"`
	TransactionHash       string          `bson:"transactionHash"`
	Title                 string          `bson:"title"`
	Slug                  string          `bson:"slug"`
	EventSlug             string          `bson:"eventSlug"`
	Outcome               string          `bson:"outcome"`
	OutcomeIndex          int             `bson:"outcomeIndex"`
	Icon                  string          `bson:"icon"`
	Name                  string          `bson:"name"`
	Pseudonym             string          `bson:"pseudonym"`
	Bio                   string          `bson:"bio"`
	ProfileImage          string          `bson:"profileImage"`
	ProfileImageOptimized string          `bson:"profileImageOptimized"`
	Bot                   bool            `bson:"bot"`
	BotExecutedTime       int64           `bson:"botExecutedTime"`
	MyBoughtSize          decimal.Decimal `bson:"myBoughtSize"`
}

// LeaderPosition mirrors a leader's current position in one market.
type LeaderPosition struct {
	LeaderWallet string          `bson:"leaderWallet"`
	AssetID      string          `bson:"asset"`
	ConditionID  string          `bson:"conditionId"`
	Size         decimal.Decimal `bson:"size"`
	AvgPrice     decimal.Decimal `bson:"avgPrice"`
	CurrentValue decimal.Decimal `bson:"currentValue"`
	InitialValue decimal.Decimal `bson:"initialValue"`
	RealizedPnL  decimal.Decimal `bson:"realizedPnl"`
	PercentPnL   decimal.Decimal `bson:"percentPnl"`
}

// VaultPosition is the operator's own live position, fetched fresh from
// the exchange and never persisted.
type VaultPosition struct {
	AssetID     string
	ConditionID string
	Size        decimal.Decimal
	AvgPrice    decimal.Decimal
}

// AggregationGroup buffers small same-market BUY trades awaiting emission
// as one synthetic trade.
type AggregationGroup struct {
	LeaderWallet     string
	ConditionID      string
	AssetID          string
	Side             Side
	Trades           []LeaderActivity
	TotalUSDC        decimal.Decimal
	WeightedAvgPrice decimal.Decimal
	FirstSeen        time.Time
	LastSeen         time.Time
}

// Key identifies the aggregation bucket this group belongs to.
func (g AggregationGroup) Key() string {
	return g.LeaderWallet + ":" + g.ConditionID + ":" + g.AssetID + ":" + string(g.Side)
}

// ArbOpportunity is an emitted arbitrage decision.
type ArbOpportunity struct {
	Coin     Coin
	Market   Market
	UpAsk    decimal.Decimal
	DownAsk  decimal.Decimal
	AskSum   decimal.Decimal
	Spread   decimal.Decimal
}

// Key is the dedup key for this opportunity: "{up_ask:.4}_{down_ask:.4}".
func (o ArbOpportunity) Key() string {
	return o.UpAsk.StringFixed(4) + "_" + o.DownAsk.StringFixed(4)
}

// OrderResult is the normalized outcome of a single submitted order.
type OrderResult struct {
	Success  bool
	OrderID  string
	ErrorMsg string
}
