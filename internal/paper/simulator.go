// Package paper simulates order fills against live order book snapshots
// instead of submitting to the exchange, so the trading loops can run
// end-to-end with DryRun set without risking real funds.
package paper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

// Config tunes the simulated fill engine.
type Config struct {
	InitialBalanceUSDC float64 `yaml:"initial_balance_usdc"`
	FeeBps             float64 `yaml:"fee_bps"`
	SlippageBps        float64 `yaml:"slippage_bps"`
	AllowShort         bool    `yaml:"allow_short"`
}

type FillResult struct {
	OrderID    string
	TradeID    string
	AssetID    string
	Side       string
	Status     string
	Filled     bool
	Price      float64
	Size       float64
	AmountUSDC float64
	FeeUSDC    float64
	Timestamp  time.Time
}

type Snapshot struct {
	InitialBalanceUSDC float64 `json:"initial_balance_usdc"`
	BalanceUSDC        float64 `json:"balance_usdc"`
	FeesPaidUSDC       float64 `json:"fees_paid_usdc"`
	TotalVolumeUSDC    float64 `json:"total_volume_usdc"`
	TotalTrades        int     `json:"total_trades"`
	AllowShort         bool    `json:"allow_short"`
}

// Simulator tracks a single paper balance and token inventory across
// fills. It never reads a book itself — callers resolve bestBid/bestAsk
// from a live snapshot first, the same way Gateway's callers do.
type Simulator struct {
	mu sync.Mutex

	cfg Config

	sequence        int64
	balanceUSDC     float64
	feesPaidUSDC    float64
	totalVolumeUSDC float64
	totalTrades     int
	inventory       map[string]float64 // assetID -> token units (can go negative if shorting)
}

func NewSimulator(cfg Config) *Simulator {
	initial := cfg.InitialBalanceUSDC
	if initial <= 0 {
		initial = 1000
	}
	return &Simulator{
		cfg:         Config{InitialBalanceUSDC: initial, FeeBps: cfg.FeeBps, SlippageBps: cfg.SlippageBps, AllowShort: cfg.AllowShort},
		balanceUSDC: initial,
		inventory:   make(map[string]float64),
	}
}

func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		InitialBalanceUSDC: s.cfg.InitialBalanceUSDC,
		BalanceUSDC:        s.balanceUSDC,
		FeesPaidUSDC:       s.feesPaidUSDC,
		TotalVolumeUSDC:    s.totalVolumeUSDC,
		TotalTrades:        s.totalTrades,
		AllowShort:         s.cfg.AllowShort,
	}
}

// ExecuteMarket fills amountUSDC of assetID at the book's top of book,
// crossing the spread the same way a fill-and-kill market order would.
func (s *Simulator) ExecuteMarket(assetID, side string, amountUSDC, bestBid, bestAsk float64) (FillResult, error) {
	side = strings.ToUpper(strings.TrimSpace(side))
	var price float64
	switch side {
	case "BUY":
		price = bestAsk
	case "SELL":
		price = bestBid
	default:
		return FillResult{}, fmt.Errorf("unsupported side: %s", side)
	}
	price = applySlippage(price, side, s.cfg.SlippageBps)
	return s.fill(assetID, side, amountUSDC, price, true)
}

// ExecuteLimit fills amountUSDC of assetID at limitPrice if the book
// already crosses it, mirroring a fill-or-kill limit order; otherwise it
// reports the order as resting, unfilled.
func (s *Simulator) ExecuteLimit(assetID, side string, limitPrice, amountUSDC, bestBid, bestAsk float64) (FillResult, error) {
	side = strings.ToUpper(strings.TrimSpace(side))

	fillable := false
	execPrice := limitPrice
	switch side {
	case "BUY":
		if bestAsk > 0 && bestAsk <= limitPrice {
			fillable = true
			execPrice = bestAsk
		}
	case "SELL":
		if bestBid > 0 && bestBid >= limitPrice {
			fillable = true
			execPrice = bestBid
		}
	default:
		return FillResult{}, fmt.Errorf("unsupported side: %s", side)
	}

	if !fillable {
		return s.openOrder(assetID, side, limitPrice, amountUSDC), nil
	}
	execPrice = applySlippage(execPrice, side, s.cfg.SlippageBps)
	return s.fill(assetID, side, amountUSDC, execPrice, false)
}

func (s *Simulator) openOrder(assetID, side string, price, amountUSDC float64) FillResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	orderID := fmt.Sprintf("paper-order-%06d", s.sequence)
	size := 0.0
	if price > 0 {
		size = amountUSDC / price
	}
	return FillResult{
		OrderID: orderID, AssetID: assetID, Side: side, Status: "LIVE",
		Price: price, Size: size, AmountUSDC: amountUSDC, Timestamp: time.Now().UTC(),
	}
}

func (s *Simulator) fill(assetID, side string, amountUSDC, price float64, marketOrder bool) (FillResult, error) {
	if amountUSDC <= 0 {
		return FillResult{}, fmt.Errorf("amount_usdc must be positive")
	}
	if price <= 0 {
		return FillResult{}, fmt.Errorf("invalid execution price")
	}

	fee := amountUSDC * s.cfg.FeeBps / 10000
	size := amountUSDC / price

	s.mu.Lock()
	defer s.mu.Unlock()

	switch side {
	case "BUY":
		if amountUSDC+fee > s.balanceUSDC {
			return FillResult{}, fmt.Errorf("insufficient paper balance: need %.4f have %.4f", amountUSDC+fee, s.balanceUSDC)
		}
	case "SELL":
		if !s.cfg.AllowShort {
			current := s.inventory[assetID]
			if current+1e-9 < size {
				return FillResult{}, fmt.Errorf("insufficient paper inventory: need %.8f have %.8f", size, current)
			}
		}
	default:
		return FillResult{}, fmt.Errorf("unsupported side: %s", side)
	}

	s.sequence++
	orderID := fmt.Sprintf("paper-order-%06d", s.sequence)
	s.sequence++
	tradeID := fmt.Sprintf("paper-trade-%06d", s.sequence)

	if side == "BUY" {
		s.balanceUSDC -= amountUSDC + fee
		s.inventory[assetID] += size
	} else { // SELL
		s.balanceUSDC += amountUSDC - fee
		s.inventory[assetID] -= size
		if s.inventory[assetID] > -1e-9 && s.inventory[assetID] < 1e-9 {
			delete(s.inventory, assetID)
		}
	}
	s.feesPaidUSDC += fee
	s.totalVolumeUSDC += amountUSDC
	s.totalTrades++

	status := "MATCHED"
	if marketOrder {
		status = "FILLED"
	}

	return FillResult{
		OrderID: orderID, TradeID: tradeID, AssetID: assetID, Side: side, Status: status, Filled: true,
		Price: price, Size: size, AmountUSDC: amountUSDC, FeeUSDC: fee, Timestamp: time.Now().UTC(),
	}, nil
}

func applySlippage(price float64, side string, slippageBps float64) float64 {
	if slippageBps <= 0 {
		return price
	}
	multiplier := slippageBps / 10000
	if side == "BUY" {
		return price * (1 + multiplier)
	}
	return price * (1 - multiplier)
}

// BookSource is the snapshot lookup DryRunGateway needs to price a
// simulated fill. marketfeed.RESTBook satisfies this directly; cmd/arbbot
// adapts its marketfeed.Clients to it. It is the same interface
// executor.BookSource names.
type BookSource interface {
	Snapshot(ctx context.Context, assetID string) (model.OrderbookSnapshot, bool, error)
}

// DryRunGateway implements executor.OrderPlacer by simulating fills
// against the live book instead of submitting orders to the exchange.
// It lets both bots run their full pipeline with cfg.DryRun set, with no
// behavioral difference in the executor or risk layers above it.
type DryRunGateway struct {
	book BookSource
	sim  *Simulator
}

func NewDryRunGateway(book BookSource, cfg Config) *DryRunGateway {
	return &DryRunGateway{book: book, sim: NewSimulator(cfg)}
}

func (g *DryRunGateway) PlaceMarketOrder(ctx context.Context, tokenID, side string, amountUSDC float64) (model.OrderResult, error) {
	bestBid, bestAsk, err := g.topOfBook(ctx, tokenID)
	if err != nil {
		return model.OrderResult{Success: false, ErrorMsg: err.Error()}, nil
	}
	fill, err := g.sim.ExecuteMarket(tokenID, side, amountUSDC, bestBid, bestAsk)
	if err != nil {
		return model.OrderResult{Success: false, ErrorMsg: err.Error()}, nil
	}
	return model.OrderResult{Success: true, OrderID: fill.OrderID}, nil
}

func (g *DryRunGateway) PlaceLimitOrder(ctx context.Context, tokenID, side string, price, sizeUSDC float64) (model.OrderResult, error) {
	bestBid, bestAsk, err := g.topOfBook(ctx, tokenID)
	if err != nil {
		return model.OrderResult{Success: false, ErrorMsg: err.Error()}, nil
	}
	fill, err := g.sim.ExecuteLimit(tokenID, side, price, sizeUSDC, bestBid, bestAsk)
	if err != nil {
		return model.OrderResult{Success: false, ErrorMsg: err.Error()}, nil
	}
	return model.OrderResult{Success: true, OrderID: fill.OrderID}, nil
}

// Snapshot reports the simulated balance and fill totals.
func (g *DryRunGateway) Snapshot() Snapshot { return g.sim.Snapshot() }

func (g *DryRunGateway) topOfBook(ctx context.Context, assetID string) (bestBid, bestAsk float64, err error) {
	snap, ok, err := g.book.Snapshot(ctx, assetID)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, fmt.Errorf("paper: no book snapshot for %s", assetID)
	}
	bid, ok := snap.BestBid()
	if ok {
		bestBid, _ = bid.Price.Float64()
	}
	ask, ok := snap.BestAsk()
	if ok {
		bestAsk, _ = ask.Price.Float64()
	}
	if bestBid == 0 || bestAsk == 0 {
		return 0, 0, fmt.Errorf("paper: missing top-of-book levels for %s", assetID)
	}
	return bestBid, bestAsk, nil
}
