// Package detector watches paired UP/DOWN orderbook snapshots for one
// 15-minute market and emits an arbitrage opportunity whenever the sum
// of the two best asks drops below the configured threshold. The
// binaries build one Detector per coin and keep it across market
// rollovers, so its dedup set (keyed on the two ask prices only) carries
// over from one market to the next.
package detector

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// maxDedupEntries bounds the opportunity-key dedup set; oldest keys are
// evicted first once the bound is reached.
const maxDedupEntries = 50

// closingSoonWindow is the window before a market's end date in which a
// "closing soon" warning is logged but opportunities still fire.
const closingSoonWindow = 60 * time.Second

// gateWindow is the window before a market's end date in which the
// detector refuses to emit at all.
const gateWindow = 5 * time.Second

// Detector computes ask-sum arbitrage for one market's UP/DOWN pair.
type Detector struct {
	threshold float64
	seen      []string // FIFO dedup set of opportunity keys
}

// New builds a Detector with the given ask-sum threshold (spec default 1.0).
func New(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Evaluate inspects a fresh UP/DOWN snapshot pair for market and returns
// an opportunity if one fires, false otherwise. Returns false without
// evaluating price data at all once the market is within gateWindow of
// its end date, or already past it.
func (d *Detector) Evaluate(coin model.Coin, market model.Market, up, down model.OrderbookSnapshot) (model.ArbOpportunity, bool, string) {
	now := time.Now()
	untilEnd := market.EndDate.Sub(now)
	if untilEnd <= gateWindow {
		return model.ArbOpportunity{}, false, ""
	}

	warning := ""
	if untilEnd <= closingSoonWindow {
		warning = "closing soon"
	}

	upAsk, ok := up.BestAsk()
	if !ok || upAsk.Price.IsZero() {
		return model.ArbOpportunity{}, false, warning
	}
	downAsk, ok := down.BestAsk()
	if !ok || downAsk.Price.IsZero() {
		return model.ArbOpportunity{}, false, warning
	}

	askSum := upAsk.Price.Add(downAsk.Price)
	thresholdDec := decimalFromFloat(d.threshold)
	if askSum.GreaterThanOrEqual(thresholdDec) {
		return model.ArbOpportunity{}, false, warning
	}

	opp := model.ArbOpportunity{
		Coin:    coin,
		Market:  market,
		UpAsk:   upAsk.Price,
		DownAsk: downAsk.Price,
		AskSum:  askSum,
		Spread:  thresholdDec.Sub(askSum),
	}

	key := opp.Key()
	if d.isDuplicate(key) {
		return model.ArbOpportunity{}, false, warning
	}
	d.remember(key)

	return opp, true, warning
}

func (d *Detector) isDuplicate(key string) bool {
	for _, k := range d.seen {
		if k == key {
			return true
		}
	}
	return false
}

func (d *Detector) remember(key string) {
	d.seen = append(d.seen, key)
	if len(d.seen) > maxDedupEntries {
		d.seen = d.seen[len(d.seen)-maxDedupEntries:]
	}
}

// Retired reports whether market has reached its end date. The Supervisor
// does not call it; a past market is kept silent by Evaluate's own
// end-date gate.
func Retired(market model.Market) bool {
	return !time.Now().Before(market.EndDate)
}
