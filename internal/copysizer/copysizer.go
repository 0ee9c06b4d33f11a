// Package copysizer turns a leader's trade size into the operator's own
// order size: a base amount from the configured strategy, a multiplier
// (flat or tiered by trade size), then a sequence of caps — max order
// size, remaining position room, available balance, minimum order size.
// Every step appends to a human-readable reasoning trail for logging.
//
// All sizing arithmetic runs on decimal.Decimal, not float64, matching
// the exchange's own fixed-point precision rules in decimalutil: a copy
// amount is ultimately floored to a fixed number of decimals before it
// becomes an order, and float64 rounding would make that floor step
// inexact.
package copysizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/config"
)

// Strategy selects how the base copy amount is derived from the
// leader's trade size.
type Strategy string

const (
	StrategyPercentage Strategy = "percentage"
	StrategyFixed      Strategy = "fixed"
	StrategyAdaptive   Strategy = "adaptive"
)

// MultiplierTier scales orders within a trade-size band. Max is nil for
// an open-ended ("500+") tier; by construction only the last tier in a
// parsed set may be open-ended.
type MultiplierTier struct {
	Min        decimal.Decimal
	Max        *decimal.Decimal
	Multiplier decimal.Decimal
}

// Calculation is the result of sizing one copy order, with a reasoning
// trail describing every step that shaped the final amount.
type Calculation struct {
	TraderOrderSize  decimal.Decimal
	BaseAmount       decimal.Decimal
	FinalAmount      decimal.Decimal
	Strategy         Strategy
	CappedByMax      bool
	ReducedByBalance bool
	BelowMinimum     bool
	Reasoning        string
}

// Sizer computes copy order sizes from a static strategy configuration.
type Sizer struct {
	strategy             Strategy
	copySize             decimal.Decimal
	maxOrderSizeUSD      decimal.Decimal
	minOrderSizeUSD      decimal.Decimal
	maxPositionSizeUSD   decimal.Decimal // zero means unbounded
	adaptiveMinPercent   decimal.Decimal
	adaptiveMaxPercent   decimal.Decimal
	adaptiveThresholdUSD decimal.Decimal
	tieredMultipliers    []MultiplierTier
	tradeMultiplier      decimal.Decimal
}

var (
	one        = decimal.NewFromInt(1)
	oneHundred = decimal.NewFromInt(100)
	balanceBuf = decimal.RequireFromString("0.99")
)

// New builds a Sizer from copy-trading config, parsing the tiered
// multiplier string if present. Returns an error if the tier string is
// malformed.
func New(cfg config.CopyConfig) (*Sizer, error) {
	tiers, err := ParseTieredMultipliers(cfg.TieredMultipliers)
	if err != nil {
		return nil, err
	}

	strategy := Strategy(cfg.Strategy)
	if strategy == "" {
		strategy = StrategyPercentage
	}

	tradeMultiplier := decimal.NewFromFloat(cfg.TradeMultiplier)
	if tradeMultiplier.IsZero() {
		tradeMultiplier = one
	}

	return &Sizer{
		strategy:             strategy,
		copySize:             decimal.NewFromFloat(cfg.CopySize),
		maxOrderSizeUSD:      decimal.NewFromFloat(cfg.MaxOrderSizeUSD),
		minOrderSizeUSD:      decimal.NewFromFloat(cfg.MinOrderSizeUSD),
		maxPositionSizeUSD:   decimal.NewFromFloat(cfg.MaxPositionSizeUSD),
		adaptiveMinPercent:   decimal.NewFromFloat(cfg.AdaptiveMinPercent),
		adaptiveMaxPercent:   decimal.NewFromFloat(cfg.AdaptiveMaxPercent),
		adaptiveThresholdUSD: decimal.NewFromFloat(cfg.AdaptiveThresholdUSD),
		tieredMultipliers:    tiers,
		tradeMultiplier:      tradeMultiplier,
	}, nil
}

func lerp(a, b, t decimal.Decimal) decimal.Decimal {
	if t.IsNegative() {
		t = decimal.Zero
	} else if t.GreaterThan(one) {
		t = one
	}
	return a.Add(b.Sub(a).Mul(t))
}

// adaptivePercent scales down for larger trades and up for smaller ones,
// pivoting around adaptiveThresholdUSD (default $500).
func (s *Sizer) adaptivePercent(traderOrderSize decimal.Decimal) decimal.Decimal {
	minPct := s.adaptiveMinPercent
	if minPct.IsZero() {
		minPct = s.copySize
	}
	maxPct := s.adaptiveMaxPercent
	if maxPct.IsZero() {
		maxPct = s.copySize
	}
	threshold := s.adaptiveThresholdUSD
	if threshold.IsZero() {
		threshold = decimal.NewFromInt(500)
	}

	if traderOrderSize.GreaterThanOrEqual(threshold) {
		factor := traderOrderSize.Div(threshold).Sub(one)
		if factor.GreaterThan(one) {
			factor = one
		}
		return lerp(s.copySize, minPct, factor)
	}
	factor := traderOrderSize.Div(threshold)
	return lerp(maxPct, s.copySize, factor)
}

// TradeMultiplier returns the multiplier for a trade of this size:
// the matching tiered multiplier if any tiers are configured, otherwise
// the flat trade multiplier (default 1.0).
func (s *Sizer) TradeMultiplier(traderOrderSize decimal.Decimal) decimal.Decimal {
	if len(s.tieredMultipliers) > 0 {
		for _, tier := range s.tieredMultipliers {
			if traderOrderSize.LessThan(tier.Min) {
				continue
			}
			if tier.Max == nil || traderOrderSize.LessThan(*tier.Max) {
				return tier.Multiplier
			}
		}
		return s.tieredMultipliers[len(s.tieredMultipliers)-1].Multiplier
	}
	return s.tradeMultiplier
}

// Calculate sizes a copy order for a trade of traderOrderSize USD, given
// the operator's available balance and current position size (both USD)
// in the same market.
func (s *Sizer) Calculate(traderOrderSize, availableBalance, currentPositionSize decimal.Decimal) Calculation {
	var baseAmount decimal.Decimal
	var reasoning string

	switch s.strategy {
	case StrategyFixed:
		baseAmount = s.copySize
		reasoning = fmt.Sprintf("Fixed amount: $%s", s.copySize.StringFixed(2))
	case StrategyAdaptive:
		pct := s.adaptivePercent(traderOrderSize)
		baseAmount = traderOrderSize.Mul(pct).Div(oneHundred)
		reasoning = fmt.Sprintf("Adaptive %s%% of trader's $%s = $%s", pct.StringFixed(1), traderOrderSize.StringFixed(2), baseAmount.StringFixed(2))
	default: // StrategyPercentage
		baseAmount = traderOrderSize.Mul(s.copySize).Div(oneHundred)
		reasoning = fmt.Sprintf("%s%% of trader's $%s = $%s", s.copySize.String(), traderOrderSize.StringFixed(2), baseAmount.StringFixed(2))
	}

	multiplier := s.TradeMultiplier(traderOrderSize)
	finalAmount := baseAmount.Mul(multiplier)
	if !multiplier.Equal(one) {
		reasoning += fmt.Sprintf(" → %sx multiplier: $%s → $%s", multiplier.String(), baseAmount.StringFixed(2), finalAmount.StringFixed(2))
	}

	var cappedByMax, reducedByBalance, belowMinimum bool

	if s.maxOrderSizeUSD.IsPositive() && finalAmount.GreaterThan(s.maxOrderSizeUSD) {
		finalAmount = s.maxOrderSizeUSD
		cappedByMax = true
		reasoning += fmt.Sprintf(" → Capped at max $%s", s.maxOrderSizeUSD.String())
	}

	if s.maxPositionSizeUSD.IsPositive() {
		newTotal := currentPositionSize.Add(finalAmount)
		if newTotal.GreaterThan(s.maxPositionSizeUSD) {
			allowed := s.maxPositionSizeUSD.Sub(currentPositionSize)
			if allowed.IsNegative() {
				allowed = decimal.Zero
			}
			if allowed.LessThan(s.minOrderSizeUSD) {
				finalAmount = decimal.Zero
				reasoning += " → Position limit reached"
			} else {
				finalAmount = allowed
				reasoning += " → Reduced to fit position limit"
			}
		}
	}

	maxAffordable := availableBalance.Mul(balanceBuf)
	if finalAmount.GreaterThan(maxAffordable) {
		finalAmount = maxAffordable
		reducedByBalance = true
		reasoning += fmt.Sprintf(" → Reduced to fit balance ($%s)", maxAffordable.StringFixed(2))
	}

	if finalAmount.LessThan(s.minOrderSizeUSD) {
		belowMinimum = true
		reasoning += fmt.Sprintf(" → Below minimum $%s", s.minOrderSizeUSD.String())
		finalAmount = s.minOrderSizeUSD
	}

	return Calculation{
		TraderOrderSize:  traderOrderSize,
		BaseAmount:       baseAmount,
		FinalAmount:      finalAmount,
		Strategy:         s.strategy,
		CappedByMax:      cappedByMax,
		ReducedByBalance: reducedByBalance,
		BelowMinimum:     belowMinimum,
		Reasoning:        reasoning,
	}
}

// ParseTieredMultipliers parses a comma-separated "min-max:mult" or
// "min+:mult" tier string, sorting tiers by min ascending. Returns an
// error if any tier is malformed, if the multiplier or bounds are
// negative, if a non-terminal tier is open-ended, or if tiers overlap.
func ParseTieredMultipliers(tiersStr string) ([]MultiplierTier, error) {
	trimmed := strings.TrimSpace(tiersStr)
	if trimmed == "" {
		return nil, nil
	}

	var tiers []MultiplierTier
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.SplitN(part, ":", 2)
		if len(pieces) != 2 {
			return nil, fmt.Errorf("invalid tier: missing multiplier: %q", part)
		}
		rangeStr := strings.TrimSpace(pieces[0])
		multiplier, err := decimal.NewFromString(strings.TrimSpace(pieces[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid multiplier in tier %q: %w", part, err)
		}
		if multiplier.IsNegative() {
			return nil, fmt.Errorf("invalid multiplier in tier: %s", part)
		}

		if strings.HasSuffix(rangeStr, "+") {
			min, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(rangeStr, "+")))
			if err != nil {
				return nil, fmt.Errorf("invalid min in tier %q: %w", part, err)
			}
			if min.IsNegative() {
				return nil, fmt.Errorf("invalid minimum in tier: %s", part)
			}
			tiers = append(tiers, MultiplierTier{Min: min, Max: nil, Multiplier: multiplier})
			continue
		}

		minS, maxS, ok := strings.Cut(rangeStr, "-")
		if !ok {
			return nil, fmt.Errorf("invalid range format in tier: %s", part)
		}
		min, err := decimal.NewFromString(strings.TrimSpace(minS))
		if err != nil {
			return nil, fmt.Errorf("invalid min in tier %q: %w", part, err)
		}
		max, err := decimal.NewFromString(strings.TrimSpace(maxS))
		if err != nil {
			return nil, fmt.Errorf("invalid max in tier %q: %w", part, err)
		}
		if min.IsNegative() {
			return nil, fmt.Errorf("invalid minimum in tier: %s", part)
		}
		if !max.GreaterThan(min) {
			return nil, fmt.Errorf("max must be > min in tier: %s", part)
		}
		maxCopy := max
		tiers = append(tiers, MultiplierTier{Min: min, Max: &maxCopy, Multiplier: multiplier})
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Min.LessThan(tiers[j].Min) })

	for i := 0; i < len(tiers)-1; i++ {
		cur, next := tiers[i], tiers[i+1]
		if cur.Max == nil {
			return nil, fmt.Errorf("tier with infinite upper bound must be last")
		}
		if cur.Max.GreaterThan(next.Min) {
			return nil, fmt.Errorf("overlapping tiers")
		}
	}

	return tiers, nil
}
