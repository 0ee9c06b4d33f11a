// Package decimalutil implements the exchange's fixed-point precision
// rules: prices floor to 4 decimals, token quantities floor to 2 decimals,
// and a target-USDC order reconciles both simultaneously.
package decimalutil

import (
	"github.com/shopspring/decimal"
)

const (
	// MinTokenSize is the smallest token quantity the exchange accepts.
	MinTokenSize = "0.01"
	reconcileEpsilon = "0.000001"
	maxReconcileIterations = 10
)

// Floor4 floors v to 4 decimal places.
func Floor4(v decimal.Decimal) decimal.Decimal {
	return v.Truncate(4)
}

// Floor2 floors v to 2 decimal places, clamped to a minimum of 0.01.
func Floor2(v decimal.Decimal) decimal.Decimal {
	floored := v.Truncate(2)
	min := decimal.RequireFromString(MinTokenSize)
	if floored.LessThan(min) {
		return min
	}
	return floored
}

// ReconcileTokensAndUSDC takes a starting token quantity and a price and
// iterates the exchange's precision rule until both the USDC amount and
// the token quantity independently satisfy it: usdc = floor4(tokens*price),
// tokens' = floor2(usdc/price); stop when |tokens-tokens'| < 1e-6 or after
// 10 iterations. Returns the reconciled (tokens, usdc).
func ReconcileTokensAndUSDC(tokens, price decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if price.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	epsilon := decimal.RequireFromString(reconcileEpsilon)
	current := tokens
	var usdc decimal.Decimal
	for i := 0; i < maxReconcileIterations; i++ {
		usdc = Floor4(current.Mul(price))
		next := Floor2(usdc.Div(price))
		diff := current.Sub(next).Abs()
		current = next
		if diff.LessThan(epsilon) {
			break
		}
	}
	return current, usdc
}

// TokensForUSDC derives a token quantity for a target USDC spend at price,
// then reconciles it so both quantities satisfy the precision rule.
func TokensForUSDC(usdcAmount, price decimal.Decimal) (tokens decimal.Decimal, usdc decimal.Decimal) {
	if price.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	initial := Floor2(usdcAmount.Div(price))
	return ReconcileTokensAndUSDC(initial, price)
}

// MeetsMinimum reports whether a floored USDC amount meets the exchange's
// minimum order size.
func MeetsMinimum(usdcAmount, minOrderSizeUSD decimal.Decimal) bool {
	return Floor4(usdcAmount).GreaterThanOrEqual(minOrderSizeUSD)
}

// ValidPrice reports whether a price is submittable: within (0,1) and its
// 4-decimal floor is not zero.
func ValidPrice(price decimal.Decimal) bool {
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return false
	}
	return !Floor4(price).IsZero()
}
