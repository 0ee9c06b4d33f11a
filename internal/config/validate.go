package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Validate checks high-impact runtime configuration constraints. It does
// not check wallet/exchange credentials — those are required only at
// startup time and are checked by the caller, since a read-only
// diagnostic run should still be able to validate a config without them.
func (c Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.TradingMode))
	if mode != "" && mode != "paper" && mode != "live" {
		return fmt.Errorf("trading_mode must be 'paper' or 'live', got %q", c.TradingMode)
	}

	if c.RetryLimit < 0 {
		return fmt.Errorf("retry_limit must be >= 0, got %d", c.RetryLimit)
	}
	if c.NetworkRetryLimit < 0 {
		return fmt.Errorf("network_retry_limit must be >= 0, got %d", c.NetworkRetryLimit)
	}
	if c.FetchInterval <= 0 {
		return fmt.Errorf("fetch_interval must be > 0, got %s", c.FetchInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0, got %s", c.RequestTimeout)
	}

	if c.Arb.ArbitrageThreshold <= 0 || c.Arb.ArbitrageThreshold > 1 {
		return fmt.Errorf("arb.arbitrage_threshold must be within (0,1], got %f", c.Arb.ArbitrageThreshold)
	}
	if c.Arb.TokenAmountUSDC <= 0 {
		return fmt.Errorf("arb.token_amount_usd must be > 0, got %f", c.Arb.TokenAmountUSDC)
	}
	if c.Arb.ScanInterval < 0 {
		return fmt.Errorf("arb.scan_interval must be >= 0, got %s", c.Arb.ScanInterval)
	}
	for _, coin := range c.Arb.Coins {
		switch strings.ToUpper(coin) {
		case "BTC", "ETH", "SOL", "XRP":
		default:
			return fmt.Errorf("arb.coins: unsupported coin %q", coin)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Copy.Strategy)) {
	case "", "percentage", "fixed", "adaptive":
	default:
		return fmt.Errorf("copy.strategy must be 'percentage', 'fixed' or 'adaptive', got %q", c.Copy.Strategy)
	}
	if c.Copy.MinOrderSizeUSD < 0 {
		return fmt.Errorf("copy.min_order_size_usd must be >= 0, got %f", c.Copy.MinOrderSizeUSD)
	}
	if c.Copy.MaxOrderSizeUSD > 0 && c.Copy.MaxOrderSizeUSD < c.Copy.MinOrderSizeUSD {
		return fmt.Errorf("copy.max_order_size_usd (%f) must be >= copy.min_order_size_usd (%f)", c.Copy.MaxOrderSizeUSD, c.Copy.MinOrderSizeUSD)
	}
	if c.Copy.AggregationWindowSecs < 0 {
		return fmt.Errorf("copy.trade_aggregation_window_seconds must be >= 0, got %d", c.Copy.AggregationWindowSecs)
	}

	if c.Risk.MaxOpenOrders <= 0 {
		return fmt.Errorf("risk.max_open_orders must be > 0, got %d", c.Risk.MaxOpenOrders)
	}
	if c.Risk.MaxDailyLossUSDC < 0 {
		return fmt.Errorf("risk.max_daily_loss_usdc must be >= 0, got %f", c.Risk.MaxDailyLossUSDC)
	}
	if c.Risk.AccountCapitalUSDC < 0 {
		return fmt.Errorf("risk.account_capital_usdc must be >= 0, got %f", c.Risk.AccountCapitalUSDC)
	}
	if c.Risk.MaxPositionPerMarket <= 0 {
		return fmt.Errorf("risk.max_position_per_market must be > 0, got %f", c.Risk.MaxPositionPerMarket)
	}
	if c.Risk.MaxDailyLossPct < 0 || c.Risk.MaxDailyLossPct > 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be within [0,1], got %f", c.Risk.MaxDailyLossPct)
	}
	if c.Risk.MaxDrawdownPct < 0 || c.Risk.MaxDrawdownPct > 1 {
		return fmt.Errorf("risk.max_drawdown_pct must be within [0,1], got %f", c.Risk.MaxDrawdownPct)
	}
	if c.Risk.RiskSyncInterval <= 0 {
		return fmt.Errorf("risk.risk_sync_interval must be > 0, got %s", c.Risk.RiskSyncInterval)
	}
	if c.Risk.MaxConsecutiveLosses < 0 {
		return fmt.Errorf("risk.max_consecutive_losses must be >= 0, got %d", c.Risk.MaxConsecutiveLosses)
	}
	if c.Risk.ConsecutiveLossCooldown < 0 {
		return fmt.Errorf("risk.consecutive_loss_cooldown must be >= 0, got %s", c.Risk.ConsecutiveLossCooldown)
	}

	return nil
}

// RequireWalletCredentials checks the fields needed to sign and submit
// orders. Called by the live-trading entrypoints, not by Validate, so a
// dry-run or read-only invocation can still validate a config without a
// private key configured.
func (c Config) RequireWalletCredentials() error {
	if strings.TrimSpace(c.PrivateKey) == "" {
		return fmt.Errorf("private_key is required")
	}
	proxy := strings.TrimSpace(c.ProxyWallet)
	if proxy == "" {
		return fmt.Errorf("proxy_wallet is required")
	}
	if !common.IsHexAddress(proxy) {
		return fmt.Errorf("proxy_wallet %q is not a valid hex address", proxy)
	}
	return nil
}

// RequireLeaderWallets checks that the copy engine has at least one
// hex-valid leader wallet to mirror. The arb engine never calls this.
func (c Config) RequireLeaderWallets() error {
	if len(c.UserAddresses) == 0 {
		return fmt.Errorf("user_addresses must list at least one leader wallet")
	}
	for _, addr := range c.UserAddresses {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("user_addresses entry %q is not a valid hex address", addr)
		}
	}
	return nil
}
