package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Risk.MaxOpenOrders <= 0 {
		t.Fatal("expected positive max open orders")
	}
	if cfg.FetchInterval <= 0 {
		t.Fatal("expected positive fetch interval")
	}
	if !cfg.DryRun {
		t.Fatal("expected dry run true by default")
	}
	if cfg.Risk.MaxDailyLossPct <= 0 {
		t.Fatal("expected positive max_daily_loss_pct by default")
	}
	if cfg.Risk.AccountCapitalUSDC <= 0 {
		t.Fatal("expected positive account_capital_usdc by default")
	}
	if cfg.Risk.MaxConsecutiveLosses <= 0 {
		t.Fatal("expected positive max_consecutive_losses by default")
	}
	if cfg.TradingMode != "paper" {
		t.Fatalf("expected trading_mode=paper by default, got %q", cfg.TradingMode)
	}
	if len(cfg.Arb.Coins) != 4 {
		t.Fatalf("expected 4 default coins, got %d", len(cfg.Arb.Coins))
	}
	if cfg.Arb.ArbitrageThreshold <= 0 || cfg.Arb.ArbitrageThreshold > 1 {
		t.Fatalf("expected arbitrage threshold in (0,1], got %f", cfg.Arb.ArbitrageThreshold)
	}
	if cfg.Copy.Strategy != "percentage" {
		t.Fatalf("expected copy strategy percentage by default, got %q", cfg.Copy.Strategy)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yaml := `
fetch_interval: 3s
arb:
  coins: [BTC, ETH]
  arbitrage_threshold: 0.97
  token_amount_usd: 10
copy:
  strategy: fixed
  copy_size: 25
risk:
  max_daily_loss_usdc: 200
  max_daily_loss_pct: 0.03
  account_capital_usdc: 1500
  max_consecutive_losses: 4
  consecutive_loss_cooldown: 45m
trading_mode: live
`
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte(yaml)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := LoadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Arb.Coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(cfg.Arb.Coins))
	}
	if cfg.Arb.ArbitrageThreshold != 0.97 {
		t.Fatalf("expected arbitrage threshold 0.97, got %f", cfg.Arb.ArbitrageThreshold)
	}
	if cfg.Copy.Strategy != "fixed" {
		t.Fatalf("expected copy strategy fixed, got %q", cfg.Copy.Strategy)
	}
	if cfg.Copy.CopySize != 25 {
		t.Fatalf("expected copy size 25, got %f", cfg.Copy.CopySize)
	}
	if cfg.Risk.MaxDailyLossUSDC != 200 {
		t.Fatalf("expected max daily loss 200, got %f", cfg.Risk.MaxDailyLossUSDC)
	}
	if cfg.Risk.MaxDailyLossPct != 0.03 {
		t.Fatalf("expected max daily loss pct 0.03, got %f", cfg.Risk.MaxDailyLossPct)
	}
	if cfg.Risk.AccountCapitalUSDC != 1500 {
		t.Fatalf("expected account capital 1500, got %f", cfg.Risk.AccountCapitalUSDC)
	}
	if cfg.Risk.MaxConsecutiveLosses != 4 {
		t.Fatalf("expected max consecutive losses 4, got %d", cfg.Risk.MaxConsecutiveLosses)
	}
	if cfg.Risk.ConsecutiveLossCooldown != 45*time.Minute {
		t.Fatalf("expected consecutive loss cooldown 45m, got %v", cfg.Risk.ConsecutiveLossCooldown)
	}
	if cfg.TradingMode != "live" {
		t.Fatalf("expected trading_mode live, got %q", cfg.TradingMode)
	}
	if cfg.FetchInterval != 3*time.Second {
		t.Fatalf("expected 3s fetch interval, got %v", cfg.FetchInterval)
	}
}

func TestLoadFileInvalidPath(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write([]byte("{{invalid yaml")); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = LoadFile(f.Name())
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyEnvAllVars(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "test-pk")
	t.Setenv("PROXY_WALLET", "0xabc")
	t.Setenv("USER_ADDRESSES", "0x111, 0x222 ,0x333")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("RETRY_LIMIT", "5")
	t.Setenv("ARBITRAGE_THRESHOLD", "0.95")
	t.Setenv("TOKEN_AMOUNT", "12.5")
	t.Setenv("COPY_STRATEGY", "adaptive")
	t.Setenv("COPY_SIZE", "30")
	t.Setenv("TRADER_DRY_RUN", "1")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.PrivateKey != "test-pk" {
		t.Fatalf("expected PrivateKey test-pk, got %s", cfg.PrivateKey)
	}
	if cfg.ProxyWallet != "0xabc" {
		t.Fatalf("expected ProxyWallet 0xabc, got %s", cfg.ProxyWallet)
	}
	if len(cfg.UserAddresses) != 3 || cfg.UserAddresses[1] != "0x222" {
		t.Fatalf("expected 3 trimmed user addresses, got %#v", cfg.UserAddresses)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Fatalf("expected mongo uri override, got %s", cfg.MongoURI)
	}
	if cfg.RetryLimit != 5 {
		t.Fatalf("expected retry limit 5, got %d", cfg.RetryLimit)
	}
	if cfg.Arb.ArbitrageThreshold != 0.95 {
		t.Fatalf("expected arbitrage threshold 0.95, got %f", cfg.Arb.ArbitrageThreshold)
	}
	if cfg.Arb.TokenAmountUSDC != 12.5 {
		t.Fatalf("expected token amount 12.5, got %f", cfg.Arb.TokenAmountUSDC)
	}
	if cfg.Copy.Strategy != "adaptive" {
		t.Fatalf("expected copy strategy adaptive, got %q", cfg.Copy.Strategy)
	}
	if cfg.Copy.CopySize != 30 {
		t.Fatalf("expected copy size 30, got %f", cfg.Copy.CopySize)
	}
	if !cfg.DryRun {
		t.Fatal("expected DryRun true from env '1'")
	}
}

func TestApplyEnvTradingMode(t *testing.T) {
	t.Setenv("TRADING_MODE", "LIVE")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.TradingMode != "live" {
		t.Fatalf("expected trading mode from env to be live, got %q", cfg.TradingMode)
	}
}

func TestApplyEnvTelegramEnablesOnToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "abc:123")
	cfg := Default()
	cfg.ApplyEnv()
	if !cfg.Telegram.Enabled {
		t.Fatal("expected telegram enabled once bot token is set")
	}
	if cfg.Telegram.BotToken != "abc:123" {
		t.Fatalf("expected bot token abc:123, got %s", cfg.Telegram.BotToken)
	}
}
