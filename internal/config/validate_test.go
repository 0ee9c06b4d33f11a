package config

import "testing"

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got: %v", err)
	}
}

func TestValidateInvalidTradingMode(t *testing.T) {
	cfg := Default()
	cfg.TradingMode = "invalid-mode"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid trading_mode to fail validation")
	}
}

func TestValidateInvalidArbThreshold(t *testing.T) {
	cfg := Default()
	cfg.Arb.ArbitrageThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected arbitrage_threshold > 1 to fail validation")
	}

	cfg = Default()
	cfg.Arb.ArbitrageThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero arbitrage_threshold to fail validation")
	}
}

func TestValidateUnsupportedCoin(t *testing.T) {
	cfg := Default()
	cfg.Arb.Coins = []string{"DOGE"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsupported coin to fail validation")
	}
}

func TestValidateInvalidCopyStrategy(t *testing.T) {
	cfg := Default()
	cfg.Copy.Strategy = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown copy.strategy to fail validation")
	}
}

func TestValidateCopySizeBounds(t *testing.T) {
	cfg := Default()
	cfg.Copy.MinOrderSizeUSD = 10
	cfg.Copy.MaxOrderSizeUSD = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected max_order_size_usd < min_order_size_usd to fail validation")
	}
}

func TestValidateInvalidRiskPct(t *testing.T) {
	cfg := Default()
	cfg.Risk.MaxDailyLossPct = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected risk.max_daily_loss_pct > 1 to fail validation")
	}

	cfg = Default()
	cfg.Risk.MaxDrawdownPct = -0.1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative risk.max_drawdown_pct to fail validation")
	}
}

func TestRequireWalletCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireWalletCredentials(); err == nil {
		t.Fatal("expected missing private_key/proxy_wallet to fail")
	}
	cfg.PrivateKey = "0xkey"
	cfg.ProxyWallet = "0x00000000000000000000000000000000000000aA"
	if err := cfg.RequireWalletCredentials(); err != nil {
		t.Fatalf("expected credentials to be valid, got %v", err)
	}
}

func TestRequireWalletCredentialsRejectsNonHexProxyWallet(t *testing.T) {
	cfg := Default()
	cfg.PrivateKey = "0xkey"
	cfg.ProxyWallet = "not-a-hex-address"
	if err := cfg.RequireWalletCredentials(); err == nil {
		t.Fatal("expected a non-hex proxy_wallet to fail")
	}
}

func TestRequireLeaderWallets(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireLeaderWallets(); err == nil {
		t.Fatal("expected empty user_addresses to fail")
	}

	cfg.UserAddresses = []string{"not-an-address"}
	if err := cfg.RequireLeaderWallets(); err == nil {
		t.Fatal("expected a non-hex leader address to fail")
	}

	cfg.UserAddresses = []string{"0x00000000000000000000000000000000000000bB"}
	if err := cfg.RequireLeaderWallets(); err != nil {
		t.Fatalf("expected a valid leader address to pass, got %v", err)
	}
}
