// Package config loads and validates runtime configuration shared by the
// arbitrage bot and the copy-trading bot: wallet/exchange wiring, the
// document-store connection, and each engine's strategy knobs. Both
// binaries call Default, then LoadFile, then ApplyEnv, in that order, so
// environment variables always win over a config file, which always wins
// over the built-in defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Wallet & chain wiring.
	PrivateKey  string `yaml:"private_key"`
	ProxyWallet string `yaml:"proxy_wallet"`
	RPCURL      string `yaml:"rpc_url"`

	// Exchange endpoints.
	ClobHTTPURL         string `yaml:"clob_http_url"`
	ClobWSURL           string `yaml:"clob_ws_url"`
	GammaURL            string `yaml:"gamma_url"`
	USDCContractAddress string `yaml:"usdc_contract_address"`

	// CLOB API credentials, derived once via setup-keys and stored
	// alongside the signing key. Builder attribution is optional.
	APIKey            string `yaml:"api_key"`
	APISecret         string `yaml:"api_secret"`
	APIPassphrase     string `yaml:"api_passphrase"`
	BuilderKey        string `yaml:"builder_key"`
	BuilderSecret     string `yaml:"builder_secret"`
	BuilderPassphrase string `yaml:"builder_passphrase"`

	// Leader wallets this copy engine mirrors. Unused by the arb engine.
	UserAddresses []string `yaml:"user_addresses"`

	// State store.
	MongoURI string `yaml:"mongo_uri"`

	FetchInterval     time.Duration `yaml:"fetch_interval"`
	TooOldTimestamp   time.Duration `yaml:"too_old_timestamp"`
	RetryLimit        int           `yaml:"retry_limit"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	NetworkRetryLimit int           `yaml:"network_retry_limit"`

	DryRun      bool   `yaml:"dry_run"`
	TradingMode string `yaml:"trading_mode"` // paper|live
	LogLevel    string `yaml:"log_level"`
	LogDir      string `yaml:"log_dir"` // empty disables the file sink, console-only

	Arb      ArbConfig      `yaml:"arb"`
	Copy     CopyConfig     `yaml:"copy"`
	Risk     RiskConfig     `yaml:"risk"`
	Telegram TelegramConfig `yaml:"telegram"`
	API      APIConfig      `yaml:"api"`
	Paper    PaperConfig    `yaml:"paper"`
}

// PaperConfig configures the simulated fill engine used in place of the
// live gateway when DryRun is set.
type PaperConfig struct {
	InitialBalanceUSDC float64 `yaml:"initial_balance_usdc"`
	FeeBps             float64 `yaml:"fee_bps"`
	SlippageBps        float64 `yaml:"slippage_bps"`
	AllowShort         bool    `yaml:"allow_short"`
}

// ArbConfig configures the arbitrage engine.
type ArbConfig struct {
	Coins              []string      `yaml:"coins"`
	ArbitrageThreshold float64       `yaml:"arbitrage_threshold"`
	TokenAmountUSDC     float64       `yaml:"token_amount_usd"`
	ScanInterval        time.Duration `yaml:"scan_interval"`
}

// CopyConfig configures the copy-trading engine's sizing strategy.
type CopyConfig struct {
	Strategy                string  `yaml:"strategy"` // percentage|fixed|adaptive
	CopySize                float64 `yaml:"copy_size"`
	MaxOrderSizeUSD         float64 `yaml:"max_order_size_usd"`
	MinOrderSizeUSD         float64 `yaml:"min_order_size_usd"`
	MaxPositionSizeUSD      float64 `yaml:"max_position_size_usd"`
	MaxDailyVolumeUSD       float64 `yaml:"max_daily_volume_usd"`
	TradeMultiplier         float64 `yaml:"trade_multiplier"`
	TieredMultipliers       string  `yaml:"tiered_multipliers"`
	AdaptiveMinPercent      float64 `yaml:"adaptive_min_percent"`
	AdaptiveMaxPercent      float64 `yaml:"adaptive_max_percent"`
	AdaptiveThresholdUSD    float64 `yaml:"adaptive_threshold_usd"`
	AggregationEnabled      bool    `yaml:"trade_aggregation_enabled"`
	AggregationWindowSecs   int     `yaml:"trade_aggregation_window_seconds"`
}

type RiskConfig struct {
	MaxOpenOrders           int           `yaml:"max_open_orders"`
	MaxDailyLossUSDC        float64       `yaml:"max_daily_loss_usdc"`
	MaxDailyLossPct         float64       `yaml:"max_daily_loss_pct"`
	AccountCapitalUSDC      float64       `yaml:"account_capital_usdc"`
	MaxPositionPerMarket    float64       `yaml:"max_position_per_market"`
	StopLossPerMarket       float64       `yaml:"stop_loss_per_market"`
	MaxDrawdownPct          float64       `yaml:"max_drawdown_pct"`
	RiskSyncInterval        time.Duration `yaml:"risk_sync_interval"`
	MaxConsecutiveLosses    int           `yaml:"max_consecutive_losses"`
	ConsecutiveLossCooldown time.Duration `yaml:"consecutive_loss_cooldown"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Default() Config {
	return Config{
		ClobHTTPURL: "https://clob.polymarket.com",
		ClobWSURL:   "wss://ws-subscriptions-clob.polymarket.com/ws/market",
		GammaURL:    "https://gamma-api.polymarket.com",
		RPCURL:      "https://polygon-rpc.com",

		FetchInterval:     5 * time.Second,
		TooOldTimestamp:   1 * time.Hour,
		RetryLimit:        3,
		RequestTimeout:    10 * time.Second,
		NetworkRetryLimit: 3,

		DryRun:      true,
		TradingMode: "paper",
		LogLevel:    "info",
		LogDir:      "logs",

		Arb: ArbConfig{
			Coins:              []string{"BTC", "ETH", "SOL", "XRP"},
			ArbitrageThreshold: 0.98,
			TokenAmountUSDC:     5.0,
			ScanInterval:        2 * time.Second,
		},
		Copy: CopyConfig{
			Strategy:              "percentage",
			CopySize:              100,
			MaxOrderSizeUSD:       50,
			MinOrderSizeUSD:       1,
			AdaptiveThresholdUSD:  500,
			AggregationEnabled:    true,
			AggregationWindowSecs: 300,
		},
		Risk: RiskConfig{
			MaxOpenOrders:           6,
			MaxDailyLossPct:         0.02,
			AccountCapitalUSDC:      1000,
			MaxPositionPerMarket:    50,
			StopLossPerMarket:       10,
			MaxDrawdownPct:          0.30,
			RiskSyncInterval:        30 * time.Second,
			MaxConsecutiveLosses:    3,
			ConsecutiveLossCooldown: 15 * time.Minute,
		},
		API: APIConfig{
			Addr: ":8090",
		},
		Paper: PaperConfig{
			InitialBalanceUSDC: 1000,
			FeeBps:             10,
			SlippageBps:        20,
			AllowShort:         true,
		},
	}
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config, taking
// precedence over any value loaded from a file.
func (c *Config) ApplyEnv() {
	str(&c.PrivateKey, "PRIVATE_KEY")
	str(&c.ProxyWallet, "PROXY_WALLET")
	str(&c.RPCURL, "RPC_URL")
	str(&c.ClobHTTPURL, "CLOB_HTTP_URL")
	str(&c.ClobWSURL, "CLOB_WS_URL")
	str(&c.GammaURL, "GAMMA_URL")
	str(&c.USDCContractAddress, "USDC_CONTRACT_ADDRESS")
	str(&c.MongoURI, "MONGO_URI")
	str(&c.LogLevel, "LOG_LEVEL")
	str(&c.LogDir, "LOG_DIR")

	str(&c.APIKey, "POLYMARKET_API_KEY")
	str(&c.APISecret, "POLYMARKET_API_SECRET")
	str(&c.APIPassphrase, "POLYMARKET_API_PASSPHRASE")
	str(&c.BuilderKey, "POLYMARKET_BUILDER_KEY")
	str(&c.BuilderSecret, "POLYMARKET_BUILDER_SECRET")
	str(&c.BuilderPassphrase, "POLYMARKET_BUILDER_PASSPHRASE")

	if v := strings.TrimSpace(os.Getenv("USER_ADDRESSES")); v != "" {
		c.UserAddresses = splitCSV(v)
	}

	durSeconds(&c.FetchInterval, "FETCH_INTERVAL")
	durHours(&c.TooOldTimestamp, "TOO_OLD_TIMESTAMP")
	intVal(&c.RetryLimit, "RETRY_LIMIT")
	durMillis(&c.RequestTimeout, "REQUEST_TIMEOUT_MS")
	intVal(&c.NetworkRetryLimit, "NETWORK_RETRY_LIMIT")

	if v := strings.TrimSpace(os.Getenv("COINS")); v != "" {
		c.Arb.Coins = splitCSV(v)
	}
	floatVal(&c.Arb.ArbitrageThreshold, "ARBITRAGE_THRESHOLD")
	floatVal(&c.Arb.TokenAmountUSDC, "TOKEN_AMOUNT")

	str(&c.Copy.Strategy, "COPY_STRATEGY")
	floatVal(&c.Copy.CopySize, "COPY_SIZE")
	floatVal(&c.Copy.MaxOrderSizeUSD, "MAX_ORDER_SIZE_USD")
	floatVal(&c.Copy.MinOrderSizeUSD, "MIN_ORDER_SIZE_USD")
	floatVal(&c.Copy.MaxPositionSizeUSD, "MAX_POSITION_SIZE_USD")
	floatVal(&c.Copy.MaxDailyVolumeUSD, "MAX_DAILY_VOLUME_USD")
	floatVal(&c.Copy.TradeMultiplier, "TRADE_MULTIPLIER")
	str(&c.Copy.TieredMultipliers, "TIERED_MULTIPLIERS")
	floatVal(&c.Copy.AdaptiveMinPercent, "ADAPTIVE_MIN_PERCENT")
	floatVal(&c.Copy.AdaptiveMaxPercent, "ADAPTIVE_MAX_PERCENT")
	floatVal(&c.Copy.AdaptiveThresholdUSD, "ADAPTIVE_THRESHOLD_USD")
	if v := strings.TrimSpace(os.Getenv("TRADE_AGGREGATION_ENABLED")); v != "" {
		c.Copy.AggregationEnabled = strings.EqualFold(v, "true") || v == "1"
	}
	intVal(&c.Copy.AggregationWindowSecs, "TRADE_AGGREGATION_WINDOW_SECONDS")

	if v := strings.TrimSpace(os.Getenv("TRADER_DRY_RUN")); v != "" {
		c.DryRun = strings.EqualFold(v, "true") || v == "1"
	}
	if v := strings.TrimSpace(os.Getenv("TRADING_MODE")); v != "" {
		c.TradingMode = strings.ToLower(v)
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		c.Telegram.BotToken = v
		c.Telegram.Enabled = true
	}
	str(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
}

func str(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func intVal(dst *int, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func floatVal(dst *float64, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func durSeconds(dst *time.Duration, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = time.Duration(f * float64(time.Second))
		}
	}
}

func durHours(dst *time.Duration, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = time.Duration(f * float64(time.Hour))
		}
	}
}

func durMillis(dst *time.Duration, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = time.Duration(f * float64(time.Millisecond))
		}
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
