package main

import (
	"context"
	"flag"
	"strings"

	polymarket "github.com/GoPolymarket/polymarket-go-sdk"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"golang.org/x/sync/errgroup"

	"github.com/GoPolymarket/polymarket-trader/internal/api"
	"github.com/GoPolymarket/polymarket-trader/internal/arbloop"
	"github.com/GoPolymarket/polymarket-trader/internal/config"
	"github.com/GoPolymarket/polymarket-trader/internal/detector"
	"github.com/GoPolymarket/polymarket-trader/internal/discovery"
	"github.com/GoPolymarket/polymarket-trader/internal/executor"
	"github.com/GoPolymarket/polymarket-trader/internal/gateway"
	"github.com/GoPolymarket/polymarket-trader/internal/logging"
	"github.com/GoPolymarket/polymarket-trader/internal/marketfeed"
	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/notify"
	"github.com/GoPolymarket/polymarket-trader/internal/paper"
	"github.com/GoPolymarket/polymarket-trader/internal/risk"
	"github.com/GoPolymarket/polymarket-trader/internal/supervisor"
)

// multiFeed fans a paper.BookSource lookup out across one marketfeed.Client
// per coin, since the arb engine keeps a separate websocket subscription
// per coin rather than one feed covering every asset.
type multiFeed []*marketfeed.Client

func (m multiFeed) Snapshot(_ context.Context, assetID string) (model.OrderbookSnapshot, bool, error) {
	for _, feed := range m {
		if snap, ok := feed.Snapshot(assetID); ok {
			return snap, true, nil
		}
	}
	return model.OrderbookSnapshot{}, false, nil
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, cfgErr := config.LoadFile(*cfgPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	log, err := logging.Setup("arbbot", cfg.LogLevel, cfg.LogDir)
	if err != nil {
		panic(err)
	}
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("config file not found, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.RequireWalletCredentials(); err != nil {
		log.Fatal().Err(err).Msg("missing wallet credentials")
	}

	signer, err := auth.NewPrivateKeySigner(strings.TrimSpace(cfg.PrivateKey), 137)
	if err != nil {
		log.Fatal().Err(err).Msg("signer")
	}
	apiKey := &auth.APIKey{
		Key:        strings.TrimSpace(cfg.APIKey),
		Secret:     strings.TrimSpace(cfg.APISecret),
		Passphrase: strings.TrimSpace(cfg.APIPassphrase),
	}

	sdkClient := polymarket.NewClient()
	clobClient := sdkClient.CLOB.WithAuth(signer, apiKey)
	if cfg.BuilderKey != "" && cfg.BuilderSecret != "" {
		clobClient = clobClient.WithBuilderConfig(&auth.BuilderConfig{
			Local: &auth.BuilderCredentials{
				Key:        strings.TrimSpace(cfg.BuilderKey),
				Secret:     strings.TrimSpace(cfg.BuilderSecret),
				Passphrase: strings.TrimSpace(cfg.BuilderPassphrase),
			},
		})
		log.Info().Msg("builder attribution enabled")
	}

	var gw executor.OrderPlacer = gateway.New(clobClient, signer)
	riskMgr := risk.New(risk.Config{
		MaxOpenOrders:           cfg.Risk.MaxOpenOrders,
		MaxDailyLossUSDC:        cfg.Risk.MaxDailyLossUSDC,
		MaxDailyLossPct:         cfg.Risk.MaxDailyLossPct,
		AccountCapitalUSDC:      cfg.Risk.AccountCapitalUSDC,
		MaxPositionPerMarket:    cfg.Risk.MaxPositionPerMarket,
		StopLossPerMarket:       cfg.Risk.StopLossPerMarket,
		MaxDrawdownPct:          cfg.Risk.MaxDrawdownPct,
		RiskSyncInterval:        cfg.Risk.RiskSyncInterval,
		MaxConsecutiveLosses:    cfg.Risk.MaxConsecutiveLosses,
		ConsecutiveLossCooldown: cfg.Risk.ConsecutiveLossCooldown,
	})

	fillRecorder := notify.NewRecorder()
	notifier := notify.NewFanout(
		notify.NewConsoleNotifier(log),
		notify.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID),
		fillRecorder,
	)

	discoveryClient := discovery.New(cfg.GammaURL)

	var coins []model.Coin
	var feeds []*marketfeed.Client
	for _, raw := range cfg.Arb.Coins {
		coins = append(coins, model.Coin(strings.ToUpper(raw)))
		feeds = append(feeds, marketfeed.New(sdkClient.CLOBWS.Authenticate(signer, apiKey), log))
	}

	if cfg.DryRun {
		gw = paper.NewDryRunGateway(multiFeed(feeds), cfg.Paper)
		log.Info().Msg("dry run enabled: orders simulated against live books")
	}
	exec := executor.NewArbExecutor(gw, riskMgr, notifier, cfg.Arb.TokenAmountUSDC, log)

	var scanners []*arbloop.Scanner
	for i, coin := range coins {
		det := detector.New(cfg.Arb.ArbitrageThreshold)
		scanners = append(scanners, arbloop.NewScanner(coin, discoveryClient, feeds[i], det, exec, cfg.Arb.ScanInterval, log))
	}

	sup := supervisor.New(log)
	sup.RegisterCheck("exchange_rest", supervisor.ExchangeRESTCheck(clobClient))

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(api.Config{
			Addr:        cfg.API.Addr,
			DryRun:      cfg.DryRun,
			TradingMode: cfg.TradingMode,
		}, sup, nil, fillRecorder, log)
	}

	ctx := context.Background()
	if err := sup.RunChecks(ctx); err != nil {
		log.Fatal().Err(err).Msg("startup system check failed")
	}

	tasks := []func(context.Context) error{}
	for _, s := range scanners {
		s := s
		tasks = append(tasks, s.Run)
	}
	if apiServer != nil {
		tasks = append(tasks, func(ctx context.Context) error {
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return apiServer.Start(gctx) })
			g.Go(func() error {
				<-gctx.Done()
				return apiServer.Shutdown(context.Background())
			})
			return g.Wait()
		})
	}

	if err := sup.Run(ctx, tasks...); err != nil {
		log.Fatal().Err(err).Msg("arbbot exited with error")
	}
	log.Info().Float64("daily_pnl", riskMgr.DailyPnL()).Msg("session complete")
}
