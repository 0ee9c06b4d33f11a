package main

import (
	"context"
	"flag"
	"strings"
	"time"

	polymarket "github.com/GoPolymarket/polymarket-go-sdk"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"golang.org/x/sync/errgroup"

	"github.com/GoPolymarket/polymarket-trader/internal/activityfeed"
	"github.com/GoPolymarket/polymarket-trader/internal/api"
	"github.com/GoPolymarket/polymarket-trader/internal/config"
	"github.com/GoPolymarket/polymarket-trader/internal/copysizer"
	"github.com/GoPolymarket/polymarket-trader/internal/executor"
	"github.com/GoPolymarket/polymarket-trader/internal/gateway"
	"github.com/GoPolymarket/polymarket-trader/internal/leaderpositions"
	"github.com/GoPolymarket/polymarket-trader/internal/logging"
	"github.com/GoPolymarket/polymarket-trader/internal/marketfeed"
	"github.com/GoPolymarket/polymarket-trader/internal/notify"
	"github.com/GoPolymarket/polymarket-trader/internal/paper"
	"github.com/GoPolymarket/polymarket-trader/internal/portfolio"
	"github.com/GoPolymarket/polymarket-trader/internal/risk"
	"github.com/GoPolymarket/polymarket-trader/internal/store"
	"github.com/GoPolymarket/polymarket-trader/internal/supervisor"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, cfgErr := config.LoadFile(*cfgPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	log, err := logging.Setup("copybot", cfg.LogLevel, cfg.LogDir)
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
	if err := cfg.RequireLeaderWallets(); err != nil {
		log.Fatal().Err(err).Msg("missing leader wallets to copy")
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
	dataClient := sdkClient.Data

	ctx := context.Background()
	st, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("connect store")
	}

	sizer, err := copysizer.New(cfg.Copy)
	if err != nil {
		log.Fatal().Err(err).Msg("copy sizer config")
	}

	var gw executor.OrderPlacer = gateway.New(clobClient, signer)
	book := marketfeed.NewRESTBook(clobClient)
	tracker := portfolio.NewTracker(dataClient, signer.Address(), cfg.Risk.RiskSyncInterval)
	if cfg.DryRun {
		gw = paper.NewDryRunGateway(book, cfg.Paper)
		log.Info().Msg("dry run enabled: orders simulated against live books")
	}

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

	var aggregationWindow time.Duration
	if cfg.Copy.AggregationEnabled {
		aggregationWindow = time.Duration(cfg.Copy.AggregationWindowSecs) * time.Second
	}
	copyExec := executor.NewCopyExecutor(st, book, tracker, riskMgr, gw, notifier, sizer, cfg.UserAddresses, cfg.RetryLimit, aggregationWindow, log)

	feed := activityfeed.New(st, cfg.UserAddresses, cfg.TooOldTimestamp, log)
	positionPoller := leaderpositions.New(dataClient, st, cfg.UserAddresses, cfg.Risk.RiskSyncInterval, log)

	sup := supervisor.New(log)
	sup.RegisterCheck("store", supervisor.StoreCheck(st))
	sup.RegisterCheck("exchange_rest", supervisor.ExchangeRESTCheck(clobClient))
	sup.RegisterCheck("vault_balance", supervisor.VaultBalanceCheck(tracker))

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(api.Config{
			Addr:        cfg.API.Addr,
			DryRun:      cfg.DryRun,
			TradingMode: cfg.TradingMode,
			Assets:      cfg.UserAddresses,
		}, sup, tracker, fillRecorder, log)
	}

	if err := sup.RunChecks(ctx); err != nil {
		log.Fatal().Err(err).Msg("startup system check failed")
	}

	for _, leader := range cfg.UserAddresses {
		marked, err := st.MarkHistoricalProcessed(ctx, leader)
		if err != nil {
			log.Fatal().Err(err).Str("leader", leader).Msg("mark historical activity processed")
		}
		log.Info().Str("leader", leader).Int64("marked", marked).Msg("historical activity will not be replayed")
	}

	tasks := []func(context.Context) error{
		feed.Run,
		positionPoller.Run,
		tracker.Run,
		copyExec.Run,
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
		log.Fatal().Err(err).Msg("copybot exited with error")
	}
	if err := st.Close(context.Background()); err != nil {
		log.Warn().Err(err).Msg("store close")
	}
	log.Info().Float64("daily_pnl", riskMgr.DailyPnL()).Msg("session complete")
}
