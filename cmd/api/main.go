package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multichain-settlement/config"
	"multichain-settlement/internal/adapter/chain"
	"multichain-settlement/internal/adapter/events"
	httpHandler "multichain-settlement/internal/adapter/http/handler"
	"multichain-settlement/internal/adapter/relayer"
	"multichain-settlement/internal/adapter/scheduler"
	pgStorage "multichain-settlement/internal/adapter/storage/postgres"
	redisStorage "multichain-settlement/internal/adapter/storage/redis"
	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/internal/service"
	"multichain-settlement/pkg/create2"
	"multichain-settlement/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("relayer_env", cfg.Relayer.Environment).
		Int("chains", len(cfg.Chains)).
		Msg("Starting multichain settlement")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Chain RPC and relayer
	forwarder := common.HexToAddress(cfg.Forwarder.Address)
	nonceReader, err := chain.Dial(ctx, forwarder, cfg.Chains, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to chain RPC")
	}
	defer nonceReader.Close()

	relayerClient, err := relayer.NewClient(cfg.Relayer, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize relayer client")
	}

	// Terminal payment events
	var publisher ports.EventPublisher = events.NewLogPublisher(log)
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer nc.Drain() //nolint:errcheck
		publisher = events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix, log)
	}

	deriver, err := create2.NewDeriver(
		common.HexToAddress(cfg.Factory.Address),
		common.HexToHash(cfg.Factory.InitCodeHash),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize account deriver")
	}

	// Initialize repositories
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	signingKeyRepo := pgStorage.NewSigningKeyRepo(pool)
	smartAccountRepo := pgStorage.NewSmartAccountRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	pollLock := redisStorage.NewPollLock(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	keySvc := service.NewKeyService(signingKeyRepo, encSvc)
	accountSvc := service.NewSmartAccountService(smartAccountRepo, keySvc, deriver, log)
	allocSvc := service.NewAllocationService()

	sched := scheduler.New(log)

	confirmSvc := service.NewConfirmationService(
		paymentRepo,
		relayerClient,
		pollLock,
		sched,
		publisher,
		service.ConfirmationConfig{
			Interval:    cfg.Polling.Interval,
			MaxAttempts: cfg.Polling.MaxAttempts,
			LockTTL:     cfg.Polling.LockTTL,
		},
		log,
	)
	bundleSvc := service.NewBundleService(
		accountSvc,
		keySvc,
		nonceReader,
		relayerClient,
		confirmSvc,
		paymentRepo,
		publisher,
		service.BundleConfig{
			Forwarder:   forwarder,
			Name:        cfg.Forwarder.Name,
			Version:     cfg.Forwarder.Version,
			Gas:         cfg.Forwarder.Gas,
			DeadlineTTL: cfg.Forwarder.DeadlineTTL,
		},
		log,
	)
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		merchantRepo,
		balanceRepo,
		idempotencyRepo,
		idempotencyCache,
		transactor,
		accountSvc,
		allocSvc,
		bundleSvc,
		confirmSvc,
		sched,
		service.PaymentConfig{
			Chains:            chainsFromConfig(cfg.Chains),
			Forwarder:         forwarder,
			ForwarderName:     cfg.Forwarder.Name,
			ForwarderVersion:  cfg.Forwarder.Version,
			PrepaidFeePercent: cfg.Loans.PrepaidFeePercent,
			BuildGrace:        cfg.Polling.BuildGrace,
			CashOutSlippage:   cfg.CashOut.SlippageBps,
		},
		log,
	)

	// Pick up payments a previous process left in flight
	recovered, err := paymentSvc.RecoverInFlight(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to recover in-flight payments")
	}
	log.Info().Int("payments", recovered).Msg("In-flight payments recovered")

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PaymentSvc:     paymentSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// Unfinished polls are resumed from the database on next start.
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Scheduler did not drain")
	}

	log.Info().Msg("Server exited")
}

func chainsFromConfig(cfgs []config.ChainConfig) []domain.Chain {
	chains := make([]domain.Chain, len(cfgs))
	for i, c := range cfgs {
		chains[i] = domain.Chain{
			ID:         c.ID,
			Stablecoin: common.HexToAddress(c.Stablecoin),
			Terminal:   common.HexToAddress(c.Terminal),

			StablecoinDecimals: c.Decimals(),
		}
		if c.Loans != "" {
			chains[i].Loans = common.HexToAddress(c.Loans)
		}
	}
	return chains
}
