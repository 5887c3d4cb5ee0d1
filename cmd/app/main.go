package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-signal-subscription/internal/config"
	pg "trading-signal-subscription/internal/infra/db/postgres"
	"trading-signal-subscription/internal/infra/logging"
	"trading-signal-subscription/internal/infra/metrics"
	red "trading-signal-subscription/internal/infra/redis"
	"trading-signal-subscription/internal/infra/sched"
	"trading-signal-subscription/internal/infra/web"
	"trading-signal-subscription/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed config checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional: rate limiting and the sweep lock degrade without it) ----
	var (
		limiter *red.RateLimiter
		locker  red.Locker
	)
	if cfg.Redis.Addr != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		limiter = red.NewRateLimiter(redisClient)
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis.addr not set; rate limiting and sweep locking disabled")
	}

	// ---- Repositories ----
	accountRepo := pg.NewAccountRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	claimRepo := pg.NewClaimRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(subRepo, txm, logger)
	payUC := usecase.NewPaymentUseCase(claimRepo, subUC, txm, logger)
	accountUC := usecase.NewAccountUseCase(accountRepo, subRepo, txm, logger)
	statsUC := usecase.NewStatsUseCase(accountRepo, subRepo, claimRepo, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.Secret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.TTL)
	srv := web.NewServer(accountUC, subUC, payUC, statsUC, auth, limiter, cfg.RateLimit, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Expiration sweep ----
	worker := sched.NewSweepWorker(cfg.Sweep.Interval, cfg.Sweep.LockTTL, subUC, locker, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
