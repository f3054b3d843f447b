package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HLomotey/homa-suite-sub003/internal/app"
	"github.com/HLomotey/homa-suite-sub003/internal/billing"
	"github.com/HLomotey/homa-suite-sub003/internal/directory"
	"github.com/HLomotey/homa-suite-sub003/internal/observability"
	platformcache "github.com/HLomotey/homa-suite-sub003/internal/platform/cache"
	platformdb "github.com/HLomotey/homa-suite-sub003/internal/platform/db"
	"github.com/HLomotey/homa-suite-sub003/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	pool, err := platformdb.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var summaries *billing.SummaryCache
	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, run summaries disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		summaries = billing.NewSummaryCache(redisClient, cfg.SummaryCacheTTL)
	}

	loc := cfg.BillingLocation()

	billingRepo := billing.NewRepository(pool)
	directoryReader := billing.NewDirectoryReader(pool)
	billingService := billing.NewService(billingRepo, directoryReader, logger, billing.Options{
		Location: loc,
		DefaultRates: map[billing.ChargeType]decimal.Decimal{
			billing.ChargeHousing:         cfg.Rate(cfg.HousingRate),
			billing.ChargeTransportation:  cfg.Rate(cfg.TransportRate),
			billing.ChargeSecurityDeposit: cfg.Rate(cfg.SecurityDepositAmount),
			billing.ChargeBusCard:         cfg.Rate(cfg.BusCardAmount),
		},
		BusCardInstallments: cfg.BusCardInstallments,
		Auditor:             shared.NewAuditLogger(pool),
		Metrics:             metrics,
	})
	billingHandler := billing.NewHandler(logger, billingService, shared.NewIdempotencyStore(pool), summaries)

	directoryRepo := directory.NewRepository(pool)
	directoryService := directory.NewService(directoryRepo)
	directoryHandler := directory.NewHandler(logger, directoryService, loc)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		BillingHandler:   billingHandler,
		DirectoryHandler: directoryHandler,
		Pool:             pool,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
