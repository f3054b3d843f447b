package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/HLomotey/homa-suite-sub003/internal/app"
	"github.com/HLomotey/homa-suite-sub003/internal/billing"
	platformcache "github.com/HLomotey/homa-suite-sub003/internal/platform/cache"
	platformdb "github.com/HLomotey/homa-suite-sub003/internal/platform/db"
	"github.com/HLomotey/homa-suite-sub003/internal/shared"
	"github.com/HLomotey/homa-suite-sub003/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

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

	billingRepo := billing.NewRepository(pool)
	directoryReader := billing.NewDirectoryReader(pool)
	billingService := billing.NewService(billingRepo, directoryReader, logger, billing.Options{
		Location: cfg.BillingLocation(),
		DefaultRates: map[billing.ChargeType]decimal.Decimal{
			billing.ChargeHousing:         cfg.Rate(cfg.HousingRate),
			billing.ChargeTransportation:  cfg.Rate(cfg.TransportRate),
			billing.ChargeSecurityDeposit: cfg.Rate(cfg.SecurityDepositAmount),
			billing.ChargeBusCard:         cfg.Rate(cfg.BusCardAmount),
		},
		BusCardInstallments: cfg.BusCardInstallments,
		Auditor:             shared.NewAuditLogger(pool),
	})

	generateJob := jobs.NewBillingGenerateJob(billingService, summaries, redisClient, logger, nil)

	monthlyTask, err := jobs.NewBillingGenerateTask(jobs.BillingGeneratePayload{})
	if err != nil {
		logger.Error("build monthly task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBillingGenerate, Handler: generateJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// 02:00 UTC on the first of every month.
			{Spec: "0 2 1 * *", Task: monthlyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting billing worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
