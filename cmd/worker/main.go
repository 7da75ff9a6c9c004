package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/agromart/agromart/internal/app"
	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/ledger"
	"github.com/agromart/agromart/internal/observability"
	"github.com/agromart/agromart/internal/platform/db"
	"github.com/agromart/agromart/internal/shared"
	"github.com/agromart/agromart/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolConfig{
		MaxConns:        cfg.PGMaxConns,
		MaxConnLifetime: cfg.PGConnLifetime,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	audit := shared.NewAuditLogger(pool)
	idem := shared.NewIdempotencyStore(pool)

	handlers := &jobs.Handlers{
		Logger:  logger,
		Pool:    pool,
		Ledger:  ledger.NewService(ledger.NewRepository(pool), audit, idem, logger),
		Catalog: catalog.NewService(catalog.NewRepository(pool), audit),
		Idem:    idem,
		Mailer:  jobs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom),
		Metrics: observability.NewMetrics(),
	}

	server := jobs.NewServer(cfg.RedisAddr, logger)
	scheduler, err := jobs.NewScheduler(cfg.RedisAddr, logger)
	if err != nil {
		logger.Error("build scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("worker starting")
		return server.Run(handlers.Mux())
	})
	group.Go(func() error {
		logger.Info("scheduler starting")
		return scheduler.Run()
	})
	group.Go(func() error {
		<-ctx.Done()
		scheduler.Shutdown()
		server.Shutdown()
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}
