package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// NewServer builds the asynq consumer.
func NewServer(redisAddr string, logger *slog.Logger) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 4,
			Queues:      map[string]int{"default": 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", slog.String("type", task.Type()), slog.Any("error", err))
			}),
		},
	)
}

// NewScheduler builds the cron scheduler with the recurring maintenance
// tasks: a nightly overdue rescan, a morning low-stock digest and an hourly
// idempotency key sweep.
func NewScheduler(redisAddr string, logger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: redisAddr}, &asynq.SchedulerOpts{})

	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{"0 2 * * *", NewOverdueScanTask()},
		{"0 6 * * *", NewLowStockAlertTask()},
		{"15 * * * *", NewIdempotencyCleanupTask()},
	}
	for _, e := range entries {
		if _, err := scheduler.Register(e.spec, e.task); err != nil {
			return nil, err
		}
		logger.Info("scheduled task", slog.String("type", e.task.Type()), slog.String("cron", e.spec))
	}
	return scheduler, nil
}
