package jobs

import (
	"github.com/hibiken/asynq"
)

// Task type names, also used as metric labels.
const (
	TypeOverdueScan        = "ledger:overdue_scan"
	TypeLowStockAlert      = "catalog:low_stock_alert"
	TypeIdempotencyCleanup = "shared:idempotency_cleanup"
)

// NewOverdueScanTask flags credit sales past their due date.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TypeOverdueScan, nil)
}

// NewLowStockAlertTask emails owners whose products hit the reorder level.
func NewLowStockAlertTask() *asynq.Task {
	return asynq.NewTask(TypeLowStockAlert, nil)
}

// NewIdempotencyCleanupTask prunes processed request keys.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeIdempotencyCleanup, nil)
}
