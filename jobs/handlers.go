package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/ledger"
	"github.com/agromart/agromart/internal/observability"
	"github.com/agromart/agromart/internal/shared"
)

// Handlers carries the dependencies of the background task handlers.
type Handlers struct {
	Logger  *slog.Logger
	Pool    *pgxpool.Pool
	Ledger  *ledger.Service
	Catalog *catalog.Service
	Idem    *shared.IdempotencyStore
	Mailer  *Mailer
	Metrics *observability.Metrics
}

// Mux registers all task handlers.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOverdueScan, h.handleOverdueScan)
	mux.HandleFunc(TypeLowStockAlert, h.handleLowStockAlert)
	mux.HandleFunc(TypeIdempotencyCleanup, h.handleIdempotencyCleanup)
	return mux
}

func (h *Handlers) handleOverdueScan(ctx context.Context, _ *asynq.Task) error {
	n, err := h.Ledger.RescanOverdue(ctx)
	if h.Metrics != nil {
		h.Metrics.ObserveJob(TypeOverdueScan, err)
	}
	if err != nil {
		return err
	}
	h.Logger.Info("overdue scan finished", "flagged", n)
	return nil
}

type owner struct {
	ID    int64
	Name  string
	Email string
}

func (h *Handlers) handleLowStockAlert(ctx context.Context, _ *asynq.Task) (err error) {
	defer func() {
		if h.Metrics != nil {
			h.Metrics.ObserveJob(TypeLowStockAlert, err)
		}
	}()

	owners, err := h.listOwners(ctx)
	if err != nil {
		return err
	}
	for _, o := range owners {
		products, err := h.Catalog.LowStock(ctx, o.ID)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			continue
		}
		if sendErr := h.Mailer.Send(o.Email, "Low stock alert", lowStockBody(o.Name, products)); sendErr != nil {
			h.Logger.Warn("low stock mail failed", "owner_id", o.ID, "err", sendErr)
		}
	}
	return nil
}

func (h *Handlers) handleIdempotencyCleanup(ctx context.Context, _ *asynq.Task) error {
	err := h.Idem.Cleanup(ctx, 48*time.Hour)
	if h.Metrics != nil {
		h.Metrics.ObserveJob(TypeIdempotencyCleanup, err)
	}
	return err
}

func (h *Handlers) listOwners(ctx context.Context) ([]owner, error) {
	rows, err := h.Pool.Query(ctx, `SELECT id, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("jobs: list owners: %w", err)
	}
	defer rows.Close()

	var result []owner
	for rows.Next() {
		var o owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Email); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func lowStockBody(name string, products []catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThese products are at or below their reorder level:\n\n", name)
	for _, p := range products {
		fmt.Fprintf(&b, "  - %s: %d in stock (reorder at %d)\n", p.Name, p.StockQuantity, p.MinimumStock)
	}
	b.WriteString("\nRestock soon to avoid missed sales.\n")
	return b.String()
}
