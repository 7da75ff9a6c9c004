package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Summary is the storefront snapshot shown on the landing page.
type Summary struct {
	TodaySales        float64 `json:"todaySales"`
	TodayOrders       int     `json:"todayOrders"`
	MonthSales        float64 `json:"monthSales"`
	MonthOrders       int     `json:"monthOrders"`
	OutstandingCredit float64 `json:"outstandingCredit"`
	OverdueCustomers  int     `json:"overdueCustomers"`
	OverdueAmount     float64 `json:"overdueAmount"`
	LowStockProducts  int     `json:"lowStockProducts"`
	ActiveCustomers   int     `json:"activeCustomers"`
}

// TopCustomer ranks customers by lifetime purchases.
type TopCustomer struct {
	CustomerID     int64   `json:"customerId"`
	Name           string  `json:"name"`
	TotalPurchases float64 `json:"totalPurchases"`
	CurrentBalance float64 `json:"currentBalance"`
}

// CategorySales aggregates sold quantity and revenue per product category.
type CategorySales struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// Repository runs the dashboard aggregate queries.
type Repository interface {
	Summary(ctx context.Context, ownerID int64, now time.Time) (*Summary, error)
	TopCustomers(ctx context.Context, ownerID int64, limit int) ([]TopCustomer, error)
	SalesByCategory(ctx context.Context, ownerID int64, since time.Time) ([]CategorySales, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed dashboard repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Summary(ctx context.Context, ownerID int64, now time.Time) (*Summary, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE created_at >= $2), 0),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COALESCE(SUM(total_amount) FILTER (WHERE created_at >= $3), 0),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM orders
		WHERE created_by = $1 AND status <> 'Cancelled'`,
		ownerID, dayStart, monthStart,
	).Scan(&s.TodaySales, &s.TodayOrders, &s.MonthSales, &s.MonthOrders)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(current_balance), 0), COUNT(*) FILTER (WHERE is_active)
		FROM customers
		WHERE created_by = $1`,
		ownerID,
	).Scan(&s.OutstandingCredit, &s.ActiveCustomers)
	if err != nil {
		return nil, err
	}

	// Gross overdue exposure: sums charge amounts, not net balances.
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT customer_id), COALESCE(SUM(amount), 0)
		FROM customer_ledger
		WHERE created_by = $1 AND is_overdue = TRUE AND paid_date IS NULL`,
		ownerID,
	).Scan(&s.OverdueCustomers, &s.OverdueAmount)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM products
		WHERE created_by = $1 AND is_active AND stock_quantity <= minimum_stock`,
		ownerID,
	).Scan(&s.LowStockProducts)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) TopCustomers(ctx context.Context, ownerID int64, limit int) ([]TopCustomer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, total_purchases, current_balance
		FROM customers
		WHERE created_by = $1 AND is_active
		ORDER BY total_purchases DESC
		LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TopCustomer
	for rows.Next() {
		var c TopCustomer
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.TotalPurchases, &c.CurrentBalance); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) SalesByCategory(ctx context.Context, ownerID int64, since time.Time) ([]CategorySales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.category, COALESCE(SUM(i.quantity), 0), COALESCE(SUM(i.total_price), 0)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE o.created_by = $1 AND o.status <> 'Cancelled' AND o.created_at >= $2
		GROUP BY p.category
		ORDER BY SUM(i.total_price) DESC`,
		ownerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategorySales
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Category, &c.Quantity, &c.Amount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
