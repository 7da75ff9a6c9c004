package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agromart/agromart/internal/platform/db"
	"github.com/agromart/agromart/internal/platform/httpx"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed ledger store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

const entryColumns = `id, customer_id, order_id, transaction_type, amount, balance, description,
	payment_method, reference, due_date, paid_date, is_overdue, notes, created_by, created_at`

const entryColumnsAliased = `l.id, l.customer_id, l.order_id, l.transaction_type, l.amount,
	l.balance, l.description, l.payment_method, l.reference, l.due_date, l.paid_date,
	l.is_overdue, l.notes, l.created_by, l.created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.CustomerID, &e.OrderID, &e.Type, &e.Amount, &e.Balance,
		&e.Description, &e.PaymentMethod, &e.Reference, &e.DueDate, &e.PaidDate,
		&e.IsOverdue, &e.Notes, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: ledger entry", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, int, error) {
	conditions := []string{"l.created_by = $1", "l.customer_id = $2"}
	args := []any{req.OwnerID, req.CustomerID}
	argPos := 3

	if req.Type != "" {
		conditions = append(conditions, fmt.Sprintf("l.transaction_type = $%d", argPos))
		args = append(args, req.Type)
		argPos++
	}
	if req.From != nil {
		conditions = append(conditions, fmt.Sprintf("l.created_at >= $%d", argPos))
		args = append(args, *req.From)
		argPos++
	}
	if req.To != nil {
		conditions = append(conditions, fmt.Sprintf("l.created_at <= $%d", argPos))
		args = append(args, *req.To)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customer_ledger l %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM customer_ledger l %s
		ORDER BY l.created_at DESC, l.id DESC LIMIT $%d OFFSET $%d`,
		entryColumnsAliased, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *e)
	}
	return result, total, rows.Err()
}

func (r *repository) AccountSummary(ctx context.Context, customerID, ownerID int64) (*AccountSummary, error) {
	var s AccountSummary
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.current_balance, c.credit_limit,
			(SELECT MAX(l.created_at) FROM customer_ledger l WHERE l.customer_id = c.id)
		FROM customers c
		WHERE c.id = $1 AND c.created_by = $2`,
		customerID, ownerID,
	).Scan(&s.CustomerID, &s.CustomerName, &s.Balance, &s.CreditLimit, &s.LastEntryAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer", httpx.ErrNotFound)
		}
		return nil, err
	}
	if s.CreditLimit > 0 {
		s.Available = s.CreditLimit - s.Balance
		if s.Available < 0 {
			s.Available = 0
		}
	}
	return &s, nil
}

func (r *repository) OverdueCustomers(ctx context.Context, ownerID int64) ([]OverdueCustomer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, SUM(l.amount), MIN(l.due_date), COUNT(*)
		FROM customer_ledger l
		JOIN customers c ON c.id = l.customer_id
		WHERE l.created_by = $1 AND l.transaction_type = 'credit_sale'
		  AND l.is_overdue = TRUE AND l.paid_date IS NULL
		GROUP BY c.id, c.name
		ORDER BY MIN(l.due_date) ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OverdueCustomer
	for rows.Next() {
		var o OverdueCustomer
		if err := rows.Scan(&o.CustomerID, &o.CustomerName, &o.TotalOverdue, &o.OldestDueDate, &o.EntryCount); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *repository) MarkOverdueEntries(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customer_ledger
		SET is_overdue = TRUE
		WHERE transaction_type = 'credit_sale'
		  AND due_date IS NOT NULL AND due_date < $1
		  AND paid_date IS NULL AND is_overdue = FALSE`,
		now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type txStore struct {
	tx pgx.Tx
}

func (s *txStore) LockCustomer(ctx context.Context, customerID, ownerID int64) (*CustomerAccount, error) {
	var a CustomerAccount
	err := s.tx.QueryRow(ctx, `
		SELECT id, name, credit_limit, payment_terms_days, is_active
		FROM customers
		WHERE id = $1 AND created_by = $2
		FOR UPDATE`,
		customerID, ownerID,
	).Scan(&a.ID, &a.Name, &a.CreditLimit, &a.PaymentTermsDays, &a.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

func (s *txStore) LatestBalance(ctx context.Context, customerID int64) (float64, error) {
	var balance float64
	err := s.tx.QueryRow(ctx, `
		SELECT balance FROM customer_ledger
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		customerID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (s *txStore) InsertEntry(ctx context.Context, entry Entry, ownerID int64) (*Entry, error) {
	row := s.tx.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO customer_ledger (customer_id, order_id, transaction_type, amount, balance,
			description, payment_method, reference, due_date, paid_date, is_overdue, notes,
			created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING %s`, entryColumns),
		entry.CustomerID, entry.OrderID, entry.Type, entry.Amount, entry.Balance,
		entry.Description, entry.PaymentMethod, entry.Reference, entry.DueDate,
		entry.PaidDate, entry.IsOverdue, entry.Notes, ownerID,
	)
	return scanEntry(row)
}

func (s *txStore) SetCustomerBalance(ctx context.Context, customerID int64, balance float64) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE customers SET current_balance = $1, updated_at = NOW() WHERE id = $2`,
		balance, customerID)
	return err
}

const openOrderColumns = `id, order_number, total_amount, paid_amount,
	total_amount - paid_amount, payment_status, created_at`

func (s *txStore) OpenOrders(ctx context.Context, customerID, ownerID int64) ([]OpenOrder, error) {
	rows, err := s.tx.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE customer_id = $1 AND created_by = $2
		  AND status <> 'Cancelled' AND paid_amount < total_amount
		  AND payment_status IN ('Pending', 'Partially Paid')
		ORDER BY created_at ASC, id ASC
		FOR UPDATE`, openOrderColumns),
		customerID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OpenOrder
	for rows.Next() {
		var o OpenOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.TotalAmount, &o.PaidAmount,
			&o.RemainingAmount, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *txStore) OpenOrder(ctx context.Context, orderID, ownerID int64) (*OpenOrder, error) {
	var o OpenOrder
	err := s.tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE id = $1 AND created_by = $2 AND status <> 'Cancelled'
		FOR UPDATE`, openOrderColumns),
		orderID, ownerID,
	).Scan(&o.ID, &o.OrderNumber, &o.TotalAmount, &o.PaidAmount,
		&o.RemainingAmount, &o.PaymentStatus, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

func (s *txStore) ApplyAllocation(ctx context.Context, alloc Allocation) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE orders SET paid_amount = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3`,
		alloc.NewPaidAmount, alloc.NewStatus, alloc.OrderID)
	return err
}
