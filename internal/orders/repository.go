package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/customers"
	"github.com/agromart/agromart/internal/ledger"
	"github.com/agromart/agromart/internal/platform/db"
	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed orders store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

const orderColumns = `o.id, o.order_number, o.invoice_number, o.customer_id, c.name,
	o.subtotal, o.tax_amount, o.discount_amount, o.total_amount, o.paid_amount,
	o.promotion_code, o.payment_method, o.payment_status, o.status, o.notes,
	o.created_by, o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.InvoiceNumber, &o.CustomerID, &o.CustomerName,
		&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount, &o.PaidAmount,
		&o.PromotionCode, &o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order", httpx.ErrNotFound)
		}
		return nil, err
	}
	o.RemainingAmount = o.TotalAmount - o.PaidAmount
	if o.RemainingAmount < 0 {
		o.RemainingAmount = 0
	}
	return &o, nil
}

func loadItems(ctx context.Context, q db.Querier, orderIDs []int64) (map[int64][]Item, error) {
	if len(orderIDs) == 0 {
		return map[int64][]Item{}, nil
	}
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC`,
		orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := map[int64][]Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id, ownerID int64) (*Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1 AND o.created_by = $2`, orderColumns),
		id, ownerID))
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, r.pool, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	conditions := []string{"o.created_by = $1"}
	args := []any{req.OwnerID}
	argPos := 2

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("o.payment_status = $%d", argPos))
		args = append(args, *req.PaymentStatus)
		argPos++
	}
	if req.From != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argPos))
		args = append(args, *req.From)
		argPos++
	}
	if req.To != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argPos))
		args = append(args, *req.To)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM orders o
		JOIN customers c ON c.id = o.customer_id
		%s ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Order
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, total, nil
}

type txStore struct {
	tx pgx.Tx
}

func (s *txStore) LockCustomer(ctx context.Context, customerID, ownerID int64) (*customers.Customer, error) {
	var c customers.Customer
	err := s.tx.QueryRow(ctx, `
		SELECT id, name, phone, email, address, business_type, customer_group,
			credit_limit, payment_terms_days, current_balance, total_purchases,
			last_purchase_date, is_active, notes, created_by, created_at, updated_at
		FROM customers
		WHERE id = $1 AND created_by = $2
		FOR UPDATE`,
		customerID, ownerID,
	).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.BusinessType,
		&c.CustomerGroup, &c.CreditLimit, &c.PaymentTermsDays, &c.CurrentBalance,
		&c.TotalPurchases, &c.LastPurchaseDate, &c.IsActive, &c.Notes,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (s *txStore) LockProduct(ctx context.Context, productID, ownerID int64) (*catalog.Product, error) {
	var p catalog.Product
	err := s.tx.QueryRow(ctx, `
		SELECT id, name, category, brand, description, price, cost_price,
			pack_size_value, pack_size_unit, stock_quantity, minimum_stock,
			crop_types, is_active, created_by, created_at, updated_at
		FROM products
		WHERE id = $1 AND created_by = $2
		FOR UPDATE`,
		productID, ownerID,
	).Scan(
		&p.ID, &p.Name, &p.Category, &p.Brand, &p.Description, &p.Price,
		&p.CostPrice, &p.PackSize.Value, &p.PackSize.Unit, &p.StockQuantity,
		&p.MinimumStock, &p.CropTypes, &p.IsActive, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *txStore) AdjustStock(ctx context.Context, productID int64, delta int) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity + $1, 0), updated_at = NOW()
		WHERE id = $2`,
		delta, productID)
	return err
}

func (s *txStore) NextDocNumber(ctx context.Context, ownerID int64, kind string) (string, error) {
	return shared.NextDocumentNumber(ctx, s.tx, ownerID, kind)
}

func (s *txStore) InsertOrder(ctx context.Context, order Order) (*Order, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, subtotal, tax_amount, discount_amount,
			total_amount, paid_amount, promotion_code, payment_method, payment_status,
			status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id`,
		order.OrderNumber, order.CustomerID, order.Subtotal, order.TaxAmount,
		order.DiscountAmount, order.TotalAmount, order.PaidAmount, order.PromotionCode,
		order.PaymentMethod, order.PaymentStatus, order.Status, order.Notes, order.CreatedBy,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = id
		err := s.tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			id, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice,
		).Scan(&item.ID)
		if err != nil {
			return nil, err
		}
	}

	inserted, err := scanOrder(s.tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1`, orderColumns), id))
	if err != nil {
		return nil, err
	}
	inserted.Items = order.Items
	return inserted, nil
}

func (s *txStore) GetForUpdate(ctx context.Context, id, ownerID int64) (*Order, error) {
	order, err := scanOrder(s.tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1 AND o.created_by = $2
		FOR UPDATE OF o`, orderColumns),
		id, ownerID))
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, s.tx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (s *txStore) SetStatus(ctx context.Context, id int64, status *Status, payStatus *PaymentStatus) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []any
	argPos := 1
	if status != nil {
		query += fmt.Sprintf(", status = $%d", argPos)
		args = append(args, *status)
		argPos++
	}
	if payStatus != nil {
		query += fmt.Sprintf(", payment_status = $%d", argPos)
		args = append(args, *payStatus)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := s.tx.Exec(ctx, query, args...)
	return err
}

func (s *txStore) SetInvoiceNumber(ctx context.Context, id int64, invoiceNumber string) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE orders SET invoice_number = $1, updated_at = NOW() WHERE id = $2`,
		invoiceNumber, id)
	return err
}

func (s *txStore) BumpCustomerPurchases(ctx context.Context, customerID int64, amount float64) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE customers
		SET total_purchases = total_purchases + $1, last_purchase_date = NOW(), updated_at = NOW()
		WHERE id = $2`,
		amount, customerID)
	return err
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

func (s *txStore) InsertLedgerEntry(ctx context.Context, entry ledger.Entry, ownerID int64) (*ledger.Entry, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `
		INSERT INTO customer_ledger (customer_id, order_id, transaction_type, amount, balance,
			description, payment_method, reference, due_date, paid_date, is_overdue, notes,
			created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id`,
		entry.CustomerID, entry.OrderID, entry.Type, entry.Amount, entry.Balance,
		entry.Description, entry.PaymentMethod, entry.Reference, entry.DueDate,
		entry.PaidDate, entry.IsOverdue, entry.Notes, ownerID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	entry.CreatedBy = ownerID
	return &entry, nil
}

func (s *txStore) SetCustomerBalance(ctx context.Context, customerID int64, balance float64) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE customers SET current_balance = $1, updated_at = NOW() WHERE id = $2`,
		balance, customerID)
	return err
}
