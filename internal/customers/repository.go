package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agromart/agromart/internal/platform/httpx"
)

// Repository defines persistence for customers.
type Repository interface {
	Create(ctx context.Context, c Customer) (*Customer, error)
	Get(ctx context.Context, id, ownerID int64) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Update(ctx context.Context, id, ownerID int64, req UpdateCustomerRequest) (*Customer, error)
	Deactivate(ctx context.Context, id, ownerID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `id, name, phone, email, address, business_type, customer_group,
	credit_limit, payment_terms_days, current_balance, total_purchases,
	last_purchase_date, is_active, notes, created_by, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
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

func (r *repository) Create(ctx context.Context, c Customer) (*Customer, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO customers (name, phone, email, address, business_type, customer_group,
			credit_limit, payment_terms_days, current_balance, total_purchases,
			is_active, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, TRUE, $9, $10, NOW(), NOW())
		RETURNING %s`, customerColumns),
		c.Name, c.Phone, c.Email, c.Address, c.BusinessType, c.CustomerGroup,
		c.CreditLimit, c.PaymentTermsDays, c.Notes, c.CreatedBy,
	)
	created, err := scanCustomer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: phone number already registered", httpx.ErrDuplicate)
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id, ownerID int64) (*Customer, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM customers WHERE id = $1 AND created_by = $2`, customerColumns),
		id, ownerID)
	return scanCustomer(row)
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	conditions := []string{"created_by = $1"}
	args := []any{req.OwnerID}
	argPos := 2

	if req.Group != nil {
		conditions = append(conditions, fmt.Sprintf("customer_group = $%d", argPos))
		args = append(args, *req.Group)
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		customerColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id, ownerID int64, req UpdateCustomerRequest) (*Customer, error) {
	query := "UPDATE customers SET updated_at = NOW()"
	var args []any
	argPos := 1

	appendSet := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, argPos)
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		appendSet("name", *req.Name)
	}
	if req.Phone != nil {
		appendSet("phone", *req.Phone)
	}
	if req.Email != nil {
		appendSet("email", *req.Email)
	}
	if req.Address != nil {
		appendSet("address", *req.Address)
	}
	if req.BusinessType != nil {
		appendSet("business_type", *req.BusinessType)
	}
	if req.CustomerGroup != nil {
		appendSet("customer_group", *req.CustomerGroup)
	}
	if req.CreditLimit != nil {
		appendSet("credit_limit", *req.CreditLimit)
	}
	if req.PaymentTermsDays != nil {
		appendSet("payment_terms_days", *req.PaymentTermsDays)
	}
	if req.Notes != nil {
		appendSet("notes", *req.Notes)
	}
	if req.IsActive != nil {
		appendSet("is_active", *req.IsActive)
	}

	query += fmt.Sprintf(" WHERE id = $%d AND created_by = $%d RETURNING %s", argPos, argPos+1, customerColumns)
	args = append(args, id, ownerID)

	updated, err := scanCustomer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: phone number already registered", httpx.ErrDuplicate)
		}
		return nil, err
	}
	return updated, nil
}

func (r *repository) Deactivate(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND created_by = $2`,
		id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer", httpx.ErrNotFound)
	}
	return nil
}
