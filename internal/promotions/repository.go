package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agromart/agromart/internal/platform/httpx"
)

// Repository defines persistence for promotions.
type Repository interface {
	Create(ctx context.Context, p Promotion) (*Promotion, error)
	Get(ctx context.Context, id, ownerID int64) (*Promotion, error)
	GetByCode(ctx context.Context, code string, ownerID int64) (*Promotion, error)
	List(ctx context.Context, req ListPromotionsRequest) ([]Promotion, int, error)
	Update(ctx context.Context, id, ownerID int64, req UpdatePromotionRequest) (*Promotion, error)
	Deactivate(ctx context.Context, id, ownerID int64) error
	IncrementUsage(ctx context.Context, id int64) error
	CountCustomerUsage(ctx context.Context, ownerID, customerID int64, code string) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const promotionColumns = `id, code, name, description, type, value, buy_quantity, get_quantity,
	min_order_amount, min_order_quantity, max_discount_amount, usage_limit, usage_count,
	usage_limit_per_customer, start_date, end_date, applicable_products, applicable_categories,
	applicable_customer_groups, exclude_products, is_active, created_by, created_at, updated_at`

func scanPromotion(row pgx.Row) (*Promotion, error) {
	var p Promotion
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.Type, &p.Value,
		&p.BuyQuantity, &p.GetQuantity, &p.MinOrderAmount, &p.MinOrderQuantity,
		&p.MaxDiscountAmount, &p.UsageLimit, &p.UsageCount, &p.UsageLimitPerCustomer,
		&p.StartDate, &p.EndDate, &p.ApplicableProducts, &p.ApplicableCategories,
		&p.ApplicableCustomerGroups, &p.ExcludeProducts, &p.IsActive,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: promotion", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Promotion) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO promotions (code, name, description, type, value, buy_quantity, get_quantity,
			min_order_amount, min_order_quantity, max_discount_amount, usage_limit, usage_count,
			usage_limit_per_customer, start_date, end_date, applicable_products, applicable_categories,
			applicable_customer_groups, exclude_products, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13, $14, $15, $16, $17, $18, TRUE, $19, NOW(), NOW())
		RETURNING %s`, promotionColumns),
		p.Code, p.Name, p.Description, p.Type, p.Value, p.BuyQuantity, p.GetQuantity,
		p.MinOrderAmount, p.MinOrderQuantity, p.MaxDiscountAmount, p.UsageLimit,
		p.UsageLimitPerCustomer, p.StartDate, p.EndDate, p.ApplicableProducts,
		p.ApplicableCategories, p.ApplicableCustomerGroups, p.ExcludeProducts, p.CreatedBy,
	)
	created, err := scanPromotion(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: promotion code already exists", httpx.ErrDuplicate)
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id, ownerID int64) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM promotions WHERE id = $1 AND created_by = $2`, promotionColumns),
		id, ownerID)
	return scanPromotion(row)
}

func (r *repository) GetByCode(ctx context.Context, code string, ownerID int64) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM promotions WHERE code = $1 AND created_by = $2`, promotionColumns),
		strings.ToUpper(code), ownerID)
	return scanPromotion(row)
}

func (r *repository) List(ctx context.Context, req ListPromotionsRequest) ([]Promotion, int, error) {
	conditions := []string{"created_by = $1"}
	args := []any{req.OwnerID}
	argPos := 2

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.ActiveOnly {
		conditions = append(conditions, "is_active AND start_date <= NOW() AND end_date >= NOW()")
		conditions = append(conditions, "(usage_limit IS NULL OR usage_count < usage_limit)")
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM promotions %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM promotions %s ORDER BY end_date ASC LIMIT $%d OFFSET $%d`,
		promotionColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	return result, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id, ownerID int64, req UpdatePromotionRequest) (*Promotion, error) {
	query := "UPDATE promotions SET updated_at = NOW()"
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
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.Value != nil {
		appendSet("value", *req.Value)
	}
	if req.MinOrderAmount != nil {
		appendSet("min_order_amount", *req.MinOrderAmount)
	}
	if req.MinOrderQuantity != nil {
		appendSet("min_order_quantity", *req.MinOrderQuantity)
	}
	if req.MaxDiscountAmount != nil {
		appendSet("max_discount_amount", *req.MaxDiscountAmount)
	}
	if req.UsageLimit != nil {
		appendSet("usage_limit", *req.UsageLimit)
	}
	if req.UsageLimitPerCustomer != nil {
		appendSet("usage_limit_per_customer", *req.UsageLimitPerCustomer)
	}
	if req.StartDate != nil {
		appendSet("start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		appendSet("end_date", *req.EndDate)
	}
	if req.ApplicableProducts != nil {
		appendSet("applicable_products", req.ApplicableProducts)
	}
	if req.ApplicableCategories != nil {
		appendSet("applicable_categories", req.ApplicableCategories)
	}
	if req.ApplicableCustomerGroups != nil {
		appendSet("applicable_customer_groups", req.ApplicableCustomerGroups)
	}
	if req.ExcludeProducts != nil {
		appendSet("exclude_products", req.ExcludeProducts)
	}
	if req.IsActive != nil {
		appendSet("is_active", *req.IsActive)
	}

	query += fmt.Sprintf(" WHERE id = $%d AND created_by = $%d RETURNING %s", argPos, argPos+1, promotionColumns)
	args = append(args, id, ownerID)

	return scanPromotion(r.pool.QueryRow(ctx, query, args...))
}

func (r *repository) Deactivate(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promotions SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND created_by = $2`,
		id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: promotion", httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) IncrementUsage(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE promotions SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// CountCustomerUsage counts the customer's non-cancelled orders carrying the
// promotion code.
func (r *repository) CountCustomerUsage(ctx context.Context, ownerID, customerID int64, code string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE created_by = $1 AND customer_id = $2 AND promotion_code = $3
		  AND status <> 'Cancelled'`,
		ownerID, customerID, strings.ToUpper(code)).Scan(&count)
	return count, err
}
