package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agromart/agromart/internal/platform/httpx"
)

// Repository defines persistence for products.
type Repository interface {
	Create(ctx context.Context, p Product) (*Product, error)
	Get(ctx context.Context, id, ownerID int64) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Update(ctx context.Context, id, ownerID int64, req UpdateProductRequest) (*Product, error)
	Deactivate(ctx context.Context, id, ownerID int64) error
	SetStock(ctx context.Context, id, ownerID int64, quantity int) (*Product, error)
	LowStock(ctx context.Context, ownerID int64) ([]Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, category, brand, description, price, cost_price,
	pack_size_value, pack_size_unit, stock_quantity, minimum_stock, crop_types,
	is_active, created_by, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Brand, &p.Description, &p.Price, &p.CostPrice,
		&p.PackSize.Value, &p.PackSize.Unit, &p.StockQuantity, &p.MinimumStock,
		&p.CropTypes, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO products (name, category, brand, description, price, cost_price,
			pack_size_value, pack_size_unit, stock_quantity, minimum_stock, crop_types,
			is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, NOW(), NOW())
		RETURNING %s`, productColumns),
		p.Name, p.Category, p.Brand, p.Description, p.Price, p.CostPrice,
		p.PackSize.Value, p.PackSize.Unit, p.StockQuantity, p.MinimumStock,
		p.CropTypes, p.CreatedBy,
	)
	return scanProduct(row)
}

func (r *repository) Get(ctx context.Context, id, ownerID int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM products WHERE id = $1 AND created_by = $2`, productColumns),
		id, ownerID)
	return scanProduct(row)
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	conditions := []string{"created_by = $1"}
	args := []any{req.OwnerID}
	argPos := 2

	if req.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *req.Category)
		argPos++
	}
	if req.CropType != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(crop_types)", argPos))
		args = append(args, *req.CropType)
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.LowStock {
		conditions = append(conditions, "stock_quantity <= minimum_stock")
	}
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR brand ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	return result, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id, ownerID int64, req UpdateProductRequest) (*Product, error) {
	query := "UPDATE products SET updated_at = NOW()"
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
	if req.Category != nil {
		appendSet("category", *req.Category)
	}
	if req.Brand != nil {
		appendSet("brand", *req.Brand)
	}
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.Price != nil {
		appendSet("price", *req.Price)
	}
	if req.CostPrice != nil {
		appendSet("cost_price", *req.CostPrice)
	}
	if req.PackSizeValue != nil {
		appendSet("pack_size_value", *req.PackSizeValue)
	}
	if req.PackSizeUnit != nil {
		appendSet("pack_size_unit", *req.PackSizeUnit)
	}
	if req.MinimumStock != nil {
		appendSet("minimum_stock", *req.MinimumStock)
	}
	if req.CropTypes != nil {
		appendSet("crop_types", req.CropTypes)
	}
	if req.IsActive != nil {
		appendSet("is_active", *req.IsActive)
	}

	query += fmt.Sprintf(" WHERE id = $%d AND created_by = $%d RETURNING %s", argPos, argPos+1, productColumns)
	args = append(args, id, ownerID)

	return scanProduct(r.pool.QueryRow(ctx, query, args...))
}

func (r *repository) Deactivate(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND created_by = $2`,
		id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) SetStock(ctx context.Context, id, ownerID int64, quantity int) (*Product, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE products SET stock_quantity = $1, updated_at = NOW()
		WHERE id = $2 AND created_by = $3
		RETURNING %s`, productColumns),
		quantity, id, ownerID)
	return scanProduct(row)
}

func (r *repository) LowStock(ctx context.Context, ownerID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM products
		WHERE created_by = $1 AND is_active AND stock_quantity <= minimum_stock
		ORDER BY stock_quantity ASC`, productColumns), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}
