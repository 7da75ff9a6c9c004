package catalog

import (
	"context"
	"fmt"

	"github.com/agromart/agromart/internal/shared"
)

// AuditPort abstracts audit logging for stock mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo  Repository
	audit AuditPort
}

// NewService constructs the Service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create adds a product to the owner's catalog.
func (s *Service) Create(ctx context.Context, req CreateProductRequest, ownerID int64) (*Product, error) {
	product := Product{
		Name:          req.Name,
		Category:      Category(req.Category),
		Brand:         req.Brand,
		Description:   req.Description,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		PackSize:      PackSize{Value: req.PackSizeValue, Unit: req.PackSizeUnit},
		StockQuantity: req.StockQuantity,
		MinimumStock:  req.MinimumStock,
		CropTypes:     req.CropTypes,
		CreatedBy:     ownerID,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// Get loads one product scoped to the owner.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (*Product, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List returns products matching the filters plus the total count.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

// Update applies partial changes to a product.
func (s *Service) Update(ctx context.Context, id, ownerID int64, req UpdateProductRequest) (*Product, error) {
	updated, err := s.repo.Update(ctx, id, ownerID, req)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// Deactivate soft-deletes a product.
func (s *Service) Deactivate(ctx context.Context, id, ownerID int64) error {
	return s.repo.Deactivate(ctx, id, ownerID)
}

// AdjustStock applies an add/subtract/set operation. The result is floored at
// zero; subtracting below zero leaves stock empty rather than negative.
func (s *Service) AdjustStock(ctx context.Context, id, ownerID int64, req AdjustStockRequest) (*Product, error) {
	product, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	newQty := product.StockQuantity
	switch StockOp(req.Operation) {
	case StockAdd:
		newQty += req.Quantity
	case StockSubtract:
		newQty -= req.Quantity
	case StockSet:
		newQty = req.Quantity
	default:
		return nil, fmt.Errorf("catalog: unknown stock operation %q", req.Operation)
	}
	if newQty < 0 {
		newQty = 0
	}

	updated, err := s.repo.SetStock(ctx, id, ownerID, newQty)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  ownerID,
			Action:   fmt.Sprintf("catalog:stock_%s", req.Operation),
			Entity:   "product",
			EntityID: fmt.Sprintf("%d", id),
			Meta: map[string]any{
				"operation": req.Operation,
				"quantity":  req.Quantity,
				"reason":    req.Reason,
				"old_stock": product.StockQuantity,
				"new_stock": newQty,
			},
		})
	}
	return updated, nil
}

// LowStock lists active products at or below their reorder threshold.
func (s *Service) LowStock(ctx context.Context, ownerID int64) ([]Product, error) {
	return s.repo.LowStock(ctx, ownerID)
}
