package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/customers"
	"github.com/agromart/agromart/internal/platform/httpx"
)

// Rejection reasons surfaced to clients.
var (
	ErrInvalidCode      = fmt.Errorf("%w: invalid promotion code", httpx.ErrBusinessRule)
	ErrNotActive        = fmt.Errorf("%w: promotion is not active or has expired", httpx.ErrBusinessRule)
	ErrRequirements     = fmt.Errorf("%w: promotion requirements not met", httpx.ErrBusinessRule)
	ErrCustomerUsageCap = fmt.Errorf("%w: promotion usage limit reached for this customer", httpx.ErrBusinessRule)
)

// CustomerSource loads customers for group checks.
type CustomerSource interface {
	Get(ctx context.Context, id, ownerID int64) (*customers.Customer, error)
}

// ProductSource loads products for category and price lookups.
type ProductSource interface {
	Get(ctx context.Context, id, ownerID int64) (*catalog.Product, error)
}

// Service coordinates promotion operations.
type Service struct {
	repo     Repository
	custs    CustomerSource
	products ProductSource
	now      func() time.Time
}

// NewService constructs the Service.
func NewService(repo Repository, custs CustomerSource, products ProductSource) *Service {
	return &Service{repo: repo, custs: custs, products: products, now: time.Now}
}

// Create stores a new promotion. Codes are uppercased; buy_x_get_y requires
// both quantities and the date window must be ordered.
func (s *Service) Create(ctx context.Context, req CreatePromotionRequest, ownerID int64) (*Promotion, error) {
	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", httpx.ErrValidation)
	}
	promoType := Type(req.Type)
	if promoType == TypeBuyXGetY && (req.BuyQuantity <= 0 || req.GetQuantity <= 0) {
		return nil, fmt.Errorf("%w: buy_x_get_y requires buyQuantity and getQuantity", httpx.ErrValidation)
	}
	promotion := Promotion{
		Code:                     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:                     req.Name,
		Description:              req.Description,
		Type:                     promoType,
		Value:                    req.Value,
		BuyQuantity:              req.BuyQuantity,
		GetQuantity:              req.GetQuantity,
		MinOrderAmount:           req.MinOrderAmount,
		MinOrderQuantity:         req.MinOrderQuantity,
		MaxDiscountAmount:        req.MaxDiscountAmount,
		UsageLimit:               req.UsageLimit,
		UsageLimitPerCustomer:    req.UsageLimitPerCustomer,
		StartDate:                req.StartDate,
		EndDate:                  req.EndDate,
		ApplicableProducts:       req.ApplicableProducts,
		ApplicableCategories:     req.ApplicableCategories,
		ApplicableCustomerGroups: req.ApplicableCustomerGroups,
		ExcludeProducts:          req.ExcludeProducts,
		CreatedBy:                ownerID,
	}
	created, err := s.repo.Create(ctx, promotion)
	if err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return created, nil
}

// Get loads one promotion scoped to the owner.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (*Promotion, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List returns promotions matching the filters plus the total count.
func (s *Service) List(ctx context.Context, req ListPromotionsRequest) ([]Promotion, int, error) {
	return s.repo.List(ctx, req)
}

// Update applies partial changes to a promotion.
func (s *Service) Update(ctx context.Context, id, ownerID int64, req UpdatePromotionRequest) (*Promotion, error) {
	if req.StartDate != nil && req.EndDate != nil && !req.StartDate.Before(*req.EndDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", httpx.ErrValidation)
	}
	updated, err := s.repo.Update(ctx, id, ownerID, req)
	if err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	return updated, nil
}

// Deactivate disables a promotion.
func (s *Service) Deactivate(ctx context.Context, id, ownerID int64) error {
	return s.repo.Deactivate(ctx, id, ownerID)
}

// Validate quotes a discount for a cart without consuming usage.
func (s *Service) Validate(ctx context.Context, ownerID int64, req ValidateRequest) (*ValidationResult, error) {
	customer, err := s.custs.Get(ctx, req.CustomerID, ownerID)
	if err != nil {
		return nil, err
	}
	items, err := s.buildCart(ctx, ownerID, req.Items)
	if err != nil {
		return nil, err
	}

	promotion, discount, applicableAmount, err := s.Evaluate(ctx, ownerID, req.Code, customer, items)
	if err != nil {
		if errors.Is(err, httpx.ErrBusinessRule) {
			return &ValidationResult{Valid: false, Message: rejectionMessage(err)}, nil
		}
		return nil, err
	}

	return &ValidationResult{
		Valid: true,
		Promotion: &PromotionSummary{
			ID:    promotion.ID,
			Name:  promotion.Name,
			Code:  promotion.Code,
			Type:  promotion.Type,
			Value: promotion.Value,
		},
		DiscountAmount:   discount,
		ApplicableAmount: applicableAmount,
		Message:          "Promotion applied",
	}, nil
}

// Evaluate runs the full validation pipeline and returns the promotion with
// its computed discount. Checkout calls this so the client-supplied discount
// is never trusted.
func (s *Service) Evaluate(ctx context.Context, ownerID int64, code string, customer *customers.Customer, items []CartItem) (*Promotion, float64, float64, error) {
	promotion, err := s.repo.GetByCode(ctx, code, ownerID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, 0, 0, ErrInvalidCode
		}
		return nil, 0, 0, err
	}

	if !promotion.IsValid(s.now()) {
		return nil, 0, 0, ErrNotActive
	}

	orderAmount := 0.0
	orderQuantity := 0
	for _, item := range items {
		orderAmount += item.TotalPrice
		orderQuantity += item.Quantity
	}
	if !promotion.CanUse(orderAmount, orderQuantity, string(customer.CustomerGroup)) {
		return nil, 0, 0, ErrRequirements
	}

	if promotion.UsageLimitPerCustomer != nil {
		used, err := s.repo.CountCustomerUsage(ctx, ownerID, customer.ID, promotion.Code)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("count promotion usage: %w", err)
		}
		if used >= *promotion.UsageLimitPerCustomer {
			return nil, 0, 0, ErrCustomerUsageCap
		}
	}

	applicable := promotion.ApplicableItems(items)
	applicableAmount := 0.0
	for _, item := range applicable {
		applicableAmount += item.TotalPrice
	}
	discount := promotion.CapDiscount(promotion.Discount(applicable))

	return promotion, discount, applicableAmount, nil
}

// RecordUsage increments the promotion's usage counter. Order confirmation
// calls this once per confirmed order carrying a code.
func (s *Service) RecordUsage(ctx context.Context, ownerID int64, code string) error {
	promotion, err := s.repo.GetByCode(ctx, code, ownerID)
	if err != nil {
		return err
	}
	return s.repo.IncrementUsage(ctx, promotion.ID)
}

// BuildCart resolves products and prices for order lines.
func (s *Service) BuildCart(ctx context.Context, ownerID int64, items []ValidateItem) ([]CartItem, error) {
	return s.buildCart(ctx, ownerID, items)
}

func (s *Service) buildCart(ctx context.Context, ownerID int64, items []ValidateItem) ([]CartItem, error) {
	cart := make([]CartItem, 0, len(items))
	for _, item := range items {
		product, err := s.products.Get(ctx, item.ProductID, ownerID)
		if err != nil {
			return nil, err
		}
		cart = append(cart, CartItem{
			ProductID:  product.ID,
			Category:   string(product.Category),
			Quantity:   item.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: product.Price * float64(item.Quantity),
		})
	}
	return cart, nil
}

func rejectionMessage(err error) string {
	msg := err.Error()
	if cut, ok := strings.CutPrefix(msg, httpx.ErrBusinessRule.Error()+": "); ok {
		return cut
	}
	return msg
}
