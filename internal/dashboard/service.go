package dashboard

import (
	"context"
	"time"
)

// Service serves dashboard aggregates.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summary returns today's and this month's trading snapshot.
func (s *Service) Summary(ctx context.Context, ownerID int64) (*Summary, error) {
	return s.repo.Summary(ctx, ownerID, s.now())
}

// TopCustomers ranks customers by lifetime purchases.
func (s *Service) TopCustomers(ctx context.Context, ownerID int64, limit int) ([]TopCustomer, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.TopCustomers(ctx, ownerID, limit)
}

// SalesByCategory aggregates the last 30 days of sales per category.
func (s *Service) SalesByCategory(ctx context.Context, ownerID int64) ([]CategorySales, error) {
	return s.repo.SalesByCategory(ctx, ownerID, s.now().AddDate(0, 0, -30))
}
