package customers

import (
	"context"
	"fmt"
	"strings"
)

// Service coordinates customer operations.
type Service struct {
	repo Repository
}

// NewService constructs the Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new customer for the owner.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, ownerID int64) (*Customer, error) {
	group := CustomerGroup(req.CustomerGroup)
	if group == "" {
		group = GroupNew
	}
	if !ValidGroup(group) {
		return nil, fmt.Errorf("customers: unknown group %q", group)
	}
	customer := Customer{
		Name:             strings.TrimSpace(req.Name),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            req.Email,
		Address:          req.Address,
		BusinessType:     req.BusinessType,
		CustomerGroup:    group,
		CreditLimit:      req.CreditLimit,
		PaymentTermsDays: req.PaymentTermsDays,
		Notes:            req.Notes,
		CreatedBy:        ownerID,
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// Get loads one customer scoped to the owner.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (*Customer, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List returns customers matching the filters plus the total count.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, req)
}

// Update applies partial changes to a customer.
func (s *Service) Update(ctx context.Context, id, ownerID int64, req UpdateCustomerRequest) (*Customer, error) {
	updated, err := s.repo.Update(ctx, id, ownerID, req)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

// Deactivate soft-deletes a customer; history and ledger entries remain.
func (s *Service) Deactivate(ctx context.Context, id, ownerID int64) error {
	return s.repo.Deactivate(ctx, id, ownerID)
}
