package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

// AuditPort abstracts audit logging for ledger postings.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards replayed payment submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service posts ledger transactions. Every write locks the customer row
// first, so concurrent postings against one account serialize and the
// running balance stays consistent.
type Service struct {
	store Store
	audit AuditPort
	idem  IdempotencyPort
	log   *slog.Logger
	now   func() time.Time
}

// NewService constructs the Service.
func NewService(store Store, audit AuditPort, idem IdempotencyPort, log *slog.Logger) *Service {
	return &Service{store: store, audit: audit, idem: idem, log: log, now: time.Now}
}

var errInactiveCustomer = fmt.Errorf("%w: customer account is inactive", httpx.ErrBusinessRule)

// RecordPayment posts a payment and allocates it across the customer's
// unpaid orders. With an explicit order ID the payment goes to that order
// only; otherwise allocation is oldest order first. The running balance is
// clamped at zero.
func (s *Service) RecordPayment(ctx context.Context, ownerID int64, req PaymentRequest, idemKey string) (*PaymentResult, error) {
	if idemKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "ledger"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, fmt.Errorf("%w: payment already recorded", httpx.ErrDuplicate)
			}
			return nil, err
		}
	}

	result, err := s.recordPayment(ctx, ownerID, req)
	if err != nil {
		if idemKey != "" && s.idem != nil {
			if delErr := s.idem.Delete(ctx, idemKey); delErr != nil {
				s.log.Warn("release idempotency key", "key", idemKey, "err", delErr)
			}
		}
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  ownerID,
			Action:   "ledger:payment",
			Entity:   "customer",
			EntityID: fmt.Sprintf("%d", req.CustomerID),
			Meta: map[string]any{
				"amount":  req.Amount,
				"method":  req.PaymentMethod,
				"balance": result.Balance,
			},
		})
	}
	return result, nil
}

func (s *Service) recordPayment(ctx context.Context, ownerID int64, req PaymentRequest) (*PaymentResult, error) {
	var result PaymentResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		account, err := tx.LockCustomer(ctx, req.CustomerID, ownerID)
		if err != nil {
			return err
		}
		current, err := tx.LatestBalance(ctx, account.ID)
		if err != nil {
			return err
		}

		now := s.now()
		description := fmt.Sprintf("Payment received via %s", req.PaymentMethod)
		entry, newBalance, err := NewPaymentEntry(account.ID, current, req.Amount,
			req.PaymentMethod, req.Reference, description, now)
		if err != nil {
			return err
		}
		entry.Notes = req.Notes

		var allocations []Allocation
		if req.OrderID != nil {
			order, err := tx.OpenOrder(ctx, *req.OrderID, ownerID)
			if err != nil {
				return err
			}
			allocations = AllocatePayment([]OpenOrder{*order}, req.Amount)
			entry.OrderID = req.OrderID
		} else {
			open, err := tx.OpenOrders(ctx, account.ID, ownerID)
			if err != nil {
				return err
			}
			allocations = AllocatePayment(open, req.Amount)
		}
		for _, alloc := range allocations {
			if err := tx.ApplyAllocation(ctx, alloc); err != nil {
				return err
			}
		}

		inserted, err := tx.InsertEntry(ctx, entry, ownerID)
		if err != nil {
			return err
		}
		if err := tx.SetCustomerBalance(ctx, account.ID, newBalance); err != nil {
			return err
		}

		result = PaymentResult{Entry: inserted, Balance: newBalance, Allocations: allocations}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	s.log.Info("payment recorded",
		"customer_id", req.CustomerID, "amount", req.Amount, "balance", result.Balance)
	return &result, nil
}

// RecordCreditSale posts a credit sale for goods taken on account. The sale
// is rejected when it would push the balance past the customer's credit
// limit; a zero limit means unlimited.
func (s *Service) RecordCreditSale(ctx context.Context, ownerID int64, req CreditSaleRequest) (*EntryResult, error) {
	var inserted *Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		account, err := tx.LockCustomer(ctx, req.CustomerID, ownerID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return errInactiveCustomer
		}
		current, err := tx.LatestBalance(ctx, account.ID)
		if err != nil {
			return err
		}

		entry, newBalance, err := NewCreditSaleEntry(account, current, req.Amount,
			req.OrderID, req.DueDate, req.Description, s.now())
		if err != nil {
			return err
		}
		entry.Notes = req.Notes

		inserted, err = tx.InsertEntry(ctx, entry, ownerID)
		if err != nil {
			return err
		}
		return tx.SetCustomerBalance(ctx, account.ID, newBalance)
	})
	if err != nil {
		return nil, fmt.Errorf("record credit sale: %w", err)
	}
	s.log.Info("credit sale recorded",
		"customer_id", req.CustomerID, "amount", req.Amount, "balance", inserted.Balance)
	return &EntryResult{Entry: inserted, Balance: inserted.Balance}, nil
}

// RecordAdjustment posts a manual correction, interest or penalty entry. The
// amount may be negative to reduce the balance; the result never goes below
// zero.
func (s *Service) RecordAdjustment(ctx context.Context, ownerID int64, req AdjustmentRequest) (*Entry, error) {
	if req.Amount == 0 {
		return nil, fmt.Errorf("%w: adjustment amount must be non-zero", httpx.ErrValidation)
	}
	var inserted *Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		account, err := tx.LockCustomer(ctx, req.CustomerID, ownerID)
		if err != nil {
			return err
		}
		current, err := tx.LatestBalance(ctx, account.ID)
		if err != nil {
			return err
		}

		newBalance := current + req.Amount
		if newBalance < 0 {
			newBalance = 0
		}
		entry := Entry{
			CustomerID:  account.ID,
			Type:        TransactionType(req.Type),
			Amount:      req.Amount,
			Balance:     newBalance,
			Description: req.Description,
			Notes:       req.Notes,
			CreatedAt:   s.now(),
		}
		inserted, err = tx.InsertEntry(ctx, entry, ownerID)
		if err != nil {
			return err
		}
		return tx.SetCustomerBalance(ctx, account.ID, newBalance)
	})
	if err != nil {
		return nil, fmt.Errorf("record adjustment: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  ownerID,
			Action:   fmt.Sprintf("ledger:%s", req.Type),
			Entity:   "customer",
			EntityID: fmt.Sprintf("%d", req.CustomerID),
			Meta: map[string]any{
				"amount":  req.Amount,
				"balance": inserted.Balance,
				"reason":  req.Description,
			},
		})
	}
	return inserted, nil
}

// Account returns the customer's balance summary.
func (s *Service) Account(ctx context.Context, customerID, ownerID int64) (*AccountSummary, error) {
	return s.store.AccountSummary(ctx, customerID, ownerID)
}

// ListEntries returns a page of a customer's ledger history, newest first.
func (s *Service) ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, int, error) {
	return s.store.ListEntries(ctx, req)
}

// Overdue lists customers with overdue credit entries. Totals sum the gross
// charge amounts of the overdue entries.
func (s *Service) Overdue(ctx context.Context, ownerID int64) ([]OverdueCustomer, error) {
	return s.store.OverdueCustomers(ctx, ownerID)
}

// RescanOverdue flags credit sales whose due date has passed. Runs nightly
// from the worker.
func (s *Service) RescanOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.MarkOverdueEntries(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("rescan overdue: %w", err)
	}
	if n > 0 {
		s.log.Info("overdue entries flagged", "count", n)
	}
	return n, nil
}
