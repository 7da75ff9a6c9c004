package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agromart/agromart/internal/customers"
	"github.com/agromart/agromart/internal/ledger"
	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/promotions"
	"github.com/agromart/agromart/internal/shared"
)

// PromotionPort re-validates promotion codes at checkout and records usage on
// confirmation. The client's discount figure is never trusted; the server
// recomputes it from the cart.
type PromotionPort interface {
	Evaluate(ctx context.Context, ownerID int64, code string, customer *customers.Customer, items []promotions.CartItem) (*promotions.Promotion, float64, float64, error)
	RecordUsage(ctx context.Context, ownerID int64, code string) error
}

// LedgerPort records payments against orders.
type LedgerPort interface {
	RecordPayment(ctx context.Context, ownerID int64, req ledger.PaymentRequest, idemKey string) (*ledger.PaymentResult, error)
}

// AuditPort abstracts audit logging for order mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates checkout. Order creation runs in a single transaction:
// customer and product rows are locked, stock is decremented, the order
// number comes from the atomic sequence and a credit checkout posts its
// ledger entry before commit. Any rejection rolls the whole checkout back.
type Service struct {
	store  Store
	promos PromotionPort
	ledger LedgerPort
	audit  AuditPort
	log    *slog.Logger
	now    func() time.Time
}

// NewService constructs the Service.
func NewService(store Store, promos PromotionPort, ledgerSvc LedgerPort, audit AuditPort, log *slog.Logger) *Service {
	return &Service{store: store, promos: promos, ledger: ledgerSvc, audit: audit, log: log, now: time.Now}
}

var (
	errInactiveCustomer = fmt.Errorf("%w: customer account is inactive", httpx.ErrBusinessRule)
	errNotCancellable   = fmt.Errorf("%w: only pending or confirmed orders can be cancelled", httpx.ErrBusinessRule)
	errNotPending       = fmt.Errorf("%w: only pending orders can be confirmed", httpx.ErrBusinessRule)
	errOrderCancelled   = fmt.Errorf("%w: order is cancelled", httpx.ErrBusinessRule)
)

// ErrInsufficientStock rejects checkouts that exceed available stock.
var ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", httpx.ErrBusinessRule)

// Create places an order.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateOrderRequest) (*Order, error) {
	var created *Order
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		customer, err := tx.LockCustomer(ctx, req.CustomerID, ownerID)
		if err != nil {
			return err
		}
		if !customer.IsActive {
			return errInactiveCustomer
		}

		var (
			items    []Item
			cart     []promotions.CartItem
			subtotal float64
		)
		for _, line := range req.Items {
			product, err := tx.LockProduct(ctx, line.ProductID, ownerID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return fmt.Errorf("%w: product %q", httpx.ErrNotFound, product.Name)
			}
			if product.StockQuantity < line.Quantity {
				return fmt.Errorf("%w for %q: %d available, %d requested",
					ErrInsufficientStock, product.Name, product.StockQuantity, line.Quantity)
			}
			lineTotal := product.Price * float64(line.Quantity)
			subtotal += lineTotal
			items = append(items, Item{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				TotalPrice:  lineTotal,
			})
			cart = append(cart, promotions.CartItem{
				ProductID:  product.ID,
				Category:   string(product.Category),
				Quantity:   line.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: lineTotal,
			})
		}

		var discount float64
		var promoCode *string
		if req.PromotionCode != nil && *req.PromotionCode != "" {
			promo, d, _, err := s.promos.Evaluate(ctx, ownerID, *req.PromotionCode, customer, cart)
			if err != nil {
				return err
			}
			discount = d
			// Persist the canonical code so usage counts match regardless of
			// the casing the client submitted.
			promoCode = &promo.Code
		}

		total := subtotal + req.TaxAmount - discount
		if total < 0 {
			total = 0
		}

		orderNumber, err := tx.NextDocNumber(ctx, ownerID, shared.SeqOrder)
		if err != nil {
			return err
		}

		created, err = tx.InsertOrder(ctx, Order{
			OrderNumber:    orderNumber,
			CustomerID:     customer.ID,
			Items:          items,
			Subtotal:       subtotal,
			TaxAmount:      req.TaxAmount,
			DiscountAmount: discount,
			TotalAmount:    total,
			PromotionCode:  promoCode,
			PaymentMethod:  req.PaymentMethod,
			PaymentStatus:  PayPending,
			Status:         StatusPending,
			Notes:          req.Notes,
			CreatedBy:      ownerID,
		})
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := tx.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		if req.PaymentMethod == "credit" && total > 0 {
			current, err := tx.LatestBalance(ctx, customer.ID)
			if err != nil {
				return err
			}
			account := &ledger.CustomerAccount{
				ID:               customer.ID,
				Name:             customer.Name,
				CreditLimit:      customer.CreditLimit,
				PaymentTermsDays: customer.PaymentTermsDays,
				IsActive:         customer.IsActive,
			}
			entry, newBalance, err := ledger.NewCreditSaleEntry(account, current, total,
				&created.ID, nil, fmt.Sprintf("Credit sale %s", orderNumber), s.now())
			if err != nil {
				return err
			}
			if _, err := tx.InsertLedgerEntry(ctx, entry, ownerID); err != nil {
				return err
			}
			if err := tx.SetCustomerBalance(ctx, customer.ID, newBalance); err != nil {
				return err
			}
		}

		return tx.BumpCustomerPurchases(ctx, customer.ID, total)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created", "order_number", created.OrderNumber,
		"customer_id", created.CustomerID, "total", created.TotalAmount)
	return created, nil
}

// Get loads one order with its items.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (*Order, error) {
	return s.store.Get(ctx, id, ownerID)
}

// List returns orders matching the filters plus the total count.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.store.List(ctx, req)
}

// Confirm moves a pending order to Confirmed and assigns its invoice number.
// Promotion usage is counted here, not at creation, so abandoned pending
// orders never consume a usage slot.
func (s *Service) Confirm(ctx context.Context, id, ownerID int64) (*Order, error) {
	var confirmed *Order
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		order, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if order.Status != StatusPending {
			return errNotPending
		}

		invoiceNumber, err := tx.NextDocNumber(ctx, ownerID, shared.SeqInvoice)
		if err != nil {
			return err
		}
		if err := tx.SetInvoiceNumber(ctx, id, invoiceNumber); err != nil {
			return err
		}
		status := StatusConfirmed
		if err := tx.SetStatus(ctx, id, &status, nil); err != nil {
			return err
		}

		order.InvoiceNumber = &invoiceNumber
		order.Status = status
		confirmed = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm order: %w", err)
	}

	if confirmed.PromotionCode != nil && *confirmed.PromotionCode != "" {
		if err := s.promos.RecordUsage(ctx, ownerID, *confirmed.PromotionCode); err != nil {
			s.log.Warn("record promotion usage", "code", *confirmed.PromotionCode, "err", err)
		}
	}
	s.log.Info("order confirmed", "order_number", confirmed.OrderNumber,
		"invoice_number", *confirmed.InvoiceNumber)
	return confirmed, nil
}

// Cancel cancels a pending or confirmed order and restores the stock it
// decremented. Cancelled is terminal.
func (s *Service) Cancel(ctx context.Context, id, ownerID int64) (*Order, error) {
	var cancelled *Order
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		order, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if !order.CanCancel() {
			return errNotCancellable
		}

		for _, item := range order.Items {
			if err := tx.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		status := StatusCancelled
		if err := tx.SetStatus(ctx, id, &status, nil); err != nil {
			return err
		}

		order.Status = status
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  ownerID,
			Action:   "orders:cancel",
			Entity:   "order",
			EntityID: cancelled.OrderNumber,
			Meta:     map[string]any{"total": cancelled.TotalAmount},
		})
	}
	s.log.Info("order cancelled", "order_number", cancelled.OrderNumber)
	return cancelled, nil
}

// UpdateStatus sets order or payment status. Transitions are free apart from
// enum membership; Cancelled is excluded and only reachable through Cancel.
func (s *Service) UpdateStatus(ctx context.Context, id, ownerID int64, req UpdateStatusRequest) (*Order, error) {
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, fmt.Errorf("%w: no status change requested", httpx.ErrValidation)
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		order, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if order.Status == StatusCancelled {
			return errOrderCancelled
		}

		var status *Status
		if req.Status != nil {
			st := Status(*req.Status)
			if !ValidStatus(st) || st == StatusCancelled {
				return fmt.Errorf("%w: invalid order status %q", httpx.ErrValidation, *req.Status)
			}
			status = &st
		}
		var payStatus *PaymentStatus
		if req.PaymentStatus != nil {
			ps := PaymentStatus(*req.PaymentStatus)
			if !ValidPaymentStatus(ps) {
				return fmt.Errorf("%w: invalid payment status %q", httpx.ErrValidation, *req.PaymentStatus)
			}
			payStatus = &ps
		}
		return tx.SetStatus(ctx, id, status, payStatus)
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return s.store.Get(ctx, id, ownerID)
}

// RecordPayment records a payment applied to this order only, delegating to
// the ledger engine.
func (s *Service) RecordPayment(ctx context.Context, id, ownerID int64, req OrderPaymentRequest, idemKey string) (*ledger.PaymentResult, error) {
	order, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusCancelled {
		return nil, fmt.Errorf("record order payment: %w", errOrderCancelled)
	}
	return s.ledger.RecordPayment(ctx, ownerID, ledger.PaymentRequest{
		CustomerID:    order.CustomerID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		OrderID:       &order.ID,
	}, idemKey)
}
