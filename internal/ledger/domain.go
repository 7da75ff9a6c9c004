package ledger

import (
	"fmt"
	"time"

	"github.com/agromart/agromart/internal/platform/httpx"
)

// TransactionType enumerates ledger entry kinds.
type TransactionType string

const (
	TypeCreditSale TransactionType = "credit_sale"
	TypePayment    TransactionType = "payment"
	TypeAdjustment TransactionType = "adjustment"
	TypeInterest   TransactionType = "interest"
	TypePenalty    TransactionType = "penalty"
)

// Entry is one immutable ledger transaction. Amount is signed: positive
// increases what the customer owes, negative is a payment. Balance is the
// running total after this entry; corrections are new adjustment entries,
// never edits.
type Entry struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customerId"`
	OrderID       *int64          `json:"orderId,omitempty"`
	Type          TransactionType `json:"transactionType"`
	Amount        float64         `json:"amount"`
	Balance       float64         `json:"balance"`
	Description   string          `json:"description"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Reference     *string         `json:"reference,omitempty"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	PaidDate      *time.Time      `json:"paidDate,omitempty"`
	IsOverdue     bool            `json:"isOverdue"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedBy     int64           `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// CustomerAccount is the locked customer row a posting runs against.
type CustomerAccount struct {
	ID               int64
	Name             string
	CreditLimit      float64
	PaymentTermsDays int
	IsActive         bool
}

// OpenOrder is the order view payment allocation works on.
type OpenOrder struct {
	ID              int64
	OrderNumber     string
	TotalAmount     float64
	PaidAmount      float64
	RemainingAmount float64
	PaymentStatus   string
	CreatedAt       time.Time
}

// Allocation is one order's share of a payment.
type Allocation struct {
	OrderID       int64   `json:"orderId"`
	OrderNumber   string  `json:"orderNumber"`
	Applied       float64 `json:"applied"`
	NewPaidAmount float64 `json:"-"`
	NewRemaining  float64 `json:"-"`
	NewStatus     string  `json:"paymentStatus"`
}

// OverdueCustomer aggregates a customer's overdue exposure. TotalOverdue sums
// the gross charge amounts of overdue entries, not the net balance; partial
// payments are not subtracted here.
type OverdueCustomer struct {
	CustomerID    int64      `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	TotalOverdue  float64    `json:"totalOverdue"`
	OldestDueDate *time.Time `json:"oldestDueDate,omitempty"`
	EntryCount    int        `json:"entryCount"`
}

// ErrCreditLimitExceeded rejects credit sales that would push the balance
// past the customer's limit.
var ErrCreditLimitExceeded = fmt.Errorf("%w: credit limit exceeded", httpx.ErrBusinessRule)

// NewCreditSaleEntry builds a credit_sale entry against the current balance.
// A zero credit limit means unlimited. The due date falls back to the
// customer's payment terms when not supplied.
func NewCreditSaleEntry(account *CustomerAccount, current, amount float64, orderID *int64, dueDate *time.Time, description string, now time.Time) (Entry, float64, error) {
	if amount <= 0 {
		return Entry{}, 0, fmt.Errorf("%w: credit sale amount must be positive", httpx.ErrValidation)
	}
	newBalance := current + amount
	if account.CreditLimit > 0 && newBalance > account.CreditLimit {
		return Entry{}, 0, fmt.Errorf("%w: balance %.2f would exceed limit %.2f",
			ErrCreditLimitExceeded, newBalance, account.CreditLimit)
	}
	due := dueDate
	if due == nil && account.PaymentTermsDays > 0 {
		d := now.AddDate(0, 0, account.PaymentTermsDays)
		due = &d
	}
	entry := Entry{
		CustomerID:  account.ID,
		OrderID:     orderID,
		Type:        TypeCreditSale,
		Amount:      amount,
		Balance:     newBalance,
		Description: description,
		DueDate:     due,
		IsOverdue:   due != nil && now.After(*due),
		CreatedAt:   now,
	}
	return entry, newBalance, nil
}

// NewPaymentEntry builds a payment entry. The balance is clamped at zero:
// paying more than is owed leaves a zero balance, the surplus is not tracked
// as an advance.
func NewPaymentEntry(customerID int64, current, amount float64, method string, reference *string, description string, now time.Time) (Entry, float64, error) {
	if amount <= 0 {
		return Entry{}, 0, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}
	if method == "" {
		return Entry{}, 0, fmt.Errorf("%w: payment method is required", httpx.ErrValidation)
	}
	newBalance := current - amount
	if newBalance < 0 {
		newBalance = 0
	}
	paid := now
	entry := Entry{
		CustomerID:    customerID,
		Type:          TypePayment,
		Amount:        -amount,
		Balance:       newBalance,
		Description:   description,
		PaymentMethod: &method,
		Reference:     reference,
		PaidDate:      &paid,
		CreatedAt:     now,
	}
	return entry, newBalance, nil
}

// ApplyToOrder applies up to amount against one order, capping at the
// order's remaining balance.
func ApplyToOrder(order OpenOrder, amount float64) Allocation {
	applied := min(amount, order.RemainingAmount)
	if applied < 0 {
		applied = 0
	}
	newPaid := order.PaidAmount + applied
	newRemaining := order.TotalAmount - newPaid
	if newRemaining < 0 {
		newRemaining = 0
	}
	return Allocation{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Applied:       applied,
		NewPaidAmount: newPaid,
		NewRemaining:  newRemaining,
		NewStatus:     paymentStatusFor(newPaid, order.TotalAmount, order.PaymentStatus),
	}
}

// AllocatePayment spreads a payment FIFO across open orders, oldest first.
// Orders must already be sorted by creation time ascending. Whatever is left
// after the last open order is absorbed into the customer balance.
func AllocatePayment(openOrders []OpenOrder, amount float64) []Allocation {
	var allocations []Allocation
	remaining := amount
	for _, order := range openOrders {
		if remaining <= 0 {
			break
		}
		alloc := ApplyToOrder(order, remaining)
		if alloc.Applied <= 0 {
			continue
		}
		allocations = append(allocations, alloc)
		remaining -= alloc.Applied
	}
	return allocations
}

func paymentStatusFor(paid, total float64, current string) string {
	switch {
	case paid >= total:
		return "Paid"
	case paid > 0:
		return "Partially Paid"
	default:
		return current
	}
}
