package ledger

import "time"

type PaymentRequest struct {
	CustomerID    int64   `json:"customerId" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,oneof=cash upi bank_transfer cheque card"`
	Reference     *string `json:"reference,omitempty" validate:"omitempty,max=100"`
	OrderID       *int64  `json:"orderId,omitempty" validate:"omitempty,gt=0"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type CreditSaleRequest struct {
	CustomerID  int64      `json:"customerId" validate:"required,gt=0"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	OrderID     *int64     `json:"orderId,omitempty" validate:"omitempty,gt=0"`
	Description string     `json:"description" validate:"required,max=500"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type AdjustmentRequest struct {
	CustomerID  int64   `json:"customerId" validate:"required,gt=0"`
	Amount      float64 `json:"amount" validate:"required"`
	Type        string  `json:"transactionType" validate:"required,oneof=adjustment interest penalty"`
	Description string  `json:"description" validate:"required,max=500"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ListEntriesRequest struct {
	CustomerID int64
	OwnerID    int64
	Type       TransactionType
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// PaymentResult is the response body for a recorded payment.
type PaymentResult struct {
	Entry       *Entry       `json:"entry"`
	Balance     float64      `json:"balance"`
	Allocations []Allocation `json:"allocations,omitempty"`
}

// EntryResult pairs an appended entry with the recomputed balance, mirroring
// the payment response shape.
type EntryResult struct {
	Entry   *Entry  `json:"entry"`
	Balance float64 `json:"balance"`
}

// AccountSummary is the customer-level balance view.
type AccountSummary struct {
	CustomerID   int64      `json:"customerId"`
	CustomerName string     `json:"customerName"`
	Balance      float64    `json:"balance"`
	CreditLimit  float64    `json:"creditLimit"`
	Available    float64    `json:"availableCredit"`
	LastEntryAt  *time.Time `json:"lastEntryAt,omitempty"`
}
