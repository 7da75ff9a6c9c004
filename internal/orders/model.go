package orders

import "time"

// Status enumerates order lifecycle states. There is no enforced transition
// graph beyond enum membership, except that Cancelled is terminal and only
// reachable through Cancel so the stock restore always runs.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	PayPending  PaymentStatus = "Pending"
	PayPaid     PaymentStatus = "Paid"
	PayPartial  PaymentStatus = "Partially Paid"
	PayFailed   PaymentStatus = "Failed"
	PayRefunded PaymentStatus = "Refunded"
)

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PayPending, PayPaid, PayPartial, PayFailed, PayRefunded:
		return true
	}
	return false
}

// Item is one order line with price snapshotted at checkout.
type Item struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"orderId"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// Order is one purchase transaction. TotalAmount = Subtotal + TaxAmount -
// DiscountAmount; RemainingAmount = max(0, TotalAmount - PaidAmount).
type Order struct {
	ID              int64         `json:"id"`
	OrderNumber     string        `json:"orderNumber"`
	InvoiceNumber   *string       `json:"invoiceNumber,omitempty"`
	CustomerID      int64         `json:"customerId"`
	CustomerName    string        `json:"customerName,omitempty"`
	Items           []Item        `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	TaxAmount       float64       `json:"taxAmount"`
	DiscountAmount  float64       `json:"discountAmount"`
	TotalAmount     float64       `json:"totalAmount"`
	PaidAmount      float64       `json:"paidAmount"`
	RemainingAmount float64       `json:"remainingAmount"`
	PromotionCode   *string       `json:"promotionCode,omitempty"`
	PaymentMethod   string        `json:"paymentMethod"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	Status          Status        `json:"status"`
	Notes           *string       `json:"notes,omitempty"`
	CreatedBy       int64         `json:"createdBy"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CanCancel reports whether the order may still be cancelled.
func (o Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}
