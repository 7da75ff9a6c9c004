package orders

import "time"

type CreateItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	CustomerID    int64               `json:"customerId" validate:"required,gt=0"`
	Items         []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=cash credit upi bank_transfer cheque card"`
	PromotionCode *string             `json:"promotionCode,omitempty" validate:"omitempty,max=50"`
	TaxAmount     float64             `json:"taxAmount" validate:"gte=0"`
	Notes         *string             `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=Pending Confirmed Processing Shipped Delivered"`
	PaymentStatus *string `json:"paymentStatus,omitempty" validate:"omitempty,oneof=Pending Paid 'Partially Paid' Failed Refunded"`
}

type OrderPaymentRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,oneof=cash upi bank_transfer cheque card"`
	Reference     *string `json:"reference,omitempty" validate:"omitempty,max=100"`
}

type ListOrdersRequest struct {
	OwnerID       int64
	CustomerID    *int64
	Status        *Status
	PaymentStatus *PaymentStatus
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
