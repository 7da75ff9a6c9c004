package promotions

import "time"

// CreatePromotionRequest carries fields for creating a promotion.
type CreatePromotionRequest struct {
	Code                     string    `json:"code" validate:"required,min=3,max=20,alphanum"`
	Name                     string    `json:"name" validate:"required,min=2"`
	Description              *string   `json:"description"`
	Type                     string    `json:"type" validate:"required,oneof=percentage fixed_amount free_shipping buy_x_get_y"`
	Value                    float64   `json:"value" validate:"gte=0"`
	BuyQuantity              int       `json:"buyQuantity" validate:"gte=0"`
	GetQuantity              int       `json:"getQuantity" validate:"gte=0"`
	MinOrderAmount           float64   `json:"minOrderAmount" validate:"gte=0"`
	MinOrderQuantity         int       `json:"minOrderQuantity" validate:"gte=0"`
	MaxDiscountAmount        *float64  `json:"maxDiscountAmount" validate:"omitempty,gt=0"`
	UsageLimit               *int      `json:"usageLimit" validate:"omitempty,gt=0"`
	UsageLimitPerCustomer    *int      `json:"usageLimitPerCustomer" validate:"omitempty,gt=0"`
	StartDate                time.Time `json:"startDate" validate:"required"`
	EndDate                  time.Time `json:"endDate" validate:"required"`
	ApplicableProducts       []int64   `json:"applicableProducts"`
	ApplicableCategories     []string  `json:"applicableCategories"`
	ApplicableCustomerGroups []string  `json:"applicableCustomerGroups"`
	ExcludeProducts          []int64   `json:"excludeProducts"`
}

// UpdatePromotionRequest carries optional fields for updating a promotion.
type UpdatePromotionRequest struct {
	Name                     *string    `json:"name" validate:"omitempty,min=2"`
	Description              *string    `json:"description"`
	Value                    *float64   `json:"value" validate:"omitempty,gte=0"`
	MinOrderAmount           *float64   `json:"minOrderAmount" validate:"omitempty,gte=0"`
	MinOrderQuantity         *int       `json:"minOrderQuantity" validate:"omitempty,gte=0"`
	MaxDiscountAmount        *float64   `json:"maxDiscountAmount" validate:"omitempty,gt=0"`
	UsageLimit               *int       `json:"usageLimit" validate:"omitempty,gt=0"`
	UsageLimitPerCustomer    *int       `json:"usageLimitPerCustomer" validate:"omitempty,gt=0"`
	StartDate                *time.Time `json:"startDate"`
	EndDate                  *time.Time `json:"endDate"`
	ApplicableProducts       []int64    `json:"applicableProducts"`
	ApplicableCategories     []string   `json:"applicableCategories"`
	ApplicableCustomerGroups []string   `json:"applicableCustomerGroups"`
	ExcludeProducts          []int64    `json:"excludeProducts"`
	IsActive                 *bool      `json:"isActive"`
}

// ValidateRequest asks for a discount quote for a cart.
type ValidateRequest struct {
	Code       string             `json:"code" validate:"required"`
	CustomerID int64              `json:"customerId" validate:"required,gt=0"`
	Items      []ValidateItem     `json:"items" validate:"required,min=1,dive"`
}

// ValidateItem is one cart line in a validation request.
type ValidateItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// PromotionSummary is the trimmed promotion view in validate responses.
type PromotionSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Code  string  `json:"code"`
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
}

// ValidationResult is the outcome of a validate call.
type ValidationResult struct {
	Valid            bool              `json:"valid"`
	Promotion        *PromotionSummary `json:"promotion,omitempty"`
	DiscountAmount   float64           `json:"discountAmount"`
	ApplicableAmount float64           `json:"applicableAmount"`
	Message          string            `json:"message"`
}

// ListPromotionsRequest filters promotion listings.
type ListPromotionsRequest struct {
	OwnerID    int64
	IsActive   *bool
	ActiveOnly bool
	Limit      int
	Offset     int
}
