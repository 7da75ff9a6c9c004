package promotions

import (
	"slices"
	"sort"
	"time"
)

// Type enumerates promotion types.
type Type string

const (
	TypePercentage   Type = "percentage"
	TypeFixedAmount  Type = "fixed_amount"
	TypeFreeShipping Type = "free_shipping"
	TypeBuyXGetY     Type = "buy_x_get_y"
)

// ValidType reports whether t is a known promotion type.
func ValidType(t Type) bool {
	switch t {
	case TypePercentage, TypeFixedAmount, TypeFreeShipping, TypeBuyXGetY:
		return true
	}
	return false
}

// Promotion is a discount rule owned by one tenant.
type Promotion struct {
	ID                       int64      `json:"id"`
	Code                     string     `json:"code"`
	Name                     string     `json:"name"`
	Description              *string    `json:"description,omitempty"`
	Type                     Type       `json:"type"`
	Value                    float64    `json:"value"`
	BuyQuantity              int        `json:"buyQuantity,omitempty"`
	GetQuantity              int        `json:"getQuantity,omitempty"`
	MinOrderAmount           float64    `json:"minOrderAmount"`
	MinOrderQuantity         int        `json:"minOrderQuantity"`
	MaxDiscountAmount        *float64   `json:"maxDiscountAmount,omitempty"`
	UsageLimit               *int       `json:"usageLimit,omitempty"`
	UsageCount               int        `json:"usageCount"`
	UsageLimitPerCustomer    *int       `json:"usageLimitPerCustomer,omitempty"`
	StartDate                time.Time  `json:"startDate"`
	EndDate                  time.Time  `json:"endDate"`
	ApplicableProducts       []int64    `json:"applicableProducts"`
	ApplicableCategories     []string   `json:"applicableCategories"`
	ApplicableCustomerGroups []string   `json:"applicableCustomerGroups"`
	ExcludeProducts          []int64    `json:"excludeProducts"`
	IsActive                 bool       `json:"isActive"`
	CreatedBy                int64      `json:"createdBy"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

// CartItem is one order line evaluated against a promotion.
type CartItem struct {
	ProductID  int64   `json:"productId"`
	Category   string  `json:"category"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// IsValid reports whether the promotion is live: active, inside its date
// window, and under the global usage limit.
func (p Promotion) IsValid(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return false
	}
	return true
}

// CanUse checks order-level requirements against the customer context.
func (p Promotion) CanUse(orderAmount float64, orderQuantity int, customerGroup string) bool {
	if orderAmount < p.MinOrderAmount {
		return false
	}
	if orderQuantity < p.MinOrderQuantity {
		return false
	}
	if len(p.ApplicableCustomerGroups) > 0 && !slices.Contains(p.ApplicableCustomerGroups, customerGroup) {
		return false
	}
	return true
}

// ApplicableItems filters cart items the promotion applies to. The products
// list takes precedence: categories are only consulted when no product list
// is set. Exclusions are applied last in either branch.
func (p Promotion) ApplicableItems(items []CartItem) []CartItem {
	filtered := items
	if len(p.ApplicableProducts) > 0 {
		filtered = nil
		for _, item := range items {
			if slices.Contains(p.ApplicableProducts, item.ProductID) {
				filtered = append(filtered, item)
			}
		}
	} else if len(p.ApplicableCategories) > 0 {
		filtered = nil
		for _, item := range items {
			if slices.Contains(p.ApplicableCategories, item.Category) {
				filtered = append(filtered, item)
			}
		}
	}
	if len(p.ExcludeProducts) == 0 {
		return filtered
	}
	var result []CartItem
	for _, item := range filtered {
		if !slices.Contains(p.ExcludeProducts, item.ProductID) {
			result = append(result, item)
		}
	}
	return result
}

// Discount computes the discount for the applicable items, before the
// max-discount cap.
func (p Promotion) Discount(applicable []CartItem) float64 {
	applicableAmount := 0.0
	for _, item := range applicable {
		applicableAmount += item.TotalPrice
	}

	var discount float64
	switch p.Type {
	case TypePercentage:
		discount = applicableAmount * p.Value / 100
	case TypeFixedAmount:
		discount = min(p.Value, applicableAmount)
	case TypeFreeShipping:
		// Shipping cost is settled outside the order total.
		discount = 0
	case TypeBuyXGetY:
		discount = p.buyXGetYDiscount(applicable)
	}
	return discount
}

// CapDiscount applies the max-discount clamp.
func (p Promotion) CapDiscount(discount float64) float64 {
	if p.MaxDiscountAmount != nil && discount > *p.MaxDiscountAmount {
		return *p.MaxDiscountAmount
	}
	return discount
}

// buyXGetYDiscount gives the free units on the cheapest eligible items first,
// a tie-break that favors the merchant.
func (p Promotion) buyXGetYDiscount(applicable []CartItem) float64 {
	if p.BuyQuantity <= 0 || p.GetQuantity <= 0 {
		return 0
	}
	totalQty := 0
	for _, item := range applicable {
		totalQty += item.Quantity
	}
	freeUnits := (totalQty / p.BuyQuantity) * p.GetQuantity
	if freeUnits <= 0 {
		return 0
	}

	sorted := make([]CartItem, len(applicable))
	copy(sorted, applicable)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice < sorted[j].UnitPrice
	})

	discount := 0.0
	for _, item := range sorted {
		if freeUnits <= 0 {
			break
		}
		take := min(freeUnits, item.Quantity)
		discount += float64(take) * item.UnitPrice
		freeUnits -= take
	}
	return discount
}
