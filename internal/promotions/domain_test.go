package promotions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func livePromotion(t Type) Promotion {
	return Promotion{
		Type:      t,
		IsActive:  true,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestIsValidWindowAndUsage(t *testing.T) {
	p := livePromotion(TypePercentage)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	require.True(t, p.IsValid(now))

	require.False(t, p.IsValid(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)), "before window")
	require.False(t, p.IsValid(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), "after window")

	inactive := p
	inactive.IsActive = false
	require.False(t, inactive.IsValid(now))

	limit := 5
	used := p
	used.UsageLimit = &limit
	used.UsageCount = 5
	require.False(t, used.IsValid(now), "global usage limit reached")
	used.UsageCount = 4
	require.True(t, used.IsValid(now))
}

func TestCanUseRequirements(t *testing.T) {
	p := livePromotion(TypePercentage)
	p.MinOrderAmount = 500
	p.MinOrderQuantity = 3
	p.ApplicableCustomerGroups = []string{"vip", "wholesale"}

	require.True(t, p.CanUse(500, 3, "vip"))
	require.False(t, p.CanUse(499, 3, "vip"), "below min order amount")
	require.False(t, p.CanUse(500, 2, "vip"), "below min order quantity")
	require.False(t, p.CanUse(500, 3, "regular"), "group not in list")

	open := livePromotion(TypePercentage)
	require.True(t, open.CanUse(1, 1, "new"), "empty group list admits everyone")
}

func TestApplicableItemsProductsListTakesPrecedence(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Category: "seeds", Quantity: 1, UnitPrice: 100, TotalPrice: 100},
		{ProductID: 2, Category: "fertilizers", Quantity: 1, UnitPrice: 200, TotalPrice: 200},
		{ProductID: 3, Category: "fertilizers", Quantity: 1, UnitPrice: 300, TotalPrice: 300},
	}

	p := livePromotion(TypePercentage)
	p.ApplicableProducts = []int64{1, 3}
	p.ApplicableCategories = []string{"fertilizers"}

	got := p.ApplicableItems(items)
	require.Len(t, got, 2, "categories ignored when a product list is set")
	require.Equal(t, int64(1), got[0].ProductID)
	require.Equal(t, int64(3), got[1].ProductID)
}

func TestApplicableItemsCategoriesAndExclusions(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Category: "seeds", TotalPrice: 100},
		{ProductID: 2, Category: "fertilizers", TotalPrice: 200},
		{ProductID: 3, Category: "fertilizers", TotalPrice: 300},
	}

	p := livePromotion(TypePercentage)
	p.ApplicableCategories = []string{"fertilizers"}
	p.ExcludeProducts = []int64{3}

	got := p.ApplicableItems(items)
	require.Len(t, got, 1)
	require.Equal(t, int64(2), got[0].ProductID)
}

func TestPercentageDiscountWithCap(t *testing.T) {
	maxDiscount := 80.0
	p := livePromotion(TypePercentage)
	p.Value = 10
	p.MaxDiscountAmount = &maxDiscount

	items := []CartItem{{ProductID: 1, Quantity: 10, UnitPrice: 100, TotalPrice: 1000}}
	discount := p.CapDiscount(p.Discount(items))
	require.Equal(t, 80.0, discount, "10% of 1000 capped at 80")
}

func TestFixedAmountNeverExceedsApplicable(t *testing.T) {
	p := livePromotion(TypeFixedAmount)
	p.Value = 150

	items := []CartItem{{ProductID: 1, Quantity: 1, UnitPrice: 100, TotalPrice: 100}}
	require.Equal(t, 100.0, p.Discount(items))
}

func TestBuyXGetYCheapestFirst(t *testing.T) {
	p := livePromotion(TypeBuyXGetY)
	p.BuyQuantity = 3
	p.GetQuantity = 1

	items := []CartItem{
		{ProductID: 1, Quantity: 4, UnitPrice: 50, TotalPrice: 200},
		{ProductID: 2, Quantity: 2, UnitPrice: 30, TotalPrice: 60},
	}
	// 6 units total -> floor(6/3)*1 = 2 free units, both taken from the 30s.
	require.Equal(t, 60.0, p.Discount(items))
}

func TestBuyXGetYBelowThreshold(t *testing.T) {
	p := livePromotion(TypeBuyXGetY)
	p.BuyQuantity = 3
	p.GetQuantity = 1

	items := []CartItem{{ProductID: 1, Quantity: 2, UnitPrice: 50, TotalPrice: 100}}
	require.Equal(t, 0.0, p.Discount(items))
}

func TestFreeShippingGivesNoLineDiscount(t *testing.T) {
	p := livePromotion(TypeFreeShipping)
	items := []CartItem{{ProductID: 1, Quantity: 1, UnitPrice: 500, TotalPrice: 500}}
	require.Equal(t, 0.0, p.Discount(items))
}
