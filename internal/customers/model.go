package customers

import "time"

// CustomerGroup classifies customers for pricing and promotions.
type CustomerGroup string

const (
	GroupNew       CustomerGroup = "new"
	GroupRegular   CustomerGroup = "regular"
	GroupVIP       CustomerGroup = "vip"
	GroupWholesale CustomerGroup = "wholesale"
)

// ValidGroup reports whether g is a known customer group.
func ValidGroup(g CustomerGroup) bool {
	switch g {
	case GroupNew, GroupRegular, GroupVIP, GroupWholesale:
		return true
	}
	return false
}

// Customer holds identity plus aggregated purchase stats. CurrentBalance is a
// cached projection of the customer's latest ledger entry; the ledger is the
// source of truth.
type Customer struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Phone            string        `json:"phone"`
	Email            *string       `json:"email,omitempty"`
	Address          *string       `json:"address,omitempty"`
	BusinessType     *string       `json:"businessType,omitempty"`
	CustomerGroup    CustomerGroup `json:"customerGroup"`
	CreditLimit      float64       `json:"creditLimit"`
	PaymentTermsDays int           `json:"paymentTermsDays"`
	CurrentBalance   float64       `json:"currentBalance"`
	TotalPurchases   float64       `json:"totalPurchases"`
	LastPurchaseDate *time.Time    `json:"lastPurchaseDate,omitempty"`
	IsActive         bool          `json:"isActive"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedBy        int64         `json:"createdBy"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}
