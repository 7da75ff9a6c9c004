package catalog

import "time"

// Category enumerates product categories carried by agri retailers.
type Category string

const (
	CategorySeeds       Category = "seeds"
	CategoryFertilizers Category = "fertilizers"
	CategoryPesticides  Category = "pesticides"
	CategoryTools       Category = "tools"
	CategoryIrrigation  Category = "irrigation"
	CategoryAnimalFeed  Category = "animal-feed"
	CategoryOther       Category = "other"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategorySeeds, CategoryFertilizers, CategoryPesticides, CategoryTools,
		CategoryIrrigation, CategoryAnimalFeed, CategoryOther:
		return true
	}
	return false
}

// StockOp enumerates stock adjustment operations.
type StockOp string

const (
	StockAdd      StockOp = "add"
	StockSubtract StockOp = "subtract"
	StockSet      StockOp = "set"
)

// PackSize describes the sold unit, e.g. 5 kg or 500 ml.
type PackSize struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Product is a catalog item with live stock.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Brand         *string   `json:"brand,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Price         float64   `json:"price"`
	CostPrice     float64   `json:"costPrice"`
	PackSize      PackSize  `json:"packSize"`
	StockQuantity int       `json:"stockQuantity"`
	MinimumStock  int       `json:"minimumStock"`
	CropTypes     []string  `json:"cropTypes"`
	IsActive      bool      `json:"isActive"`
	CreatedBy     int64     `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsLowStock reports whether stock has reached the reorder threshold.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinimumStock
}
