package catalog

// CreateProductRequest carries fields for creating a product.
type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,min=2"`
	Category      string   `json:"category" validate:"required,oneof=seeds fertilizers pesticides tools irrigation animal-feed other"`
	Brand         *string  `json:"brand"`
	Description   *string  `json:"description"`
	Price         float64  `json:"price" validate:"gte=0"`
	CostPrice     float64  `json:"costPrice" validate:"gte=0"`
	PackSizeValue float64  `json:"packSizeValue" validate:"gt=0"`
	PackSizeUnit  string   `json:"packSizeUnit" validate:"required"`
	StockQuantity int      `json:"stockQuantity" validate:"gte=0"`
	MinimumStock  int      `json:"minimumStock" validate:"gte=0"`
	CropTypes     []string `json:"cropTypes"`
}

// UpdateProductRequest carries optional fields for updating a product.
type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=2"`
	Category      *string  `json:"category" validate:"omitempty,oneof=seeds fertilizers pesticides tools irrigation animal-feed other"`
	Brand         *string  `json:"brand"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	CostPrice     *float64 `json:"costPrice" validate:"omitempty,gte=0"`
	PackSizeValue *float64 `json:"packSizeValue" validate:"omitempty,gt=0"`
	PackSizeUnit  *string  `json:"packSizeUnit"`
	MinimumStock  *int     `json:"minimumStock" validate:"omitempty,gte=0"`
	CropTypes     []string `json:"cropTypes"`
	IsActive      *bool    `json:"isActive"`
}

// AdjustStockRequest mutates stock via add, subtract or set.
type AdjustStockRequest struct {
	Operation string `json:"operation" validate:"required,oneof=add subtract set"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Reason    string `json:"reason"`
}

// ListProductsRequest filters product listings.
type ListProductsRequest struct {
	OwnerID  int64
	Category *Category
	CropType *string
	IsActive *bool
	LowStock bool
	Search   *string
	Limit    int
	Offset   int
}
