package customers

// CreateCustomerRequest carries fields for creating a customer.
type CreateCustomerRequest struct {
	Name             string  `json:"name" validate:"required,min=2"`
	Phone            string  `json:"phone" validate:"required,min=7,max=15"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Address          *string `json:"address"`
	BusinessType     *string `json:"businessType"`
	CustomerGroup    string  `json:"customerGroup" validate:"omitempty,oneof=new regular vip wholesale"`
	CreditLimit      float64 `json:"creditLimit" validate:"gte=0"`
	PaymentTermsDays int     `json:"paymentTermsDays" validate:"gte=0"`
	Notes            *string `json:"notes"`
}

// UpdateCustomerRequest carries optional fields for updating a customer.
type UpdateCustomerRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=2"`
	Phone            *string  `json:"phone" validate:"omitempty,min=7,max=15"`
	Email            *string  `json:"email" validate:"omitempty,email"`
	Address          *string  `json:"address"`
	BusinessType     *string  `json:"businessType"`
	CustomerGroup    *string  `json:"customerGroup" validate:"omitempty,oneof=new regular vip wholesale"`
	CreditLimit      *float64 `json:"creditLimit" validate:"omitempty,gte=0"`
	PaymentTermsDays *int     `json:"paymentTermsDays" validate:"omitempty,gte=0"`
	Notes            *string  `json:"notes"`
	IsActive         *bool    `json:"isActive"`
}

// ListCustomersRequest filters customer listings.
type ListCustomersRequest struct {
	OwnerID  int64
	Group    *CustomerGroup
	IsActive *bool
	Search   *string
	Limit    int
	Offset   int
}
