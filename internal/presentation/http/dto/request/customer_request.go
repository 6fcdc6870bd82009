package request

// CreateCustomerRequest represents a create customer request
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	Phone     string `json:"phone" binding:"required,min=7,max=15"`
	Address   string `json:"address" binding:"max=255"`
}

// UpdateCustomerRequest represents an update customer request
type UpdateCustomerRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,min=7,max=15"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
}
