package request

// Monetary fields arrive as decimal strings so values like "10.05" survive
// the trip exactly; handlers parse and validate them with the money package.

// CreateBillRequest represents a create bill request
type CreateBillRequest struct {
	CustomerID    string `json:"customer_id" binding:"required,uuid"`
	OrderType     string `json:"order_type" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// UpdateBillRequest represents a bill-level update request
type UpdateBillRequest struct {
	Status         *string `json:"status"`
	OrderType      *string `json:"order_type"`
	DeliveryFee    *string `json:"delivery_fee"`
	DiscountAmount *string `json:"discount_amount"`
	Notes          *string `json:"notes"`
}

// AddBillItemRequest represents an add line item request
type AddBillItemRequest struct {
	ItemID    string  `json:"item_id" binding:"required,uuid"`
	SizeID    string  `json:"size_id" binding:"required,uuid"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice *string `json:"unit_price"`
}

// UpdateBillItemRequest represents a line item update request
type UpdateBillItemRequest struct {
	Quantity  *int    `json:"quantity"`
	UnitPrice *string `json:"unit_price"`
}

// SetTipRequest represents a tip request. Exactly one of the two fields
// must be set.
type SetTipRequest struct {
	Percentage *string `json:"percentage"`
	Amount     *string `json:"amount"`
}

// MarkPaidRequest represents a mark paid request
type MarkPaidRequest struct {
	PaymentMethod *string `json:"payment_method"`
	Note          string  `json:"note"`
}
