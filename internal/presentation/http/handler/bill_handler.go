package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/application/service"
	"github.com/restroflow/pos-api/internal/domain/enum"
	"github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/internal/presentation/http/dto/request"
	"github.com/restroflow/pos-api/internal/presentation/http/dto/response"
	"github.com/restroflow/pos-api/pkg/apperror"
	"github.com/restroflow/pos-api/pkg/money"
	"github.com/restroflow/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillHandler handles bill and line item HTTP requests
type BillHandler struct {
	billingService *service.BillingService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billingService *service.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

// parseAmount converts an optional decimal string field into an amount,
// rejecting non-numeric and negative input before it reaches the service.
func parseAmount(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	amount, err := money.Parse(*raw)
	if err != nil {
		return nil, apperror.ErrInvalidAmount
	}
	return &amount, nil
}

// Create handles creating a bill
func (h *BillHandler) Create(c *gin.Context) {
	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	bill, err := h.billingService.CreateBill(c.Request.Context(), &service.CreateBillInput{
		CustomerID:    customerID,
		OrderType:     enum.OrderType(req.OrderType),
		PaymentMethod: enum.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// Get handles retrieving a bill with its items
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// List handles listing bills with filters
func (h *BillHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.BillFilterParams{
		Pagination: pagination.PaginationParams{Page: page, PerPage: perPage},
	}
	params.Pagination.Validate()

	if raw := c.Query("status"); raw != "" {
		status := enum.BillStatus(raw)
		if !status.Valid() {
			response.BadRequest(c, "Invalid bill status")
			return
		}
		params.Status = &status
	}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &customerID
	}
	if raw := c.Query("is_paid"); raw != "" {
		isPaid, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "Invalid is_paid value")
			return
		}
		params.IsPaid = &isPaid
	}

	result, err := h.billingService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

// Update handles bill-level updates
func (h *BillHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req request.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateBillInput{Notes: req.Notes}
	if req.Status != nil {
		status := enum.BillStatus(*req.Status)
		input.Status = &status
	}
	if req.OrderType != nil {
		orderType := enum.OrderType(*req.OrderType)
		input.OrderType = &orderType
	}

	var err error
	if input.DeliveryFee, err = parseAmount(req.DeliveryFee); err != nil {
		response.Error(c, err)
		return
	}
	if input.DiscountAmount, err = parseAmount(req.DiscountAmount); err != nil {
		response.Error(c, err)
		return
	}

	bill, err := h.billingService.UpdateBill(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill updated successfully", bill)
}

// Cancel handles cancelling a bill
func (h *BillHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billingService.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill cancelled", bill)
}

// SetTip handles setting the tip, either as a percentage of the subtotal
// or as an absolute amount.
func (h *BillHandler) SetTip(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req request.SetTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if (req.Percentage == nil) == (req.Amount == nil) {
		response.BadRequest(c, "Provide exactly one of percentage or amount")
		return
	}

	if req.Percentage != nil {
		pct, err := decimal.NewFromString(*req.Percentage)
		if err != nil {
			response.Error(c, apperror.ErrInvalidAmount)
			return
		}
		bill, err := h.billingService.SetTipPercentage(c.Request.Context(), id, pct)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Tip applied", bill)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	bill, err := h.billingService.SetTipAmount(c.Request.Context(), id, *amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tip applied", bill)
}

// MarkPaid handles marking a bill as paid
func (h *BillHandler) MarkPaid(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req request.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.MarkPaidInput{Note: req.Note}
	if req.PaymentMethod != nil {
		method := enum.PaymentMethod(*req.PaymentMethod)
		input.PaymentMethod = &method
	}

	bill, err := h.billingService.MarkPaid(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill marked as paid", bill)
}

// AddItem handles adding a line item to a bill
func (h *BillHandler) AddItem(c *gin.Context) {
	billID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req request.AddBillItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}
	sizeID, err := uuid.Parse(req.SizeID)
	if err != nil {
		response.BadRequest(c, "Invalid size ID")
		return
	}
	unitPrice, err := parseAmount(req.UnitPrice)
	if err != nil {
		response.Error(c, err)
		return
	}

	line, err := h.billingService.AddItem(c.Request.Context(), &service.AddItemInput{
		BillID:    billID,
		ItemID:    itemID,
		SizeID:    sizeID,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item added to bill", line)
}

// UpdateItem handles updating a line item
func (h *BillHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill item ID")
		return
	}

	var req request.UpdateBillItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	unitPrice, err := parseAmount(req.UnitPrice)
	if err != nil {
		response.Error(c, err)
		return
	}

	line, err := h.billingService.UpdateItem(c.Request.Context(), itemID, &service.UpdateItemInput{
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated", line)
}

// RemoveItem handles removing a line item
func (h *BillHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid bill item ID")
		return
	}

	if err := h.billingService.RemoveItem(c.Request.Context(), itemID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
