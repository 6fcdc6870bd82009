package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/domain/enum"
	"github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/pkg/apperror"
	"github.com/restroflow/pos-api/pkg/money"
	"github.com/restroflow/pos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillingService owns the bill aggregate and its line items. Every mutation
// either returns a bill whose totals satisfy the invariants or an explicit
// error; line item writes are made durable first and the recalculator then
// refreshes the owning bill's totals under its row lock.
type BillingService struct {
	billRepo     repository.BillRepository
	billItemRepo repository.BillItemRepository
	menuRepo     repository.MenuRepository
	customerRepo repository.CustomerRepository
	recalc       *Recalculator
	rates        entity.TaxRatePolicy

	// allowCancelledEdits treats cancellation as a label rather than a
	// lock: cancelled bills keep accepting corrections until payout.
	allowCancelledEdits bool
}

// NewBillingService creates a new billing service
func NewBillingService(
	billRepo repository.BillRepository,
	billItemRepo repository.BillItemRepository,
	menuRepo repository.MenuRepository,
	customerRepo repository.CustomerRepository,
	recalc *Recalculator,
	rates entity.TaxRatePolicy,
	allowCancelledEdits bool,
) *BillingService {
	return &BillingService{
		billRepo:            billRepo,
		billItemRepo:        billItemRepo,
		menuRepo:            menuRepo,
		customerRepo:        customerRepo,
		recalc:              recalc,
		rates:               rates,
		allowCancelledEdits: allowCancelledEdits,
	}
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	CustomerID    uuid.UUID
	OrderType     enum.OrderType
	PaymentMethod enum.PaymentMethod
}

// CreateBill creates a new pending bill with zero totals
func (s *BillingService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	if !input.OrderType.Valid() {
		return nil, apperror.NewBadRequestError("Invalid order type")
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperror.NewBadRequestError("Invalid payment method")
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	bill := &entity.Bill{
		CustomerID:     input.CustomerID,
		Status:         enum.BillStatusPending,
		OrderType:      input.OrderType,
		PaymentMethod:  input.PaymentMethod,
		Subtotal:       money.Zero,
		TaxAmount:      money.Zero,
		DeliveryFee:    money.Zero,
		DiscountAmount: money.Zero,
		TipAmount:      money.Zero,
		TotalAmount:    money.Zero,
	}
	bill.ApplyTotals(s.rates)

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}
	bill.Customer = customer
	return bill, nil
}

// GetBill retrieves a bill with its line items
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills lists bills with filtering
func (s *BillingService) ListBills(ctx context.Context, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, pag), nil
}

// UpdateBillInput represents bill-level field updates
type UpdateBillInput struct {
	Status         *enum.BillStatus
	OrderType      *enum.OrderType
	DeliveryFee    *decimal.Decimal
	DiscountAmount *decimal.Decimal
	Notes          *string
}

// UpdateBill updates bill-level fields and recomputes totals in the same
// locked pass.
func (s *BillingService) UpdateBill(ctx context.Context, id uuid.UUID, input *UpdateBillInput) (*entity.Bill, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperror.NewBadRequestError("Invalid bill status")
	}
	if input.OrderType != nil && !input.OrderType.Valid() {
		return nil, apperror.NewBadRequestError("Invalid order type")
	}
	if input.DeliveryFee != nil && input.DeliveryFee.IsNegative() {
		return nil, apperror.ErrInvalidAmount
	}
	if input.DiscountAmount != nil && input.DiscountAmount.IsNegative() {
		return nil, apperror.ErrInvalidAmount
	}

	return s.recalc.Apply(ctx, id, func(bill *entity.Bill) error {
		if err := s.checkMutable(bill); err != nil {
			return err
		}
		if input.Status != nil && *input.Status != bill.Status {
			if *input.Status == enum.BillStatusCancelled {
				return apperror.NewBadRequestError("Use the cancel action to cancel a bill")
			}
			if !bill.Status.CanTransitionTo(*input.Status) {
				return apperror.NewConflictError("Bill cannot move from " + string(bill.Status) + " to " + string(*input.Status))
			}
			if *input.Status == enum.BillStatusOutForDelivery && bill.OrderType != enum.OrderTypeDelivery {
				return apperror.NewConflictError("Only delivery orders can be out for delivery")
			}
			bill.Status = *input.Status
		}
		if input.OrderType != nil {
			bill.OrderType = *input.OrderType
		}
		if input.DeliveryFee != nil {
			bill.DeliveryFee = money.Quantize(*input.DeliveryFee)
		}
		if input.DiscountAmount != nil {
			bill.DiscountAmount = money.Quantize(*input.DiscountAmount)
		}
		if input.Notes != nil {
			bill.Notes = *input.Notes
		}
		return nil
	})
}

// AddItemInput represents the add line item input
type AddItemInput struct {
	BillID   uuid.UUID
	ItemID   uuid.UUID
	SizeID   uuid.UUID
	Quantity int
	// UnitPrice overrides the price resolved from the size when set.
	UnitPrice *decimal.Decimal
}

// AddItem adds a line item to a bill. The unit price is resolved from the
// referenced size unless supplied, and is frozen on the line from then on.
// The item write is durable before the bill's totals are recomputed; a
// recomputation failure is surfaced rather than reported as success.
func (s *BillingService) AddItem(ctx context.Context, input *AddItemInput) (*entity.BillItem, error) {
	if input.Quantity < 1 {
		return nil, apperror.ErrInvalidQuantity
	}

	bill, err := s.billRepo.GetByID(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if err := s.checkMutable(bill); err != nil {
		return nil, err
	}

	item, err := s.menuRepo.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Menu item")
	}

	size, err := s.menuRepo.GetSize(ctx, input.SizeID)
	if err != nil {
		return nil, err
	}
	if size == nil {
		return nil, apperror.NewNotFoundError("Menu item size")
	}
	if size.SubcategoryID != item.SubcategoryID {
		return nil, apperror.NewBadRequestError("Size does not belong to this menu item")
	}

	existing, err := s.billItemRepo.GetByBillItemSize(ctx, input.BillID, input.ItemID, input.SizeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateLineItem
	}

	unitPrice := size.Price
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, apperror.ErrInvalidAmount
		}
		unitPrice = *input.UnitPrice
	}

	line := &entity.BillItem{
		BillID:    input.BillID,
		ItemID:    input.ItemID,
		SizeID:    input.SizeID,
		Quantity:  input.Quantity,
		UnitPrice: money.Quantize(unitPrice),
	}
	if err := s.billItemRepo.Create(ctx, line); err != nil {
		return nil, err
	}

	if _, err := s.recalc.Recalculate(ctx, input.BillID); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateItemInput represents line item edits issued through the bill
type UpdateItemInput struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
}

// UpdateItem edits a line item's quantity and/or unit price, then recomputes
// the owning bill's totals.
func (s *BillingService) UpdateItem(ctx context.Context, itemID uuid.UUID, input *UpdateItemInput) (*entity.BillItem, error) {
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, apperror.ErrInvalidQuantity
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, apperror.ErrInvalidAmount
	}

	line, err := s.billItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, apperror.NewNotFoundError("Bill item")
	}

	bill, err := s.billRepo.GetByID(ctx, line.BillID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if err := s.checkMutable(bill); err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		line.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		line.UnitPrice = money.Quantize(*input.UnitPrice)
	}
	if err := s.billItemRepo.Update(ctx, line); err != nil {
		return nil, err
	}

	if _, err := s.recalc.Recalculate(ctx, line.BillID); err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveItem deletes a line item. The delete is complete only once the
// owning bill's totals have been recomputed.
func (s *BillingService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	line, err := s.billItemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if line == nil {
		return apperror.NewNotFoundError("Bill item")
	}

	bill, err := s.billRepo.GetByID(ctx, line.BillID)
	if err != nil {
		return err
	}
	if bill == nil {
		return apperror.NewNotFoundError("Bill")
	}
	if err := s.checkMutable(bill); err != nil {
		return err
	}

	if err := s.billItemRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	_, err = s.recalc.Recalculate(ctx, line.BillID)
	return err
}

// SetTipPercentage sets the tip to pct% of the freshly recomputed subtotal.
// The base totals are refreshed first, then the tip is derived, then the
// total is recomputed with the new tip, all in one locked pass.
func (s *BillingService) SetTipPercentage(ctx context.Context, billID uuid.UUID, pct decimal.Decimal) (*entity.Bill, error) {
	if pct.IsNegative() {
		return nil, apperror.ErrInvalidAmount
	}
	return s.recalc.Apply(ctx, billID, func(bill *entity.Bill) error {
		if err := s.checkMutable(bill); err != nil {
			return err
		}
		bill.ApplyTotals(s.rates)
		bill.TipAmount = money.Percent(bill.Subtotal, pct)
		return nil
	})
}

// SetTipAmount sets an absolute tip amount.
func (s *BillingService) SetTipAmount(ctx context.Context, billID uuid.UUID, amount decimal.Decimal) (*entity.Bill, error) {
	if amount.IsNegative() {
		return nil, apperror.ErrInvalidAmount
	}
	return s.recalc.Apply(ctx, billID, func(bill *entity.Bill) error {
		if err := s.checkMutable(bill); err != nil {
			return err
		}
		bill.TipAmount = money.Quantize(amount)
		return nil
	})
}

// MarkPaidInput represents the mark paid input
type MarkPaidInput struct {
	PaymentMethod *enum.PaymentMethod
	Note          string
}

// MarkPaid marks a bill as paid. A payment method change made here is
// reflected in the tax rate and total stored by this same call. The note is
// appended to the bill's notes, and paid_at is stamped only on the first
// call, never unset or restamped by repeats.
func (s *BillingService) MarkPaid(ctx context.Context, billID uuid.UUID, input *MarkPaidInput) (*entity.Bill, error) {
	if input.PaymentMethod != nil && !input.PaymentMethod.Valid() {
		return nil, apperror.NewBadRequestError("Invalid payment method")
	}
	return s.recalc.Apply(ctx, billID, func(bill *entity.Bill) error {
		if err := s.checkMutable(bill); err != nil {
			return err
		}
		if input.PaymentMethod != nil {
			bill.PaymentMethod = *input.PaymentMethod
		}
		bill.AppendPaymentNote(input.Note)
		bill.IsPaid = true
		if bill.PaidAt == nil {
			now := time.Now().UTC()
			bill.PaidAt = &now
		}
		return nil
	})
}

// Cancel sets the bill's status to cancelled. Cancellation is a status
// label: it does not zero totals, and whether it blocks later mutations is
// the allow-cancelled-edits policy.
func (s *BillingService) Cancel(ctx context.Context, billID uuid.UUID) (*entity.Bill, error) {
	return s.recalc.Apply(ctx, billID, func(bill *entity.Bill) error {
		if bill.Status == enum.BillStatusCancelled {
			return apperror.NewConflictError("Bill is already cancelled")
		}
		if bill.Status == enum.BillStatusDelivered {
			return apperror.NewConflictError("Delivered bills cannot be cancelled")
		}
		bill.Status = enum.BillStatusCancelled
		return nil
	})
}

func (s *BillingService) checkMutable(bill *entity.Bill) error {
	if bill.Status == enum.BillStatusCancelled && !s.allowCancelledEdits {
		return apperror.ErrBillCancelled
	}
	return nil
}
