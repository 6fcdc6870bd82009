package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/enum"
	"github.com/restroflow/pos-api/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxRatePolicy maps a payment method to the tax percentage applied during
// recomputation. Injected rather than hard-coded so rates can change without
// touching the recomputation algorithm.
type TaxRatePolicy func(enum.PaymentMethod) decimal.Decimal

// DefaultTaxRatePolicy returns the standard two-case rule: cash orders are
// taxed at cashRate, everything else at defaultRate.
func DefaultTaxRatePolicy(cashRate, defaultRate decimal.Decimal) TaxRatePolicy {
	return func(m enum.PaymentMethod) decimal.Decimal {
		if m == enum.PaymentMethodCash {
			return cashRate
		}
		return defaultRate
	}
}

// Bill is the per-order financial aggregate. Its monetary fields are always
// derived from the current line items plus the explicit adjustments
// (delivery fee, discount, tip); ApplyTotals re-derives them in dependency
// order and is idempotent.
type Bill struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status        enum.BillStatus    `gorm:"size:20;not null;default:pending" json:"status"`
	OrderType     enum.OrderType     `gorm:"size:15;not null;default:delivery" json:"order_type"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null;default:pending" json:"payment_method"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"subtotal"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"tax_amount"`
	DeliveryFee    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"delivery_fee"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	TipAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"tip_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`

	IsPaid    bool       `gorm:"not null;default:false" json:"is_paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// CalculateSubtotal sums the extended price of every line item, quantized.
// Always recomputed from the loaded items, never cached.
func (b *Bill) CalculateSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range b.Items {
		sum = sum.Add(b.Items[i].ExtendedPrice())
	}
	return money.Quantize(sum)
}

// CalculateTax computes tax from the current subtotal and tax rate.
func (b *Bill) CalculateTax() decimal.Decimal {
	return money.Percent(b.Subtotal, b.TaxRate)
}

// CalculateTotal computes the grand total from the current field state.
func (b *Bill) CalculateTotal() decimal.Decimal {
	total := b.Subtotal.
		Add(b.TaxAmount).
		Add(b.DeliveryFee).
		Add(b.TipAmount).
		Sub(b.DiscountAmount)
	return money.Quantize(total)
}

// ApplyTotals re-derives subtotal, tax rate, tax amount and total amount, in
// that order. The tax rate must be current before the tax amount, and the
// tax amount before the total. Calling it twice with no intervening change
// yields identical values.
func (b *Bill) ApplyTotals(rates TaxRatePolicy) {
	b.Subtotal = b.CalculateSubtotal()
	b.TaxRate = rates(b.PaymentMethod)
	b.TaxAmount = b.CalculateTax()
	b.TotalAmount = b.CalculateTotal()
}

// AppendPaymentNote joins a payment note onto the existing notes with a
// newline, never overwriting what is already there.
func (b *Bill) AppendPaymentNote(note string) {
	if note == "" {
		return
	}
	entry := "Payment: " + note
	if strings.TrimSpace(b.Notes) == "" {
		b.Notes = entry
		return
	}
	b.Notes = b.Notes + "\n" + entry
}

// BillItem is one priced, quantity-bearing line on a bill. UnitPrice is
// resolved from the referenced menu size at creation and is immutable price
// history afterwards: later catalog price changes never alter existing lines.
// At most one line may exist per (bill, item, size).
type BillItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uniq_bill_item_size" json:"bill_id"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uniq_bill_item_size" json:"item_id"`
	SizeID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uniq_bill_item_size" json:"size_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relationships
	Bill *Bill         `gorm:"foreignKey:BillID" json:"-"`
	Item *MenuItem     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Size *MenuItemSize `gorm:"foreignKey:SizeID" json:"size,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (bi *BillItem) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// ExtendedPrice returns unit price times quantity, quantized.
func (bi *BillItem) ExtendedPrice() decimal.Decimal {
	return money.Quantize(bi.UnitPrice.Mul(decimal.NewFromInt(int64(bi.Quantity))))
}
