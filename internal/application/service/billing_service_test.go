package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/domain/enum"
	"github.com/restroflow/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type billingEnv struct {
	store    *fakeStore
	billRepo *fakeBillRepo
	itemRepo *fakeBillItemRepo
	menuRepo *fakeMenuRepo
	custRepo *fakeCustomerRepo
	recalc   *Recalculator
	svc      *BillingService

	customer *entity.Customer

	pizza      *entity.MenuItem
	pizzaLarge *entity.MenuItemSize
	pizzaSmall *entity.MenuItemSize
	cola       *entity.MenuItem
	colaSize   *entity.MenuItemSize
}

func newBillingEnv(t *testing.T, allowCancelledEdits bool) *billingEnv {
	t.Helper()

	store := newFakeStore()
	billRepo := &fakeBillRepo{store: store}
	itemRepo := &fakeBillItemRepo{store: store}
	menuRepo := newFakeMenuRepo()
	custRepo := newFakeCustomerRepo()

	rates := entity.DefaultTaxRatePolicy(dec("5.00"), dec("16.00"))
	recalc := NewRecalculator(billRepo, rates)
	svc := NewBillingService(billRepo, itemRepo, menuRepo, custRepo, recalc, rates, allowCancelledEdits)

	customer := &entity.Customer{FirstName: "Ada", LastName: "Mwangi", Phone: "0712345678"}
	require.NoError(t, custRepo.Create(context.Background(), customer))

	pizzaSub := uuid.New()
	drinkSub := uuid.New()

	env := &billingEnv{
		store:    store,
		billRepo: billRepo,
		itemRepo: itemRepo,
		menuRepo: menuRepo,
		custRepo: custRepo,
		recalc:   recalc,
		svc:      svc,
		customer: customer,
		pizza:    &entity.MenuItem{ID: uuid.New(), Name: "Margherita", SubcategoryID: pizzaSub, IsAvailable: true},
		pizzaLarge: &entity.MenuItemSize{
			ID: uuid.New(), Name: "Large", Price: dec("13.50"), SubcategoryID: pizzaSub,
		},
		pizzaSmall: &entity.MenuItemSize{
			ID: uuid.New(), Name: "Small", Price: dec("7.50"), SubcategoryID: pizzaSub,
		},
		cola: &entity.MenuItem{ID: uuid.New(), Name: "Cola", SubcategoryID: drinkSub, IsAvailable: true},
		colaSize: &entity.MenuItemSize{
			ID: uuid.New(), Name: "Regular", Price: dec("1.50"), SubcategoryID: drinkSub,
		},
	}
	menuRepo.items[env.pizza.ID] = env.pizza
	menuRepo.items[env.cola.ID] = env.cola
	menuRepo.sizes[env.pizzaLarge.ID] = env.pizzaLarge
	menuRepo.sizes[env.pizzaSmall.ID] = env.pizzaSmall
	menuRepo.sizes[env.colaSize.ID] = env.colaSize
	return env
}

func (e *billingEnv) newBill(t *testing.T, method enum.PaymentMethod) *entity.Bill {
	t.Helper()
	bill, err := e.svc.CreateBill(context.Background(), &CreateBillInput{
		CustomerID:    e.customer.ID,
		OrderType:     enum.OrderTypeDineIn,
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return bill
}

func TestCreateBill(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()

	bill := env.newBill(t, enum.PaymentMethodCard)

	assert.Equal(t, enum.BillStatusPending, bill.Status)
	assert.True(t, bill.Subtotal.Equal(dec("0")))
	assert.True(t, bill.TaxRate.Equal(dec("16.00")))
	assert.True(t, bill.TaxAmount.Equal(dec("0")))
	assert.True(t, bill.TotalAmount.Equal(dec("0")))
	assert.False(t, bill.IsPaid)

	_, err := env.svc.CreateBill(ctx, &CreateBillInput{
		CustomerID:    uuid.New(),
		OrderType:     enum.OrderTypeDineIn,
		PaymentMethod: enum.PaymentMethodCard,
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	_, err = env.svc.CreateBill(ctx, &CreateBillInput{
		CustomerID:    env.customer.ID,
		OrderType:     "drone",
		PaymentMethod: enum.PaymentMethodCard,
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestAddItemRecomputesTotals(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	line, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID:   bill.ID,
		ItemID:   env.pizza.ID,
		SizeID:   env.pizzaLarge.ID,
		Quantity: 2,
	})
	require.NoError(t, err)
	assert.True(t, line.UnitPrice.Equal(dec("13.50")), "unit price resolved from size")

	got, err := env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("27.00")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.TaxAmount.Equal(dec("4.32")), "tax = %s", got.TaxAmount)
	assert.True(t, got.TotalAmount.Equal(dec("31.32")), "total = %s", got.TotalAmount)
}

func TestAddItemValidation(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	_, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 0,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)

	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: uuid.New(), SizeID: env.pizzaLarge.ID, Quantity: 1,
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	// Size from another subcategory cannot price this item.
	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.colaSize.ID, Quantity: 1,
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	neg := dec("-1.00")
	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1, UnitPrice: &neg,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)

	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1,
	})
	require.NoError(t, err)

	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 3,
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicateLineItem, "same item and size twice")

	// Same item, different size is a distinct line.
	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaSmall.ID, Quantity: 1,
	})
	require.NoError(t, err)
}

func TestLinePriceFrozenAfterCatalogChange(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	line, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1,
	})
	require.NoError(t, err)

	env.pizzaLarge.Price = dec("99.00")

	_, err = env.svc.UpdateItem(ctx, line.ID, &UpdateItemInput{Quantity: intPtr(2)})
	require.NoError(t, err)

	got, err := env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("27.00")), "line keeps its original unit price")
}

func TestUpdateAndRemoveItem(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	pizzaLine, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1,
	})
	require.NoError(t, err)
	colaLine, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.cola.ID, SizeID: env.colaSize.ID, Quantity: 2,
	})
	require.NoError(t, err)

	// 13.50 + 3.00
	got, err := env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("16.50")))

	_, err = env.svc.UpdateItem(ctx, pizzaLine.ID, &UpdateItemInput{Quantity: intPtr(3)})
	require.NoError(t, err)

	got, err = env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("43.50")))

	_, err = env.svc.UpdateItem(ctx, colaLine.ID, &UpdateItemInput{Quantity: intPtr(0)})
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)

	require.NoError(t, env.svc.RemoveItem(ctx, pizzaLine.ID))

	got, err = env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("3.00")))
	assert.Len(t, got.Items, 1)

	require.NoError(t, env.svc.RemoveItem(ctx, colaLine.ID))

	got, err = env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("0")))
	assert.True(t, got.TaxAmount.Equal(dec("0")))
	assert.True(t, got.TotalAmount.Equal(dec("0")))

	err = env.svc.RemoveItem(ctx, pizzaLine.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestUpdateBill(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	confirmed := enum.BillStatusConfirmed
	_, err := env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{Status: &confirmed})
	require.NoError(t, err)

	// Skipping ahead in the flow is rejected.
	delivered := enum.BillStatusDelivered
	_, err = env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{Status: &delivered})
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	// Dine-in orders never go out for delivery.
	preparing := enum.BillStatusPreparing
	_, err = env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{Status: &preparing})
	require.NoError(t, err)
	ready := enum.BillStatusReady
	_, err = env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{Status: &ready})
	require.NoError(t, err)
	outForDelivery := enum.BillStatusOutForDelivery
	_, err = env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{Status: &outForDelivery})
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	fee := dec("3.455")
	discount := dec("2.00")
	got, err := env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{DeliveryFee: &fee, DiscountAmount: &discount})
	require.NoError(t, err)
	assert.True(t, got.DeliveryFee.Equal(dec("3.46")), "fee quantized half up")
	// 0 subtotal + 0 tax + 3.46 fee - 2.00 discount
	assert.True(t, got.TotalAmount.Equal(dec("1.46")))

	negFee := dec("-1")
	_, err = env.svc.UpdateBill(ctx, bill.ID, &UpdateBillInput{DeliveryFee: &negFee})
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
}

func TestSetTipPercentage(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	price := dec("25.00")
	_, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 2, UnitPrice: &price,
	})
	require.NoError(t, err)

	// One call derives the tip from the fresh subtotal and folds it into
	// the total.
	got, err := env.svc.SetTipPercentage(ctx, bill.ID, dec("10"))
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(dec("50.00")))
	assert.True(t, got.TipAmount.Equal(dec("5.00")))
	// 50.00 + 8.00 tax + 5.00 tip
	assert.True(t, got.TotalAmount.Equal(dec("63.00")), "total = %s", got.TotalAmount)

	_, err = env.svc.SetTipPercentage(ctx, bill.ID, dec("-5"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
}

func TestSetTipAmount(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	got, err := env.svc.SetTipAmount(ctx, bill.ID, dec("2.005"))
	require.NoError(t, err)
	assert.True(t, got.TipAmount.Equal(dec("2.01")), "tip quantized half up")

	_, err = env.svc.SetTipAmount(ctx, bill.ID, dec("-0.01"))
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
}

func TestMarkPaid(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	_, err := env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 2,
	})
	require.NoError(t, err)

	// Paying cash at the till switches the tax rate in the same call.
	cash := enum.PaymentMethodCash
	got, err := env.svc.MarkPaid(ctx, bill.ID, &MarkPaidInput{
		PaymentMethod: &cash,
		Note:          "paid at counter",
	})
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	require.NotNil(t, got.PaidAt)
	assert.Equal(t, enum.PaymentMethodCash, got.PaymentMethod)
	assert.True(t, got.TaxRate.Equal(dec("5.00")))
	assert.True(t, got.TaxAmount.Equal(dec("1.35")), "tax = %s", got.TaxAmount)
	assert.Equal(t, "Payment: paid at counter", got.Notes)

	firstPaidAt := *got.PaidAt

	got, err = env.svc.MarkPaid(ctx, bill.ID, &MarkPaidInput{Note: "duplicate confirmation"})
	require.NoError(t, err)
	assert.Equal(t, firstPaidAt, *got.PaidAt, "paid_at never restamped")
	assert.Equal(t, "Payment: paid at counter\nPayment: duplicate confirmation", got.Notes)
}

func TestCancel(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	got, err := env.svc.Cancel(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusCancelled, got.Status)

	_, err = env.svc.Cancel(ctx, bill.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	// Edits on a cancelled bill are allowed under the default policy.
	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1,
	})
	require.NoError(t, err)
}

func TestCancelledEditsBlockedByPolicy(t *testing.T) {
	env := newBillingEnv(t, false)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	_, err := env.svc.Cancel(ctx, bill.ID)
	require.NoError(t, err)

	_, err = env.svc.AddItem(ctx, &AddItemInput{
		BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, apperror.ErrBillCancelled)

	_, err = env.svc.SetTipAmount(ctx, bill.ID, dec("1.00"))
	assert.ErrorIs(t, err, apperror.ErrBillCancelled)

	_, err = env.svc.MarkPaid(ctx, bill.ID, &MarkPaidInput{})
	assert.ErrorIs(t, err, apperror.ErrBillCancelled)
}

func TestConcurrentAddItems(t *testing.T) {
	env := newBillingEnv(t, true)
	ctx := context.Background()
	bill := env.newBill(t, enum.PaymentMethodCard)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = env.svc.AddItem(ctx, &AddItemInput{
			BillID: bill.ID, ItemID: env.pizza.ID, SizeID: env.pizzaLarge.ID, Quantity: 1,
		})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = env.svc.AddItem(ctx, &AddItemInput{
			BillID: bill.ID, ItemID: env.cola.ID, SizeID: env.colaSize.ID, Quantity: 2,
		})
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Neither write is lost: recomputations serialized on the bill lock
	// and each saw the freshest item set.
	got, err := env.svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.True(t, got.Subtotal.Equal(dec("16.50")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.TotalAmount.Equal(dec("19.14")), "total = %s", got.TotalAmount)
}

func intPtr(v int) *int {
	return &v
}
