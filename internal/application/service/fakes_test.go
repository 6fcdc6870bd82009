package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/pkg/apperror"
	"github.com/restroflow/pos-api/pkg/pagination"
)

// fakeStore is a single in-memory backing store shared by the fake
// repositories, so an item created through the item repo is visible to a
// bill re-read through the bill repo, like rows in one database.
type fakeStore struct {
	mu        sync.Mutex
	bills     map[uuid.UUID]*entity.Bill
	items     map[uuid.UUID]*entity.BillItem
	itemOrder []uuid.UUID
	billLocks map[uuid.UUID]*sync.Mutex

	// Injected failures for exercising the recalculator's degraded paths.
	lockedErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bills:     make(map[uuid.UUID]*entity.Bill),
		items:     make(map[uuid.UUID]*entity.BillItem),
		billLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *fakeStore) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.billLocks[id] == nil {
		s.billLocks[id] = &sync.Mutex{}
	}
	return s.billLocks[id]
}

// itemsFor returns copies of the bill's line items in creation order.
// Callers must hold s.mu.
func (s *fakeStore) itemsFor(billID uuid.UUID) []entity.BillItem {
	var out []entity.BillItem
	for _, id := range s.itemOrder {
		item, ok := s.items[id]
		if ok && item.BillID == billID {
			out = append(out, *item)
		}
	}
	return out
}

type fakeBillRepo struct {
	store *fakeStore
}

func (r *fakeBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *bill
	stored.Items = nil
	stored.Customer = nil
	r.store.bills[bill.ID] = &stored
	return nil
}

func (r *fakeBillRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.bills[id]
	if !ok {
		return nil, nil
	}
	bill := *stored
	return &bill, nil
}

func (r *fakeBillRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.bills[id]
	if !ok {
		return nil, nil
	}
	bill := *stored
	bill.Items = r.store.itemsFor(id)
	return &bill, nil
}

func (r *fakeBillRepo) List(ctx context.Context, params *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []entity.Bill
	for _, stored := range r.store.bills {
		if params.Status != nil && stored.Status != *params.Status {
			continue
		}
		if params.CustomerID != nil && stored.CustomerID != *params.CustomerID {
			continue
		}
		if params.IsPaid != nil && stored.IsPaid != *params.IsPaid {
			continue
		}
		out = append(out, *stored)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBillRepo) Update(ctx context.Context, bill *entity.Bill) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.updateErr != nil {
		return r.store.updateErr
	}
	if _, ok := r.store.bills[bill.ID]; !ok {
		return apperror.NewNotFoundError("Bill")
	}
	stored := *bill
	stored.Items = nil
	stored.Customer = nil
	r.store.bills[bill.ID] = &stored
	return nil
}

// UpdateLocked serializes on a per-bill mutex and re-reads the item set
// after acquiring it, matching the row lock semantics of the real
// repository closely enough for concurrency tests.
func (r *fakeBillRepo) UpdateLocked(ctx context.Context, id uuid.UUID, fn func(bill *entity.Bill) error) (*entity.Bill, error) {
	lock := r.store.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if r.store.lockedErr != nil {
		return nil, r.store.lockedErr
	}

	r.store.mu.Lock()
	stored, ok := r.store.bills[id]
	if !ok {
		r.store.mu.Unlock()
		return nil, apperror.NewNotFoundError("Bill")
	}
	bill := *stored
	bill.Items = r.store.itemsFor(id)
	r.store.mu.Unlock()

	if err := fn(&bill); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	persisted := bill
	persisted.Items = nil
	persisted.Customer = nil
	r.store.bills[id] = &persisted
	r.store.mu.Unlock()
	return &bill, nil
}

type fakeBillItemRepo struct {
	store *fakeStore
}

func (r *fakeBillItemRepo) Create(ctx context.Context, item *entity.BillItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.items {
		if existing.BillID == item.BillID && existing.ItemID == item.ItemID && existing.SizeID == item.SizeID {
			return apperror.ErrDuplicateLineItem
		}
	}
	stored := *item
	r.store.items[item.ID] = &stored
	r.store.itemOrder = append(r.store.itemOrder, item.ID)
	return nil
}

func (r *fakeBillItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.BillItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.items[id]
	if !ok {
		return nil, nil
	}
	item := *stored
	return &item, nil
}

func (r *fakeBillItemRepo) GetByBillItemSize(ctx context.Context, billID, itemID, sizeID uuid.UUID) (*entity.BillItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, stored := range r.store.items {
		if stored.BillID == billID && stored.ItemID == itemID && stored.SizeID == sizeID {
			item := *stored
			return &item, nil
		}
	}
	return nil, nil
}

func (r *fakeBillItemRepo) Update(ctx context.Context, item *entity.BillItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.items[item.ID]; !ok {
		return apperror.NewNotFoundError("Bill item")
	}
	stored := *item
	r.store.items[item.ID] = &stored
	return nil
}

func (r *fakeBillItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.items[id]; !ok {
		return apperror.NewNotFoundError("Bill item")
	}
	delete(r.store.items, id)
	return nil
}

type fakeMenuRepo struct {
	categories []entity.MenuCategory
	items      map[uuid.UUID]*entity.MenuItem
	sizes      map[uuid.UUID]*entity.MenuItemSize
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{
		items: make(map[uuid.UUID]*entity.MenuItem),
		sizes: make(map[uuid.UUID]*entity.MenuItemSize),
	}
}

func (r *fakeMenuRepo) ListCategories(ctx context.Context) ([]entity.MenuCategory, error) {
	return r.categories, nil
}

func (r *fakeMenuRepo) ListItems(ctx context.Context, params *repository.MenuFilterParams) ([]entity.MenuItem, error) {
	var out []entity.MenuItem
	for _, item := range r.items {
		if params != nil && params.SubcategoryID != nil && item.SubcategoryID != *params.SubcategoryID {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeMenuRepo) ListSizes(ctx context.Context, params *repository.MenuFilterParams) ([]entity.MenuItemSize, error) {
	var out []entity.MenuItemSize
	for _, size := range r.sizes {
		if params != nil && params.SubcategoryID != nil && size.SubcategoryID != *params.SubcategoryID {
			continue
		}
		out = append(out, *size)
	}
	return out, nil
}

func (r *fakeMenuRepo) GetItem(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	stored, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	item := *stored
	return &item, nil
}

func (r *fakeMenuRepo) GetSize(ctx context.Context, id uuid.UUID) (*entity.MenuItemSize, error) {
	stored, ok := r.sizes[id]
	if !ok {
		return nil, nil
	}
	size := *stored
	return &size, nil
}

func (r *fakeMenuRepo) FullMenu(ctx context.Context) ([]entity.MenuCategory, error) {
	return r.categories, nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*entity.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *customer
	r.customers[customer.ID] = &stored
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	customer := *stored
	return &customer, nil
}

func (r *fakeCustomerRepo) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.customers {
		if stored.Phone == phone {
			customer := *stored
			return &customer, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Customer
	for _, stored := range r.customers {
		if search != "" && !strings.Contains(strings.ToLower(stored.FirstName+" "+stored.LastName+" "+stored.Phone), strings.ToLower(search)) {
			continue
		}
		out = append(out, *stored)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[customer.ID]; !ok {
		return apperror.NewNotFoundError("Customer")
	}
	stored := *customer
	r.customers[customer.ID] = &stored
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return apperror.NewNotFoundError("Customer")
	}
	delete(r.customers, id)
	return nil
}
