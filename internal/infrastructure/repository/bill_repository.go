package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	domainRepo "github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("bill_items.created_at ASC")
		}).
		Preload("Items.Item").
		Preload("Items.Size").
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.IsPaid != nil {
		query = query.Where("is_paid = ?", *params.IsPaid)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order("created_at DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(bill).Error
}

// UpdateLocked serializes every recomputation for a bill behind a
// SELECT ... FOR UPDATE on its row. The items are read inside the same
// transaction, after the lock is held, so fn always sees the freshest
// committed line item set. The bill's columns are persisted before the
// transaction commits and the lock is released.
func (r *billRepository) UpdateLocked(ctx context.Context, id uuid.UUID, fn func(bill *entity.Bill) error) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bill, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Bill")
			}
			if isLockTimeout(err) {
				return apperror.ErrLockTimeout
			}
			return err
		}

		if err := tx.Order("created_at ASC").Find(&bill.Items, "bill_id = ?", id).Error; err != nil {
			return err
		}

		if err := fn(&bill); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Save(&bill).Error
	})
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

type billItemRepository struct {
	db *gorm.DB
}

// NewBillItemRepository creates a new bill item repository
func NewBillItemRepository(db *gorm.DB) domainRepo.BillItemRepository {
	return &billItemRepository{db: db}
}

func (r *billItemRepository) Create(ctx context.Context, item *entity.BillItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	// The composite unique index backstops the service-level duplicate
	// pre-check under races.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrDuplicateLineItem
	}
	return err
}

func (r *billItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.BillItem, error) {
	var item entity.BillItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *billItemRepository) GetByBillItemSize(ctx context.Context, billID, itemID, sizeID uuid.UUID) (*entity.BillItem, error) {
	var item entity.BillItem
	err := r.db.WithContext(ctx).
		First(&item, "bill_id = ? AND item_id = ? AND size_id = ?", billID, itemID, sizeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *billItemRepository) Update(ctx context.Context, item *entity.BillItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *billItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.BillItem{}, "id = ?", id).Error
}
