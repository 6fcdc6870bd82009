package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/domain/enum"
	"github.com/restroflow/pos-api/pkg/pagination"
)

// BillFilterParams holds filters for listing bills
type BillFilterParams struct {
	Pagination pagination.PaginationParams
	Status     *enum.BillStatus
	CustomerID *uuid.UUID
	IsPaid     *bool
}

// BillRepository defines the interface for bill data access
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)

	// Update persists the bill's own columns (never its associations).
	Update(ctx context.Context, bill *entity.Bill) error

	// UpdateLocked re-fetches the bill and its items under an exclusive row
	// lock, runs fn against the fresh aggregate, and persists the bill's
	// columns atomically before releasing the lock. Concurrent calls for the
	// same bill serialize on the lock; calls for different bills proceed
	// independently. Lock-wait expiry surfaces as apperror.ErrLockTimeout.
	UpdateLocked(ctx context.Context, id uuid.UUID, fn func(bill *entity.Bill) error) (*entity.Bill, error)
}

// BillItemRepository defines the interface for bill line item data access
type BillItemRepository interface {
	Create(ctx context.Context, item *entity.BillItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BillItem, error)
	GetByBillItemSize(ctx context.Context, billID, itemID, sizeID uuid.UUID) (*entity.BillItem, error)
	Update(ctx context.Context, item *entity.BillItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
