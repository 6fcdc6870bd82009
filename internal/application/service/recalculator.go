package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/pkg/apperror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Recalculator guarantees at most one in-flight totals recomputation per
// bill. Every line item mutation and every explicit bill action funnels
// through Apply, which serializes on the bill's exclusive row lock and
// always recomputes from the freshest committed line item set.
type Recalculator struct {
	bills repository.BillRepository
	rates entity.TaxRatePolicy
	log   zerolog.Logger
}

// NewRecalculator creates a new recalculator
func NewRecalculator(bills repository.BillRepository, rates entity.TaxRatePolicy) *Recalculator {
	return &Recalculator{
		bills: bills,
		rates: rates,
		log:   log.With().Str("component", "recalculator").Logger(),
	}
}

// Apply runs mutate against the bill under its row lock, re-derives the
// totals and persists everything atomically. Business validation errors and
// lock timeouts surface to the caller unchanged; any other failure of the
// locked path degrades to a single best-effort unlocked recomputation so
// totals are never silently left stale. The degraded pass is logged for
// monitoring. If it fails too, the caller gets ErrRecomputationFailed.
func (r *Recalculator) Apply(ctx context.Context, billID uuid.UUID, mutate func(bill *entity.Bill) error) (*entity.Bill, error) {
	bill, err := r.bills.UpdateLocked(ctx, billID, func(bill *entity.Bill) error {
		if mutate != nil {
			if err := mutate(bill); err != nil {
				return err
			}
		}
		bill.ApplyTotals(r.rates)
		return nil
	})
	if err == nil {
		return bill, nil
	}

	// AppErrors are business rejections or a retryable lock timeout, never
	// a reason to bypass the lock.
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return nil, err
	}

	r.log.Warn().
		Err(err).
		Str("bill_id", billID.String()).
		Bool("degraded", true).
		Msg("bill recomputed without lock")

	bill, fallbackErr := r.applyUnlocked(ctx, billID, mutate)
	if fallbackErr != nil {
		if errors.As(fallbackErr, &appErr) {
			return nil, fallbackErr
		}
		r.log.Error().
			Err(fallbackErr).
			Str("bill_id", billID.String()).
			Msg("unlocked recomputation failed")
		return nil, apperror.ErrRecomputationFailed
	}
	return bill, nil
}

// Recalculate refreshes a bill's totals with no other mutation. Idempotent.
func (r *Recalculator) Recalculate(ctx context.Context, billID uuid.UUID) (*entity.Bill, error) {
	return r.Apply(ctx, billID, nil)
}

func (r *Recalculator) applyUnlocked(ctx context.Context, billID uuid.UUID, mutate func(bill *entity.Bill) error) (*entity.Bill, error) {
	bill, err := r.bills.GetWithItems(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	if mutate != nil {
		if err := mutate(bill); err != nil {
			return nil, err
		}
	}
	bill.ApplyTotals(r.rates)
	if err := r.bills.Update(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}
