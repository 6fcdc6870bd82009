package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes surfaced by the pgx stack under gorm.
const (
	pgCodeLockNotAvailable = "55P03"
	pgCodeDeadlockDetected = "40P01"
)

// isLockTimeout reports whether err means the row lock could not be acquired
// in time. These are transient and retryable by the caller.
func isLockTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCodeLockNotAvailable || pgErr.Code == pgCodeDeadlockDetected
	}
	return false
}
