package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Billing errors
var (
	// ErrInvalidQuantity rejects non-positive line item quantities before
	// anything is written.
	ErrInvalidQuantity = &AppError{Code: http.StatusBadRequest, Message: "Quantity must be a positive integer"}

	// ErrInvalidAmount rejects negative or non-numeric monetary input.
	ErrInvalidAmount = &AppError{Code: http.StatusBadRequest, Message: "Amount must be a non-negative decimal"}

	// ErrDuplicateLineItem rejects a second (item, size) pair on the same bill.
	ErrDuplicateLineItem = &AppError{Code: http.StatusConflict, Message: "This item and size is already on the bill"}

	// ErrLockTimeout is transient: the bill row lock could not be acquired
	// within the storage timeout. The caller decides whether to retry.
	ErrLockTimeout = &AppError{Code: http.StatusServiceUnavailable, Message: "Bill is locked by another operation, retry the request"}

	// ErrRecomputationFailed reports a partial success: the line item write
	// is durable but the bill totals could not be refreshed, even via the
	// unlocked fallback. Any later bill mutation converges the totals.
	ErrRecomputationFailed = &AppError{Code: http.StatusInternalServerError, Message: "Item saved but bill totals could not be recalculated, retry to refresh totals"}

	// ErrBillCancelled rejects mutations on a cancelled bill when the
	// allow-cancelled-edits policy is disabled.
	ErrBillCancelled = &AppError{Code: http.StatusConflict, Message: "Bill is cancelled and can no longer be modified"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
