// Package errors provides the application error type for the budget API.
// Service-layer failures are returned as *AppError so the transport layer can
// map them to a stable code and HTTP status without leaking internal details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an *AppError with the same code, so that
// errors.Is(err, ErrCycleNotFound) holds for copies made by Wrap and WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Resource conflict", StatusCode: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category errors.
var (
	ErrCategoryNotFound   = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory  = &AppError{Code: "DUPLICATE_CATEGORY", Message: "Category name already exists", StatusCode: http.StatusBadRequest}
	ErrCategoryInUse      = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is referenced by envelopes or transactions", StatusCode: http.StatusConflict}
	ErrRentCategoryExists = &AppError{Code: "RENT_CATEGORY_EXISTS", Message: "A rent category already exists", StatusCode: http.StatusConflict}
)

// Cycle errors.
var (
	ErrCycleNotFound  = &AppError{Code: "CYCLE_NOT_FOUND", Message: "Cycle not found", StatusCode: http.StatusNotFound}
	ErrCycleMonthFull = &AppError{Code: "CYCLE_MONTH_FULL", Message: "This month already has two cycles", StatusCode: http.StatusConflict}
	ErrNoCycles       = &AppError{Code: "NO_CYCLES", Message: "No cycles available", StatusCode: http.StatusNotFound}
)

// Envelope errors.
var (
	ErrEnvelopeNotFound = &AppError{Code: "ENVELOPE_NOT_FOUND", Message: "Envelope not found for this cycle and category", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionKind = &AppError{Code: "INVALID_TRANSACTION_KIND", Message: "Unsupported transaction kind", StatusCode: http.StatusBadRequest}
	ErrCategoryRequired       = &AppError{Code: "CATEGORY_REQUIRED", Message: "Category required for expense", StatusCode: http.StatusBadRequest}
	ErrNoRentCategory         = &AppError{Code: "NO_RENT_CATEGORY", Message: "No rent category defined", StatusCode: http.StatusBadRequest}
	ErrMultipleRentCategories = &AppError{Code: "MULTIPLE_RENT_CATEGORIES", Message: "More than one rent category defined", StatusCode: http.StatusBadRequest}
	ErrCashflowNotInitialized = &AppError{Code: "CASHFLOW_NOT_INITIALIZED", Message: "Cashflow balance has not been initialized", StatusCode: http.StatusInternalServerError}
)
