package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds map business-rule violations on the order/payment path to a
// stable machine-readable label. Every reconciliation failure resolves to
// one of these, never to an undefined intermediate state.
const (
	KindValidation         = "validation_error"
	KindAuth               = "auth_error"
	KindUnknownTransaction = "unknown_transaction"
	KindNotCollectable     = "not_collectable"
	KindAlreadyFinalized   = "already_finalized"
	KindPersistence        = "persistence_error"
)

// Sentinel errors for the order/payment state machine.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingMethod      = errors.New("payment method is required")
	ErrUnknownTransaction = errors.New("no payment record found for transaction reference")
	ErrNotCollectable     = errors.New("order is missing, not completed, or already collected")
	ErrAlreadyFinalized   = errors.New("order is not pending")
)

// AppError represents an application error carrying an HTTP status and a
// taxonomy kind.
type AppError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ValidationErr creates a 400 validation error; no state is mutated by
// operations that return it.
func ValidationErr(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, KindValidation, message, err)
}

// AuthErr creates a 403 error for CSRF or role failures, rejected before
// any business logic runs.
func AuthErr(message string) *AppError {
	return NewAppError(http.StatusForbidden, KindAuth, message, nil)
}

// UnknownTransactionErr creates the error for a tx_ref with no payment row.
// Covers replayed and garbage callbacks.
func UnknownTransactionErr(txRef string) *AppError {
	return NewAppError(http.StatusNotFound, KindUnknownTransaction,
		fmt.Sprintf("no payment record found for transaction %s", txRef), ErrUnknownTransaction)
}

// NotCollectableErr creates the error for an order that cannot be collected.
func NotCollectableErr(orderID uint) *AppError {
	return NewAppError(http.StatusConflict, KindNotCollectable,
		fmt.Sprintf("order #%d is missing, not completed, or already collected", orderID), ErrNotCollectable)
}

// AlreadyFinalizedErr creates the error for a terminal order being finalized
// a second time.
func AlreadyFinalizedErr(orderID uint) *AppError {
	return NewAppError(http.StatusConflict, KindAlreadyFinalized,
		fmt.Sprintf("order #%d has already been finalized", orderID), ErrAlreadyFinalized)
}

// PersistenceErr creates the error for a rolled-back local write. The rows
// remain in their prior state for a later retry.
func PersistenceErr(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindPersistence, message, err)
}

// GetAppError returns the AppError if the error is one.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// RespondWithError maps an error onto the standard response envelope,
// falling back to a 500 for errors outside the taxonomy.
func RespondWithError(c *gin.Context, err error) {
	if appErr := GetAppError(err); appErr != nil {
		resp := StandardResponse{Status: "error", Message: appErr.Message}
		if appErr.Kind != "" {
			resp.Data = gin.H{"kind": appErr.Kind}
		}
		c.JSON(appErr.Code, resp)
		return
	}
	c.JSON(http.StatusInternalServerError, StandardResponse{Status: "error", Message: "Internal server error"})
}
