package service

import "errors"

// Business error taxonomy. Handlers map these to HTTP statuses with errors.Is;
// anything outside this list is an unexpected I/O failure and surfaces as a
// generic server error.
var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPaid       = errors.New("order not paid")
	ErrOrderAlreadyPaid   = errors.New("order already paid")
	ErrOrderCancelled     = errors.New("order cancelled")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrAmountMismatch     = errors.New("payment amount mismatch")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("forbidden")
)
