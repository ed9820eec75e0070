package domain

import "errors"

// Ledger error taxonomy. Every business-rule failure surfaced by the
// transaction engine and ledger store maps to one of these sentinels.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrLimitExceeded     = errors.New("amount outside jar deposit limits")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("transaction is not in the required status")
	ErrAlreadyMember     = errors.New("user is already a member of this jar")
	ErrNotAMember        = errors.New("user is not a member of this jar")
	ErrSettlementFailed  = errors.New("external settlement failed")
	ErrJarNotEmpty       = errors.New("jar balance must be zero")
	ErrConflict          = errors.New("concurrent update conflict")
)

// Input validation errors
var (
	ErrInvalidCurrency = errors.New("unsupported currency")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidInput    = errors.New("invalid input")
)
