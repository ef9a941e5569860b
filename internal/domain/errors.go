package domain

import "errors"

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidThreshold      = errors.New("threshold must be -1 or non-negative")
	ErrLedgerAccountNotFound = errors.New("ledger account not found")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrLedgerUnavailable     = errors.New("ledger unavailable")
)
