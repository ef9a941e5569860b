package domain

import "context"

// Ledger is the external kudos ledger service. The credential both identifies
// and authorizes the account holder.
//
// Transfer returns ErrInsufficientFunds when the sender cannot cover the
// amount. Every other failure wraps ErrLedgerUnavailable. Transfer is not
// idempotent and must not be retried.
type Ledger interface {
	LookupAccount(ctx context.Context, credential string) (username string, err error)
	Transfer(ctx context.Context, credential, toUsername string, amount int) error
}
