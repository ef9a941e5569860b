// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (account.go, escrow.go, ledger.go, reaction.go, etc.)
// with shared types and cross-cutting interfaces. No infrastructure code - just contracts.
// Prevents circular imports by keeping interfaces on the consumer side.
package domain
