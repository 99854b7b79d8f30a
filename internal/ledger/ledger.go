// Package ledger provides read access to settled Solana transactions.
// The Ledger interface is the only chain dependency of the payment
// service; tests supply in-memory fakes.
package ledger

import (
	"context"
	"errors"
)

// ErrNotFound indicates the signature is not visible at the queried
// commitment level. The transaction may still be settling.
var ErrNotFound = errors.New("ledger: transaction not found")

// TransactionRecord is the subset of a settled transaction the payment
// service needs: who was involved and how balances moved.
type TransactionRecord struct {
	Signature string
	Slot      uint64

	// Failed is true when the transaction landed but execution errored.
	Failed bool

	// AccountKeys are the base58 account addresses in transaction order.
	// PreBalances and PostBalances are lamport balances indexed the same way.
	AccountKeys  []string
	PreBalances  []uint64
	PostBalances []uint64
}

// Ledger looks up settled transactions on chain.
type Ledger interface {
	// Transaction fetches a settled transaction by signature.
	// Returns ErrNotFound when the signature is unknown at the configured
	// commitment; any other error is a transport failure.
	Transaction(ctx context.Context, signature string) (*TransactionRecord, error)

	// Healthy reports whether the ledger endpoint is reachable.
	Healthy(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
