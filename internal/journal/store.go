// Package journal persists the transaction log that a book is replayed from.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

var (
	// ErrInvalidLog indicates a persisted log that breaks a log invariant.
	ErrInvalidLog = errors.New("invalid transaction log")
	// ErrUnknownBackend indicates an unsupported journal.backend value.
	ErrUnknownBackend = errors.New("unknown journal backend")
	// ErrOutOfSequence indicates an appended transaction whose ID is not the
	// next in the log.
	ErrOutOfSequence = errors.New("transaction out of sequence")
)

// Backend names a Store implementation.
type Backend string

const (
	BackendCSV    Backend = "csv"
	BackendSQLite Backend = "sqlite"
)

// Store is an append-only transaction log.
type Store interface {
	// Append writes txn, whose ID must be the next in sequence.
	Append(ctx context.Context, txn model.Transaction) error
	// ReadAll returns every transaction in append order.
	ReadAll(ctx context.Context) ([]model.Transaction, error)
	// NextSeq returns the sequence number the next transaction must use.
	NextSeq(ctx context.Context) (int, error)
	Close() error
}

// Open opens the store for backend under dir.
func Open(ctx context.Context, backend Backend, dir string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendCSV, "":
		return OpenCSV(dir, logger), nil
	case BackendSQLite:
		return OpenSQLite(ctx, dir, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// checkAppend verifies txn can be appended after a log whose next sequence
// number is next.
func checkAppend(txn model.Transaction, next int) error {
	if len(txn.Entries) == 0 {
		return fmt.Errorf("transaction %s has no entries", txn.ID)
	}
	if want := id.FormatTxnID(next); txn.ID != want {
		return fmt.Errorf("%w: got %s, want %s", ErrOutOfSequence, txn.ID, want)
	}
	return nil
}
