package book

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Replay rebuilds a book from a persisted log. The log is checked against
// the chart first; a transaction that no longer posts is an error. Options
// apply after the log is loaded, so a store passed with WithStore is not
// written to.
func Replay(chart *accounts.Chart, opening map[string]decimal.Decimal, txns []model.Transaction, opts ...Option) (*Book, error) {
	if err := journal.Check(txns, chart); err != nil {
		return nil, err
	}
	b, err := New(chart, opening)
	if err != nil {
		return nil, err
	}
	for _, txn := range txns {
		for _, e := range txn.Entries {
			if err := b.ledger.Post(e); err != nil {
				return nil, fmt.Errorf("replaying %s: %w", txn.ID, err)
			}
		}
		b.txns = append(b.txns, txn)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Open loads the book stored in dir: chart.yaml, opening.yaml and the
// transaction log of the given backend. The returned book appends to that
// log; the caller closes the returned store.
func Open(ctx context.Context, dir string, backend journal.Backend, logger *slog.Logger) (*Book, journal.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	chart, err := accounts.Load(filepath.Join(dir, accounts.FileName))
	if err != nil {
		return nil, nil, err
	}
	opening, err := LoadOpening(filepath.Join(dir, OpeningFileName))
	if err != nil {
		return nil, nil, err
	}
	store, err := journal.Open(ctx, backend, dir, logger)
	if err != nil {
		return nil, nil, err
	}
	txns, err := store.ReadAll(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	b, err := Replay(chart, opening, txns, WithStore(store), WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	logger.Debug("book loaded", "dir", dir, "backend", backend, "transactions", len(txns))
	return b, store, nil
}

// Init writes chart.yaml and opening.yaml into dir. Existing files are
// overwritten; the transaction log is left alone.
func Init(dir string, chart *accounts.Chart, opening map[string]decimal.Decimal) error {
	// Reject opening balances the chart cannot post before writing anything.
	if _, err := chart.BuildLedger(opening); err != nil {
		return err
	}
	if err := chart.Save(filepath.Join(dir, accounts.FileName)); err != nil {
		return err
	}
	return SaveOpening(filepath.Join(dir, OpeningFileName), opening)
}
