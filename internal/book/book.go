// Package book ties a chart, its opening balances and the transaction log
// together. The log is the system of record; the ledger is derived from it.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/closing"
	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

var (
	// ErrAlreadyClosed indicates the period was closed and nothing has been
	// posted since.
	ErrAlreadyClosed = errors.New("period already closed")
	// ErrNothingPosted indicates a batch in which every entry was rejected.
	ErrNothingPosted = errors.New("no entries posted")
	// ErrBalanceMismatch indicates an asserted balance does not hold.
	ErrBalanceMismatch = errors.New("balance mismatch")
)

// Book is a chart, opening balances and an ordered transaction log.
// It is not safe for concurrent use.
type Book struct {
	chart   *accounts.Chart
	opening map[string]decimal.Decimal
	ledger  *ledger.Ledger
	txns    []model.Transaction
	store   journal.Store
	logger  *slog.Logger
}

// Option configures a Book.
type Option func(*Book)

// WithStore persists every recorded transaction to s before applying it.
func WithStore(s journal.Store) Option {
	return func(b *Book) { b.store = s }
}

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) { b.logger = l }
}

// New creates an empty book. The chart is validated and opening balances
// are posted against the null account.
func New(chart *accounts.Chart, opening map[string]decimal.Decimal, opts ...Option) (*Book, error) {
	l, err := chart.BuildLedger(opening)
	if err != nil {
		return nil, err
	}
	b := &Book{
		chart:   chart,
		opening: maps.Clone(opening),
		ledger:  l,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Chart returns the book's chart.
func (b *Book) Chart() *accounts.Chart { return b.chart }

// Opening returns a copy of the opening balances.
func (b *Book) Opening() map[string]decimal.Decimal { return maps.Clone(b.opening) }

// Ledger returns a copy of the current ledger.
func (b *Book) Ledger() *ledger.Ledger { return b.ledger.Clone() }

// Balances returns every account balance.
func (b *Book) Balances() map[string]decimal.Decimal { return b.ledger.Balances() }

// Transactions returns the log in order.
func (b *Book) Transactions() []model.Transaction { return slices.Clone(b.txns) }

// Account returns a copy of the named T-account.
func (b *Book) Account(name string) (*ledger.TAccount, error) {
	a, ok := b.ledger.Account(name)
	if !ok {
		return nil, &ledger.UnknownAccountError{Name: name}
	}
	return a.Clone(), nil
}

// AssertBalance fails with ErrBalanceMismatch unless the named account
// balance equals want.
func (b *Book) AssertBalance(name string, want decimal.Decimal) error {
	got, err := b.ledger.Balance(name)
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("%w: %s is %s, expected %s", ErrBalanceMismatch, name, got.StringFixed(2), want.StringFixed(2))
	}
	return nil
}

// IsClosed reports whether the last transaction is a closing transaction.
func (b *Book) IsClosed() bool {
	return len(b.txns) > 0 && b.txns[len(b.txns)-1].IsClosing()
}

// Post records a single entry as a user transaction.
func (b *Book) Post(ctx context.Context, title string, e model.Entry) (model.Transaction, error) {
	return b.record(ctx, title, model.AuthorUser, []model.Entry{e})
}

// PostCompound records a compound entry as one user transaction. Either
// every resulting entry is recorded or none is.
func (b *Book) PostCompound(ctx context.Context, title string, c model.CompoundEntry) (model.Transaction, error) {
	entries, err := c.Entries(b.chart.Null)
	if err != nil {
		return model.Transaction{}, err
	}
	return b.record(ctx, title, model.AuthorUser, entries)
}

// PostOperation records the named chart operation for amount. An empty
// title defaults to the operation name.
func (b *Book) PostOperation(ctx context.Context, title, op string, amount decimal.Decimal) (model.Transaction, error) {
	e, err := b.chart.Operation(op, amount)
	if err != nil {
		return model.Transaction{}, err
	}
	if title == "" {
		title = op
	}
	return b.record(ctx, title, model.AuthorUser, []model.Entry{e})
}

// PostBatch records the valid entries of a batch as one user transaction.
// Rejected entries are returned in a *ledger.BatchError alongside the
// recorded transaction. If every entry is rejected nothing is recorded and
// the error also wraps ErrNothingPosted.
func (b *Book) PostBatch(ctx context.Context, title string, entries []model.Entry) (model.Transaction, error) {
	w := b.ledger.Clone()
	err := w.PostMany(entries)
	var be *ledger.BatchError
	if err != nil && !errors.As(err, &be) {
		return model.Transaction{}, err
	}
	if be == nil {
		return b.commit(ctx, title, model.AuthorUser, entries, w)
	}

	rejected := make(map[int]bool, len(be.Rejected))
	for _, r := range be.Rejected {
		rejected[r.Index] = true
	}
	var accepted []model.Entry
	for i, e := range entries {
		if !rejected[i] {
			accepted = append(accepted, e)
		}
	}
	b.logger.Warn("batch entries rejected", "title", title, "rejected", len(be.Rejected), "accepted", len(accepted))
	if len(accepted) == 0 {
		return model.Transaction{}, fmt.Errorf("%w: %w", ErrNothingPosted, be)
	}
	txn, err := b.commit(ctx, title, model.AuthorUser, accepted, w)
	if err != nil {
		return model.Transaction{}, err
	}
	return txn, be
}

// Close records the closing entries for the period as one machine
// transaction. It fails with ErrAlreadyClosed if the last transaction is
// already a closing one. When every temporary account is already zero
// there is nothing to record and the zero Transaction is returned.
func (b *Book) Close(ctx context.Context) (model.Transaction, error) {
	if b.IsClosed() {
		return model.Transaction{}, ErrAlreadyClosed
	}
	p := closing.NewPipeline(b.chart, b.ledger)
	if err := p.Close(); err != nil {
		return model.Transaction{}, fmt.Errorf("closing period: %w", err)
	}
	entries := p.ClosingEntries()
	if len(entries) == 0 {
		b.logger.Info("nothing to close")
		return model.Transaction{}, nil
	}
	txn, err := b.commit(ctx, model.ClosingTitle, model.AuthorMachine, entries, p.Ledger())
	if err != nil {
		return model.Transaction{}, err
	}
	b.logger.Info("period closed", "txn_id", txn.ID, "net_income", p.NetIncome().StringFixed(2))
	return txn, nil
}

// TrialBalance reports every account balance.
func (b *Book) TrialBalance() report.TrialBalance {
	return report.NewTrialBalance(b.chart, b.ledger)
}

// BalanceSheet reports permanent accounts as if the period were closed.
func (b *Book) BalanceSheet() (report.BalanceSheet, error) {
	return report.NewBalanceSheet(b.chart, b.ledger)
}

// IncomeStatement reports the current period's income and expenses.
// Before closing those are the ledger's own balances, since the previous
// close zeroed them. Once the period is closed the statement is built from
// the ledger as it stood just before the closing transaction.
func (b *Book) IncomeStatement() (report.IncomeStatement, error) {
	if !b.IsClosed() {
		return report.NewIncomeStatement(b.chart, b.ledger)
	}
	l, err := b.chart.BuildLedger(b.opening)
	if err != nil {
		return report.IncomeStatement{}, err
	}
	for _, txn := range b.txns[:len(b.txns)-1] {
		for _, e := range txn.Entries {
			if err := l.Post(e); err != nil {
				return report.IncomeStatement{}, fmt.Errorf("replaying %s: %w", txn.ID, err)
			}
		}
	}
	return report.NewIncomeStatement(b.chart, l)
}

func (b *Book) record(ctx context.Context, title string, author model.Author, entries []model.Entry) (model.Transaction, error) {
	w := b.ledger.Clone()
	for _, e := range entries {
		if err := w.Post(e); err != nil {
			return model.Transaction{}, err
		}
	}
	return b.commit(ctx, title, author, entries, w)
}

// commit persists the transaction, then installs w as the current ledger.
func (b *Book) commit(ctx context.Context, title string, author model.Author, entries []model.Entry, w *ledger.Ledger) (model.Transaction, error) {
	txn := model.Transaction{
		ID:      id.FormatTxnID(len(b.txns) + 1),
		Title:   title,
		Author:  author,
		Entries: slices.Clone(entries),
	}
	if b.store != nil {
		if err := b.store.Append(ctx, txn); err != nil {
			return model.Transaction{}, fmt.Errorf("persisting %s: %w", txn.ID, err)
		}
	}
	b.ledger = w
	b.txns = append(b.txns, txn)
	b.logger.Debug("transaction recorded", "txn_id", txn.ID, "author", author, "entries", len(entries))
	return txn, nil
}
