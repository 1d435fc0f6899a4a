package journal

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	TxnID       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TxnID, e.Description)
}

// AccountChecker tests whether an account name exists in the chart.
type AccountChecker interface {
	Exists(name string) bool
}

// ValidateTransactions enforces the log invariants on a sequence of
// transactions as they would be stored.
func ValidateTransactions(txns []model.Transaction, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	for i, txn := range txns {
		// Invariant 1: IDs are unique and sequential from 1.
		seq, err := id.ParseTxnID(txn.ID)
		switch {
		case err != nil || id.FormatTxnID(seq) != txn.ID:
			errs = append(errs, ValidationError{
				Invariant:   1,
				TxnID:       txn.ID,
				Description: "malformed transaction ID",
			})
		case seq != i+1:
			errs = append(errs, ValidationError{
				Invariant:   1,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("expected sequence %d, got %d", i+1, seq),
			})
		}

		// Invariant 2: a transaction holds at least one entry.
		if len(txn.Entries) == 0 {
			errs = append(errs, ValidationError{
				Invariant:   2,
				TxnID:       txn.ID,
				Description: "transaction has no entries",
			})
		}

		// Invariant 3: known author.
		if txn.Author != model.AuthorUser && txn.Author != model.AuthorMachine {
			errs = append(errs, ValidationError{
				Invariant:   3,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("unknown author %q", txn.Author),
			})
		}

		for j, e := range txn.Entries {
			entryID := id.FormatEntryID(txn.ID, j)

			// Invariant 4: valid account references.
			for _, name := range []string{e.Debit, e.Credit} {
				if !accounts.Exists(name) {
					errs = append(errs, ValidationError{
						Invariant:   4,
						TxnID:       entryID,
						Description: fmt.Sprintf("unknown account %q", name),
					})
				}
			}

			// Invariant 5: positive amounts with at most 2 decimal places.
			if err := model.ValidateAmount(e.Amount); err != nil {
				errs = append(errs, ValidationError{
					Invariant:   5,
					TxnID:       entryID,
					Description: err.Error(),
				})
			}
		}
	}
	return errs
}

// Check runs ValidateTransactions and joins the violations into one error.
func Check(txns []model.Transaction, accounts AccountChecker) error {
	verrs := ValidateTransactions(txns, accounts)
	if len(verrs) == 0 {
		return nil
	}
	errs := make([]error, len(verrs))
	for i, ve := range verrs {
		errs[i] = ve
	}
	return fmt.Errorf("%w: %w", ErrInvalidLog, errors.Join(errs...))
}
