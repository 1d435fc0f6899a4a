package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a non-positive amount or sub-cent precision.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnbalanced indicates compound entry debits != credits.
	ErrUnbalanced = errors.New("debits and credits do not balance")
)

var hundred = decimal.NewFromInt(100)

// ValidateAmount checks that amount is positive and has at most 2 decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, amount)
	}
	cents := amount.Mul(hundred)
	if !cents.Equal(cents.Floor()) {
		return fmt.Errorf("%w: %s has more than 2 decimal places", ErrInvalidAmount, amount)
	}
	return nil
}

// Author tells user-posted transactions apart from generated ones.
type Author string

const (
	AuthorUser    Author = "user"
	AuthorMachine Author = "machine"
)

// Entry is a simple double entry: one debit account, one credit account.
type Entry struct {
	Debit  string          `json:"debit" yaml:"debit"`
	Credit string          `json:"credit" yaml:"credit"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

func (e Entry) String() string {
	return fmt.Sprintf("dr %s cr %s %s", e.Debit, e.Credit, e.Amount.StringFixed(2))
}

// Touches reports whether the entry debits or credits name.
func (e Entry) Touches(name string) bool {
	return e.Debit == name || e.Credit == name
}

// Leg is one side of a compound entry.
type Leg struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// CompoundEntry has any number of debit and credit legs with equal sums.
type CompoundEntry struct {
	Debits  []Leg `json:"debits"`
	Credits []Leg `json:"credits"`
}

// Validate checks leg amounts and that debits equal credits.
func (c CompoundEntry) Validate() error {
	if len(c.Debits) == 0 || len(c.Credits) == 0 {
		return fmt.Errorf("%w: compound entry needs at least one debit and one credit leg", ErrUnbalanced)
	}
	totalDebit := decimal.Zero
	for _, l := range c.Debits {
		if err := ValidateAmount(l.Amount); err != nil {
			return fmt.Errorf("debit %s: %w", l.Account, err)
		}
		totalDebit = totalDebit.Add(l.Amount)
	}
	totalCredit := decimal.Zero
	for _, l := range c.Credits {
		if err := ValidateAmount(l.Amount); err != nil {
			return fmt.Errorf("credit %s: %w", l.Account, err)
		}
		totalCredit = totalCredit.Add(l.Amount)
	}
	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: debits (%s) != credits (%s)", ErrUnbalanced,
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return nil
}

// Entries expands the compound entry into simple entries.
//
// A single leg on either side pairs directly with every leg on the other side.
// Otherwise every leg is routed through the null account, whose balance
// ends up unchanged.
func (c CompoundEntry) Entries(null string) ([]Entry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var entries []Entry
	switch {
	case len(c.Debits) == 1:
		for _, cr := range c.Credits {
			entries = append(entries, Entry{Debit: c.Debits[0].Account, Credit: cr.Account, Amount: cr.Amount})
		}
	case len(c.Credits) == 1:
		for _, dr := range c.Debits {
			entries = append(entries, Entry{Debit: dr.Account, Credit: c.Credits[0].Account, Amount: dr.Amount})
		}
	default:
		for _, dr := range c.Debits {
			entries = append(entries, Entry{Debit: dr.Account, Credit: null, Amount: dr.Amount})
		}
		for _, cr := range c.Credits {
			entries = append(entries, Entry{Debit: null, Credit: cr.Account, Amount: cr.Amount})
		}
	}
	return entries, nil
}

// Transaction is a titled group of entries appended to the log as one unit.
type Transaction struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Author  Author  `json:"author"`
	Entries []Entry `json:"entries"`
}

// ClosingTitle is the title of machine-generated closing transactions.
const ClosingTitle = "Closing entries"

// IsClosing reports whether the transaction holds period closing entries.
func (t Transaction) IsClosing() bool {
	return t.Author == AuthorMachine && t.Title == ClosingTitle
}
