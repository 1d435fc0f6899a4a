// Package report builds the trial balance, balance sheet and income
// statement from a ledger.
package report

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/closing"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ErrInvariantViolation indicates a reporting identity does not hold, which
// means a posting or closing bug.
var ErrInvariantViolation = errors.New("accounting identity violated")

// InvariantError describes which identity failed and by how much.
type InvariantError struct {
	Identity string
	Left     decimal.Decimal
	Right    decimal.Decimal
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (%s != %s)", ErrInvariantViolation, e.Identity,
		e.Left.StringFixed(2), e.Right.StringFixed(2))
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// Section is an ordered name→amount mapping with its total.
type Section struct {
	Label   string                     `json:"label"`
	Order   []string                   `json:"order"`
	Amounts map[string]decimal.Decimal `json:"amounts"`
	Total   decimal.Decimal            `json:"total"`
}

func newSection(label string) Section {
	return Section{Label: label, Amounts: make(map[string]decimal.Decimal), Total: decimal.Zero}
}

func (s *Section) add(name string, amount decimal.Decimal) {
	s.Order = append(s.Order, name)
	s.Amounts[name] = amount
	s.Total = s.Total.Add(amount)
}

func sectionOf(label string, v ledger.View) Section {
	s := newSection(label)
	v.Each(func(name string, a *ledger.TAccount) {
		s.add(name, a.Balance())
	})
	return s
}

// TrialBalanceLine is one account row of a trial balance.
type TrialBalanceLine struct {
	Account string          `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account balance in a debit or credit column.
type TrialBalance struct {
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
}

// NewTrialBalance lists every account except the null and income summary
// accounts. A non-negative balance goes in the column of the account's
// normal side; a negative balance goes, as an absolute value, in the other.
func NewTrialBalance(chart *accounts.Chart, l *ledger.Ledger) TrialBalance {
	tb := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, name := range l.Names() {
		if name == chart.Null || name == chart.IncomeSummary {
			continue
		}
		a, _ := l.Account(name)
		b := a.Balance()
		side := a.Type.NormalSide()
		if b.IsNegative() {
			side = side.Opposite()
			b = b.Neg()
		}
		line := TrialBalanceLine{Account: name, Debit: decimal.Zero, Credit: decimal.Zero}
		if side == model.Debit {
			line.Debit = b
			tb.TotalDebit = tb.TotalDebit.Add(b)
		} else {
			line.Credit = b
			tb.TotalCredit = tb.TotalCredit.Add(b)
		}
		tb.Lines = append(tb.Lines, line)
	}
	return tb
}

// BalanceSheet groups permanent account balances after closing.
type BalanceSheet struct {
	Assets      Section `json:"assets"`
	Capital     Section `json:"capital"`
	Liabilities Section `json:"liabilities"`
}

// NewBalanceSheet closes a working copy of l through all four phases, so
// the balance sheet is complete whether or not the period was closed, and
// checks assets == capital + liabilities.
func NewBalanceSheet(chart *accounts.Chart, l *ledger.Ledger) (BalanceSheet, error) {
	p := closing.NewPipeline(chart, l)
	if err := p.CloseAll(); err != nil {
		return BalanceSheet{}, fmt.Errorf("closing for balance sheet: %w", err)
	}
	w := p.Ledger()
	bs := BalanceSheet{
		Assets:      sectionOf("Assets", w.Subset(ledger.OfType(model.AccountTypeAsset))),
		Capital:     sectionOf("Capital", w.Subset(ledger.OfType(model.AccountTypeCapital, model.AccountTypeRetainedEarnings))),
		Liabilities: sectionOf("Liabilities", w.Subset(ledger.OfType(model.AccountTypeLiability))),
	}
	right := bs.Capital.Total.Add(bs.Liabilities.Total)
	if !bs.Assets.Total.Equal(right) {
		return bs, &InvariantError{Identity: "assets = capital + liabilities", Left: bs.Assets.Total, Right: right}
	}
	return bs, nil
}

// IncomeStatement groups income and expense balances for the period.
type IncomeStatement struct {
	Income    Section         `json:"income"`
	Expenses  Section         `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// NewIncomeStatement nets contra income and contra expense accounts on a
// working copy of l and reports the resulting income and expense balances.
// l must not have had its income and expense accounts swept yet. The net
// income is cross-checked against the income summary balance produced by
// sweeping the same working copy.
func NewIncomeStatement(chart *accounts.Chart, l *ledger.Ledger) (IncomeStatement, error) {
	p := closing.NewPipeline(chart, l)
	if err := p.CloseContraTemporary(); err != nil {
		return IncomeStatement{}, fmt.Errorf("closing for income statement: %w", err)
	}
	w := p.Ledger()
	is := IncomeStatement{
		Income:   sectionOf("Income", w.Subset(ledger.OfType(model.AccountTypeIncome))),
		Expenses: sectionOf("Expenses", w.Subset(ledger.OfType(model.AccountTypeExpense))),
	}
	is.NetIncome = is.Income.Total.Sub(is.Expenses.Total)

	isaBefore, err := w.Balance(chart.IncomeSummary)
	if err != nil {
		return is, err
	}
	if err := p.SweepToIncomeSummary(); err != nil {
		return is, fmt.Errorf("closing for income statement: %w", err)
	}
	swept := p.NetIncome().Sub(isaBefore)
	if !swept.Equal(is.NetIncome) {
		return is, &InvariantError{Identity: "net income = income - expenses", Left: swept, Right: is.NetIncome}
	}
	return is, nil
}
