package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// BankAccounts names the accounts a bank statement line posts to.
type BankAccounts struct {
	// Bank is the asset account the statement belongs to.
	Bank string
	// Inflow is credited for deposits.
	Inflow string
	// Outflow is debited for withdrawals.
	Outflow string
}

// DefaultBankAccounts matches the default chart.
var DefaultBankAccounts = BankAccounts{Bank: "cash", Inflow: "sales", Outflow: "sga"}

// ChaseParser parses Chase checking CSV exports into bank entries.
// Deposits debit the bank account; withdrawals credit it.
type ChaseParser struct {
	Accounts BankAccounts
}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Zero-amount rows are skipped.
func (p *ChaseParser) Parse(r io.Reader) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var lines []Line
	for i, rec := range records[1:] {
		line, ok, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (p *ChaseParser) parseRow(rec []string) (Line, bool, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return Line{}, false, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}
	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return Line{}, false, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}
	if amount.IsZero() {
		return Line{}, false, nil
	}

	acct := p.Accounts
	if acct == (BankAccounts{}) {
		acct = DefaultBankAccounts
	}
	e := model.Entry{Debit: acct.Bank, Credit: acct.Inflow, Amount: amount}
	if amount.IsNegative() {
		e = model.Entry{Debit: acct.Outflow, Credit: acct.Bank, Amount: amount.Neg()}
	}
	return Line{
		Title: fmt.Sprintf("%s %s", date.Format(time.DateOnly), rec[chaseColDesc]),
		Entry: e,
	}, true, nil
}
