package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// EntriesParser reads plain entry files with the header
// title,debit,credit,amount.
type EntriesParser struct{}

const (
	entriesNumFields = 4
	entriesColTitle  = 0
	entriesColDebit  = 1
	entriesColCredit = 2
	entriesColAmount = 3
)

// Format returns the parser name.
func (p *EntriesParser) Format() string { return "entries" }

// Parse reads an entries CSV. Amounts are parsed but not validated; the
// book rejects bad entries individually when the batch is posted.
func (p *EntriesParser) Parse(r io.Reader) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = entriesNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading entries CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	if h := strings.ToLower(strings.Join(records[0], ",")); h != "title,debit,credit,amount" {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(records[0], ","))
	}

	lines := make([]Line, 0, len(records)-1)
	for i, rec := range records[1:] {
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[entriesColAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[entriesColAmount], err)
		}
		lines = append(lines, Line{
			Title: strings.TrimSpace(rec[entriesColTitle]),
			Entry: model.Entry{
				Debit:  strings.TrimSpace(rec[entriesColDebit]),
				Credit: strings.TrimSpace(rec[entriesColCredit]),
				Amount: amount,
			},
		})
	}
	return lines, nil
}
