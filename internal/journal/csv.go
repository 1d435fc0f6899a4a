package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Header is the CSV header for entries.csv.
const Header = "txn_id,entry_id,title,author,debit,credit,amount"

const (
	numFields  = 7
	colTxnID   = 0
	colEntryID = 1
	colTitle   = 2
	colAuthor  = 3
	colDebit   = 4
	colCredit  = 5
	colAmount  = 6
)

// Row is one decoded entries.csv line.
type Row struct {
	TxnID   string
	EntryID string
	Title   string
	Author  model.Author
	Entry   model.Entry
}

// ReadRows reads every row of an entries.csv stream.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading entries CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadTransactions reads an entries.csv stream into transactions.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return GroupRows(rows)
}

// GroupRows folds consecutive rows sharing a txn_id into transactions.
// Title and author come from the first row of each group; entry IDs must
// follow the transaction ID in order.
func GroupRows(rows []Row) ([]model.Transaction, error) {
	var txns []model.Transaction
	seen := make(map[string]bool)
	for i, row := range rows {
		n := len(txns)
		pos := 0
		if n > 0 && txns[n-1].ID == row.TxnID {
			pos = len(txns[n-1].Entries)
		} else if seen[row.TxnID] {
			return nil, fmt.Errorf("row %d: transaction %s is not contiguous", i+2, row.TxnID)
		}
		if want := id.FormatEntryID(row.TxnID, pos); row.EntryID != want {
			return nil, fmt.Errorf("row %d: entry ID %q, want %q", i+2, row.EntryID, want)
		}
		if pos > 0 {
			txns[n-1].Entries = append(txns[n-1].Entries, row.Entry)
			continue
		}
		seen[row.TxnID] = true
		txns = append(txns, model.Transaction{
			ID:      row.TxnID,
			Title:   row.Title,
			Author:  row.Author,
			Entries: []model.Entry{row.Entry},
		})
	}
	return txns, nil
}

// WriteTransactions writes txns to an entries.csv writer (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, txn := range txns {
		for i := range txn.Entries {
			if err := cw.Write(MarshalRow(txn, i)); err != nil {
				return fmt.Errorf("writing %s: %w", id.FormatEntryID(txn.ID, i), err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendTransactions appends txns to an existing entries.csv writer (no header).
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, txn := range txns {
		for i := range txn.Entries {
			if err := cw.Write(MarshalRow(txn, i)); err != nil {
				return fmt.Errorf("writing %s: %w", id.FormatEntryID(txn.ID, i), err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts entry i of txn to a CSV row.
func MarshalRow(txn model.Transaction, i int) []string {
	e := txn.Entries[i]
	row := make([]string, numFields)
	row[colTxnID] = txn.ID
	row[colEntryID] = id.FormatEntryID(txn.ID, i)
	row[colTitle] = txn.Title
	row[colAuthor] = string(txn.Author)
	row[colDebit] = e.Debit
	row[colCredit] = e.Credit
	row[colAmount] = e.Amount.StringFixed(2)
	return row
}

// UnmarshalRow converts a CSV row to a Row.
func UnmarshalRow(record []string) (Row, error) {
	if len(record) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	return Row{
		TxnID:   record[colTxnID],
		EntryID: record[colEntryID],
		Title:   record[colTitle],
		Author:  model.Author(record[colAuthor]),
		Entry: model.Entry{
			Debit:  record[colDebit],
			Credit: record[colCredit],
			Amount: amount,
		},
	}, nil
}
