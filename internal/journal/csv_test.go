package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(debit, credit, amount string) model.Entry {
	return model.Entry{Debit: debit, Credit: credit, Amount: dec(amount)}
}

func sampleTxns() []model.Transaction {
	return []model.Transaction{
		{
			ID:     "000001",
			Title:  "Invoice, \"ACME\"",
			Author: model.AuthorUser,
			Entries: []model.Entry{
				entry("ar", "sales", "440"),
				entry("cashback", "cash", "41.5"),
			},
		},
		{
			ID:      "000002",
			Title:   model.ClosingTitle,
			Author:  model.AuthorMachine,
			Entries: []model.Entry{entry("sales", "current_profit", "398.50")},
		},
	}
}

func assertTxnsEqual(t *testing.T, want, got []model.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Author, got[i].Author)
		require.Len(t, got[i].Entries, len(want[i].Entries), "txn %s", want[i].ID)
		for j := range want[i].Entries {
			assert.Equal(t, want[i].Entries[j].String(), got[i].Entries[j].String())
		}
	}
}

func TestWriteReadTransactions(t *testing.T) {
	txns := sampleTxns()

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assertTxnsEqual(t, txns, got)
}

func TestMarshalRow(t *testing.T) {
	txns := sampleTxns()
	row := MarshalRow(txns[0], 1)
	assert.Equal(t, []string{"000001", "000001b", `Invoice, "ACME"`, "user", "cashback", "cash", "41.50"}, row)

	got, err := UnmarshalRow(row)
	require.NoError(t, err)
	assert.Equal(t, "000001b", got.EntryID)
	assert.True(t, got.Entry.Amount.Equal(dec("41.5")))
}

func TestUnmarshalRow_Errors(t *testing.T) {
	_, err := UnmarshalRow([]string{"000001"})
	assert.Error(t, err)

	_, err = UnmarshalRow([]string{"000001", "000001a", "t", "user", "a", "b", "ten"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ten")
}

func TestAppendTransactions(t *testing.T) {
	txns := sampleTxns()

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns[:1]))
	require.NoError(t, AppendTransactions(&buf, txns[1:]))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assertTxnsEqual(t, txns, got)
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGroupRows_Errors(t *testing.T) {
	tests := map[string]string{
		"split transaction": Header + `
000001,000001a,t,user,a,b,1.00
000002,000002a,t,user,a,b,1.00
000001,000001b,t,user,a,b,1.00
`,
		"entry ID out of order": Header + `
000001,000001b,t,user,a,b,1.00
`,
		"wrong field count": Header + `
000001,000001a,t,user,a,b
`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}
