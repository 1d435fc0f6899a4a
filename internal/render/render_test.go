package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

type upperTitles struct{}

func (upperTitles) Title(name string) string { return strings.ToUpper(name) }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func section(label string, pairs ...string) report.Section {
	s := report.Section{Label: label, Amounts: map[string]decimal.Decimal{}, Total: decimal.Zero}
	for i := 0; i < len(pairs); i += 2 {
		s.Order = append(s.Order, pairs[i])
		s.Amounts[pairs[i]] = dec(pairs[i+1])
		s.Total = s.Total.Add(dec(pairs[i+1]))
	}
	return s
}

func TestBalanceSheet(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, upperTitles{})
	require.NoError(t, r.BalanceSheet(report.BalanceSheet{
		Assets:      section("Assets", "cash", "1350", "ar", "190", "goods", "50"),
		Capital:     section("Capital", "equity", "1500", "re", "90"),
		Liabilities: section("Liabilities"),
	}))

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "no escape codes when not a terminal")
	assert.Contains(t, out, "Balance sheet")
	assert.Contains(t, out, "CASH")
	assert.Contains(t, out, "1350.00")
	assert.Contains(t, out, "Total assets")
	assert.Contains(t, out, "1590.00")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "[BALANCED]")

	// Amount columns line up between items and totals.
	var cashCol, totalCol int
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "CASH") {
			cashCol = strings.Index(line, "1350.00") + len("1350.00")
		}
		if strings.Contains(line, "Total assets") {
			totalCol = strings.Index(line, "1590.00") + len("1590.00")
		}
	}
	assert.Equal(t, cashCol, totalCol)
}

func TestBalanceSheet_Unbalanced(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, upperTitles{}).BalanceSheet(report.BalanceSheet{
		Assets:      section("Assets", "cash", "10"),
		Capital:     section("Capital"),
		Liabilities: section("Liabilities"),
	}))
	assert.Contains(t, buf.String(), "[UNBALANCED]")
}

func TestIncomeStatement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, upperTitles{}).IncomeStatement(report.IncomeStatement{
		Income:    section("Income", "sales", "399"),
		Expenses:  section("Expenses", "cogs", "250", "sga", "59"),
		NetIncome: dec("90"),
	}))
	out := buf.String()
	assert.Contains(t, out, "SALES")
	assert.Contains(t, out, "Net income")
	assert.Contains(t, out, "90.00")

	buf.Reset()
	require.NoError(t, New(&buf, upperTitles{}).IncomeStatement(report.IncomeStatement{
		Income:    section("Income"),
		Expenses:  section("Expenses", "sga", "5"),
		NetIncome: dec("-5"),
	}))
	assert.Contains(t, buf.String(), "Net loss")
}

func TestTrialBalance(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, upperTitles{}).TrialBalance(report.TrialBalance{
		Lines: []report.TrialBalanceLine{
			{Account: "cash", Debit: dec("100"), Credit: decimal.Zero},
			{Account: "equity", Debit: decimal.Zero, Credit: dec("100")},
		},
		TotalDebit:  dec("100"),
		TotalCredit: dec("100"),
	}))
	lines := strings.Split(buf.String(), "\n")
	var cash string
	for _, l := range lines {
		if strings.Contains(l, "CASH") {
			cash = l
		}
	}
	assert.Equal(t, "100.00", strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cash), "CASH")))
	assert.Contains(t, buf.String(), "Total")
}

func TestLongTitlesAreTruncated(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", 50)
	require.NoError(t, New(&buf, upperTitles{}).Balances([]string{long}, map[string]decimal.Decimal{long: dec("1")}))
	assert.Contains(t, buf.String(), long, "balances print raw names")

	assert.Equal(t, nameWidth, len(New(&buf, upperTitles{}).name(long, nameWidth)))
}

func TestTransaction(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, upperTitles{}).Transaction(model.Transaction{
		ID: "000003", Title: "Invoice", Author: model.AuthorUser,
		Entries: []model.Entry{{Debit: "ar", Credit: "sales", Amount: dec("440")}},
	}))
	out := buf.String()
	assert.Contains(t, out, "000003 Invoice (user)")
	assert.Contains(t, out, "dr ar")
	assert.Contains(t, out, "440.00")
}

func TestAccount(t *testing.T) {
	a := ledger.NewTAccount(model.AccountTypeAsset)
	for _, d := range []string{"1200", "250"} {
		require.NoError(t, a.Debit(dec(d)))
	}
	for _, c := range []string{"41", "59", "10"} {
		require.NoError(t, a.Credit(dec(c)))
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, upperTitles{}).Account("cash", a))
	out := buf.String()

	assert.Contains(t, out, "CASH")
	assert.Contains(t, out, "(cash, asset)")
	assert.Contains(t, out, "\n       1200.00        41.00\n")
	assert.Contains(t, out, "\n                      10.00\n", "credit column keeps its place without a debit")
	assert.Contains(t, out, "\n       1450.00       110.00\n")
	assert.Regexp(t, `Balance\s+1340\.00`, out)
}
