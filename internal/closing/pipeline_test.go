package closing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(debit, credit, amount string) model.Entry {
	return model.Entry{Debit: debit, Credit: credit, Amount: dec(amount)}
}

func tradingPeriod(t *testing.T) (*accounts.Chart, *ledger.Ledger) {
	t.Helper()
	c := accounts.NewChart()
	c.Assets = []string{"cash", "ar", "goods"}
	c.Expenses = []string{"cogs", "sga"}
	c.Capital = []string{"equity"}
	c.Income = []string{"sales"}
	c.Contra = []accounts.ContraDecl{
		{Target: "sales", Accounts: []string{"cashback"}},
		{Target: "goods", Accounts: []string{"writedown"}},
	}
	c.RetainedEarnings = "re"
	require.NoError(t, c.Validate())

	l, err := c.BuildLedger(map[string]decimal.Decimal{
		"cash": dec("1200"), "goods": dec("300"), "equity": dec("1500"),
	})
	require.NoError(t, err)
	require.NoError(t, l.PostMany([]model.Entry{
		entry("ar", "sales", "440"),
		entry("cashback", "cash", "41"),
		entry("cash", "ar", "250"),
		entry("cogs", "goods", "250"),
		entry("sga", "cash", "59"),
	}))
	return c, l
}

func TestClose_ZeroesTemporaryAccounts(t *testing.T) {
	c, l := tradingPeriod(t)
	before := l.Balances()

	p := NewPipeline(c, l)
	require.NoError(t, p.Close())
	assert.Equal(t, PhaseRetainedEarnings, p.Phase())

	after := p.Ledger().Balances()
	for _, name := range []string{"sales", "cashback", "cogs", "sga", accounts.DefaultIncomeSummary} {
		assert.True(t, after[name].IsZero(), "%s = %s", name, after[name])
	}
	assert.True(t, p.NetIncome().Equal(dec("90")))
	assert.True(t, after["re"].Sub(before["re"]).Equal(dec("90")), "retained earnings grows by net income")

	// The caller's ledger is untouched.
	for name, b := range l.Balances() {
		assert.True(t, before[name].Equal(b), "%s changed", name)
	}
}

func TestClose_EntryOrder(t *testing.T) {
	c, l := tradingPeriod(t)
	entries, err := Close(c, l)
	require.NoError(t, err)

	isa := accounts.DefaultIncomeSummary
	want := []model.Entry{
		entry("sales", "cashback", "41"),
		entry("sales", isa, "399"),
		entry(isa, "cogs", "250"),
		entry(isa, "sga", "59"),
		entry(isa, "re", "90"),
	}
	require.Len(t, entries, len(want))
	for i := range want {
		assert.Equal(t, want[i].String(), entries[i].String())
	}
}

func TestClose_IsDeterministic(t *testing.T) {
	c, l := tradingPeriod(t)
	first, err := Close(c, l)
	require.NoError(t, err)
	second, err := Close(c, l)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].String(), second[i].String())
	}
}

func TestCloseAll_NetsPermanentContra(t *testing.T) {
	c, l := tradingPeriod(t)
	require.NoError(t, l.Post(entry("sga", "writedown", "10")))

	p := NewPipeline(c, l)
	require.NoError(t, p.CloseAll())
	b := p.Ledger().Balances()
	assert.True(t, b["writedown"].IsZero())
	assert.True(t, b["goods"].Equal(dec("40")))
	assert.True(t, b["re"].Equal(dec("80")))
}

func TestClose_NetLoss(t *testing.T) {
	c, l := tradingPeriod(t)
	require.NoError(t, l.Post(entry("sga", "cash", "200")))

	p := NewPipeline(c, l)
	require.NoError(t, p.Close())
	assert.True(t, p.NetIncome().Equal(dec("-110")))
	assert.True(t, p.Ledger().Balances()["re"].Equal(dec("-110")))
}

func TestClose_MissingSpecialAccountIsFatal(t *testing.T) {
	c, _ := tradingPeriod(t)
	// A ledger built without the income summary account.
	l, err := ledger.New([]ledger.Spec{
		{Name: "cash", Type: model.AccountTypeAsset},
		{Name: "sales", Type: model.AccountTypeIncome},
	})
	require.NoError(t, err)
	require.NoError(t, l.Post(entry("cash", "sales", "5")))

	_, err = Close(c, l)
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestPhasesMustRunInOrder(t *testing.T) {
	c, l := tradingPeriod(t)
	p := NewPipeline(c, l)
	assert.Error(t, p.CloseIncomeSummary())
	require.NoError(t, p.CloseContraTemporary())
	assert.Error(t, p.CloseContraTemporary())
}

func TestClose_NothingToClose(t *testing.T) {
	c, _ := tradingPeriod(t)
	l, err := c.BuildLedger(nil)
	require.NoError(t, err)
	entries, err := Close(c, l)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
