package accounts

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleChart(t *testing.T) *Chart {
	t.Helper()
	c := NewChart()
	for _, name := range []string{"cash", "ar", "goods"} {
		require.NoError(t, c.Add(CategoryAssets, name))
	}
	require.NoError(t, c.Add(CategoryExpenses, "cogs"))
	require.NoError(t, c.Add(CategoryExpenses, "sga"))
	require.NoError(t, c.Add(CategoryCapital, "equity"))
	require.NoError(t, c.Add(CategoryIncome, "sales"))
	require.NoError(t, c.AddContra("sales", "cashback"))
	require.NoError(t, c.SetRetainedEarnings("re"))
	return c
}

func TestAdd_Duplicate(t *testing.T) {
	c := sampleChart(t)
	err := c.Add(CategoryLiabilities, "cash")
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Contains(t, err.Error(), "cash")

	// Special and contra names are taken too.
	assert.ErrorIs(t, c.Add(CategoryAssets, "re"), ErrDuplicateAccount)
	assert.ErrorIs(t, c.Add(CategoryAssets, "cashback"), ErrDuplicateAccount)
	assert.ErrorIs(t, c.Add(CategoryAssets, DefaultNull), ErrDuplicateAccount)
}

func TestAdd_InvalidName(t *testing.T) {
	c := NewChart()
	assert.ErrorIs(t, c.Add(CategoryAssets, ""), ErrInvalidName)
	assert.ErrorIs(t, c.Add(CategoryAssets, "a,b"), ErrInvalidName)
	assert.ErrorIs(t, c.Add(Category("bogus"), "x"), ErrUnknownCategory)
}

func TestAddContra(t *testing.T) {
	c := sampleChart(t)

	err := c.AddContra("ghost", "x")
	assert.ErrorIs(t, err, ErrUnknownAccount)

	// A contra name colliding with a regular account.
	err = c.AddContra("sales", "cash")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Contains(t, err.Error(), `"cash"`)

	err = c.AddContra(DefaultIncomeSummary, "x")
	assert.Error(t, err, "income summary cannot be offset")

	require.NoError(t, c.AddContra("goods", "depreciation"))
	typ, ok := c.AccountType("depreciation")
	require.True(t, ok)
	assert.Equal(t, model.AccountTypeContraAsset, typ)
}

func TestValidate_CollidingContraFailsConstruction(t *testing.T) {
	data := []byte(`
assets: [cash]
capital: [equity]
income: [sales]
contra:
  - target: sales
    accounts: [cash]
`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	var ce *ChartError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Names(), "cash")
}

func TestValidate_AggregatesViolations(t *testing.T) {
	c := NewChart()
	c.Assets = []string{"cash", "cash"}
	c.Income = []string{"sales"}
	c.Expenses = []string{"sales"}
	c.Contra = []ContraDecl{{Target: "ghost", Accounts: []string{"x"}}}

	err := c.Validate()
	require.Error(t, err)

	var ce *ChartError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Violations, 3)
	assert.ElementsMatch(t, []string{"cash", "sales", "ghost"}, ce.Names())
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestAccountType(t *testing.T) {
	c := sampleChart(t)
	tests := map[string]model.AccountType{
		"cash":               model.AccountTypeAsset,
		"cogs":               model.AccountTypeExpense,
		"equity":             model.AccountTypeCapital,
		"sales":              model.AccountTypeIncome,
		"cashback":           model.AccountTypeContraIncome,
		"re":                 model.AccountTypeRetainedEarnings,
		DefaultIncomeSummary: model.AccountTypeIncomeSummary,
		DefaultNull:          model.AccountTypeNull,
	}
	for name, want := range tests {
		got, ok := c.AccountType(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := c.AccountType("ghost")
	assert.False(t, ok)
}

func TestNames_Order(t *testing.T) {
	c := sampleChart(t)
	assert.Equal(t, []string{
		"cash", "ar", "goods",
		"cogs", "sga",
		"equity",
		"sales", "cashback",
		"re", DefaultIncomeSummary, DefaultNull,
	}, c.Names())
}

func TestContraPairs(t *testing.T) {
	c := sampleChart(t)
	require.NoError(t, c.AddContra("goods", "writedown"))
	require.NoError(t, c.AddContra("sales", "discounts"))

	temp := c.ContraPairs(model.AccountType.IsTemporaryContra)
	require.Len(t, temp, 2)
	assert.Equal(t, ContraPair{Target: "sales", Contra: "cashback", Type: model.AccountTypeContraIncome}, temp[0])
	assert.Equal(t, "discounts", temp[1].Contra)

	perm := c.ContraPairs(model.AccountType.IsPermanentContra)
	require.Len(t, perm, 1)
	assert.Equal(t, "writedown", perm[0].Contra)
}

func TestBuildLedger_Empty(t *testing.T) {
	c := sampleChart(t)
	l, err := c.BuildLedger(nil)
	require.NoError(t, err)
	assert.Equal(t, c.Names(), l.Names())

	debits, credits := l.Totals()
	assert.True(t, debits.IsZero())
	assert.True(t, credits.IsZero())
}

func TestBuildLedger_OpeningBalances(t *testing.T) {
	c := sampleChart(t)
	l, err := c.BuildLedger(map[string]decimal.Decimal{
		"cash":   dec("1200"),
		"goods":  dec("300"),
		"equity": dec("1500"),
	})
	require.NoError(t, err)

	b := l.Balances()
	assert.True(t, b["cash"].Equal(dec("1200")))
	assert.True(t, b["goods"].Equal(dec("300")))
	assert.True(t, b["equity"].Equal(dec("1500")))
	assert.True(t, b[DefaultNull].IsZero(), "balanced opening leaves null at zero")

	debits, credits := l.Totals()
	assert.True(t, debits.Equal(credits))
	assert.True(t, debits.Equal(dec("3000")), "sum of abs(opening) = 3000, each leg counted once per side")
}

func TestBuildLedger_NegativeOpening(t *testing.T) {
	c := sampleChart(t)
	l, err := c.BuildLedger(map[string]decimal.Decimal{"cash": dec("-50")})
	require.NoError(t, err)
	assert.True(t, l.Balances()["cash"].Equal(dec("-50")))
}

func TestBuildLedger_UnknownOpening(t *testing.T) {
	c := sampleChart(t)
	_, err := c.BuildLedger(map[string]decimal.Decimal{"ghost": dec("1")})
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestTitlesAndOperations(t *testing.T) {
	c := sampleChart(t)
	assert.Equal(t, "Cash", c.Title("cash"))
	require.NoError(t, c.SetTitle("ar", "Accounts receivable"))
	assert.Equal(t, "Accounts receivable", c.Title("ar"))
	assert.ErrorIs(t, c.SetTitle("ghost", "x"), ErrUnknownAccount)

	require.NoError(t, c.AddOperation("invoice", "ar", "sales"))
	e, err := c.Operation("invoice", dec("10"))
	require.NoError(t, err)
	assert.Equal(t, "ar", e.Debit)
	assert.Equal(t, "sales", e.Credit)

	assert.ErrorIs(t, c.AddOperation("bad", "ar", "ghost"), ErrUnknownAccount)
	_, err = c.Operation("missing", dec("1"))
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestSetSpecial_Collision(t *testing.T) {
	c := sampleChart(t)
	assert.ErrorIs(t, c.SetIncomeSummary("cash"), ErrDuplicateAccount)
	require.NoError(t, c.SetNull("suspense"))
	assert.Equal(t, "suspense", c.Null)
	assert.True(t, c.Exists("suspense"))
	assert.False(t, c.Exists(DefaultNull))
}

func TestSetSpecial_CarriesTitleAndOperations(t *testing.T) {
	c, err := DefaultChart("trading")
	require.NoError(t, err)
	require.NoError(t, c.AddOperation("dividend", DefaultRetainedEarnings, "cash"))

	require.NoError(t, c.SetRetainedEarnings("earnings"))
	require.NoError(t, c.Validate())
	assert.Equal(t, "Retained earnings", c.Title("earnings"))
	assert.NotContains(t, c.Titles, DefaultRetainedEarnings)
	assert.Equal(t, Operation{Debit: "earnings", Credit: "cash"}, c.Operations["dividend"])

	typ, ok := c.AccountType("earnings")
	require.True(t, ok)
	assert.Equal(t, model.AccountTypeRetainedEarnings, typ)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := sampleChart(t)
	require.NoError(t, c.SetTitle("re", "Retained earnings"))
	require.NoError(t, c.AddOperation("invoice", "ar", "sales"))

	path := filepath.Join(t.TempDir(), "books", FileName)
	require.NoError(t, c.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Names(), got.Names())
	assert.Equal(t, "re", got.RetainedEarnings)
	assert.Equal(t, []string{"cashback"}, got.ContraAccounts("sales"))
	assert.Equal(t, "Retained earnings", got.Title("re"))
	assert.Equal(t, Operation{Debit: "ar", Credit: "sales"}, got.Operations["invoice"])
}

func TestDefaultChartIsValid(t *testing.T) {
	c, err := DefaultChart("trading")
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	_, err = c.BuildLedger(nil)
	require.NoError(t, err)

	_, err = DefaultChart("farming")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"asset":       CategoryAssets,
		"Equity":      CategoryCapital,
		"liabilities": CategoryLiabilities,
		"expense":     CategoryExpenses,
		"income":      CategoryIncome,
	} {
		got, err := ParseCategory(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCategory("stuff")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
