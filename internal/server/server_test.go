package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	handler http.Handler
	changes []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := accounts.NewChart()
	c.Assets = []string{"cash", "ar", "goods"}
	c.Expenses = []string{"cogs", "sga"}
	c.Capital = []string{"equity"}
	c.Income = []string{"sales"}
	c.Contra = []accounts.ContraDecl{{Target: "sales", Accounts: []string{"cashback"}}}
	c.RetainedEarnings = "re"
	c.Operations = map[string]accounts.Operation{"invoice": {Debit: "ar", Credit: "sales"}}

	quiet := slog.New(slog.DiscardHandler)
	b, err := book.New(c, map[string]decimal.Decimal{
		"cash": dec("1200"), "goods": dec("300"), "equity": dec("1500"),
	}, book.WithLogger(quiet))
	require.NoError(t, err)

	f := &fixture{}
	s := New(b, "", WithLogger(quiet), WithChangeHook(func(_ context.Context, msg string) {
		f.changes = append(f.changes, msg)
	}))
	f.handler = s.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func entries(rows ...[3]string) []model.Entry {
	out := make([]model.Entry, len(rows))
	for i, r := range rows {
		out[i] = model.Entry{Debit: r[0], Credit: r[1], Amount: dec(r[2])}
	}
	return out
}

func TestTradingPeriod_OverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/entries", postEntriesRequest{
		Title: "Period",
		Entries: entries(
			[3]string{"ar", "sales", "440"},
			[3]string{"cashback", "cash", "41"},
			[3]string{"cash", "ar", "250"},
			[3]string{"cogs", "goods", "250"},
			[3]string{"sga", "cash", "59"},
		),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/close", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	closed := decode[model.Transaction](t, rec)
	assert.Equal(t, model.AuthorMachine, closed.Author)

	rec = f.do(t, http.MethodGet, "/api/v1/reports/balance-sheet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bs := decode[report.BalanceSheet](t, rec)
	assert.True(t, bs.Assets.Amounts["cash"].Equal(dec("1350")))
	assert.True(t, bs.Capital.Amounts["re"].Equal(dec("90")))
	assert.Equal(t, []string{"cash", "ar", "goods"}, bs.Assets.Order)

	rec = f.do(t, http.MethodGet, "/api/v1/reports/income-statement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	is := decode[report.IncomeStatement](t, rec)
	assert.True(t, is.NetIncome.Equal(dec("90")))

	rec = f.do(t, http.MethodGet, "/api/v1/reports/trial-balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tb := decode[report.TrialBalance](t, rec)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

	rec = f.do(t, http.MethodPost, "/api/v1/close", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, []string{"post: 000001 Period", "close: 000002"}, f.changes)
}

func TestPostEntries_PartialBatch(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/entries", postEntriesRequest{
		Title:   "Batch",
		Entries: entries([3]string{"ar", "sales", "100"}, [3]string{"ghost", "cash", "5"}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[postEntriesResponse](t, rec)
	assert.Len(t, resp.Transaction.Entries, 1)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, 1, resp.Rejected[0].Index)
	assert.Contains(t, resp.Rejected[0].Error, "ghost")

	rec = f.do(t, http.MethodGet, "/api/v1/balances", nil)
	balances := decode[map[string]decimal.Decimal](t, rec)
	assert.True(t, balances["ar"].Equal(dec("100")))
	assert.True(t, balances["cash"].Equal(dec("1200")))
}

func TestPostEntries_Errors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/entries", postEntriesRequest{
		Entries: entries([3]string{"ghost", "cash", "5"}),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/entries", postEntriesRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, f.changes)
}

func TestPostCompound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/compound", map[string]any{
		"title":   "Sale",
		"debits":  []map[string]string{{"account": "cash", "amount": "60"}, {"account": "ar", "amount": "40"}},
		"credits": []map[string]string{{"account": "sales", "amount": "100"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	txn := decode[model.Transaction](t, rec)
	assert.Len(t, txn.Entries, 2)

	rec = f.do(t, http.MethodPost, "/api/v1/compound", map[string]any{
		"debits":  []map[string]string{{"account": "cash", "amount": "60"}},
		"credits": []map[string]string{{"account": "sales", "amount": "10"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostOperation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/operations/invoice", map[string]string{"amount": "25"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "invoice", decode[model.Transaction](t, rec).Title)

	rec = f.do(t, http.MethodPost, "/api/v1/operations/refund", map[string]string{"amount": "25"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartAndTransactions(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[[]chartAccount](t, rec)
	require.NotEmpty(t, chart)
	assert.Equal(t, chartAccount{Name: "cash", Type: model.AccountTypeAsset, Title: "Cash"}, chart[0])

	rec = f.do(t, http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestClose_NothingToClose(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/close", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.changes)
}

func TestConcurrentPosts(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/operations/invoice", bytes.NewBufferString(`{"amount":"1"}`))
			f.handler.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	rec := f.do(t, http.MethodGet, "/api/v1/transactions", nil)
	txns := decode[[]model.Transaction](t, rec)
	require.Len(t, txns, 20)
	assert.Equal(t, "000020", txns[19].ID)
}
