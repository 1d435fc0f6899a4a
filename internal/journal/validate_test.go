package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts map[string]bool

func (m mockAccounts) Exists(name string) bool { return m[name] }

func newMockAccounts(names ...string) mockAccounts {
	m := make(mockAccounts)
	for _, n := range names {
		m[n] = true
	}
	return m
}

func invariants(errs []ValidationError) []int {
	var out []int
	for _, e := range errs {
		out = append(out, e.Invariant)
	}
	return out
}

func TestValidateTransactions_Valid(t *testing.T) {
	accts := newMockAccounts("ar", "sales", "cashback", "cash", "current_profit")
	assert.Empty(t, ValidateTransactions(sampleTxns(), accts))
	assert.NoError(t, Check(sampleTxns(), accts))
}

func TestValidateTransactions_Violations(t *testing.T) {
	accts := newMockAccounts("cash", "sales")
	tests := []struct {
		name string
		txns []model.Transaction
		want []int
	}{
		{
			name: "gap in sequence",
			txns: []model.Transaction{
				{ID: "000001", Author: model.AuthorUser, Entries: []model.Entry{entry("cash", "sales", "1")}},
				{ID: "000003", Author: model.AuthorUser, Entries: []model.Entry{entry("cash", "sales", "1")}},
			},
			want: []int{1},
		},
		{
			name: "malformed ID",
			txns: []model.Transaction{
				{ID: "1", Author: model.AuthorUser, Entries: []model.Entry{entry("cash", "sales", "1")}},
			},
			want: []int{1},
		},
		{
			name: "empty transaction",
			txns: []model.Transaction{{ID: "000001", Author: model.AuthorUser}},
			want: []int{2},
		},
		{
			name: "unknown author",
			txns: []model.Transaction{
				{ID: "000001", Author: "robot", Entries: []model.Entry{entry("cash", "sales", "1")}},
			},
			want: []int{3},
		},
		{
			name: "unknown accounts",
			txns: []model.Transaction{
				{ID: "000001", Author: model.AuthorUser, Entries: []model.Entry{entry("ghost", "phantom", "1")}},
			},
			want: []int{4, 4},
		},
		{
			name: "sub-cent amount",
			txns: []model.Transaction{
				{ID: "000001", Author: model.AuthorUser, Entries: []model.Entry{entry("cash", "sales", "1.005")}},
			},
			want: []int{5},
		},
		{
			name: "non-positive amount",
			txns: []model.Transaction{
				{ID: "000001", Author: model.AuthorUser, Entries: []model.Entry{entry("cash", "sales", "0")}},
			},
			want: []int{5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTransactions(tt.txns, accts)
			assert.Equal(t, tt.want, invariants(errs))
		})
	}
}

func TestCheck_JoinsViolations(t *testing.T) {
	txns := []model.Transaction{
		{ID: "000002", Author: "robot", Entries: []model.Entry{entry("cash", "ghost", "1")}},
	}
	err := Check(txns, newMockAccounts("cash"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLog)
	assert.Contains(t, err.Error(), "invariant 1 [000002]")
	assert.Contains(t, err.Error(), `unknown account "ghost"`)
}
