package model

import "fmt"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset            AccountType = "asset"
	AccountTypeLiability        AccountType = "liability"
	AccountTypeCapital          AccountType = "capital"
	AccountTypeIncome           AccountType = "income"
	AccountTypeExpense          AccountType = "expense"
	AccountTypeIncomeSummary    AccountType = "income_summary"
	AccountTypeRetainedEarnings AccountType = "retained_earnings"
	AccountTypeNull             AccountType = "null"
	AccountTypeContraAsset      AccountType = "contra_asset"
	AccountTypeContraLiability  AccountType = "contra_liability"
	AccountTypeContraCapital    AccountType = "contra_capital"
	AccountTypeContraIncome     AccountType = "contra_income"
	AccountTypeContraExpense    AccountType = "contra_expense"
)

// Side is the side of a T-account an amount is recorded on.
type Side int

const (
	Debit Side = iota
	Credit
)

func (s Side) String() string {
	if s == Debit {
		return "debit"
	}
	return "credit"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

var normalSides = map[AccountType]Side{
	AccountTypeAsset:            Debit,
	AccountTypeExpense:          Debit,
	AccountTypeNull:             Debit,
	AccountTypeLiability:        Credit,
	AccountTypeCapital:          Credit,
	AccountTypeIncome:           Credit,
	AccountTypeIncomeSummary:    Credit,
	AccountTypeRetainedEarnings: Credit,
	AccountTypeContraAsset:      Credit,
	AccountTypeContraLiability:  Debit,
	AccountTypeContraCapital:    Debit,
	AccountTypeContraIncome:     Debit,
	AccountTypeContraExpense:    Credit,
}

var contraTypes = map[AccountType]AccountType{
	AccountTypeAsset:            AccountTypeContraAsset,
	AccountTypeLiability:        AccountTypeContraLiability,
	AccountTypeCapital:          AccountTypeContraCapital,
	AccountTypeRetainedEarnings: AccountTypeContraCapital,
	AccountTypeIncome:           AccountTypeContraIncome,
	AccountTypeExpense:          AccountTypeContraExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	_, ok := normalSides[t]
	return ok
}

// NormalSide returns the side on which balances of this type increase.
func (t AccountType) NormalSide() Side {
	return normalSides[t]
}

// IsContra reports whether t offsets another account.
func (t AccountType) IsContra() bool {
	switch t {
	case AccountTypeContraAsset, AccountTypeContraLiability, AccountTypeContraCapital,
		AccountTypeContraIncome, AccountTypeContraExpense:
		return true
	}
	return false
}

// IsTemporary reports whether t is zeroed at period end.
func (t AccountType) IsTemporary() bool {
	switch t {
	case AccountTypeIncome, AccountTypeExpense, AccountTypeContraIncome, AccountTypeContraExpense:
		return true
	}
	return false
}

// IsPermanentContra reports whether t offsets a balance sheet account and
// so survives closing.
func (t AccountType) IsPermanentContra() bool {
	return t.IsContra() && !t.IsTemporary()
}

// IsTemporaryContra reports whether t offsets an income or expense account.
func (t AccountType) IsTemporaryContra() bool {
	return t.IsContra() && t.IsTemporary()
}

// ContraOf returns the contra type for accounts offsetting an account of type t.
func ContraOf(t AccountType) (AccountType, error) {
	c, ok := contraTypes[t]
	if !ok {
		return "", fmt.Errorf("account type %q cannot have contra accounts", t)
	}
	return c, nil
}
