package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// TAccount accumulates debit and credit amounts for one account.
type TAccount struct {
	Type    model.AccountType
	Debits  []decimal.Decimal
	Credits []decimal.Decimal
}

// NewTAccount returns an empty account of the given type.
func NewTAccount(t model.AccountType) *TAccount {
	return &TAccount{Type: t}
}

// Debit records amount on the debit side.
func (a *TAccount) Debit(amount decimal.Decimal) error {
	if err := model.ValidateAmount(amount); err != nil {
		return err
	}
	a.Debits = append(a.Debits, amount)
	return nil
}

// Credit records amount on the credit side.
func (a *TAccount) Credit(amount decimal.Decimal) error {
	if err := model.ValidateAmount(amount); err != nil {
		return err
	}
	a.Credits = append(a.Credits, amount)
	return nil
}

// DebitTotal returns the sum of all debits.
func (a *TAccount) DebitTotal() decimal.Decimal {
	return decimal.Sum(decimal.Zero, a.Debits...)
}

// CreditTotal returns the sum of all credits.
func (a *TAccount) CreditTotal() decimal.Decimal {
	return decimal.Sum(decimal.Zero, a.Credits...)
}

// Balance is debits minus credits for debit-normal accounts and the reverse
// for credit-normal accounts.
func (a *TAccount) Balance() decimal.Decimal {
	net := a.DebitTotal().Sub(a.CreditTotal())
	if a.Type.NormalSide() == model.Credit {
		return net.Neg()
	}
	return net
}

// Transfer returns the entry that moves the whole balance of this account,
// known in the ledger as from, to the account named to. ok is false when the
// balance is zero and there is nothing to move.
func (a *TAccount) Transfer(from, to string) (entry model.Entry, ok bool) {
	b := a.Balance()
	if b.IsZero() {
		return model.Entry{}, false
	}
	side := a.Type.NormalSide()
	if b.IsNegative() {
		side = side.Opposite()
		b = b.Neg()
	}
	if side == model.Debit {
		return model.Entry{Debit: to, Credit: from, Amount: b}, true
	}
	return model.Entry{Debit: from, Credit: to, Amount: b}, true
}

// Clone returns a deep copy.
func (a *TAccount) Clone() *TAccount {
	return &TAccount{
		Type:    a.Type,
		Debits:  append([]decimal.Decimal(nil), a.Debits...),
		Credits: append([]decimal.Decimal(nil), a.Credits...),
	}
}
