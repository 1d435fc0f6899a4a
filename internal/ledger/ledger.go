package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ErrUnknownAccount indicates an entry references an account not in the ledger.
var ErrUnknownAccount = errors.New("unknown account")

// UnknownAccountError names the missing account.
type UnknownAccountError struct {
	Name string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownAccount, e.Name)
}

func (e *UnknownAccountError) Unwrap() error { return ErrUnknownAccount }

// Rejected is an entry that could not be posted as part of a batch.
type Rejected struct {
	Index int
	Entry model.Entry
	Err   error
}

// BatchError lists the entries of a batch that were not posted.
type BatchError struct {
	Rejected []Rejected
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Rejected))
	for i, r := range e.Rejected {
		msgs[i] = fmt.Sprintf("entry %d (%s): %v", r.Index, r.Entry, r.Err)
	}
	return fmt.Sprintf("%d entries rejected: %s", len(e.Rejected), strings.Join(msgs, "; "))
}

// Unwrap exposes every rejection reason to errors.Is.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Rejected))
	for i, r := range e.Rejected {
		errs[i] = r.Err
	}
	return errs
}

// Spec declares one ledger account.
type Spec struct {
	Name string
	Type model.AccountType
}

// Ledger maps account names to T-accounts. The set of names is fixed at construction.
type Ledger struct {
	names    []string
	accounts map[string]*TAccount
}

// New creates a ledger with one empty account per spec.
func New(specs []Spec) (*Ledger, error) {
	l := &Ledger{
		names:    make([]string, 0, len(specs)),
		accounts: make(map[string]*TAccount, len(specs)),
	}
	for _, s := range specs {
		if _, dup := l.accounts[s.Name]; dup {
			return nil, fmt.Errorf("duplicate ledger account %q", s.Name)
		}
		if !s.Type.Valid() {
			return nil, fmt.Errorf("account %q: invalid type %q", s.Name, s.Type)
		}
		l.names = append(l.names, s.Name)
		l.accounts[s.Name] = NewTAccount(s.Type)
	}
	return l, nil
}

// Post applies one entry. Nothing is mutated unless both accounts exist and
// the amount is valid.
func (l *Ledger) Post(e model.Entry) error {
	if err := model.ValidateAmount(e.Amount); err != nil {
		return err
	}
	dr, ok := l.accounts[e.Debit]
	if !ok {
		return &UnknownAccountError{Name: e.Debit}
	}
	cr, ok := l.accounts[e.Credit]
	if !ok {
		return &UnknownAccountError{Name: e.Credit}
	}
	// Amount already validated; these cannot fail.
	_ = dr.Debit(e.Amount)
	_ = cr.Credit(e.Amount)
	return nil
}

// PostMany applies entries in order. Valid entries are posted even when
// others fail; the failures are returned as a *BatchError.
func (l *Ledger) PostMany(entries []model.Entry) error {
	var rejected []Rejected
	for i, e := range entries {
		if err := l.Post(e); err != nil {
			rejected = append(rejected, Rejected{Index: i, Entry: e, Err: err})
		}
	}
	if len(rejected) > 0 {
		return &BatchError{Rejected: rejected}
	}
	return nil
}

// Names returns account names in construction order.
func (l *Ledger) Names() []string {
	return append([]string(nil), l.names...)
}

// Account returns the named account.
func (l *Ledger) Account(name string) (*TAccount, bool) {
	a, ok := l.accounts[name]
	return a, ok
}

// Balance returns the balance of the named account.
func (l *Ledger) Balance(name string) (decimal.Decimal, error) {
	a, ok := l.accounts[name]
	if !ok {
		return decimal.Zero, &UnknownAccountError{Name: name}
	}
	return a.Balance(), nil
}

// Balances returns a snapshot of every account balance.
func (l *Ledger) Balances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l.accounts))
	for name, a := range l.accounts {
		out[name] = a.Balance()
	}
	return out
}

// Totals returns the sum of all debits and all credits across the ledger.
func (l *Ledger) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, a := range l.accounts {
		debits = debits.Add(a.DebitTotal())
		credits = credits.Add(a.CreditTotal())
	}
	return debits, credits
}

// Clone returns a deep copy for use as a working copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		names:    l.Names(),
		accounts: make(map[string]*TAccount, len(l.accounts)),
	}
	for name, a := range l.accounts {
		c.accounts[name] = a.Clone()
	}
	return c
}

// Subset returns a read-only view over the accounts whose type matches pred.
func (l *Ledger) Subset(pred func(model.AccountType) bool) View {
	var names []string
	for _, name := range l.names {
		if pred(l.accounts[name].Type) {
			names = append(names, name)
		}
	}
	return View{ledger: l, names: names}
}

// OfType is a Subset predicate matching any of types.
func OfType(types ...model.AccountType) func(model.AccountType) bool {
	return func(t model.AccountType) bool {
		for _, want := range types {
			if t == want {
				return true
			}
		}
		return false
	}
}

// View is a filtered, ordered window onto a ledger. It reflects later posts.
type View struct {
	ledger *Ledger
	names  []string
}

// Names returns the names in the view in ledger order.
func (v View) Names() []string {
	return append([]string(nil), v.names...)
}

// Len returns the number of accounts in the view.
func (v View) Len() int { return len(v.names) }

// Each calls fn for every account in the view, in order.
func (v View) Each(fn func(name string, a *TAccount)) {
	for _, name := range v.names {
		fn(name, v.ledger.accounts[name])
	}
}

// Balances returns balances for the accounts in the view.
func (v View) Balances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(v.names))
	v.Each(func(name string, a *TAccount) {
		out[name] = a.Balance()
	})
	return out
}

// Total returns the sum of balances in the view.
func (v View) Total() decimal.Decimal {
	total := decimal.Zero
	v.Each(func(_ string, a *TAccount) {
		total = total.Add(a.Balance())
	})
	return total
}
