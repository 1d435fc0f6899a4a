package accounts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

var (
	// ErrDuplicateAccount indicates an account name is already declared.
	ErrDuplicateAccount = errors.New("duplicate account")
	// ErrUnknownAccount indicates a name not declared in the chart.
	ErrUnknownAccount = ledger.ErrUnknownAccount
	// ErrUnknownCategory indicates an invalid category name.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidName indicates an empty or malformed account name.
	ErrInvalidName = errors.New("invalid account name")
	// ErrUnknownOperation indicates an operation name not in the chart.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrUnknownTemplate indicates no starter chart has the given name.
	ErrUnknownTemplate = errors.New("unknown chart template")
)

// Default names of the special accounts.
const (
	DefaultIncomeSummary    = "current_profit"
	DefaultRetainedEarnings = "retained_earnings"
	DefaultNull             = "null"
)

// Category is one of the five regular account lists in a chart.
type Category string

const (
	CategoryAssets      Category = "assets"
	CategoryLiabilities Category = "liabilities"
	CategoryCapital     Category = "capital"
	CategoryIncome      Category = "income"
	CategoryExpenses    Category = "expenses"
)

// Categories in the order accounts are laid out in a ledger.
var Categories = []Category{
	CategoryAssets,
	CategoryExpenses,
	CategoryCapital,
	CategoryLiabilities,
	CategoryIncome,
}

var categoryTypes = map[Category]model.AccountType{
	CategoryAssets:      model.AccountTypeAsset,
	CategoryLiabilities: model.AccountTypeLiability,
	CategoryCapital:     model.AccountTypeCapital,
	CategoryIncome:      model.AccountTypeIncome,
	CategoryExpenses:    model.AccountTypeExpense,
}

// ParseCategory accepts singular and plural category names ("asset", "equity", ...).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asset", "assets":
		return CategoryAssets, nil
	case "liability", "liabilities":
		return CategoryLiabilities, nil
	case "capital", "equity":
		return CategoryCapital, nil
	case "income":
		return CategoryIncome, nil
	case "expense", "expenses":
		return CategoryExpenses, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// AccountType returns the account type of regular accounts in c.
func (c Category) AccountType() model.AccountType {
	return categoryTypes[c]
}

// Operation is a named debit/credit account pair.
type Operation struct {
	Debit  string `yaml:"debit" json:"debit"`
	Credit string `yaml:"credit" json:"credit"`
}

// ContraPair links a contra account to the account it offsets.
type ContraPair struct {
	Target string
	Contra string
	Type   model.AccountType
}

// Chart is the chart of accounts. Use NewChart or Load; mutate only through
// its methods so the name lookup stays current.
type Chart struct {
	Assets           []string             `yaml:"assets"`
	Liabilities      []string             `yaml:"liabilities"`
	Capital          []string             `yaml:"capital"`
	Income           []string             `yaml:"income"`
	Expenses         []string             `yaml:"expenses"`
	Contra           []ContraDecl         `yaml:"contra,omitempty"`
	IncomeSummary    string               `yaml:"income_summary"`
	RetainedEarnings string               `yaml:"retained_earnings"`
	Null             string               `yaml:"null"`
	Titles           map[string]string    `yaml:"titles,omitempty"`
	Operations       map[string]Operation `yaml:"operations,omitempty"`

	types map[string]model.AccountType
}

// ContraDecl lists the contra accounts offsetting Target, in declaration order.
type ContraDecl struct {
	Target   string   `yaml:"target"`
	Accounts []string `yaml:"accounts"`
}

// NewChart returns an empty chart with default special account names.
func NewChart() *Chart {
	c := &Chart{
		IncomeSummary:    DefaultIncomeSummary,
		RetainedEarnings: DefaultRetainedEarnings,
		Null:             DefaultNull,
	}
	c.reindex()
	return c
}

func (c *Chart) list(cat Category) *[]string {
	switch cat {
	case CategoryAssets:
		return &c.Assets
	case CategoryLiabilities:
		return &c.Liabilities
	case CategoryCapital:
		return &c.Capital
	case CategoryIncome:
		return &c.Income
	case CategoryExpenses:
		return &c.Expenses
	}
	return nil
}

// Accounts returns the regular account names declared in cat.
func (c *Chart) Accounts(cat Category) []string {
	if l := c.list(cat); l != nil {
		return append([]string(nil), *l...)
	}
	return nil
}

// reindex rebuilds the name→type lookup. Later declarations do not
// overwrite earlier ones; Validate reports the collision.
func (c *Chart) reindex() {
	types := make(map[string]model.AccountType)
	set := func(name string, t model.AccountType) {
		if _, ok := types[name]; !ok && name != "" {
			types[name] = t
		}
	}
	for _, cat := range Categories {
		for _, name := range *c.list(cat) {
			set(name, cat.AccountType())
		}
	}
	set(c.RetainedEarnings, model.AccountTypeRetainedEarnings)
	set(c.IncomeSummary, model.AccountTypeIncomeSummary)
	set(c.Null, model.AccountTypeNull)
	for _, d := range c.Contra {
		targetType, ok := types[d.Target]
		if !ok {
			continue
		}
		contraType, err := model.ContraOf(targetType)
		if err != nil {
			continue
		}
		for _, name := range d.Accounts {
			set(name, contraType)
		}
	}
	c.types = types
}

// AccountType resolves a declared name.
func (c *Chart) AccountType(name string) (model.AccountType, bool) {
	if c.types == nil {
		c.reindex()
	}
	t, ok := c.types[name]
	return t, ok
}

// Exists reports whether name is declared anywhere in the chart.
func (c *Chart) Exists(name string) bool {
	_, ok := c.AccountType(name)
	return ok
}

// Add appends name to a category list.
func (c *Chart) Add(cat Category, name string) error {
	l := c.list(cat)
	if l == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	if err := checkName(name); err != nil {
		return err
	}
	if c.Exists(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateAccount, name)
	}
	*l = append(*l, name)
	c.reindex()
	return nil
}

// AddContra declares contra as offsetting target.
func (c *Chart) AddContra(target, contra string) error {
	t, ok := c.AccountType(target)
	if !ok {
		return fmt.Errorf("%w: contra target %q", ErrUnknownAccount, target)
	}
	if _, err := model.ContraOf(t); err != nil {
		return fmt.Errorf("contra target %q: %w", target, err)
	}
	if err := checkName(contra); err != nil {
		return err
	}
	if c.Exists(contra) {
		return fmt.Errorf("%w: %q", ErrDuplicateAccount, contra)
	}
	for i := range c.Contra {
		if c.Contra[i].Target == target {
			c.Contra[i].Accounts = append(c.Contra[i].Accounts, contra)
			c.reindex()
			return nil
		}
	}
	c.Contra = append(c.Contra, ContraDecl{Target: target, Accounts: []string{contra}})
	c.reindex()
	return nil
}

// ContraAccounts returns the contra accounts declared for target.
func (c *Chart) ContraAccounts(target string) []string {
	for _, d := range c.Contra {
		if d.Target == target {
			return append([]string(nil), d.Accounts...)
		}
	}
	return nil
}

// SetIncomeSummary renames the income summary account.
func (c *Chart) SetIncomeSummary(name string) error {
	return c.setSpecial(&c.IncomeSummary, name)
}

// SetRetainedEarnings renames the retained earnings account.
func (c *Chart) SetRetainedEarnings(name string) error {
	return c.setSpecial(&c.RetainedEarnings, name)
}

// SetNull renames the null account.
func (c *Chart) SetNull(name string) error {
	return c.setSpecial(&c.Null, name)
}

func (c *Chart) setSpecial(field *string, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if name == *field {
		return nil
	}
	if c.Exists(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateAccount, name)
	}
	if len(c.ContraAccounts(*field)) > 0 {
		return fmt.Errorf("cannot rename %q: it has contra accounts", *field)
	}
	old := *field
	*field = name
	if title, ok := c.Titles[old]; ok {
		delete(c.Titles, old)
		c.Titles[name] = title
	}
	for opName, op := range c.Operations {
		if op.Debit == old {
			op.Debit = name
		}
		if op.Credit == old {
			op.Credit = name
		}
		c.Operations[opName] = op
	}
	c.reindex()
	return nil
}

// SetTitle sets the display title of an account.
func (c *Chart) SetTitle(name, title string) error {
	if !c.Exists(name) {
		return fmt.Errorf("%w: %q", ErrUnknownAccount, name)
	}
	if c.Titles == nil {
		c.Titles = make(map[string]string)
	}
	c.Titles[name] = title
	return nil
}

// Title returns the display title of an account, defaulting to its name
// with underscores as spaces and the first letter capitalized.
func (c *Chart) Title(name string) string {
	if t, ok := c.Titles[name]; ok {
		return t
	}
	s := strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// AddOperation names a debit/credit account pair.
func (c *Chart) AddOperation(name, debit, credit string) error {
	if name == "" {
		return fmt.Errorf("%w: empty operation name", ErrInvalidName)
	}
	for _, acct := range []string{debit, credit} {
		if !c.Exists(acct) {
			return fmt.Errorf("operation %q: %w: %q", name, ErrUnknownAccount, acct)
		}
	}
	if c.Operations == nil {
		c.Operations = make(map[string]Operation)
	}
	c.Operations[name] = Operation{Debit: debit, Credit: credit}
	return nil
}

// Operation returns the entry for a named operation.
func (c *Chart) Operation(name string, amount decimal.Decimal) (model.Entry, error) {
	op, ok := c.Operations[name]
	if !ok {
		return model.Entry{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return model.Entry{Debit: op.Debit, Credit: op.Credit, Amount: amount}, nil
}

// Names returns every account name in ledger order: each category followed
// by the contra accounts of its members, then the special accounts.
func (c *Chart) Names() []string {
	var names []string
	for _, cat := range Categories {
		for _, name := range *c.list(cat) {
			names = append(names, name)
			names = append(names, c.ContraAccounts(name)...)
		}
	}
	names = append(names, c.RetainedEarnings)
	names = append(names, c.ContraAccounts(c.RetainedEarnings)...)
	names = append(names, c.IncomeSummary, c.Null)
	return names
}

// ContraPairs returns the (target, contra) pairs whose contra type passes
// keep, in chart declaration order.
func (c *Chart) ContraPairs(keep func(model.AccountType) bool) []ContraPair {
	var pairs []ContraPair
	for _, d := range c.Contra {
		for _, name := range d.Accounts {
			t, ok := c.AccountType(name)
			if ok && keep(t) {
				pairs = append(pairs, ContraPair{Target: d.Target, Contra: name, Type: t})
			}
		}
	}
	return pairs
}

// BuildLedger validates the chart and creates a ledger with one empty
// account per name, then posts opening balances against the null account.
func (c *Chart) BuildLedger(opening map[string]decimal.Decimal) (*ledger.Ledger, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	names := c.Names()
	specs := make([]ledger.Spec, len(names))
	for i, name := range names {
		t, _ := c.AccountType(name)
		specs[i] = ledger.Spec{Name: name, Type: t}
	}
	l, err := ledger.New(specs)
	if err != nil {
		return nil, err
	}
	entries, err := c.OpeningEntries(opening)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := l.Post(e); err != nil {
			return nil, fmt.Errorf("posting opening balance: %w", err)
		}
	}
	return l, nil
}

// OpeningEntries converts opening balances into entries against the null
// account, in chart order. Zero balances are skipped.
func (c *Chart) OpeningEntries(opening map[string]decimal.Decimal) ([]model.Entry, error) {
	for name := range opening {
		if !c.Exists(name) {
			return nil, fmt.Errorf("opening balance: %w: %q", ErrUnknownAccount, name)
		}
	}
	var entries []model.Entry
	for _, name := range c.Names() {
		amount, ok := opening[name]
		if !ok || amount.IsZero() {
			continue
		}
		if name == c.Null {
			return nil, fmt.Errorf("opening balance on null account %q", name)
		}
		t, _ := c.AccountType(name)
		side := t.NormalSide()
		if amount.IsNegative() {
			side = side.Opposite()
			amount = amount.Neg()
		}
		if side == model.Debit {
			entries = append(entries, model.Entry{Debit: name, Credit: c.Null, Amount: amount})
		} else {
			entries = append(entries, model.Entry{Debit: c.Null, Credit: name, Amount: amount})
		}
	}
	return entries, nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, ",:\n") {
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidName, name)
	}
	return nil
}
