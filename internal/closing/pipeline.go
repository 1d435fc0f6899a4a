// Package closing generates period-end closing entries.
//
// A Pipeline works on a private copy of the ledger. Closing runs in four
// phases: contra income and contra expense accounts are netted into their
// targets, income and expense accounts are swept to the income summary
// account, the income summary is closed to retained earnings, and finally
// permanent contra accounts are netted for balance sheet presentation.
package closing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Phase identifies a closing step.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseContraTemporary
	PhaseIncomeSummary
	PhaseRetainedEarnings
	PhaseContraPermanent
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseContraTemporary:
		return "close-contra-temporary"
	case PhaseIncomeSummary:
		return "sweep-to-income-summary"
	case PhaseRetainedEarnings:
		return "close-income-summary"
	case PhaseContraPermanent:
		return "close-contra-permanent"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Pipeline accumulates closing entries against a working copy of a ledger.
type Pipeline struct {
	chart   *accounts.Chart
	ledger  *ledger.Ledger
	phase   Phase
	entries []model.Entry
	// netIncome is the income summary balance right after the sweep.
	netIncome decimal.Decimal
}

// NewPipeline copies l; the caller's ledger is never modified.
func NewPipeline(chart *accounts.Chart, l *ledger.Ledger) *Pipeline {
	return &Pipeline{chart: chart, ledger: l.Clone(), netIncome: decimal.Zero}
}

// Ledger returns the working copy with all entries generated so far posted.
func (p *Pipeline) Ledger() *ledger.Ledger { return p.ledger }

// ClosingEntries returns the generated entries in generation order.
func (p *Pipeline) ClosingEntries() []model.Entry {
	return append([]model.Entry(nil), p.entries...)
}

// Phase returns the last completed phase.
func (p *Pipeline) Phase() Phase { return p.phase }

// NetIncome returns the income summary balance after SweepToIncomeSummary.
func (p *Pipeline) NetIncome() decimal.Decimal { return p.netIncome }

func (p *Pipeline) advance(next Phase) error {
	if next != p.phase+1 {
		return fmt.Errorf("closing: cannot run %s after %s", next, p.phase)
	}
	p.phase = next
	return nil
}

func (p *Pipeline) transfer(from, to string) error {
	a, ok := p.ledger.Account(from)
	if !ok {
		return &ledger.UnknownAccountError{Name: from}
	}
	if _, ok := p.ledger.Account(to); !ok {
		return &ledger.UnknownAccountError{Name: to}
	}
	e, ok := a.Transfer(from, to)
	if !ok {
		return nil
	}
	if err := p.ledger.Post(e); err != nil {
		return fmt.Errorf("closing %s to %s: %w", from, to, err)
	}
	p.entries = append(p.entries, e)
	return nil
}

func (p *Pipeline) closeContra(keep func(model.AccountType) bool) error {
	for _, pair := range p.chart.ContraPairs(keep) {
		if err := p.transfer(pair.Contra, pair.Target); err != nil {
			return err
		}
	}
	return nil
}

// CloseContraTemporary nets contra income and contra expense accounts into
// their targets, in chart declaration order.
func (p *Pipeline) CloseContraTemporary() error {
	if err := p.advance(PhaseContraTemporary); err != nil {
		return err
	}
	return p.closeContra(model.AccountType.IsTemporaryContra)
}

// SweepToIncomeSummary closes every income account, then every expense
// account, to the income summary account.
func (p *Pipeline) SweepToIncomeSummary() error {
	if err := p.advance(PhaseIncomeSummary); err != nil {
		return err
	}
	isa := p.chart.IncomeSummary
	for _, t := range []model.AccountType{model.AccountTypeIncome, model.AccountTypeExpense} {
		for _, name := range p.ledger.Subset(ledger.OfType(t)).Names() {
			if err := p.transfer(name, isa); err != nil {
				return err
			}
		}
	}
	bal, err := p.ledger.Balance(isa)
	if err != nil {
		return err
	}
	p.netIncome = bal
	return nil
}

// CloseIncomeSummary moves the income summary balance to retained earnings.
func (p *Pipeline) CloseIncomeSummary() error {
	if err := p.advance(PhaseRetainedEarnings); err != nil {
		return err
	}
	return p.transfer(p.chart.IncomeSummary, p.chart.RetainedEarnings)
}

// CloseContraPermanent nets contra asset, liability and capital accounts
// into their targets. Use it on reporting copies only.
func (p *Pipeline) CloseContraPermanent() error {
	if err := p.advance(PhaseContraPermanent); err != nil {
		return err
	}
	return p.closeContra(model.AccountType.IsPermanentContra)
}

// Close runs the three phases that produce recorded closing entries.
func (p *Pipeline) Close() error {
	steps := []func() error{p.CloseContraTemporary, p.SweepToIncomeSummary, p.CloseIncomeSummary}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// CloseAll runs Close followed by CloseContraPermanent.
func (p *Pipeline) CloseAll() error {
	if err := p.Close(); err != nil {
		return err
	}
	return p.CloseContraPermanent()
}

// Close returns the closing entries for l without modifying it.
func Close(chart *accounts.Chart, l *ledger.Ledger) ([]model.Entry, error) {
	p := NewPipeline(chart, l)
	if err := p.Close(); err != nil {
		return nil, err
	}
	return p.ClosingEntries(), nil
}
