// Package render prints reports and balances for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
	"github.com/cleared-dev/ledgerbook/internal/report"
)

const (
	nameWidth   = 36
	amountWidth = 12
)

// Titler resolves account names to display titles.
type Titler interface {
	Title(name string) string
}

// Renderer writes styled text to w. Colors and bold are dropped when w is
// not a terminal.
type Renderer struct {
	w      io.Writer
	titles Titler

	title   lipgloss.Style
	header  lipgloss.Style
	dim     lipgloss.Style
	total   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// New returns a Renderer for w using titles for account names.
func New(w io.Writer, titles Titler) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:      w,
		titles: titles,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("240")),
		total: r.NewStyle().
			Bold(true),
		success: r.NewStyle().
			Foreground(lipgloss.Color("82")),
		failure: r.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

func amount(d decimal.Decimal) string {
	return fmt.Sprintf("%*s", amountWidth, d.StringFixed(2))
}

func (r *Renderer) name(n string, width int) string {
	t := []rune(r.titles.Title(n))
	if len(t) > width {
		t = append(t[:width-2], '.', '.')
	}
	return fmt.Sprintf("%-*s", width, string(t))
}

func (r *Renderer) rule(b *strings.Builder, ch string) {
	b.WriteString("  " + r.dim.Render(strings.Repeat(ch, nameWidth+amountWidth+1)) + "\n")
}

func (r *Renderer) section(b *strings.Builder, s report.Section) {
	b.WriteString("  " + r.header.Render(s.Label) + "\n")
	if len(s.Order) == 0 {
		b.WriteString("    " + r.dim.Render("(none)") + "\n")
	}
	for _, n := range s.Order {
		fmt.Fprintf(b, "    %s %s\n", r.name(n, nameWidth-2), amount(s.Amounts[n]))
	}
	r.rule(b, "─")
	fmt.Fprintf(b, "  %s %s\n", fmt.Sprintf("%-*s", nameWidth, "Total "+strings.ToLower(s.Label)), r.total.Render(amount(s.Total)))
	b.WriteString("\n")
}

// BalanceSheet prints assets against capital and liabilities.
func (r *Renderer) BalanceSheet(bs report.BalanceSheet) error {
	var b strings.Builder
	b.WriteString(r.title.Render("Balance sheet") + "\n\n")
	r.section(&b, bs.Assets)
	r.section(&b, bs.Capital)
	r.section(&b, bs.Liabilities)
	r.rule(&b, "═")
	right := bs.Capital.Total.Add(bs.Liabilities.Total)
	fmt.Fprintf(&b, "  %-*s %s\n", nameWidth, "Total capital and liabilities", r.total.Render(amount(right)))
	if bs.Assets.Total.Equal(right) {
		b.WriteString("  " + r.success.Render("[BALANCED]") + "\n")
	} else {
		b.WriteString("  " + r.failure.Render("[UNBALANCED]") + "\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// IncomeStatement prints income, expenses and net income.
func (r *Renderer) IncomeStatement(is report.IncomeStatement) error {
	var b strings.Builder
	b.WriteString(r.title.Render("Income statement") + "\n\n")
	r.section(&b, is.Income)
	r.section(&b, is.Expenses)
	r.rule(&b, "═")
	label := "Net income"
	if is.NetIncome.IsNegative() {
		label = "Net loss"
	}
	fmt.Fprintf(&b, "  %-*s %s\n", nameWidth, label, r.total.Render(amount(is.NetIncome)))
	_, err := io.WriteString(r.w, b.String())
	return err
}

// TrialBalance prints debit and credit columns with their totals.
func (r *Renderer) TrialBalance(tb report.TrialBalance) error {
	var b strings.Builder
	b.WriteString(r.title.Render("Trial balance") + "\n\n")
	fmt.Fprintf(&b, "  %-*s %s %s\n", nameWidth, "",
		r.header.Render(fmt.Sprintf("%*s", amountWidth, "Debit")),
		r.header.Render(fmt.Sprintf("%*s", amountWidth, "Credit")))
	for _, line := range tb.Lines {
		fmt.Fprintf(&b, "  %s %s %s\n", r.name(line.Account, nameWidth), blankZero(line.Debit), blankZero(line.Credit))
	}
	b.WriteString("  " + r.dim.Render(strings.Repeat("─", nameWidth+2*amountWidth+2)) + "\n")
	fmt.Fprintf(&b, "  %-*s %s %s\n", nameWidth, "Total",
		r.total.Render(amount(tb.TotalDebit)), r.total.Render(amount(tb.TotalCredit)))
	_, err := io.WriteString(r.w, b.String())
	return err
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return fmt.Sprintf("%*s", amountWidth, "")
	}
	return amount(d)
}

// Balances prints one line per account in the given order.
func (r *Renderer) Balances(order []string, balances map[string]decimal.Decimal) error {
	var b strings.Builder
	for _, n := range order {
		fmt.Fprintf(&b, "%-*s %s\n", nameWidth, n, amount(balances[n]))
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Account prints one account as a T: debits on the left, credits on the
// right, then the column totals and the balance.
func (r *Renderer) Account(name string, a *ledger.TAccount) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", r.title.Render(r.titles.Title(name)), r.dim.Render("("+name+", "+string(a.Type)+")"))
	fmt.Fprintf(&b, "  %s %s\n",
		r.header.Render(fmt.Sprintf("%*s", amountWidth, "Debit")),
		r.header.Render(fmt.Sprintf("%*s", amountWidth, "Credit")))
	for i := range max(len(a.Debits), len(a.Credits)) {
		debit, credit := fmt.Sprintf("%*s", amountWidth, ""), ""
		if i < len(a.Debits) {
			debit = amount(a.Debits[i])
		}
		if i < len(a.Credits) {
			credit = amount(a.Credits[i])
		}
		b.WriteString(strings.TrimRight(fmt.Sprintf("  %s %s", debit, credit), " ") + "\n")
	}
	b.WriteString("  " + r.dim.Render(strings.Repeat("─", 2*amountWidth+1)) + "\n")
	fmt.Fprintf(&b, "  %s %s\n", r.total.Render(amount(a.DebitTotal())), r.total.Render(amount(a.CreditTotal())))
	fmt.Fprintf(&b, "  %-*s %s\n", amountWidth, "Balance", r.total.Render(amount(a.Balance())))
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Transaction prints a recorded transaction and its entries.
func (r *Renderer) Transaction(txn model.Transaction) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", r.header.Render(txn.ID), txn.Title, r.dim.Render("("+string(txn.Author)+")"))
	for _, e := range txn.Entries {
		fmt.Fprintf(&b, "  dr %-16s cr %-16s %s\n", e.Debit, e.Credit, amount(e.Amount))
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}
