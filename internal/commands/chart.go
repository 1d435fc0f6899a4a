package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/journal"
)

func newChartCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show or edit the chart of accounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the chart of accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				chart, err := a.loadChart()
				if err != nil {
					return err
				}
				return printChart(cmd.OutOrStdout(), chart)
			},
		},
		newChartEditCommand(a, "add <category> <name>", "Add an account to a category", 2,
			func(c *accounts.Chart, args []string) error {
				cat, err := accounts.ParseCategory(args[0])
				if err != nil {
					return err
				}
				return c.Add(cat, args[1])
			}),
		newChartEditCommand(a, "offset <target> <contra>...", "Add contra accounts offsetting target", -2,
			func(c *accounts.Chart, args []string) error {
				for _, contra := range args[1:] {
					if err := c.AddContra(args[0], contra); err != nil {
						return err
					}
				}
				return nil
			}),
		newChartEditCommand(a, "name <account> <title>", "Set the display title of an account", 2,
			func(c *accounts.Chart, args []string) error {
				return c.SetTitle(args[0], args[1])
			}),
		newChartEditCommand(a, "operation <name> <debit> <credit>", "Declare a named operation", 3,
			func(c *accounts.Chart, args []string) error {
				return c.AddOperation(args[0], args[1], args[2])
			}),
		newChartSetCommand(a),
	)
	return cmd
}

// newChartEditCommand builds a subcommand that loads the chart, applies
// edit and saves it. nargs < 0 means at least -nargs arguments.
func newChartEditCommand(a *app, use, short string, nargs int, edit func(*accounts.Chart, []string) error) *cobra.Command {
	args := cobra.ExactArgs(nargs)
	if nargs < 0 {
		args = cobra.MinimumNArgs(-nargs)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := a.loadChart()
			if err != nil {
				return err
			}
			if err := edit(chart, args); err != nil {
				return err
			}
			if err := a.saveChart(cmd.Context(), chart); err != nil {
				return err
			}
			a.commit(cmd.Context(), "chart: "+cmd.Name()+" "+strings.Join(args, " "), accounts.FileName)
			fmt.Fprintln(cmd.OutOrStdout(), "Chart updated")
			return nil
		},
	}
}

func newChartSetCommand(a *app) *cobra.Command {
	setters := map[string]func(*accounts.Chart, string) error{
		"income-summary":    (*accounts.Chart).SetIncomeSummary,
		"retained-earnings": (*accounts.Chart).SetRetainedEarnings,
		"null":              (*accounts.Chart).SetNull,
	}
	return newChartEditCommand(a, "set <income-summary|retained-earnings|null> <name>",
		"Rename a special account", 2,
		func(c *accounts.Chart, args []string) error {
			set, ok := setters[args[0]]
			if !ok {
				return fmt.Errorf("unknown special account %q", args[0])
			}
			return set(c, args[1])
		})
}

// saveChart writes chart only if the opening balances and the recorded
// transactions still post against it.
func (a *app) saveChart(ctx context.Context, chart *accounts.Chart) error {
	if err := chart.Validate(); err != nil {
		return err
	}
	opening, err := book.LoadOpening(a.path(book.OpeningFileName))
	if err != nil {
		return err
	}
	store, err := journal.Open(ctx, a.backend(), a.dir, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()
	txns, err := store.ReadAll(ctx)
	if err != nil {
		return err
	}
	if _, err := book.Replay(chart, opening, txns); err != nil {
		return fmt.Errorf("chart change would break the book: %w", err)
	}
	return chart.Save(a.path(accounts.FileName))
}

func printChart(w io.Writer, c *accounts.Chart) error {
	var b strings.Builder
	for _, cat := range accounts.Categories {
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, name := range c.Accounts(cat) {
			fmt.Fprintf(&b, "  %-20s %s\n", name, c.Title(name))
			for _, contra := range c.ContraAccounts(name) {
				fmt.Fprintf(&b, "    - %-16s %s\n", contra, c.Title(contra))
			}
		}
	}
	fmt.Fprintf(&b, "income summary:    %s\n", c.IncomeSummary)
	fmt.Fprintf(&b, "retained earnings: %s\n", c.RetainedEarnings)
	fmt.Fprintf(&b, "null:              %s\n", c.Null)
	if len(c.Operations) > 0 {
		b.WriteString("operations:\n")
		writeOperations(&b, "  ", c.Operations)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeOperations(b *strings.Builder, indent string, ops map[string]accounts.Operation) {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(b, "%s%-20s dr %-16s cr %s\n", indent, name, ops[name].Debit, ops[name].Credit)
	}
}
