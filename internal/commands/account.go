package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/book"
)

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect individual accounts",
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the debit and credit columns of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBook(cmd.Context(), func(b *book.Book) error {
				acct, err := b.Account(args[0])
				if err != nil {
					return err
				}
				return a.renderer(cmd, b.Chart()).Account(args[0], acct)
			})
		},
	}

	assert := &cobra.Command{
		Use:   "assert <name> <balance>",
		Short: "Fail unless the account has the given balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("balance: %w", err)
			}
			return a.withBook(cmd.Context(), func(b *book.Book) error {
				return b.AssertBalance(args[0], want)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List account names with their types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := a.loadChart()
			if err != nil {
				return err
			}
			return printAccountList(cmd, chart)
		},
	}

	cmd.AddCommand(show, assert, list)
	return cmd
}

func printAccountList(cmd *cobra.Command, c *accounts.Chart) error {
	var b strings.Builder
	for _, name := range c.Names() {
		t, _ := c.AccountType(name)
		fmt.Fprintf(&b, "%-20s %s\n", name, t)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
