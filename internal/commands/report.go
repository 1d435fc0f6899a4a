package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newCloseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the period: sweep income and expenses to retained earnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withBook(ctx, func(b *book.Book) error {
				txn, err := b.Close(ctx)
				if err != nil {
					return err
				}
				if txn.ID == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to close")
					return nil
				}
				if err := a.renderer(cmd, b.Chart()).Transaction(txn); err != nil {
					return err
				}
				a.commit(ctx, "close: "+txn.ID, a.logFiles()...)
				return nil
			})
		},
	}
}

type reportOptions struct {
	trial   bool
	balance bool
	income  bool
	json    bool
}

func newReportCommand(a *app) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the balance sheet and income statement",
		Long: "Print reports. Without flags the balance sheet and income statement\n" +
			"are printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.trial && !opts.balance && !opts.income {
				opts.balance, opts.income = true, true
			}
			return a.withBook(cmd.Context(), func(b *book.Book) error {
				return runReport(cmd, a, b, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.trial, "trial", false, "trial balance")
	cmd.Flags().BoolVar(&opts.balance, "balance", false, "balance sheet")
	cmd.Flags().BoolVar(&opts.income, "income", false, "income statement")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

func runReport(cmd *cobra.Command, a *app, b *book.Book, opts reportOptions) error {
	out := cmd.OutOrStdout()
	r := a.renderer(cmd, b.Chart())
	doc := make(map[string]any)

	if opts.trial {
		tb := b.TrialBalance()
		doc["trial_balance"] = tb
		if !opts.json {
			if err := r.TrialBalance(tb); err != nil {
				return err
			}
		}
	}
	if opts.balance {
		bs, err := b.BalanceSheet()
		if err != nil {
			return err
		}
		doc["balance_sheet"] = bs
		if !opts.json {
			if err := r.BalanceSheet(bs); err != nil {
				return err
			}
		}
	}
	if opts.income {
		is, err := b.IncomeStatement()
		if err != nil {
			return err
		}
		doc["income_statement"] = is
		if !opts.json {
			if err := r.IncomeStatement(is); err != nil {
				return err
			}
		}
	}

	if opts.json {
		return writeJSON(out, doc)
	}
	return nil
}

func newBalancesCommand(a *app) *cobra.Command {
	var (
		asJSON  bool
		nonzero bool
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print every account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBook(cmd.Context(), func(b *book.Book) error {
				balances := b.Balances()
				order := b.Chart().Names()
				if nonzero {
					order = slices.DeleteFunc(order, func(name string) bool { return balances[name].IsZero() })
					maps.DeleteFunc(balances, func(_ string, v decimal.Decimal) bool { return v.IsZero() })
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), balances)
				}
				return a.renderer(cmd, b.Chart()).Balances(order, balances)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&nonzero, "nonzero", false, "omit accounts with a zero balance")
	return cmd
}

func newLogCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print recorded transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBook(cmd.Context(), func(b *book.Book) error {
				txns := b.Transactions()
				if asJSON {
					if txns == nil {
						txns = []model.Transaction{}
					}
					return writeJSON(cmd.OutOrStdout(), txns)
				}
				r := a.renderer(cmd, b.Chart())
				for _, txn := range txns {
					if err := r.Transaction(txn); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
