package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

func newOpeningCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "opening <account=amount>...",
		Short: "Set opening balances",
		Long: "Set opening balances. Each argument replaces the opening balance\n" +
			"of one account; an amount of 0 removes it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opening, err := book.LoadOpening(a.path(book.OpeningFileName))
			if err != nil {
				return err
			}
			for _, arg := range args {
				name, raw, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected account=amount, got %q", arg)
				}
				amount, err := decimal.NewFromString(raw)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				if amount.IsZero() {
					delete(opening, name)
					continue
				}
				opening[name] = amount
			}

			chart, err := a.loadChart()
			if err != nil {
				return err
			}
			if err := book.Init(a.dir, chart, opening); err != nil {
				return err
			}
			a.commit(cmd.Context(), "opening: "+strings.Join(args, " "), book.OpeningFileName)
			fmt.Fprintf(cmd.OutOrStdout(), "Opening balances set for %d accounts\n", len(opening))
			return nil
		},
	}
}

func newPostCommand(a *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "post <debit> <credit> <amount>",
		Short: "Post a single entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			e := model.Entry{Debit: args[0], Credit: args[1], Amount: amount}
			if title == "" {
				title = e.String()
			}
			return a.mutate(cmd, func(b *book.Book) (model.Transaction, error) {
				return b.Post(cmd.Context(), title, e)
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "transaction title")
	return cmd
}

func newPostCompoundCommand(a *app) *cobra.Command {
	var (
		title   string
		debits  []string
		credits []string
	)

	cmd := &cobra.Command{
		Use:   "post-compound --debit account:amount... --credit account:amount...",
		Short: "Post a compound entry with several debit or credit legs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c model.CompoundEntry
			var err error
			if c.Debits, err = parseLegs(debits); err != nil {
				return err
			}
			if c.Credits, err = parseLegs(credits); err != nil {
				return err
			}
			return a.mutate(cmd, func(b *book.Book) (model.Transaction, error) {
				return b.PostCompound(cmd.Context(), title, c)
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "compound entry", "transaction title")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit leg as account:amount (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit leg as account:amount (repeatable)")
	_ = cmd.MarkFlagRequired("debit")
	_ = cmd.MarkFlagRequired("credit")
	return cmd
}

func parseLegs(specs []string) ([]model.Leg, error) {
	legs := make([]model.Leg, 0, len(specs))
	for _, s := range specs {
		name, raw, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("expected account:amount, got %q", s)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		legs = append(legs, model.Leg{Account: name, Amount: amount})
	}
	return legs, nil
}

func newOperationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operation",
		Short: "Post named operations declared in the chart",
	}

	var title string
	post := &cobra.Command{
		Use:   "post <name> <amount>",
		Short: "Post a named operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			return a.mutate(cmd, func(b *book.Book) (model.Transaction, error) {
				return b.PostOperation(cmd.Context(), title, args[0], amount)
			})
		},
	}
	post.Flags().StringVarP(&title, "title", "t", "", "transaction title (defaults to the operation name)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List named operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := a.loadChart()
			if err != nil {
				return err
			}
			var b strings.Builder
			writeOperations(&b, "", chart.Operations)
			_, err = io.WriteString(cmd.OutOrStdout(), b.String())
			return err
		},
	}

	cmd.AddCommand(post, list)
	return cmd
}

// mutate opens the book, applies fn, prints the recorded transaction and
// commits the log to git. A *ledger.BatchError from a partial batch is
// reported but does not fail the command.
func (a *app) mutate(cmd *cobra.Command, fn func(*book.Book) (model.Transaction, error)) error {
	ctx := cmd.Context()
	return a.withBook(ctx, func(b *book.Book) error {
		txn, err := fn(b)
		if txn.ID == "" {
			return err
		}
		r := a.renderer(cmd, b.Chart())
		if rerr := r.Transaction(txn); rerr != nil {
			return rerr
		}
		a.commit(ctx, fmt.Sprintf("post: %s %s", txn.ID, txn.Title), a.logFiles()...)
		if err != nil {
			return reportRejected(cmd, err)
		}
		return nil
	})
}

// reportRejected prints the entries of a partial batch that were not
// posted. Errors other than a batch rejection are returned unchanged.
func reportRejected(cmd *cobra.Command, err error) error {
	if errors.Is(err, book.ErrNothingPosted) {
		return err
	}
	var be *ledger.BatchError
	if !errors.As(err, &be) {
		return err
	}
	w := cmd.ErrOrStderr()
	for _, r := range be.Rejected {
		fmt.Fprintf(w, "rejected entry %d (%s): %v\n", r.Index+1, r.Entry, r.Err)
	}
	return nil
}
