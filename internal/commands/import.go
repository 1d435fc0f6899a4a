package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/importer"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
)

func newImportCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Post CSV files waiting in the import/ directory",
		Long: "Post every CSV file in import/. Consecutive lines with the same title\n" +
			"become one transaction; lines that cannot be posted are reported and\n" +
			"skipped. Processed files move to import/processed/.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "entries", "file format (entries, chase)")
	return cmd
}

func runImport(cmd *cobra.Command, a *app, format string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	registry := importer.DefaultRegistry(importer.BankAccounts{
		Bank:    a.cfg.Import.Bank,
		Inflow:  a.cfg.Import.Inflow,
		Outflow: a.cfg.Import.Outflow,
	})

	files, err := importer.Scan(a.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "Nothing to import")
		return nil
	}

	return a.withBook(ctx, func(b *book.Book) error {
		r := a.renderer(cmd, b.Chart())
		for _, f := range files {
			lines, err := registry.ParseFile(format, f.Path)
			if err != nil {
				return err
			}

			posted, rejected := 0, 0
			for _, batch := range importer.Group(lines) {
				txn, err := b.PostBatch(ctx, batch.Title, batch.Entries)
				var be *ledger.BatchError
				if errors.As(err, &be) {
					rejected += len(be.Rejected)
					for _, rj := range be.Rejected {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %q entry %d (%s): %v\n",
							f.Name, batch.Title, rj.Index+1, rj.Entry, rj.Err)
					}
				} else if err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
				if txn.ID == "" {
					continue
				}
				posted += len(txn.Entries)
				if err := r.Transaction(txn); err != nil {
					return err
				}
			}

			if err := importer.MarkProcessed(a.dir, f.Name); err != nil {
				return err
			}
			a.logger.Info("imported file", "file", f.Name, "format", format, "posted", posted, "rejected", rejected)
			fmt.Fprintf(out, "%s: %d entries posted, %d rejected\n", f.Name, posted, rejected)
			a.commit(ctx, fmt.Sprintf("import: %s", f.Name), a.logFiles()...)
		}
		return nil
	})
}
