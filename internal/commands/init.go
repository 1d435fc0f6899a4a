package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/gitops"
	"github.com/cleared-dev/ledgerbook/internal/journal"
)

type initOptions struct {
	name     string
	template string
	backend  string
	git      bool
}

func newInitCommand(a *app) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.dir
			if len(args) > 0 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
				dir = abs
			}
			return runInit(cmd, a, dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "book name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.template, "template", "trading", "starter chart of accounts")
	cmd.Flags().StringVar(&opts.backend, "backend", string(journal.BackendCSV), "transaction log backend (csv, sqlite)")
	cmd.Flags().BoolVar(&opts.git, "git", false, "initialize a git repository and commit every change")

	return cmd
}

func runInit(cmd *cobra.Command, a *app, dir string, opts initOptions) error {
	ctx := cmd.Context()
	backend := journal.Backend(opts.backend)
	if backend != journal.BackendCSV && backend != journal.BackendSQLite {
		return fmt.Errorf("%w: %q", journal.ErrUnknownBackend, opts.backend)
	}

	chart, err := accounts.DefaultChart(opts.template)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, accounts.FileName)); err == nil {
		return fmt.Errorf("%s already holds a book", dir)
	}

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(opts.name)
	cfg.Journal.Backend = string(backend)
	cfg.Git.AutoCommit = opts.git
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return err
	}

	if err := book.Init(dir, chart, map[string]decimal.Decimal{}); err != nil {
		return fmt.Errorf("writing book: %w", err)
	}

	// Opening the store creates the SQLite schema up front.
	store, err := journal.Open(ctx, backend, dir, a.logger)
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return err
	}

	gitignore := "import/processed/\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	hash := ""
	if opts.git {
		if hash, err = initRepo(ctx, a, dir, cfg); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if hash != "" {
		fmt.Fprintf(out, "Initialized book %q at %s (%s)\n", opts.name, dir, hash)
	} else {
		fmt.Fprintf(out, "Initialized book %q at %s\n", opts.name, dir)
	}
	return nil
}

func initRepo(ctx context.Context, a *app, dir string, cfg *config.Config) (string, error) {
	if err := gitops.Init(ctx, dir); err != nil {
		return "", fmt.Errorf("git init: %w", err)
	}
	c := &gitops.Committer{
		Dir:         dir,
		Enabled:     true,
		AuthorName:  cfg.Git.AuthorName,
		AuthorEmail: cfg.Git.AuthorEmail,
		Logger:      a.logger,
	}
	hash, err := c.Commit(ctx, "init: "+cfg.Book.Name, ".")
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
