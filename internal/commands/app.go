package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/config"
	"github.com/cleared-dev/ledgerbook/internal/gitops"
	"github.com/cleared-dev/ledgerbook/internal/journal"
	"github.com/cleared-dev/ledgerbook/internal/logging"
	"github.com/cleared-dev/ledgerbook/internal/render"
)

// app carries state shared by every command: the book directory, its
// config and the logger.
type app struct {
	dir       string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	abs, err := filepath.Abs(a.dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	a.dir = abs

	cfg, err := config.LoadOrDefault(a.path(config.FileName), nil)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.cfg = cfg

	logger, err := logging.Init(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) path(name string) string {
	return filepath.Join(a.dir, name)
}

func (a *app) backend() journal.Backend {
	return journal.Backend(a.cfg.Journal.Backend)
}

// openBook loads the book and its store. The caller closes the store.
func (a *app) openBook(ctx context.Context) (*book.Book, journal.Store, error) {
	return book.Open(ctx, a.dir, a.backend(), a.logger)
}

// withBook runs fn against the loaded book and closes the store afterwards.
func (a *app) withBook(ctx context.Context, fn func(*book.Book) error) error {
	b, store, err := a.openBook(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(b)
}

func (a *app) loadChart() (*accounts.Chart, error) {
	return accounts.Load(a.path(accounts.FileName))
}

// logFiles are the book files that change when transactions are recorded.
func (a *app) logFiles() []string {
	if a.backend() == journal.BackendSQLite {
		return []string{journal.SQLiteFileName}
	}
	return []string{journal.CSVFileName}
}

func (a *app) committer() *gitops.Committer {
	return &gitops.Committer{
		Dir:         a.dir,
		Enabled:     a.cfg.Git.AutoCommit,
		AuthorName:  a.cfg.Git.AuthorName,
		AuthorEmail: a.cfg.Git.AuthorEmail,
		Logger:      a.logger,
	}
}

// commit records paths in git when auto-commit is on. Failures are logged,
// not returned: the book itself is already saved.
func (a *app) commit(ctx context.Context, message string, paths ...string) {
	if _, err := a.committer().Commit(ctx, message, paths...); err != nil {
		a.logger.Warn("git commit failed", "error", err)
	}
}

func (a *app) renderer(cmd *cobra.Command, titles render.Titler) *render.Renderer {
	return render.New(cmd.OutOrStdout(), titles)
}
