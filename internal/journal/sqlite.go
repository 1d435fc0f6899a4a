package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// SQLiteFileName is the database file inside a book directory.
const SQLiteFileName = "entries.db"

// SQLiteStore keeps the log in a SQLite database with a single writer
// connection and a pool of readers.
type SQLiteStore struct {
	writer *sql.DB
	reader *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) dir/entries.db and migrates it.
func OpenSQLite(ctx context.Context, dir string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}
	return openSQLitePath(ctx, filepath.Join(dir, SQLiteFileName), logger)
}

func openSQLitePath(ctx context.Context, dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &SQLiteStore{writer: writer, reader: reader, logger: logger}
	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			seq       INTEGER PRIMARY KEY,
			id        TEXT NOT NULL UNIQUE,
			title     TEXT NOT NULL,
			author    TEXT NOT NULL CHECK (author IN ('user','machine')),
			posted_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id       TEXT PRIMARY KEY,
			txn_seq  INTEGER NOT NULL REFERENCES transactions(seq),
			position INTEGER NOT NULL,
			debit    TEXT NOT NULL,
			credit   TEXT NOT NULL,
			amount   TEXT NOT NULL,
			UNIQUE (txn_seq, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_txn ON entries(txn_seq)`,

		// The log is append-only.
		`CREATE TRIGGER IF NOT EXISTS trg_entries_no_update
		BEFORE UPDATE ON entries
		BEGIN
			SELECT RAISE(ABORT, 'entries are append-only');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_entries_no_delete
		BEFORE DELETE ON entries
		BEGIN
			SELECT RAISE(ABORT, 'entries are append-only');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_transactions_no_update
		BEFORE UPDATE ON transactions
		BEGIN
			SELECT RAISE(ABORT, 'transactions are append-only');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_transactions_no_delete
		BEFORE DELETE ON transactions
		BEGIN
			SELECT RAISE(ABORT, 'transactions are append-only');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}

// NextSeq returns one past the highest stored sequence.
func (s *SQLiteStore) NextSeq(ctx context.Context) (int, error) {
	var seq int
	err := s.reader.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transactions`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read next seq: %w", err)
	}
	return seq + 1, nil
}

// Append inserts txn and its entries in one database transaction.
func (s *SQLiteStore) Append(ctx context.Context, txn model.Transaction) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Read the sequence through the writer so it cannot race another append.
	var last int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transactions`).Scan(&last); err != nil {
		return fmt.Errorf("read next seq: %w", err)
	}
	if err := checkAppend(txn, last+1); err != nil {
		return err
	}
	seq := last + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (seq, id, title, author) VALUES (?, ?, ?, ?)`,
		seq, txn.ID, txn.Title, string(txn.Author),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	for i, e := range txn.Entries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entries (id, txn_seq, position, debit, credit, amount) VALUES (?, ?, ?, ?, ?, ?)`,
			id.FormatEntryID(txn.ID, i), seq, i, e.Debit, e.Credit, e.Amount.StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	// Fold the WAL back into entries.db so the file alone holds the log
	// when it is committed to git.
	if _, err := s.writer.ExecContext(ctx, `PRAGMA wal_checkpoint(PASSIVE)`); err != nil {
		s.logger.Warn("wal checkpoint failed", "error", err)
	}
	s.logger.Debug("appended transaction", "txn_id", txn.ID, "entries", len(txn.Entries), "backend", BackendSQLite)
	return nil
}

// ReadAll returns every transaction ordered by sequence.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.reader.QueryContext(ctx, `
		SELECT t.id, t.title, t.author, e.id, e.debit, e.credit, e.amount
		FROM transactions t
		JOIN entries e ON e.txn_seq = t.seq
		ORDER BY t.seq, e.position`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var all []Row
	for rows.Next() {
		var (
			r      Row
			author string
			amount string
		)
		if err := rows.Scan(&r.TxnID, &r.Title, &author, &r.EntryID, &r.Entry.Debit, &r.Entry.Credit, &amount); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		r.Author = model.Author(author)
		r.Entry.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("entry %s: parsing amount %q: %w", r.EntryID, amount, err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return GroupRows(all)
}

func (s *SQLiteStore) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
