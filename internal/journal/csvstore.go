package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cleared-dev/ledgerbook/internal/id"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

// CSVFileName is the entry log file inside a book directory.
const CSVFileName = "entries.csv"

// CSVStore keeps the log in a single append-only entries.csv.
type CSVStore struct {
	path   string
	logger *slog.Logger
	// next is the cached next sequence number, 0 until first read.
	next int
}

// OpenCSV returns a store for dir/entries.csv. The file is created on the
// first Append.
func OpenCSV(dir string, logger *slog.Logger) *CSVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVStore{path: filepath.Join(dir, CSVFileName), logger: logger}
}

// ReadAll reads every transaction from entries.csv. A missing file is an
// empty log.
func (s *CSVStore) ReadAll(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", s.path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", s.path, err)
	}
	return txns, nil
}

// NextSeq returns one past the highest transaction sequence in the file.
func (s *CSVStore) NextSeq(ctx context.Context) (int, error) {
	if s.next > 0 {
		return s.next, nil
	}
	txns, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, txn := range txns {
		seq, err := id.ParseTxnID(txn.ID)
		if err != nil {
			continue
		}
		maxSeq = max(maxSeq, seq)
	}
	s.next = maxSeq + 1
	return s.next, nil
}

// Append writes txn's rows to the end of entries.csv, creating the file
// with its header if needed.
func (s *CSVStore) Append(ctx context.Context, txn model.Transaction) error {
	next, err := s.NextSeq(ctx)
	if err != nil {
		return err
	}
	if err := checkAppend(txn, next); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, []model.Transaction{txn}); err != nil {
		return fmt.Errorf("appending %s: %w", txn.ID, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing journal: %w", err)
	}

	s.next = next + 1
	s.logger.Debug("appended transaction", "txn_id", txn.ID, "entries", len(txn.Entries), "backend", BackendCSV)
	return nil
}

// Close is a no-op; every Append opens and closes the file.
func (s *CSVStore) Close() error { return nil }
