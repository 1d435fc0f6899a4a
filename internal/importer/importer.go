// Package importer turns CSV files dropped into a book's import/ directory
// into batches of entries.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// Line is one imported entry with the title of the transaction it
// belongs to.
type Line struct {
	Title string
	Entry model.Entry
}

// Batch is a run of consecutive lines sharing a title.
type Batch struct {
	Title   string
	Entries []model.Entry
}

// Parser converts a CSV file into lines.
type Parser interface {
	Parse(r io.Reader) ([]Line, error)
	Format() string
}

// Group folds consecutive lines with the same title into batches, keeping
// file order.
func Group(lines []Line) []Batch {
	var batches []Batch
	for _, l := range lines {
		n := len(batches)
		if n > 0 && batches[n-1].Title == l.Title {
			batches[n-1].Entries = append(batches[n-1].Entries, l.Entry)
			continue
		}
		batches = append(batches, Batch{Title: l.Title, Entries: []model.Entry{l.Entry}})
	}
	return batches
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists registered formats in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.parsers))
	for f := range r.parsers {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// DefaultRegistry returns a registry with all built-in parsers. Bank
// statement lines post against the given accounts.
func DefaultRegistry(bank BankAccounts) *Registry {
	r := NewRegistry()
	r.Register(&EntriesParser{})
	r.Register(&ChaseParser{Accounts: bank})
	return r
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <bookDir>/import/ in name order.
func Scan(bookDir string) ([]FileInfo, error) {
	dir := filepath.Join(bookDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(bookDir, fileName string) error {
	src := filepath.Join(bookDir, importDir, fileName)
	dstDir := filepath.Join(bookDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// ParseFile parses the file at path with the parser for format.
func (r *Registry) ParseFile(format, path string) ([]Line, error) {
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("unknown import format %q (have %s)", format, strings.Join(r.Formats(), ", "))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	lines, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}
