package book

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// OpeningFileName holds starting balances inside a book directory.
const OpeningFileName = "opening.yaml"

// LoadOpening reads a name: amount mapping. A missing file means no
// opening balances.
func LoadOpening(path string) (map[string]decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]decimal.Decimal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading opening balances: %w", err)
	}
	return ParseOpening(data)
}

// ParseOpening decodes opening balances from YAML.
func ParseOpening(data []byte) (map[string]decimal.Decimal, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing opening balances: %w", err)
	}
	opening := make(map[string]decimal.Decimal, len(raw))
	for name, s := range raw {
		amount, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("opening balance %q: %w", name, err)
		}
		opening[name] = amount
	}
	return opening, nil
}

// SaveOpening writes opening balances as YAML with two decimal places.
func SaveOpening(path string, opening map[string]decimal.Decimal) error {
	raw := make(map[string]string, len(opening))
	for name, amount := range opening {
		raw[name] = amount.StringFixed(2)
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshaling opening balances: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating book dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing opening balances: %w", err)
	}
	return nil
}
