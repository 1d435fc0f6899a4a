package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the chart file inside a book directory.
const FileName = "chart.yaml"

// Load reads and validates a chart file.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML chart, fills default special names and validates it.
func Parse(data []byte) (*Chart, error) {
	c := NewChart()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}
	if c.IncomeSummary == "" {
		c.IncomeSummary = DefaultIncomeSummary
	}
	if c.RetainedEarnings == "" {
		c.RetainedEarnings = DefaultRetainedEarnings
	}
	if c.Null == "" {
		c.Null = DefaultNull
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save validates the chart and writes it as YAML.
func (c *Chart) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling chart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating chart dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}
