// Package config loads ledgerbook.yaml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside a book directory.
const FileName = "ledgerbook.yaml"

// EnvPrefix prefixes every environment override, e.g. LEDGERBOOK_LOG_LEVEL.
const EnvPrefix = "LEDGERBOOK_"

// Config represents the top-level ledgerbook.yaml configuration.
type Config struct {
	Book    BookConfig    `yaml:"book" envPrefix:"BOOK_"`
	Journal JournalConfig `yaml:"journal" envPrefix:"JOURNAL_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Import  ImportConfig  `yaml:"import" envPrefix:"IMPORT_"`
	Git     GitConfig     `yaml:"git" envPrefix:"GIT_"`
}

// BookConfig identifies the book.
type BookConfig struct {
	Name string `yaml:"name" env:"NAME"`
}

// JournalConfig selects the transaction log backend.
type JournalConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"` // "csv" or "sqlite"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // text or json
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// ImportConfig maps bank statement lines to accounts.
type ImportConfig struct {
	Bank    string `yaml:"bank" env:"BANK"`
	Inflow  string `yaml:"inflow" env:"INFLOW"`
	Outflow string `yaml:"outflow" env:"OUTFLOW"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" env:"AUTO_COMMIT"`
	AuthorName  string `yaml:"author_name" env:"AUTHOR_NAME"`
	AuthorEmail string `yaml:"author_email" env:"AUTHOR_EMAIL"`
}

// Load reads a ledgerbook.yaml file from disk. Missing keys keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists and applies environment overrides
// from environ (the process environment when nil).
func LoadOrDefault(path string, environ map[string]string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(""), nil
	}
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from LEDGERBOOK_* variables. Unset
// variables leave the field alone.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("config env: %w", err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(bookName string) *Config {
	return &Config{
		Book:    BookConfig{Name: bookName},
		Journal: JournalConfig{Backend: "csv"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Import:  ImportConfig{Bank: "cash", Inflow: "sales", Outflow: "sga"},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Ledgerbook",
			AuthorEmail: "ledgerbook@localhost",
		},
	}
}
