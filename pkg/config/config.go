// Package config loads and validates the run configuration from a
// YAML file, with credentials optionally overridden by a defaults
// file or the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sqldraft/sqldraft/pkg/dialect"
)

// PasswordEnv is consulted when neither the config file nor the
// defaults file carries a password. Keeps credentials out of files
// that get checked in.
const PasswordEnv = "SQLDRAFT_PASSWORD"

const (
	defaultFallbackKeyColumns = 5
	defaultPreviewRows        = 5
)

type Database struct {
	Dialect  string `yaml:"dialect" validate:"required,oneof=oracle postgres postgresql mysql"`
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	Service  string `yaml:"service" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`
}

type Output struct {
	File string `yaml:"file"`
}

type Config struct {
	Database Database `yaml:"database"`

	// Tables lists OWNER.TABLE specifications. Blank entries are
	// tolerated and skipped; malformed entries fail per table at run
	// time, not at load time.
	Tables []string `yaml:"tables"`

	// SharedValues seeds the cross-table filter value store.
	SharedValues map[string]string `yaml:"shared_values"`

	Output Output `yaml:"output"`

	// FallbackKeyColumns caps how many leading columns stand in for a
	// missing primary key.
	FallbackKeyColumns int `yaml:"fallback_key_columns" validate:"min=0"`

	// PreviewRows is how many matched rows to show before asking for
	// delete confirmation.
	PreviewRows int `yaml:"preview_rows" validate:"min=0"`
}

// Load reads and defaults a config file. Validation is deferred to
// the caller because a defaults file may still overlay credentials
// after loading.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FallbackKeyColumns == 0 {
		c.FallbackKeyColumns = defaultFallbackKeyColumns
	}
	if c.PreviewRows == 0 {
		c.PreviewRows = defaultPreviewRows
	}
	if c.Database.Password == "" {
		c.Database.Password = os.Getenv(PasswordEnv)
	}
}

// Validate checks field constraints and that at least one non-blank
// table entry exists. Table spec format is deliberately not validated
// here.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if len(c.NonBlankTables()) == 0 {
		return errors.New("config lists no tables to process")
	}
	return nil
}

// NonBlankTables returns the table entries worth attempting.
func (c *Config) NonBlankTables() []string {
	var tables []string
	for _, t := range c.Tables {
		if strings.TrimSpace(t) != "" {
			tables = append(tables, strings.TrimSpace(t))
		}
	}
	return tables
}

// ConnParams converts the database section to dialect connection
// parameters.
func (c *Config) ConnParams() dialect.ConnParams {
	return dialect.ConnParams{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Service,
		Username: c.Database.Username,
		Password: c.Database.Password,
	}
}
