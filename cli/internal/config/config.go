package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
)

// AppFs is the filesystem configuration and seed files are read from
var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	Provider                    string
	DatabaseURL                 string
	UseTransactionWhenAvailable bool
	UseTableLocks               bool
	MaxRowsToInsert             int
	CommitEvery                 int
	CommitsPerSecond            float64
	Debug                       bool
}

// BulkOptions converts the bulk keys into saver options
func (c *Config) BulkOptions() []bulk.Option {
	return []bulk.Option{
		bulk.WithTransactions(c.UseTransactionWhenAvailable),
		bulk.WithTableLocks(c.UseTableLocks),
		bulk.WithMaxRowsToInsert(c.MaxRowsToInsert),
	}
}

// Validate rejects settings no command can run with
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is not set (use --database-url, PRISMA_BULK_DATABASE_URL or DATABASE_URL)")
	}
	if c.MaxRowsToInsert < 1 {
		return fmt.Errorf("max_rows_to_insert must be at least 1, got %d", c.MaxRowsToInsert)
	}
	if c.CommitEvery < 0 {
		return fmt.Errorf("commit_every must not be negative, got %d", c.CommitEvery)
	}
	if c.CommitsPerSecond < 0 {
		return fmt.Errorf("commits_per_second must not be negative, got %v", c.CommitsPerSecond)
	}
	return nil
}

// SetDefaults registers default values and search paths on v
func SetDefaults(v *viper.Viper) error {
	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	v.SetFs(AppFs)
	v.SetConfigName(".prisma-bulk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "prisma-bulk"))

	v.SetEnvPrefix("PRISMA_BULK")
	v.AutomaticEnv()

	defaults := bulk.DefaultOptions()
	v.SetDefault("use_transaction_when_available", defaults.UseTransactionWhenAvailable)
	v.SetDefault("use_table_locks", defaults.UseTableLocks)
	v.SetDefault("max_rows_to_insert", defaults.MaxRowsToInsert)
	v.SetDefault("commit_every", 0)
	v.SetDefault("commits_per_second", 0)
	v.SetDefault("debug", false)
	return nil
}

// LoadConfig loads configuration into the global viper instance
func LoadConfig() (*Config, error) {
	v := viper.GetViper()
	if err := SetDefaults(v); err != nil {
		return nil, err
	}
	return Load(v)
}

// Load reads .env files, then the config file if one exists, then resolves
// every key on v. Flags bound to v take precedence over both.
func Load(v *viper.Viper) (*Config, error) {
	if err := loadDotEnv(".env", false); err != nil {
		return nil, err
	}
	// .env.local wins over .env
	if err := loadDotEnv(".env.local", true); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Provider:                    v.GetString("provider"),
		DatabaseURL:                 v.GetString("database_url"),
		UseTransactionWhenAvailable: v.GetBool("use_transaction_when_available"),
		UseTableLocks:               v.GetBool("use_table_locks"),
		MaxRowsToInsert:             v.GetInt("max_rows_to_insert"),
		CommitEvery:                 v.GetInt("commit_every"),
		CommitsPerSecond:            v.GetFloat64("commits_per_second"),
		Debug:                       v.GetBool("debug"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Provider == "" {
		cfg.Provider = DetectProvider(cfg.DatabaseURL)
	}
	if cfg.CommitEvery == 0 {
		cfg.CommitEvery = cfg.MaxRowsToInsert
	}

	return cfg, nil
}

// loadDotEnv sets variables from an env file on AppFs. Existing variables
// are kept unless overload is set.
func loadDotEnv(name string, overload bool) error {
	if _, err := AppFs.Stat(name); err != nil {
		return nil
	}

	f, err := AppFs.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	for k, val := range vars {
		if _, exists := os.LookupEnv(k); exists && !overload {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}

// DetectProvider guesses the provider from a connection string
func DetectProvider(connStr string) string {
	switch {
	case strings.HasPrefix(connStr, "mysql://"), strings.Contains(connStr, "@tcp("):
		return "mysql"
	case strings.HasPrefix(connStr, "sqlite"), strings.HasPrefix(connStr, "file:"),
		strings.HasSuffix(connStr, ".db"), strings.HasSuffix(connStr, ".sqlite"), connStr == ":memory:":
		return "sqlite"
	default:
		return "postgresql"
	}
}
