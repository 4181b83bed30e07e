// Package config loads runtime settings from defaults, an optional .wellnest.yaml
// and WELLNEST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Storage drivers understood by the relational store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir           string
	Driver            string
	DSN               string
	KVDir             string
	LogLevel          string
	LogDevelopment    bool
	JournalWindowDays int
	Locale            language.Tag
	Location          *time.Location
}

// JournalWindow is the span the journal loads on startup.
func (c *Config) JournalWindow() time.Duration {
	return time.Duration(c.JournalWindowDays) * 24 * time.Hour
}

// Load resolves the configuration. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", "~/.wellnest")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("kv.dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("journal.window_days", 30)
	v.SetDefault("locale", "en")
	v.SetDefault("timezone", "Local")

	v.SetConfigName(".wellnest") // .yaml is implicit
	v.SetEnvPrefix("WELLNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("WELLNEST_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	dataDir, err := homedir.Expand(v.GetString("data_dir"))
	if err != nil {
		return nil, fmt.Errorf("expand data_dir: %w", err)
	}
	c := &Config{
		DataDir:           dataDir,
		Driver:            strings.ToLower(v.GetString("storage.driver")),
		DSN:               v.GetString("storage.dsn"),
		KVDir:             v.GetString("kv.dir"),
		LogLevel:          v.GetString("log.level"),
		LogDevelopment:    v.GetBool("log.development"),
		JournalWindowDays: v.GetInt("journal.window_days"),
	}

	switch c.Driver {
	case DriverSQLite:
		if c.DSN == "" {
			c.DSN = filepath.Join(c.DataDir, "wellnest.db")
		}
		if c.DSN, err = homedir.Expand(c.DSN); err != nil {
			return nil, fmt.Errorf("expand storage.dsn: %w", err)
		}
	case DriverPostgres:
		if c.DSN == "" {
			return nil, errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unknown storage.driver %q", c.Driver)
	}

	if c.KVDir == "" {
		c.KVDir = filepath.Join(c.DataDir, "kv")
	}
	if c.KVDir, err = homedir.Expand(c.KVDir); err != nil {
		return nil, fmt.Errorf("expand kv.dir: %w", err)
	}
	if c.JournalWindowDays <= 0 {
		return nil, fmt.Errorf("journal.window_days must be positive, got %d", c.JournalWindowDays)
	}
	if c.Locale, err = language.Parse(v.GetString("locale")); err != nil {
		return nil, fmt.Errorf("parse locale: %w", err)
	}
	if c.Location, err = time.LoadLocation(v.GetString("timezone")); err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return c, nil
}

// NewLogger builds the process logger for c.
func NewLogger(c *Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log.level: %w", err)
	}
	zc.Level = level
	return zc.Build()
}
