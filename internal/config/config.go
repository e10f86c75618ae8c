// Package config loads runtime settings from an optional TOML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultFinalizeCron = "5 0 * * *"
)

type Config struct {
	Addr string `toml:"addr"`

	// storage
	DBDriver    string `toml:"db_driver"`
	DBPath      string `toml:"db_path"`
	DatabaseURL string `toml:"database_url"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	LogJSON     bool   `toml:"log_json"`
	LogToStdout bool   `toml:"log_to_stdout"`

	AuthDisabled bool   `toml:"auth_disabled"`
	FinalizeCron string `toml:"finalize_cron"`

	OIDC OIDC `toml:"oidc"`
}

type OIDC struct {
	Issuer       string `toml:"issuer"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// Enabled reports whether single sign-on is configured.
func (o OIDC) Enabled() bool {
	return o.Issuer != ""
}

// Default returns the configuration used when no file or env value is set.
func Default() *Config {
	return &Config{
		Addr:         ":8080",
		DBDriver:     DriverSQLite,
		DBPath:       "fitlevel.db",
		LogLevel:     "info",
		LogToStdout:  true,
		FinalizeCron: DefaultFinalizeCron,
	}
}

// Load reads path (skipped when empty) over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = env("FITLEVEL_ADDR", c.Addr)
	c.DBDriver = strings.ToLower(env("FITLEVEL_DB_DRIVER", c.DBDriver))
	c.DBPath = env("FITLEVEL_DB_PATH", c.DBPath)
	c.DatabaseURL = env("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = env("FITLEVEL_LOG_LEVEL", c.LogLevel)
	c.LogFile = env("FITLEVEL_LOG_FILE", c.LogFile)
	c.FinalizeCron = env("FITLEVEL_FINALIZE_CRON", c.FinalizeCron)
	c.OIDC.Issuer = env("OIDC_ISSUER", c.OIDC.Issuer)
	c.OIDC.ClientID = env("OIDC_CLIENT_ID", c.OIDC.ClientID)
	c.OIDC.ClientSecret = env("OIDC_CLIENT_SECRET", c.OIDC.ClientSecret)
	c.OIDC.RedirectURL = env("OIDC_REDIRECT_URL", c.OIDC.RedirectURL)

	var err error
	if c.LogJSON, err = envBool("FITLEVEL_LOG_JSON", c.LogJSON); err != nil {
		return err
	}
	if c.AuthDisabled, err = envBool("FITLEVEL_AUTH_DISABLED", c.AuthDisabled); err != nil {
		return err
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("addr is empty"))
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			err = multierr.Append(err, errors.New("db_path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			err = multierr.Append(err, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown db driver %q", c.DBDriver))
	}
	if _, perr := cron.ParseStandard(c.FinalizeCron); perr != nil {
		err = multierr.Append(err, fmt.Errorf("finalize_cron: %w", perr))
	}
	if c.OIDC.Enabled() && (c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		err = multierr.Append(err, errors.New("oidc requires client_id and redirect_url when issuer is set"))
	}
	return err
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
