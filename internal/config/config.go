// Package config loads the settings shared by the character sheet binaries
// from YAML, CHARSHEET_ environment variables and an optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHARSHEET_LOGGING_LEVEL.
const EnvPrefix = "CHARSHEET"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN renders the settings as a postgres:// URL, escaping credentials.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func (d DatabaseConfig) validate(p *problems) {
	p.require(d.Host != "", "database.host must not be empty")
	p.require(d.Port >= 1 && d.Port <= 65535, "database.port must be 1-65535, got %d", d.Port)
	p.require(d.User != "", "database.user must not be empty")
	p.require(d.Name != "", "database.name must not be empty")
	p.oneOf("database.sslmode", d.SSLMode, "disable", "require", "verify-ca", "verify-full")
	p.require(d.MaxConns >= 1, "database.max_conns must be >= 1, got %d", d.MaxConns)
	p.require(d.MinConns >= 0, "database.min_conns must be >= 0, got %d", d.MinConns)
	p.require(d.MinConns <= d.MaxConns, "database.min_conns (%d) exceeds database.max_conns (%d)", d.MinConns, d.MaxConns)
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is json or console.
	Format string `mapstructure:"format"`
}

func (l LoggingConfig) validate(p *problems) {
	p.oneOf("logging.level", l.Level, "debug", "info", "warn", "error")
	p.oneOf("logging.format", l.Format, "json", "console")
}

// ContentConfig locates the YAML and Lua rule content. Empty paths select the
// built-in defaults.
type ContentConfig struct {
	ItemsDir        string `mapstructure:"items_dir"`
	ConditionsDir   string `mapstructure:"conditions_dir"`
	ProgressionFile string `mapstructure:"progression_file"`
	// SanityScript is a Lua file defining sanity_cap(class, wis_mod, level).
	SanityScript string `mapstructure:"sanity_script"`
}

// ScriptingConfig holds Lua sandbox limits.
type ScriptingConfig struct {
	// InstructionLimit bounds the VM instructions of a single script call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// StorageConfig selects the store that holds sheets addressed by id.
type StorageConfig struct {
	// Backend is postgres or sqlite.
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

func (s StorageConfig) validate(p *problems) {
	if p.oneOf("storage.backend", s.Backend, "postgres", "sqlite") && s.Backend == "sqlite" {
		p.require(s.SQLitePath != "", "storage.sqlite_path must not be empty for the sqlite backend")
	}
}

// CacheConfig holds the optional Redis sheet cache. An empty Addr disables it.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (c CacheConfig) Enabled() bool { return c.Addr != "" }

func (c CacheConfig) validate(p *problems) {
	if !c.Enabled() {
		return
	}
	p.require(c.TTL > 0, "cache.ttl must be positive, got %s", c.TTL)
	p.require(c.DB >= 0, "cache.db must be >= 0, got %d", c.DB)
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// Validate reports every violated constraint in a single error.
func (c Config) Validate() error {
	var p problems
	c.Database.validate(&p)
	c.Logging.validate(&p)
	p.require(c.Scripting.InstructionLimit >= 1,
		"scripting.instruction_limit must be >= 1, got %d", c.Scripting.InstructionLimit)
	c.Storage.validate(&p)
	c.Cache.validate(&p)
	return p.err()
}

type problems []string

func (p *problems) require(ok bool, format string, args ...any) bool {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
	return ok
}

func (p *problems) oneOf(key, got string, allowed ...string) bool {
	return p.require(slices.Contains(allowed, got),
		"%s must be one of [%s], got %q", key, strings.Join(allowed, ", "), got)
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(p, "; "))
}

var defaults = map[string]any{
	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "charsheet",
	"database.password":          "charsheet",
	"database.name":              "charsheet",
	"database.sslmode":           "disable",
	"database.max_conns":         10,
	"database.min_conns":         2,
	"database.max_conn_lifetime": "1h",

	"logging.level":  "info",
	"logging.format": "json",

	"content.items_dir":        "",
	"content.conditions_dir":   "",
	"content.progression_file": "",
	"content.sanity_script":    "",

	"scripting.instruction_limit": 100000,

	"storage.backend":     "postgres",
	"storage.sqlite_path": "charsheet.db",

	"cache.addr":     "",
	"cache.password": "",
	"cache.db":       0,
	"cache.ttl":      "1h",
}

// Load reads the YAML file at path, if any, over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes and validates the settings held by v.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of the dotenv file at path without
// overriding variables already set. It reports whether the file existed.
func LoadDotEnv(path string) (bool, error) {
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("reading %s: %w", path, err)
}
