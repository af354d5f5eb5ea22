// Package config loads service configuration from a YAML file plus
// REBANHO_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Herd     HerdConfig     `mapstructure:"herd"`
	Breeding BreedingConfig `mapstructure:"breeding"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type HerdConfig struct {
	// DefaultSeries backs earring tags without a series prefix.
	DefaultSeries string `mapstructure:"default_series"`
}

type BreedingConfig struct {
	// DGOffsetDays is the gap between recipient arrival and the pregnancy
	// diagnosis date.
	DGOffsetDays int `mapstructure:"dg_offset_days"`
}

type LedgerConfig struct {
	ReferenceTaxIDs []string `mapstructure:"reference_tax_ids"`
	ReferenceNames  []string `mapstructure:"reference_names"`
	TagAllowlist    []string `mapstructure:"tag_allowlist"`
	InferredTag     string   `mapstructure:"inferred_tag"`
	// CELRule, when set, replaces the reference rule table for the
	// relevance decision.
	CELRule string `mapstructure:"cel_rule"`
}

type ReportsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type WorkerConfig struct {
	// DiagnosisCron schedules the due-diagnosis sweep.
	DiagnosisCron string `mapstructure:"diagnosis_cron"`
}

type AuthConfig struct {
	// JWTSecret verifies bearer tokens for actor attribution. Empty
	// disables verification and every request acts as "system".
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads the config file (path may be empty to rely on defaults and
// environment only) and applies REBANHO_* overrides, e.g.
// REBANHO_DATABASE_DSN or REBANHO_BREEDING_DG_OFFSET_DAYS.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
	v.SetDefault("herd.default_series", "RPT")
	v.SetDefault("breeding.dg_offset_days", 15)
	v.SetDefault("reports.output_dir", "./reports")
	v.SetDefault("worker.diagnosis_cron", "0 6 * * *")

	v.SetEnvPrefix("REBANHO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	return &cfg, nil
}
