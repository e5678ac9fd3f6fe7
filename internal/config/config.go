// Package config loads application configuration from config.yaml and
// CATALOG_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	IGDB       IGDBConfig       `yaml:"igdb" mapstructure:"igdb"`
	HLTB       HLTBConfig       `yaml:"hltb" mapstructure:"hltb"`
	OpenCritic OpenCriticConfig `yaml:"opencritic" mapstructure:"opencritic"`
	RAWG       RAWGConfig       `yaml:"rawg" mapstructure:"rawg"`
	Sync       SyncConfig       `yaml:"sync" mapstructure:"sync"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	Dir         string      `yaml:"dir" mapstructure:"dir"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	Pool        *PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig tunes the postgres connection pool.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// IGDBConfig holds Twitch developer credentials for the IGDB API.
type IGDBConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
}

// HLTBConfig configures the HowLongToBeat lookup.
type HLTBConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// OpenCriticConfig configures the OpenCritic lookup.
type OpenCriticConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// RAWGConfig holds RAWG API keys. Search and detail lookups may use
// separate keys so their quotas drain independently.
type RAWGConfig struct {
	SearchKey string `yaml:"search_key" mapstructure:"search_key"`
	DetailKey string `yaml:"detail_key" mapstructure:"detail_key"`
}

// SyncConfig sets the refresh windows, in months, for each source.
type SyncConfig struct {
	HLTBWindowMonths       int `yaml:"hltb_window_months" mapstructure:"hltb_window_months"`
	OpenCriticWindowMonths int `yaml:"opencritic_window_months" mapstructure:"opencritic_window_months"`
	RAWGWindowMonths       int `yaml:"rawg_window_months" mapstructure:"rawg_window_months"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.dir", "datasets")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("hltb.threshold", 0.90)
	v.SetDefault("opencritic.threshold", 0.90)
	v.SetDefault("sync.hltb_window_months", 6)
	v.SetDefault("sync.opencritic_window_months", 3)
	v.SetDefault("sync.rawg_window_months", 1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
