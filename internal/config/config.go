package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Store        string
	StateFile    string
	PGDSN        string
	Journal      string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"store":         StoreFile,
		"state-file":    "./data/state.json",
		"journal":       "./data/journal.jsonl",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Store:        strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		StateFile:    v.GetString("state-file"),
		PGDSN:        v.GetString("pg-dsn"),
		Journal:      v.GetString("journal"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreFile:
		if cfg.StateFile == "" {
			return Config{}, fmt.Errorf("state-file is required for the file store")
		}
	case StorePostgres:
		if cfg.PGDSN == "" {
			return Config{}, fmt.Errorf("pg-dsn is required for the postgres store")
		}
	default:
		return Config{}, fmt.Errorf("unknown store %q (want memory, file or postgres)", cfg.Store)
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}
