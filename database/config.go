/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/suparena/docstore/logging"
)

// Production is the app.env value that disables query debugging.
const Production = "production"

// Config holds the settings read by Load.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  logging.Config `mapstructure:"logging"`
}

// AppConfig identifies the running application.
type AppConfig struct {
	// Env is the deployment environment, e.g. development or production.
	Env string `mapstructure:"env"`
	// Name is reported to the server as the client app name.
	Name string `mapstructure:"name"`
}

// DatabaseConfig holds the store connection settings.
type DatabaseConfig struct {
	URI         string `mapstructure:"uri"`
	Name        string `mapstructure:"name"`
	Debug       bool   `mapstructure:"debug"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	// AutoIndex creates the registered indexes on Connect.
	AutoIndex bool `mapstructure:"auto_index"`
	// TimeoutOptions maps driver timeout names, e.g. connectTimeoutMS, to
	// milliseconds. Names are matched case-insensitively and unknown names
	// are ignored.
	TimeoutOptions map[string]int64 `mapstructure:"timeout_options"`
}

// Load reads configuration from a .env file, a config.yaml file and the
// environment, in increasing order of precedence. Keys map to environment
// variables by replacing dots with underscores, e.g. DATABASE_URI.
// Extra search paths for config.yaml may be given.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "docstore")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "docstore")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.max_pool_size", 100)
	v.SetDefault("database.auto_index", false)
	v.SetDefault("database.timeout_options.connectTimeoutMS", 10000)
	v.SetDefault("database.timeout_options.serverSelectionTimeoutMS", 10000)
	v.SetDefault("database.timeout_options.socketTimeoutMS", 30000)
	v.SetDefault("database.timeout_options.heartbeatFrequencyMS", 10000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}
