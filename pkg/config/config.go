// Package config loads application configuration from environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration.
type Config struct {
	App        AppConfig
	Storage    StorageConfig
	Processing ProcessingConfig
	HTTP       HTTPConfig
}

// AppConfig is general application configuration.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string // memory, sqlite or postgres
	Path   string // sqlite database file
	DSN    string // postgres connection string
}

// ProcessingConfig tunes the pipeline.
type ProcessingConfig struct {
	MaxFileSizeMB int64
	Workers       int
}

// MaxFileSizeBytes returns the file-size ceiling in bytes.
func (c ProcessingConfig) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB << 20
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Host  string
	Port  int
	Debug bool
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables, with an optional
// config.env file as lower-priority source. Expected names: APP_ENV,
// STORAGE_DRIVER, DATABASE_URL, HTTP_PORT, and so on.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // the file is optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("STORAGE_DRIVER"),
			Path:   v.GetString("STORAGE_PATH"),
			DSN:    v.GetString("DATABASE_URL"),
		},
		Processing: ProcessingConfig{
			MaxFileSizeMB: v.GetInt64("PROCESSING_MAX_FILE_SIZE_MB"),
			Workers:       v.GetInt("PROCESSING_WORKERS"),
		},
		HTTP: HTTPConfig{
			Host:  v.GetString("HTTP_HOST"),
			Port:  v.GetInt("HTTP_PORT"),
			Debug: v.GetBool("HTTP_DEBUG"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "fiscalxml")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("STORAGE_PATH", "fiscalxml.db")
	v.SetDefault("PROCESSING_MAX_FILE_SIZE_MB", 50)
	v.SetDefault("PROCESSING_WORKERS", 4)
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_DEBUG", false)
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("postgres driver requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Processing.Workers < 1 {
		return fmt.Errorf("PROCESSING_WORKERS must be at least 1")
	}
	if c.Processing.MaxFileSizeMB < 1 {
		return fmt.Errorf("PROCESSING_MAX_FILE_SIZE_MB must be at least 1")
	}
	return nil
}
