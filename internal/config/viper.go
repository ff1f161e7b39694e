// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Port                   int    `mapstructure:"port" yaml:"port"`
		ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
		ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
		CORSOrigin             string `mapstructure:"cors_origin" yaml:"cors_origin"`
	} `mapstructure:"server" yaml:"server"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Upload struct {
		Dir           string `mapstructure:"dir" yaml:"dir"`
		MaxSize       int64  `mapstructure:"max_size" yaml:"max_size"`
		JobTTLMinutes int    `mapstructure:"job_ttl_minutes" yaml:"job_ttl_minutes"`
	} `mapstructure:"upload" yaml:"upload"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		BatchSize      int    `mapstructure:"batch_size" yaml:"batch_size"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categories struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"categories" yaml:"categories"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`
}

// envBindings maps config keys to unprefixed environment variables.
var envBindings = map[string]string{
	"ai.api_key":      "GEMINI_API_KEY",
	"server.port":     "PORT",
	"database.path":   "DB_PATH",
	"upload.dir":      "UPLOAD_DIR",
	"upload.max_size": "MAX_UPLOAD_SIZE",
	"log.level":       "LOG_LEVEL",
	"log.format":      "LOG_FORMAT",
}

// InitializeConfig loads configuration from defaults, an optional config file
// and the environment. An explicit configFile must exist; otherwise
// config.yaml is searched in the usual locations and may be absent.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.finance-analyzer")
		v.AddConfigPath(".finance-analyzer")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("FINANCE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 5. Unprefixed variables shared with other tools
	for key, env := range envBindings {
		if err := v.BindEnv(key, "FINANCE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.cors_origin", "*")

	v.SetDefault("database.path", "./data/transactions.db")

	v.SetDefault("upload.dir", "./data/uploads")
	v.SetDefault("upload.max_size", 10485760)
	v.SetDefault("upload.job_ttl_minutes", 1440)

	// AI is on by default only when a key is available
	v.SetDefault("ai.enabled", os.Getenv("GEMINI_API_KEY") != "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.batch_size", 50)

	v.SetDefault("categories.file", "categories.yaml")

	v.SetDefault("csv.delimiter", ",")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}

	if config.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive, got: %d", config.Upload.MaxSize)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Delimiter returns the configured CSV delimiter.
func (c *Config) Delimiter() rune {
	return []rune(c.CSV.Delimiter)[0]
}

// AITimeout returns the per-request AI timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// JobTTL returns how long unconfirmed upload jobs are kept.
func (c *Config) JobTTL() time.Duration {
	return time.Duration(c.Upload.JobTTLMinutes) * time.Minute
}
