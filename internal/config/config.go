// Package config loads service configuration from config files, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration. Every key can be overridden by an environment
// variable named after its path, e.g. storage.bucket -> STORAGE_BUCKET.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Password  PasswordConfig  `mapstructure:"password"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mail      MailConfig      `mapstructure:"mail"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LLMConfig configures resume scoring. An empty APIKey disables scoring.
type LLMConfig struct {
	APIKey    string `mapstructure:"api_key"`
	ModelTier string `mapstructure:"model_tier"`
}

type StorageConfig struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type MailConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Region  string        `mapstructure:"region"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"server.port":                8080,
	"server.shutdown_timeout":    15 * time.Second,
	"server.allowed_origin":      "*",
	"database.url":               "",
	"jwt.secret":                 "",
	"jwt.expiration_hours":       24,
	"password.bcrypt_cost":       12,
	"password.pepper":            "",
	"llm.api_key":                "",
	"llm.model_tier":             "lite",
	"storage.bucket":             "",
	"storage.region":             "us-east-1",
	"storage.endpoint":           "",
	"storage.public_base_url":    "",
	"storage.max_upload_bytes":   10 << 20,
	"mail.enabled":               false,
	"mail.region":                "us-east-1",
	"mail.from":                  "",
	"mail.timeout":               10 * time.Second,
	"redis.url":                  "",
	"ratelimit.enabled":          true,
	"ratelimit.default_limit":    1000,
	"ratelimit.default_window":   time.Minute,
	"ratelimit.cleanup_interval": 5 * time.Minute,
	"ratelimit.whitelist":        []string{},
	"ratelimit.blacklist":        []string{},
	"log.level":                  "info",
}

// aliases lets the service pick up the conventional variable names as well.
var aliases = map[string][]string{
	"database.url":         {"DATABASE_URL"},
	"password.bcrypt_cost": {"PASSWORD_BCRYPT_COST", "BCRYPT_COST"},
	"password.pepper":      {"PASSWORD_PEPPER"},
	"llm.api_key":          {"LLM_API_KEY", "GEMINI_API_KEY"},
	"server.port":          {"SERVER_PORT", "PORT"},
	"ratelimit.enabled":    {"RATELIMIT_ENABLED", "RATE_LIMIT_ENABLED"},
}

// Load reads configuration. configFile may be empty, in which case config.yaml is looked up in
// the working directory and ./configs. A .env file in the working directory is loaded first
// without overriding variables already set.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules and normalizes the nested sections.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server.port out of range: %d", c.Server.Port)
	}
	if err := c.JWT.normalize(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Password.normalize(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: storage.max_upload_bytes must be positive")
	}
	if c.Mail.Enabled && c.Mail.From == "" {
		return fmt.Errorf("config error: mail.from is required when mail is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultLimit <= 0 || c.RateLimit.DefaultWindow <= 0) {
		return fmt.Errorf("config error: ratelimit.default_limit and ratelimit.default_window must be positive")
	}
	return nil
}
