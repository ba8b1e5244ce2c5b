// Package config loads server and client settings from a YAML file and
// SUPERAPP_* environment variables. A .env file in the working directory is
// read first; variables already set in the environment win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SUPERAPP_SERVER_PORT.
const EnvPrefix = "SUPERAPP"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	DBPath         string        `mapstructure:"db_path"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	OpeningBalance float64       `mapstructure:"opening_balance"`
}

type ClientConfig struct {
	APIURL        string        `mapstructure:"api_url"`
	StorePath     string        `mapstructure:"store_path"`
	PIN           string        `mapstructure:"pin"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	PushPublicKey string        `mapstructure:"push_public_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configName.yaml from the usual places (a missing file is fine)
// and applies environment overrides. An explicit file path takes precedence.
func Load(configName, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.superapp")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
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

	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Loaded config file", "path", used)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.db_path", "./data/superapp.db")
	v.SetDefault("server.jwt_secret", "dev-secret-change-me")
	v.SetDefault("server.token_ttl", 24*time.Hour)
	v.SetDefault("server.opening_balance", 5000.0)

	v.SetDefault("client.api_url", "http://localhost:8080")
	v.SetDefault("client.store_path", "./data/client.db")
	v.SetDefault("client.pin", "1234")
	v.SetDefault("client.poll_interval", 5*time.Second)
	v.SetDefault("client.push_public_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects settings the server or client cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("server.token_ttl must be positive")
	}
	if c.Client.PollInterval <= 0 {
		return fmt.Errorf("client.poll_interval must be positive")
	}
	if c.Server.OpeningBalance < 0 {
		return fmt.Errorf("server.opening_balance cannot be negative")
	}
	return nil
}
