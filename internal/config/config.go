// Package config loads application configuration from the environment,
// with optional .env file support for local development.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	BindAddr    string `env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port        int    `env:"PORT" env-default:"3001"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabasePath     string `env:"DATABASE_PATH" env-default:"teamboard.db"`
	DatabaseMaxConns int    `env:"DATABASE_MAX_CONNS" env-default:"4"`

	OpenAIAPIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIModel       string  `env:"OPENAI_MODEL" env-default:"gpt-3.5-turbo"`
	OpenAIMaxTokens   int     `env:"OPENAI_MAX_TOKENS" env-default:"500"`
	OpenAITemperature float32 `env:"OPENAI_TEMPERATURE" env-default:"0.7"`

	ModerationEnabled bool          `env:"CONTENT_MODERATION_ENABLED" env-default:"false"`
	ModerationTimeout time.Duration `env:"MODERATION_TIMEOUT" env-default:"5s"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from a .env file (if present) and the process
// environment. Environment variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, strconv.Itoa(c.Port))
}
