// Package config loads server configuration from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CasesDir    string   `mapstructure:"CASES_DIR"`
	CatalogFile string   `mapstructure:"CATALOG_FILE"`
	ResultSeed  int64    `mapstructure:"RESULT_SEED"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	OpenRouterAPIKey string `mapstructure:"OPENROUTER_API_KEY"`
	LLMModel         string `mapstructure:"LLM_MODEL"`
	LLMBaseURL       string `mapstructure:"LLM_BASE_URL"`

	AuthMode      string `mapstructure:"AUTH_MODE"`
	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CASES_DIR", "cases")
	v.SetDefault("CATALOG_FILE", "")
	v.SetDefault("RESULT_SEED", 0)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AUTH_MODE", "none")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CASES_DIR")
	v.BindEnv("CATALOG_FILE")
	v.BindEnv("RESULT_SEED")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("OPENROUTER_API_KEY")
	v.BindEnv("LLM_MODEL")
	v.BindEnv("LLM_BASE_URL")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("JWT_SIGNING_KEY")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasDatabase reports whether session persistence is configured.
// Without it sessions live in memory and are lost on restart.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasLLM reports whether the language model is configured. Without it
// patient dialogue is unavailable and grading falls back to lexical
// comparison.
func (c *Config) HasLLM() bool {
	return c.OpenRouterAPIKey != ""
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.AuthMode != "none" && c.AuthMode != "jwt" {
		return fmt.Errorf("AUTH_MODE must be \"none\" or \"jwt\", got %q", c.AuthMode)
	}
	if c.AuthMode == "jwt" && c.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required when AUTH_MODE is \"jwt\"")
	}
	if len(c.JWTSigningKey) > 0 && len(c.JWTSigningKey) < 32 {
		return fmt.Errorf("JWT_SIGNING_KEY must be at least 32 bytes, got %d", len(c.JWTSigningKey))
	}
	if c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
