package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every runtime setting, loaded from environment variables
// with an optional .env file for local development.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"ENV"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	RateLimitMax   int    `mapstructure:"RATE_LIMIT_MAX"`
}

// Load reads configuration from the environment. DATABASE_URL, REDIS_URL and
// JWT_SECRET are mandatory; everything else has a sane default.
func Load() (*Config, error) {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 4)
	viper.SetDefault("RATE_LIMIT_MAX", 1000)

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	// .env is optional; in production everything comes from the environment
	_ = viper.ReadInConfig()
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("config: REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return &cfg, nil
}
