package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Brewtab"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"brewtab"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Wallet struct {
		// SignupBonus is credited to new accounts, in cents. Zero disables it.
		SignupBonus int64 `envconfig:"SIGNUP_BONUS_CENTS" default:"0"`
	}

	Share struct {
		ExpiryWindow  time.Duration `envconfig:"SHARE_EXPIRY_WINDOW" default:"24h"`
		SweepInterval time.Duration `envconfig:"SHARE_SWEEP_INTERVAL" default:"1h"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
		// StaffCodeHash is the bcrypt hash of the shared staff access code.
		StaffCodeHash string        `envconfig:"STAFF_CODE_BCRYPT"`
		TokenExpiry   time.Duration `envconfig:"STAFF_TOKEN_EXPIRY" default:"12h"`
	}

	Console struct {
		StaffID string `envconfig:"CONSOLE_STAFF_ID" default:"counter-1"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
