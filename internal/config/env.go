package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Env struct {
	AppAddr string `env:"APP_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE"`

	DBUser string `env:"DB_USER" envDefault:"root"`
	DBPass string `env:"DB_PASS"`
	DBHost string `env:"DB_HOST" envDefault:"127.0.0.1:3306"`
	DBName string `env:"DB_NAME" envDefault:"rideshare"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"super-secret-key-change-me"`

	// ConfirmTTL is how long a booking confirmation token stays valid.
	ConfirmTTL time.Duration `env:"CONFIRM_TTL" envDefault:"72h"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	AnalyticsBuffer int    `env:"ANALYTICS_BUFFER" envDefault:"256"`
}

// LoadEnv loads configuration from environment variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// DSN builds the MySQL connection string used by ConnectDB.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser, e.DBPass, e.DBHost, e.DBName)
}
