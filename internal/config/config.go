// Package config loads the bot's settings from the environment, with
// an optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string
	SessionKey string
	StateFile  string

	MetricsAddr string

	KafkaBrokers []string
	KafkaTopic   string

	Database DatabaseConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Configured reports whether a session database was set up at all;
// without one the bot falls back to the file store.
func (d DatabaseConfig) Configured() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Load reads the .env file when present and assembles the config from
// the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:    getenv("LOG_LEVEL", "info"),
		SessionKey:  getenv("SESSION_KEY", "local"),
		StateFile:   getenv("COOKIEBOT_STATE_FILE", "cookiebot_sessions.json"),
		MetricsAddr: getenv("METRICS_ADDR", ":9091"),
		KafkaTopic:  getenv("KAFKA_TOPIC", "audit_logs"),
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getenv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
