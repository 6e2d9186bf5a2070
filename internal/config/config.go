package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	GatewayPort string `mapstructure:"GATEWAY_PORT"`
	CatalogURL  string `mapstructure:"CATALOG_URL"`

	MySQLDSN string `mapstructure:"MYSQL_DSN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	Seed     bool   `mapstructure:"SEED"`
}

// String masks credentials.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  GatewayPort: %s\n", c.GatewayPort))
	sb.WriteString(fmt.Sprintf("  CatalogURL: %s\n", c.CatalogURL))
	if c.MySQLDSN != "" {
		sb.WriteString("  MySQLDSN: ********\n")
	} else {
		sb.WriteString("  MySQLDSN: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	if c.RedisPassword != "" {
		sb.WriteString("  RedisPassword: ********\n")
	} else {
		sb.WriteString("  RedisPassword: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  Seed: %v\n", c.Seed))
	return sb.String()
}

// LoadFromEnv loads configuration from environment variables, reading .env
// first when present (local development only).
func LoadFromEnv() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	keys := []string{
		"APP_PORT", "GATEWAY_PORT", "CATALOG_URL",
		"MYSQL_DSN",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"LOG_LEVEL", "SEED",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("GATEWAY_PORT", ":4000")
	v.SetDefault("CATALOG_URL", "http://localhost:5000")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/bookstore?parseTime=true")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
