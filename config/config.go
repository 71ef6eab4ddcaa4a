package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ArchiveNone     = "none"
	ArchiveRedis    = "redis"
	ArchiveDynamoDB = "dynamodb"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	AllowedOrigin  string        `mapstructure:"CORS_ALLOWED_ORIGIN"`
	DiscountStrict bool          `mapstructure:"DISCOUNT_STRICT"`
	DefaultHours   string        `mapstructure:"RESTAURANT_DEFAULT_HOURS"`
	SeedDemoData   bool          `mapstructure:"SEED_DEMO_DATA"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	ShutdownGrace  time.Duration `mapstructure:"SHUTDOWN_GRACE"`

	Database DatabaseConfig `mapstructure:",squash"`
	Archive  ArchiveConfig  `mapstructure:",squash"`

	// Schedule is built from DefaultHours during Load.
	Schedule Schedule `mapstructure:"-"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"DB_DRIVER"`
	DSN      string `mapstructure:"DB_DSN"`
	Host     string `mapstructure:"DB_HOST"`
	Port     string `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
}

type ArchiveConfig struct {
	Backend            string        `mapstructure:"ARCHIVE_BACKEND"`
	Timeout            time.Duration `mapstructure:"ARCHIVE_TIMEOUT"`
	TTL                time.Duration `mapstructure:"ARCHIVE_TTL"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	AWSRegion          string        `mapstructure:"AWS_REGION"`
	AWSAccessKeyID     string        `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string        `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	DynamoTable        string        `mapstructure:"DYNAMODB_TABLE"`
	DynamoEndpoint     string        `mapstructure:"DYNAMODB_ENDPOINT"`
}

var defaults = map[string]interface{}{
	"PORT":                     "8080",
	"GIN_MODE":                 "debug",
	"LOG_LEVEL":                "info",
	"CORS_ALLOWED_ORIGIN":      "*",
	"DISCOUNT_STRICT":          true,
	"RESTAURANT_DEFAULT_HOURS": "",
	"SEED_DEMO_DATA":           false,
	"RATE_LIMIT_RPS":           10.0,
	"RATE_LIMIT_BURST":         20,
	"SHUTDOWN_GRACE":           "10s",

	"DB_DRIVER":   "mysql",
	"DB_DSN":      "",
	"DB_HOST":     "127.0.0.1",
	"DB_PORT":     "3306",
	"DB_USER":     "root",
	"DB_PASSWORD": "",
	"DB_NAME":     "ordersystem",

	"ARCHIVE_BACKEND":       ArchiveNone,
	"ARCHIVE_TIMEOUT":       "5s",
	"ARCHIVE_TTL":           "0s",
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"AWS_REGION":            "us-east-1",
	"AWS_ACCESS_KEY_ID":     "",
	"AWS_SECRET_ACCESS_KEY": "",
	"DYNAMODB_TABLE":        "Orders",
	"DYNAMODB_ENDPOINT":     "",
}

// Load reads the configuration from the process environment. Call
// godotenv.Load first when a .env file should be honoured.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Archive.Backend = strings.ToLower(cfg.Archive.Backend)

	switch cfg.Archive.Backend {
	case ArchiveNone, ArchiveRedis, ArchiveDynamoDB:
	default:
		return nil, fmt.Errorf("unsupported ARCHIVE_BACKEND %q", cfg.Archive.Backend)
	}

	cfg.Schedule = DefaultSchedule()
	if strings.TrimSpace(cfg.DefaultHours) != "" {
		schedule, err := ParseSchedule(cfg.DefaultHours)
		if err != nil {
			return nil, fmt.Errorf("invalid RESTAURANT_DEFAULT_HOURS: %w", err)
		}
		cfg.Schedule = schedule
	}
	return cfg, nil
}
