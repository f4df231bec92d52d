// Package config loads process configuration from an optional YAML file,
// .env and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the validated process configuration
type Config struct {
	Port     string `yaml:"port" validate:"required"`
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`

	Database DatabaseConfig `yaml:"database"`
	Tokens   TokenConfig    `yaml:"tokens"`
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Sync     SyncConfig     `yaml:"sync"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	API      APIConfig      `yaml:"api"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=postgres sqlite"`
	URL    string `yaml:"url" validate:"required"`
}

// TokenConfig selects where access tokens live
type TokenConfig struct {
	Backend         string `yaml:"backend" validate:"oneof=mongo secretsmanager"`
	MongoURI        string `yaml:"mongodb_uri" validate:"required"`
	MongoDatabase   string `yaml:"mongodb_database" validate:"required"`
	EncryptionKey   string `yaml:"encryption_key" validate:"required_if=Backend mongo"`
	AWSSecretPrefix string `yaml:"aws_secret_prefix"`
}

type ShopifyConfig struct {
	APIKey            string        `yaml:"api_key"`
	APISecret         string        `yaml:"api_secret"`
	APIVersion        string        `yaml:"api_version" validate:"required"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int           `yaml:"burst" validate:"min=1"`
	MaxRetries        int           `yaml:"max_retries" validate:"min=0,max=10"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
}

type SyncConfig struct {
	PageSize           int           `yaml:"page_size" validate:"min=1,max=250"`
	OrdersDaysBack     int           `yaml:"orders_days_back" validate:"min=1,max=3650"`
	FullOrdersDaysBack int           `yaml:"full_orders_days_back" validate:"min=1,max=3650"`
	LeaseTTL           time.Duration `yaml:"lease_ttl" validate:"gte=1s"`
}

// RedisConfig enables the shared lease; an empty URL keeps leases in memory
type RedisConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

// KafkaConfig enables durable run events when Brokers is set
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic" validate:"required_with=Brokers"`
}

type APIConfig struct {
	AuthEnabled bool `yaml:"auth_enabled"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "shopify-sync.db",
		},
		Tokens: TokenConfig{
			Backend:       "mongo",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "shopify",
		},
		Shopify: ShopifyConfig{
			APIVersion:        "2024-10",
			RequestsPerSecond: 2,
			Burst:             4,
			MaxRetries:        3,
			Timeout:           30 * time.Second,
		},
		Sync: SyncConfig{
			PageSize:           50,
			OrdersDaysBack:     30,
			FullOrdersDaysBack: 90,
			LeaseTTL:           5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic: "shopify-sync-runs",
		},
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment, and validates the result
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	env := envReader{errs: &errs}

	env.str("PORT", &c.Port)
	env.str("LOG_LEVEL", &c.LogLevel)

	env.str("DATABASE_DRIVER", &c.Database.Driver)
	env.str("DATABASE_URL", &c.Database.URL)

	env.str("TOKEN_BACKEND", &c.Tokens.Backend)
	env.str("MONGODB_URI", &c.Tokens.MongoURI)
	env.str("MONGODB_DATABASE", &c.Tokens.MongoDatabase)
	env.str("ENCRYPTION_KEY", &c.Tokens.EncryptionKey)
	env.str("AWS_SECRET_PREFIX", &c.Tokens.AWSSecretPrefix)

	env.str("SHOPIFY_API_KEY", &c.Shopify.APIKey)
	env.str("SHOPIFY_API_SECRET", &c.Shopify.APISecret)
	env.str("SHOPIFY_API_VERSION", &c.Shopify.APIVersion)
	env.float("SHOPIFY_REQUESTS_PER_SECOND", &c.Shopify.RequestsPerSecond)
	env.int("SHOPIFY_MAX_RETRIES", &c.Shopify.MaxRetries)

	env.int("SYNC_PAGE_SIZE", &c.Sync.PageSize)
	env.int("SYNC_ORDERS_DAYS_BACK", &c.Sync.OrdersDaysBack)
	env.int("SYNC_FULL_ORDERS_DAYS_BACK", &c.Sync.FullOrdersDaysBack)
	env.duration("SYNC_LEASE_TTL", &c.Sync.LeaseTTL)

	env.str("REDIS_URL", &c.Redis.URL)

	env.list("KAFKA_BROKERS", &c.Kafka.Brokers)
	env.str("KAFKA_TOPIC", &c.Kafka.Topic)

	env.bool("API_AUTH_ENABLED", &c.API.AuthEnabled)

	return errors.Join(errs...)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// envReader overwrites a field only when its variable is set
type envReader struct {
	errs *[]error
}

func (e envReader) str(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func (e envReader) int(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (e envReader) float(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = f
}

func (e envReader) bool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func (e envReader) duration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

func (e envReader) list(key string, dst *[]string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
