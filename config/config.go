package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	PaymentStripe = "stripe"
	PaymentFake   = "fake"
)

type Config struct {
	HTTP      HTTPConfig         `yaml:"http"`
	GRPC      GRPCConfig         `yaml:"grpc"`
	Database  DatabaseConfig     `yaml:"database"`
	Redis     RedisConfig        `yaml:"redis"`
	Kafka     KafkaConfig        `yaml:"kafka"`
	Booking   BookingConfig      `yaml:"booking"`
	Worker    WorkerConfig       `yaml:"worker"`
	Auth      AuthConfig         `yaml:"auth"`
	Payment   PaymentConfig      `yaml:"payment"`
	Telemetry TelemetryConfig    `yaml:"telemetry"`
	Log       LogConfig          `yaml:"log"`
	Tiers     domain.TierCatalog `yaml:"tiers"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
	Migrate  bool   `yaml:"migrate"`
	Tracing  bool   `yaml:"tracing"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig with an empty Addr makes the services fall back to process-local caches.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type BookingConfig struct {
	HoldTTL         time.Duration `yaml:"hold_ttl"`
	SearchCacheTTL  time.Duration `yaml:"search_cache_ttl"`
	PaymentLockTTL  time.Duration `yaml:"payment_lock_ttl"`
	DefaultPageSize int           `yaml:"default_page_size"`
	Currency        string        `yaml:"currency"`
}

type WorkerConfig struct {
	ExpirationSweep time.Duration `yaml:"expiration_sweep"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	Issuer     string        `yaml:"issuer"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type PaymentConfig struct {
	Provider  string `yaml:"provider"`
	SecretKey string `yaml:"secret_key"`
}

type TelemetryConfig struct {
	Enabled       bool    `yaml:"enabled"`
	ServiceName   string  `yaml:"service_name"`
	CollectorAddr string  `yaml:"collector_addr"`
	SampleRatio   float64 `yaml:"sample_ratio"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.BookingEventsTopic == "" {
		c.Kafka.BookingEventsTopic = "booking-events"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "aeroluxe-notifier"
	}
	if c.Booking.HoldTTL == 0 {
		c.Booking.HoldTTL = 15 * time.Minute
	}
	if c.Booking.SearchCacheTTL == 0 {
		c.Booking.SearchCacheTTL = 30 * time.Second
	}
	if c.Booking.PaymentLockTTL == 0 {
		c.Booking.PaymentLockTTL = 30 * time.Second
	}
	if c.Booking.DefaultPageSize == 0 {
		c.Booking.DefaultPageSize = domain.DefaultPageSize
	}
	if c.Booking.Currency == "" {
		c.Booking.Currency = "eur"
	}
	if c.Worker.ExpirationSweep == 0 {
		c.Worker.ExpirationSweep = time.Minute
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "aeroluxe"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Payment.Provider == "" {
		c.Payment.Provider = PaymentFake
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "aeroluxe"
	}
	if c.Telemetry.SampleRatio == 0 {
		c.Telemetry.SampleRatio = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.Tiers) == 0 {
		c.Tiers = domain.DefaultTiers()
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database: host and name are required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("database: unknown driver %q", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth: jwt_secret is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth: bcrypt_cost %d out of range", c.Auth.BcryptCost))
	}
	switch c.Payment.Provider {
	case PaymentStripe:
		if c.Payment.SecretKey == "" {
			errs = append(errs, errors.New("payment: secret_key is required for stripe"))
		}
	case PaymentFake:
	default:
		errs = append(errs, fmt.Errorf("payment: unknown provider %q", c.Payment.Provider))
	}
	if c.Booking.HoldTTL < 0 || c.Booking.PaymentLockTTL < 0 || c.Booking.SearchCacheTTL < 0 {
		errs = append(errs, errors.New("booking: durations must not be negative"))
	}
	if c.Booking.DefaultPageSize < 1 || c.Booking.DefaultPageSize > domain.MaxPageSize {
		errs = append(errs, fmt.Errorf("booking: default_page_size must be within 1..%d", domain.MaxPageSize))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, errors.New("telemetry: sample_ratio must be within 0..1"))
	}
	seen := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.ID == "" || seen[t.ID] {
			errs = append(errs, fmt.Errorf("tiers: empty or duplicate id %q", t.ID))
			continue
		}
		seen[t.ID] = true
		if t.Price < 0 {
			errs = append(errs, fmt.Errorf("tiers: %s has negative price", t.ID))
		}
	}
	return errors.Join(errs...)
}

// Path resolves the config location from CONFIG_PATH.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
