package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Fulfillment FulfillmentConfig
	Printful    PrintfulConfig
	Printify    PrintifyConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// FulfillmentConfig holds orchestration settings
type FulfillmentConfig struct {
	SyncEnabled     bool
	SyncInterval    time.Duration
	SyncConcurrency int
	QuoteTimeout    time.Duration
	DefaultStrategy string
	QualityPriority []string // provider codes, best first
	DedupeTTL       time.Duration
}

// PrintfulConfig holds Printful API credentials and endpoints
type PrintfulConfig struct {
	Enabled       bool
	APIKey        string
	BaseURL       string
	WebhookSecret string
	Timeout       time.Duration
}

// PrintifyConfig holds Printify API credentials and endpoints
type PrintifyConfig struct {
	Enabled       bool
	APIToken      string
	ShopID        string
	BaseURL       string
	WebhookSecret string
	Timeout       time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TSHOP_ prefix (e.g., TSHOP_PRINTFUL_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Fulfillment: FulfillmentConfig{
			SyncEnabled:     v.GetBool("fulfillment.sync_enabled"),
			SyncInterval:    v.GetDuration("fulfillment.sync_interval"),
			SyncConcurrency: v.GetInt("fulfillment.sync_concurrency"),
			QuoteTimeout:    v.GetDuration("fulfillment.quote_timeout"),
			DefaultStrategy: v.GetString("fulfillment.default_strategy"),
			QualityPriority: v.GetStringSlice("fulfillment.quality_priority"),
			DedupeTTL:       v.GetDuration("fulfillment.dedupe_ttl"),
		},
		Printful: PrintfulConfig{
			Enabled:       v.GetBool("printful.enabled"),
			APIKey:        v.GetString("printful.api_key"),
			BaseURL:       v.GetString("printful.base_url"),
			WebhookSecret: v.GetString("printful.webhook_secret"),
			Timeout:       v.GetDuration("printful.timeout"),
		},
		Printify: PrintifyConfig{
			Enabled:       v.GetBool("printify.enabled"),
			APIToken:      v.GetString("printify.api_token"),
			ShopID:        v.GetString("printify.shop_id"),
			BaseURL:       v.GetString("printify.base_url"),
			WebhookSecret: v.GetString("printify.webhook_secret"),
			Timeout:       v.GetDuration("printify.timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tshop-fulfillment"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "tshop"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB, webhook payloads are small
	}
	if cfg.Fulfillment.SyncInterval == 0 {
		cfg.Fulfillment.SyncInterval = 5 * time.Minute
	}
	if cfg.Fulfillment.SyncConcurrency == 0 {
		cfg.Fulfillment.SyncConcurrency = 5
	}
	if cfg.Fulfillment.QuoteTimeout == 0 {
		cfg.Fulfillment.QuoteTimeout = 15 * time.Second
	}
	if cfg.Fulfillment.DefaultStrategy == "" {
		cfg.Fulfillment.DefaultStrategy = "cost"
	}
	if cfg.Fulfillment.DedupeTTL == 0 {
		cfg.Fulfillment.DedupeTTL = 72 * time.Hour
	}
	if cfg.Printful.BaseURL == "" {
		cfg.Printful.BaseURL = "https://api.printful.com"
	}
	if cfg.Printful.Timeout == 0 {
		cfg.Printful.Timeout = 30 * time.Second
	}
	if cfg.Printify.BaseURL == "" {
		cfg.Printify.BaseURL = "https://api.printify.com/v1"
	}
	if cfg.Printify.Timeout == 0 {
		cfg.Printify.Timeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	// An enabled provider with missing credentials must fail at startup,
	// not on the first outbound call.
	if c.Printful.Enabled {
		if c.Printful.APIKey == "" {
			return fmt.Errorf("printful.api_key is required when printful is enabled")
		}
		if c.Printful.WebhookSecret == "" {
			return fmt.Errorf("printful.webhook_secret is required when printful is enabled")
		}
	}
	if c.Printify.Enabled {
		if c.Printify.APIToken == "" {
			return fmt.Errorf("printify.api_token is required when printify is enabled")
		}
		if c.Printify.ShopID == "" {
			return fmt.Errorf("printify.shop_id is required when printify is enabled")
		}
		if c.Printify.WebhookSecret == "" {
			return fmt.Errorf("printify.webhook_secret is required when printify is enabled")
		}
	}
	if !c.Printful.Enabled && !c.Printify.Enabled {
		return fmt.Errorf("at least one fulfillment provider must be enabled")
	}

	switch c.Fulfillment.DefaultStrategy {
	case "cost", "speed", "quality":
	default:
		return fmt.Errorf("fulfillment.default_strategy must be cost, speed or quality, got %q", c.Fulfillment.DefaultStrategy)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
