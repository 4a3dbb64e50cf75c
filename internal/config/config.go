package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Upstream    UpstreamConfig
	Credentials CredentialsConfig
	Breaker     BreakerConfig
	Archive     ArchiveConfig
	Logging     LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration. An empty URL disables the archive.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ProviderConfig holds the HTTP settings of one upstream provider
type ProviderConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// UpstreamConfig holds the provider configurations
type UpstreamConfig struct {
	Binance       ProviderConfig
	CoinAPI       ProviderConfig
	LiveCoinWatch ProviderConfig
	AlphaVantage  ProviderConfig
	Concurrency   int
}

// CredentialsConfig selects the credential policy and its keys
type CredentialsConfig struct {
	Policy string
	File   string
	Keys   domain.Credentials
}

// BreakerConfig holds circuit breaker configuration
type BreakerConfig struct {
	MaxRequests      int
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold int
}

// ArchiveConfig holds order-book archiving configuration
type ArchiveConfig struct {
	Symbols       []string
	Interval      time.Duration
	Depth         int
	RetentionDays int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// ArchiveEnabled reports whether order books should be archived
func (c *Config) ArchiveEnabled() bool {
	return c.Database.URL != "" && len(c.Archive.Symbols) > 0
}

// Load reads configuration from a .env file (if any) and environment variables with defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			CORSOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:             getEnvString("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Upstream: UpstreamConfig{
			Binance:       loadProvider("BINANCE", "https://api.binance.com"),
			CoinAPI:       loadProvider("COINAPI", "https://rest.coinapi.io"),
			LiveCoinWatch: loadProvider("LIVECOINWATCH", "https://api.livecoinwatch.com"),
			AlphaVantage:  loadProvider("ALPHAVANTAGE", "https://www.alphavantage.co"),
			Concurrency:   getEnvInt("UPSTREAM_CONCURRENCY", 8),
		},
		Credentials: CredentialsConfig{
			Policy: getEnvString("CREDENTIALS_POLICY", "stateless"),
			File:   getEnvString("CREDENTIALS_FILE", ""),
			Keys: domain.Credentials{
				BinanceKey:      getEnvString("BINANCE_API_KEY", ""),
				CoinAPIKey:      getEnvString("COINAPI_API_KEY", ""),
				CoinWatchKey:    getEnvString("LIVECOINWATCH_API_KEY", ""),
				AlphaVantageKey: getEnvString("ALPHA_VANTAGE_KEY", ""),
			},
		},
		Breaker: BreakerConfig{
			MaxRequests:      getEnvInt("BREAKER_MAX_REQUESTS", 3),
			Interval:         getEnvDuration("BREAKER_INTERVAL", 30*time.Second),
			Timeout:          getEnvDuration("BREAKER_TIMEOUT", 30*time.Second),
			FailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		},
		Archive: ArchiveConfig{
			Symbols:       getEnvList("ARCHIVE_SYMBOLS", nil),
			Interval:      getEnvDuration("ARCHIVE_INTERVAL", 30*time.Second),
			Depth:         getEnvInt("ARCHIVE_DEPTH", 20),
			RetentionDays: getEnvInt("ARCHIVE_RETENTION_DAYS", 30),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
	}

	if cfg.Credentials.File != "" {
		fileKeys, err := LoadCredentialsFile(cfg.Credentials.File)
		if err != nil {
			return nil, err
		}
		// environment wins over the file
		cfg.Credentials.Keys = cfg.Credentials.Keys.Merge(*fileKeys)
	}

	for i, s := range cfg.Archive.Symbols {
		cfg.Archive.Symbols[i] = domain.NormalizeSymbolName(s)
	}

	return cfg, nil
}

// credentialsFile is the layout of CREDENTIALS_FILE
type credentialsFile struct {
	API domain.Credentials `yaml:"api"`
}

// LoadCredentialsFile reads API keys from a yaml file
func LoadCredentialsFile(path string) (*domain.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return &f.API, nil
}

// Policy builds the credential policy the facade runs with
func (c *Config) Policy() (domain.Policy, error) {
	return domain.ParsePolicy(c.Credentials.Policy, c.Credentials.Keys)
}

// Validate ensures configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	policy, err := c.Policy()
	if err != nil {
		return err
	}
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("credentials policy %s: %w", policy, err)
	}

	for name, p := range map[string]ProviderConfig{
		"binance":       c.Upstream.Binance,
		"coinapi":       c.Upstream.CoinAPI,
		"livecoinwatch": c.Upstream.LiveCoinWatch,
		"alphavantage":  c.Upstream.AlphaVantage,
	} {
		if p.BaseURL == "" {
			return fmt.Errorf("%s base URL is required", name)
		}
		if p.MaxRetries < 0 {
			return fmt.Errorf("%s max retries must not be negative", name)
		}
	}

	if c.Upstream.Concurrency < 1 {
		return fmt.Errorf("upstream concurrency must be at least 1")
	}

	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("breaker failure threshold must be at least 1")
	}

	if c.ArchiveEnabled() {
		if c.Archive.Interval < 5*time.Second {
			return fmt.Errorf("archive interval must be at least 5 seconds")
		}
		if c.Archive.Interval > 24*time.Hour {
			return fmt.Errorf("archive interval must be less than 24 hours")
		}
		for _, s := range c.Archive.Symbols {
			if err := domain.ValidateSymbolName(s); err != nil {
				return fmt.Errorf("archive symbols: %w", err)
			}
		}
		if err := domain.NewParams(c.Archive.Symbols[0], c.Archive.Depth).ValidateDepth(); err != nil {
			return fmt.Errorf("archive depth: %w", err)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func loadProvider(prefix, defaultURL string) ProviderConfig {
	return ProviderConfig{
		BaseURL:      getEnvString(prefix+"_BASE_URL", defaultURL),
		Timeout:      getEnvDuration(prefix+"_TIMEOUT", 10*time.Second),
		MaxRetries:   getEnvInt(prefix+"_MAX_RETRIES", 3),
		RetryBackoff: getEnvDuration(prefix+"_RETRY_BACKOFF", 100*time.Millisecond),
	}
}

// Helper functions
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
