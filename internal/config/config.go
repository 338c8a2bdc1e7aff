// Package config defines the top-level configuration for nereusd and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by NEREUS_* environment variables.
type Config struct {
	Sui      SuiConfig      `toml:"sui"`
	Relayer  RelayerConfig  `toml:"relayer"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Market   MarketConfig   `toml:"market"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// SuiConfig holds the chain read endpoints and package addresses.
type SuiConfig struct {
	IndexerURL    string `toml:"indexer_url"`     // GraphQL indexer endpoint
	IndexerAPIKey string `toml:"indexer_api_key"` // optional bearer token
	NodeURL       string `toml:"node_url"`        // read-only move-call gateway
	MarketPackage string `toml:"market_package"`  // package publishing the market module
	BasePackage   string `toml:"base_package"`    // package publishing the USDC module
}

// RelayerConfig holds the sponsored-execution service parameters. The
// relayer owns transaction signing and submission; nereusd only hands it
// validated payloads.
type RelayerConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds object storage parameters for oracle settings blobs.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// MarketConfig holds refresh and trading parameters.
type MarketConfig struct {
	RefreshInterval time.Duration `toml:"refresh_interval"`
	PriceFetchLimit int           `toml:"price_fetch_limit"` // concurrent price reads per cycle
	OrderTTL        time.Duration `toml:"order_ttl"`
	LeaderboardTTL  time.Duration `toml:"leaderboard_ttl"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"` // if empty, auth is disabled
	RateLimitPerMin int      `toml:"rate_limit_per_min"`
}

// NotifyConfig holds operator alerting parameters.
type NotifyConfig struct {
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID string `toml:"telegram_chat_id"`
}

// Defaults returns a Config populated with sensible development defaults.
func Defaults() Config {
	return Config{
		Sui: SuiConfig{
			IndexerURL: "https://indexer.testnet.sui.io/graphql",
			NodeURL:    "https://fullnode.testnet.sui.io:443",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "nereus",
			User:         "nereus",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Market: MarketConfig{
			RefreshInterval: 30 * time.Second,
			PriceFetchLimit: 8,
			OrderTTL:        time.Hour,
			LeaderboardTTL:  time.Minute,
		},
		Server: ServerConfig{
			Port:            8080,
			RateLimitPerMin: 120,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// Validate checks that the configuration is internally consistent for the
// selected mode. It returns the first problem found.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "serve", "refresh", "full":
	default:
		return fmt.Errorf("config: unsupported mode %q", c.Mode)
	}

	if strings.TrimSpace(c.Sui.IndexerURL) == "" {
		return fmt.Errorf("config: sui.indexer_url is required")
	}
	if strings.TrimSpace(c.Sui.NodeURL) == "" {
		return fmt.Errorf("config: sui.node_url is required")
	}
	if strings.TrimSpace(c.Sui.MarketPackage) == "" {
		return fmt.Errorf("config: sui.market_package is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Market.RefreshInterval < time.Second {
		return fmt.Errorf("config: market.refresh_interval %s too small", c.Market.RefreshInterval)
	}
	if c.Market.PriceFetchLimit <= 0 {
		return fmt.Errorf("config: market.price_fetch_limit must be positive")
	}

	return nil
}
