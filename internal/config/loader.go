package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies NEREUS_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known NEREUS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Sui ──
	setStr(&cfg.Sui.IndexerURL, "NEREUS_SUI_INDEXER_URL")
	setStr(&cfg.Sui.IndexerAPIKey, "NEREUS_SUI_INDEXER_API_KEY")
	setStr(&cfg.Sui.NodeURL, "NEREUS_SUI_NODE_URL")
	setStr(&cfg.Sui.MarketPackage, "NEREUS_SUI_MARKET_PACKAGE")
	setStr(&cfg.Sui.BasePackage, "NEREUS_SUI_BASE_PACKAGE")

	// ── Relayer ──
	setStr(&cfg.Relayer.BaseURL, "NEREUS_RELAYER_BASE_URL")
	setStr(&cfg.Relayer.APIKey, "NEREUS_RELAYER_API_KEY")

	// ── Database ──
	setStr(&cfg.Database.DSN, "NEREUS_DATABASE_DSN")
	setStr(&cfg.Database.Host, "NEREUS_DATABASE_HOST")
	setInt(&cfg.Database.Port, "NEREUS_DATABASE_PORT")
	setStr(&cfg.Database.Database, "NEREUS_DATABASE_NAME")
	setStr(&cfg.Database.User, "NEREUS_DATABASE_USER")
	setStr(&cfg.Database.Password, "NEREUS_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "NEREUS_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "NEREUS_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "NEREUS_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "NEREUS_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "NEREUS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "NEREUS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "NEREUS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "NEREUS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "NEREUS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "NEREUS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "NEREUS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "NEREUS_S3_REGION")
	setStr(&cfg.S3.Bucket, "NEREUS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "NEREUS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "NEREUS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "NEREUS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "NEREUS_S3_FORCE_PATH_STYLE")

	// ── Market ──
	setDuration(&cfg.Market.RefreshInterval, "NEREUS_MARKET_REFRESH_INTERVAL")
	setInt(&cfg.Market.PriceFetchLimit, "NEREUS_MARKET_PRICE_FETCH_LIMIT")
	setDuration(&cfg.Market.OrderTTL, "NEREUS_MARKET_ORDER_TTL")
	setDuration(&cfg.Market.LeaderboardTTL, "NEREUS_MARKET_LEADERBOARD_TTL")

	// ── Server ──
	setInt(&cfg.Server.Port, "NEREUS_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "NEREUS_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimitPerMin, "NEREUS_SERVER_RATE_LIMIT_PER_MIN")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "NEREUS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "NEREUS_NOTIFY_TELEGRAM_CHAT_ID")

	// ── Top-level ──
	setStr(&cfg.Mode, "NEREUS_MODE")
	setStr(&cfg.LogLevel, "NEREUS_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
