package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env        string
	LogLevel   string
	APIVersion string
	// API
	Port            string
	DatabaseURL     string
	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration
	// Provider
	Provider          string
	CoinGeckoAPIBase  string
	UpstreamUserAgent string
	UpstreamTimeout   time.Duration
	PriceCacheTTL     time.Duration
	// Recorder
	RecordSchedule string
	// Redis (idempotency, snapshot pub/sub)
	RedisEnabled       bool
	IdempotencyBackend string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisTTL           time.Duration
	PriceChannel       string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		APIVersion:         getEnv("API_VERSION", "1.0.0"),
		Port:               getEnv("PORT", "3001"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSOrigin:         getEnv("CORS_ORIGIN", "*"),
		RateLimitMax:       atoiDef(getEnv("RATE_LIMIT_MAX", "100"), 100),
		RateLimitWindow:    durMS("RATE_LIMIT_WINDOW_MS", 15*60*1000),
		ShutdownTimeout:    durMS("SHUTDOWN_TIMEOUT_MS", 30000),
		Provider:           getEnv("PROVIDER", "coingecko"),
		CoinGeckoAPIBase:   getEnv("COINGECKO_API_BASE", "https://api.coingecko.com/api/v3"),
		UpstreamUserAgent:  getEnv("UPSTREAM_USER_AGENT", "btcprice-service/1.0"),
		UpstreamTimeout:    durMS("UPSTREAM_TIMEOUT_MS", 5000),
		PriceCacheTTL:      durMS("PRICE_CACHE_TTL_MS", 10000),
		RecordSchedule:     getEnv("RECORD_SCHEDULE", "@every 1m"),
		RedisEnabled:       boolDef(getEnv("REDIS_ENABLED", "true"), true),
		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "redis"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:           durMS("IDEMPOTENCY_TTL_MS", 86400000),
		PriceChannel:       getEnv("PRICE_CHANNEL", "btc:price"),
	}
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c Config) IsProduction() bool { return c.Env == "production" }
