package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストアドライバ
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	StoreDriver   string
	DatabaseURL   string
	MongoURL      string
	MongoDatabase string

	// Token
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// GitHub
	GitHubToken         string
	GitHubAPIURL        string
	GitHubTimeout       time.Duration
	GitHubRatePerMinute int
	GitHubCacheTTL      time.Duration

	// Cache
	RedisURL string

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigins []string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は不足分をまとめてエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.StoreDriver = strings.ToLower(getEnvString("STORE_DRIVER", StoreDriverPostgres))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreDriverMongo:
		cfg.MongoURL = os.Getenv("MONGO_URL")
		if cfg.MongoURL == "" {
			missing = append(missing, "MONGO_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER: %q (want %q or %q)", cfg.StoreDriver, StoreDriverPostgres, StoreDriverMongo)
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MongoDatabase = getEnvString("MONGO_DATABASE", "devconnect")
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 100*time.Hour)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.GitHubToken = getEnvString("GITHUB_TOKEN", "")
	cfg.GitHubAPIURL = strings.TrimRight(getEnvString("GITHUB_API_URL", "https://api.github.com"), "/")
	cfg.GitHubTimeout = getEnvDuration("GITHUB_TIMEOUT", 5*time.Second)
	cfg.GitHubRatePerMinute = getEnvInt("GITHUB_RATE_PER_MINUTE", 60)
	cfg.GitHubCacheTTL = getEnvDuration("GITHUB_CACHE_TTL", 10*time.Minute)
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの環境変数をトリム済みのスライスとして返す。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
