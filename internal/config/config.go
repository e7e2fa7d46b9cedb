package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// 未設定の場合はシード済みインメモリストアで起動する（開発用）。
	DatabaseURL string

	// Admin
	AdminEmail    string
	AdminPassword string

	// Session
	SessionMaxAge          time.Duration
	SessionCleanupInterval time.Duration

	// Proxy
	ProxyAllowedHosts []string
	ProxyTimeout      time.Duration
	ProxyMaxSize      int64

	// Client IP
	IPEchoPrimaryURL   string
	IPEchoSecondaryURL string
	IPEchoTimeout      time.Duration

	// Rate Limit（リクエスト/分）
	RateLimitPublic int
	RateLimitAdmin  int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	if cfg.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}

	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", 24*time.Hour)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	cfg.ProxyAllowedHosts = getEnvStringList("PROXY_ALLOWED_HOSTS", nil)
	cfg.ProxyTimeout = getEnvDuration("PROXY_TIMEOUT", 10*time.Second)
	cfg.ProxyMaxSize = getEnvInt64("PROXY_MAX_SIZE", 10485760)
	cfg.IPEchoPrimaryURL = getEnvString("IP_ECHO_PRIMARY_URL", "https://api.ipify.org")
	cfg.IPEchoSecondaryURL = getEnvString("IP_ECHO_SECONDARY_URL", "https://ifconfig.me/ip")
	cfg.IPEchoTimeout = getEnvDuration("IP_ECHO_TIMEOUT", 5*time.Second)
	cfg.RateLimitPublic = getEnvInt("RATE_LIMIT_PUBLIC", 120)
	cfg.RateLimitAdmin = getEnvInt("RATE_LIMIT_ADMIN", 60)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// UseMemoryStore はインメモリストアで起動すべきかを返す。
func (c *Config) UseMemoryStore() bool {
	return c.DatabaseURL == ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvStringList はカンマ区切りの環境変数をトリムしてスライスに分解する。
func getEnvStringList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
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
