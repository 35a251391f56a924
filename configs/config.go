package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIBaseURL はAPI_BASE_URLが未設定の場合に使われるバックエンドのURLです。
const DefaultAPIBaseURL = "http://localhost:8000"

// Config holds the application configuration
type Config struct {
	Port           string
	Environment    string
	APIBaseURL     string        // 価格最適化バックエンドのベースURL
	RequestTimeout time.Duration // バックエンド呼び出しのタイムアウト
	AllowedOrigins []string      // 空の場合はすべてのオリジンを許可
	APIKey         string
	AdminUsername  string
	AdminPassword  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		APIBaseURL:     getEnv("API_BASE_URL", DefaultAPIBaseURL),
		RequestTimeout: time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		APIKey:         getEnv("API_KEY", ""),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
	}
}

// IsProduction 本番環境かどうか
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 正の整数として解釈できない値は既定値にフォールバック
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// getEnvList カンマ区切りの値をスライスに変換
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
