// Package config はプロセス設定を環境変数と .env ファイルから読み込みます。
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"todo_backend/internal/platform/db"
	"todo_backend/internal/platform/redis"
)

const (
	defaultPort           = "5000"
	defaultClientURL      = "http://localhost:5173"
	defaultUserCacheTTL   = 5 * time.Minute
	defaultAuthRateLimit  = 20
	defaultAuthRateWindow = time.Minute
)

// ErrMissingJWTSecret はJWT_SECRETが未設定の場合に返されます。
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Config はサーバー全体の設定を保持します。
type Config struct {
	Port      string
	ClientURL string

	// TrustedProxies は X-Forwarded-For を信頼するプロキシのIP/CIDRです。空の場合は誰も信頼せず接続元アドレスを使います。
	TrustedProxies []string

	JWTSecret  string
	BcryptCost int

	DB            db.Config
	RunMigrations bool

	Redis        redis.Config
	UserCacheTTL time.Duration

	// AuthRateLimit は AuthRateWindow あたりに許可する /auth/register・/auth/login の回数です。0 で無効になります。
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// Load は files（省略時は ".env"）を読み込んだ後、環境変数から設定を組み立てます。
// 既に設定されている環境変数は .env で上書きされません。
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv は現在の環境変数から設定を組み立てます。
func FromEnv() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", defaultPort),
		ClientURL:     getenv("CLIENT_URL", defaultClientURL),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DB:            db.LoadConfigFromEnv(),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
		Redis: redis.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}
	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	var err error
	if cfg.TrustedProxies, err = proxiesEnv("TRUSTED_PROXIES"); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return Config{}, err
	}
	if cfg.UserCacheTTL, err = durationEnv("USER_CACHE_TTL", defaultUserCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateLimit, err = intEnv("AUTH_RATE_LIMIT", defaultAuthRateLimit); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateWindow, err = durationEnv("AUTH_RATE_WINDOW", defaultAuthRateWindow); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, v)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, v)
	}
	return d, nil
}

// proxiesEnv はカンマ区切りのIP/CIDRリストを読み込みます。未設定の場合はnilを返します。
func proxiesEnv(key string) ([]string, error) {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return nil, fmt.Errorf("invalid %s entry %q: must be an IP or CIDR", key, p)
			}
		}
		out = append(out, p)
	}
	return out, nil
}
