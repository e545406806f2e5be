package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Search
	GoogleAPIKey     string
	GoogleSearchCX   string
	SearchProvider   string        // "google" または "rss"
	SearchLookback   time.Duration // 初回生成時の検索ウィンドウ（due判定の基準値とは独立）
	SearchMaxResults int

	// Summarizer
	OpenAIAPIKey string

	// Generation
	MinContentLength int // これ以下の本文はペイウォール/スタブとみなして除外
	TopArticles      int // 要約に渡す記事数の上限

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Worker
	DigestCron string

	// Mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Rate Limit
	RateLimitGeneral  int
	RateLimitGenerate int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// 検索・要約・メールの認証情報は任意であり、未設定の場合は
// 各コンポーネントが縮退動作（空結果＋エラー記録、ログのみ配信）する。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	cfg.GoogleSearchCX = os.Getenv("GOOGLE_SEARCH_CX")
	cfg.SearchProvider = getEnvString("SEARCH_PROVIDER", "google")
	cfg.SearchLookback = getEnvDuration("SEARCH_LOOKBACK", 168*time.Hour)
	cfg.SearchMaxResults = getEnvInt("SEARCH_MAX_RESULTS", 10)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.MinContentLength = getEnvInt("MIN_CONTENT_LENGTH", 500)
	cfg.TopArticles = getEnvInt("GENERATE_TOP_ARTICLES", 5)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.DigestCron = getEnvString("DIGEST_CRON", "0 * * * *")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.MailFrom = getEnvString("MAIL_FROM", "NewsPulse <digest@newspulse.local>")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitGenerate = getEnvInt("RATE_LIMIT_GENERATE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.SearchProvider != "google" && cfg.SearchProvider != "rss" {
		return nil, fmt.Errorf("SEARCH_PROVIDER must be \"google\" or \"rss\", got %q", cfg.SearchProvider)
	}
	if cfg.TopArticles <= 0 {
		return nil, fmt.Errorf("GENERATE_TOP_ARTICLES must be positive, got %d", cfg.TopArticles)
	}

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
