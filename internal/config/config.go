package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/reasv/board-archiver/internal/blobstore"
	"github.com/reasv/board-archiver/internal/fetcher"
)

// Load env vars from .env file directly
func init() {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist (e.g. in production),
		// but we should log it just in case.
		log.Println("No .env file found or error loading it, using system environment variables")
	}
}

// Config is the fully-resolved runtime configuration, per spec.md §6.
type Config struct {
	DatabaseURL    string
	DBMaxOpenConns int

	DataRoot        string
	EnableS3Storage bool
	S3              blobstore.S3Config

	BoardAPIBase string
	ImageCDNBase string

	Fetcher fetcher.Config

	AllowedOrigins []string

	ListenAddr string
}

// Load resolves Config from the environment, applying spec.md §6 defaults.
func Load() Config {
	fcfg := fetcher.DefaultConfig()
	fcfg.QuotaPerMinute = getEnvFloat("RATE_LIMIT_QUOTA_PER_MINUTE", fcfg.QuotaPerMinute)
	fcfg.Burst = getEnvInt("RATE_LIMIT_BURST", fcfg.Burst)
	fcfg.JitterMinMs = getEnvInt("RATE_LIMIT_JITTER_MIN_MS", fcfg.JitterMinMs)
	fcfg.JitterIntervalMs = getEnvInt("RATE_LIMIT_JITTER_INTERVAL_MS", fcfg.JitterIntervalMs)
	fcfg.MaxTimeSeconds = getEnvInt("RETRY_FAILED_MAX_TIME_SECONDS", fcfg.MaxTimeSeconds)
	fcfg.UserAgent = getEnvString("FETCHER_USER_AGENT", fcfg.UserAgent)
	fcfg.Proxies = parseProxies(os.Getenv("FETCHER_PROXIES"))

	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 50),

		DataRoot:        getEnvString("DATA_ROOT", "data"),
		EnableS3Storage: getEnvBool("ENABLE_S3_STORAGE", false),
		S3: blobstore.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnvString("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},

		BoardAPIBase: getEnvString("BOARD_API_BASE", "https://a.4cdn.org"),
		ImageCDNBase: getEnvString("IMAGE_CDN_BASE", "https://i.4cdn.org"),

		Fetcher: fcfg,

		AllowedOrigins: GetAllowedOrigins(),
		ListenAddr:     getEnvString("LISTEN_ADDR", ":8080"),
	}
}

// parseProxies parses a "url|weight,url|weight,..." list; weight defaults to 1.
func parseProxies(raw string) []fetcher.ProxyConfig {
	if raw == "" {
		return nil
	}
	var out []fetcher.ProxyConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "|", 2)
		weight := 1
		if len(parts) == 2 {
			if w, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
				weight = w
			}
		}
		out = append(out, fetcher.ProxyConfig{URL: parts[0], Weight: weight})
	}
	return out
}

// GetAllowedOrigins returns a slice of allowed origins from the environment variable.
// It defaults to localhost:3000 if not set.
func GetAllowedOrigins() []string {
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr == "" {
		return []string{"http://localhost:3000"}
	}

	parts := strings.Split(originsStr, ",")
	var origins []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvString(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
