package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// which store implementation backs the repositories
	StoreBackend string

	JWTSecret string
	TokenTTL  time.Duration // 0 = tokens never expire

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IngestDelay   time.Duration
	IngestTimeout time.Duration

	OTLPEndpoint string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	RateLimit    int
	RateWindow   time.Duration
	MaxBodyBytes int64
	CORSOrigins  []string

	WorkerHealthPort int
}

func Load() Config {
	// .env is a dev convenience; absence is not an error
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:          env,
		Port:         port,
		DBURL:        dbURL,
		StoreBackend: getEnv("STORE_BACKEND", BackendPostgres),

		JWTSecret: getEnv("JWT_SECRET", "healthvault-secret"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 0),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		IngestDelay:   getEnvDuration("INGEST_DELAY", 1200*time.Millisecond),
		IngestTimeout: getEnvDuration("INGEST_TIMEOUT", 5*time.Second),

		OTLPEndpoint: getEnv("OTEL_ENDPOINT", ""),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),

		RateLimit:    getEnvInt("RATE_LIMIT", 20),
		RateWindow:   getEnvDuration("RATE_WINDOW", time.Minute),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		WorkerHealthPort: getEnvInt("WORKER_HEALTH_PORT", 8081),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "healthvault")
	pass := getEnv("DB_PASSWORD", "healthvault")
	name := getEnv("DB_NAME", "healthvault")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
