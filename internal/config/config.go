package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	DBDriver  string
	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OllamaBaseURL        string
	ModelCatalogTimeout  time.Duration
	ModelCatalogCacheTTL time.Duration

	ChatContextWindowSize int

	LogMode string
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	// sqlite default keeps the local chat.db file layout; for mysql use a DSN like
	// app:apppass@tcp(127.0.0.1:3306)/chat?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "chat.db"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	catalogTimeout := 5 * time.Second
	if v := os.Getenv("MODEL_CATALOG_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			catalogTimeout = time.Duration(n) * time.Second
		}
	}

	catalogTTL := 60 * time.Second
	if v := os.Getenv("MODEL_CATALOG_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			catalogTTL = time.Duration(n) * time.Second
		}
	}

	windowSize := 20
	if v := os.Getenv("CHAT_CONTEXT_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			windowSize = n
		}
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "dev"
	}

	return Config{
		HTTPAddr:  addr,
		DBDriver:  driver,
		DBDSN:     dsn,
		JWTSecret: secret,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		OllamaBaseURL:        ollamaBaseURL,
		ModelCatalogTimeout:  catalogTimeout,
		ModelCatalogCacheTTL: catalogTTL,

		ChatContextWindowSize: windowSize,

		LogMode: logMode,
	}
}
