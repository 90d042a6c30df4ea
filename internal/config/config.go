package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Remote Raihasa backend configuration
	Backend BackendConfig

	// Client storage backends
	Storage StorageConfig

	// Visitor session configuration
	Session SessionConfig

	// Logging configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr    string
	AllowedOrigin string // CORS origin for the web frontend
	SecureCookies bool   // set Secure on cookies (enable behind TLS)
	RedirectsPath string // optional YAML file with static path aliases
}

// BackendConfig holds configuration for the remote backend API
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// StorageConfig holds configuration for the key-value storage backends
type StorageConfig struct {
	Driver       string // memory, sqlite, redis
	SQLitePath   string
	RedisAddress string
}

// SessionConfig holds visitor session configuration
type SessionConfig struct {
	IdleMinutes   int    // sessions idle longer than this are swept
	SweepSchedule string // cron expression for the idle sweep
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "https://api.raihasa.id"
	}

	backendTimeout := envInt("BACKEND_TIMEOUT_SECONDS", 30)

	storageDriver := os.Getenv("STORAGE_DRIVER")
	if storageDriver == "" {
		storageDriver = "sqlite"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "raihasa.sqlite"
	}

	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	sessionIdle := envInt("SESSION_IDLE_MINUTES", 60)

	sweepSchedule := os.Getenv("SESSION_SWEEP_SCHEDULE")
	if sweepSchedule == "" {
		sweepSchedule = "*/10 * * * *"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Server: ServerConfig{
			ListenAddr:    listenAddr,
			AllowedOrigin: allowedOrigin,
			SecureCookies: os.Getenv("SECURE_COOKIES") == "true",
			RedirectsPath: os.Getenv("REDIRECTS_PATH"),
		},
		Backend: BackendConfig{
			BaseURL:        backendURL,
			TimeoutSeconds: backendTimeout,
		},
		Storage: StorageConfig{
			Driver:       storageDriver,
			SQLitePath:   sqlitePath,
			RedisAddress: redisAddr,
		},
		Session: SessionConfig{
			IdleMinutes:   sessionIdle,
			SweepSchedule: sweepSchedule,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
