package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string
	RedisURL    string

	JWTSecret          string
	TokenTTL           time.Duration
	TokenPruneSchedule string

	StorageDriver    string
	StoragePublicDir string
	StoragePublicURL string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	LoginMaxAttempts int
	LoginDecay       time.Duration
	MaxPhotoSizeKB   int64

	LogLevel  string
	LogFormat string
}

const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"
)

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "pengaduan"),
		DBPort:      getEnv("DB_PORT", "5432"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenPruneSchedule: getEnv("TOKEN_PRUNE_SCHEDULE", "@hourly"),

		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
		StoragePublicDir: getEnv("STORAGE_PUBLIC_DIR", "./storage/public"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "/storage"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "pengaduan_app"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	var err error
	cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.LoginDecay, err = time.ParseDuration(getEnv("LOGIN_DECAY", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_DECAY: %w", err)
	}
	cfg.LoginMaxAttempts, err = strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}
	cfg.MaxPhotoSizeKB, err = strconv.ParseInt(getEnv("MAX_PHOTO_SIZE_KB", "2048"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PHOTO_SIZE_KB: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "change-me"
	}

	switch cfg.StorageDriver {
	case StorageDriverLocal, StorageDriverCloudinary:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from DB_*.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
