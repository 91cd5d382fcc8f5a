package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage. Images go to S3 when S3Bucket is set, otherwise to MediaDir.
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
	MediaDir    string
	MediaURL    string

	// Logging
	LogLevel  string
	LogFormat string

	// HTTP behaviour
	CORSOrigins        []string
	PageSize           int
	RecipeCreateLimit  int
	RecipeCreateWindow time.Duration
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// UsesRedis reports whether a Redis server has been configured
func (c *Config) UsesRedis() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// defaultConfig returns the values used when nothing else is set
func defaultConfig() *Config {
	return &Config{
		ServerPort:         "8000",
		ServerHost:         "0.0.0.0",
		DBDriver:           "postgres",
		DBHost:             "localhost",
		DBPort:             "5432",
		DBUser:             "postgres",
		DBName:             "foodgram",
		DBSSLMode:          "disable",
		SQLitePath:         "foodgram.db",
		RedisPort:          "6379",
		TokenTTL:           7 * 24 * time.Hour,
		S3Region:           "us-east-1",
		MediaDir:           "media",
		MediaURL:           "/media",
		LogLevel:           "info",
		LogFormat:          "json",
		CORSOrigins:        []string{"http://localhost:3000"},
		PageSize:           6,
		RecipeCreateLimit:  30,
		RecipeCreateWindow: time.Hour,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := defaultConfig()

	if err := loadEnvConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	// CI uses environment variables only; everywhere else Docker secrets win.
	if env != CI {
		loadSecrets(cfg)
	}

	if env == Development && os.Getenv("LOG_FORMAT") == "" {
		cfg.LogFormat = "console"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig overrides defaults with whatever is present in the environment
func loadEnvConfig(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ServerHost = getEnv("SERVER_HOST", cfg.ServerHost)

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", cfg.DBSSLMode)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)

	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	cfg.S3Bucket = getEnv("S3_BUCKET_NAME", cfg.S3Bucket)
	cfg.S3Region = getEnv("AWS_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3PublicURL = getEnv("S3_PUBLIC_URL", cfg.S3PublicURL)
	cfg.MediaDir = getEnv("MEDIA_DIR", cfg.MediaDir)
	cfg.MediaURL = getEnv("MEDIA_URL", cfg.MediaURL)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", cfg.RedisDB); err != nil {
		return err
	}
	if cfg.PageSize, err = getEnvInt("PAGE_SIZE", cfg.PageSize); err != nil {
		return err
	}
	if cfg.RecipeCreateLimit, err = getEnvInt("RECIPE_CREATE_LIMIT", cfg.RecipeCreateLimit); err != nil {
		return err
	}
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return err
	}
	if cfg.RecipeCreateWindow, err = getEnvDuration("RECIPE_CREATE_WINDOW", cfg.RecipeCreateWindow); err != nil {
		return err
	}

	return nil
}

// loadSecrets reads sensitive values from Docker secrets when they are mounted
func loadSecrets(cfg *Config) {
	if v := readSecret("db_user"); v != "" {
		cfg.DBUser = v
	}
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
