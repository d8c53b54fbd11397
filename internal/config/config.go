package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Port              string
	GinMode           string
	DatabaseURL       string
	DataPath          string
	LogDir            string
	JWTSecret         string
	MasterSecret      string
	AdminUsername     string
	AdminPassword     string
	TokenTTL          time.Duration
	KeyCacheTTL       time.Duration
	DefaultRateLimit  int
	DBConnectAttempts uint
	BcryptCost        int
}

// envPaths are probed in order; the first .env found wins
var envPaths = []string{".env", "../.env", "../../.env"}

// Load loads the configuration from a .env file and environment variables.
func Load() (*AppConfig, error) {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				log.Warn().Err(err).Str("path", p).Msg("Failed to load .env file")
			} else {
				log.Debug().Str("path", p).Msg("Loaded configuration from .env")
			}
			break
		}
	}

	cfg := &AppConfig{
		Port:              getEnv("PORT", "8000"),
		GinMode:           getEnv("GIN_MODE", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DataPath:          getEnv("DATA_PATH", "api_keys.db"),
		LogDir:            getEnv("LOGS_FOLDER", "logs"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		MasterSecret:      getEnv("API_MASTER_SECRET", ""),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
		TokenTTL:          time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		KeyCacheTTL:       time.Duration(getEnvInt("KEY_CACHE_TTL_SECONDS", 60)) * time.Second,
		DefaultRateLimit:  getEnvInt("DEFAULT_RATE_LIMIT", 10000),
		DBConnectAttempts: uint(getEnvInt("DB_CONNECT_ATTEMPTS", 5)),
		BcryptCost:        getEnvInt("BCRYPT_COST", 14),
	}

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, admin tokens are signed with an empty key")
	}
	if cfg.MasterSecret == "" {
		log.Warn().Msg("API_MASTER_SECRET is empty, API keys are not secure")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil && i >= 0 {
			return i
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid integer setting")
	}
	return fallback
}
