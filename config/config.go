package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/pastelaria-api/utils"
)

type Config struct {
	Port       string
	GinMode    string
	AppVersion string

	DBDriver string
	DBDSN    string

	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string
	AdminPassword     string

	CacheDriver        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheSweepInterval time.Duration

	DeliveryFee  float64
	MaxBodyBytes int64
	RateLimit    int
	RateWindow   time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads the optional env files and builds a Config from the environment.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		utils.InfoLogger.Debugf("no env file loaded: %v", err)
	}

	return &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "pastelaria.db"),

		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),

		CacheDriver:        getEnv("CACHE_DRIVER", "database"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheSweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", time.Hour),

		DeliveryFee:  getEnvFloat("DELIVERY_FEE", 5.00),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RateLimit:    getEnvInt("RATE_LIMIT", 100),
		RateWindow:   getEnvDuration("RATE_WINDOW", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
