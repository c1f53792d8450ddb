package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "circle-dev-secret"

type Config struct {
	Port     string
	Env      string
	LogLevel string

	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	MongoDatabase           string

	JWTSecret  string
	JWTTTL     time.Duration
	SessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	InflightTTL   time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	PostRateWindow time.Duration
	RequestTimeout time.Duration
}

// Load reads the environment, after an optional .env file
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresUrl:             getEnv("POSTGRES_URL", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "circle"),
		JWTSecret:               getEnv("JWT_SECRET", defaultJWTSecret),
		JWTTTL:                  getEnvDuration("JWT_TTL", 72*time.Hour),
		SessionTTL:              getEnvDuration("SESSION_TTL", 30*time.Second),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		InflightTTL:             getEnvDuration("INFLIGHT_TTL", 10*time.Second),
		KafkaBrokers:            getEnvList("KAFKA_BROKERS"),
		KafkaTopic:              getEnv("KAFKA_TOPIC", "circle.events"),
		PostRateWindow:          getEnvDuration("POST_RATE_WINDOW", 60*time.Second),
		RequestTimeout:          getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

// Validate reports every missing or unusable setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.PostgresUrl == "" {
		errs = append(errs, errors.New("POSTGRES_URL is required"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.PostRateWindow <= 0 {
		errs = append(errs, errors.New("POST_RATE_WINDOW must be positive"))
	}
	if c.InflightTTL <= 0 {
		errs = append(errs, errors.New("INFLIGHT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDefaultSecret reports whether tokens are signed with the built-in development secret
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
