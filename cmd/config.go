package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"fleet/internal/jobs"
)

// Config is read from the environment once at start-up.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RedisAddr empty disables the projection cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// MQTTBrokerURL empty disables lifecycle event publishing
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string

	JWTSecret string

	MaintenanceSyncSchedule   string
	InvalidationRetrySchedule string
}

// LoadConfig builds the configuration from getenv, applying defaults for
// everything except the database credentials and the token secret.
func LoadConfig(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return fallback
	}

	config := Config{
		HTTPPort:                  get("HTTP_PORT", "8082"),
		DBHost:                    get("DB_HOST", "localhost"),
		DBPort:                    get("DB_PORT", "5432"),
		DBUser:                    getenv("DB_USER"),
		DBPassword:                getenv("DB_PASSWORD"),
		DBName:                    get("DB_NAME", "fleet"),
		DBSslMode:                 get("DB_SSLMODE", "disable"),
		RedisAddr:                 getenv("REDIS_ADDR"),
		RedisPassword:             getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:             getenv("MQTT_BROKER_URL"),
		MQTTClientID:              get("MQTT_CLIENT_ID", "fleet-api"),
		MQTTTopicPrefix:           get("MQTT_TOPIC_PREFIX", "fleet"),
		JWTSecret:                 getenv("JWT_SECRET"),
		MaintenanceSyncSchedule:   get("MAINTENANCE_SYNC_SCHEDULE", jobs.DefaultSchedules.MaintenanceSync),
		InvalidationRetrySchedule: get("INVALIDATION_RETRY_SCHEDULE", jobs.DefaultSchedules.InvalidationRetry),
	}

	var errList []error

	cacheTTL, err := time.ParseDuration(get("CACHE_TTL", "5m"))
	if err != nil {
		errList = append(errList, fmt.Errorf("CACHE_TTL: %w", err))
	} else if cacheTTL <= 0 {
		errList = append(errList, fmt.Errorf("CACHE_TTL: must be positive, got %s", cacheTTL))
	}
	config.CacheTTL = cacheTTL

	if config.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		errList = append(errList, fmt.Errorf("REDIS_DB: %w", err))
	}
	if config.DBUser == "" {
		errList = append(errList, errors.New("DB_USER is required"))
	}
	if config.JWTSecret == "" {
		errList = append(errList, errors.New("JWT_SECRET is required"))
	}

	if err = errors.Join(errList...); err != nil {
		return Config{}, err
	}
	return config, nil
}

// DSN is the postgres connection string for the configured database.
func (c Config) DSN() string {
	return c.DSNFor(c.DBName)
}

// DSNFor is the connection string for another database on the same server.
func (c Config) DSNFor(dbName string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, dbName, c.DBSslMode)
}

// Schedules returns the cron expressions of the background jobs.
func (c Config) Schedules() jobs.Schedules {
	return jobs.Schedules{
		MaintenanceSync:   c.MaintenanceSyncSchedule,
		InvalidationRetry: c.InvalidationRetrySchedule,
	}
}
