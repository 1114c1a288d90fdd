package config

import (
	"os"
	"strconv"
	"time"

	"github.com/kreqo/mytasks/internal/constants"
)

type Config struct {
	DBDriver         string // sqlite (default), mysql or postgres
	DBPath           string // sqlite database file
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisHost        string // empty = cookie-backed sessions
	RedisPort        string
	SessionSecret    string
	GinMode          string
	CreateDelay      time.Duration // artificial latency on task creation
	EnforceOwnership bool          // require callers to own tasks they toggle/delete
}

func Load() *Config {
	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBPath:           getEnv("DB_PATH", "mytasks.db"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "taskuser"),
		DBPassword:       getEnv("DB_PASSWORD", "taskpassword"),
		DBName:           getEnv("DB_NAME", "mytasks"),
		RedisHost:        getEnv("REDIS_HOST", ""),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		CreateDelay:      getEnvDuration("CREATE_DELAY_MS", constants.DefaultCreateDelay),
		EnforceOwnership: getEnvBool("ENFORCE_OWNERSHIP", false),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
