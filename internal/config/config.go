package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines the token service surface: per-kind TTLs, purge cadence,
// the report endpoint classifier and provisioning policy.
type AuthConfig struct {
	UserTokenTTLHours     int
	ServiceTokenTTLDays   int
	APIKeyTTLDays         int
	RefreshTokenTTLDays   int
	PurgeIntervalMinutes  int
	ReportPathPrefixes    []string
	AutoProvisionMachines bool
	BcryptCost            int
	// StoreBackend selects the durable credential store: postgres, redis or
	// memory.
	StoreBackend string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "fleet-monitor-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			UserTokenTTLHours:     getEnvAsInt("AUTH_USER_TOKEN_TTL_HOURS", 8),
			ServiceTokenTTLDays:   getEnvAsInt("AUTH_SERVICE_TOKEN_TTL_DAYS", 30),
			APIKeyTTLDays:         getEnvAsInt("AUTH_API_KEY_TTL_DAYS", 365),
			RefreshTokenTTLDays:   getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_DAYS", 14),
			PurgeIntervalMinutes:  getEnvAsInt("AUTH_PURGE_INTERVAL_MINUTES", 5),
			ReportPathPrefixes:    getEnvAsSlice("AUTH_REPORT_PATH_PREFIXES", []string{"/api/reports"}),
			AutoProvisionMachines: getEnvAsBool("AUTH_AUTO_PROVISION_MACHINES", false),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			StoreBackend:          getEnv("AUTH_STORE_BACKEND", "postgres"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// UserTokenTTL returns the user access token lifetime.
func (a AuthConfig) UserTokenTTL() time.Duration {
	return time.Duration(a.UserTokenTTLHours) * time.Hour
}

// ServiceTokenTTL returns the service token lifetime.
func (a AuthConfig) ServiceTokenTTL() time.Duration {
	return time.Duration(a.ServiceTokenTTLDays) * 24 * time.Hour
}

// APIKeyTTL returns the API key lifetime.
func (a AuthConfig) APIKeyTTL() time.Duration {
	return time.Duration(a.APIKeyTTLDays) * 24 * time.Hour
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLDays) * 24 * time.Hour
}

// PurgeInterval returns the purger cadence.
func (a AuthConfig) PurgeInterval() time.Duration {
	return time.Duration(a.PurgeIntervalMinutes) * time.Minute
}

// ReportPathClassifier builds the path predicate handed to the token service.
func (a AuthConfig) ReportPathClassifier() func(string) bool {
	prefixes := a.ReportPathPrefixes
	return func(path string) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsSlice(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
