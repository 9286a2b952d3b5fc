package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	AutoMigrate bool

	Auth   AuthConfig
	WorkOS WorkOSConfig
	OTel   OTelConfig

	// Optional log file tee
	LogDir      string
	LogMaxFiles int
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	JWKSURL      string
	Issuer       string
	APIKeyPrefix string
}

// WorkOSConfig configures the organization directory lookup.
// Lookups are skipped when APIKey is empty.
type WorkOSConfig struct {
	APIKey string
}

func (c WorkOSConfig) Enabled() bool {
	return c.APIKey != ""
}

// OTelConfig configures trace and log export over OTLP/HTTP.
type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", env != "prod"),
		Auth: AuthConfig{
			JWKSURL:      getEnv("AUTH_JWKS_URL", ""),
			Issuer:       getEnv("AUTH_ISSUER", ""),
			APIKeyPrefix: strings.TrimSuffix(getEnv("API_KEY_PREFIX", "pk_live"), "_"),
		},
		WorkOS: WorkOSConfig{
			APIKey: getEnv("WORKOS_API_KEY", ""),
		},
		OTel: OTelConfig{
			Endpoint:       strings.TrimSuffix(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "/"),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "promptvault"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "dev"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
