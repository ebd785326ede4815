package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort       = "3000"
	defaultBaseURL    = "http://localhost:3000"
	defaultBackendURL = "http://localhost:5000"
	defaultVisitorTTL = 24 * time.Hour
	defaultLoginLimit = "10-M"
)

// loads configuration from the optional env file and environment variables
func LoadEnvironmentVariables(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	apiKey := os.Getenv("FIREBASE_API_KEY")
	sessionSecret := os.Getenv("SESSION_SECRET")

	if apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY environment variable is required")
	}

	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	if len(sessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}

	backendRate, err := getEnvFloat("BACKEND_RATE_LIMIT", 0)
	if err != nil {
		return nil, err
	}

	backendTimeout, err := getEnvDuration("BACKEND_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	visitorTTL, err := getEnvDuration("VISITOR_TTL", defaultVisitorTTL)
	if err != nil {
		return nil, err
	}

	port := getEnvString("PORT", defaultPort)
	if flags.Port != "" {
		port = flags.Port
	}

	return &Config{
		Environment:          getEnvString("ENVIRONMENT", "development"),
		Port:                 port,
		BaseURL:              strings.TrimSuffix(getEnvString("BASE_URL", defaultBaseURL), "/"),
		BackendURL:           strings.TrimSuffix(getEnvString("BACKEND_URL", defaultBackendURL), "/"),
		BackendTimeout:       backendTimeout,
		BackendRateLimit:     backendRate,
		FirebaseAPIKey:       apiKey,
		FirebaseEmulatorHost: os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GitHubClientID:       os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret:   os.Getenv("GITHUB_CLIENT_SECRET"),
		SessionSecret:        sessionSecret,
		VisitorTTL:           visitorTTL,
		LoginRateLimit:       getEnvString("LOGIN_RATE_LIMIT", defaultLoginLimit),
		AllowedOrigins:       splitList(os.Getenv("ALLOWED_ORIGINS")),
	}, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	return d, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	return f, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
