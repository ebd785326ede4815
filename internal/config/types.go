package config

import "time"

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	// REST backend
	BackendURL       string
	BackendTimeout   time.Duration
	BackendRateLimit float64

	// identity provider
	FirebaseAPIKey       string
	FirebaseEmulatorHost string

	// federated providers, optional
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// visitor cookie + registry
	SessionSecret string
	VisitorTTL    time.Duration

	LoginRateLimit string
	AllowedOrigins []string
}

type Flags struct {
	EnvFile string
	Port    string
}

// reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
