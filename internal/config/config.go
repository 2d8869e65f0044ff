// Package config provides application configuration loaded from environment
// variables plus the YAML endpoints document the comparison suite runs from.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode determines whether binaries fetch from live environments or serve
// canned fixtures.
type Mode string

const (
	ModeStub       Mode = "stub"
	ModeProduction Mode = "production"
)

// EnvSpec names one environment under comparison.
type EnvSpec struct {
	Name    string
	BaseURL string
	Token   string
}

// Config holds all application configuration.
type Config struct {
	Mode        Mode
	FixturesDir string

	LogLevel  string
	LogFormat string

	// The two environments under comparison.
	EnvA EnvSpec
	EnvB EnvSpec

	// EndpointsFile is the YAML document listing endpoints, ignored fields,
	// and gate settings.
	EndpointsFile string
	IgnoreFields  []string

	HTTPTimeout time.Duration
	FetchRPS    float64
	FetchBurst  int

	// API server settings.
	APIPort      string
	CORSOrigins  []string
	OIDCIssuer   string
	OIDCAudience string

	OTelEndpoint string

	// TemporalEnabled opts the API server into the sweep routes; the CLI and
	// worker always dial.
	TemporalEnabled   bool
	TemporalHostPort  string
	TemporalNamespace string

	// AWS settings for metric publication and deploy annotation.
	AWSRegion           string
	AWSProfile          string
	CrossAccountRole    string
	CloudWatchNamespace string
	CodeDeployAppA      string
	CodeDeployAppB      string
}

// LoadFromEnv reads configuration from environment variables with sensible
// defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Mode:        Mode(envOr("PARITY_MODE", "stub")),
		FixturesDir: os.Getenv("FIXTURES_DIR"),
		LogLevel:    envOr("PARITY_LOG_LEVEL", "info"),
		LogFormat:   envOr("PARITY_LOG_FORMAT", "json"),
		EnvA: EnvSpec{
			Name:    envOr("PARITY_ENV_A_NAME", "a"),
			BaseURL: os.Getenv("PARITY_ENV_A_URL"),
			Token:   os.Getenv("PARITY_ENV_A_TOKEN"),
		},
		EnvB: EnvSpec{
			Name:    envOr("PARITY_ENV_B_NAME", "b"),
			BaseURL: os.Getenv("PARITY_ENV_B_URL"),
			Token:   os.Getenv("PARITY_ENV_B_TOKEN"),
		},
		EndpointsFile:       envOr("PARITY_ENDPOINTS_FILE", "endpoints.yaml"),
		IgnoreFields:        splitCSV(os.Getenv("PARITY_IGNORE")),
		APIPort:             envOr("PARITY_API_PORT", "8080"),
		CORSOrigins:         parseCORSOrigins(os.Getenv("PARITY_CORS_ORIGINS")),
		OIDCIssuer:          os.Getenv("PARITY_OIDC_ISSUER"),
		OIDCAudience:        os.Getenv("PARITY_OIDC_AUDIENCE"),
		OTelEndpoint:        os.Getenv("PARITY_OTEL_ENDPOINT"),
		TemporalEnabled:     envBool("PARITY_TEMPORAL_ENABLED"),
		TemporalHostPort:    envOr("PARITY_TEMPORAL_HOSTPORT", "localhost:7233"),
		TemporalNamespace:   envOr("PARITY_TEMPORAL_NAMESPACE", "default"),
		AWSRegion:           envOr("AWS_REGION", "us-east-1"),
		AWSProfile:          os.Getenv("AWS_PROFILE"),
		CrossAccountRole:    os.Getenv("PARITY_CROSS_ACCOUNT_ROLE"),
		CloudWatchNamespace: envOr("PARITY_CLOUDWATCH_NAMESPACE", "ContractParity"),
		CodeDeployAppA:      os.Getenv("PARITY_CODEDEPLOY_APP_A"),
		CodeDeployAppB:      os.Getenv("PARITY_CODEDEPLOY_APP_B"),
	}

	var err error
	if cfg.HTTPTimeout, err = envDuration("PARITY_HTTP_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FetchRPS, err = envFloat("PARITY_FETCH_RPS", 0); err != nil {
		return Config{}, err
	}
	if cfg.FetchBurst, err = envInt("PARITY_FETCH_BURST", 0); err != nil {
		return Config{}, err
	}

	if cfg.Mode != ModeStub && cfg.Mode != ModeProduction {
		return Config{}, fmt.Errorf("config: invalid PARITY_MODE %q (must be stub or production)", cfg.Mode)
	}

	if cfg.Mode == ModeProduction {
		if cfg.EnvA.BaseURL == "" {
			return Config{}, fmt.Errorf("config: PARITY_ENV_A_URL required in production mode")
		}
		if cfg.EnvB.BaseURL == "" {
			return Config{}, fmt.Errorf("config: PARITY_ENV_B_URL required in production mode")
		}
	}

	return cfg, nil
}

// OIDCEnabled reports whether API authentication is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCAudience != ""
}

// OTelEnabled reports whether trace export is configured.
func (c Config) OTelEnabled() bool {
	return c.OTelEndpoint != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

func parseCORSOrigins(raw string) []string {
	origins := splitCSV(raw)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
