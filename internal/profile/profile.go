package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	routererrors "github.com/hrygo/smartrouter/internal/errors"
)

// Classifier modes.
const (
	ClassifierModeHeuristic = "heuristic"
	ClassifierModeLLM       = "llm"
	ClassifierModeHybrid    = "hybrid"
)

// Defaults applied by FromEnv when nothing is configured.
const (
	DefaultAPIBaseURL          = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultFastModel           = "gemini-2.5-flash-lite"
	DefaultAdvancedModel       = "gemini-2.5-flash"
	DefaultClassifierModel     = "gemini-2.5-flash-lite"
	DefaultConfidenceThreshold = 0.7
	DefaultLogLevel            = "INFO"
	DefaultRateLimitRPS        = 10.0
	DefaultRateLimitBurst      = 20
	DefaultRequestTimeout      = 60 * time.Second
)

// ModelPricing is the per-million-token price of a model, in USD.
type ModelPricing struct {
	Input  float64 `mapstructure:"input"`
	Output float64 `mapstructure:"output"`
}

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where request metrics are persisted
	DSN string
	// Driver is the database driver (sqlite or postgres). Empty disables persistence.
	Driver string
	// Version is the current version of server
	Version string

	// LLM configuration
	APIKey              string  // SMARTROUTER_API_KEY (legacy: API_KEY)
	APIBaseURL          string  // SMARTROUTER_API_BASE_URL (legacy: API_BASE_URL)
	ClassifierMode      string  // SMARTROUTER_CLASSIFIER_MODE (legacy: CLASSIFIER_MODE)
	ConfidenceThreshold float64 // SMARTROUTER_CONFIDENCE_THRESHOLD (legacy: CONFIDENCE_THRESHOLD)
	FastModel           string  // SMARTROUTER_SYSTEM1_MODEL (legacy: SYSTEM1_MODEL)
	AdvancedModel       string  // SMARTROUTER_SYSTEM2_MODEL (legacy: SYSTEM2_MODEL)
	ClassifierModel     string  // SMARTROUTER_CLASSIFIER_MODEL (legacy: CLASSIFIER_MODEL)
	FallbackEnabled     bool    // SMARTROUTER_FALLBACK_TO_SYSTEM2 (legacy: FALLBACK_TO_SYSTEM2)
	RequestTimeout      time.Duration

	// Pricing overrides the default pricing table, keyed by model name.
	Pricing map[string]ModelPricing

	LogLevel       string  // SMARTROUTER_LOG_LEVEL (legacy: LOG_LEVEL)
	RateLimitRPS   float64 // SMARTROUTER_RATE_LIMIT_RPS
	RateLimitBurst int     // SMARTROUTER_RATE_LIMIT_BURST

	envErrors []string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsPersistenceEnabled reports whether request metrics are written to a database.
func (p *Profile) IsPersistenceEnabled() bool {
	return p.Driver != ""
}

// FromEnv loads the LLM configuration from environment variables.
// Supports both SMARTROUTER_* (new) and unprefixed (legacy) names.
func (p *Profile) FromEnv() {
	// Skips empty values to allow defaults to take effect
	getEnvWithDefault := func(name, defaultValue string) string {
		if val := os.Getenv("SMARTROUTER_" + name); val != "" {
			return val
		}
		if val := os.Getenv(name); val != "" {
			return val
		}
		return defaultValue
	}

	getFloatEnv := func(name string, defaultValue float64) float64 {
		raw := getEnvWithDefault(name, "")
		if raw == "" {
			return defaultValue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			p.envErrors = append(p.envErrors, fmt.Sprintf("%s: invalid number %q", name, raw))
			return defaultValue
		}
		return val
	}

	getIntEnv := func(name string, defaultValue int) int {
		raw := getEnvWithDefault(name, "")
		if raw == "" {
			return defaultValue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			p.envErrors = append(p.envErrors, fmt.Sprintf("%s: invalid integer %q", name, raw))
			return defaultValue
		}
		return val
	}

	getBoolEnv := func(name string, defaultValue bool) bool {
		raw := getEnvWithDefault(name, "")
		if raw == "" {
			return defaultValue
		}
		val, err := strconv.ParseBool(raw)
		if err != nil {
			p.envErrors = append(p.envErrors, fmt.Sprintf("%s: invalid boolean %q", name, raw))
			return defaultValue
		}
		return val
	}

	p.envErrors = nil
	p.APIKey = getEnvWithDefault("API_KEY", "")
	p.APIBaseURL = getEnvWithDefault("API_BASE_URL", DefaultAPIBaseURL)
	p.ClassifierMode = strings.ToLower(getEnvWithDefault("CLASSIFIER_MODE", ClassifierModeHeuristic))
	p.ConfidenceThreshold = getFloatEnv("CONFIDENCE_THRESHOLD", DefaultConfidenceThreshold)
	p.FastModel = getEnvWithDefault("SYSTEM1_MODEL", DefaultFastModel)
	p.AdvancedModel = getEnvWithDefault("SYSTEM2_MODEL", DefaultAdvancedModel)
	p.ClassifierModel = getEnvWithDefault("CLASSIFIER_MODEL", DefaultClassifierModel)
	p.FallbackEnabled = getBoolEnv("FALLBACK_TO_SYSTEM2", true)
	p.LogLevel = strings.ToUpper(getEnvWithDefault("LOG_LEVEL", DefaultLogLevel))
	p.RateLimitRPS = getFloatEnv("RATE_LIMIT_RPS", DefaultRateLimitRPS)
	p.RateLimitBurst = getIntEnv("RATE_LIMIT_BURST", DefaultRateLimitBurst)

	timeout := getEnvWithDefault("REQUEST_TIMEOUT", "")
	p.RequestTimeout = DefaultRequestTimeout
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			p.envErrors = append(p.envErrors, fmt.Sprintf("REQUEST_TIMEOUT: invalid duration %q", timeout))
		} else {
			p.RequestTimeout = d
		}
	}
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to info.
func (p *Profile) SlogLevel() slog.Level {
	switch strings.ToUpper(p.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate checks the profile and fills derived values.
// Every rejection is a configuration error so startup fails fast.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if len(p.envErrors) > 0 {
		return routererrors.Configuration(strings.Join(p.envErrors, "; "))
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return routererrors.Configuration("api key is required (set SMARTROUTER_API_KEY or API_KEY)")
	}
	switch p.ClassifierMode {
	case ClassifierModeHeuristic, ClassifierModeLLM, ClassifierModeHybrid:
	default:
		return routererrors.Configurationf("unknown classifier mode %q: must be heuristic, llm or hybrid", p.ClassifierMode)
	}
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return routererrors.Configurationf("confidence threshold %v must be within [0, 1]", p.ConfidenceThreshold)
	}
	if p.FastModel == "" || p.AdvancedModel == "" || p.ClassifierModel == "" {
		return routererrors.Configuration("system1, system2 and classifier model names must not be empty")
	}
	switch strings.ToUpper(p.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return routererrors.Configurationf("unknown log level %q", p.LogLevel)
	}
	if p.RateLimitRPS <= 0 || p.RateLimitBurst <= 0 {
		return routererrors.Configuration("rate limit rps and burst must be positive")
	}
	for model, price := range p.Pricing {
		if price.Input < 0 || price.Output < 0 {
			return routererrors.Configurationf("pricing for %q must not be negative", model)
		}
	}

	switch p.Driver {
	case "":
		return nil
	case "sqlite", "postgres":
	default:
		return routererrors.Configurationf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("smartrouter_%s.db", p.Mode))
		}
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return routererrors.Configuration("dsn is required for the postgres driver")
	}

	return nil
}
