package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	routererrors "github.com/hrygo/smartrouter/internal/errors"
)

var envNames = []string{
	"API_KEY", "API_BASE_URL", "CLASSIFIER_MODE", "CONFIDENCE_THRESHOLD",
	"SYSTEM1_MODEL", "SYSTEM2_MODEL", "CLASSIFIER_MODEL", "FALLBACK_TO_SYSTEM2",
	"LOG_LEVEL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
}

// clearEnvVars blanks both the prefixed and legacy variables for the test.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range envNames {
		t.Setenv(name, "")
		t.Setenv("SMARTROUTER_"+name, "")
	}
}

// TestProfileDefaults checks the defaults applied with an empty environment.
func TestProfileDefaults(t *testing.T) {
	clearEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected any
		actual   any
	}{
		{"APIKey empty", "", profile.APIKey},
		{"APIBaseURL default", DefaultAPIBaseURL, profile.APIBaseURL},
		{"ClassifierMode default", ClassifierModeHeuristic, profile.ClassifierMode},
		{"ConfidenceThreshold default", 0.7, profile.ConfidenceThreshold},
		{"FastModel default", "gemini-2.5-flash-lite", profile.FastModel},
		{"AdvancedModel default", "gemini-2.5-flash", profile.AdvancedModel},
		{"ClassifierModel default", "gemini-2.5-flash-lite", profile.ClassifierModel},
		{"FallbackEnabled default", true, profile.FallbackEnabled},
		{"LogLevel default", "INFO", profile.LogLevel},
		{"RateLimitRPS default", 10.0, profile.RateLimitRPS},
		{"RateLimitBurst default", 20, profile.RateLimitBurst},
		{"RequestTimeout default", 60 * time.Second, profile.RequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.actual)
		})
	}
}

// TestProfileFromEnv checks that both prefixed and legacy names are read.
func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) any
		expected any
	}{
		{
			name:     "legacy API_KEY",
			envVar:   "API_KEY",
			envValue: "legacy-key",
			field:    func(p *Profile) any { return p.APIKey },
			expected: "legacy-key",
		},
		{
			name:     "prefixed API key",
			envVar:   "SMARTROUTER_API_KEY",
			envValue: "new-key",
			field:    func(p *Profile) any { return p.APIKey },
			expected: "new-key",
		},
		{
			name:     "classifier mode is lower-cased",
			envVar:   "CLASSIFIER_MODE",
			envValue: "Hybrid",
			field:    func(p *Profile) any { return p.ClassifierMode },
			expected: ClassifierModeHybrid,
		},
		{
			name:     "confidence threshold",
			envVar:   "SMARTROUTER_CONFIDENCE_THRESHOLD",
			envValue: "0.85",
			field:    func(p *Profile) any { return p.ConfidenceThreshold },
			expected: 0.85,
		},
		{
			name:     "fallback disabled",
			envVar:   "FALLBACK_TO_SYSTEM2",
			envValue: "false",
			field:    func(p *Profile) any { return p.FallbackEnabled },
			expected: false,
		},
		{
			name:     "system2 model",
			envVar:   "SYSTEM2_MODEL",
			envValue: "gemini-2.5-pro",
			field:    func(p *Profile) any { return p.AdvancedModel },
			expected: "gemini-2.5-pro",
		},
		{
			name:     "log level is upper-cased",
			envVar:   "LOG_LEVEL",
			envValue: "debug",
			field:    func(p *Profile) any { return p.LogLevel },
			expected: "DEBUG",
		},
		{
			name:     "request timeout",
			envVar:   "SMARTROUTER_REQUEST_TIMEOUT",
			envValue: "15s",
			field:    func(p *Profile) any { return p.RequestTimeout },
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{}
			profile.FromEnv()

			assert.Equal(t, tt.expected, tt.field(profile))
		})
	}
}

func TestProfilePrefixedWinsOverLegacy(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("SYSTEM1_MODEL", "legacy-model")
	t.Setenv("SMARTROUTER_SYSTEM1_MODEL", "new-model")

	profile := &Profile{}
	profile.FromEnv()

	assert.Equal(t, "new-model", profile.FastModel)
}

func validProfile() *Profile {
	return &Profile{
		Mode:                "dev",
		APIKey:              "test-key",
		ClassifierMode:      ClassifierModeHeuristic,
		ConfidenceThreshold: 0.7,
		FastModel:           DefaultFastModel,
		AdvancedModel:       DefaultAdvancedModel,
		ClassifierModel:     DefaultClassifierModel,
		LogLevel:            "INFO",
		RateLimitRPS:        10,
		RateLimitBurst:      20,
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Profile) {}},
		{name: "missing api key", mutate: func(p *Profile) { p.APIKey = "  " }, wantErr: true},
		{name: "unknown classifier mode", mutate: func(p *Profile) { p.ClassifierMode = "magic" }, wantErr: true},
		{name: "threshold above one", mutate: func(p *Profile) { p.ConfidenceThreshold = 1.2 }, wantErr: true},
		{name: "threshold below zero", mutate: func(p *Profile) { p.ConfidenceThreshold = -0.1 }, wantErr: true},
		{name: "empty fast model", mutate: func(p *Profile) { p.FastModel = "" }, wantErr: true},
		{name: "unknown log level", mutate: func(p *Profile) { p.LogLevel = "TRACE" }, wantErr: true},
		{name: "zero burst", mutate: func(p *Profile) { p.RateLimitBurst = 0 }, wantErr: true},
		{name: "negative price", mutate: func(p *Profile) {
			p.Pricing = map[string]ModelPricing{"gpt-4o": {Input: -1, Output: 1}}
		}, wantErr: true},
		{name: "unknown driver", mutate: func(p *Profile) { p.Driver = "mysql" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(p *Profile) { p.Driver = "postgres" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(p *Profile) {
			p.Driver = "postgres"
			p.DSN = "postgres://localhost/smartrouter"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			err := p.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, routererrors.IsCode(err, routererrors.ErrCodeConfigurationInvalid))
		})
	}
}

func TestProfileValidate_MalformedEnv(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("API_KEY", "test-key")
	t.Setenv("CONFIDENCE_THRESHOLD", "high")

	p := &Profile{Mode: "dev"}
	p.FromEnv()

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIDENCE_THRESHOLD")
}

func TestProfileValidate_SQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	p := validProfile()
	p.Driver = "sqlite"
	p.Data = dir

	require.NoError(t, p.Validate())
	assert.Equal(t, filepath.Join(dir, "smartrouter_dev.db"), p.DSN)
}

func TestProfileValidate_ModeDefaultsToDev(t *testing.T) {
	p := validProfile()
	p.Mode = "staging"

	require.NoError(t, p.Validate())
	assert.Equal(t, "dev", p.Mode)
	assert.True(t, p.IsDev())
}

func TestProfileSlogLevel(t *testing.T) {
	p := validProfile()
	p.LogLevel = "warning"
	assert.Equal(t, "WARN", p.SlogLevel().String())
	p.LogLevel = "DEBUG"
	assert.Equal(t, "DEBUG", p.SlogLevel().String())
}
