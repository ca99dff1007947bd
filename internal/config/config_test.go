package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DETECTION_API_ENDPOINT", EndpointPlaceholder)
	t.Setenv("DETECTION_TIMEOUT_SECONDS", "")

	cfg := Load()

	assert.False(t, cfg.EndpointConfigured())
	assert.Equal(t, ConfigWarning, cfg.Warning())
	assert.Equal(t, 30*time.Second, cfg.Detection.Timeout)
}

func TestLoadConfiguredEndpoint(t *testing.T) {
	t.Setenv("DETECTION_API_ENDPOINT", "https://abc.execute-api.us-east-1.amazonaws.com/prod/")
	t.Setenv("DETECTION_TIMEOUT_SECONDS", "5")

	cfg := Load()

	assert.True(t, cfg.EndpointConfigured())
	assert.Empty(t, cfg.Warning())
	assert.Equal(t, "https://abc.execute-api.us-east-1.amazonaws.com/prod", cfg.Detection.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Detection.Timeout)
}

func TestGetEnvAsIntRejectsNonPositive(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "-3")
	assert.Equal(t, 60, getEnvAsInt("SESSION_TTL_MINUTES", 60))

	t.Setenv("SESSION_TTL_MINUTES", "abc")
	assert.Equal(t, 60, getEnvAsInt("SESSION_TTL_MINUTES", 60))

	t.Setenv("SESSION_TTL_MINUTES", "15")
	assert.Equal(t, 15, getEnvAsInt("SESSION_TTL_MINUTES", 60))
}
