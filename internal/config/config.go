package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EndpointPlaceholder is the documented sentinel for an endpoint nobody configured yet.
const EndpointPlaceholder = "YOUR_API_GATEWAY_ENDPOINT_HERE"

const ConfigWarning = "Configuration Required: set the DETECTION_API_ENDPOINT environment variable (or .env entry) to your API Gateway URL."

type Config struct {
	App       AppConfig
	Detection DetectionConfig
	Session   SessionConfig
	Upload    UploadConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LiveLogFilePath    string
	CorsAllowedOrigins string
}

type DetectionConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	CookieName      string
}

type UploadConfig struct {
	// Hard cap on a request body. Well above the 10 MiB image cap so oversized images
	// still reach the upload handler and get the size message.
	MaxBytes int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LiveLogFilePath:    getEnv("LIVE_LOG_FILE_PATH", "logs/live.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Detection: DetectionConfig{
			Endpoint: strings.TrimRight(getEnv("DETECTION_API_ENDPOINT", EndpointPlaceholder), "/"),
			Timeout:  time.Duration(getEnvAsInt("DETECTION_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Session: SessionConfig{
			TTL:             time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			CleanupInterval: time.Duration(getEnvAsInt("SESSION_CLEANUP_MINUTES", 10)) * time.Minute,
			CookieName:      getEnv("SESSION_COOKIE_NAME", "rickshaw_session"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 32*1024*1024)),
		},
	}
}

// EndpointConfigured reports whether the detection endpoint is still the placeholder.
func (c *Config) EndpointConfigured() bool {
	return c.Detection.Endpoint != "" && c.Detection.Endpoint != EndpointPlaceholder
}

// Warning returns the user-visible configuration warning, or "" once configured.
func (c *Config) Warning() string {
	if c.EndpointConfigured() {
		return ""
	}
	return ConfigWarning
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
