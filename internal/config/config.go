// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/allisson/badgereader/internal/validation"
)

// Reader kinds supported by READER_KIND.
const (
	ReaderKindHTTP  = "http"
	ReaderKindStdin = "stdin"
)

// Config holds all application configuration.
type Config struct {
	// ScanURL is the endpoint scan events are posted to.
	ScanURL string
	// TokenURL is the credential exchange endpoint.
	TokenURL string
	// HTTPTimeout bounds every request made to the remote service.
	HTTPTimeout time.Duration

	// AuthEnabled toggles bearer token authentication on scan submissions.
	AuthEnabled bool
	// APIUsername is the username sent in the credential exchange.
	APIUsername string
	// APIPassword is the plain text password sent in the credential exchange.
	APIPassword string
	// APIPasswordCiphertext is a base64 KMS ciphertext of the password, used when
	// APIPassword is empty.
	APIPasswordCiphertext string
	// KMSKeyURI is the gocloud.dev secrets URI used to decrypt APIPasswordCiphertext.
	KMSKeyURI string
	// TokenValidityWindow is how long an acquired token is trusted client-side.
	TokenValidityWindow time.Duration

	// FeedbackDisplayDuration is how long an outcome color is shown.
	FeedbackDisplayDuration time.Duration
	// FeedbackBlocking makes the reader loop wait for feedback to finish before polling again.
	FeedbackBlocking bool

	// ReaderKind selects the card reader adapter ("http" or "stdin").
	ReaderKind string
	// ReaderURL is the base URL of an HTTP card reader.
	ReaderURL string
	// ReaderID names this reader in logs and metrics.
	ReaderID string
	// PollInterval is the delay between card reader polls.
	PollInterval time.Duration
	// ScanCoolOff is the debounce interval after a dispatched scan.
	ScanCoolOff time.Duration

	// ConnectivityCheckEnabled toggles the network link check.
	ConnectivityCheckEnabled bool
	// ConnectRetries is the number of link attempts at startup.
	ConnectRetries int
	// ReconnectRetries is the number of link attempts after a disconnection.
	ReconnectRetries int
	// ConnectRetryInterval is the delay between link attempts.
	ConnectRetryInterval time.Duration
	// ReconnectInterval is the minimum delay between reconnect rounds.
	ReconnectInterval time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled indicates whether the metrics and status server is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsHost is the host address the metrics server binds to.
	MetricsHost string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// CORSEnabled indicates whether CORS is enabled on the status server.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Remote service
		ScanURL:     env.GetString("SCAN_URL", "http://localhost:8000/api/scan"),
		TokenURL:    env.GetString("TOKEN_URL", "http://localhost:8000/api/token"),
		HTTPTimeout: env.GetDuration("HTTP_TIMEOUT_SECONDS", 10, time.Second),

		// Auth
		AuthEnabled:           env.GetBool("AUTH_ENABLED", true),
		APIUsername:           env.GetString("API_USERNAME", ""),
		APIPassword:           env.GetString("API_PASSWORD", ""),
		APIPasswordCiphertext: env.GetString("API_PASSWORD_CIPHERTEXT", ""),
		KMSKeyURI:             env.GetString("KMS_KEY_URI", ""),
		TokenValidityWindow:   env.GetDuration("TOKEN_VALIDITY_SECONDS", 1500, time.Second),

		// Feedback
		FeedbackDisplayDuration: env.GetDuration("FEEDBACK_DISPLAY_MILLISECONDS", 2000, time.Millisecond),
		FeedbackBlocking:        env.GetBool("FEEDBACK_BLOCKING", true),

		// Card reader
		ReaderKind:   env.GetString("READER_KIND", ReaderKindStdin),
		ReaderURL:    env.GetString("READER_URL", "http://localhost:5000"),
		ReaderID:     env.GetString("READER_ID", "entrance"),
		PollInterval: env.GetDuration("POLL_INTERVAL_MILLISECONDS", 50, time.Millisecond),
		ScanCoolOff:  env.GetDuration("SCAN_COOL_OFF_MILLISECONDS", 2000, time.Millisecond),

		// Connectivity
		ConnectivityCheckEnabled: env.GetBool("CONNECTIVITY_CHECK_ENABLED", true),
		ConnectRetries:           env.GetInt("CONNECT_RETRIES", 30),
		ReconnectRetries:         env.GetInt("RECONNECT_RETRIES", 20),
		ConnectRetryInterval: env.GetDuration(
			"CONNECT_RETRY_INTERVAL_MILLISECONDS",
			500,
			time.Millisecond,
		),
		ReconnectInterval: env.GetDuration("RECONNECT_INTERVAL_SECONDS", 5, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "badgereader"),
		MetricsHost:      env.GetString("METRICS_HOST", "127.0.0.1"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),
	}
}

// Validate checks the configuration for values the reader cannot run with.
func (c *Config) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(c,
		validation.Field(&c.ScanURL, validation.Required, customValidation.HTTPURL),
		validation.Field(&c.TokenURL,
			validation.When(c.AuthEnabled, validation.Required, customValidation.HTTPURL),
		),
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.APIUsername,
			validation.When(c.AuthEnabled, validation.Required, customValidation.NotBlank),
		),
		validation.Field(&c.APIPassword,
			validation.When(
				c.AuthEnabled && c.APIPasswordCiphertext == "",
				validation.Required.Error("is required unless API_PASSWORD_CIPHERTEXT is set"),
			),
		),
		validation.Field(&c.APIPasswordCiphertext, customValidation.Base64),
		validation.Field(&c.KMSKeyURI,
			validation.When(c.APIPasswordCiphertext != "", validation.Required),
		),
		validation.Field(&c.TokenValidityWindow,
			validation.When(c.AuthEnabled, validation.Required, validation.Min(time.Second)),
		),
		validation.Field(&c.FeedbackDisplayDuration, validation.Required),
		validation.Field(&c.ReaderKind,
			validation.Required,
			validation.In(ReaderKindHTTP, ReaderKindStdin),
		),
		validation.Field(&c.ReaderURL,
			validation.When(c.ReaderKind == ReaderKindHTTP, validation.Required, customValidation.HTTPURL),
		),
		validation.Field(&c.ReaderID, validation.Required, customValidation.NoWhitespace),
		validation.Field(&c.PollInterval, validation.Required),
		validation.Field(&c.ConnectRetries, validation.Required, validation.Min(1)),
		validation.Field(&c.ReconnectRetries, validation.Required, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	))
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
