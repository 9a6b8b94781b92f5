package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Gateway client drivers.
const (
	ClientHTTP = "http"
	ClientSDK  = "sdk"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string

	RazorpayKeyID     string        `validate:"required"`
	RazorpayKeySecret string        `validate:"required"`
	RazorpayBaseURL   string        `validate:"required,url"`
	RazorpayClient    string        `validate:"oneof=http sdk"`
	RazorpayTimeout   time.Duration `validate:"gt=0"`

	BreakerMinRequests  int           `validate:"gte=1"`
	BreakerFailureRatio float64       `validate:"gt=0,lte=1"`
	BreakerOpenFor      time.Duration `validate:"gt=0"`

	RedisURL        string
	RateLimitWindow time.Duration
	RateLimitMax    int
	IdempotencyTTL  time.Duration

	BodyLimitBytes         int64
	SecurityHeadersEnabled bool
	HSTSEnabled            bool
	ShutdownTimeout        time.Duration
	// TrustedProxies lists the addresses or CIDRs whose forwarding headers
	// are believed when resolving the client address.
	TrustedProxies []string `validate:"dive,cidr|ip"`

	ServiceName          string
	ServiceVersion       string
	LogFormat            string `validate:"oneof=json console text"`
	LogLevel             string
	MetricsEnabled       bool
	MetricsNamespace     string
	MetricsBucketsMS     string
	TracingEnabled       bool
	TracingExporter      string `validate:"oneof=otlp none"`
	OTLPEndpoint         string
	TracingSamplingRatio float64 `validate:"gte=0,lte=1"`
	PprofEnabled         bool
	PprofUser            string
	PprofPass            string
	HealthRedisTimeout   time.Duration
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "4001"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		RazorpayKeyID:     strings.TrimSpace(k.String("RAZORPAY_KEY_ID")),
		RazorpayKeySecret: strings.TrimSpace(k.String("RAZORPAY_KEY_SECRET")),
		RazorpayBaseURL:   strings.TrimRight(valueOrDefault(k.String("RAZORPAY_BASE_URL"), "https://api.razorpay.com"), "/"),
		RazorpayClient:    strings.ToLower(valueOrDefault(k.String("RAZORPAY_CLIENT"), ClientHTTP)),
		RazorpayTimeout:   parseDuration(k.String("RAZORPAY_TIMEOUT"), "10s"),

		BreakerMinRequests:  parseInt(k.String("RAZORPAY_BREAKER_MIN_REQUESTS"), 5),
		BreakerFailureRatio: parseFloat(k.String("RAZORPAY_BREAKER_FAILURE_RATIO"), 0.5),
		BreakerOpenFor:      parseDuration(k.String("RAZORPAY_BREAKER_OPEN_FOR"), "30s"),

		RedisURL:        strings.TrimSpace(k.String("REDIS_URL")),
		RateLimitWindow: parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:    parseInt(k.String("RATE_LIMIT_MAX"), 30),
		IdempotencyTTL:  parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		BodyLimitBytes:         int64(parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 64*1024)),
		SecurityHeadersEnabled: parseBoolDefault(k.String("SECURITY_HEADERS_ENABLED"), true),
		HSTSEnabled:            parseBoolDefault(k.String("SECURITY_HSTS_ENABLED"), false),
		ShutdownTimeout:        parseDuration(k.String("HTTP_SHUTDOWN_TIMEOUT"), "10s"),
		TrustedProxies:         splitAndTrim(k.String("TRUSTED_PROXIES")),

		ServiceName:          valueOrDefault(k.String("OTEL_SERVICE_NAME"), "razorpay-checkout"),
		ServiceVersion:       valueOrDefault(k.String("SERVICE_VERSION"), "dev"),
		LogFormat:            strings.ToLower(valueOrDefault(k.String("OBS_LOG_FORMAT"), "json")),
		LogLevel:             valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:       parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:     valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "checkout"),
		MetricsBucketsMS:     strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		TracingEnabled:       parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
		TracingExporter:      strings.ToLower(valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp")),
		OTLPEndpoint:         strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSamplingRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		PprofEnabled:         parseBoolDefault(k.String("OBS_ENABLE_PPROF"), false),
		PprofUser:            strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
		PprofPass:            k.String("SECURE_PPROF_BASIC_AUTH_PASS"),
		HealthRedisTimeout:   time.Duration(parseInt(k.String("HEALTH_READY_REDIS_TIMEOUT_MS"), 300)) * time.Millisecond,
	}

	if cfg.RazorpayKeyID == "" {
		return nil, errors.New("RAZORPAY_KEY_ID is required")
	}
	if cfg.RazorpayKeySecret == "" {
		return nil, errors.New("RAZORPAY_KEY_SECRET is required")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "4001"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
