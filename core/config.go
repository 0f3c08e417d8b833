package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ArchAdvisor service.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := NewConfig(
//	    WithPort(8080),
//	    WithRedisURL("redis://localhost:6379"),
//	    WithMaxDebateRounds(3),
//	)
type Config struct {
	Name string `json:"name" env:"ARCHADVISOR_NAME" default:"archadvisor"`
	Port int    `json:"port" env:"ARCHADVISOR_PORT" default:"8080"`

	HTTP       HTTPConfig       `json:"http"`
	Redis      RedisConfig      `json:"redis"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	Workflow   WorkflowConfig   `json:"workflow"`
	AI         AIConfig         `json:"ai"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
	Logging    LoggingConfig    `json:"logging"`
	Development DevelopmentConfig `json:"development"`

	// Logger instance for configuration operations (excluded from JSON)
	logger Logger `json:"-"`
}

// HTTPConfig contains HTTP/WebSocket server configuration.
type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"read_timeout" env:"ARCHADVISOR_HTTP_READ_TIMEOUT" default:"30s"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"ARCHADVISOR_HTTP_READ_HEADER_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"ARCHADVISOR_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"ARCHADVISOR_HTTP_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"ARCHADVISOR_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	HealthCheckPath   string        `json:"health_check_path" env:"ARCHADVISOR_HTTP_HEALTH_PATH" default:"/health"`
	CORS              CORSConfig    `json:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing configuration for the ingress API.
type CORSConfig struct {
	Enabled          bool     `json:"enabled" env:"ARCHADVISOR_CORS_ENABLED" default:"false"`
	AllowedOrigins   []string `json:"allowed_origins" env:"ARCHADVISOR_CORS_ORIGINS"`
	AllowedMethods   []string `json:"allowed_methods" env:"ARCHADVISOR_CORS_METHODS" default:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `json:"allowed_headers" env:"ARCHADVISOR_CORS_HEADERS" default:"Content-Type"`
	ExposedHeaders   []string `json:"exposed_headers" env:"ARCHADVISOR_CORS_EXPOSED_HEADERS"`
	AllowCredentials bool     `json:"allow_credentials" env:"ARCHADVISOR_CORS_CREDENTIALS" default:"false"`
	MaxAge           int      `json:"max_age" env:"ARCHADVISOR_CORS_MAX_AGE" default:"86400"`
}

// RedisConfig contains the Redis connection used for session storage.
// The session store isolates itself to RedisDBSessions by default so that a
// shared Redis instance can also serve other concerns on other DB indexes.
type RedisConfig struct {
	URL string `json:"url" env:"ARCHADVISOR_REDIS_URL,REDIS_URL" default:"redis://localhost:6379"`
	DB  int    `json:"db" env:"ARCHADVISOR_REDIS_DB" default:"2"`
}

// RateLimitConfig contains sliding-window admission-control settings.
type RateLimitConfig struct {
	MaxRequests int           `json:"max_requests" env:"ARCHADVISOR_RATE_LIMIT_MAX_REQUESTS" default:"10"`
	Window      time.Duration `json:"window" env:"ARCHADVISOR_RATE_LIMIT_WINDOW" default:"1h"`
}

// WorkflowConfig bounds the two revision loops in the design workflow.
type WorkflowConfig struct {
	MaxDebateRounds    int `json:"max_debate_rounds" env:"ARCHADVISOR_MAX_DEBATE_ROUNDS" default:"3"`
	MaxValidationRounds int `json:"max_validation_rounds" env:"ARCHADVISOR_MAX_VALIDATION_ROUNDS" default:"2"`
}

// AIConfig contains the per-role model configuration for the agent adapters.
// This is a configuration surface only: the actual LLM call is an external
// collaborator outside this module's scope.
type AIConfig struct {
	Provider             string        `json:"provider" env:"ARCHADVISOR_AI_PROVIDER" default:"openai"`
	APIKey               string        `json:"api_key" env:"ARCHADVISOR_AI_API_KEY,OPENAI_API_KEY"`
	ArchitectModel       string        `json:"architect_model" env:"ARCHADVISOR_ARCHITECT_MODEL" default:"gpt-4o"`
	DevilsAdvocateModel  string        `json:"devils_advocate_model" env:"ARCHADVISOR_DEVILS_ADVOCATE_MODEL" default:"gpt-4o"`
	CostAnalyzerModel    string        `json:"cost_analyzer_model" env:"ARCHADVISOR_COST_ANALYZER_MODEL" default:"gpt-4o-mini"`
	DocumentationModel   string        `json:"documentation_model" env:"ARCHADVISOR_DOCUMENTATION_MODEL" default:"gpt-4o-mini"`
	Timeout              time.Duration `json:"timeout" env:"ARCHADVISOR_AI_TIMEOUT" default:"30s"`
	RetryAttempts        int           `json:"retry_attempts" env:"ARCHADVISOR_AI_RETRY_ATTEMPTS" default:"3"`
	RetryMinDelay        time.Duration `json:"retry_min_delay" env:"ARCHADVISOR_AI_RETRY_MIN_DELAY" default:"2s"`
	RetryMaxDelay        time.Duration `json:"retry_max_delay" env:"ARCHADVISOR_AI_RETRY_MAX_DELAY" default:"30s"`
}

// TelemetryConfig contains observability configuration for metrics and tracing.
type TelemetryConfig struct {
	Enabled        bool    `json:"enabled" env:"ARCHADVISOR_TELEMETRY_ENABLED" default:"false"`
	Endpoint       string  `json:"endpoint" env:"ARCHADVISOR_TELEMETRY_ENDPOINT,OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName    string  `json:"service_name" env:"ARCHADVISOR_TELEMETRY_SERVICE_NAME,OTEL_SERVICE_NAME" default:"archadvisor"`
	TracingEnabled bool    `json:"tracing_enabled" env:"ARCHADVISOR_TELEMETRY_TRACING" default:"true"`
	SamplingRate   float64 `json:"sampling_rate" env:"ARCHADVISOR_TELEMETRY_SAMPLING_RATE" default:"1.0"`
	Insecure       bool    `json:"insecure" env:"ARCHADVISOR_TELEMETRY_INSECURE" default:"true"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `json:"level" env:"ARCHADVISOR_LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"ARCHADVISOR_LOG_FORMAT" default:"json"`
	Output string `json:"output" env:"ARCHADVISOR_LOG_OUTPUT" default:"stdout"`
}

// DevelopmentConfig contains settings for local development and testing.
//
// WARNING: Never enable development mode in production.
type DevelopmentConfig struct {
	Enabled      bool `json:"enabled" env:"ARCHADVISOR_DEV_MODE" default:"false"`
	MockAI       bool `json:"mock_ai" env:"ARCHADVISOR_MOCK_AI" default:"false"`
	DebugLogging bool `json:"debug_logging" env:"ARCHADVISOR_DEBUG" default:"false"`
	PrettyLogs   bool `json:"pretty_logs" env:"ARCHADVISOR_PRETTY_LOGS" default:"false"`
}

// Option is a functional option for configuring the service.
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults for local development.
func DefaultConfig() *Config {
	cfg := &Config{
		Name: "archadvisor",
		Port: 8080,
		HTTP: HTTPConfig{
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			HealthCheckPath:   "/health",
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         86400,
			},
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379",
			DB:  RedisDBSessions,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 10,
			Window:      time.Hour,
		},
		Workflow: WorkflowConfig{
			MaxDebateRounds:     3,
			MaxValidationRounds: 2,
		},
		AI: AIConfig{
			Provider:            "openai",
			ArchitectModel:      "gpt-4o",
			DevilsAdvocateModel: "gpt-4o",
			CostAnalyzerModel:   "gpt-4o-mini",
			DocumentationModel:  "gpt-4o-mini",
			Timeout:             30 * time.Second,
			RetryAttempts:       3,
			RetryMinDelay:       2 * time.Second,
			RetryMaxDelay:       30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "archadvisor",
			TracingEnabled: true,
			SamplingRate:   1.0,
			Insecure:       true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}

	if os.Getenv("ARCHADVISOR_DEV_MODE") == "" && os.Getenv("KUBERNETES_SERVICE_HOST") == "" {
		cfg.Development.Enabled = true
		cfg.Development.PrettyLogs = true
		cfg.Logging.Format = "text"
	}

	return cfg
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables take precedence over defaults but are overridden by
// functional options applied afterward.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ARCHADVISOR_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("ARCHADVISOR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		} else if c.logger != nil {
			c.logger.Warn("invalid port in environment variable", map[string]interface{}{
				"ARCHADVISOR_PORT": v,
			})
		}
	}

	if v := firstNonEmptyEnv("ARCHADVISOR_REDIS_URL", "REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("ARCHADVISOR_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}

	if v := os.Getenv("ARCHADVISOR_RATE_LIMIT_MAX_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.MaxRequests = n
		}
	}
	if v := os.Getenv("ARCHADVISOR_RATE_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateLimit.Window = d
		}
	}

	if v := os.Getenv("ARCHADVISOR_MAX_DEBATE_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workflow.MaxDebateRounds = n
		}
	}
	if v := os.Getenv("ARCHADVISOR_MAX_VALIDATION_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workflow.MaxValidationRounds = n
		}
	}

	if v := firstNonEmptyEnv("ARCHADVISOR_AI_API_KEY", "OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("ARCHADVISOR_ARCHITECT_MODEL"); v != "" {
		c.AI.ArchitectModel = v
	}
	if v := os.Getenv("ARCHADVISOR_DEVILS_ADVOCATE_MODEL"); v != "" {
		c.AI.DevilsAdvocateModel = v
	}
	if v := os.Getenv("ARCHADVISOR_COST_ANALYZER_MODEL"); v != "" {
		c.AI.CostAnalyzerModel = v
	}
	if v := os.Getenv("ARCHADVISOR_DOCUMENTATION_MODEL"); v != "" {
		c.AI.DocumentationModel = v
	}

	if v := os.Getenv("ARCHADVISOR_CORS_ENABLED"); v != "" {
		c.HTTP.CORS.Enabled = parseBool(v)
	}
	if v := os.Getenv("ARCHADVISOR_CORS_ORIGINS"); v != "" {
		c.HTTP.CORS.AllowedOrigins = parseStringList(v)
	}

	if v := firstNonEmptyEnv("ARCHADVISOR_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}

	if v := os.Getenv("ARCHADVISOR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ARCHADVISOR_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("ARCHADVISOR_DEV_MODE"); v != "" {
		c.Development.Enabled = parseBool(v)
	}

	return nil
}

// Validate checks the configuration for invalid or missing required values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &FrameworkError{Op: "Config.Validate", Kind: "config", Message: fmt.Sprintf("invalid port: %d", c.Port), Err: ErrInvalidConfiguration}
	}
	if c.Workflow.MaxDebateRounds < 1 || c.Workflow.MaxDebateRounds > 5 {
		return &FrameworkError{Op: "Config.Validate", Kind: "config", Message: "max_debate_rounds must be in [1,5]", Err: ErrInvalidConfiguration}
	}
	if c.RateLimit.MaxRequests < 1 {
		return &FrameworkError{Op: "Config.Validate", Kind: "config", Message: "rate_limit.max_requests must be positive", Err: ErrInvalidConfiguration}
	}
	if c.AI.APIKey == "" && !c.Development.MockAI {
		return &FrameworkError{Op: "Config.Validate", Kind: "config", Message: "AI API key is required unless mock AI is enabled in development", Err: ErrMissingConfiguration}
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return &FrameworkError{Op: "Config.Validate", Kind: "config", Message: "telemetry endpoint is required when telemetry is enabled", Err: ErrMissingConfiguration}
	}
	return nil
}

// NewConfig builds a Config by layering defaults, environment variables, and
// functional options, in that priority order, then validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if cfg.logger == nil {
		logger := NewProductionLogger(cfg.Logging, cfg.Development, cfg.Name)
		if prodLogger, ok := logger.(*ProductionLogger); ok {
			trackLogger(prodLogger)
		}
		cfg.logger = logger
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Logger returns the configuration's logger, creating a default one if unset.
func (c *Config) Logger() Logger {
	if c.logger == nil {
		c.logger = NewProductionLogger(c.Logging, c.Development, c.Name)
	}
	return c.logger
}

// Helper functions

func firstNonEmptyEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// parseStringList splits a comma-separated string into a slice of strings.
func parseStringList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseBool converts a string to a boolean value.
// Accepts: "true", "1", "yes", "on" (case-insensitive) as true.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Functional Options

func WithName(name string) Option {
	return func(c *Config) error {
		c.Name = name
		return nil
	}
}

func WithPort(port int) Option {
	return func(c *Config) error {
		if port < 1 || port > 65535 {
			return &FrameworkError{Op: "WithPort", Kind: "config", Message: fmt.Sprintf("invalid port: %d", port), Err: ErrInvalidConfiguration}
		}
		c.Port = port
		return nil
	}
}

func WithRedisURL(url string) Option {
	return func(c *Config) error {
		c.Redis.URL = url
		return nil
	}
}

func WithCORS(origins []string, credentials bool) Option {
	return func(c *Config) error {
		c.HTTP.CORS.Enabled = true
		c.HTTP.CORS.AllowedOrigins = origins
		c.HTTP.CORS.AllowCredentials = credentials
		return nil
	}
}

func WithMaxDebateRounds(n int) Option {
	return func(c *Config) error {
		if n < 1 || n > 5 {
			return &FrameworkError{Op: "WithMaxDebateRounds", Kind: "config", Message: fmt.Sprintf("max_debate_rounds must be in [1,5], got %d", n), Err: ErrInvalidConfiguration}
		}
		c.Workflow.MaxDebateRounds = n
		return nil
	}
}

func WithRateLimit(maxRequests int, window time.Duration) Option {
	return func(c *Config) error {
		c.RateLimit.MaxRequests = maxRequests
		c.RateLimit.Window = window
		return nil
	}
}

func WithAIAPIKey(key string) Option {
	return func(c *Config) error {
		c.AI.APIKey = key
		return nil
	}
}

func WithMockAI(enabled bool) Option {
	return func(c *Config) error {
		c.Development.MockAI = enabled
		return nil
	}
}

// ============================================================================
// ProductionLogger Implementation - Layered Observability
// ============================================================================

// ProductionLogger provides layered observability for service operations:
// structured or human-readable log lines, with an optional metrics layer
// enabled once the telemetry package registers itself.
type ProductionLogger struct {
	level       string
	debug       bool
	serviceName string
	format      string
	output      io.Writer

	metricsEnabled bool
}

// NewProductionLogger creates a logger from LoggingConfig.
func NewProductionLogger(logging LoggingConfig, dev DevelopmentConfig, serviceName string) Logger {
	var output io.Writer = os.Stdout
	if logging.Output == "stderr" {
		output = os.Stderr
	}

	return &ProductionLogger{
		level:          strings.ToLower(logging.Level),
		debug:          dev.DebugLogging || logging.Level == "debug",
		serviceName:    serviceName,
		format:         logging.Format,
		output:         output,
		metricsEnabled: false,
	}
}

// EnableMetrics is called by the telemetry package to enable the metrics layer.
func (p *ProductionLogger) EnableMetrics() {
	p.metricsEnabled = true
}

func (p *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	p.logEvent("INFO", msg, fields, nil)
}

func (p *ProductionLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent("INFO", msg, fields, ctx)
}

func (p *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	p.logEvent("ERROR", msg, fields, nil)
}

func (p *ProductionLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent("ERROR", msg, fields, ctx)
}

func (p *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	p.logEvent("WARN", msg, fields, nil)
}

func (p *ProductionLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	p.logEvent("WARN", msg, fields, ctx)
}

func (p *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent("DEBUG", msg, fields, nil)
	}
}

func (p *ProductionLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent("DEBUG", msg, fields, ctx)
	}
}

// WithComponent returns a component-scoped logger sharing this logger's configuration.
func (p *ProductionLogger) WithComponent(component string) Logger {
	return &componentLogger{parent: p, component: component}
}

type componentLogger struct {
	parent    *ProductionLogger
	component string
}

func (c *componentLogger) withComponentField(fields map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["component"] = c.component
	return merged
}

func (c *componentLogger) Info(msg string, fields map[string]interface{}) {
	c.parent.Info(msg, c.withComponentField(fields))
}
func (c *componentLogger) Error(msg string, fields map[string]interface{}) {
	c.parent.Error(msg, c.withComponentField(fields))
}
func (c *componentLogger) Warn(msg string, fields map[string]interface{}) {
	c.parent.Warn(msg, c.withComponentField(fields))
}
func (c *componentLogger) Debug(msg string, fields map[string]interface{}) {
	c.parent.Debug(msg, c.withComponentField(fields))
}
func (c *componentLogger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	c.parent.InfoWithContext(ctx, msg, c.withComponentField(fields))
}
func (c *componentLogger) ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	c.parent.ErrorWithContext(ctx, msg, c.withComponentField(fields))
}
func (c *componentLogger) WarnWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	c.parent.WarnWithContext(ctx, msg, c.withComponentField(fields))
}
func (c *componentLogger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	c.parent.DebugWithContext(ctx, msg, c.withComponentField(fields))
}

// Core logging implementation with the structured/human-readable and metrics layers.
func (p *ProductionLogger) logEvent(level, msg string, fields map[string]interface{}, ctx context.Context) {
	timestamp := time.Now().Format(time.RFC3339)

	if p.format == "json" {
		logEntry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level,
			"service":   p.serviceName,
			"message":   msg,
		}
		if ctx != nil && p.metricsEnabled {
			if baggage := getContextBaggage(ctx); len(baggage) > 0 {
				for k, v := range baggage {
					logEntry["trace."+k] = v
				}
			}
		}
		for k, v := range fields {
			logEntry[k] = v
		}
		if data, err := json.Marshal(logEntry); err == nil {
			fmt.Fprintln(p.output, string(data))
		}
	} else {
		var fieldStr strings.Builder
		if len(fields) > 0 {
			fieldStr.WriteString(" ")
			for k, v := range fields {
				fieldStr.WriteString(fmt.Sprintf("%s=%v ", k, v))
			}
		}
		fmt.Fprintf(p.output, "%s [%s] [%s] %s%s\n", timestamp, level, p.serviceName, msg, fieldStr.String())
	}

	if p.metricsEnabled {
		p.emitFrameworkMetric(level, msg, fields, ctx)
	}
}

func (p *ProductionLogger) emitFrameworkMetric(level, msg string, fields map[string]interface{}, ctx context.Context) {
	labels := []string{
		"level", level,
		"service", p.serviceName,
	}
	for k, v := range fields {
		switch k {
		case "operation", "status", "error_type", "node", "component":
			labels = append(labels, k, fmt.Sprintf("%v", v))
		}
	}
	if ctx != nil {
		emitMetricWithContext(ctx, "archadvisor.operations", 1.0, labels...)
	} else {
		emitMetric("archadvisor.operations", 1.0, labels...)
	}
}

func emitMetric(name string, value float64, labels ...string) {
	if globalMetricsRegistry != nil {
		globalMetricsRegistry.Counter(name, labels...)
	}
}

func emitMetricWithContext(ctx context.Context, name string, value float64, labels ...string) {
	if globalMetricsRegistry != nil {
		globalMetricsRegistry.EmitWithContext(ctx, name, value, labels...)
	}
}

func getContextBaggage(ctx context.Context) map[string]string {
	if globalMetricsRegistry != nil {
		return globalMetricsRegistry.GetBaggage(ctx)
	}
	return make(map[string]string)
}
