// Command archadvisor-server runs the architecture-advisory service: it
// wires configuration, the Redis-backed session store, the event bus, the
// rate limiter, the validator engine, the agent adapters, the workflow
// engine, and the HTTP/WebSocket ingress surface, then serves until
// interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/archadvisor/archadvisor/agents"
	"github.com/archadvisor/archadvisor/ai"
	"github.com/archadvisor/archadvisor/core"
	"github.com/archadvisor/archadvisor/eventbus"
	"github.com/archadvisor/archadvisor/httpapi"
	"github.com/archadvisor/archadvisor/internal/port"
	"github.com/archadvisor/archadvisor/orchestration"
	"github.com/archadvisor/archadvisor/ratelimit"
	"github.com/archadvisor/archadvisor/session"
	"github.com/archadvisor/archadvisor/telemetry"
	"github.com/archadvisor/archadvisor/validators"
)

func main() {
	cfg, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "archadvisor: configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	var shutdownTelemetry func(context.Context) error
	if cfg.Telemetry.Enabled {
		provider, err := telemetry.NewOTelProvider(cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			logger.Error("failed to initialize telemetry, continuing without it", map[string]interface{}{"error": err.Error()})
		} else {
			shutdownTelemetry = provider.Shutdown
		}
	}

	redisSessions, err := core.NewRedisClient(core.RedisClientOptions{
		RedisURL:  cfg.Redis.URL,
		DB:        core.RedisDBSessions,
		Namespace: "archadvisor:sessions",
	})
	if err != nil {
		logger.Error("failed to connect to redis for sessions", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer redisSessions.Close()

	redisRateLimit, err := core.NewRedisClient(core.RedisClientOptions{
		RedisURL:  cfg.Redis.URL,
		DB:        core.RedisDBRateLimiting,
		Namespace: "archadvisor:ratelimit",
	})
	if err != nil {
		logger.Error("failed to connect to redis for rate limiting", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer redisRateLimit.Close()

	store := session.NewStore(redisSessions, logger)
	bus := eventbus.New(logger, core.DefaultEventHistoryCap)
	limiter := ratelimit.New(redisRateLimit, logger, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	var aiClient core.AIClient
	if cfg.Development.MockAI {
		aiClient = &mockAIClient{}
	} else {
		aiClient = ai.NewOpenAIClient(cfg.AI.APIKey, logger)
	}

	runner := agents.NewRunner(aiClient, logger, cfg.AI.RetryAttempts, cfg.AI.RetryMinDelay, cfg.AI.RetryMaxDelay)
	validatorEngine := validators.NewEngine(validators.DefaultChain(validators.BuiltinDomainPatterns), logger)

	engine := orchestration.NewEngine(&orchestration.Deps{
		Bus:             bus,
		Store:           store,
		Runner:          runner,
		Architect:       agents.NewArchitectAdapter(cfg.AI.ArchitectModel),
		DevilsAdvocate:  agents.NewDevilsAdvocateAdapter(cfg.AI.DevilsAdvocateModel),
		CostAnalyzer:    agents.NewCostAnalyzerAdapter(cfg.AI.CostAnalyzerModel),
		Documentation:   agents.NewDocumentationAdapter(cfg.AI.DocumentationModel),
		ValidatorEngine: validatorEngine,
		Logger:          logger,
		Proceed:         orchestration.NewProceedSignals(),
	})

	server := httpapi.NewServer(store, bus, engine, limiter, logger, &cfg.HTTP.CORS)
	server.DevMode = cfg.Development.Enabled

	addr := resolveAddress(cfg, logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("archadvisor server listening", map[string]interface{}{"addr": addr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped unexpectedly", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// resolveAddress prefers an explicit ARCHADVISOR_PORT / functional-option
// port, falling back to the environment-aware port manager (Kubernetes
// fixed port, Docker Compose convention, or a free port in the local dev
// range) when none was set.
func resolveAddress(cfg *core.Config, logger core.Logger) string {
	pm := port.NewPortManager(&portLoggerAdapter{logger: logger})
	chosen := cfg.Port
	if os.Getenv(core.EnvPort) == "" {
		chosen = pm.DeterminePort()
	}
	return pm.GetServerAddress(chosen)
}

// portLoggerAdapter satisfies port.Logger (variadic fields) over a
// core.Logger (a single fields map), since internal/port predates this
// service and was written against the framework's older logging shape.
type portLoggerAdapter struct {
	logger core.Logger
}

func (a *portLoggerAdapter) Debug(msg string, fields ...interface{}) { a.logger.Debug(msg, fieldsOf(fields)) }
func (a *portLoggerAdapter) Info(msg string, fields ...interface{})  { a.logger.Info(msg, fieldsOf(fields)) }
func (a *portLoggerAdapter) Warn(msg string, fields ...interface{})  { a.logger.Warn(msg, fieldsOf(fields)) }
func (a *portLoggerAdapter) Error(msg string, fields ...interface{}) { a.logger.Error(msg, fieldsOf(fields)) }

func fieldsOf(fields []interface{}) map[string]interface{} {
	if len(fields) == 1 {
		if m, ok := fields[0].(map[string]interface{}); ok {
			return m
		}
	}
	out := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		out[fmt.Sprintf("arg%d", i)] = f
	}
	return out
}

// mockAIClient is used when ARCHADVISOR_MOCK_AI is set, for local
// development without a configured API key. It is not a substitute for
// the real LLM transport the network call requires.
type mockAIClient struct{}

func (m *mockAIClient) GenerateResponse(ctx context.Context, prompt string, options *core.AIOptions) (*core.AIResponse, error) {
	return &core.AIResponse{
		Content: `{"overview": "mock design", "architecture_style": "microservices", "components": [], "non_functional": {}, "tech_decisions": [], "deployment": {}}`,
		Model:   options.Model,
	}, nil
}
