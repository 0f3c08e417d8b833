package core

// Environment variable names read by Config.LoadFromEnv. Kept as named
// constants so other packages (tests, cmd/archadvisor-server) reference the
// same strings rather than retyping them.
const (
	EnvRedisURL    = "ARCHADVISOR_REDIS_URL"
	EnvPort        = "ARCHADVISOR_PORT"
	EnvDevMode     = "ARCHADVISOR_DEV_MODE"
	EnvAIAPIKey    = "ARCHADVISOR_AI_API_KEY"
	EnvLogLevel    = "ARCHADVISOR_LOG_LEVEL"
)

// DefaultEventHistoryCap bounds the in-memory replay buffer the event bus
// keeps per session, so a WebSocket client connecting late can still replay
// everything emitted since session creation without unbounded memory growth.
const DefaultEventHistoryCap = 100

// DefaultSessionTTL is how long a session's state survives in Redis after
// its last write before expiring.
const DefaultSessionTTL = 24 * 3600 // seconds, see session.DefaultTTL for the time.Duration form
