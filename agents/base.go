// Package agents implements the agent-adapter contract: a stateless
// wrapper over an external language-model call with a fixed system prompt,
// a user-message builder, and a structured-output parser. The network call
// itself is an external collaborator (core.AIClient); what lives here is
// the retry policy, the JSON-recovery pipeline, and cost accounting shared
// by every concrete adapter.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/archadvisor/archadvisor/core"
)

// EventFunc is the callback an adapter uses to publish its lifecycle
// events. The workflow engine binds this to its event bus.
type EventFunc func(eventType string, data map[string]interface{})

// Adapter is the contract every concrete agent implements.
type Adapter interface {
	// ID names the adapter for messages and events, e.g. "architect".
	ID() string
	// SystemPrompt returns the fixed system prompt for this adapter.
	SystemPrompt() string
	// BuildUserMessage renders the user-turn prompt from whatever state
	// the adapter needs; callers pass it in as an opaque map so adapters
	// don't depend on the session package's concrete type.
	BuildUserMessage(state map[string]interface{}) string
	// ParseResponse turns the raw model text into structured output.
	ParseResponse(raw string) (map[string]interface{}, error)
	// Summarize produces a short human-readable summary of parsed output.
	Summarize(parsed map[string]interface{}) string
	// Model names the model id this adapter should be run with.
	Model() string
}

// Result is what Run returns: the parsed output, the raw model text, and
// accounting metadata.
type Result struct {
	Output      map[string]interface{}
	RawResponse string
	Summary     string
	ModelID     string
	Cost        float64
	Duration    time.Duration
}

// Runner executes an Adapter against an AI client with retries and cost
// accounting.
type Runner struct {
	client       core.AIClient
	logger       core.Logger
	retryAttempts int
	retryMinDelay time.Duration
	retryMaxDelay time.Duration
	temperature   float32
	maxTokens     int
}

// NewRunner builds a Runner. retryAttempts, retryMinDelay, and
// retryMaxDelay come from AIConfig; all invocation exceptions (transport
// errors and parse failures after recovery) are retry-eligible.
func NewRunner(client core.AIClient, logger core.Logger, retryAttempts int, retryMinDelay, retryMaxDelay time.Duration) *Runner {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	if retryMinDelay <= 0 {
		retryMinDelay = 2 * time.Second
	}
	if retryMaxDelay <= 0 {
		retryMaxDelay = 30 * time.Second
	}
	return &Runner{
		client:        client,
		logger:        logger,
		retryAttempts: retryAttempts,
		retryMinDelay: retryMinDelay,
		retryMaxDelay: retryMaxDelay,
		temperature:   0.7,
		maxTokens:     4096,
	}
}

// Run invokes adapter with up to the configured number of attempts, using
// exponential backoff between attempts, and emits agent_started /
// agent_thinking / agent_completed via emit. Every invocation exception
// (transport error, or a parse fault that survives JSON recovery) is
// retry-eligible.
func (r *Runner) Run(ctx context.Context, adapter Adapter, state map[string]interface{}, emit EventFunc) (*Result, error) {
	if emit == nil {
		emit = func(string, map[string]interface{}) {}
	}

	emit("agent_started", map[string]interface{}{"agent_id": adapter.ID(), "model": adapter.Model()})

	userMessage := adapter.BuildUserMessage(state)

	var lastErr error
	delay := r.retryMinDelay

	for attempt := 1; attempt <= r.retryAttempts; attempt++ {
		emit("agent_thinking", map[string]interface{}{"agent_id": adapter.ID(), "attempt": attempt})

		start := time.Now()
		response, err := r.client.GenerateResponse(ctx, userMessage, &core.AIOptions{
			Model:        adapter.Model(),
			Temperature:  r.temperature,
			MaxTokens:    r.maxTokens,
			SystemPrompt: adapter.SystemPrompt(),
		})
		duration := time.Since(start)

		if err != nil {
			lastErr = fmt.Errorf("%s: generate: %w", adapter.ID(), err)
			if !r.wait(ctx, attempt, &delay) {
				return nil, lastErr
			}
			continue
		}

		parsed, perr := adapter.ParseResponse(response.Content)
		if perr != nil {
			lastErr = fmt.Errorf("%s: parse: %w", adapter.ID(), perr)
			r.logger.Warn("agent response failed JSON recovery", map[string]interface{}{
				"agent_id": adapter.ID(), "attempt": attempt, "error": perr.Error(),
			})
			if !r.wait(ctx, attempt, &delay) {
				return nil, lastErr
			}
			continue
		}

		cost := estimateCost(adapter.Model(), response.Usage)
		summary := adapter.Summarize(parsed)

		emit("agent_completed", map[string]interface{}{
			"agent_id": adapter.ID(), "summary": summary, "duration_ms": duration.Milliseconds(), "cost": cost,
		})

		return &Result{
			Output:      parsed,
			RawResponse: response.Content,
			Summary:     summary,
			ModelID:     response.Model,
			Cost:        cost,
			Duration:    duration,
		}, nil
	}

	return nil, fmt.Errorf("%s: %w: %v", adapter.ID(), core.ErrAdapterExhausted, lastErr)
}

// wait sleeps with exponential backoff before the next attempt, returning
// false if the context was canceled first or attempt was the last one.
func (r *Runner) wait(ctx context.Context, attempt int, delay *time.Duration) bool {
	if attempt >= r.retryAttempts {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(*delay):
	}
	*delay *= 2
	if *delay > r.retryMaxDelay {
		*delay = r.retryMaxDelay
	}
	return true
}

// --- JSON recovery pipeline ---
//
// Agent output is generated by a language model, so the parser tolerates
// fenced code blocks, trailing commas, and trailing prose around the JSON.
// Recovery runs in order and stops at the first step that parses: strip
// fences, attempt a direct parse; if that fails, drop trailing commas
// before closing brackets and retry; if that still fails, extract the
// first brace-balanced substring (string- and escape-aware) and retry.

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
var trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

// ExtractJSON runs the three-stage recovery pipeline over raw model text
// and unmarshals the result into out.
func ExtractJSON(raw string, out interface{}) error {
	candidate := stripFences(raw)

	if err := json.Unmarshal([]byte(candidate), out); err == nil {
		return nil
	}

	commaFixed := trailingCommaPattern.ReplaceAllString(candidate, "$1")
	if err := json.Unmarshal([]byte(commaFixed), out); err == nil {
		return nil
	}

	balanced, ok := extractBraceBalanced(commaFixed)
	if ok {
		if err := json.Unmarshal([]byte(balanced), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("agents.ExtractJSON: no recovery pass produced valid JSON")
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencedBlockPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// extractBraceBalanced finds the first top-level {...} substring, tracking
// string literals and escape sequences so braces inside quoted strings
// don't confuse the depth count.
func extractBraceBalanced(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
