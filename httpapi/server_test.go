package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archadvisor/archadvisor/agents"
	"github.com/archadvisor/archadvisor/core"
	"github.com/archadvisor/archadvisor/eventbus"
	"github.com/archadvisor/archadvisor/orchestration"
	"github.com/archadvisor/archadvisor/ratelimit"
	"github.com/archadvisor/archadvisor/session"
	"github.com/archadvisor/archadvisor/validators"
)

const soundDesign = `{
  "overview": "a small order processing system",
  "architecture_style": "microservices",
  "components": [
    {"name": "api-gateway", "type": "gateway", "responsibility": "routing", "tech_stack": ["nginx"], "scaling_strategy": "clustered, horizontal autoscaling"},
    {"name": "orders-service", "type": "service", "responsibility": "order workflow", "tech_stack": ["golang"], "scaling_strategy": "horizontal autoscaling"},
    {"name": "orders-db", "type": "database", "responsibility": "order storage", "tech_stack": ["postgresql"], "scaling_strategy": "read replicas, clustered"}
  ],
  "non_functional": {"latency_targets": "300ms", "throughput": "500 rps", "availability_target": "99.5", "data_consistency": "eventual", "disaster_recovery": "daily backups"},
  "tech_decisions": [{"decision": "use postgresql", "reasoning": "eventual consistency accepted as a CAP tradeoff for read throughput", "alternatives": ["mysql"]}],
  "deployment": {"strategy": "rolling", "regions": ["us-east-1"], "containerization": "docker"}
}`

// scriptedClient returns the same canned response to every model.
type scriptedClient struct {
	response string
}

func (c *scriptedClient) GenerateResponse(ctx context.Context, prompt string, options *core.AIOptions) (*core.AIResponse, error) {
	return &core.AIResponse{Content: c.response, Model: options.Model}, nil
}

// testServer wires a Server backed by miniredis and a real engine, so tests
// exercise the same collaborators production wiring uses, not stand-ins.
func testServer(t *testing.T, maxRequests int) *Server {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	sessionsRedis, err := core.NewRedisClient(core.RedisClientOptions{
		RedisURL:  "redis://" + mr.Addr(),
		DB:        core.RedisDBSessions,
		Namespace: "archadvisor:sessions",
	})
	require.NoError(t, err)
	t.Cleanup(func() { sessionsRedis.Close() })

	rateLimitRedis, err := core.NewRedisClient(core.RedisClientOptions{
		RedisURL:  "redis://" + mr.Addr(),
		DB:        core.RedisDBRateLimiting,
		Namespace: "archadvisor:ratelimit",
	})
	require.NoError(t, err)
	t.Cleanup(func() { rateLimitRedis.Close() })

	store := session.NewStore(sessionsRedis, nil)
	bus := eventbus.New(nil, core.DefaultEventHistoryCap)
	limiter := ratelimit.New(rateLimitRedis, nil, maxRequests, time.Minute)

	client := &scriptedClient{response: soundDesign}
	chain := validators.DefaultChain(validators.BuiltinDomainPatterns)
	engine := orchestration.NewEngine(&orchestration.Deps{
		Bus:             bus,
		Store:           store,
		Runner:          agents.NewRunner(client, nil, 1, time.Millisecond, 2*time.Millisecond),
		Architect:       agents.NewArchitectAdapter("gpt-4o"),
		DevilsAdvocate:  agents.NewDevilsAdvocateAdapter("gpt-4o-mini"),
		CostAnalyzer:    agents.NewCostAnalyzerAdapter("gpt-4o-mini"),
		Documentation:   agents.NewDocumentationAdapter("gpt-4o-mini"),
		ValidatorEngine: validators.NewEngine(chain, nil),
		Logger:          &core.NoOpLogger{},
		Proceed:         orchestration.NewProceedSignals(),
	})

	return NewServer(store, bus, engine, limiter, &core.NoOpLogger{}, core.DefaultCORSConfig())
}

const validRequirements = "Design a system for an online retailer that accepts orders, " +
	"reserves inventory, charges payment, and ships items. Expect 500 orders per " +
	"second at peak with strict consistency on payment state."

func createSession(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(body))
	req.RemoteAddr = "10.0.0.1:5555"
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestHandleCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid requirements",
			body:           `{"requirements": "` + validRequirements + `"}`,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "requirements too short",
			body:           `{"requirements": "too short"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid json",
			body:           `{invalid`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid max debate rounds",
			body:           `{"requirements": "` + validRequirements + `", "preferences": {"max_debate_rounds": 9}}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, 100)
			rr := createSession(t, s, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedStatus == http.StatusAccepted {
				var resp createSessionResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.SessionID)
				assert.Equal(t, "/ws/"+resp.SessionID, resp.WSPath)
			}
		})
	}
}

func TestHandleCreateSession_RateLimited(t *testing.T) {
	s := testServer(t, 1)

	rr := createSession(t, s, `{"requirements": "`+validRequirements+`"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)

	rr = createSession(t, s, `{"requirements": "`+validRequirements+`"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body, "remaining")
	assert.Contains(t, body, "retry_after")
}

func TestHandleGetSession(t *testing.T) {
	s := testServer(t, 100)

	rr := createSession(t, s, `{"requirements": "`+validRequirements+`"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	var created createSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+created.SessionID, nil)
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/does-not-exist", nil)
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleSessionOutput_NotYetComplete(t *testing.T) {
	s := testServer(t, 100)

	rr := createSession(t, s, `{"requirements": "`+validRequirements+`"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	var created createSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	// The workflow goroutine runs in the background; immediately after
	// creation the session is virtually certain to still be in progress.
	req := httptest.NewRequest(http.MethodGet, "/sessions/"+created.SessionID+"/output", nil)
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandleSessionOutput_AfterCompletion(t *testing.T) {
	s := testServer(t, 100)

	state := session.New("session-complete", validRequirements, "10.0.0.1", session.DefaultPreferences())
	require.NoError(t, s.Store.Create(context.Background(), state))
	require.NoError(t, s.Engine.Run(context.Background(), state))

	req := httptest.NewRequest(http.MethodGet, "/sessions/session-complete/output", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body, "final_document")
	assert.Contains(t, body, "rendered_markdown")
}

func TestHandleCancelSession(t *testing.T) {
	s := testServer(t, 100)

	state := session.New("session-to-cancel", validRequirements, "10.0.0.1", session.DefaultPreferences())
	require.NoError(t, s.Store.Create(context.Background(), state))

	req := httptest.NewRequest(http.MethodPost, "/sessions/session-to-cancel/cancel", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	got, err := s.Store.Get(context.Background(), "session-to-cancel")
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, got.Status)

	// Cancelling an already-terminal session is rejected.
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/sessions/does-not-exist/cancel", nil)
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleCancelSession_StopsRunningWorkflow(t *testing.T) {
	s := testServer(t, 100)

	state := session.New("session-running", validRequirements, "10.0.0.1", session.DefaultPreferences())
	require.NoError(t, s.Store.Create(context.Background(), state))

	s.runWorkflow(state)
	s.runningMu.Lock()
	_, registered := s.running["session-running"]
	s.runningMu.Unlock()
	require.True(t, registered, "runWorkflow must register a cancel func before returning")

	s.cancelRunning("session-running")

	assert.Eventually(t, func() bool {
		s.runningMu.Lock()
		defer s.runningMu.Unlock()
		_, stillRunning := s.running["session-running"]
		return !stillRunning
	}, time.Second, 10*time.Millisecond, "cancelled workflow goroutine should deregister itself")
}

func TestHandleListSessions_FiltersByFingerprint(t *testing.T) {
	s := testServer(t, 100)

	rrA := createSession(t, s, `{"requirements": "`+validRequirements+`"}`)
	require.Equal(t, http.StatusAccepted, rrA.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{"requirements": "`+validRequirements+`"}`))
	req.RemoteAddr = "10.0.0.2:5555"
	rrB := httptest.NewRecorder()
	s.ServeHTTP(rrB, req)
	require.Equal(t, http.StatusAccepted, rrB.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	listReq.RemoteAddr = "10.0.0.1:5555"
	listRR := httptest.NewRecorder()
	s.ServeHTTP(listRR, listReq)
	assert.Equal(t, http.StatusOK, listRR.Code)

	var body struct {
		Sessions []*session.State `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(listRR.Body.Bytes(), &body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "10.0.0.1", body.Sessions[0].ClientFingerprint)
}

func TestHandleTemplates(t *testing.T) {
	s := testServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "E-commerce"))

	req = httptest.NewRequest(http.MethodPost, "/templates", nil)
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, string(core.HealthHealthy), body["status"])
}
