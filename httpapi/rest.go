package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/archadvisor/archadvisor/core"
	"github.com/archadvisor/archadvisor/eventbus"
	"github.com/archadvisor/archadvisor/session"
)

// ErrorResponse is the JSON envelope for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// createSessionRequest is the POST /sessions body. Requirements is the
// only required field; everything else defaults per session.DefaultPreferences.
type createSessionRequest struct {
	Requirements string              `json:"requirements"`
	Preferences  *session.Preferences `json:"preferences,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	WSPath    string `json:"ws_path"`
	Status    string `json:"status"`
}

const (
	minRequirementsLength = 50
	maxRequirementsLength = 10000
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	fingerprint := clientFingerprint(r)

	ctx, cancel := requestContext(r)
	defer cancel()

	decision, err := s.Limiter.Allow(ctx, fingerprint)
	if err != nil {
		s.Logger.Error("rate limiter failure", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "rate limiter unavailable")
		return
	}
	if !decision.Allowed {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"remaining":   decision.Remaining,
			"retry_after": decision.RetryAfter.Seconds(),
		})
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if len(req.Requirements) < minRequirementsLength || len(req.Requirements) > maxRequirementsLength {
		writeError(w, http.StatusUnprocessableEntity, "requirements must be between 50 and 10000 characters")
		return
	}

	prefs := session.DefaultPreferences()
	if req.Preferences != nil {
		prefs = *req.Preferences
		if prefs.MaxDebateRounds < 1 || prefs.MaxDebateRounds > 5 {
			writeError(w, http.StatusUnprocessableEntity, "preferences.max_debate_rounds must be in [1,5]")
			return
		}
	}

	sessionID := uuid.NewString()
	state := session.New(sessionID, req.Requirements, fingerprint, prefs)

	if err := s.Store.Create(ctx, state); err != nil {
		s.Logger.Error("failed to create session", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	s.runWorkflow(state)

	writeJSON(w, http.StatusAccepted, createSessionResponse{
		SessionID: sessionID,
		WSPath:    "/ws/" + sessionID,
		Status:    string(state.Status),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := requestContext(r)
	defer cancel()

	state, err := s.Store.Get(ctx, id)
	if err != nil {
		s.Logger.Error("failed to load session", map[string]interface{}{"session_id": id, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSessionOutput(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := requestContext(r)
	defer cancel()

	state, err := s.Store.Get(ctx, id)
	if err != nil {
		s.Logger.Error("failed to load session", map[string]interface{}{"session_id": id, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if state.Status != session.StatusComplete {
		writeError(w, http.StatusConflict, "session has not completed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"final_document":    state.FinalDocument,
		"rendered_markdown": state.RenderedMarkdown,
		"diagrams":          state.Diagrams,
		"validation_report": state.ValidationReport,
	})
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := requestContext(r)
	defer cancel()

	state, err := s.Store.Get(ctx, id)
	if err != nil {
		s.Logger.Error("failed to load session", map[string]interface{}{"session_id": id, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if state.Status.IsTerminal() {
		writeError(w, http.StatusConflict, "session is already terminal")
		return
	}

	if err := s.Store.UpdateStatus(ctx, id, session.StatusCancelled); err != nil {
		s.Logger.Error("failed to cancel session", map[string]interface{}{"session_id": id, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to cancel session")
		return
	}
	s.cancelRunning(id)
	s.Bus.Publish(id, eventbus.Event{Type: "session_cancelled", Data: map[string]interface{}{"session_id": id}})

	writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "status": session.StatusCancelled})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	fingerprint := clientFingerprint(r)

	ids, err := s.Store.ListRecent(ctx, session.RecentListCap)
	if err != nil {
		s.Logger.Error("failed to list recent sessions", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	matches := make([]*session.State, 0, len(ids))
	for _, id := range ids {
		state, err := s.Store.Get(ctx, id)
		if err != nil || state == nil {
			continue
		}
		if state.ClientFingerprint == fingerprint {
			matches = append(matches, state)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": matches})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": sampleTemplates})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := core.HealthHealthy
	deps := map[string]string{"redis": "healthy"}

	if _, err := s.Store.Exists(ctx, "health-check-probe"); err != nil {
		status = core.HealthUnhealthy
		deps["redis"] = err.Error()
	}

	code := http.StatusOK
	if status != core.HealthHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{"status": status, "dependencies": deps})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&ErrorResponse{Error: message, Code: http.StatusText(status)})
}
