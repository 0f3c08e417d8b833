package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/archadvisor/archadvisor/core"
)

// DefaultTTL is how long a session record survives in the backing store
// after its last write. See core.DefaultSessionTTL for the seconds form
// used in documentation of the store's persisted-state contract.
const DefaultTTL = 24 * time.Hour

// RecentListKey is the capped list of the most recently created session
// ids, newest first.
const RecentListKey = "recent"

// RecentListCap bounds how many ids the recency list retains.
const RecentListCap = 100

// StoreOutput promotes exactly these fields from a workflow-terminal
// partial update into the stored record. This keeps observers from reading
// partially-applied or speculative state that the workflow has not yet
// committed as final: final_document, rendered_markdown, mermaid_diagrams
// (Diagrams), validation_report, validation_passed, validation_score,
// status, completed_at.

// Store is a Redis-backed key/value abstraction for session state, keyed by
// session id. Callers are expected to be single-writer per session (the
// workflow task owns writes); reads may be stale and must never be treated
// as the source of truth.
type Store struct {
	redis  *core.RedisClient
	logger core.Logger
}

// NewStore builds a Store over the given Redis client (expected to be
// isolated to core.RedisDBSessions).
func NewStore(redisClient *core.RedisClient, logger core.Logger) *Store {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Store{redis: redisClient, logger: logger}
}

// Create writes state, sets the session TTL, and prepends the session id to
// the capped recency list.
func (s *Store) Create(ctx context.Context, state *State) error {
	if err := s.write(ctx, state); err != nil {
		return fmt.Errorf("session.Create: %w", err)
	}

	if err := s.redis.LPush(ctx, RecentListKey, state.SessionID); err != nil {
		s.logger.Warn("failed to update session recency list", map[string]interface{}{"session_id": state.SessionID, "error": err.Error()})
		return nil
	}
	if err := s.redis.LTrim(ctx, RecentListKey, 0, RecentListCap-1); err != nil {
		s.logger.Warn("failed to trim session recency list", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// Get returns the session state, or (nil, nil) if absent or expired.
func (s *Store) Get(ctx context.Context, id string) (*State, error) {
	raw, err := s.redis.Get(ctx, key(id))
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("session.Get: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("session.Get: decode %s: %w", id, err)
	}
	return &state, nil
}

// Exists reports whether a session record is currently present.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return state != nil, nil
}

// Update performs a read-modify-write: it loads the current state, applies
// patch, and writes the result back with a refreshed TTL. It fails if the
// session is absent. patch mutates the state in place.
func (s *Store) Update(ctx context.Context, id string, patch func(*State)) error {
	state, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("session.Update: %w", err)
	}
	if state == nil {
		return fmt.Errorf("session.Update %s: %w", id, core.ErrSessionNotFound)
	}
	patch(state)
	if err := s.write(ctx, state); err != nil {
		return fmt.Errorf("session.Update: %w", err)
	}
	return nil
}

// UpdateStatus is a convenience wrapper over Update that only transitions
// status, stamping completed_at when the new status is terminal.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	return s.Update(ctx, id, func(state *State) {
		state.Status = status
		if status.IsTerminal() && state.CompletedAt == nil {
			now := time.Now()
			state.CompletedAt = &now
		}
	})
}

// AppendMessage performs a read-modify-write that appends msg to the
// session's message history.
func (s *Store) AppendMessage(ctx context.Context, id string, msg AgentMessage) error {
	return s.Update(ctx, id, func(state *State) {
		state.AppendMessage(msg)
	})
}

// StoreOutput promotes the workflow-terminal fields of update into the
// stored record, leaving every other field untouched. Fields not in the
// documented promotion set are ignored even if update has them populated;
// this keeps speculative in-flight fields (review_findings mid-debate, for
// example) from leaking into what observers read as final.
func (s *Store) StoreOutput(ctx context.Context, id string, update *State) error {
	return s.Update(ctx, id, func(state *State) {
		state.FinalDocument = update.FinalDocument
		state.RenderedMarkdown = update.RenderedMarkdown
		state.Diagrams = update.Diagrams
		state.ValidationReport = update.ValidationReport
		state.ValidationPassed = update.ValidationPassed
		state.ValidationScore = update.ValidationScore
		state.Status = update.Status
		if update.CompletedAt != nil {
			state.CompletedAt = update.CompletedAt
		} else if state.Status.IsTerminal() && state.CompletedAt == nil {
			now := time.Now()
			state.CompletedAt = &now
		}
	})
}

// ListRecent returns up to limit recently created session ids, newest
// first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > RecentListCap {
		limit = RecentListCap
	}
	ids, err := s.redis.LRange(ctx, RecentListKey, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("session.ListRecent: %w", err)
	}
	return ids, nil
}

// Checkpoint overwrites the stored record with the full in-memory state and
// refreshes the TTL. Unlike Update, it does not read-modify-write: the
// workflow task holds the authoritative in-memory State for the session's
// lifetime, so a full overwrite is safe under the single-writer policy.
func (s *Store) Checkpoint(ctx context.Context, state *State) error {
	if err := s.write(ctx, state); err != nil {
		return fmt.Errorf("session.Checkpoint: %w", err)
	}
	return nil
}

// Delete removes a session record. It does not touch the recency list: a
// stale id there simply misses on a later Get.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, key(id)); err != nil {
		return fmt.Errorf("session.Delete: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode %s: %w", state.SessionID, err)
	}
	return s.redis.Set(ctx, key(state.SessionID), data, DefaultTTL)
}

func key(id string) string {
	return "state:" + id
}
