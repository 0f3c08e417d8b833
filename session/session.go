// Package session defines the session state record that is the single
// source of truth for one architecture-design run, and the store that
// persists it.
package session

import "time"

// Status is the lifecycle stage of a session.
type Status string

const (
	StatusInitializing      Status = "initializing"
	StatusRetrievingContext Status = "retrieving_context"
	StatusDesigning         Status = "designing"
	StatusValidating        Status = "validating"
	StatusReviewing         Status = "reviewing"
	StatusRevising          Status = "revising"
	StatusCosting           Status = "costing"
	StatusDocumenting       Status = "documenting"
	StatusComplete          Status = "complete"
	StatusError             Status = "error"
	StatusCancelled         Status = "cancelled"
)

// IsTerminal reports whether s is a status the workflow will not advance
// past.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusComplete, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// Preferences carries the caller's choices for a design run.
type Preferences struct {
	CloudProvider   string `json:"cloud_provider"`
	MaxDebateRounds int    `json:"max_debate_rounds"`
	OutputFormat    string `json:"output_format,omitempty"`
	DetailLevel     string `json:"detail_level,omitempty"`
}

// DefaultPreferences returns the documented defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		CloudProvider:   "all",
		MaxDebateRounds: 3,
		OutputFormat:    "markdown",
		DetailLevel:     "standard",
	}
}

// AgentMessage is one immutable entry in a session's message history.
type AgentMessage struct {
	AgentID   string        `json:"agent_id"`
	RoleLabel string        `json:"role_label"`
	Summary   string        `json:"summary"`
	RawOutput string        `json:"raw_output,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	ModelID   string        `json:"model_id"`
	Cost      float64       `json:"cost"`
}

// Fault records one error encountered while running a session.
type Fault struct {
	Message     string    `json:"message"`
	Stage       string    `json:"stage,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Recoverable bool      `json:"recoverable"`
}

// State is the single source of truth for one session. It is mutated
// exclusively by the workflow task that owns the session; any other reader
// is an observer and must treat its copy as potentially stale.
type State struct {
	SessionID            string         `json:"session_id"`
	Requirements         string         `json:"requirements"`
	Preferences          Preferences    `json:"preferences"`
	ClientFingerprint    string         `json:"client_fingerprint"`
	SimilarArchitectures []string       `json:"similar_architectures,omitempty"`
	CurrentDesign        string         `json:"current_design,omitempty"`
	ReviewFindings       string         `json:"review_findings,omitempty"`
	ValidationReport     interface{}    `json:"validation_report,omitempty"`
	ValidationPassed     bool           `json:"validation_passed"`
	ValidationScore      float64        `json:"validation_score"`
	ValidationRound      int            `json:"validation_round"`
	DebateRound          int            `json:"debate_round"`
	MaxDebateRounds      int            `json:"max_debate_rounds"`
	Status               Status         `json:"status"`
	Messages             []AgentMessage `json:"messages"`
	TotalCost            float64        `json:"total_cost"`
	StartedAt            time.Time      `json:"started_at"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
	Errors               []Fault        `json:"errors,omitempty"`
	FinalDocument        string         `json:"final_document,omitempty"`
	RenderedMarkdown     string         `json:"rendered_markdown,omitempty"`
	Diagrams             []string       `json:"diagrams,omitempty"`
}

// New builds the initial state for a freshly created session.
func New(sessionID, requirements, clientFingerprint string, prefs Preferences) *State {
	return &State{
		SessionID:         sessionID,
		Requirements:      requirements,
		Preferences:       prefs,
		ClientFingerprint: clientFingerprint,
		MaxDebateRounds:   prefs.MaxDebateRounds,
		Status:            StatusInitializing,
		Messages:          []AgentMessage{},
		StartedAt:         time.Now(),
	}
}

// AppendMessage appends msg to the session's message history. Messages are
// append-only for the lifetime of a session.
func (s *State) AppendMessage(msg AgentMessage) {
	s.Messages = append(s.Messages, msg)
	s.TotalCost += msg.Cost
}

// Clone returns a deep-enough copy for safe handoff to an observer: slices
// and the nested report are copied by reference since observers never
// mutate what they read, but the top-level struct is a distinct value so
// concurrent field writes on the original do not race with a reader holding
// this copy.
func (s *State) Clone() *State {
	clone := *s
	clone.Messages = append([]AgentMessage(nil), s.Messages...)
	clone.Errors = append([]Fault(nil), s.Errors...)
	clone.SimilarArchitectures = append([]string(nil), s.SimilarArchitectures...)
	clone.Diagrams = append([]string(nil), s.Diagrams...)
	return &clone
}
