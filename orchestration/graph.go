// Package orchestration implements the workflow engine: a directed graph
// of stages with two cycle-back edges, bounded iteration counts, and
// conditional routing driven by stage outputs. The graph topology (nodes,
// fixed edges, and the two routing functions) is kept as data distinct
// from the dispatcher, so adding a stage does not require touching the
// loop that drives it.
package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/archadvisor/archadvisor/agents"
	"github.com/archadvisor/archadvisor/core"
	"github.com/archadvisor/archadvisor/eventbus"
	"github.com/archadvisor/archadvisor/session"
	"github.com/archadvisor/archadvisor/validators"
)

// Node names. Kept as named constants rather than bare strings so the
// edge and routing tables read as a single source of truth.
const (
	NodeRetrieveContext           = "retrieve_context"
	NodeArchitectDesign           = "architect_design"
	NodeValidator                 = "validator"
	NodeArchitectReviseValidation = "architect_revise_validation"
	NodeDevilsAdvocateReview      = "devils_advocate_review"
	NodeArchitectRevise           = "architect_revise"
	NodeCostAnalysis              = "cost_analysis"
	NodeGenerateDocs              = "generate_docs"
	nodeEnd                       = ""
)

// MaxValidationRounds bounds the validator/architect-revise-validation
// cycle-back edge.
const MaxValidationRounds = 2

// nodeFunc is one stage of the graph: it reads and mutates state in place
// and may call zero or one agent adapter. It never decides the next node;
// that is the dispatcher's job, driven by the edge and routing tables.
type nodeFunc func(ctx context.Context, state *session.State, deps *Deps) error

// fixedEdges maps a node with no conditional routing to its single
// successor. Nodes absent here are conditional and are resolved through
// the routing table in routing.go.
var fixedEdges = map[string]string{
	NodeRetrieveContext:           NodeArchitectDesign,
	NodeArchitectDesign:           NodeValidator,
	NodeArchitectReviseValidation: NodeValidator,
	NodeArchitectRevise:           NodeDevilsAdvocateReview,
	NodeCostAnalysis:              NodeGenerateDocs,
	NodeGenerateDocs:              nodeEnd,
}

// conditionalRoutes maps a conditional node to the function that decides
// its successor.
var conditionalRoutes = map[string]func(state *session.State) string{
	NodeValidator:            RouteAfterValidation,
	NodeDevilsAdvocateReview: ContinueDebate,
}

var nodes = map[string]nodeFunc{
	NodeRetrieveContext:           retrieveContextNode,
	NodeArchitectDesign:           architectDesignNode,
	NodeValidator:                 validatorNode,
	NodeArchitectReviseValidation: architectReviseValidationNode,
	NodeDevilsAdvocateReview:      devilsAdvocateReviewNode,
	NodeArchitectRevise:           architectReviseNode,
	NodeCostAnalysis:              costAnalysisNode,
	NodeGenerateDocs:              generateDocsNode,
}

// Deps bundles every external collaborator a node needs. It is assembled
// once by the caller (the cmd entrypoint) and handed to every session's
// Engine.
type Deps struct {
	Bus             *eventbus.Bus
	Store           *session.Store
	Runner          *agents.Runner
	Architect       agents.Adapter
	DevilsAdvocate  agents.Adapter
	CostAnalyzer    agents.Adapter
	Documentation   agents.Adapter
	ValidatorEngine *validators.Engine
	Logger          core.Logger

	// Proceed carries client-requested early exits from the validation and
	// debate loops (the WebSocket `force_proceed` command). Nil is treated
	// as "no signals pending" so Deps built without it still work.
	Proceed *ProceedSignals
}

// Engine drives one session's workflow from its current status to a
// terminal one. Each session's workflow runs as a single cooperatively
// scheduled task; suspension points are adapter calls and backing-store
// I/O, at which cancellation is observed.
type Engine struct {
	deps *Deps
}

// NewEngine builds an Engine bound to deps.
func NewEngine(deps *Deps) *Engine {
	return &Engine{deps: deps}
}

// ForceProceed requests that sessionID's current bounded loop (validation
// or debate) exit at its next check, as if the loop's round bound had
// already been reached. It is a no-op if deps carries no ProceedSignals.
func (e *Engine) ForceProceed(sessionID string) {
	if e.deps.Proceed == nil {
		return
	}
	e.deps.Proceed.Set(sessionID)
}

// Run drives state through the graph starting at retrieve_context (or, for
// a resumed session, whatever node its status implies) until it reaches a
// terminal status. Every node transition is checkpointed to the store and
// announced on the event bus.
func (e *Engine) Run(ctx context.Context, state *session.State) error {
	emit := e.deps.Bus.CreateCallback(state.SessionID)
	current := startingNode(state)

	for current != nodeEnd {
		select {
		case <-ctx.Done():
			return e.cancel(ctx, state, emit)
		default:
		}

		fn, ok := nodes[current]
		if !ok {
			return fmt.Errorf("orchestration: unknown node %q", current)
		}

		emit("workflow_progress", map[string]interface{}{"node": current})

		if err := fn(ctx, state, e.deps); err != nil {
			return e.fail(ctx, state, emit, current, err)
		}

		if err := e.deps.Store.Checkpoint(ctx, state); err != nil {
			return e.fail(ctx, state, emit, current, fmt.Errorf("checkpoint: %w", err))
		}

		next, ok := fixedEdges[current]
		if !ok {
			route, hasRoute := conditionalRoutes[current]
			if !hasRoute {
				return fmt.Errorf("orchestration: node %q has neither a fixed edge nor a route", current)
			}
			next = route(state)
		}
		current = next
	}

	now := time.Now()
	state.CompletedAt = &now
	state.Status = session.StatusComplete
	emit("session_complete", map[string]interface{}{"session_id": state.SessionID})
	return e.deps.Store.Checkpoint(ctx, state)
}

// startingNode lets a session resumed mid-flight (after a process restart,
// for example) re-enter the graph at a sensible point rather than always
// restarting from scratch. A fresh session always starts at
// retrieve_context.
func startingNode(state *session.State) string {
	switch state.Status {
	case session.StatusValidating:
		return NodeValidator
	case session.StatusReviewing:
		return NodeDevilsAdvocateReview
	case session.StatusCosting:
		return NodeCostAnalysis
	case session.StatusDocumenting:
		return NodeGenerateDocs
	default:
		return NodeRetrieveContext
	}
}

// fail records a fatal workflow error: any adapter exception after its
// internal retries, or a backing-store fault, is terminal to the session.
func (e *Engine) fail(ctx context.Context, state *session.State, emit func(string, map[string]interface{}), node string, cause error) error {
	now := time.Now()
	state.Status = session.StatusError
	state.CompletedAt = &now
	state.Errors = append(state.Errors, session.Fault{
		Message:     cause.Error(),
		Stage:       node,
		Timestamp:   now,
		Recoverable: false,
	})

	emit("error", map[string]interface{}{
		"node":        node,
		"message":     cause.Error(),
		"recoverable": false,
	})

	if err := e.deps.Store.Checkpoint(ctx, state); err != nil {
		e.deps.Logger.Error("failed to checkpoint errored session", map[string]interface{}{
			"session_id": state.SessionID, "error": err.Error(),
		})
	}
	return fmt.Errorf("orchestration: node %q: %w", node, cause)
}

// cancel moves the session to cancelled. Stage outputs are append-only and
// safe to discard; no compensation is required.
func (e *Engine) cancel(ctx context.Context, state *session.State, emit func(string, map[string]interface{})) error {
	now := time.Now()
	state.Status = session.StatusCancelled
	state.CompletedAt = &now
	emit("session_cancelled", map[string]interface{}{"session_id": state.SessionID})
	if err := e.deps.Store.Checkpoint(ctx, state); err != nil {
		return fmt.Errorf("orchestration: checkpoint after cancel: %w", err)
	}
	return core.ErrWorkflowCanceled
}
