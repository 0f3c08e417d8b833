package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/archadvisor/archadvisor/agents"
	"github.com/archadvisor/archadvisor/session"
	"github.com/archadvisor/archadvisor/validators"
)

// retrieveContextNode is a stub: similarity retrieval against a vector
// store is out of scope for this module. It still advances the session
// status and leaves SimilarArchitectures empty, so downstream adapters see
// a consistent, if context-free, state.
func retrieveContextNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusRetrievingContext
	return nil
}

func architectDesignNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusDesigning
	emit := deps.Bus.CreateCallback(state.SessionID)

	result, err := deps.Runner.Run(ctx, deps.Architect, map[string]interface{}{
		"requirements":          state.Requirements,
		"similar_architectures": state.SimilarArchitectures,
	}, emit)
	if err != nil {
		return fmt.Errorf("architect_design: %w", err)
	}
	return applyArchitectResult(state, result)
}

func validatorNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusValidating
	emit := deps.Bus.CreateCallback(state.SessionID)

	var artifact validators.Artifact
	if err := json.Unmarshal([]byte(state.CurrentDesign), &artifact); err != nil {
		return fmt.Errorf("validator: decode current design: %w", err)
	}

	previous, _ := state.ValidationReport.(*validators.Report)
	report := deps.ValidatorEngine.Run(artifact, state.Requirements, previous)

	state.ValidationReport = report
	state.ValidationPassed = report.Passed
	state.ValidationScore = float64(report.Score)

	if !report.Passed && deps.Proceed != nil && deps.Proceed.Consume(state.SessionID) {
		state.ValidationRound = MaxValidationRounds
	}

	emit("validation_completed", map[string]interface{}{
		"passed": report.Passed, "score": report.Score, "critical": report.Summary.Critical,
	})
	return nil
}

func architectReviseValidationNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusRevising
	state.ValidationRound++
	emit := deps.Bus.CreateCallback(state.SessionID)

	report, _ := state.ValidationReport.(*validators.Report)

	result, err := deps.Runner.Run(ctx, deps.Architect, map[string]interface{}{
		"requirements":      state.Requirements,
		"current_design":    state.CurrentDesign,
		"validation_report": report,
	}, emit)
	if err != nil {
		return fmt.Errorf("architect_revise_validation: %w", err)
	}
	return applyArchitectResult(state, result)
}

func devilsAdvocateReviewNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusReviewing
	state.DebateRound++
	emit := deps.Bus.CreateCallback(state.SessionID)

	emit("debate_round_started", map[string]interface{}{"round": state.DebateRound})

	result, err := deps.Runner.Run(ctx, deps.DevilsAdvocate, map[string]interface{}{
		"requirements":   state.Requirements,
		"current_design": state.CurrentDesign,
		"debate_round":   state.DebateRound,
	}, emit)
	if err != nil {
		return fmt.Errorf("devils_advocate_review: %w", err)
	}

	findings, _ := result.Output["findings"].([]interface{})
	for _, f := range findings {
		emit("finding_discovered", map[string]interface{}{"finding": f})
	}

	encoded, err := json.Marshal(result.Output)
	if err != nil {
		return fmt.Errorf("devils_advocate_review: encode findings: %w", err)
	}
	state.ReviewFindings = string(encoded)

	if deps.Proceed != nil && deps.Proceed.Consume(state.SessionID) {
		state.DebateRound = state.MaxDebateRounds
	}

	emit("debate_round_completed", map[string]interface{}{
		"round": state.DebateRound, "summary": result.Summary,
	})
	return nil
}

func architectReviseNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusRevising
	emit := deps.Bus.CreateCallback(state.SessionID)

	result, err := deps.Runner.Run(ctx, deps.Architect, map[string]interface{}{
		"requirements":     state.Requirements,
		"current_design":   state.CurrentDesign,
		"review_findings":  state.ReviewFindings,
	}, emit)
	if err != nil {
		return fmt.Errorf("architect_revise: %w", err)
	}
	return applyArchitectResult(state, result)
}

// costAnalysisNode is disabled: the graph still traverses this node to
// keep the topology intact for future re-enablement, but it runs as an
// identity passthrough and never invokes deps.CostAnalyzer.
func costAnalysisNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusCosting
	return nil
}

func generateDocsNode(ctx context.Context, state *session.State, deps *Deps) error {
	state.Status = session.StatusDocumenting
	emit := deps.Bus.CreateCallback(state.SessionID)

	result, err := deps.Runner.Run(ctx, deps.Documentation, map[string]interface{}{
		"current_design":  state.CurrentDesign,
		"review_findings": state.ReviewFindings,
	}, emit)
	if err != nil {
		return fmt.Errorf("generate_docs: %w", err)
	}

	markdown, _ := result.Output["markdown"].(string)
	state.RenderedMarkdown = markdown
	state.FinalDocument = state.CurrentDesign

	if rawDiagrams, ok := result.Output["mermaid_diagrams"].([]interface{}); ok {
		diagrams := make([]string, 0, len(rawDiagrams))
		for _, d := range rawDiagrams {
			if s, ok := d.(string); ok {
				diagrams = append(diagrams, s)
			}
		}
		state.Diagrams = diagrams
	}

	state.AppendMessage(session.AgentMessage{
		AgentID:   deps.Documentation.ID(),
		RoleLabel: "documentation",
		Summary:   result.Summary,
		Timestamp: time.Now(),
		Duration:  result.Duration,
		ModelID:   result.ModelID,
		Cost:      result.Cost,
	})
	return nil
}

// applyArchitectResult records one architect invocation's output onto
// state: the current design is re-marshaled from the parsed output so
// every downstream reader (validator, other adapters) sees canonical JSON
// regardless of incidental formatting in the model's own response text.
func applyArchitectResult(state *session.State, result *agents.Result) error {
	encoded, err := json.Marshal(result.Output)
	if err != nil {
		return fmt.Errorf("encode architect output: %w", err)
	}
	state.CurrentDesign = string(encoded)
	state.AppendMessage(session.AgentMessage{
		AgentID:   "architect",
		RoleLabel: "architect",
		Summary:   result.Summary,
		Timestamp: time.Now(),
		Duration:  result.Duration,
		ModelID:   result.ModelID,
		Cost:      result.Cost,
	})
	return nil
}
