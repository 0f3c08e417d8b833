package orchestration

import (
	"encoding/json"

	"github.com/archadvisor/archadvisor/session"
)

// RouteAfterValidation decides the successor to the validator node. A
// passing report proceeds to review. A failing report loops back to the
// architect for another attempt, unless the bounded number of validation
// rounds has already been spent, in which case the session force-proceeds
// rather than looping forever on a design that cannot pass.
func RouteAfterValidation(state *session.State) string {
	if state.ValidationPassed {
		return NodeDevilsAdvocateReview
	}
	if state.ValidationRound >= MaxValidationRounds {
		return NodeDevilsAdvocateReview
	}
	return NodeArchitectReviseValidation
}

// devilsAdvocateOutcome is the shape devilsAdvocateReviewNode's JSON output
// is expected to take, used only to decide routing.
type devilsAdvocateOutcome struct {
	CriticalCount          int    `json:"critical_count"`
	ProceedRecommendation  string `json:"proceed_recommendation"`
}

// ContinueDebate decides the successor to the devils_advocate_review node.
// The debate is bounded: once max_debate_rounds is reached the session
// proceeds regardless of outstanding findings. Below that bound, it
// proceeds when the reviewer found no criticals or explicitly recommended
// proceeding, and revises otherwise. A findings payload that fails to
// parse is treated as a pass rather than a cause to loop on malformed
// input.
func ContinueDebate(state *session.State) string {
	if state.DebateRound >= state.MaxDebateRounds {
		return NodeCostAnalysis
	}

	outcome, ok := parseDevilsAdvocateOutcome(state.ReviewFindings)
	if !ok {
		return NodeCostAnalysis
	}
	if outcome.CriticalCount == 0 || outcome.ProceedRecommendation == "proceed" {
		return NodeCostAnalysis
	}
	return NodeArchitectRevise
}

func parseDevilsAdvocateOutcome(raw string) (devilsAdvocateOutcome, bool) {
	var outcome devilsAdvocateOutcome
	if raw == "" {
		return outcome, false
	}
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
		return outcome, false
	}
	return outcome, true
}
