package agents

import "fmt"

// DevilsAdvocateAdapter critiques the current design after it passes (or
// is force-proceeded past) the deterministic validator, looking for
// judgment calls the rule engine cannot check: is this actually a good fit
// for the stated requirements, not just schema-valid.
type DevilsAdvocateAdapter struct {
	model string
}

func NewDevilsAdvocateAdapter(model string) *DevilsAdvocateAdapter {
	return &DevilsAdvocateAdapter{model: model}
}

func (a *DevilsAdvocateAdapter) ID() string    { return "devils_advocate" }
func (a *DevilsAdvocateAdapter) Model() string { return a.model }

func (a *DevilsAdvocateAdapter) SystemPrompt() string {
	return `You are a skeptical principal engineer reviewing an architecture design. ` +
		`Find the weakest points a rule-based checker cannot: wrong tool for the job, ` +
		`over- or under-engineering relative to the stated requirements, unstated ` +
		`assumptions, operational risk. Respond with a single JSON object with exactly ` +
		`these fields: findings (array of {title, detail, severity: one of critical, ` +
		`high, medium, low}), critical_count (integer, count of findings with severity ` +
		`critical), proceed_recommendation (one of "proceed", "revise"). Respond with ` +
		`only the JSON object, no surrounding prose.`
}

func (a *DevilsAdvocateAdapter) BuildUserMessage(state map[string]interface{}) string {
	requirements, _ := state["requirements"].(string)
	design := stringField(state, "current_design")
	round, _ := state["debate_round"].(int)
	return fmt.Sprintf(
		"Requirements:\n%s\n\nCurrent design (debate round %d):\n%s\n\n"+
			"Critique this design against the requirements.",
		requirements, round, design,
	)
}

func (a *DevilsAdvocateAdapter) ParseResponse(raw string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := ExtractJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("devils_advocate: %w", err)
	}
	return out, nil
}

func (a *DevilsAdvocateAdapter) Summarize(parsed map[string]interface{}) string {
	findings, _ := parsed["findings"].([]interface{})
	recommendation, _ := parsed["proceed_recommendation"].(string)
	return fmt.Sprintf("raised %d finding(s), recommends %q", len(findings), recommendation)
}
