package agents

import "fmt"

// CostAnalyzerAdapter estimates infrastructure cost for the current
// design. It is disabled: the workflow graph still traverses this node as
// an identity passthrough so the topology is preserved for future
// re-enablement, but the orchestration layer does not invoke Run on this
// adapter today. The adapter is kept complete (not stubbed) so turning
// cost analysis back on is a wiring change, not a rewrite.
type CostAnalyzerAdapter struct {
	model string
}

func NewCostAnalyzerAdapter(model string) *CostAnalyzerAdapter {
	return &CostAnalyzerAdapter{model: model}
}

func (a *CostAnalyzerAdapter) ID() string    { return "cost_analyzer" }
func (a *CostAnalyzerAdapter) Model() string { return a.model }

func (a *CostAnalyzerAdapter) SystemPrompt() string {
	return `You are a cloud cost analyst. Given an architecture design, estimate monthly ` +
		`infrastructure cost per component and in total. Respond with a single JSON ` +
		`object with fields: component_costs (array of {name, monthly_estimate_usd}), ` +
		`total_monthly_estimate_usd (number), assumptions (array of strings). Respond ` +
		`with only the JSON object, no surrounding prose.`
}

func (a *CostAnalyzerAdapter) BuildUserMessage(state map[string]interface{}) string {
	return fmt.Sprintf("Estimate infrastructure cost for this design:\n%s", stringField(state, "current_design"))
}

func (a *CostAnalyzerAdapter) ParseResponse(raw string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := ExtractJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("cost_analyzer: %w", err)
	}
	return out, nil
}

func (a *CostAnalyzerAdapter) Summarize(parsed map[string]interface{}) string {
	total, _ := parsed["total_monthly_estimate_usd"].(float64)
	return fmt.Sprintf("estimated monthly cost: $%.2f", total)
}
