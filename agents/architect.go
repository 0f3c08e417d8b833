package agents

import (
	"fmt"
)

// ArchitectAdapter produces and revises the architecture artifact. It is
// invoked both for the initial design and for the two revision loops
// (validation-focused and debate-focused), distinguished by which state
// fields BuildUserMessage finds populated.
type ArchitectAdapter struct {
	model string
}

func NewArchitectAdapter(model string) *ArchitectAdapter {
	return &ArchitectAdapter{model: model}
}

func (a *ArchitectAdapter) ID() string     { return "architect" }
func (a *ArchitectAdapter) Model() string  { return a.model }

func (a *ArchitectAdapter) SystemPrompt() string {
	return `You are a senior software architect. Given a natural-language description ` +
		`of a system, produce a complete architecture document as a single JSON object ` +
		`with exactly these top-level fields: overview (string), architecture_style ` +
		`(one of microservices, event_driven, monolith, serverless, hybrid, ` +
		`modular_monolith), components (array of {name, type, responsibility, ` +
		`tech_stack, api_endpoints, data_stores, scaling_strategy}), non_functional ` +
		`({latency_targets, throughput, availability_target, data_consistency, ` +
		`disaster_recovery}), tech_decisions (array of {decision, reasoning, ` +
		`alternatives}), deployment ({strategy, regions, containerization}). ` +
		`Respond with only the JSON object, no surrounding prose.`
}

func (a *ArchitectAdapter) BuildUserMessage(state map[string]interface{}) string {
	requirements, _ := state["requirements"].(string)

	if reviewFindings, ok := state["review_findings"].(string); ok && reviewFindings != "" {
		return fmt.Sprintf(
			"Original requirements:\n%s\n\nCurrent design:\n%s\n\n"+
				"A reviewer raised the following concerns. Revise the design to address them "+
				"and return the full updated JSON document:\n%s",
			requirements, stringField(state, "current_design"), reviewFindings,
		)
	}

	if validationReport, ok := state["validation_report"]; ok && validationReport != nil {
		return fmt.Sprintf(
			"Original requirements:\n%s\n\nCurrent design:\n%s\n\n"+
				"The design failed automated validation with this report. Revise the design "+
				"to resolve every critical and high-severity finding and return the full "+
				"updated JSON document:\n%v",
			requirements, stringField(state, "current_design"), validationReport,
		)
	}

	similar, _ := state["similar_architectures"].([]string)
	context := ""
	if len(similar) > 0 {
		context = fmt.Sprintf("\n\nSimilar prior designs for reference:\n%v", similar)
	}
	return fmt.Sprintf("Design a software architecture for the following system:\n%s%s", requirements, context)
}

func (a *ArchitectAdapter) ParseResponse(raw string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := ExtractJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("architect: %w", err)
	}
	return out, nil
}

func (a *ArchitectAdapter) Summarize(parsed map[string]interface{}) string {
	style, _ := parsed["architecture_style"].(string)
	components, _ := parsed["components"].([]interface{})
	return fmt.Sprintf("proposed a %s design with %d components", style, len(components))
}

func stringField(state map[string]interface{}, key string) string {
	if v, ok := state[key].(string); ok {
		return v
	}
	return ""
}
