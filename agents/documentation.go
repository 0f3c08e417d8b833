package agents

import "fmt"

// DocumentationAdapter renders the final architecture document from the
// approved design. Markdown rendering fidelity and diagram drawing live
// outside this module's scope; this adapter's parsed output supplies the
// structured sections and Mermaid source that a downstream renderer (or
// the caller) turns into the final document.
type DocumentationAdapter struct {
	model string
}

func NewDocumentationAdapter(model string) *DocumentationAdapter {
	return &DocumentationAdapter{model: model}
}

func (a *DocumentationAdapter) ID() string    { return "documentation" }
func (a *DocumentationAdapter) Model() string { return a.model }

func (a *DocumentationAdapter) SystemPrompt() string {
	return `You are a technical writer producing the final architecture document for a ` +
		`stakeholder audience. Given an approved design and its review history, produce ` +
		`a single JSON object with fields: markdown (string, the full rendered document), ` +
		`mermaid_diagrams (array of strings, each a complete Mermaid diagram source ` +
		`block), summary (string, one paragraph). Respond with only the JSON object, no ` +
		`surrounding prose.`
}

func (a *DocumentationAdapter) BuildUserMessage(state map[string]interface{}) string {
	return fmt.Sprintf(
		"Approved design:\n%s\n\nReview history:\n%s\n\n"+
			"Produce the final architecture document.",
		stringField(state, "current_design"), stringField(state, "review_findings"),
	)
}

func (a *DocumentationAdapter) ParseResponse(raw string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := ExtractJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("documentation: %w", err)
	}
	return out, nil
}

func (a *DocumentationAdapter) Summarize(parsed map[string]interface{}) string {
	summary, _ := parsed["summary"].(string)
	if len(summary) > 120 {
		return summary[:120] + "..."
	}
	return summary
}
