package agents

import "github.com/archadvisor/archadvisor/core"

// modelPrice is a per-million-token price pair for one model id.
type modelPrice struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable is the per-model-id price table used for cost accounting.
// Prices are USD per million tokens and are indicative; operators running
// against a different provider pricing schedule should keep this table in
// sync with their contract.
var priceTable = map[string]modelPrice{
	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4":       {InputPerMillion: 30.00, OutputPerMillion: 60.00},
	"gpt-4-turbo": {InputPerMillion: 10.00, OutputPerMillion: 30.00},
	"gpt-3.5-turbo": {InputPerMillion: 0.50, OutputPerMillion: 1.50},
}

// estimateCost multiplies per-call input/output token counts by the price
// table entry for model. Unknown models cost 0 rather than failing the
// call: cost accounting must never block the workflow.
func estimateCost(model string, usage core.TokenUsage) float64 {
	price, ok := priceTable[model]
	if !ok {
		return 0
	}
	inputCost := float64(usage.PromptTokens) / 1_000_000 * price.InputPerMillion
	outputCost := float64(usage.CompletionTokens) / 1_000_000 * price.OutputPerMillion
	return inputCost + outputCost
}
