package metrics

import (
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/smartrouter/plugin/ai"
	"github.com/hrygo/smartrouter/plugin/ai/router"
)

// ModelPricing is the USD cost per million tokens.
type ModelPricing struct {
	Input  float64 `json:"input" mapstructure:"input"`
	Output float64 `json:"output" mapstructure:"output"`
}

// PricingTable maps an exact model name to its pricing.
type PricingTable map[string]ModelPricing

// DefaultPricing returns a fresh copy of the built-in pricing table.
func DefaultPricing() PricingTable {
	return PricingTable{
		"gemini-2.5-flash-lite": {Input: 0.05, Output: 0.20},
		"gemini-2.0-flash":      {Input: 0.10, Output: 0.40},
		"gemini-2.5-flash":      {Input: 0.15, Output: 0.60},
		"gemini-2.5-pro":        {Input: 1.25, Output: 10.00},
		"gpt-4o-mini":           {Input: 0.15, Output: 0.60},
		"gpt-4o":                {Input: 2.50, Output: 10.00},
	}
}

// Merge returns a copy of t with overrides applied on top.
func (t PricingTable) Merge(overrides PricingTable) PricingTable {
	out := make(PricingTable, len(t)+len(overrides))
	for model, p := range t {
		out[model] = p
	}
	for model, p := range overrides {
		out[model] = p
	}
	return out
}

// Cost estimates the USD cost of a generation. Unknown models cost zero.
func (t PricingTable) Cost(model string, promptTokens, completionTokens int) float64 {
	p, ok := t[model]
	if !ok {
		return 0
	}
	cost := float64(promptTokens)/1e6*p.Input + float64(completionTokens)/1e6*p.Output
	return round(cost, 8)
}

// BuildMetric assembles the metric for a completed route.
// The model and cost come from what the provider reported.
func BuildMetric(query string, classification *router.ClassificationResult, gen *ai.GenerationResult, latencyMs float64, pricing PricingTable) *RequestMetric {
	return &RequestMetric{
		ID:                       shortuuid.New(),
		Timestamp:                time.Now().UTC(),
		QueryLength:              len([]rune(query)),
		Complexity:               classification.Complexity,
		ClassifierUsed:           classification.ClassifierUsed,
		ClassificationConfidence: classification.Confidence,
		ModelUsed:                gen.Model,
		LatencyMs:                latencyMs,
		PromptTokens:             gen.PromptTokens,
		CompletionTokens:         gen.CompletionTokens,
		TotalTokens:              gen.TotalTokens,
		EstimatedCostUSD:         pricing.Cost(gen.Model, gen.PromptTokens, gen.CompletionTokens),
	}
}
