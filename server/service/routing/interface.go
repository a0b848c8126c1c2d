package routing

import (
	"context"

	"github.com/hrygo/smartrouter/plugin/ai/router"
)

// Router answers a query on the model tier its complexity calls for.
// Consumers: server/router/api/v1.
type Router interface {
	Route(ctx context.Context, req *RouteRequest) (*RouteResponse, error)
}

// RouteRequest is a single query to route.
type RouteRequest struct {
	Query        string
	SystemPrompt string
	// ForceModel, when set, bypasses tier selection and fallback.
	ForceModel string
	// RequestID correlates log lines. Generated when empty.
	RequestID string
}

// TokenUsage is the token accounting reported by the provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RouteResponse is the answer plus how it was produced.
type RouteResponse struct {
	Answer                   string                 `json:"answer"`
	ModelUsed                string                 `json:"model_used"`
	Complexity               router.ComplexityLevel `json:"complexity"`
	ClassificationConfidence float64                `json:"classification_confidence"`
	ClassifierUsed           string                 `json:"classifier_used"`
	LatencyMs                float64                `json:"latency_ms"`
	TokenUsage               TokenUsage             `json:"token_usage"`
	EstimatedCostUSD         float64                `json:"estimated_cost_usd"`
}
