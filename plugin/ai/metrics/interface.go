// Package metrics keeps the per-request routing metrics and their aggregate summary.
package metrics

import (
	"time"

	"github.com/hrygo/smartrouter/plugin/ai/router"
)

// Recorder accepts completed route metrics.
// Consumers: server/service/routing.
type Recorder interface {
	Record(m *RequestMetric)
}

// RequestMetric describes one completed route.
type RequestMetric struct {
	ID                       string                 `json:"id,omitempty"`
	Timestamp                time.Time              `json:"timestamp"`
	QueryLength              int                    `json:"query_length"`
	Complexity               router.ComplexityLevel `json:"complexity"`
	ClassifierUsed           string                 `json:"classifier_used"`
	ClassificationConfidence float64                `json:"classification_confidence"`
	ModelUsed                string                 `json:"model_used"`
	LatencyMs                float64                `json:"latency_ms"`
	PromptTokens             int                    `json:"prompt_tokens"`
	CompletionTokens         int                    `json:"completion_tokens"`
	TotalTokens              int                    `json:"total_tokens"`
	EstimatedCostUSD         float64                `json:"estimated_cost_usd"`
}

// Activation exposes the metric as filter variables.
func (m *RequestMetric) Activation() map[string]any {
	return map[string]any{
		"model_used":                m.ModelUsed,
		"complexity":                m.Complexity.String(),
		"classifier_used":           m.ClassifierUsed,
		"latency_ms":                m.LatencyMs,
		"query_length":              int64(m.QueryLength),
		"classification_confidence": m.ClassificationConfidence,
		"prompt_tokens":             int64(m.PromptTokens),
		"completion_tokens":         int64(m.CompletionTokens),
		"total_tokens":              int64(m.TotalTokens),
		"estimated_cost_usd":        m.EstimatedCostUSD,
	}
}

// Summary is derived from the full metric log on every call.
type Summary struct {
	TotalRequests          int            `json:"total_requests"`
	RequestsByComplexity   map[string]int `json:"requests_by_complexity"`
	RequestsByModel        map[string]int `json:"requests_by_model"`
	AvgLatencyMs           float64        `json:"avg_latency_ms"`
	TotalTokensUsed        int            `json:"total_tokens_used"`
	TotalEstimatedCostUSD  float64        `json:"total_estimated_cost_usd"`
	AvgCostPerRequestUSD   float64        `json:"avg_cost_per_request_usd"`
	ClassifierDistribution map[string]int `json:"classifier_distribution"`
}
