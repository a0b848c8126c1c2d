package store

import "time"

// RequestMetric is a persisted route metric.
type RequestMetric struct {
	ID                       string
	CreatedMs                int64 // Unix milliseconds, UTC
	QueryLength              int
	Complexity               string
	ClassifierUsed           string
	ClassificationConfidence float64
	ModelUsed                string
	LatencyMs                float64
	PromptTokens             int
	CompletionTokens         int
	TotalTokens              int
	EstimatedCostUSD         float64
}

// FindRequestMetric specifies the conditions for finding request metrics.
// Results are ordered newest first.
type FindRequestMetric struct {
	ModelUsed  *string
	Complexity *string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
}

// DeleteRequestMetric specifies the conditions for deleting request metrics.
type DeleteRequestMetric struct {
	BeforeTime *time.Time // Delete records older than this time
}

// MaxListLimit caps how many rows a single list call returns.
const MaxListLimit = 1000
