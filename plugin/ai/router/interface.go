// Package router provides the query complexity classifiers used to pick a model tier.
package router

import (
	"context"
	"encoding/json"
	"fmt"
)

// Classifier decides which model tier a query needs.
// Implementations: Heuristic (rule scoring), LLM (remote), Hybrid (escalation).
type Classifier interface {
	// Classify estimates the complexity of query.
	Classify(ctx context.Context, query string) (*ClassificationResult, error)

	// Name identifies the classifier in results and metrics.
	Name() string
}

// ComplexityLevel represents the model tier a query is routed to.
type ComplexityLevel int

const (
	// ComplexityFast routes to the fast, cheap tier.
	ComplexityFast ComplexityLevel = iota
	// ComplexityAdvanced routes to the advanced, expensive tier.
	ComplexityAdvanced
)

// String returns the wire value.
func (c ComplexityLevel) String() string {
	switch c {
	case ComplexityAdvanced:
		return "system2"
	default:
		return "system1"
	}
}

// MarshalJSON encodes the level as its wire value.
func (c ComplexityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a wire value.
func (c *ComplexityLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseComplexity(s)
	if err != nil {
		return err
	}
	*c = level
	return nil
}

// ParseComplexity converts a wire value to a ComplexityLevel.
func ParseComplexity(s string) (ComplexityLevel, error) {
	switch s {
	case "system1":
		return ComplexityFast, nil
	case "system2":
		return ComplexityAdvanced, nil
	default:
		return ComplexityFast, fmt.Errorf("unknown complexity %q", s)
	}
}

// Classifier identifiers.
const (
	ClassifierHeuristic         = "heuristic"
	ClassifierLLM               = "llm"
	ClassifierHybridHeuristic   = "hybrid/heuristic"
	ClassifierHybridLLM         = "hybrid/llm"
	ClassifierHybridLLMFallback = "hybrid/heuristic_fallback"
)

// ClassificationResult is produced fresh by every Classify call.
type ClassificationResult struct {
	Complexity     ComplexityLevel `json:"complexity"`
	Confidence     float64         `json:"confidence"`
	Reasoning      string          `json:"reasoning"`
	ClassifierUsed string          `json:"classifier_used"`
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
