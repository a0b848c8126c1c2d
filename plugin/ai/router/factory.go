package router

import (
	routererrors "github.com/hrygo/smartrouter/internal/errors"
	"github.com/hrygo/smartrouter/plugin/ai"
)

// Config selects and configures the classifier.
type Config struct {
	Mode                string // heuristic, llm or hybrid
	ConfidenceThreshold float64
	ClassifierModel     string
	Client              ai.Completer
}

// NewClassifier builds the classifier variant named by cfg.Mode.
// It is called once at startup; an invalid combination is a configuration error.
func NewClassifier(cfg Config) (Classifier, error) {
	switch cfg.Mode {
	case "", ClassifierHeuristic:
		return NewHeuristicClassifier(), nil
	case ClassifierLLM, "hybrid":
		if cfg.Client == nil {
			return nil, routererrors.Configurationf("classifier mode %q requires an LLM client", cfg.Mode)
		}
		if cfg.ClassifierModel == "" {
			return nil, routererrors.Configuration("classifier model is required")
		}
		remote := NewLLMClassifier(cfg.Client, cfg.ClassifierModel)
		if cfg.Mode == ClassifierLLM {
			return remote, nil
		}
		threshold := cfg.ConfidenceThreshold
		if threshold < 0 || threshold > 1 {
			return nil, routererrors.Configurationf("confidence threshold %v must be within [0, 1]", threshold)
		}
		return NewHybridClassifier(NewHeuristicClassifier(), remote, threshold), nil
	default:
		return nil, routererrors.Configurationf("unknown classifier mode %q", cfg.Mode)
	}
}
