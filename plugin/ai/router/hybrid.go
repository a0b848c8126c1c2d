package router

import (
	"context"
	"log/slog"
	"time"
)

// DefaultConfidenceThreshold is the heuristic confidence needed to skip escalation.
const DefaultConfidenceThreshold = 0.7

// HybridClassifier runs the heuristic first and escalates to the remote
// classifier only when the heuristic is not confident enough.
// Remote failures fall back to the heuristic result, so Classify never fails.
type HybridClassifier struct {
	heuristic *HeuristicClassifier
	remote    Classifier
	threshold float64
	logger    *slog.Logger
}

// NewHybridClassifier creates a new hybrid classifier.
func NewHybridClassifier(heuristic *HeuristicClassifier, remote Classifier, threshold float64) *HybridClassifier {
	if heuristic == nil {
		heuristic = NewHeuristicClassifier()
	}
	return &HybridClassifier{
		heuristic: heuristic,
		remote:    remote,
		threshold: threshold,
		logger:    slog.Default().With("component", "hybrid_classifier"),
	}
}

// Name implements Classifier.
func (h *HybridClassifier) Name() string {
	return "hybrid"
}

// Classify implements Classifier.
func (h *HybridClassifier) Classify(ctx context.Context, query string) (*ClassificationResult, error) {
	start := time.Now()

	result := h.heuristic.Score(query)
	if result.Confidence >= h.threshold {
		result.ClassifierUsed = ClassifierHybridHeuristic
		h.logger.Debug("query classified by heuristic",
			"query", truncate(query, 50),
			"complexity", result.Complexity,
			"confidence", result.Confidence,
			"latency_ms", time.Since(start).Milliseconds())
		return result, nil
	}

	if h.remote != nil {
		remoteResult, err := h.remote.Classify(ctx, query)
		if err == nil && remoteResult != nil {
			remoteResult.ClassifierUsed = ClassifierHybridLLM
			h.logger.Debug("query classified by LLM",
				"query", truncate(query, 50),
				"complexity", remoteResult.Complexity,
				"confidence", remoteResult.Confidence,
				"reasoning", remoteResult.Reasoning,
				"latency_ms", time.Since(start).Milliseconds())
			return remoteResult, nil
		}
		h.logger.Warn("LLM classifier failed, using heuristic result",
			"query", truncate(query, 50),
			"error", err)
	}

	result.ClassifierUsed = ClassifierHybridLLMFallback
	return result, nil
}

var (
	_ Classifier = (*HeuristicClassifier)(nil)
	_ Classifier = (*LLMClassifier)(nil)
	_ Classifier = (*HybridClassifier)(nil)
)
