package router

import (
	"context"
	"sync"
)

// MockClassifier is a mock implementation of Classifier for testing.
type MockClassifier struct {
	mu sync.Mutex

	// Overrides allows tests to pin the result for an exact query.
	Overrides map[string]*ClassificationResult
	// Err, when set, is returned for every query without an override.
	Err error
	// Default, when set, is returned for every query without an override.
	// Otherwise queries are scored by the heuristic classifier.
	Default *ClassificationResult
	// Calls records every classified query in order.
	Calls []string

	heuristic *HeuristicClassifier
}

// NewMockClassifier creates a new MockClassifier that falls back to heuristic scoring.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		Overrides: make(map[string]*ClassificationResult),
		heuristic: NewHeuristicClassifier(),
	}
}

// Always makes every query without an override classify as complexity.
func (m *MockClassifier) Always(complexity ComplexityLevel, confidence float64) *MockClassifier {
	m.Default = &ClassificationResult{
		Complexity:     complexity,
		Confidence:     confidence,
		Reasoning:      "mock",
		ClassifierUsed: "mock",
	}
	return m
}

// Name implements Classifier.
func (m *MockClassifier) Name() string {
	return "mock"
}

// Classify implements Classifier.
func (m *MockClassifier) Classify(_ context.Context, query string) (*ClassificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, query)

	if result, ok := m.Overrides[query]; ok {
		copied := *result
		return &copied, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Default != nil {
		copied := *m.Default
		return &copied, nil
	}
	return m.heuristic.Score(query), nil
}

// CallCount returns how many times Classify was called.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
