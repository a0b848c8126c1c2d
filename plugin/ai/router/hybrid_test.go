package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	routererrors "github.com/hrygo/smartrouter/internal/errors"
)

func TestHybridClassifier_ConfidentHeuristicSkipsRemote(t *testing.T) {
	remote := NewMockClassifier().Always(ComplexityAdvanced, 0.99)
	hybrid := NewHybridClassifier(nil, remote, 0.7)

	result, err := hybrid.Classify(context.Background(), "Hello!")
	require.NoError(t, err)

	assert.Equal(t, ComplexityFast, result.Complexity)
	assert.Equal(t, ClassifierHybridHeuristic, result.ClassifierUsed)
	assert.Equal(t, 0, remote.CallCount(), "remote classifier must not be called")
}

func TestHybridClassifier_EscalatesToRemote(t *testing.T) {
	remote := NewMockClassifier().Always(ComplexityAdvanced, 0.9)
	hybrid := NewHybridClassifier(NewHeuristicClassifier(), remote, 0.7)

	// Ambiguous band: heuristic confidence is 0.5.
	result, err := hybrid.Classify(context.Background(), "Tell me everything about quantum physics")
	require.NoError(t, err)

	assert.Equal(t, ComplexityAdvanced, result.Complexity)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, ClassifierHybridLLM, result.ClassifierUsed)
	assert.Equal(t, 1, remote.CallCount())
}

func TestHybridClassifier_RemoteFailureFallsBack(t *testing.T) {
	query := "Tell me everything about quantum physics"
	remote := NewMockClassifier()
	remote.Err = routererrors.Classification("LLM classification failed", errors.New("timeout"))
	hybrid := NewHybridClassifier(nil, remote, 0.7)

	result, err := hybrid.Classify(context.Background(), query)
	require.NoError(t, err, "hybrid never propagates classification errors")

	expected := NewHeuristicClassifier().Score(query)
	assert.Equal(t, expected.Complexity, result.Complexity)
	assert.Equal(t, expected.Confidence, result.Confidence)
	assert.Equal(t, expected.Reasoning, result.Reasoning)
	assert.Equal(t, ClassifierHybridLLMFallback, result.ClassifierUsed)
}

func TestHybridClassifier_LLMRemoteFailure(t *testing.T) {
	client := new(MockCompleter)
	client.On("Complete", mock.Anything, mock.Anything).Return(replyWith("not json"), nil)
	hybrid := NewHybridClassifier(nil, NewLLMClassifier(client, "m"), 0.7)

	result, err := hybrid.Classify(context.Background(), "Explain recursion")
	require.NoError(t, err)
	assert.Equal(t, ClassifierHybridLLMFallback, result.ClassifierUsed)
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestHybridClassifier_Threshold(t *testing.T) {
	tests := []struct {
		name       string
		threshold  float64
		query      string
		wantRemote bool
	}{
		{name: "heuristic at threshold", threshold: 0.81, query: "Hello!", wantRemote: false},
		{name: "heuristic below threshold", threshold: 0.82, query: "Hello!", wantRemote: true},
		{name: "zero threshold never escalates", threshold: 0, query: "Tell me everything about quantum physics", wantRemote: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := NewMockClassifier().Always(ComplexityFast, 0.9)
			hybrid := NewHybridClassifier(nil, remote, tt.threshold)

			_, err := hybrid.Classify(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemote, remote.CallCount() == 1)
		})
	}
}

func TestHybridClassifier_NoRemote(t *testing.T) {
	hybrid := NewHybridClassifier(nil, nil, 0.7)

	result, err := hybrid.Classify(context.Background(), "Explain recursion")
	require.NoError(t, err)
	assert.Equal(t, ClassifierHybridLLMFallback, result.ClassifierUsed)
}
