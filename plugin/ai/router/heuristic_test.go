package router

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicClassifier_FastQueries(t *testing.T) {
	classifier := NewHeuristicClassifier()

	tests := []struct {
		name          string
		query         string
		minConfidence float64
	}{
		{name: "Greeting", query: "Hello!", minConfidence: 0.6},
		{name: "Thanks", query: "Thank you!", minConfidence: 0.6},
		{name: "Simple definition", query: "What is Python?", minConfidence: 0.6},
		{name: "Factual lookup", query: "What's the capital of France?", minConfidence: 0.6},
		{name: "Good morning", query: "  Good morning  ", minConfidence: 0.6},
		{name: "Translation", query: "Translate hello into Spanish", minConfidence: 0.6},
		{name: "Accented lookup", query: "What is café?", minConfidence: 0.81},
		{name: "CJK lookup", query: "What is 東京?", minConfidence: 0.81},
		{name: "Non-breaking space", query: "Hello\u00a0!", minConfidence: 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := classifier.Classify(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, ComplexityFast, result.Complexity, result.Reasoning)
			assert.GreaterOrEqual(t, result.Confidence, tt.minConfidence)
			assert.Equal(t, ClassifierHeuristic, result.ClassifierUsed)
		})
	}
}

func TestHeuristicClassifier_AdvancedQueries(t *testing.T) {
	classifier := NewHeuristicClassifier()

	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "Code request",
			query: "Write a Python function to implement merge sort with detailed complexity analysis",
		},
		{
			name:  "Math",
			query: "Calculate the integral of x^2 from 0 to 5 and explain the process step by step",
		},
		{
			name: "Analysis",
			query: "Analyze the trade-offs between microservices and monolithic architecture. " +
				"Compare their implications for scalability, deployment, and team organization.",
		},
		{
			name:  "Code block",
			query: "Debug this code:\n```python\ndef foo(x):\n    return x + 1\n```",
		},
		{
			name:  "Short code block",
			query: "Fix:\n```go\nfunc main() {}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := classifier.Classify(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, ComplexityAdvanced, result.Complexity, result.Reasoning)
			assert.GreaterOrEqual(t, result.Confidence, 0.6)
		})
	}
}

func TestHeuristicClassifier_AmbiguousBand(t *testing.T) {
	classifier := NewHeuristicClassifier()

	tests := []struct {
		name  string
		query string
	}{
		{name: "No signals", query: "Tell me everything about quantum physics"},
		{name: "Short query with one keyword", query: "Explain recursion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Score(tt.query)
			assert.Equal(t, ComplexityFast, result.Complexity, result.Reasoning)
			assert.Equal(t, 0.5, result.Confidence)
		})
	}
}

func TestHeuristicClassifier_Reasoning(t *testing.T) {
	classifier := NewHeuristicClassifier()

	result := classifier.Score("Hello!")
	assert.Equal(t, "score=-0.70, signals=[short_query(1_words), fast_pattern]", result.Reasoning)
	assert.Equal(t, 0.81, result.Confidence)

	result = classifier.Score("Tell me everything about quantum physics")
	assert.Equal(t, "score=0.00, signals=[]", result.Reasoning)
}

func TestHeuristicClassifier_SignalsFireInOrder(t *testing.T) {
	classifier := NewHeuristicClassifier()

	query := "Analyze, debug and optimize this algorithm: ```def f(x): return x*2+10``` What? Why? How?"
	result := classifier.Score(query)

	assert.Equal(t, ComplexityAdvanced, result.Complexity)
	assert.Equal(t, 0.95, result.Confidence, "decisive confidence is capped")

	order := []string{"advanced_keywords(4_hits)", "code_detected", "multi_question(3)", "math_content(3_symbols)"}
	last := -1
	for _, signal := range order {
		idx := strings.Index(result.Reasoning, signal)
		require.NotEqual(t, -1, idx, "missing %s in %s", signal, result.Reasoning)
		assert.Greater(t, idx, last, "%s out of order", signal)
		last = idx
	}
}

func TestHeuristicClassifier_FirstMatchOnly(t *testing.T) {
	classifier := NewHeuristicClassifier()

	// Matches several code indicators but scores only once.
	result := classifier.Score("import os\nimport sys\ndef main():\n    pass")
	assert.Equal(t, 1, strings.Count(result.Reasoning, "code_detected"))

	// Matches both "build a" and "design a" but scores only once.
	result = classifier.Score("build a thing and design a thing")
	assert.Equal(t, 1, strings.Count(result.Reasoning, "complex_phrase"))
}

func TestHeuristicClassifier_CodeIndicatorsIgnoreCase(t *testing.T) {
	classifier := NewHeuristicClassifier()

	result := classifier.Score("select name from users where id = 1")
	assert.Contains(t, result.Reasoning, "code_detected")
}

func TestHeuristicClassifier_UnicodeClasses(t *testing.T) {
	classifier := NewHeuristicClassifier()

	assert.Contains(t, classifier.Score("What is café?").Reasoning, "fast_pattern")
	assert.Equal(t, classifier.Score("What is Python?").Confidence, classifier.Score("What is 東京?").Confidence)
	assert.Contains(t, classifier.Score("def größe(x): pass").Reasoning, "code_detected")
	assert.Contains(t, classifier.Score("١٢ and ٣٤ and ٥٦").Reasoning, "math_content(3_symbols)")
}

func TestHeuristicClassifier_QueryLength(t *testing.T) {
	classifier := NewHeuristicClassifier()

	medium := strings.Repeat("word ", 30)
	assert.Contains(t, classifier.Score(medium).Reasoning, "medium_query(30_words)")

	long := strings.Repeat("word ", 60)
	assert.Contains(t, classifier.Score(long).Reasoning, "long_query(60_words)")

	assert.Contains(t, classifier.Score("   ").Reasoning, "short_query(0_words)")
}

func TestHeuristicClassifier_MultiSentence(t *testing.T) {
	classifier := NewHeuristicClassifier()

	result := classifier.Score("One thing. Two things! Three things? Four things... ")
	assert.Contains(t, result.Reasoning, "multi_sentence(4)")
}

func TestHeuristicClassifier_ConfidenceBounded(t *testing.T) {
	classifier := NewHeuristicClassifier()

	queries := []string{
		"",
		"Hi",
		"Tell me everything about quantum physics",
		strings.Repeat("analyze compute solve 12 + 34 = 46? ", 40),
		"```" + strings.Repeat("def f(x): pass\n", 100) + "```",
	}
	for _, q := range queries {
		result := classifier.Score(q)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 0.95)
	}
}

func TestComplexityLevel_JSON(t *testing.T) {
	data, err := json.Marshal(ClassificationResult{Complexity: ComplexityAdvanced})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"complexity":"system2"`)

	var decoded ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(`{"complexity":"system1"}`), &decoded))
	assert.Equal(t, ComplexityFast, decoded.Complexity)

	assert.Error(t, json.Unmarshal([]byte(`{"complexity":"system3"}`), &decoded))
}

func BenchmarkHeuristicClassifier_Score(b *testing.B) {
	classifier := NewHeuristicClassifier()
	query := "Analyze the trade-offs between microservices and monolithic architecture."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		classifier.Score(query)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "東京...", truncate("東京タワー", 2))

	cut := truncate(strings.Repeat("é", 60), 50)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, 53, utf8.RuneCountInString(cut))
}
