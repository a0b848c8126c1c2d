package router

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	routererrors "github.com/hrygo/smartrouter/internal/errors"
	"github.com/hrygo/smartrouter/plugin/ai"
)

// ClassificationPrompt is the system prompt for remote classification.
const ClassificationPrompt = `You are a query complexity classifier. Analyze the user's query and determine if it requires:
- "system1": Simple, factual, or routine (greetings, lookups, definitions, translations, simple Q&A)
- "system2": Complex reasoning, analysis, coding, math, multi-step problems, creative writing, detailed explanations

Respond with ONLY valid JSON:
{"complexity": "system1" or "system2", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`

const (
	classificationMaxTokens = 150
	defaultLLMConfidence    = 0.8
)

// jsonFencePattern strips a markdown fence some models wrap JSON replies in.
var jsonFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// LLMClassifier asks a model to classify the query.
// Every failure surfaces as a classification error; it never degrades silently.
type LLMClassifier struct {
	client ai.Completer
	model  string
}

// NewLLMClassifier creates a new LLM classifier.
func NewLLMClassifier(client ai.Completer, model string) *LLMClassifier {
	return &LLMClassifier{
		client: client,
		model:  model,
	}
}

// Name implements Classifier.
func (c *LLMClassifier) Name() string {
	return ClassifierLLM
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, query string) (*ClassificationResult, error) {
	if c.client == nil {
		return nil, routererrors.Classification("llm client not configured", nil)
	}

	resp, err := c.client.Complete(ctx, ai.CompletionRequest{
		Model:        c.model,
		SystemPrompt: ClassificationPrompt,
		UserPrompt:   query,
		Temperature:  0,
		MaxTokens:    classificationMaxTokens,
		JSONMode:     true,
	})
	if err != nil {
		return nil, routererrors.Classification("LLM classification failed", err)
	}

	result, err := parseClassification(resp.Content)
	if err != nil {
		return nil, routererrors.Classification(
			fmt.Sprintf("failed to parse LLM response %q", truncate(resp.Content, 80)), err)
	}
	return result, nil
}

// llmResponse is the expected JSON structure from the model.
type llmResponse struct {
	Complexity *string  `json:"complexity"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

// parseClassification parses the model JSON reply.
// Anything other than "system2" is the fast tier.
func parseClassification(content string) (*ClassificationResult, error) {
	content = strings.TrimSpace(content)
	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, err
	}
	if resp.Complexity == nil {
		return nil, fmt.Errorf("missing complexity field")
	}

	result := &ClassificationResult{
		Complexity:     ComplexityFast,
		Confidence:     defaultLLMConfidence,
		ClassifierUsed: ClassifierLLM,
	}
	if *resp.Complexity == ComplexityAdvanced.String() {
		result.Complexity = ComplexityAdvanced
	}
	if resp.Confidence != nil {
		if *resp.Confidence < 0 || *resp.Confidence > 1 {
			return nil, fmt.Errorf("confidence %v outside [0, 1]", *resp.Confidence)
		}
		result.Confidence = *resp.Confidence
	}
	if resp.Reasoning != nil {
		result.Reasoning = *resp.Reasoning
	}
	return result, nil
}
