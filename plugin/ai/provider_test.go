package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest is the subset of the chat completion payload the tests inspect.
type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newFakeOpenAI(t *testing.T, reply map[string]any, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chatReply(model, content string, prompt, completion int) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{
			"prompt_tokens":     prompt,
			"completion_tokens": completion,
			"total_tokens":      prompt + completion,
		},
	}
}

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := NewProvider(&Config{
		APIKey:       "test-key",
		BaseURL:      baseURL + "/",
		DefaultModel: "gemini-2.5-flash-lite",
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{name: "nil config", cfg: nil, expectError: true},
		{name: "missing api key", cfg: &Config{DefaultModel: "m"}, expectError: true},
		{name: "missing default model", cfg: &Config{APIKey: "k"}, expectError: true},
		{name: "valid", cfg: &Config{APIKey: "k", DefaultModel: "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "m", p.DefaultModel())
			assert.InDelta(t, 0.7, p.config.Temperature, 1e-6)
		})
	}
}

func TestProvider_GenerateDefaults(t *testing.T) {
	var captured capturedRequest
	srv := newFakeOpenAI(t, chatReply("gemini-2.5-flash-lite", "Hi there!", 12, 4), &captured)
	p := newTestProvider(t, srv.URL)

	result, err := p.Generate(context.Background(), GenerateRequest{Query: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "Hi there!", result.Content)
	assert.Equal(t, "gemini-2.5-flash-lite", result.Model)
	assert.Equal(t, 12, result.PromptTokens)
	assert.Equal(t, 4, result.CompletionTokens)
	assert.Equal(t, 16, result.TotalTokens)

	assert.Equal(t, "gemini-2.5-flash-lite", captured.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 1e-6)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Hello", captured.Messages[1].Content)
	assert.Nil(t, captured.ResponseFormat)
}

func TestProvider_GenerateOverrides(t *testing.T) {
	var captured capturedRequest
	srv := newFakeOpenAI(t, chatReply("gemini-2.5-pro", "Answer", 1, 1), &captured)
	p := newTestProvider(t, srv.URL)

	result, err := p.Generate(context.Background(), GenerateRequest{
		Query:        "Explain monads",
		SystemPrompt: "You are terse.",
		Model:        "gemini-2.5-pro",
	})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", result.Model)
	assert.Equal(t, "gemini-2.5-pro", captured.Model)
	assert.Equal(t, "You are terse.", captured.Messages[0].Content)
}

func TestProvider_CompleteJSONMode(t *testing.T) {
	var captured capturedRequest
	srv := newFakeOpenAI(t, chatReply("", `{"complexity":"system1"}`, 30, 8), &captured)
	p := newTestProvider(t, srv.URL)

	result, err := p.Complete(context.Background(), CompletionRequest{
		Model:        "gemini-2.5-flash-lite",
		SystemPrompt: "classify",
		UserPrompt:   "Hello",
		Temperature:  0,
		MaxTokens:    150,
		JSONMode:     true,
	})
	require.NoError(t, err)

	// Reported model is empty, so the requested one is used.
	assert.Equal(t, "gemini-2.5-flash-lite", result.Model)
	assert.Equal(t, 150, captured.MaxTokens)
	assert.Less(t, captured.Temperature, float32(0.001))
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestProvider_EmptyChoices(t *testing.T) {
	reply := chatReply("m", "", 0, 0)
	reply["choices"] = []map[string]any{}
	srv := newFakeOpenAI(t, reply, nil)
	p := newTestProvider(t, srv.URL)

	_, err := p.Generate(context.Background(), GenerateRequest{Query: "Hello"})
	assert.Error(t, err)
}

func TestProvider_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	t.Cleanup(srv.Close)
	p := newTestProvider(t, srv.URL)

	_, err := p.Generate(context.Background(), GenerateRequest{Query: "Hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini-2.5-flash-lite")
}
