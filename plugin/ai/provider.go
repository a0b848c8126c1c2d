package ai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// GenerationResult is the outcome of one gateway call.
type GenerationResult struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateRequest asks for an answer to a user query.
// Empty SystemPrompt and Model fall back to the gateway defaults.
type GenerateRequest struct {
	Query        string
	SystemPrompt string
	Model        string
}

// CompletionRequest is a raw completion with explicit generation parameters.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
	JSONMode     bool
}

// Generator answers user queries against a named model.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error)
}

// Completer issues raw completions, used for classification calls.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*GenerationResult, error)
}

// Provider is the OpenAI-compatible LLM gateway.
type Provider struct {
	client *openai.Client
	config *Config
}

var (
	_ Generator = (*Provider)(nil)
	_ Completer = (*Provider)(nil)
)

// NewProvider creates a new LLM gateway.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply defaults for unset values
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// DefaultModel returns the model used when a request names none.
func (p *Provider) DefaultModel() string {
	return p.config.DefaultModel
}

// Generate answers a query. It does not retry; callers decide.
func (p *Provider) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	model := req.Model
	if model == "" {
		model = p.config.DefaultModel
	}

	result, err := p.Complete(ctx, CompletionRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   req.Query,
		Temperature:  p.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate with %s: %w", model, err)
	}
	return result, nil
}

// Complete performs one chat completion with explicit parameters.
func (p *Provider) Complete(ctx context.Context, req CompletionRequest) (*GenerationResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	// go-openai drops a zero temperature from the payload.
	if req.Temperature == 0 {
		chatReq.Temperature = math.SmallestNonzeroFloat32
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty chat response")
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	return &GenerationResult{
		Content:          resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
