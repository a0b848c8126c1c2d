// Package routing runs a query through classification, model selection and generation,
// and records the outcome.
//
// Each route moves through the same stages:
//   - classify the query
//   - select a model (force_model wins)
//   - generate, retrying once on the advanced tier when allowed
//   - record a metric for the completed route
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
	"unicode/utf8"

	routererrors "github.com/hrygo/smartrouter/internal/errors"
	"github.com/hrygo/smartrouter/plugin/ai"
	"github.com/hrygo/smartrouter/plugin/ai/metrics"
	"github.com/hrygo/smartrouter/plugin/ai/router"
	"github.com/hrygo/smartrouter/server/internal/observability"
)

// Config selects the model tiers.
type Config struct {
	FastModel       string
	AdvancedModel   string
	FallbackEnabled bool
	Pricing         metrics.PricingTable
}

// Service implements Router.
type Service struct {
	classifier router.Classifier
	generator  ai.Generator
	recorder   metrics.Recorder
	cfg        Config
	logger     *slog.Logger
}

// NewService creates a new routing service.
func NewService(classifier router.Classifier, generator ai.Generator, recorder metrics.Recorder, cfg Config) *Service {
	if cfg.Pricing == nil {
		cfg.Pricing = metrics.DefaultPricing()
	}
	return &Service{
		classifier: classifier,
		generator:  generator,
		recorder:   recorder,
		cfg:        cfg,
		logger:     slog.With("component", "router"),
	}
}

// Route implements Router.
func (s *Service) Route(ctx context.Context, req *RouteRequest) (*RouteResponse, error) {
	if req == nil {
		return nil, routererrors.InvalidArgument("route request is nil")
	}
	start := time.Now()
	rc, ok := observability.FromContext(ctx)
	if !ok {
		rc = observability.NewRequestContextWithID(s.logger, req.RequestID)
	}

	classification, err := s.classifier.Classify(ctx, req.Query)
	if err != nil {
		if !routererrors.IsCode(err, routererrors.ErrCodeClassificationFailed) {
			err = routererrors.Classification("classification failed", err)
		}
		observability.RouteFailures.WithLabelValues(observability.StageClassification).Inc()
		rc.Error("classification failed", err, failureAttrs(rc, err, slog.String("classifier", s.classifier.Name()))...)
		return nil, err
	}
	rc.Complexity = classification.Complexity.String()

	model, forced := s.SelectModel(classification, req.ForceModel)
	rc.Model = model
	rc.Debug("model selected",
		slog.Int(observability.LogFieldQueryLen, utf8.RuneCountInString(req.Query)),
		slog.String("query", observability.Truncate(req.Query, 80)),
		slog.Float64("confidence", classification.Confidence),
		slog.Bool("forced", forced),
	)

	gen, err := s.generate(ctx, req, model)
	if err != nil {
		if !s.shouldFallback(model, forced) {
			routeErr := routererrors.Routing(fmt.Sprintf("LLM generation failed with %s", model), err)
			observability.RouteFailures.WithLabelValues(observability.StageGeneration).Inc()
			rc.Error("generation failed", err, failureAttrs(rc, routeErr)...)
			return nil, routeErr
		}

		fallback := s.cfg.AdvancedModel
		observability.RouteFallbacks.Inc()
		rc.Warn("generation failed, falling back",
			slog.String("fallback_model", fallback),
			slog.String("error", err.Error()),
		)
		gen, err = s.generate(ctx, req, fallback)
		if err != nil {
			routeErr := routererrors.Routing(fmt.Sprintf("LLM generation failed with fallback %s", fallback), err)
			observability.RouteFailures.WithLabelValues(observability.StageFallback).Inc()
			rc.Error("fallback generation failed", err, failureAttrs(rc, routeErr, slog.String("fallback_model", fallback))...)
			return nil, routeErr
		}
		model = fallback
		rc.Model = model
	}

	latencyMs := math.Round(float64(time.Since(start).Nanoseconds())/1e4) / 100

	metric := metrics.BuildMetric(req.Query, classification, gen, latencyMs, s.cfg.Pricing)
	s.recorder.Record(metric)

	observability.RouteRequests.WithLabelValues(rc.Complexity, model, classification.ClassifierUsed).Inc()
	observability.RouteLatency.WithLabelValues(model).Observe(latencyMs / 1000)
	observability.RouteCost.WithLabelValues(gen.Model).Add(metric.EstimatedCostUSD)

	rc.Info("route completed",
		slog.Float64(observability.LogFieldDuration, latencyMs),
		slog.Int("total_tokens", gen.TotalTokens),
		slog.Float64("estimated_cost_usd", metric.EstimatedCostUSD),
	)

	return &RouteResponse{
		Answer:                   gen.Content,
		ModelUsed:                model,
		Complexity:               classification.Complexity,
		ClassificationConfidence: classification.Confidence,
		ClassifierUsed:           classification.ClassifierUsed,
		LatencyMs:                latencyMs,
		TokenUsage: TokenUsage{
			PromptTokens:     gen.PromptTokens,
			CompletionTokens: gen.CompletionTokens,
			TotalTokens:      gen.TotalTokens,
		},
		EstimatedCostUSD: metric.EstimatedCostUSD,
	}, nil
}

// SelectModel picks the model for a classification. forced reports whether forceModel won.
func (s *Service) SelectModel(classification *router.ClassificationResult, forceModel string) (model string, forced bool) {
	if forceModel != "" {
		return forceModel, true
	}
	if classification.Complexity == router.ComplexityAdvanced {
		return s.cfg.AdvancedModel, false
	}
	return s.cfg.FastModel, false
}

// shouldFallback reports whether a failed generation on model may retry on the advanced tier.
func (s *Service) shouldFallback(model string, forced bool) bool {
	return s.cfg.FallbackEnabled &&
		!forced &&
		model == s.cfg.FastModel &&
		s.cfg.FastModel != s.cfg.AdvancedModel
}

func failureAttrs(rc *observability.RequestContext, err error, attrs ...slog.Attr) []slog.Attr {
	return append(attrs,
		slog.String(observability.LogFieldErrorCode, string(routererrors.GetCodeFromError(err, ""))),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
}

func (s *Service) generate(ctx context.Context, req *RouteRequest, model string) (*ai.GenerationResult, error) {
	return s.generator.Generate(ctx, ai.GenerateRequest{
		Query:        req.Query,
		SystemPrompt: req.SystemPrompt,
		Model:        model,
	})
}

var _ Router = (*Service)(nil)
