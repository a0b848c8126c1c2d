package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/smartrouter/internal/profile"
	"github.com/hrygo/smartrouter/plugin/ai"
	"github.com/hrygo/smartrouter/plugin/ai/metrics"
	"github.com/hrygo/smartrouter/plugin/ai/router"
	apiv1 "github.com/hrygo/smartrouter/server/router/api/v1"
	"github.com/hrygo/smartrouter/server/service/routing"
	"github.com/hrygo/smartrouter/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Metrics *metrics.Store

	echoServer *echo.Echo
	persister  *metrics.Persister
}

// NewServer wires the router and its HTTP API. storeInstance is nil when persistence is disabled.
func NewServer(ctx context.Context, profile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   storeInstance,
	}

	provider, err := ai.NewProvider(ai.NewConfigFromProfile(profile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create llm provider")
	}

	classifier, err := router.NewClassifier(router.Config{
		Mode:                profile.ClassifierMode,
		ConfidenceThreshold: profile.ConfidenceThreshold,
		ClassifierModel:     profile.ClassifierModel,
		Client:              provider,
	})
	if err != nil {
		return nil, err
	}

	var history apiv1.HistoryReader
	var opts []metrics.Option
	if storeInstance != nil {
		s.persister = metrics.NewPersister(storeInstance, metrics.DefaultPersisterConfig())
		opts = append(opts, metrics.WithSink(s.persister))
		history = storeInstance
	}
	s.Metrics = metrics.NewStore(opts...)

	routingService := routing.NewService(classifier, provider, s.Metrics, routing.Config{
		FastModel:       profile.FastModel,
		AdvancedModel:   profile.AdvancedModel,
		FallbackEnabled: profile.FallbackEnabled,
		Pricing:         PricingFromProfile(profile),
	})

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	echoServer.Use(requestLogger())
	s.echoServer = echoServer

	apiV1Service := apiv1.NewAPIV1Service(profile, routingService, s.Metrics, history)
	apiV1Service.RegisterRoutes(echoServer)

	slog.InfoContext(ctx, "smart router configured",
		slog.String("classifier", classifier.Name()),
		slog.String("system1_model", profile.FastModel),
		slog.String("system2_model", profile.AdvancedModel),
		slog.Bool("fallback", profile.FallbackEnabled),
		slog.Bool("persistence", storeInstance != nil),
	)
	return s, nil
}

// PricingFromProfile applies the profile's pricing overrides to the default table.
func PricingFromProfile(profile *profile.Profile) metrics.PricingTable {
	overrides := make(metrics.PricingTable, len(profile.Pricing))
	for model, price := range profile.Pricing {
		overrides[model] = metrics.ModelPricing{Input: price.Input, Output: price.Output}
	}
	return metrics.DefaultPricing().Merge(overrides)
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the configured address and serves until Shutdown.
// It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}

	if s.persister != nil {
		s.persister.Start()
	}

	slog.InfoContext(ctx, "server listening", slog.String("address", listener.Addr().String()))
	s.echoServer.Listener = listener
	return s.echoServer.Start(address)
}

// Shutdown stops the HTTP server, then flushes pending metrics and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	if s.persister != nil {
		s.persister.Close()
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			slog.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
	slog.Info("server stopped properly")
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Float64("latency_ms", float64(v.Latency.Microseconds())/1000),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelDebug
			if v.Error != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}
