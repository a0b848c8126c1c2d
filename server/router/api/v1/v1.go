package v1

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/smartrouter/internal/profile"
	"github.com/hrygo/smartrouter/plugin/ai/metrics"
	"github.com/hrygo/smartrouter/plugin/markdown"
	srmiddleware "github.com/hrygo/smartrouter/server/middleware"
	"github.com/hrygo/smartrouter/server/service/routing"
	"github.com/hrygo/smartrouter/store"
)

// HistoryReader reads persisted request metrics.
type HistoryReader interface {
	ListRequestMetrics(ctx context.Context, find *store.FindRequestMetric) ([]*store.RequestMetric, error)
}

type APIV1Service struct {
	Profile  *profile.Profile
	Router   routing.Router
	Metrics  *metrics.Store
	Markdown *markdown.Renderer
	// History is nil when persistence is disabled.
	History HistoryReader

	rateLimiter *srmiddleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, router routing.Router, metricsStore *metrics.Store, history HistoryReader) *APIV1Service {
	rps, burst := profile.RateLimitRPS, profile.RateLimitBurst
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &APIV1Service{
		Profile:     profile,
		Router:      router,
		Metrics:     metricsStore,
		Markdown:    markdown.NewRenderer(),
		History:     history,
		rateLimiter: srmiddleware.NewRateLimiter(rps, burst),
	}
}

// RegisterRoutes registers the HTTP API with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	corsHandler := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	})
	g := echoServer.Group("", corsHandler)

	g.POST("/route", s.RouteQuery, s.rateLimiter.Middleware())
	g.GET("/metrics", s.GetMetrics)
	g.DELETE("/metrics", s.ClearMetrics)
	g.GET("/metrics/recent", s.GetRecentMetrics)
	g.GET("/metrics/history", s.GetMetricHistory)
	g.GET("/metrics/prometheus", echo.WrapHandler(promhttp.Handler()))
	g.GET("/health", s.HealthCheck)
}
