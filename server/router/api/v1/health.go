package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse reports liveness and the active routing configuration.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	ClassifierMode string `json:"classifier_mode"`
	System1Model   string `json:"system1_model"`
	System2Model   string `json:"system2_model"`
}

// HealthCheck reports the service configuration.
// GET /health
func (s *APIV1Service) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Version:        s.Profile.Version,
		ClassifierMode: s.Profile.ClassifierMode,
		System1Model:   s.Profile.FastModel,
		System2Model:   s.Profile.AdvancedModel,
	})
}
