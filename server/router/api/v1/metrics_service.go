package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/smartrouter/plugin/ai/metrics"
	"github.com/hrygo/smartrouter/plugin/ai/router"
	"github.com/hrygo/smartrouter/plugin/filter"
	"github.com/hrygo/smartrouter/store"
)

const (
	defaultMetricLimit = 20
	maxMetricLimit     = 1000
)

var errInvalidLimit = errors.New("limit must be an integer between 1 and 1000")

// GetMetrics returns aggregated metrics across all requests.
// GET /metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Summary())
}

// ClearMetrics empties the in-memory metric log.
// DELETE /metrics
func (s *APIV1Service) ClearMetrics(c echo.Context) error {
	s.Metrics.Clear()
	return c.NoContent(http.StatusNoContent)
}

// GetRecentMetrics returns the last N metrics, optionally filtered by a CEL expression.
// GET /metrics/recent?limit=20&filter=model_used=="gpt-4o"
func (s *APIV1Service) GetRecentMetrics(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return writeDetail(c, http.StatusUnprocessableEntity, err.Error())
	}

	expr := c.QueryParam("filter")
	if expr == "" {
		return c.JSON(http.StatusOK, s.Metrics.Recent(limit))
	}

	f, err := filter.Compile(expr)
	if err != nil {
		return writeDetail(c, http.StatusBadRequest, err.Error())
	}
	var matched []*metrics.RequestMetric
	for _, m := range s.Metrics.All() {
		ok, err := f.Matches(m.Activation())
		if err != nil {
			return writeDetail(c, http.StatusBadRequest, err.Error())
		}
		if ok {
			matched = append(matched, m)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	if matched == nil {
		matched = []*metrics.RequestMetric{}
	}
	return c.JSON(http.StatusOK, matched)
}

// GetMetricHistory returns persisted metrics, newest first.
// GET /metrics/history?limit=20&model=gpt-4o&complexity=system2
func (s *APIV1Service) GetMetricHistory(c echo.Context) error {
	if s.History == nil {
		return writeDetail(c, http.StatusNotFound, "metric persistence is disabled")
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return writeDetail(c, http.StatusUnprocessableEntity, err.Error())
	}

	find := &store.FindRequestMetric{Limit: limit}
	if model := c.QueryParam("model"); model != "" {
		find.ModelUsed = &model
	}
	if complexity := c.QueryParam("complexity"); complexity != "" {
		if _, err := router.ParseComplexity(complexity); err != nil {
			return writeDetail(c, http.StatusUnprocessableEntity, err.Error())
		}
		find.Complexity = &complexity
	}

	rows, err := s.History.ListRequestMetrics(c.Request().Context(), find)
	if err != nil {
		return writeError(c, err)
	}
	list := make([]*metrics.RequestMetric, 0, len(rows))
	for _, row := range rows {
		list = append(list, metrics.FromStore(row))
	}
	return c.JSON(http.StatusOK, list)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultMetricLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxMetricLimit {
		return 0, errInvalidLimit
	}
	return limit, nil
}
