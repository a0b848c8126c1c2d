package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/smartrouter/server/internal/observability"
	"github.com/hrygo/smartrouter/server/service/routing"
)

// MaxQueryLength is the longest accepted query, in characters.
const MaxQueryLength = 10000

// RouteQueryRequest is the body of POST /route.
type RouteQueryRequest struct {
	Query          string `json:"query"`
	SystemPrompt   string `json:"system_prompt,omitempty"`
	ForceModel     string `json:"force_model,omitempty"`
	RenderMarkdown bool   `json:"render_markdown,omitempty"`
}

// RouteQueryResponse is the routed answer, optionally with rendered HTML.
type RouteQueryResponse struct {
	*routing.RouteResponse
	AnswerHTML string `json:"answer_html,omitempty"`
}

// RouteQuery classifies the query, routes it to a model and returns the answer.
// POST /route
func (s *APIV1Service) RouteQuery(c echo.Context) error {
	var req RouteQueryRequest
	if err := c.Bind(&req); err != nil {
		return writeDetail(c, http.StatusUnprocessableEntity, "invalid request body")
	}
	if n := utf8.RuneCountInString(req.Query); n == 0 || n > MaxQueryLength {
		return writeDetail(c, http.StatusUnprocessableEntity, "query must be between 1 and 10000 characters")
	}

	rc := observability.NewRequestContextWithID(nil, c.Response().Header().Get(echo.HeaderXRequestID))
	// The answer is generated even if the client goes away.
	ctx := observability.WithRequestContext(context.WithoutCancel(c.Request().Context()), rc)
	resp, err := s.Router.Route(ctx, &routing.RouteRequest{
		Query:        req.Query,
		SystemPrompt: req.SystemPrompt,
		ForceModel:   strings.TrimSpace(req.ForceModel),
		RequestID:    rc.RequestID,
	})
	if err != nil {
		return writeError(c, err)
	}

	result := RouteQueryResponse{RouteResponse: resp}
	if req.RenderMarkdown {
		html, err := s.Markdown.RenderHTML(resp.Answer)
		if err != nil {
			rc.Warn("failed to render answer markdown", slog.String("error", err.Error()))
		} else {
			result.AnswerHTML = html
		}
	}
	return c.JSON(http.StatusOK, result)
}
