package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	routererrors "github.com/hrygo/smartrouter/internal/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// httpStatus maps a router error code to a response status.
func httpStatus(err error) int {
	switch routererrors.GetCodeFromError(err, "") {
	case routererrors.ErrCodeClassificationFailed, routererrors.ErrCodeRoutingFailed:
		return http.StatusBadGateway
	case routererrors.ErrCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail drops the code prefix of router errors.
func errorDetail(err error) string {
	var routerErr *routererrors.RouterError
	if !errors.As(err, &routerErr) {
		return err.Error()
	}
	if routerErr.Cause != nil {
		return routerErr.Message + ": " + routerErr.Cause.Error()
	}
	return routerErr.Message
}

func writeError(c echo.Context, err error) error {
	status := httpStatus(err)
	detail := errorDetail(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
		detail = "Internal error: " + detail
	}
	return c.JSON(status, ErrorResponse{Detail: detail})
}

func writeDetail(c echo.Context, status int, detail string) error {
	return c.JSON(status, ErrorResponse{Detail: detail})
}
