package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/middlewares"
	"github.com/dmitrymomot/inkwell/pkg/slug"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string              `json:"error"`
	Code      string              `json:"code,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
	Retryable bool                `json:"retryable,omitempty"`
}

// ErrorHandler renders err as JSON. Domain errors get their status
// codes here. Recovered panics and unrecognized errors are logged and
// answered with 500.
func ErrorHandler(c web.Context, err error) error {
	httpErr := toHTTPError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err), slog.Int("status", httpErr.Code))
	}

	return c.JSON(httpErr.Code, errorBody{
		Error:     httpErr.Message,
		Code:      httpErr.ErrorCode,
		RequestID: middlewares.GetRequestID(c),
		Fields:    httpErr.Fields,
		Retryable: httpErr.Retryable,
	})
}

// NotFound answers unknown routes.
func NotFound(web.Context) error {
	return web.ErrNotFound("route not found", web.WithErrorCode("route_not_found"))
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(web.Context) error {
	return web.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed", web.WithErrorCode("method_not_allowed"))
}

func toHTTPError(err error) *web.HTTPError {
	if httpErr := web.AsHTTPError(err); httpErr != nil {
		return httpErr
	}

	var validation *content.ValidationError
	switch {
	case errors.As(err, &validation):
		return web.ErrUnprocessable(validation.Message(),
			web.WithErrorCode("validation_failed"), web.WithFields(validation.Fields), web.WithError(err))
	case errors.Is(err, slug.ErrInvalidInput):
		return web.ErrUnprocessable("The given name cannot be turned into a slug.",
			web.WithErrorCode("invalid_slug_source"), web.WithError(err))
	case errors.Is(err, slug.ErrConflict):
		return web.ErrConflict("The slug was taken concurrently. Please retry.",
			web.WithErrorCode("slug_conflict"), web.WithRetryable(), web.WithError(err))
	case errors.Is(err, content.ErrCategoryInUse):
		return web.ErrConflict("The category is used by articles.",
			web.WithErrorCode("category_in_use"), web.WithError(err))
	case errors.Is(err, content.ErrForbidden):
		return web.ErrForbidden("Forbidden", web.WithErrorCode("forbidden"), web.WithError(err))
	case errors.Is(err, content.ErrNotFound):
		return web.ErrNotFound("resource not found", web.WithErrorCode("not_found"), web.WithError(err))
	case errors.Is(err, content.ErrUnknownUser):
		return web.ErrUnauthorized("unknown user", web.WithErrorCode("unauthenticated"), web.WithError(err))
	case errors.Is(err, context.DeadlineExceeded):
		return web.ErrServiceUnavailable("request timed out", web.WithErrorCode("timeout"), web.WithRetryable(), web.WithError(err))
	}
	return web.ErrInternal("internal server error", web.WithErrorCode("internal"), web.WithError(err))
}
