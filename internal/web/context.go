package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps the JSON request body read by Bind.
const maxBodyBytes = 1 << 20

// Context is the per-request handle passed to handlers and middleware.
// It satisfies context.Context by delegating to the request's context, so
// it can be handed straight to services and stores.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// SetContext replaces the request's context for the rest of the chain.
	SetContext(ctx context.Context)

	// Param returns a URL path parameter.
	Param(name string) string

	// Query returns the first value of a query parameter.
	Query(name string) string

	Header(name string) string
	SetHeader(name, value string)

	// Bind decodes a JSON request body into v.
	// Malformed bodies are reported as a 400 HTTPError.
	Bind(v any) error

	JSON(code int, v any) error
	NoContent(code int) error

	// Written reports whether the response has been started.
	Written() bool

	// Set stores a request-scoped value visible to later handlers.
	Set(key, value any)
	Get(key any) any

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	logger   *slog.Logger
}

var _ Context = (*requestContext)(nil)

// newContext reuses the response wrapper installed by an outer middleware
// so status tracking is shared along the chain.
func (a *App) newContext(w http.ResponseWriter, r *http.Request) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{
		request:  r,
		response: rw,
		logger:   a.logger,
	}
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Bind(v any) error {
	body := http.MaxBytesReader(c.response, c.request.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrBadRequest("request body is empty", WithErrorCode("invalid_body"), WithError(err))
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewHTTPError(http.StatusRequestEntityTooLarge, "request body is too large", WithErrorCode("body_too_large"))
		}
		return ErrBadRequest("request body is not valid JSON", WithErrorCode("invalid_body"), WithError(err))
	}
	return nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}
