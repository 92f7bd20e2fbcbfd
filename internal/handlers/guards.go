package handlers

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/middlewares"
)

// Guards are the middleware chains wrapped around route groups.
type Guards struct {
	// Authenticated must include a middleware that stores the caller's
	// claims, such as middlewares.Auth.
	Authenticated []web.Middleware
	Public        []web.Middleware
}

// currentUserID returns the authenticated caller.
func currentUserID(c web.Context) (uuid.UUID, error) {
	raw := middlewares.UserID(c)
	if raw == "" {
		return uuid.Nil, web.ErrUnauthorized("missing authentication token", web.WithErrorCode("unauthenticated"))
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, web.ErrUnauthorized("invalid token", web.WithErrorCode("invalid_token"), web.WithError(err))
	}
	return userID, nil
}

type message struct {
	Message string `json:"message"`
}
