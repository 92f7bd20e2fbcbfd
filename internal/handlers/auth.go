package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/web"
)

// UserService resolves the authenticated user.
type UserService interface {
	Me(ctx context.Context, userID uuid.UUID) (content.User, error)
}

// AuthHandler serves the caller's identity. Tokens are issued elsewhere.
type AuthHandler struct {
	users  UserService
	guards Guards
}

func NewAuthHandler(users UserService, guards Guards) *AuthHandler {
	return &AuthHandler{users: users, guards: guards}
}

func (h *AuthHandler) Routes(r web.Router) {
	r.Route("/api/auth", func(r web.Router) {
		r.Use(h.guards.Authenticated...)
		r.GET("/me", h.me)
	})
}

func (h *AuthHandler) me(c web.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	u, err := h.users.Me(c, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
