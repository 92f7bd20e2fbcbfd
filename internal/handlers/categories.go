package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/web"
)

// CategoryService is the category side of content.Service.
type CategoryService interface {
	Categories(ctx context.Context) ([]content.Category, error)
	CreateCategory(ctx context.Context, in content.CategoryInput) (content.Category, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, in content.CategoryInput) (content.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
}

var _ CategoryService = (*content.Service)(nil)

// CategoryHandler serves category management. Every route requires
// authentication.
type CategoryHandler struct {
	categories CategoryService
	guards     Guards
}

func NewCategoryHandler(categories CategoryService, guards Guards) *CategoryHandler {
	return &CategoryHandler{categories: categories, guards: guards}
}

func (h *CategoryHandler) Routes(r web.Router) {
	r.Route("/api/categories", func(r web.Router) {
		r.Use(h.guards.Authenticated...)
		r.GET("/", h.list)
		r.POST("/", h.create)
		r.PUT("/{id}", h.update)
		r.DELETE("/{id}", h.delete)
	})
}

func (h *CategoryHandler) list(c web.Context) error {
	list, err := h.categories.Categories(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CategoryHandler) create(c web.Context) error {
	var in content.CategoryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	cat, err := h.categories.CreateCategory(c, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) update(c web.Context) error {
	categoryID, err := web.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var in content.CategoryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	cat, err := h.categories.UpdateCategory(c, categoryID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) delete(c web.Context) error {
	categoryID, err := web.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.categories.DeleteCategory(c, categoryID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Category deleted"})
}
