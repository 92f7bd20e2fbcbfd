package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/web"
)

// ArticleService is the article side of content.Service.
type ArticleService interface {
	MyArticles(ctx context.Context, userID uuid.UUID) ([]content.Article, error)
	CreateArticle(ctx context.Context, userID uuid.UUID, in content.CreateArticleInput) (content.Article, error)
	GetArticle(ctx context.Context, userID, articleID uuid.UUID) (content.Article, error)
	UpdateArticle(ctx context.Context, userID, articleID uuid.UUID, in content.UpdateArticleInput) (content.Article, error)
	DeleteArticle(ctx context.Context, userID, articleID uuid.UUID) error
	PublishedArticles(ctx context.Context, f content.PublicFilter) ([]content.Article, error)
	PublishedArticle(ctx context.Context, articleID uuid.UUID) (content.Article, error)
}

var _ ArticleService = (*content.Service)(nil)

// ArticleHandler serves the owner endpoints and the public read-only
// endpoints for articles.
type ArticleHandler struct {
	articles ArticleService
	guards   Guards
}

func NewArticleHandler(articles ArticleService, guards Guards) *ArticleHandler {
	return &ArticleHandler{articles: articles, guards: guards}
}

func (h *ArticleHandler) Routes(r web.Router) {
	r.Route("/api/articles", func(r web.Router) {
		r.Group(func(r web.Router) {
			r.Use(h.guards.Public...)
			r.GET("/", h.listPublished)
			r.GET("/public/{id}", h.showPublished)
		})

		r.Group(func(r web.Router) {
			r.Use(h.guards.Authenticated...)
			r.GET("/mine", h.mine)
			r.POST("/", h.create)
			r.GET("/{id}", h.show)
			r.PUT("/{id}", h.update)
			r.DELETE("/{id}", h.delete)
		})
	})
}

func (h *ArticleHandler) mine(c web.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	list, err := h.articles.MyArticles(c, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ArticleHandler) create(c web.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var in content.CreateArticleInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	a, err := h.articles.CreateArticle(c, userID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ArticleHandler) show(c web.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	articleID, err := web.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.articles.GetArticle(c, userID, articleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHandler) update(c web.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	articleID, err := web.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var in content.UpdateArticleInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	a, err := h.articles.UpdateArticle(c, userID, articleID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHandler) delete(c web.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	articleID, err := web.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.articles.DeleteArticle(c, userID, articleID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Article soft deleted"})
}

// listPublished filters by ?category= (slug or name) and ?user_id=.
// A user_id that is not a valid ID matches nothing.
func (h *ArticleHandler) listPublished(c web.Context) error {
	f := content.PublicFilter{Category: c.Query("category")}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusOK, []content.Article{})
		}
		f.UserID = &userID
	}

	list, err := h.articles.PublishedArticles(c, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ArticleHandler) showPublished(c web.Context) error {
	articleID, err := web.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.articles.PublishedArticle(c, articleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
