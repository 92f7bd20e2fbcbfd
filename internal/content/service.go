package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/pkg/cache"
	"github.com/dmitrymomot/inkwell/pkg/id"
	"github.com/dmitrymomot/inkwell/pkg/logger"
	"github.com/dmitrymomot/inkwell/pkg/markdown"
	"github.com/dmitrymomot/inkwell/pkg/slug"
)

const (
	categoryListKey     = "categories:all"
	defaultCategoryTTL  = 5 * time.Minute
	defaultWriteRetries = 3
	maxSlugBaseLength   = 200
)

// BodyRenderer turns an article body into safe HTML.
type BodyRenderer interface {
	HTML(src string) (string, error)
}

var _ BodyRenderer = (*markdown.Renderer)(nil)

// Option configures a Service.
type Option func(*Service)

// WithCategoryCache caches the category listing in c for ttl.
// Without it every listing hits the repository.
func WithCategoryCache(c cache.Cache[[]Category], ttl time.Duration) Option {
	return func(s *Service) {
		if c == nil {
			return
		}
		if ttl <= 0 {
			ttl = defaultCategoryTTL
		}
		s.categoryList = cache.NewEntry(c, categoryListKey, ttl)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRenderer replaces the Markdown renderer used for public articles.
func WithRenderer(r BodyRenderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithWriteAttempts sets how many times a write losing a slug race is
// retried with a fresh slug. Default: 3.
func WithWriteAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.writeAttempts = n
		}
	}
}

// Service is the entry point for article and category management.
type Service struct {
	articles      ArticleRepository
	categories    CategoryRepository
	users         UserRepository
	articleSlugs  *slug.Assigner[uuid.UUID]
	categorySlugs *slug.Assigner[uuid.UUID]
	categoryList  *cache.Entry[[]Category]
	renderer      BodyRenderer
	log           *slog.Logger
	now           func() time.Time
	writeAttempts int
}

// NewService wires the repositories into a Service.
func NewService(articles ArticleRepository, categories CategoryRepository, users UserRepository, opts ...Option) *Service {
	s := &Service{
		articles:      articles,
		categories:    categories,
		users:         users,
		renderer:      markdown.New(),
		log:           logger.Discard(),
		now:           time.Now,
		writeAttempts: defaultWriteRetries,
	}
	for _, opt := range opts {
		opt(s)
	}

	makeOpts := slug.WithMakeOptions(slug.MaxLength(maxSlugBaseLength))
	s.articleSlugs = slug.NewAssigner(articles.SlugExists, makeOpts)
	s.categorySlugs = slug.NewAssigner(categories.SlugExists, makeOpts)
	return s
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (User, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrUnknownUser
	}
	return u, err
}

// MyArticles lists the caller's articles, drafts included, with their
// categories.
func (s *Service) MyArticles(ctx context.Context, userID uuid.UUID) ([]Article, error) {
	return s.articles.ListByUser(ctx, userID)
}

// CreateArticle validates in and stores a new article owned by userID
// under a freshly assigned slug.
func (s *Service) CreateArticle(ctx context.Context, userID uuid.UUID, in CreateArticleInput) (Article, error) {
	var v ValidationError
	title := checkText(&v, "title", "title", in.Title)
	checkBody(&v, in.Body)
	checkStatus(&v, in.Status)
	categoryID, ok := parseCategoryID(&v, in.CategoryID)
	if ok {
		if err := s.checkCategoryExists(ctx, &v, categoryID); err != nil {
			return Article{}, err
		}
	}
	if err := v.err(); err != nil {
		return Article{}, err
	}

	if _, err := s.Me(ctx, userID); err != nil {
		return Article{}, err
	}

	now := s.now().UTC()
	a := Article{
		ID:         id.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		Body:       in.Body,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.writeWithSlug(ctx, s.articleSlugs, title, nil, func(sl string) error {
		a.Slug = sl
		return s.articles.Create(ctx, a)
	})
	if err != nil {
		return Article{}, err
	}

	s.log.InfoContext(ctx, "article created", slog.String("article_id", a.ID.String()), slog.String("slug", a.Slug))
	return a, nil
}

// GetArticle returns one of the caller's articles.
func (s *Service) GetArticle(ctx context.Context, userID, articleID uuid.UUID) (Article, error) {
	a, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return Article{}, err
	}
	if a.UserID != userID {
		return Article{}, ErrForbidden
	}
	return a, nil
}

// UpdateArticle applies the fields present in in. A new title re-derives
// the slug, excluding the article itself from the uniqueness check.
func (s *Service) UpdateArticle(ctx context.Context, userID, articleID uuid.UUID, in UpdateArticleInput) (Article, error) {
	a, err := s.GetArticle(ctx, userID, articleID)
	if err != nil {
		return Article{}, err
	}

	var v ValidationError
	var title string
	if in.Title != nil {
		title = checkText(&v, "title", "title", *in.Title)
	}
	if in.Body != nil {
		checkBody(&v, *in.Body)
	}
	if in.Status != nil {
		checkStatus(&v, *in.Status)
	}
	var categoryID uuid.UUID
	if in.CategoryID != nil {
		var ok bool
		if categoryID, ok = parseCategoryID(&v, *in.CategoryID); ok {
			if err := s.checkCategoryExists(ctx, &v, categoryID); err != nil {
				return Article{}, err
			}
		}
	}
	if err := v.err(); err != nil {
		return Article{}, err
	}

	if in.Body != nil {
		a.Body = *in.Body
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.CategoryID != nil {
		a.CategoryID = categoryID
	}
	a.UpdatedAt = s.now().UTC()

	if in.Title == nil {
		if err := s.articles.Update(ctx, a); err != nil {
			return Article{}, err
		}
		return a, nil
	}

	a.Title = title
	err = s.writeWithSlug(ctx, s.articleSlugs, title, &a.ID, func(sl string) error {
		a.Slug = sl
		return s.articles.Update(ctx, a)
	})
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// DeleteArticle soft-deletes one of the caller's articles.
func (s *Service) DeleteArticle(ctx context.Context, userID, articleID uuid.UUID) error {
	if _, err := s.GetArticle(ctx, userID, articleID); err != nil {
		return err
	}
	if err := s.articles.SoftDelete(ctx, articleID, s.now().UTC()); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "article soft deleted", slog.String("article_id", articleID.String()))
	return nil
}

// PublishedArticles lists published articles with category and author.
func (s *Service) PublishedArticles(ctx context.Context, f PublicFilter) ([]Article, error) {
	return s.articles.ListPublished(ctx, f)
}

// PublishedArticle returns a published article with its body rendered.
func (s *Service) PublishedArticle(ctx context.Context, articleID uuid.UUID) (Article, error) {
	a, err := s.articles.GetPublished(ctx, articleID)
	if err != nil {
		return Article{}, err
	}
	html, err := s.renderer.HTML(a.Body)
	if err != nil {
		return Article{}, fmt.Errorf("rendering article %s: %w", a.ID, err)
	}
	a.BodyHTML = html
	return a, nil
}

// PurgeDeletedArticles removes articles soft-deleted before the cutoff.
func (s *Service) PurgeDeletedArticles(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.articles.PurgeDeleted(ctx, s.now().UTC().Add(-olderThan))
}

// Categories lists all categories, served from the cache when configured.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if s.categoryList == nil {
		return s.categories.List(ctx)
	}
	return s.categoryList.Get(ctx, s.categories.List)
}

// CreateCategory stores a new category under a freshly assigned slug.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	var v ValidationError
	name := checkText(&v, "name", "name", in.Name)
	if err := v.err(); err != nil {
		return Category{}, err
	}

	now := s.now().UTC()
	c := Category{ID: id.New(), Name: name, CreatedAt: now, UpdatedAt: now}
	err := s.writeWithSlug(ctx, s.categorySlugs, name, nil, func(sl string) error {
		c.Slug = sl
		return s.categories.Create(ctx, c)
	})
	if err != nil {
		return Category{}, err
	}

	s.invalidateCategories(ctx)
	return c, nil
}

// UpdateCategory renames a category and re-derives its slug.
func (s *Service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, in CategoryInput) (Category, error) {
	c, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return Category{}, err
	}

	var v ValidationError
	name := checkText(&v, "name", "name", in.Name)
	if err := v.err(); err != nil {
		return Category{}, err
	}

	c.Name = name
	c.UpdatedAt = s.now().UTC()
	err = s.writeWithSlug(ctx, s.categorySlugs, name, &c.ID, func(sl string) error {
		c.Slug = sl
		return s.categories.Update(ctx, c)
	})
	if err != nil {
		return Category{}, err
	}

	s.invalidateCategories(ctx)
	return c, nil
}

// DeleteCategory removes a category no article references.
func (s *Service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

// checkCategoryExists records a validation failure for an unknown
// category. Only storage failures are returned.
func (s *Service) checkCategoryExists(ctx context.Context, v *ValidationError, categoryID uuid.UUID) error {
	_, err := s.categories.Get(ctx, categoryID)
	if errors.Is(err, ErrNotFound) {
		v.add("category_id", invalidCategoryMessage)
		return nil
	}
	return err
}

func (s *Service) invalidateCategories(ctx context.Context) {
	if s.categoryList == nil {
		return
	}
	if err := s.categoryList.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "category cache invalidation failed", slog.Any("error", err))
	}
}

// writeWithSlug assigns a slug for source and runs write with it. When
// the write loses a race for the slug it is retried with a fresh one, up
// to the configured number of attempts.
func (s *Service) writeWithSlug(ctx context.Context, a *slug.Assigner[uuid.UUID], source string, exclude *uuid.UUID, write func(slug string) error) error {
	var lastErr error
	for attempt := range s.writeAttempts {
		sl, err := a.Assign(ctx, source, exclude)
		if err == nil {
			err = write(sl)
		}
		if err == nil || !errors.Is(err, slug.ErrConflict) {
			return err
		}

		lastErr = err
		s.log.DebugContext(ctx, "slug taken, retrying",
			slog.String("source", source),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}
	return lastErr
}
