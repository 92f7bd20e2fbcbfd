package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/pkg/db"
)

const articleColumns = `a.id, a.user_id, a.category_id, a.title, a.slug, a.body, a.status, a.created_at, a.updated_at, a.deleted_at`

const (
	articleSlugExistsQuery = `
SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`

	articleInsertQuery = `
INSERT INTO articles (id, user_id, category_id, title, slug, body, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	articleUpdateQuery = `
UPDATE articles
SET category_id = $2, title = $3, slug = $4, body = $5, status = $6, updated_at = $7
WHERE id = $1 AND deleted_at IS NULL`

	articleGetQuery = `
SELECT ` + articleColumns + ` FROM articles a WHERE a.id = $1 AND a.deleted_at IS NULL`

	articleGetPublishedQuery = articleGetQuery + ` AND a.status = 'published'`

	articleSoftDeleteQuery = `
UPDATE articles SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	articleListByUserQuery = `
SELECT ` + articleColumns + `, c.id, c.name, c.slug, c.created_at, c.updated_at
FROM articles a
JOIN categories c ON c.id = a.category_id
WHERE a.user_id = $1 AND a.deleted_at IS NULL
ORDER BY a.created_at, a.id`

	articleListPublishedQuery = `
SELECT ` + articleColumns + `, c.id, c.name, c.slug, c.created_at, c.updated_at, u.id, u.name
FROM articles a
JOIN categories c ON c.id = a.category_id
JOIN users u ON u.id = a.user_id
WHERE a.deleted_at IS NULL
  AND a.status = 'published'
  AND ($1::text = '' OR c.slug = $1 OR c.name = $1)
  AND ($2::uuid IS NULL OR a.user_id = $2)
ORDER BY a.created_at, a.id`

	articleUpsertBySlugQuery = `
INSERT INTO articles AS a (id, user_id, category_id, title, slug, body, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (slug) DO UPDATE SET
    user_id     = EXCLUDED.user_id,
    category_id = EXCLUDED.category_id,
    title       = EXCLUDED.title,
    body        = EXCLUDED.body,
    status      = EXCLUDED.status,
    updated_at  = EXCLUDED.updated_at
RETURNING ` + articleColumns

	articlePurgeQuery = `
DELETE FROM articles WHERE deleted_at IS NOT NULL AND deleted_at < $1`
)

// ArticleRepository implements content.ArticleRepository.
type ArticleRepository struct {
	db db.Querier
}

var _ content.ArticleRepository = (*ArticleRepository)(nil)

func (r *ArticleRepository) SlugExists(ctx context.Context, s string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, articleSlugExistsQuery, s, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("article slug exists: %w", err)
	}
	return exists, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a content.Article) error {
	_, err := r.db.Exec(ctx, articleInsertQuery,
		a.ID, a.UserID, a.CategoryID, a.Title, a.Slug, a.Body, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return writeErr("create article", err)
	}
	return nil
}

func (r *ArticleRepository) Update(ctx context.Context, a content.Article) error {
	tag, err := r.db.Exec(ctx, articleUpdateQuery,
		a.ID, a.CategoryID, a.Title, a.Slug, a.Body, a.Status, a.UpdatedAt)
	if err != nil {
		return writeErr("update article", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *ArticleRepository) Get(ctx context.Context, id uuid.UUID) (content.Article, error) {
	a, err := scanArticle(r.db.QueryRow(ctx, articleGetQuery, id))
	if err != nil {
		return content.Article{}, readErr("get article", err)
	}
	return a, nil
}

func (r *ArticleRepository) GetPublished(ctx context.Context, id uuid.UUID) (content.Article, error) {
	a, err := scanArticle(r.db.QueryRow(ctx, articleGetPublishedQuery, id))
	if err != nil {
		return content.Article{}, readErr("get published article", err)
	}
	return a, nil
}

func (r *ArticleRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, articleSoftDeleteQuery, id, at)
	if err != nil {
		return fmt.Errorf("soft delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *ArticleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]content.Article, error) {
	rows, err := r.db.Query(ctx, articleListByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list user articles: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Article, error) {
		var a content.Article
		var c content.Category
		err := row.Scan(append(articleFields(&a), categoryFields(&c)...)...)
		a.Category = &c
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("list user articles: %w", err)
	}
	return list, nil
}

func (r *ArticleRepository) ListPublished(ctx context.Context, f content.PublicFilter) ([]content.Article, error) {
	rows, err := r.db.Query(ctx, articleListPublishedQuery, f.Category, f.UserID)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Article, error) {
		var a content.Article
		var c content.Category
		var u content.Author
		fields := append(articleFields(&a), categoryFields(&c)...)
		err := row.Scan(append(fields, &u.ID, &u.Name)...)
		a.Category, a.Author = &c, &u
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	return list, nil
}

// UpsertBySlug updates the article stored under a.Slug, or creates it.
// The stored article keeps its ID and creation time.
func (r *ArticleRepository) UpsertBySlug(ctx context.Context, a content.Article) (content.Article, error) {
	out, err := scanArticle(r.db.QueryRow(ctx, articleUpsertBySlugQuery,
		a.ID, a.UserID, a.CategoryID, a.Title, a.Slug, a.Body, a.Status, a.CreatedAt, a.UpdatedAt))
	if err != nil {
		return content.Article{}, writeErr("upsert article", err)
	}
	return out, nil
}

func (r *ArticleRepository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, articlePurgeQuery, before)
	if err != nil {
		return 0, fmt.Errorf("purge deleted articles: %w", err)
	}
	return tag.RowsAffected(), nil
}

func articleFields(a *content.Article) []any {
	return []any{
		&a.ID, &a.UserID, &a.CategoryID, &a.Title, &a.Slug, &a.Body, &a.Status,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	}
}

func scanArticle(row pgx.Row) (content.Article, error) {
	var a content.Article
	err := row.Scan(articleFields(&a)...)
	return a, err
}
