package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/pkg/db"
)

const categoryColumns = `id, name, slug, created_at, updated_at`

const (
	categorySlugExistsQuery = `
SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`

	categoryInsertQuery = `
INSERT INTO categories (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	categoryUpdateQuery = `
UPDATE categories SET name = $2, slug = $3, updated_at = $4 WHERE id = $1`

	categoryGetQuery  = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	categoryListQuery = `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at, id`

	categoryDeleteQuery = `DELETE FROM categories WHERE id = $1`

	categoryUpsertBySlugQuery = `
INSERT INTO categories (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
RETURNING ` + categoryColumns
)

// CategoryRepository implements content.CategoryRepository.
type CategoryRepository struct {
	db db.Querier
}

var _ content.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) SlugExists(ctx context.Context, s string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, categorySlugExistsQuery, s, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("category slug exists: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c content.Category) error {
	if _, err := r.db.Exec(ctx, categoryInsertQuery, c.ID, c.Name, c.Slug, c.CreatedAt, c.UpdatedAt); err != nil {
		return writeErr("create category", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c content.Category) error {
	tag, err := r.db.Exec(ctx, categoryUpdateQuery, c.ID, c.Name, c.Slug, c.UpdatedAt)
	if err != nil {
		return writeErr("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Get(ctx context.Context, id uuid.UUID) (content.Category, error) {
	var c content.Category
	if err := r.db.QueryRow(ctx, categoryGetQuery, id).Scan(categoryFields(&c)...); err != nil {
		return content.Category{}, readErr("get category", err)
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]content.Category, error) {
	rows, err := r.db.Query(ctx, categoryListQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Category, error) {
		var c content.Category
		err := row.Scan(categoryFields(&c)...)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

// Delete relies on the RESTRICT foreign key from articles, which also
// covers soft-deleted rows.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, categoryDeleteQuery, id)
	switch {
	case db.IsForeignKeyViolation(err, articlesCategoryFK):
		return content.ErrCategoryInUse
	case err != nil:
		return fmt.Errorf("delete category: %w", err)
	case tag.RowsAffected() == 0:
		return content.ErrNotFound
	}
	return nil
}

// UpsertBySlug renames the category stored under c.Slug, or creates it.
func (r *CategoryRepository) UpsertBySlug(ctx context.Context, c content.Category) (content.Category, error) {
	var out content.Category
	err := r.db.QueryRow(ctx, categoryUpsertBySlugQuery, c.ID, c.Name, c.Slug, c.CreatedAt, c.UpdatedAt).
		Scan(categoryFields(&out)...)
	if err != nil {
		return content.Category{}, writeErr("upsert category", err)
	}
	return out, nil
}

func categoryFields(c *content.Category) []any {
	return []any{&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt}
}
