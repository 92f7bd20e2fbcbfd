// Package postgres implements the content repositories on PostgreSQL
// through pgx. The schema lives in the migrations subpackage.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/store/postgres/migrations"
	"github.com/dmitrymomot/inkwell/pkg/db"
	"github.com/dmitrymomot/inkwell/pkg/slug"
)

// Constraint names the repositories translate into domain errors.
const (
	articlesSlugKey        = "articles_slug_key"
	articlesCategoryFK     = "articles_category_id_fkey"
	categoriesSlugKey      = "categories_slug_key"
	defaultMigrationsTable = "schema_migrations"
)

// Store groups the repositories over one connection pool or transaction.
type Store struct {
	db db.Querier
}

// New creates a Store on q, typically a *pgxpool.Pool.
func New(q db.Querier) *Store {
	return &Store{db: q}
}

func (s *Store) Articles() *ArticleRepository {
	return &ArticleRepository{db: s.db}
}

func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{db: s.db}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

// Migrate applies the content schema. An empty table name selects
// "schema_migrations".
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	if table == "" {
		table = defaultMigrationsTable
	}
	return db.Migrate(ctx, pool, migrations.FS, table, log)
}

// writeErr maps constraint violations of article and category writes.
func writeErr(op string, err error) error {
	switch {
	case db.IsUniqueViolation(err, articlesSlugKey), db.IsUniqueViolation(err, categoriesSlugKey):
		return fmt.Errorf("%w: %s: %w", slug.ErrConflict, op, err)
	case db.IsForeignKeyViolation(err, articlesCategoryFK):
		return fmt.Errorf("%s: category: %w", op, content.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func readErr(op string, err error) error {
	if db.IsNoRows(err) {
		return content.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
