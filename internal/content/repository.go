package content

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ArticleRepository persists articles. Soft-deleted articles are invisible
// to every read except SlugExists, and their slugs stay reserved.
//
// Create, Update and UpsertBySlug report a slug already stored by another
// article as slug.ErrConflict. Get, Update and SoftDelete report a missing
// article as ErrNotFound.
type ArticleRepository interface {
	SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error)
	Create(ctx context.Context, a Article) error
	Update(ctx context.Context, a Article) error
	Get(ctx context.Context, id uuid.UUID) (Article, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Article, error)
	ListPublished(ctx context.Context, f PublicFilter) ([]Article, error)
	GetPublished(ctx context.Context, id uuid.UUID) (Article, error)
	UpsertBySlug(ctx context.Context, a Article) (Article, error)
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

// CategoryRepository persists categories. Delete reports ErrCategoryInUse
// while any article, soft-deleted ones included, references the category.
type CategoryRepository interface {
	SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error)
	Create(ctx context.Context, c Category) error
	Update(ctx context.Context, c Category) error
	Get(ctx context.Context, id uuid.UUID) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertBySlug(ctx context.Context, c Category) (Category, error)
}

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (User, error)
	UpsertByEmail(ctx context.Context, u User) (User, error)
}
