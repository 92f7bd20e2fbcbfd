package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/store/memory"
	"github.com/dmitrymomot/inkwell/pkg/id"
	"github.com/dmitrymomot/inkwell/pkg/slug"
)

func seed(t *testing.T) (*memory.DB, content.User, content.Category) {
	t.Helper()
	ctx := context.Background()
	db := memory.New()

	u, err := db.Users().UpsertByEmail(ctx, content.User{ID: id.New(), Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	c := content.Category{ID: id.New(), Name: "Tech", Slug: "tech", CreatedAt: time.Now()}
	require.NoError(t, db.Categories().Create(ctx, c))
	return db, u, c
}

func newArticle(u content.User, c content.Category, s string) content.Article {
	now := time.Now().UTC()
	return content.Article{
		ID: id.New(), UserID: u.ID, CategoryID: c.ID,
		Title: s, Slug: s, Body: "b", Status: content.StatusPublished,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestArticleSlugConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, c := seed(t)
	repo := db.Articles()

	a := newArticle(u, c, "taken")
	require.NoError(t, repo.Create(ctx, a))

	err := repo.Create(ctx, newArticle(u, c, "taken"))
	require.ErrorIs(t, err, slug.ErrConflict)

	b := newArticle(u, c, "other")
	require.NoError(t, repo.Create(ctx, b))
	b.Slug = "taken"
	require.ErrorIs(t, repo.Update(ctx, b), slug.ErrConflict)

	exists, err := repo.SlugExists(ctx, "taken", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(ctx, "taken", &a.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestArticleUpdateMovesSlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, c := seed(t)
	repo := db.Articles()

	a := newArticle(u, c, "before")
	require.NoError(t, repo.Create(ctx, a))

	a.Slug = "after"
	a.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Slug)
	assert.False(t, got.CreatedAt.IsZero())

	exists, err := repo.SlugExists(ctx, "before", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestArticleUnknownCategory(t *testing.T) {
	t.Parallel()
	db, u, _ := seed(t)

	a := newArticle(u, content.Category{ID: id.New()}, "orphan")
	require.ErrorIs(t, db.Articles().Create(context.Background(), a), content.ErrNotFound)
}

func TestArticleSoftDeleteKeepsSlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, c := seed(t)
	repo := db.Articles()

	a := newArticle(u, c, "ghost")
	require.NoError(t, repo.Create(ctx, a))
	at := time.Now().UTC()
	require.NoError(t, repo.SoftDelete(ctx, a.ID, at))

	_, err := repo.Get(ctx, a.ID)
	require.ErrorIs(t, err, content.ErrNotFound)
	_, err = repo.GetPublished(ctx, a.ID)
	require.ErrorIs(t, err, content.ErrNotFound)

	list, err := repo.ListPublished(ctx, content.PublicFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.ErrorIs(t, repo.Create(ctx, newArticle(u, c, "ghost")), slug.ErrConflict)

	n, err := repo.PurgeDeleted(ctx, at.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, repo.Create(ctx, newArticle(u, c, "ghost")))
}

func TestArticleUpsertBySlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, c := seed(t)
	repo := db.Articles()

	first, err := repo.UpsertBySlug(ctx, newArticle(u, c, "seeded"))
	require.NoError(t, err)

	again := newArticle(u, c, "seeded")
	again.Title = "Renamed"
	second, err := repo.UpsertBySlug(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestListingAttachesRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, c := seed(t)
	repo := db.Articles()

	require.NoError(t, repo.Create(ctx, newArticle(u, c, "one")))

	mine, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Category)
	assert.Equal(t, "tech", mine[0].Category.Slug)
	assert.Nil(t, mine[0].Author)

	public, err := repo.ListPublished(ctx, content.PublicFilter{Category: "Tech"})
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.NotNil(t, public[0].Author)
	assert.Equal(t, u.ID, public[0].Author.ID)
}

func TestCategoryDeleteRestricted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, c := seed(t)

	require.NoError(t, db.Articles().Create(ctx, newArticle(u, c, "pin")))
	require.ErrorIs(t, db.Categories().Delete(ctx, c.ID), content.ErrCategoryInUse)

	empty := content.Category{ID: id.New(), Name: "Empty", Slug: "empty"}
	require.NoError(t, db.Categories().Create(ctx, empty))
	require.NoError(t, db.Categories().Delete(ctx, empty.ID))

	exists, err := db.Categories().SlugExists(ctx, "empty", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategoryUpsertBySlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, _, c := seed(t)

	got, err := db.Categories().UpsertBySlug(ctx, content.Category{ID: id.New(), Name: "Technology", Slug: "tech"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	list, err := db.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Technology", list[0].Name)
}

func TestUserUpsertByEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, u, _ := seed(t)

	got, err := db.Users().UpsertByEmail(ctx, content.User{ID: id.New(), Name: "Ada L.", Email: "ADA@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ada L.", got.Name)

	_, err = db.Users().Get(ctx, id.New())
	require.ErrorIs(t, err, content.ErrNotFound)
}
