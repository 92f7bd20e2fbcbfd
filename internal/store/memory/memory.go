// Package memory implements the content repositories in process memory.
// It backs tests and single-instance development runs.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/pkg/slug"
)

// DB holds every table. The repositories share it so cross-table rules
// (category delete restrictions, listing joins) see one consistent state.
type DB struct {
	users         map[uuid.UUID]content.User
	categories    map[uuid.UUID]content.Category
	articles      map[uuid.UUID]content.Article
	articleSlugs  map[string]uuid.UUID
	categorySlugs map[string]uuid.UUID
	mu            sync.RWMutex
}

// New creates an empty DB.
func New() *DB {
	return &DB{
		users:         make(map[uuid.UUID]content.User),
		categories:    make(map[uuid.UUID]content.Category),
		articles:      make(map[uuid.UUID]content.Article),
		articleSlugs:  make(map[string]uuid.UUID),
		categorySlugs: make(map[string]uuid.UUID),
	}
}

func (db *DB) Articles() *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (db *DB) Categories() *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db}
}

func slugTaken(index map[string]uuid.UUID, s string, self uuid.UUID) bool {
	owner, ok := index[s]
	return ok && owner != self
}

func conflict(table, s string) error {
	return fmt.Errorf("%w: %s slug %q already stored", slug.ErrConflict, table, s)
}

func sortByCreated[T any](items []T, key func(T) (time.Time, uuid.UUID)) {
	slices.SortFunc(items, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := at.Compare(bt); c != 0 {
			return c
		}
		return cmp.Compare(aid.String(), bid.String())
	})
}

// ArticleRepository implements content.ArticleRepository.
type ArticleRepository struct {
	db *DB
}

var _ content.ArticleRepository = (*ArticleRepository)(nil)

func (r *ArticleRepository) SlugExists(_ context.Context, s string, exclude *uuid.UUID) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	owner, ok := r.db.articleSlugs[s]
	if !ok {
		return false, nil
	}
	return exclude == nil || owner != *exclude, nil
}

func (r *ArticleRepository) Create(_ context.Context, a content.Article) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if slugTaken(r.db.articleSlugs, a.Slug, a.ID) {
		return conflict("article", a.Slug)
	}
	if _, ok := r.db.categories[a.CategoryID]; !ok {
		return fmt.Errorf("category %s: %w", a.CategoryID, content.ErrNotFound)
	}
	r.db.articles[a.ID] = strip(a)
	r.db.articleSlugs[a.Slug] = a.ID
	return nil
}

func (r *ArticleRepository) Update(_ context.Context, a content.Article) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, ok := r.db.articles[a.ID]
	if !ok || cur.DeletedAt != nil {
		return content.ErrNotFound
	}
	if slugTaken(r.db.articleSlugs, a.Slug, a.ID) {
		return conflict("article", a.Slug)
	}
	if _, ok := r.db.categories[a.CategoryID]; !ok {
		return fmt.Errorf("category %s: %w", a.CategoryID, content.ErrNotFound)
	}

	if cur.Slug != a.Slug {
		delete(r.db.articleSlugs, cur.Slug)
		r.db.articleSlugs[a.Slug] = a.ID
	}
	a.CreatedAt = cur.CreatedAt
	r.db.articles[a.ID] = strip(a)
	return nil
}

func (r *ArticleRepository) Get(_ context.Context, id uuid.UUID) (content.Article, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.articles[id]
	if !ok || a.DeletedAt != nil {
		return content.Article{}, content.ErrNotFound
	}
	return a, nil
}

func (r *ArticleRepository) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.articles[id]
	if !ok || a.DeletedAt != nil {
		return content.ErrNotFound
	}
	a.DeletedAt = &at
	r.db.articles[id] = a
	return nil
}

func (r *ArticleRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]content.Article, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.collect(func(a content.Article) bool {
		return a.UserID == userID
	}, false), nil
}

func (r *ArticleRepository) ListPublished(_ context.Context, f content.PublicFilter) ([]content.Article, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.collect(func(a content.Article) bool {
		if a.Status != content.StatusPublished {
			return false
		}
		if f.UserID != nil && a.UserID != *f.UserID {
			return false
		}
		if f.Category != "" {
			c := r.db.categories[a.CategoryID]
			if c.Slug != f.Category && c.Name != f.Category {
				return false
			}
		}
		return true
	}, true), nil
}

func (r *ArticleRepository) GetPublished(_ context.Context, id uuid.UUID) (content.Article, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.articles[id]
	if !ok || a.DeletedAt != nil || a.Status != content.StatusPublished {
		return content.Article{}, content.ErrNotFound
	}
	return a, nil
}

// UpsertBySlug updates the article stored under a.Slug, or creates it.
// The stored article keeps its ID and creation time.
func (r *ArticleRepository) UpsertBySlug(_ context.Context, a content.Article) (content.Article, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[a.CategoryID]; !ok {
		return content.Article{}, fmt.Errorf("category %s: %w", a.CategoryID, content.ErrNotFound)
	}
	if id, ok := r.db.articleSlugs[a.Slug]; ok {
		cur := r.db.articles[id]
		a.ID, a.CreatedAt, a.DeletedAt = cur.ID, cur.CreatedAt, cur.DeletedAt
	}
	a = strip(a)
	r.db.articles[a.ID] = a
	r.db.articleSlugs[a.Slug] = a.ID
	return a, nil
}

func (r *ArticleRepository) PurgeDeleted(_ context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, a := range r.db.articles {
		if a.DeletedAt != nil && a.DeletedAt.Before(before) {
			delete(r.db.articles, id)
			delete(r.db.articleSlugs, a.Slug)
			n++
		}
	}
	return n, nil
}

// collect returns live articles matching keep, oldest first, with their
// category attached and, when withAuthor is set, their author.
// Callers hold at least the read lock.
func (db *DB) collect(keep func(content.Article) bool, withAuthor bool) []content.Article {
	out := make([]content.Article, 0)
	for _, a := range db.articles {
		if a.DeletedAt != nil || !keep(a) {
			continue
		}
		if c, ok := db.categories[a.CategoryID]; ok {
			a.Category = &c
		}
		if withAuthor {
			if u, ok := db.users[a.UserID]; ok {
				a.Author = &content.Author{ID: u.ID, Name: u.Name}
			}
		}
		out = append(out, a)
	}
	sortByCreated(out, func(a content.Article) (time.Time, uuid.UUID) { return a.CreatedAt, a.ID })
	return out
}

// strip drops the fields that are computed on read.
func strip(a content.Article) content.Article {
	a.Category, a.Author, a.BodyHTML = nil, nil, ""
	return a
}

// CategoryRepository implements content.CategoryRepository.
type CategoryRepository struct {
	db *DB
}

var _ content.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) SlugExists(_ context.Context, s string, exclude *uuid.UUID) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	owner, ok := r.db.categorySlugs[s]
	if !ok {
		return false, nil
	}
	return exclude == nil || owner != *exclude, nil
}

func (r *CategoryRepository) Create(_ context.Context, c content.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if slugTaken(r.db.categorySlugs, c.Slug, c.ID) {
		return conflict("category", c.Slug)
	}
	r.db.categories[c.ID] = c
	r.db.categorySlugs[c.Slug] = c.ID
	return nil
}

func (r *CategoryRepository) Update(_ context.Context, c content.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, ok := r.db.categories[c.ID]
	if !ok {
		return content.ErrNotFound
	}
	if slugTaken(r.db.categorySlugs, c.Slug, c.ID) {
		return conflict("category", c.Slug)
	}
	if cur.Slug != c.Slug {
		delete(r.db.categorySlugs, cur.Slug)
		r.db.categorySlugs[c.Slug] = c.ID
	}
	c.CreatedAt = cur.CreatedAt
	r.db.categories[c.ID] = c
	return nil
}

func (r *CategoryRepository) Get(_ context.Context, id uuid.UUID) (content.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.categories[id]
	if !ok {
		return content.Category{}, content.ErrNotFound
	}
	return c, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]content.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]content.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	sortByCreated(out, func(c content.Category) (time.Time, uuid.UUID) { return c.CreatedAt, c.ID })
	return out, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.categories[id]
	if !ok {
		return content.ErrNotFound
	}
	for _, a := range r.db.articles {
		if a.CategoryID == id {
			return content.ErrCategoryInUse
		}
	}
	delete(r.db.categories, id)
	delete(r.db.categorySlugs, c.Slug)
	return nil
}

// UpsertBySlug renames the category stored under c.Slug, or creates it.
func (r *CategoryRepository) UpsertBySlug(_ context.Context, c content.Category) (content.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if id, ok := r.db.categorySlugs[c.Slug]; ok {
		cur := r.db.categories[id]
		c.ID, c.CreatedAt = cur.ID, cur.CreatedAt
	}
	r.db.categories[c.ID] = c
	r.db.categorySlugs[c.Slug] = c.ID
	return c, nil
}

// UserRepository implements content.UserRepository.
type UserRepository struct {
	db *DB
}

var _ content.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Get(_ context.Context, id uuid.UUID) (content.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return content.User{}, content.ErrNotFound
	}
	return u, nil
}

// UpsertByEmail updates the name of the user with u.Email, or creates u.
// Emails match case-insensitively.
func (r *UserRepository) UpsertByEmail(_ context.Context, u content.User) (content.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, cur := range r.db.users {
		if strings.EqualFold(cur.Email, u.Email) {
			cur.Name = u.Name
			r.db.users[cur.ID] = cur
			return cur, nil
		}
	}
	r.db.users[u.ID] = u
	return u, nil
}
