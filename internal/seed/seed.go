// Package seed loads development fixtures. Every record is matched on a
// natural key (email or slug) and updated in place, so seeding twice
// leaves the same rows.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/pkg/id"
	"github.com/dmitrymomot/inkwell/pkg/slug"
)

//go:embed seed.yaml
var defaultData []byte

var (
	ErrDecode          = errors.New("seed: failed to decode data")
	ErrInvalidData     = errors.New("seed: invalid data")
	ErrUnknownCategory = errors.New("seed: article references an unknown category")
)

type Data struct {
	User       UserData       `yaml:"user"`
	Categories []CategoryData `yaml:"categories"`
	Articles   []ArticleData  `yaml:"articles"`
}

type UserData struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type CategoryData struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type ArticleData struct {
	Title    string         `yaml:"title"`
	Slug     string         `yaml:"slug"`
	Body     string         `yaml:"body"`
	Status   content.Status `yaml:"status"`
	Category string         `yaml:"category"`
}

// Default returns the bundled fixtures.
func Default() (Data, error) {
	return Decode(bytes.NewReader(defaultData))
}

// Decode reads and validates YAML fixtures.
func Decode(r io.Reader) (Data, error) {
	var d Data
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Data{}, errors.Join(ErrDecode, err)
	}
	return d, d.validate()
}

func (d Data) validate() error {
	var errs []error
	if d.User.Email == "" {
		errs = append(errs, errors.New("user email is required"))
	}
	for i, c := range d.Categories {
		if c.Name == "" || c.Slug == "" || slug.Make(c.Slug) != c.Slug {
			errs = append(errs, fmt.Errorf("category %d: name and a normalized slug are required", i))
		}
	}
	for i, a := range d.Articles {
		if a.Title == "" || a.Slug == "" || slug.Make(a.Slug) != a.Slug {
			errs = append(errs, fmt.Errorf("article %d: title and a normalized slug are required", i))
		}
		if !a.Status.Valid() {
			errs = append(errs, fmt.Errorf("article %q: unknown status %q", a.Slug, a.Status))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidData}, errs...)...)
	}
	return nil
}

// Repositories are the stores written by Run.
type Repositories struct {
	Users      content.UserRepository
	Categories content.CategoryRepository
	Articles   content.ArticleRepository
}

// Result is what Run stored.
type Result struct {
	User       content.User
	Categories []content.Category
	Articles   []content.Article
}

// Run upserts the user, then the categories by slug, then the articles
// by slug, all owned by the seeded user.
func Run(ctx context.Context, repos Repositories, d Data) (Result, error) {
	now := time.Now().UTC()

	user, err := repos.Users.UpsertByEmail(ctx, content.User{
		ID: id.New(), Name: d.User.Name, Email: d.User.Email, CreatedAt: now,
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed user: %w", err)
	}
	res := Result{User: user}

	bySlug := make(map[string]content.Category, len(d.Categories))
	for _, c := range d.Categories {
		stored, err := repos.Categories.UpsertBySlug(ctx, content.Category{
			ID: id.New(), Name: c.Name, Slug: c.Slug, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			return Result{}, fmt.Errorf("seed category %q: %w", c.Slug, err)
		}
		bySlug[stored.Slug] = stored
		res.Categories = append(res.Categories, stored)
	}

	for _, a := range d.Articles {
		cat, ok := bySlug[a.Category]
		if !ok {
			return Result{}, fmt.Errorf("%w: %q in article %q", ErrUnknownCategory, a.Category, a.Slug)
		}
		stored, err := repos.Articles.UpsertBySlug(ctx, content.Article{
			ID:         id.New(),
			UserID:     user.ID,
			CategoryID: cat.ID,
			Title:      a.Title,
			Slug:       a.Slug,
			Body:       a.Body,
			Status:     a.Status,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return Result{}, fmt.Errorf("seed article %q: %w", a.Slug, err)
		}
		res.Articles = append(res.Articles, stored)
	}
	return res, nil
}
