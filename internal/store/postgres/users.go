package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/pkg/db"
)

const (
	userGetQuery = `SELECT id, name, email, created_at FROM users WHERE id = $1`

	userUpsertByEmailQuery = `
INSERT INTO users (id, name, email, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT ((lower(email))) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, email, created_at`
)

// UserRepository implements content.UserRepository.
type UserRepository struct {
	db db.Querier
}

var _ content.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (content.User, error) {
	var u content.User
	if err := r.db.QueryRow(ctx, userGetQuery, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		return content.User{}, readErr("get user", err)
	}
	return u, nil
}

// UpsertByEmail updates the name of the user with u.Email, or creates u.
// Emails match case-insensitively.
func (r *UserRepository) UpsertByEmail(ctx context.Context, u content.User) (content.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	var out content.User
	err := r.db.QueryRow(ctx, userUpsertByEmailQuery, u.ID, u.Name, u.Email, u.CreatedAt).
		Scan(&out.ID, &out.Name, &out.Email, &out.CreatedAt)
	if err != nil {
		return content.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return out, nil
}
