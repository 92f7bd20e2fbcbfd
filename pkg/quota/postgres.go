package quota

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// The WHERE clause makes the upsert a no-op once the ceiling is reached,
// so the row lock taken by ON CONFLICT is the only serialization needed.
const takeQuery = `
INSERT INTO quota_counters AS q (key, count, resets_at)
VALUES ($1, 1, $3)
ON CONFLICT (key) DO UPDATE SET
	count     = CASE WHEN q.resets_at < $2 THEN 1 ELSE q.count + 1 END,
	resets_at = CASE WHEN q.resets_at < $2 THEN EXCLUDED.resets_at ELSE q.resets_at END
WHERE q.resets_at < $2 OR q.count < $4
RETURNING count, resets_at`

const currentQuery = `SELECT count, resets_at FROM quota_counters WHERE key = $1`

const purgeQuery = `DELETE FROM quota_counters WHERE resets_at < $1`

// PostgresStore keeps counters in the quota_counters table.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore creates a store on top of db.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Take implements Store.
func (s *PostgresStore) Take(ctx context.Context, key string, ceiling int64, now, resetsAt time.Time) (Record, bool, error) {
	// timestamptz keeps microseconds; truncate so the value is not rounded
	// up into the next day.
	resetsAt = resetsAt.Truncate(time.Microsecond)
	rec := Record{Key: key}

	// A purge may delete the row between the no-op upsert and the read;
	// the second round then inserts a fresh counter.
	for range 2 {
		err := s.db.QueryRow(ctx, takeQuery, key, now, resetsAt, ceiling).Scan(&rec.Count, &rec.ResetsAt)
		switch {
		case err == nil:
			return rec, true, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return Record{}, false, err
		}

		// Ceiling reached: the upsert matched the row but updated nothing.
		err = s.db.QueryRow(ctx, currentQuery, key).Scan(&rec.Count, &rec.ResetsAt)
		switch {
		case err == nil:
			return rec, false, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return Record{}, false, err
		}
	}
	return Record{}, false, ErrCounterVanished
}

// PurgeExpired deletes counters whose window ended before now and
// returns how many were removed.
func (s *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, purgeQuery, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
