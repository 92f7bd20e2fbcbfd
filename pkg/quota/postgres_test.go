package quota_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/pkg/quota"
)

// scriptedRow answers Scan with a count and reset instant, or an error.
type scriptedRow struct {
	count    int64
	resetsAt time.Time
	err      error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.count
	*dest[1].(*time.Time) = r.resetsAt
	return nil
}

// scriptedDB replays rows in order and records which statements ran.
type scriptedDB struct {
	rows    []scriptedRow
	queries []string
}

func (db *scriptedDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *scriptedDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if strings.Contains(sql, "INSERT") {
		db.queries = append(db.queries, "take")
	} else {
		db.queries = append(db.queries, "current")
	}
	if len(db.rows) == 0 {
		return scriptedRow{err: errors.New("unexpected query")}
	}
	row := db.rows[0]
	db.rows = db.rows[1:]
	return row
}

func TestPostgresStoreTake(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)
	resetsAt := quota.EndOfDay(now)

	t.Run("counter purged after no-op upsert is taken again", func(t *testing.T) {
		t.Parallel()
		db := &scriptedDB{rows: []scriptedRow{
			{err: pgx.ErrNoRows},
			{err: pgx.ErrNoRows},
			{count: 1, resetsAt: resetsAt},
		}}

		rec, ok, err := quota.NewPostgresStore(db).Take(context.Background(), "user:1", 5, now, resetsAt)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, 1, rec.Count)
		assert.Equal(t, []string{"take", "current", "take"}, db.queries)
	})

	t.Run("ceiling reached reports current count", func(t *testing.T) {
		t.Parallel()
		db := &scriptedDB{rows: []scriptedRow{
			{err: pgx.ErrNoRows},
			{count: 5, resetsAt: resetsAt},
		}}

		rec, ok, err := quota.NewPostgresStore(db).Take(context.Background(), "user:1", 5, now, resetsAt)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.EqualValues(t, 5, rec.Count)
	})

	t.Run("row vanishing twice is an error", func(t *testing.T) {
		t.Parallel()
		db := &scriptedDB{rows: []scriptedRow{
			{err: pgx.ErrNoRows}, {err: pgx.ErrNoRows},
			{err: pgx.ErrNoRows}, {err: pgx.ErrNoRows},
		}}

		_, _, err := quota.NewPostgresStore(db).Take(context.Background(), "user:1", 5, now, resetsAt)
		require.ErrorIs(t, err, quota.ErrCounterVanished)
	})

	t.Run("query errors are returned", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		db := &scriptedDB{rows: []scriptedRow{{err: boom}}}

		_, _, err := quota.NewPostgresStore(db).Take(context.Background(), "user:1", 5, now, resetsAt)
		require.ErrorIs(t, err, boom)
	})
}
