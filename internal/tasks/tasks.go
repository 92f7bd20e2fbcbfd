// Package tasks holds the periodic maintenance jobs run by pkg/job.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/pkg/job"
	"github.com/dmitrymomot/inkwell/pkg/logger"
	"github.com/dmitrymomot/inkwell/pkg/quota"
)

const (
	purgeQuotaSchedule    = "*/30 * * * *"
	purgeArticlesSchedule = "0 3 * * *"
)

// CounterPurger deletes expired quota counters. *quota.PostgresStore
// implements it; the memory and Redis stores expire entries natively.
type CounterPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

var _ CounterPurger = (*quota.PostgresStore)(nil)

// PurgeQuotaCounters removes quota rows whose day has ended.
type PurgeQuotaCounters struct {
	store CounterPurger
	now   func() time.Time
	log   *slog.Logger
}

var _ job.Task = (*PurgeQuotaCounters)(nil)

// NewPurgeQuotaCounters creates the task. now is usually the limiter's
// clock, so both agree on when a day ends.
func NewPurgeQuotaCounters(store CounterPurger, now func() time.Time, log *slog.Logger) *PurgeQuotaCounters {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &PurgeQuotaCounters{store: store, now: now, log: log}
}

func (t *PurgeQuotaCounters) Name() string     { return "purge_quota_counters" }
func (t *PurgeQuotaCounters) Schedule() string { return purgeQuotaSchedule }

func (t *PurgeQuotaCounters) Run(ctx context.Context) error {
	n, err := t.store.PurgeExpired(ctx, t.now())
	if err != nil {
		return err
	}
	t.log.InfoContext(ctx, "expired quota counters purged", slog.Int64("count", n))
	return nil
}

// ArticlePurger hard-deletes old soft-deleted articles. *content.Service
// implements it.
type ArticlePurger interface {
	PurgeDeletedArticles(ctx context.Context, olderThan time.Duration) (int64, error)
}

var _ ArticlePurger = (*content.Service)(nil)

// PurgeDeletedArticles frees the slugs of articles soft-deleted longer
// than the retention period.
type PurgeDeletedArticles struct {
	articles  ArticlePurger
	retention time.Duration
	log       *slog.Logger
}

var _ job.Task = (*PurgeDeletedArticles)(nil)

func NewPurgeDeletedArticles(articles ArticlePurger, retention time.Duration, log *slog.Logger) *PurgeDeletedArticles {
	if log == nil {
		log = logger.Discard()
	}
	return &PurgeDeletedArticles{articles: articles, retention: retention, log: log}
}

func (t *PurgeDeletedArticles) Name() string     { return "purge_deleted_articles" }
func (t *PurgeDeletedArticles) Schedule() string { return purgeArticlesSchedule }

func (t *PurgeDeletedArticles) Run(ctx context.Context) error {
	n, err := t.articles.PurgeDeletedArticles(ctx, t.retention)
	if err != nil {
		return err
	}
	t.log.InfoContext(ctx, "soft-deleted articles purged",
		slog.Int64("count", n),
		slog.Duration("retention", t.retention),
	)
	return nil
}
