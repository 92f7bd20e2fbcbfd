// Package job runs periodic maintenance tasks on river, scheduled with
// cron expressions. River elects a leader, so each run happens once per
// cluster.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/robfig/cron/v3"
)

var (
	ErrPoolRequired      = errors.New("job: pool is required")
	ErrDuplicateTask     = errors.New("job: duplicate task name")
	ErrInvalidSchedule   = errors.New("job: invalid cron schedule")
	ErrUnknownTask       = errors.New("job: unknown task")
	ErrAlreadyStarted    = errors.New("job: already started")
	ErrNotStarted        = errors.New("job: not started")
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)

// Task is a unit of periodic work.
type Task interface {
	Name() string
	// Schedule is a five-field cron expression.
	Schedule() string
	Run(ctx context.Context) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by the scheduler and river.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRunOnStart makes every task run once as soon as the scheduler starts.
func WithRunOnStart(v bool) Option {
	return func(s *Scheduler) { s.runOnStart = v }
}

// Scheduler owns a river client that executes the registered tasks.
type Scheduler struct {
	pool       *pgxpool.Pool
	client     *river.Client[pgx.Tx]
	tasks      map[string]Task
	log        *slog.Logger
	runOnStart bool

	mu      sync.Mutex
	started bool
}

// NewScheduler validates the tasks' schedules and builds the river client.
func NewScheduler(pool *pgxpool.Pool, tasks []Task, opts ...Option) (*Scheduler, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	s := &Scheduler{
		pool:  pool,
		tasks: make(map[string]Task, len(tasks)),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	periodic := make([]*river.PeriodicJob, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := s.tasks[t.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name())
		}
		sched, err := ParseSchedule(t.Schedule())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		s.tasks[t.Name()] = t

		name := t.Name()
		periodic = append(periodic, river.NewPeriodicJob(
			sched,
			func() (river.JobArgs, *river.InsertOpts) { return taskArgs{Task: name}, nil },
			&river.PeriodicJobOpts{RunOnStart: s.runOnStart},
		))
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{tasks: s.tasks, log: s.log})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: 2}},
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}
	s.client = client

	return s, nil
}

// Migrate brings river's own tables up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	m, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("job: migrator: %w", err)
	}
	if _, err := m.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("job: migrate: %w", err)
	}
	return nil
}

// Start begins fetching and scheduling jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start: %w", err)
	}
	s.started = true
	s.log.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
	return nil
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop: %w", err)
	}
	s.started = false
	s.log.Info("scheduler stopped")
	return nil
}

// Healthcheck reports whether the scheduler is running and its database
// reachable.
func (s *Scheduler) Healthcheck(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
	}
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

type taskArgs struct {
	Task string `json:"task"`
}

func (taskArgs) Kind() string { return "inkwell:task" }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	tasks map[string]Task
	log   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	return runTask(ctx, w.tasks, j.Args.Task, j.Attempt, w.log)
}

func runTask(ctx context.Context, tasks map[string]Task, name string, attempt int, log *slog.Logger) error {
	t, ok := tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	start := time.Now()
	if err := t.Run(ctx); err != nil {
		log.ErrorContext(ctx, "task failed",
			slog.String("task", name),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		return err
	}
	log.InfoContext(ctx, "task completed", slog.String("task", name), slog.Duration("took", time.Since(start)))
	return nil
}

type cronSchedule struct {
	cron.Schedule
}

// ParseSchedule parses a five-field cron expression into a river schedule.
func ParseSchedule(expr string) (river.PeriodicSchedule, error) {
	p := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s, err := p.Parse(expr)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	return cronSchedule{s}, nil
}
