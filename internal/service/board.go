package service

import (
	"context"
	"sync"
	"time"

	"github.com/mercari/go-circuitbreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskflow/internal"
)

// Board holds the task collection behind the dashboard. It loads the full set once, recomputes the
// derived state on every read and writes completion changes through to the repository.
type Board struct {
	logger    *zap.Logger
	repo      TaskRepository
	search    TaskSearchRepository
	msgBroker TaskMessageBrokerRepository
	cb        *circuitbreaker.CircuitBreaker
	toggles   metric.Int64Counter
	now       func() time.Time

	mu     sync.RWMutex
	tasks  []internal.Task
	loaded bool

	loadOnce sync.Once
	loadDone chan struct{}
}

// BoardOption configures optional collaborators of a Board.
type BoardOption func(*Board)

// WithSearch enables Board.Search.
func WithSearch(search TaskSearchRepository) BoardOption {
	return func(b *Board) {
		b.search = search
	}
}

// WithMessageBroker publishes task events to msgBroker.
func WithMessageBroker(msgBroker TaskMessageBrokerRepository) BoardOption {
	return func(b *Board) {
		b.msgBroker = msgBroker
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) {
		b.now = now
	}
}

// NewBoard instantiates the Board. Nothing is loaded until first use.
func NewBoard(logger *zap.Logger, repo TaskRepository, opts ...BoardOption) *Board {
	b := &Board{
		logger:    logger,
		repo:      repo,
		msgBroker: noopMessageBroker{},
		now:       time.Now,
		loadDone:  make(chan struct{}),
		cb: circuitbreaker.New(
			circuitbreaker.WithOpenTimeout(30*time.Second),
			circuitbreaker.WithTripFunc(circuitbreaker.NewTripFuncConsecutiveFailures(3)),
		),
	}

	for _, opt := range opts {
		opt(b)
	}

	toggles, err := otel.Meter(otelName).Int64Counter("tasks.completed.toggles",
		metric.WithDescription("Number of completion changes written to the store"))
	if err != nil {
		logger.Warn("couldn't create toggles counter", zap.Error(err))
	}

	b.toggles = toggles

	return b
}

// Loaded indicates whether the first load finished, successfully or not.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.loaded
}

// Reload replaces the collection with the repository's current content. On failure the collection is
// left empty.
func (b *Board) Reload(ctx context.Context) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.Reload")
	defer span.End()

	tasks, err := b.repo.All(ctx)
	if err != nil {
		b.logger.Error("couldn't load tasks", zap.Error(err))

		tasks = []internal.Task{}
	}

	b.mu.Lock()
	b.tasks = tasks
	b.loaded = true
	b.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		return err
	}

	return nil
}

// Dashboard returns the derived state for key. The first call starts loading the collection in the
// background; until that finishes the returned Dashboard is not Loaded.
func (b *Board) Dashboard(ctx context.Context, key internal.FilterKey) internal.Dashboard {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.Dashboard")
	defer span.End()

	span.SetAttributes(attribute.String("filter", key.String()))

	if !b.Loaded() {
		b.startLoad(ctx)

		span.SetAttributes(attribute.Bool("loaded", false))

		return internal.NewLoadingDashboard(key, b.now())
	}

	return internal.NewDashboard(b.snapshot(), key, b.now())
}

// Tasks returns the incomplete tasks matching key, waiting for the first load if needed.
func (b *Board) Tasks(ctx context.Context, key internal.FilterKey) ([]internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.Tasks")
	defer span.End()

	if err := b.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	return internal.FilterTasks(b.snapshot(), key, b.now()), nil
}

// ToggleComplete flips the completed flag of the task identified by id.
func (b *Board) ToggleComplete(ctx context.Context, id string) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.ToggleComplete")
	defer span.End()

	return b.setCompleted(ctx, id, func(current bool) bool { return !current })
}

// SetCompleted sets the completed flag of the task identified by id.
func (b *Board) SetCompleted(ctx context.Context, id string, completed bool) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.SetCompleted")
	defer span.End()

	return b.setCompleted(ctx, id, func(bool) bool { return completed })
}

// setCompleted updates the local copy first and writes it through. A failed write is rolled back, unless
// the task changed again in the meantime.
func (b *Board) setCompleted(ctx context.Context, id string, next func(bool) bool) (internal.Task, error) {
	if err := b.ensureLoaded(ctx); err != nil {
		return internal.Task{}, err
	}

	b.mu.Lock()

	i := b.indexOf(id)
	if i == -1 {
		b.mu.Unlock()
		return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task not found: %s", id)
	}

	previous := b.tasks[i].Completed
	completed := next(previous)

	b.tasks[i].Completed = completed
	task := b.tasks[i]

	b.mu.Unlock()

	if err := b.repo.SetCompleted(ctx, id, completed); err != nil {
		b.logger.Error("couldn't update task",
			zap.String("id", id),
			zap.Bool("completed", completed),
			zap.Error(err))

		b.mu.Lock()
		if i := b.indexOf(id); i != -1 && b.tasks[i].Completed == completed {
			b.tasks[i].Completed = previous
		}
		b.mu.Unlock()

		return internal.Task{}, err
	}

	if b.toggles != nil {
		b.toggles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("completed", completed)))
	}

	if err := b.msgBroker.Updated(ctx, task); err != nil {
		b.logger.Warn("couldn't publish task updated", zap.String("id", id), zap.Error(err))
	}

	return task, nil
}

// Create validates params, stores the task and adds it to the front of the collection.
func (b *Board) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.Create")
	defer span.End()

	params = params.Normalize()

	if err := params.Validate(); err != nil {
		return internal.Task{}, err
	}

	if err := b.ensureLoaded(ctx); err != nil {
		return internal.Task{}, err
	}

	task, err := b.repo.Create(ctx, params)
	if err != nil {
		b.logger.Error("couldn't create task", zap.Error(err))
		return internal.Task{}, err
	}

	b.mu.Lock()
	b.tasks = append([]internal.Task{task}, b.tasks...)
	b.mu.Unlock()

	if err := b.msgBroker.Created(ctx, task); err != nil {
		b.logger.Warn("couldn't publish task created", zap.String("id", task.ID), zap.Error(err))
	}

	return task, nil
}

// Search returns the incomplete tasks matching q. Calls to the search index go through a circuit breaker.
func (b *Board) Search(ctx context.Context, q string) ([]internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Board.Search")
	defer span.End()

	if b.search == nil {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "search is not configured")
	}

	res, err := b.cb.Do(ctx, func() (interface{}, error) {
		return b.search.Search(ctx, q)
	})
	if err != nil {
		span.RecordError(err)
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "search")
	}

	tasks, _ := res.([]internal.Task)

	return internal.FilterTasks(tasks, internal.FilterAll, b.now()), nil
}

// startLoad runs the first load once, detached from the caller's cancellation.
func (b *Board) startLoad(ctx context.Context) {
	b.loadOnce.Do(func() {
		ctx := context.WithoutCancel(ctx)

		go func() {
			defer close(b.loadDone)

			_ = b.Reload(ctx)
		}()
	})
}

// ensureLoaded waits for the first load. A failed load still counts as loaded, with no tasks.
func (b *Board) ensureLoaded(ctx context.Context) error {
	if b.Loaded() {
		return nil
	}

	b.startLoad(ctx)

	select {
	case <-b.loadDone:
		return nil
	case <-ctx.Done():
		return internal.WrapErrorf(ctx.Err(), internal.ErrorCodeUnknown, "waiting for tasks")
	}
}

func (b *Board) snapshot() []internal.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	res := make([]internal.Task, len(b.tasks))
	copy(res, b.tasks)

	return res
}

// indexOf must be called with mu held.
func (b *Board) indexOf(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}

	return -1
}

type noopMessageBroker struct{}

func (noopMessageBroker) Created(context.Context, internal.Task) error { return nil }
func (noopMessageBroker) Updated(context.Context, internal.Task) error { return nil }
