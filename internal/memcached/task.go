package memcached

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanLimbu/taskflow/internal"
)

const allTasksKey = "tasks:all"

// Task is a cache-aside decorator of TaskStore backed by memcached. Only the full list is cached, any write
// invalidates it.
type Task struct {
	client     Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// TaskStore defines the datastore being decorated.
type TaskStore interface {
	All(ctx context.Context) ([]internal.Task, error)
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
}

// NewTask instantiates the memcached decorator.
func NewTask(client Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

// All returns the cached list, falling back to the decorated store on a miss.
func (t *Task) All(ctx context.Context) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.All").End()

	var res []internal.Task

	if err := getTasks(ctx, t.client, allTasksKey, &res); err == nil {
		return res, nil
	}

	t.logger.Info("All: not found, let's cache it")

	res, err := t.orig.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("orig.All: %w", err)
	}

	if err := setTasks(ctx, t.client, allTasksKey, res, t.expiration); err != nil {
		t.logger.Warn("All: couldn't cache tasks", zap.Error(err))
	}

	return res, nil
}

// Create stores a new record and invalidates the cached list.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("orig.Create: %w", err)
	}

	deleteTasks(ctx, t.client, allTasksKey)

	return task, nil
}

// SetCompleted updates the record and invalidates the cached list.
func (t *Task) SetCompleted(ctx context.Context, id string, completed bool) error {
	defer newOTELSpan(ctx, "Task.SetCompleted").End()

	if err := t.orig.SetCompleted(ctx, id, completed); err != nil {
		return fmt.Errorf("orig.SetCompleted: %w", err)
	}

	deleteTasks(ctx, t.client, allTasksKey)

	return nil
}
