package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskflow/internal"
)

const (
	otelName    = "github.com/sanLimbu/taskflow/internal/redis"
	allTasksKey = "tasks:all"
)

// Client is the subset of *redis.Client used for caching.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TaskStore defines the datastore being decorated.
type TaskStore interface {
	All(ctx context.Context) ([]internal.Task, error)
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
}

// Task is a cache-aside decorator of TaskStore backed by Redis.
type Task struct {
	client     Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// NewTask instantiates the Redis decorator.
func NewTask(client Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 10 * time.Minute,
		logger:     logger,
	}
}

// All returns the cached list, falling back to the decorated store on a miss.
func (t *Task) All(ctx context.Context) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.All").End()

	res, err := t.get(ctx)
	if err == nil {
		return res, nil
	}

	if !errors.Is(err, redis.Nil) {
		t.logger.Warn("All: couldn't read cache", zap.Error(err))
	}

	res, err = t.orig.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("orig.All: %w", err)
	}

	var b bytes.Buffer

	if err := json.NewEncoder(&b).Encode(res); err != nil {
		t.logger.Warn("All: couldn't encode tasks", zap.Error(err))
		return res, nil
	}

	if err := t.client.Set(ctx, allTasksKey, b.Bytes(), t.expiration).Err(); err != nil {
		t.logger.Warn("All: couldn't cache tasks", zap.Error(err))
	}

	return res, nil
}

func (t *Task) get(ctx context.Context) ([]internal.Task, error) {
	b, err := t.client.Get(ctx, allTasksKey).Bytes()
	if err != nil {
		return nil, err
	}

	var res []internal.Task

	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Decode")
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

	t.invalidate(ctx)

	return task, nil
}

// SetCompleted updates the record and invalidates the cached list.
func (t *Task) SetCompleted(ctx context.Context, id string, completed bool) error {
	defer newOTELSpan(ctx, "Task.SetCompleted").End()

	if err := t.orig.SetCompleted(ctx, id, completed); err != nil {
		return fmt.Errorf("orig.SetCompleted: %w", err)
	}

	t.invalidate(ctx)

	return nil
}

func (t *Task) invalidate(ctx context.Context) {
	if err := t.client.Del(ctx, allTasksKey).Err(); err != nil {
		t.logger.Warn("couldn't invalidate cache", zap.Error(err))
	}
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemRedis)

	return span
}
