package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanLimbu/taskflow/internal"
	taskredis "github.com/sanLimbu/taskflow/internal/redis"
)

type fakeClient struct {
	values map[string]string
	getErr error
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}

	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}

	return redis.NewIntResult(int64(len(keys)), nil)
}

type fakeStore struct {
	tasks    []internal.Task
	allCalls int
}

func (f *fakeStore) All(_ context.Context) ([]internal.Task, error) {
	f.allCalls++
	return f.tasks, nil
}

func (f *fakeStore) Create(_ context.Context, params internal.CreateParams) (internal.Task, error) {
	return internal.Task{ID: "new", Title: params.Title}, nil
}

func (f *fakeStore) SetCompleted(_ context.Context, _ string, _ bool) error {
	return nil
}

func TestTask_All(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)

	store := &fakeStore{tasks: []internal.Task{
		{ID: "1", Title: "one", Priority: internal.PriorityLow, Category: internal.CategoryShopping, Status: internal.StatusUrgent, DueDate: &due, CreatedAt: due},
	}}
	client := &fakeClient{values: map[string]string{}}
	cache := taskredis.NewTask(client, store, zap.NewNop())

	for i := 0; i < 2; i++ {
		got, err := cache.All(context.Background())
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}

		if diff := cmp.Diff(store.tasks, got); diff != "" {
			t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
		}
	}

	if store.allCalls != 1 {
		t.Fatalf("expected 1 call to the store, got %d", store.allCalls)
	}

	if err := cache.SetCompleted(context.Background(), "1", true); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if _, ok := client.values["tasks:all"]; ok {
		t.Fatalf("expected cache to be invalidated")
	}
}

func TestTask_All_CacheUnavailable(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)

	store := &fakeStore{tasks: []internal.Task{}}
	client := &fakeClient{values: map[string]string{}, getErr: context.DeadlineExceeded}
	cache := taskredis.NewTask(client, store, zap.New(core))

	if _, err := cache.All(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if store.allCalls != 1 {
		t.Fatalf("expected fallback to the store")
	}

	if logs.FilterMessage("All: couldn't read cache").Len() != 1 {
		t.Fatalf("expected warning to be logged, got %v", logs.All())
	}
}
