package service

import (
	"context"

	"github.com/sanLimbu/taskflow/internal"
)

const otelName = "github.com/sanLimbu/taskflow/internal/service"

// TaskRepository defines the datastore handling persisting Task records.
type TaskRepository interface {
	All(ctx context.Context) ([]internal.Task, error)
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
}

// TaskSearchRepository defines the datastore handling searching Task records.
type TaskSearchRepository interface {
	Search(ctx context.Context, q string) ([]internal.Task, error)
}

// TaskMessageBrokerRepository defines the datastore handling publishing Task events.
type TaskMessageBrokerRepository interface {
	Created(ctx context.Context, task internal.Task) error
	Updated(ctx context.Context, task internal.Task) error
}
