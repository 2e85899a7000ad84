package api

import (
	"context"

	"focus-api/domain"
	"focus-api/tasks"
)

// Store is the task-store surface the handlers need.
type Store interface {
	All() []domain.Task
	Add(ctx context.Context, d tasks.Draft) (domain.Task, bool)
	Toggle(ctx context.Context, id int64) bool
	Delete(ctx context.Context, id int64) bool
	ClearCompleted(ctx context.Context) int
	Update(ctx context.Context, id int64, c tasks.Changes) (domain.Task, bool)
}

// Deduper prevents a retried create request from adding the task twice.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, key string) (bool, error)
	// Remove deletes a previously added key, used when the create is rejected.
	Remove(ctx context.Context, key string) error
}
