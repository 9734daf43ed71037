package repository

import (
	"context"

	"todo-api/internal/domain"
)

// TaskRepository exposes persistence operations for Task records. Every read
// and write is scoped by owner id; there is no unscoped accessor.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	// Update writes title, description, due date, completion and updated_at
	// of the task matching both task.ID and task.OwnerID.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, ownerID, id int64) error
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	List(ctx context.Context, ownerID int64) ([]domain.Task, error)
}
