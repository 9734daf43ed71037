package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-api/internal/domain"
	"todo-api/internal/repository"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NULL,
	due_date TEXT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id);
`

const selectTask = `
SELECT t.id, t.owner_id, u.username, t.title, t.description, t.due_date, t.is_completed, t.created_at, t.updated_at
FROM tasks t
JOIN users u ON u.id = t.owner_id`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (owner_id, title, description, due_date, is_completed, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.OwnerID,
		task.Title,
		nullString(task.Description),
		nullDate(task.DueDate),
		task.IsCompleted,
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET title=?, description=?, due_date=?, is_completed=?, updated_at=?
WHERE id=? AND owner_id=?`,
		task.Title,
		nullString(task.Description),
		nullDate(task.DueDate),
		task.IsCompleted,
		task.UpdatedAt.UTC(),
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectOneRow(res, "update task")
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectOneRow(res, "delete task")
}

func (r *TaskRepository) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTask+`
WHERE t.id=? AND t.owner_id=?`,
		id,
		ownerID,
	)
	return scanTask(row)
}

func (r *TaskRepository) List(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, selectTask+`
WHERE t.owner_id=?
ORDER BY t.due_date IS NULL, t.due_date ASC, t.created_at ASC, t.id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		dueDate     sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := scanner.Scan(
		&task.ID,
		&task.OwnerID,
		&task.OwnerUsername,
		&task.Title,
		&description,
		&dueDate,
		&task.IsCompleted,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if description.Valid {
		v := description.String
		task.Description = &v
	}
	if dueDate.Valid {
		d, err := time.Parse(domain.DateLayout, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse stored due date %q: %w", dueDate.String, err)
		}
		task.DueDate = &d
	}
	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()

	return &task, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateLayout)
}
