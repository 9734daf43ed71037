package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"todo-api/internal/domain"
	"todo-api/internal/policy"
	"todo-api/internal/repository"
)

// TaskService is the owner-scoped task store. Every operation takes the
// caller identity explicitly and only ever reads or writes the caller's rows.
type TaskService interface {
	ListTasks(ctx context.Context, caller *domain.Identity) ([]domain.Task, error)
	GetTask(ctx context.Context, caller *domain.Identity, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, caller *domain.Identity, in domain.TaskInput) (*domain.Task, error)
	// ReplaceTask overwrites every writable field (PUT semantics).
	ReplaceTask(ctx context.Context, caller *domain.Identity, id int64, in domain.TaskInput) (*domain.Task, error)
	// UpdateTask applies only the fields set in patch (PATCH semantics).
	UpdateTask(ctx context.Context, caller *domain.Identity, id int64, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, caller *domain.Identity, id int64) error
}

type taskService struct {
	tasks repository.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{
		tasks: tasks,
		now:   time.Now,
	}
}

func (s *taskService) ListTasks(ctx context.Context, caller *domain.Identity) ([]domain.Task, error) {
	if err := authorize(caller, policy.OpList, nil); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if !policy.Owns(caller, &tasks[i]) {
			return nil, &domain.Error{
				Kind:    domain.KindInternalInconsistency,
				Message: fmt.Sprintf("task %d listed for user %d belongs to user %d", tasks[i].ID, caller.UserID, tasks[i].OwnerID),
			}
		}
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, caller *domain.Identity, id int64) (*domain.Task, error) {
	if err := authorize(caller, policy.OpGet, nil); err != nil {
		return nil, err
	}
	return s.owned(ctx, caller, id)
}

func (s *taskService) CreateTask(ctx context.Context, caller *domain.Identity, in domain.TaskInput) (*domain.Task, error) {
	if err := authorize(caller, policy.OpCreate, nil); err != nil {
		return nil, err
	}

	task := &domain.Task{
		OwnerID:       caller.UserID,
		OwnerUsername: caller.Username,
	}
	if err := applyInput(task, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ReplaceTask(ctx context.Context, caller *domain.Identity, id int64, in domain.TaskInput) (*domain.Task, error) {
	return s.mutate(ctx, caller, id, func(task *domain.Task) error {
		return applyInput(task, in)
	})
}

func (s *taskService) UpdateTask(ctx context.Context, caller *domain.Identity, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	return s.mutate(ctx, caller, id, func(task *domain.Task) error {
		return applyPatch(task, patch)
	})
}

func (s *taskService) DeleteTask(ctx context.Context, caller *domain.Identity, id int64) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	task, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := authorize(caller, policy.OpDelete, task); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, caller.UserID, task.ID)
}

// mutate loads the caller's task, applies change to a copy and persists it in
// a single statement. Validation failures leave the stored task untouched.
func (s *taskService) mutate(ctx context.Context, caller *domain.Identity, id int64, change func(*domain.Task) error) (*domain.Task, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	current, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, policy.OpUpdate, current); err != nil {
		return nil, err
	}

	next := *current
	if err := change(&next); err != nil {
		return nil, err
	}
	// ownership and creation time are never client-writable
	next.OwnerID = current.OwnerID
	next.OwnerUsername = current.OwnerUsername
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = s.touch(current.UpdatedAt)

	if err := s.tasks.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *taskService) owned(ctx context.Context, caller *domain.Identity, id int64) (*domain.Task, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	task, err := s.tasks.Get(ctx, caller.UserID, id)
	if err != nil {
		return nil, err
	}
	if !policy.Owns(caller, task) {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

// touch returns a timestamp strictly after prev.
func (s *taskService) touch(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func authorize(caller *domain.Identity, op policy.Operation, task *domain.Task) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if !policy.Allow(caller, op, task) {
		return domain.ErrForbidden
	}
	return nil
}

func applyInput(task *domain.Task, in domain.TaskInput) error {
	title, err := validateTitle(in.Title)
	if err != nil {
		return err
	}
	due, err := parseDueDate(in.DueDate)
	if err != nil {
		return err
	}
	task.Title = title
	task.Description = in.Description
	task.DueDate = due
	task.IsCompleted = in.IsCompleted
	return nil
}

func applyPatch(task *domain.Task, patch domain.TaskPatch) error {
	next := *task

	if patch.Title.Set {
		if patch.Title.Value == nil {
			return domain.ValidationError("title", "this field may not be null")
		}
		title, err := validateTitle(*patch.Title.Value)
		if err != nil {
			return err
		}
		next.Title = title
	}
	if patch.Description.Set {
		next.Description = patch.Description.Value
	}
	if patch.DueDate.Set {
		due, err := parseDueDate(patch.DueDate.Value)
		if err != nil {
			return err
		}
		next.DueDate = due
	}
	if patch.IsCompleted.Set {
		if patch.IsCompleted.Value == nil {
			return domain.ValidationError("is_completed", "this field may not be null")
		}
		next.IsCompleted = *patch.IsCompleted.Value
	}

	*task = next
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.ValidationError("title", "this field may not be blank")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", domain.ValidationError("title", fmt.Sprintf("ensure this field has no more than %d characters", domain.MaxTitleLength))
	}
	return title, nil
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, domain.ValidationError("due_date", "date has wrong format, use YYYY-MM-DD")
	}
	return &d, nil
}
