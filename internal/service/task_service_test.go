package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/domain"
	"todo-api/internal/repository"
)

func TestCreateAndGetTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	created, err := env.tasks.CreateTask(ctx, alice, domain.TaskInput{
		Title:       "  Buy milk ",
		Description: strPtr("semi-skimmed"),
		DueDate:     strPtr("2030-05-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, created.OwnerID)
	assert.Equal(t, "alice", created.OwnerUsername)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.IsCompleted)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := env.tasks.GetTask(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, *created.Description, *got.Description)
	assert.Equal(t, "2030-05-01", got.DueDate.Format(domain.DateLayout))
	assert.Equal(t, created.IsCompleted, got.IsCompleted)
	assert.Equal(t, created.OwnerID, got.OwnerID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestTaskOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	task, err := env.tasks.CreateTask(ctx, alice, domain.TaskInput{Title: "Buy milk"})
	require.NoError(t, err)

	list, err := env.tasks.ListTasks(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = env.tasks.GetTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.tasks.UpdateTask(ctx, bob, task.ID, domain.TaskPatch{Title: domain.Some("hijacked")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.tasks.ReplaceTask(ctx, bob, task.ID, domain.TaskInput{Title: "hijacked"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, bob, task.ID), domain.ErrNotFound)

	got, err := env.tasks.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)

	list, err = env.tasks.ListTasks(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, task.ID, list[0].ID)
}

func TestTaskOperationsRequireCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tasks.ListTasks(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = env.tasks.CreateTask(ctx, nil, domain.TaskInput{Title: "t"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = env.tasks.GetTask(ctx, nil, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = env.tasks.UpdateTask(ctx, nil, 1, domain.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, nil, 1), domain.ErrUnauthenticated)
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	tests := []struct {
		name  string
		in    domain.TaskInput
		field string
	}{
		{"missing title", domain.TaskInput{}, "title"},
		{"blank title", domain.TaskInput{Title: "   "}, "title"},
		{"title too long", domain.TaskInput{Title: strings.Repeat("x", domain.MaxTitleLength+1)}, "title"},
		{"bad date", domain.TaskInput{Title: "t", DueDate: strPtr("31/01/2030")}, "due_date"},
		{"impossible date", domain.TaskInput{Title: "t", DueDate: strPtr("2030-02-30")}, "due_date"},
		{"empty date", domain.TaskInput{Title: "t", DueDate: strPtr("")}, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.CreateTask(context.Background(), alice, tt.in)
			require.ErrorIs(t, err, domain.ErrValidation)
			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.field, derr.Field)
		})
	}

	_, err := env.tasks.CreateTask(context.Background(), alice, domain.TaskInput{Title: strings.Repeat("é", domain.MaxTitleLength)})
	assert.NoError(t, err)
}

func TestUpdateTaskPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	task, err := env.tasks.CreateTask(ctx, alice, domain.TaskInput{
		Title:       "Buy milk",
		Description: strPtr("two litres"),
		DueDate:     strPtr("2030-01-01"),
	})
	require.NoError(t, err)

	updated, err := env.tasks.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{IsCompleted: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "two litres", *updated.Description)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(task.CreatedAt))

	got, err := env.tasks.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, "2030-01-01", got.DueDate.Format(domain.DateLayout))
	assert.True(t, got.UpdatedAt.Equal(updated.UpdatedAt))

	cleared, err := env.tasks.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{
		Description: domain.Null[string](),
		DueDate:     domain.Null[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.DueDate)
	assert.True(t, cleared.IsCompleted)
}

func TestUpdateTaskValidationLeavesTaskUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	task, err := env.tasks.CreateTask(ctx, alice, domain.TaskInput{Title: "Buy milk"})
	require.NoError(t, err)

	_, err = env.tasks.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{
		IsCompleted: domain.Some(true),
		DueDate:     domain.Some("tomorrow"),
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.tasks.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{Title: domain.Null[string]()})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.tasks.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{IsCompleted: domain.Null[bool]()})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := env.tasks.GetTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.DueDate)
	assert.True(t, got.UpdatedAt.Equal(task.UpdatedAt))
}

func TestUpdatedAtStrictlyIncreasesWithFrozenClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	frozen := time.Date(2030, time.January, 1, 9, 0, 0, 0, time.UTC)
	svc := env.tasks.(*taskService)
	svc.now = func() time.Time { return frozen }

	task, err := svc.CreateTask(ctx, alice, domain.TaskInput{Title: "t"})
	require.NoError(t, err)

	first, err := svc.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{})
	require.NoError(t, err)
	second, err := svc.UpdateTask(ctx, alice, task.ID, domain.TaskPatch{})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(task.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestReplaceTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	task, err := env.tasks.CreateTask(ctx, alice, domain.TaskInput{
		Title:       "Buy milk",
		Description: strPtr("two litres"),
		DueDate:     strPtr("2030-01-01"),
		IsCompleted: true,
	})
	require.NoError(t, err)

	replaced, err := env.tasks.ReplaceTask(ctx, alice, task.ID, domain.TaskInput{Title: "Buy bread"})
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", replaced.Title)
	assert.Nil(t, replaced.Description)
	assert.Nil(t, replaced.DueDate)
	assert.False(t, replaced.IsCompleted)
	assert.Equal(t, alice.UserID, replaced.OwnerID)

	_, err = env.tasks.ReplaceTask(ctx, alice, task.ID, domain.TaskInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	task, err := env.tasks.CreateTask(ctx, alice, domain.TaskInput{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, env.tasks.DeleteTask(ctx, alice, task.ID))

	_, err = env.tasks.GetTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, alice, task.ID), domain.ErrNotFound)
	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, alice, 0), domain.ErrNotFound)
}

type leakyTaskRepo struct {
	repository.TaskRepository
}

func (leakyTaskRepo) List(context.Context, int64) ([]domain.Task, error) {
	return []domain.Task{{ID: 1, OwnerID: 1}, {ID: 2, OwnerID: 2}}, nil
}

func (leakyTaskRepo) Get(_ context.Context, _ int64, id int64) (*domain.Task, error) {
	return &domain.Task{ID: id, OwnerID: 2}, nil
}

func TestOwnershipPredicateGuardsStoreResults(t *testing.T) {
	tasks := NewTaskService(leakyTaskRepo{})
	alice := &domain.Identity{UserID: 1, Username: "alice"}

	_, err := tasks.ListTasks(context.Background(), alice)
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)

	_, err = tasks.GetTask(context.Background(), alice, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
