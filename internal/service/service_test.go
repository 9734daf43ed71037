package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/auth"
	"todo-api/internal/domain"
	"todo-api/internal/repository"
	"todo-api/internal/repository/bolt"
	"todo-api/internal/repository/sqlite"
)

type testEnv struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	users    UserService
	tasks    TaskService
	auth     AuthService
	issuer   *auth.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(dir, "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, taskRepo.Init(ctx))

	denylist, err := bolt.OpenDenylist(filepath.Join(dir, "denylist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { denylist.Close() })

	issuer, err := auth.NewIssuer(auth.Config{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	require.NoError(t, err)

	users := NewUserService(userRepo, UserConfig{BcryptCost: bcrypt.MinCost})
	return &testEnv{
		userRepo: userRepo,
		taskRepo: taskRepo,
		users:    users,
		tasks:    NewTaskService(taskRepo),
		auth:     NewAuthService(users, issuer, denylist),
		issuer:   issuer,
	}
}

// register creates a user with password "pw-<username>" and returns its identity.
func (e *testEnv) register(t *testing.T, username string) *domain.Identity {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@x.com",
		Password:  "pw-" + username,
		Password2: "pw-" + username,
	})
	require.NoError(t, err)
	return &domain.Identity{UserID: user.ID, Username: user.Username}
}

func strPtr(s string) *string { return &s }
