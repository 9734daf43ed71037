package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-api/internal/domain"
	"todo-api/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL COLLATE NOCASE UNIQUE,
	password_hash TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	is_staff INTEGER NOT NULL DEFAULT 0,
	is_superuser INTEGER NOT NULL DEFAULT 0,
	date_joined DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectUser = `
SELECT id, username, email, password_hash, is_active, is_staff, is_superuser, date_joined, updated_at
FROM users`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}
	user.UpdatedAt = user.DateJoined

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash, is_active, is_staff, is_superuser, date_joined, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.DateJoined.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		if uniqueViolation(err, "users.username") {
			return 0, domain.ValidationError("username", "a user with that username already exists")
		}
		if uniqueViolation(err, "users.email") {
			return 0, domain.ValidationError("email", "a user with that email already exists")
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`
WHERE username = ? OR email = ?
ORDER BY id ASC`,
		identifier,
		strings.ToLower(identifier),
	)
	if err != nil {
		return nil, fmt.Errorf("query users by identifier: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET email=?, updated_at=?
WHERE id=?`,
		email,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		if uniqueViolation(err, "users.email") {
			return domain.ValidationError("email", "a user with that email already exists")
		}
		return fmt.Errorf("update user email: %w", err)
	}
	return expectOneRow(res, "update user email")
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET password_hash=?, updated_at=?
WHERE id=?`,
		passwordHash,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return expectOneRow(res, "update user password")
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.DateJoined,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.DateJoined = user.DateJoined.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

func expectOneRow(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return domain.ErrNotFound
	}
	return nil
}
