package repository

import (
	"context"

	"todo-api/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	// Create inserts the user atomically. Username or email collisions fail
	// with a domain validation error naming the field.
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIdentifier returns every user whose username equals identifier or
	// whose email equals its lowercase form.
	FindByIdentifier(ctx context.Context, identifier string) ([]domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
