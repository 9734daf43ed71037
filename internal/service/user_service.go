package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"todo-api/internal/domain"
	"todo-api/internal/repository"
)

const (
	maxUsernameLength = 150
	maxEmailLength    = 254
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9.+_-]+$`)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

// UserConfig tunes password handling.
type UserConfig struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// MinPasswordLength defaults to 1.
	MinPasswordLength int
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	CreateSuperuser(ctx context.Context, username, email, password string) (*domain.User, error)
	// Authenticate resolves a username or email plus password to exactly one
	// active user. Every rejection is domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateEmail(ctx context.Context, caller *domain.Identity, email string) (*domain.User, error)
	ChangePassword(ctx context.Context, caller *domain.Identity, oldPassword, newPassword, newPassword2 string) error
}

type userService struct {
	users     repository.UserRepository
	cost      int
	minLength int
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(users repository.UserRepository, cfg UserConfig) UserService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 1
	}
	return &userService{
		users:     users,
		cost:      cfg.BcryptCost,
		minLength: cfg.MinPasswordLength,
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Password != in.Password2 {
		return nil, domain.ValidationError("password", "password fields didn't match")
	}
	return s.create(ctx, &domain.User{
		Username: in.Username,
		Email:    in.Email,
		IsActive: true,
	}, in.Password)
}

func (s *userService) CreateSuperuser(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.create(ctx, &domain.User{
		Username:    username,
		Email:       email,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}, password)
}

func (s *userService) create(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	username, err := normalizeUsername(user.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword("password", password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.Username = username
	user.Email = email
	user.PasswordHash = string(hash)
	user.DateJoined = s.now().UTC()

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	users, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	switch len(users) {
	case 0:
		s.compareDummy(password)
		return nil, domain.ErrInvalidCredentials
	case 1:
	default:
		return nil, &domain.Error{
			Kind:    domain.KindInternalInconsistency,
			Message: fmt.Sprintf("login identifier matches %d users", len(users)),
		}
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	return sanitizeUser(&user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateEmail(ctx context.Context, caller *domain.Identity, email string) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateEmail(ctx, caller.UserID, email); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, caller.UserID)
}

func (s *userService) ChangePassword(ctx context.Context, caller *domain.Identity, oldPassword, newPassword, newPassword2 string) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if newPassword != newPassword2 {
		return domain.ValidationError("new_password", "password fields didn't match")
	}
	if err := s.checkPassword("new_password", newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *userService) checkPassword(field, password string) error {
	if password == "" {
		return domain.ValidationError(field, "this field is required")
	}
	if len([]rune(password)) < s.minLength {
		return domain.ValidationError(field, fmt.Sprintf("password must be at least %d characters", s.minLength))
	}
	if len(password) > 72 {
		return domain.ValidationError(field, "password must be at most 72 bytes")
	}
	return nil
}

// compareDummy spends the same bcrypt work as a real comparison so unknown
// identifiers take as long as wrong passwords.
func (s *userService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	if s.dummyHash != nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
	}
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", domain.ValidationError("username", "this field is required")
	}
	if len([]rune(username)) > maxUsernameLength {
		return "", domain.ValidationError("username", fmt.Sprintf("ensure this field has no more than %d characters", maxUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return "", domain.ValidationError("username", "enter a valid username: letters, digits and . + - _ only")
	}
	return username, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.ValidationError("email", "this field is required")
	}
	if len(email) > maxEmailLength {
		return "", domain.ValidationError("email", "enter a valid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ValidationError("email", "enter a valid email address")
	}
	return email, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		DateJoined:  user.DateJoined,
		UpdatedAt:   user.UpdatedAt,
	}
}

// isNotFound keeps repository lookups that miss from leaking as internal errors.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
