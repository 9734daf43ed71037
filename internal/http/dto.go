package http

import (
	"time"

	"todo-api/internal/domain"
)

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// loginRequest accepts either "identifier" or the legacy "username" key;
// both may hold a username or an email address.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

func (r loginRequest) identifier() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Username
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type updateMeRequest struct {
	Email string `json:"email" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword  string `json:"old_password" binding:"required"`
	NewPassword  string `json:"new_password" binding:"required"`
	NewPassword2 string `json:"new_password2" binding:"required"`
}

// taskRequest is the body of POST and PUT. An "owner" key is not decoded.
type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	IsCompleted *bool   `json:"is_completed"`
}

func (r taskRequest) input() (domain.TaskInput, error) {
	if r.Title == nil {
		return domain.TaskInput{}, domain.ValidationError("title", "this field is required")
	}
	in := domain.TaskInput{
		Title:       *r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
	}
	if r.IsCompleted != nil {
		in.IsCompleted = *r.IsCompleted
	}
	return in, nil
}

type taskPatchRequest struct {
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	DueDate     domain.Optional[string] `json:"due_date"`
	IsCompleted domain.Optional[bool]   `json:"is_completed"`
}

func (r taskPatchRequest) patch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		IsCompleted: r.IsCompleted,
	}
}

type UserResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsStaff    bool   `json:"is_staff"`
	DateJoined string `json:"date_joined"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		IsStaff:    user.IsStaff,
		DateJoined: user.DateJoined.UTC().Format(time.RFC3339),
	}
}

type TaskResponse struct {
	ID          int64   `json:"id"`
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	IsCompleted bool    `json:"is_completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func newTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Owner:       task.OwnerUsername,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(domain.DateLayout)
		resp.DueDate = &due
	}
	return resp
}
