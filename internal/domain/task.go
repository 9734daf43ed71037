package domain

import "time"

// MaxTitleLength bounds Task.Title, counted in characters.
const MaxTitleLength = 200

// DateLayout is the wire and storage format of Task.DueDate.
const DateLayout = "2006-01-02"

// Task is a personal to-do item. OwnerID never changes after creation.
type Task struct {
	ID            int64
	OwnerID       int64
	OwnerUsername string
	Title         string
	Description   *string
	DueDate       *time.Time
	IsCompleted   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskInput carries the writable fields of a task for create and full replace.
// Owner is never part of it: ownership comes from the caller identity.
type TaskInput struct {
	Title       string
	Description *string
	DueDate     *string
	IsCompleted bool
}

// TaskPatch carries a partial update. Only fields with Set == true are applied.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[string]
	IsCompleted Optional[bool]
}

// Empty reports whether the patch touches no field.
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set && !p.IsCompleted.Set
}
