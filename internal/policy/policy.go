// Package policy decides whether an authenticated caller may invoke a task
// operation. It gates access to the operation only; which rows a caller can
// see is decided by the owner-scoped task store.
package policy

import "todo-api/internal/domain"

// Operation names a task operation.
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// IsWrite reports whether op mutates a task.
func (op Operation) IsWrite() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Allow reports whether caller may perform op on task. task is nil for list
// and create.
func Allow(caller *domain.Identity, op Operation, task *domain.Task) bool {
	if caller == nil || caller.UserID <= 0 {
		return false
	}
	switch op {
	case OpList, OpGet, OpCreate:
		return true
	case OpUpdate, OpDelete:
		return Owns(caller, task)
	}
	return false
}

// Owns is the ownership predicate applied to every task row handed to a caller.
func Owns(caller *domain.Identity, task *domain.Task) bool {
	return caller != nil && task != nil && caller.UserID > 0 && task.OwnerID == caller.UserID
}
