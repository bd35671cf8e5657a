package model

import "time"

// Todo priorities and statuses as stored in the `todos` table.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"

	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Todo mirrors the `todos` table. Every todo belongs to exactly one user.
type Todo struct {
	ID          uint64    // todos.id
	UserID      uint64    // todos.user_id
	Title       string    // todos.title
	Description string    // todos.description
	Priority    string    // todos.priority
	Status      string    // todos.status
	CreatedOn   time.Time // todos.created_on
}

// ValidPriority reports whether p is one of the known priority names.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidStatus reports whether s is one of the known status names.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusDone
}
