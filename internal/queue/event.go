// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// TodoCompletedEvent is published when a todo transitions into the
// DONE status. It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type TodoCompletedEvent struct {
	TodoID      uint64 `json:"todo_id"`
	UserID      uint64 `json:"user_id"`
	Title       string `json:"title"`
	Priority    string `json:"priority"`
	CompletedAt string `json:"completed_at"`
}
