// Package queue implements the Redis-backed task queue: producers enqueue
// named tasks, workers consume them, and a result backend tracks task state.
package queue

import (
	"encoding/json"
	"time"
)

// Task states. Started is recorded as soon as a worker picks the task up,
// matching the track-started behavior of the legacy queue.
const (
	StatePending = "PENDING"
	StateStarted = "STARTED"
	StateSuccess = "SUCCESS"
	StateFailure = "FAILURE"
)

// Task is the envelope placed on the queue.
type Task struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Status is the state of a task in the result backend.
type Status struct {
	TaskID     string          `json:"task_id"`
	State      string          `json:"state"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// Done reports whether the task has reached a terminal state.
func (s *Status) Done() bool {
	return s.State == StateSuccess || s.State == StateFailure
}
