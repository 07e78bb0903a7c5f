// Package task runs background work: a bounded in-memory queue drained by a
// pool of workers, and a ticker for periodic maintenance jobs.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Task represents a unit of background work.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier, used in logs
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to queued tasks.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter accepts tasks for processing.
type TaskQueueWriter interface {
	// Enqueue returns ErrQueueFull or ErrQueueClosed when the task cannot be accepted.
	Enqueue(task Task) error
	Close()
}

// Func adapts a function into a Task.
type Func struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) error
}

var _ Task = (*Func)(nil)

// NewFunc wraps fn as a Task of the given type with a fresh ID.
func NewFunc(taskType string, fn func(ctx context.Context) error) *Func {
	return &Func{id: uuid.New(), taskType: taskType, fn: fn}
}

// ID implements Task.
func (f *Func) ID() uuid.UUID { return f.id }

// Type implements Task.
func (f *Func) Type() string { return f.taskType }

// Execute implements Task.
func (f *Func) Execute(ctx context.Context) error { return f.fn(ctx) }
