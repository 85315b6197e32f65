// Package events defines the in-process event types and fan-out used
// to decouple the task service from downstream subscribers such as the
// mirror sink.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskAction describes what happened to a task. Archival is reported
// as UPDATED: the record still exists, only its archived flag changed.
type TaskAction string

const (
	TaskActionCreated TaskAction = "CREATED"
	TaskActionUpdated TaskAction = "UPDATED"
	TaskActionDeleted TaskAction = "DELETED"
)

// TaskMutationEvent records a committed change to a task. Events carry
// only the task ID and action; subscribers needing more must read the
// task themselves and tolerate reordering and duplication.
type TaskMutationEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Action indicates what happened to the task.
	Action TaskAction `json:"action"`

	// TaskID is the ID of the mutated task.
	TaskID uuid.UUID `json:"task_id"`

	// OccurredAt is the timestamp when the mutation was committed.
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskMutationEvent creates an event for the given action and task.
func NewTaskMutationEvent(action TaskAction, taskID uuid.UUID) *TaskMutationEvent {
	return &TaskMutationEvent{
		ID:         uuid.New(),
		Action:     action,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle
// task mutation events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskMutationEvent) error
}

// EventEmitter defines an interface for components that can emit
// events. This allows services to publish events without direct
// knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskMutationEvent) error
}
