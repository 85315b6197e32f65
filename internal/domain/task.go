package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle = errors.New("task title cannot be empty")
	ErrEmptyAssignee  = errors.New("task must be assigned to a user")
	ErrEmptyCreator   = errors.New("task must have a creator")
)

// TaskStatus is the column a task lives in on the board. The set is
// open-ended at the storage layer; these are the values the UI uses.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work on the board. Tasks are never hard-deleted;
// removal sets IsArchived and archived tasks are excluded from normal
// queries. SortOrder is a fractional ordering key: inserting between
// two tasks averages their keys instead of renumbering siblings.
type Task struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	DueDate          time.Time    `json:"dueDate"`
	Status           TaskStatus   `json:"status"`
	Priority         TaskPriority `json:"priority"`
	SortOrder        float64      `json:"sortOrder"`
	IsPrivate        bool         `json:"isPrivate"`
	IsArchived       bool         `json:"isArchived"`
	AssignedToUserID uuid.UUID    `json:"assignedToUserId"`
	CreatedByUserID  uuid.UUID    `json:"createdByUserId"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewTask creates a task with a fresh ID and timestamps. Status and
// priority default to TODO/MEDIUM when empty. The caller assigns the
// sort order before persisting.
func NewTask(
	title, description string,
	dueDate time.Time,
	status TaskStatus,
	priority TaskPriority,
	isPrivate bool,
	assignedTo, createdBy uuid.UUID,
) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:               uuid.New(),
		Title:            title,
		Description:      description,
		DueDate:          dueDate,
		Status:           status,
		Priority:         priority,
		IsPrivate:        isPrivate,
		AssignedToUserID: assignedTo,
		CreatedByUserID:  createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}

	if math.IsNaN(t.SortOrder) || math.IsInf(t.SortOrder, 0) {
		return ErrInvalidSortOrder
	}

	if t.AssignedToUserID == uuid.Nil {
		return ErrEmptyAssignee
	}

	if t.CreatedByUserID == uuid.Nil {
		return ErrEmptyCreator
	}

	return nil
}
