package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/domain/taskpolicy"
)

// TaskFilter narrows a task listing. Nil fields are ignored; a due-date
// range with one bound omitted is open-ended on that side.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	DueDateGte *time.Time
	DueDateLte *time.Time
}

// TaskPage controls cursor pagination. Cursor, when set, is the ID of a
// previously returned task; results start strictly after that task in
// the current ordering (the cursor row itself is skipped). Take bounds
// the result count.
type TaskPage struct {
	Take   int
	Cursor *uuid.UUID
}

// TaskStore defines the interface for task data persistence.
//
// List results are ordered by sort_order descending ("most recently
// prioritized first") with the task ID as a deterministic tiebreaker,
// and always exclude archived tasks.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, archived or not.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the non-archived tasks visible to the actor,
	// narrowed by the filter and paginated by the page cursor. The
	// visibility scope matches taskpolicy.CanView.
	List(ctx context.Context, actor taskpolicy.Actor, filter TaskFilter, page TaskPage) ([]*domain.Task, error)

	// Update persists changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// MaxSortOrder returns the highest sort order among non-archived
	// tasks, or 0 when there are none.
	MaxSortOrder(ctx context.Context) (float64, error)

	// NextAbove returns the non-archived task with the smallest sort
	// order strictly greater than the given value (the task visually
	// above it on the board), or nil when no such task exists.
	NextAbove(ctx context.Context, sortOrder float64) (*domain.Task, error)

	// NextBelow returns the non-archived task with the largest sort
	// order strictly less than the given value, or nil when no such
	// task exists.
	NextBelow(ctx context.Context, sortOrder float64) (*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
