package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/domain/sortorder"
	"github.com/kavinrs01/task-manager-server/internal/domain/taskpolicy"
	"github.com/kavinrs01/task-manager-server/internal/events"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// CreateTaskInput carries the fields for creating a task. An empty
// AssignedToUserID means "assign to the actor"; empty status/priority
// take the domain defaults.
type CreateTaskInput struct {
	Title            string
	Description      string
	DueDate          time.Time
	Status           domain.TaskStatus
	Priority         domain.TaskPriority
	IsPrivate        bool
	AssignedToUserID uuid.UUID
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// unchanged.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	DueDate          *time.Time
	Status           *domain.TaskStatus
	Priority         *domain.TaskPriority
	IsPrivate        *bool
	AssignedToUserID *uuid.UUID
}

// ReorderTaskInput describes a drag-and-drop move. Status is the
// column the task was dropped into. At most one of OverTaskID (the
// task it was dropped onto) and ColumnLastTaskID (the last task of the
// target column) may be set; with neither, the task goes to the end of
// the board.
type ReorderTaskInput struct {
	Status           domain.TaskStatus
	OverTaskID       *uuid.UUID
	ColumnLastTaskID *uuid.UUID
}

// TaskService provides task management operations. Actor-scoped
// operations enforce the taskpolicy rules; every committed mutation is
// published as a task mutation event.
type TaskService interface {
	// Create creates a new task at the end of the board.
	Create(ctx context.Context, actor taskpolicy.Actor, input CreateTaskInput) (*domain.Task, error)

	// List returns the non-archived tasks visible to the actor,
	// filtered and cursor-paginated.
	List(ctx context.Context, actor taskpolicy.Actor, filter store.TaskFilter, page store.TaskPage) ([]*domain.Task, error)

	// FindOne retrieves a task by ID without a visibility check.
	FindOne(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetSubscribed retrieves a task by ID, enforcing the actor's
	// access rules. Archived tasks report store.ErrTaskNotFound.
	GetSubscribed(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID) (*domain.Task, error)

	// Update applies a partial update to a task.
	Update(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// Archive soft-deletes a task. Archiving an already archived task
	// is a no-op.
	Archive(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID) (*domain.Task, error)

	// Reorder moves a task to a new column position, computing a fresh
	// fractional sort key from its neighbors.
	Reorder(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID, input ReorderTaskInput) (*domain.Task, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	db        *sql.DB
	logger    *slog.Logger
	timeFunc  func() time.Time // Injectable for testing
	runInTx   func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskStore: taskStore,
		emitter:   emitter,
		db:        db,
		logger:    logger.With("component", "task_service"),
		timeFunc:  time.Now,
		runInTx:   store.RunInTransaction,
	}
}

var _ TaskService = (*TaskServiceImpl)(nil)

// publish emits a task mutation event after a successful commit.
// Emission failures are logged and never surfaced to the caller; the
// mirror is best-effort.
func (s *TaskServiceImpl) publish(ctx context.Context, action events.TaskAction, taskID uuid.UUID) {
	event := events.NewTaskMutationEvent(action, taskID)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish task mutation event",
			"error", err,
			"action", action,
			"task_id", taskID)
	}
}

// Create creates a new task. The task is appended to the end of the
// board: its sort key is the current maximum plus one, computed inside
// the insert transaction.
func (s *TaskServiceImpl) Create(ctx context.Context, actor taskpolicy.Actor, input CreateTaskInput) (*domain.Task, error) {
	if err := taskpolicy.Create(actor, input.AssignedToUserID, input.IsPrivate); err != nil {
		s.logger.Debug("task creation denied",
			"error", err,
			"actor_id", actor.ID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	assignee := input.AssignedToUserID
	if assignee == uuid.Nil {
		assignee = actor.ID
	}

	task, err := domain.NewTask(
		input.Title,
		input.Description,
		input.DueDate,
		input.Status,
		input.Priority,
		input.IsPrivate,
		assignee,
		actor.ID,
	)
	if err != nil {
		s.logger.Debug("rejected invalid task",
			"error", err,
			"actor_id", actor.ID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		max, err := txStore.MaxSortOrder(ctx)
		if err != nil {
			return err
		}
		task.SortOrder = sortorder.Append(max)

		return txStore.Create(ctx, task)
	})
	if err != nil {
		s.logger.Error("failed to create task",
			"error", err,
			"actor_id", actor.ID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created successfully",
		"task_id", task.ID,
		"actor_id", actor.ID,
		"sort_order", task.SortOrder)

	s.publish(ctx, events.TaskActionCreated, task.ID)
	return task, nil
}

// List returns the tasks visible to the actor.
func (s *TaskServiceImpl) List(ctx context.Context, actor taskpolicy.Actor, filter store.TaskFilter, page store.TaskPage) ([]*domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, actor, filter, page)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"actor_id", actor.ID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// FindOne retrieves a task by ID without a visibility check.
func (s *TaskServiceImpl) FindOne(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to retrieve task",
				"error", err,
				"task_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// GetSubscribed retrieves a task with the actor's access rules
// enforced. An archived task is reported as not found.
func (s *TaskServiceImpl) GetSubscribed(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID) (*domain.Task, error) {
	task, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.IsArchived {
		return nil, fmt.Errorf("failed to retrieve task: %w", store.ErrTaskNotFound)
	}

	if err := taskpolicy.Modify(actor, task); err != nil {
		s.logger.Debug("task access denied",
			"error", err,
			"task_id", id,
			"actor_id", actor.ID)
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	return task, nil
}

// Update applies a partial update to a task inside a transaction.
func (s *TaskServiceImpl) Update(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	var updated *domain.Task
	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := taskpolicy.Modify(actor, task); err != nil {
			return err
		}

		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.DueDate != nil {
			task.DueDate = *input.DueDate
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		if input.IsPrivate != nil {
			task.IsPrivate = *input.IsPrivate
		}
		if input.AssignedToUserID != nil {
			task.AssignedToUserID = *input.AssignedToUserID
		}
		task.UpdatedAt = s.timeFunc().UTC()

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		s.logUpdateFailure("update", err, id, actor.ID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated successfully",
		"task_id", id,
		"actor_id", actor.ID)

	s.publish(ctx, events.TaskActionUpdated, id)
	return updated, nil
}

// Archive soft-deletes a task. The record survives with its archived
// flag set, so downstream consumers see an update, not a deletion.
func (s *TaskServiceImpl) Archive(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID) (*domain.Task, error) {
	var archived *domain.Task
	alreadyArchived := false
	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := taskpolicy.Modify(actor, task); err != nil {
			return err
		}

		if task.IsArchived {
			alreadyArchived = true
			archived = task
			return nil
		}

		task.IsArchived = true
		task.UpdatedAt = s.timeFunc().UTC()

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		archived = task
		return nil
	})
	if err != nil {
		s.logUpdateFailure("archive", err, id, actor.ID)
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}

	if alreadyArchived {
		s.logger.Debug("task already archived",
			"task_id", id,
			"actor_id", actor.ID)
		return archived, nil
	}

	s.logger.Info("task archived successfully",
		"task_id", id,
		"actor_id", actor.ID)

	s.publish(ctx, events.TaskActionUpdated, id)
	return archived, nil
}

// Reorder moves a task into a column at a position derived from its
// drop target. The neighbor lookups and the write share a transaction
// so the computed key is consistent with the board state it was read
// from.
func (s *TaskServiceImpl) Reorder(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID, input ReorderTaskInput) (*domain.Task, error) {
	mode, err := sortorder.SelectMode(input.OverTaskID != nil, input.ColumnLastTaskID != nil)
	if err != nil {
		s.logger.Debug("rejected reorder request",
			"error", err,
			"task_id", id,
			"actor_id", actor.ID)
		return nil, fmt.Errorf("failed to reorder task: %w", err)
	}

	var reordered *domain.Task
	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := taskpolicy.Modify(actor, task); err != nil {
			return err
		}

		newOrder, err := s.computeSortOrder(ctx, txStore, actor, mode, input)
		if err != nil {
			return err
		}

		task.Status = input.Status
		task.SortOrder = newOrder
		task.UpdatedAt = s.timeFunc().UTC()

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}

		reordered = task
		return nil
	})
	if err != nil {
		s.logUpdateFailure("reorder", err, id, actor.ID)
		return nil, fmt.Errorf("failed to reorder task: %w", err)
	}

	s.logger.Info("task reordered successfully",
		"task_id", id,
		"actor_id", actor.ID,
		"status", reordered.Status,
		"sort_order", reordered.SortOrder)

	s.publish(ctx, events.TaskActionUpdated, id)
	return reordered, nil
}

// computeSortOrder resolves the new fractional key for a reorder. The
// neighbor search is global across the board, not scoped to the target
// column.
func (s *TaskServiceImpl) computeSortOrder(
	ctx context.Context,
	txStore store.TaskStore,
	actor taskpolicy.Actor,
	mode sortorder.Mode,
	input ReorderTaskInput,
) (float64, error) {
	switch mode {
	case sortorder.ModeBefore:
		over, err := txStore.GetByID(ctx, *input.OverTaskID)
		if err != nil {
			return 0, err
		}
		if !taskpolicy.CanView(actor, over) {
			return 0, taskpolicy.ErrForbidden
		}
		above, err := txStore.NextAbove(ctx, over.SortOrder)
		if err != nil {
			return 0, err
		}
		var predecessor *float64
		if above != nil {
			predecessor = &above.SortOrder
		}
		return sortorder.Before(over.SortOrder, predecessor), nil

	case sortorder.ModeAfter:
		last, err := txStore.GetByID(ctx, *input.ColumnLastTaskID)
		if err != nil {
			return 0, err
		}
		if !taskpolicy.CanView(actor, last) {
			return 0, taskpolicy.ErrForbidden
		}
		below, err := txStore.NextBelow(ctx, last.SortOrder)
		if err != nil {
			return 0, err
		}
		var successor *float64
		if below != nil {
			successor = &below.SortOrder
		}
		return sortorder.After(last.SortOrder, successor), nil

	default:
		max, err := txStore.MaxSortOrder(ctx)
		if err != nil {
			return 0, err
		}
		return sortorder.Append(max), nil
	}
}

// logUpdateFailure logs a failed mutation at the right level: policy
// denials and missing tasks are expected, everything else is not.
func (s *TaskServiceImpl) logUpdateFailure(op string, err error, taskID, actorID uuid.UUID) {
	if errors.Is(err, taskpolicy.ErrForbidden) || errors.Is(err, store.ErrTaskNotFound) {
		s.logger.Debug("task mutation denied",
			"op", op,
			"error", err,
			"task_id", taskID,
			"actor_id", actorID)
		return
	}
	s.logger.Error("task mutation failed",
		"op", op,
		"error", err,
		"task_id", taskID,
		"actor_id", actorID)
}
