package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/domain/taskpolicy"
	"github.com/kavinrs01/task-manager-server/internal/platform/logger"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

const taskColumns = `id, title, description, due_date, status, priority, sort_order,
	is_private, is_archived, assigned_to_user_id, created_by_user_id, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity when the task fails validation or
// references a user that does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Status,
		task.Priority,
		task.SortOrder,
		task.IsPrivate,
		task.IsArchived,
		task.AssignedToUserID,
		task.CreatedByUserID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("assigned_to", task.AssignedToUserID.String()))
			return fmt.Errorf("%w: assigned user %s not found",
				store.ErrInvalidEntity, task.AssignedToUserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.Float64("sort_order", task.SortOrder))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist. Archived
// tasks are returned; visibility is the caller's concern.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// List implements store.TaskStore.List
//
// The WHERE clause mirrors taskpolicy.CanView: USER actors see only
// their own tasks; ADMIN actors see everything except other users'
// private tasks. Results are ordered by sort_order descending with the
// id as tiebreaker, and a cursor starts strictly after the cursor row.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	actor taskpolicy.Actor,
	filter store.TaskFilter,
	page store.TaskPage,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "is_archived = FALSE")

	if actor.IsAdmin() {
		conds = append(conds,
			fmt.Sprintf("NOT (is_private = TRUE AND assigned_to_user_id <> %s)", arg(actor.ID)))
	} else {
		conds = append(conds, fmt.Sprintf("assigned_to_user_id = %s", arg(actor.ID)))
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = %s", arg(*filter.Status)))
	}
	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = %s", arg(*filter.Priority)))
	}
	if filter.DueDateGte != nil {
		conds = append(conds, fmt.Sprintf("due_date >= %s", arg(*filter.DueDateGte)))
	}
	if filter.DueDateLte != nil {
		conds = append(conds, fmt.Sprintf("due_date <= %s", arg(*filter.DueDateLte)))
	}

	if page.Cursor != nil {
		// Keyset pagination: resume strictly after the cursor row in
		// (sort_order DESC, id ASC) ordering, skipping the row itself.
		cursor, err := s.GetByID(ctx, *page.Cursor)
		if err != nil {
			return nil, err
		}
		conds = append(conds, fmt.Sprintf(
			"(sort_order < %s OR (sort_order = %s AND id > %s))",
			arg(cursor.SortOrder), arg(cursor.SortOrder), arg(cursor.ID)))
	}

	take := page.Take
	if take < 1 {
		take = 10
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(conds, " AND ") +
		` ORDER BY sort_order DESC, id ASC LIMIT ` + arg(take)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("actor_id", actor.ID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0, take)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $2, description = $3, due_date = $4, status = $5, priority = $6,
			sort_order = $7, is_private = $8, is_archived = $9,
			assigned_to_user_id = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Status,
		task.Priority,
		task.SortOrder,
		task.IsPrivate,
		task.IsArchived,
		task.AssignedToUserID,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// MaxSortOrder implements store.TaskStore.MaxSortOrder
func (s *PostgresTaskStore) MaxSortOrder(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(MAX(sort_order), 0) FROM tasks WHERE is_archived = FALSE`
	var max float64
	if err := s.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// NextAbove implements store.TaskStore.NextAbove
func (s *PostgresTaskStore) NextAbove(ctx context.Context, sortOrder float64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE sort_order > $1 AND is_archived = FALSE
		ORDER BY sort_order ASC
		LIMIT 1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, sortOrder))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// NextBelow implements store.TaskStore.NextBelow
func (s *PostgresTaskStore) NextBelow(ctx context.Context, sortOrder float64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE sort_order < $1 AND is_archived = FALSE
		ORDER BY sort_order DESC
		LIMIT 1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, sortOrder))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.DueDate,
		&task.Status,
		&task.Priority,
		&task.SortOrder,
		&task.IsPrivate,
		&task.IsArchived,
		&task.AssignedToUserID,
		&task.CreatedByUserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Description = description.String
	return &task, nil
}
