package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

// taskColumns is the shared select list for task queries. Assigner and
// assignee display names are denormalized into every task row; the
// assignee join is LEFT because assigned_to is nulled when that account
// is deleted.
const taskColumns = `
	t.id, t.title, t.description, t.due_date, t.assigned_to, t.assigned_by,
	t.complete, t.priority, t.status, t.created_at, t.updated_at,
	COALESCE(assigner.first_name || ' ' || assigner.last_name, ''),
	COALESCE(assignee.first_name || ' ' || assignee.last_name, '')
`

const taskFrom = `
	FROM tasks t
	JOIN users assigner ON assigner.id = t.assigned_by
	LEFT JOIN users assignee ON assignee.id = t.assigned_to
`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, the default logger is used.
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
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (title, description, due_date, assigned_to, assigned_by,
			complete, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.DueDate,
		assignedToValue(task),
		task.AssignedBy,
		task.Complete,
		task.Priority,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error("failed to create task",
			"assigned_by", task.AssignedBy,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		s.logger.Error("failed to get task by ID",
			"task_id", id,
			"error", err)
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, assigned_to = $4,
			complete = $5, priority = $6, status = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.DueDate,
		assignedToValue(task),
		task.Complete,
		task.Priority,
		task.Status,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error("failed to update task",
			"task_id", task.ID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		s.logger.Error("failed to delete task",
			"task_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	return nil
}

// ListByAssigner implements store.TaskStore.ListByAssigner
func (s *PostgresTaskStore) ListByAssigner(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.assigned_by = $1 ORDER BY t.id`
	return s.listTasks(ctx, query, userID)
}

// ListByAssignee implements store.TaskStore.ListByAssignee
func (s *PostgresTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.assigned_to = $1 ORDER BY t.id`
	return s.listTasks(ctx, query, userID)
}

// ListAll implements store.TaskStore.ListAll
func (s *PostgresTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` ORDER BY t.id`
	return s.listTasks(ctx, query)
}

// FindLatestAssignedBefore implements store.TaskStore.FindLatestAssignedBefore
func (s *PostgresTaskStore) FindLatestAssignedBefore(
	ctx context.Context,
	userID uuid.UUID,
	beforeID int64,
) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + `
		WHERE t.assigned_to = $1 AND t.id < $2
		ORDER BY t.id DESC
		LIMIT 1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, userID, beforeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		s.logger.Error("failed to find latest task before",
			"user_id", userID,
			"before_id", beforeID,
			"error", err)
		return nil, MapError(err)
	}

	return task, nil
}

// SearchByStatus implements store.TaskStore.SearchByStatus
func (s *PostgresTaskStore) SearchByStatus(ctx context.Context, keyword string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + `
		WHERE t.status ILIKE '%' || $1 || '%'
		ORDER BY t.id`
	return s.listTasks(ctx, query, keyword)
}

// SearchByAssignerFirstName implements store.TaskStore.SearchByAssignerFirstName
func (s *PostgresTaskStore) SearchByAssignerFirstName(ctx context.Context, keyword string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + `
		WHERE assigner.first_name ILIKE '%' || $1 || '%'
		ORDER BY t.id`
	return s.listTasks(ctx, query, keyword)
}

// SearchByDueDate implements store.TaskStore.SearchByDueDate
func (s *PostgresTaskStore) SearchByDueDate(ctx context.Context, keyword string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + `
		WHERE to_char(t.due_date, 'YYYY-MM-DD') LIKE '%' || $1 || '%'
		ORDER BY t.id`
	return s.listTasks(ctx, query, keyword)
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// listTasks runs a task select query and scans all rows.
func (s *PostgresTaskStore) listTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query tasks", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task       domain.Task
		assignedTo uuid.NullUUID
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&assignedTo,
		&task.AssignedBy,
		&task.Complete,
		&task.Priority,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.AssignerName,
		&task.AssigneeName,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.UUID
	}
	return &task, nil
}

// assignedToValue converts the optional assignee to a driver-friendly value.
func assignedToValue(task *domain.Task) uuid.NullUUID {
	if task.AssignedTo == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *task.AssignedTo, Valid: true}
}
