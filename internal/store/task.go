package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// All list methods return tasks ordered by ascending ID (creation order)
// with the assigner and assignee display names populated.
type TaskStore interface {
	// Create saves a new task and assigns its ID from the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update performs a full-field update of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID. Comments on the task are removed
	// with it.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// ListByAssigner returns all tasks assigned by the given user.
	ListByAssigner(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListByAssignee returns all tasks assigned to the given user.
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListAll returns every task.
	ListAll(ctx context.Context) ([]*domain.Task, error)

	// FindLatestAssignedBefore returns the task with the highest ID among
	// tasks assigned to userID with an ID strictly less than beforeID.
	// Returns ErrTaskNotFound when no such task exists.
	FindLatestAssignedBefore(ctx context.Context, userID uuid.UUID, beforeID int64) (*domain.Task, error)

	// SearchByStatus returns tasks whose status contains the keyword,
	// case-insensitively.
	SearchByStatus(ctx context.Context, keyword string) ([]*domain.Task, error)

	// SearchByAssignerFirstName returns tasks whose assigner's first name
	// contains the keyword, case-insensitively.
	SearchByAssignerFirstName(ctx context.Context, keyword string) ([]*domain.Task, error)

	// SearchByDueDate returns tasks whose due date's YYYY-MM-DD form
	// contains the keyword.
	SearchByDueDate(ctx context.Context, keyword string) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
