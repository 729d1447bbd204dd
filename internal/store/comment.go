package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskboard/internal/domain"
)

// CommentStore defines the interface for comment data persistence.
// Comments are immutable: there is no update or single-delete path.
type CommentStore interface {
	// Create saves a new comment and assigns its ID from the store.
	// Returns validation errors from the domain Comment if data is invalid.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByTask returns all comments on the given task in creation order,
	// with author display names populated.
	ListByTask(ctx context.Context, taskID int64) ([]*domain.Comment, error)

	// WithTx returns a new CommentStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CommentStore
}
