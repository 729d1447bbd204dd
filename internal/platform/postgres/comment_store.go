package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

// PostgresCommentStore implements the store.CommentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a new PostgreSQL implementation of the
// CommentStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, the default logger is used.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// Ensure PostgresCommentStore implements store.CommentStore interface
var _ store.CommentStore = (*PostgresCommentStore)(nil)

// Create implements store.CommentStore.Create
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if err := comment.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO comments (content, task_id, commented_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		comment.Content,
		comment.TaskID,
		comment.CommentedBy,
		comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		s.logger.Error("failed to create comment",
			"task_id", comment.TaskID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// ListByTask implements store.CommentStore.ListByTask
func (s *PostgresCommentStore) ListByTask(ctx context.Context, taskID int64) ([]*domain.Comment, error) {
	query := `
		SELECT c.id, c.content, c.task_id, c.commented_by, c.created_at,
			COALESCE(u.first_name || ' ' || u.last_name, '')
		FROM comments c
		JOIN users u ON u.id = c.commented_by
		WHERE c.task_id = $1
		ORDER BY c.id
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		s.logger.Error("failed to list comments",
			"task_id", taskID,
			"error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*domain.Comment
	for rows.Next() {
		var comment domain.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.TaskID,
			&comment.CommentedBy,
			&comment.CreatedAt,
			&comment.AuthorName,
		)
		if err != nil {
			return nil, MapError(err)
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return comments, nil
}

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{
		db:     tx,
		logger: s.logger,
	}
}
