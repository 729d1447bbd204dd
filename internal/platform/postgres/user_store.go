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

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, the default logger is used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	query := `
		INSERT INTO users (id, email, first_name, last_name, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		s.logger.Error("failed to create user",
			"user_id", user.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, first_name, last_name, hashed_password, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		s.logger.Error("failed to get user by ID",
			"user_id", id,
			"error", err)
		return nil, MapError(err)
	}

	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, first_name, last_name, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		s.logger.Error("failed to get user by email",
			"error", err)
		return nil, MapError(err)
	}

	return user, nil
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, email, first_name, last_name, hashed_password, created_at, updated_at
		FROM users
		ORDER BY first_name, last_name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, MapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return users, nil
}

// Delete implements store.UserStore.Delete
//
// The schema's foreign key actions carry out the cascade semantics:
// tasks assigned to the user keep existing with assigned_to set to NULL,
// tasks assigned by the user are deleted, and the user's comments are
// deleted.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		s.logger.Error("failed to delete user",
			"user_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return store.ErrUserNotFound
	}

	return nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
