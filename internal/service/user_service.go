package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// UserService provides user account operations.
type UserService interface {
	// Register creates a new user with a hashed password.
	// Returns store.ErrEmailExists if the email is already taken.
	Register(ctx context.Context, email, firstName, lastName, password string) (*domain.User, error)

	// Authenticate verifies the email/password pair.
	// Returns auth.ErrInvalidCredentials when either is wrong; the caller
	// cannot distinguish an unknown email from a bad password.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns all users, for assignee selection.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// DeleteUser removes a user account. Tasks assigned to the user are
	// kept with the assignee cleared; tasks and comments the user authored
	// are removed.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// Ensure UserServiceImpl implements UserService
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With("component", "user_service"),
	}
}

// Register implements UserService.Register
func (s *UserServiceImpl) Register(
	ctx context.Context,
	email, firstName, lastName, password string,
) (*domain.User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, domain.ErrEmptyPassword)
	}

	user, err := domain.NewUser(email, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			"error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("registered new user", "user_id", user.ID)
	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers implements UserService.ListUsers
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// DeleteUser implements UserService.DeleteUser
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.Delete(ctx, userID); err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to delete user",
				"error", err,
				"user_id", userID)
		}
		return err
	}
	s.logger.Info("deleted user", "user_id", userID)
	return nil
}
