package web

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service"
)

// stubUserService is a configurable service.UserService for handler tests.
type stubUserService struct {
	registerFn     func(ctx context.Context, email, firstName, lastName, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	listUsersFn    func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, email, firstName, lastName, password string) (*domain.User, error) {
	return s.registerFn(ctx, email, firstName, lastName, password)
}

func (s *stubUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if s.listUsersFn != nil {
		return s.listUsersFn(ctx)
	}
	return nil, nil
}

func (s *stubUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return nil
}

// stubTaskService is a configurable service.TaskService for handler tests.
type stubTaskService struct {
	createFn         func(ctx context.Context, assignedBy uuid.UUID, in service.TaskInput) (*domain.Task, error)
	getFn            func(ctx context.Context, taskID int64) (*domain.Task, error)
	deleteFn         func(ctx context.Context, taskID int64) error
	listByAssignerFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	searchFn         func(ctx context.Context, keyword string) ([]*domain.Task, error)
	updateStatusFn   func(ctx context.Context, userID uuid.UUID, taskID int64, status domain.TaskStatus) (*domain.Task, error)
	myTasksFn        func(ctx context.Context, userID uuid.UUID) (*service.TaskPartition, error)
	detailFn         func(ctx context.Context, taskID int64) (*service.TaskDetail, error)
}

func (s *stubTaskService) Create(ctx context.Context, assignedBy uuid.UUID, in service.TaskInput) (*domain.Task, error) {
	return s.createFn(ctx, assignedBy, in)
}

func (s *stubTaskService) Get(ctx context.Context, taskID int64) (*domain.Task, error) {
	return s.getFn(ctx, taskID)
}

func (s *stubTaskService) Edit(ctx context.Context, taskID int64, in service.TaskInput) (*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskService) Delete(ctx context.Context, taskID int64) error {
	return s.deleteFn(ctx, taskID)
}

func (s *stubTaskService) ListByAssigner(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.listByAssignerFn(ctx, userID)
}

func (s *stubTaskService) ListAll(ctx context.Context) ([]*domain.Task, error) {
	return nil, nil
}

func (s *stubTaskService) MyTasks(ctx context.Context, userID uuid.UUID) (*service.TaskPartition, error) {
	return s.myTasksFn(ctx, userID)
}

func (s *stubTaskService) UpdateStatus(ctx context.Context, userID uuid.UUID, taskID int64, status domain.TaskStatus) (*domain.Task, error) {
	return s.updateStatusFn(ctx, userID, taskID, status)
}

func (s *stubTaskService) Detail(ctx context.Context, taskID int64) (*service.TaskDetail, error) {
	return s.detailFn(ctx, taskID)
}

func (s *stubTaskService) AddComment(ctx context.Context, taskID int64, userID uuid.UUID, content string) (*domain.Comment, error) {
	return nil, nil
}

func (s *stubTaskService) Search(ctx context.Context, keyword string) ([]*domain.Task, error) {
	return s.searchFn(ctx, keyword)
}
