package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/mail"
	"github.com/phrazzld/taskboard/internal/store"
)

// Notification subjects for the two mail-producing events.
const (
	subjectTaskAssigned = "New Task Assigned"
	subjectStatusUpdate = "Task Status Update"
)

// TaskInput carries the editable fields of a task, as collected by the
// create and edit forms.
type TaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	AssignedTo  uuid.UUID
	Priority    domain.TaskPriority
}

// TaskPartition splits a user's assigned tasks for the "my tasks" view:
// everything completed, the single lowest-ID incomplete task ("current"),
// and the remaining incomplete tasks. The three parts are disjoint and
// together cover every task assigned to the user.
type TaskPartition struct {
	Completed []*domain.Task
	Current   *domain.Task
	Upcoming  []*domain.Task
}

// TaskDetail bundles a task with its comments for the detail view.
type TaskDetail struct {
	Task     *domain.Task
	Comments []*domain.Comment
}

// TaskService provides the task workflow operations.
type TaskService interface {
	// Create stores a new task assigned by assignedBy and emails the
	// assignee. Returns store.ErrUserNotFound if the assignee does not
	// resolve.
	Create(ctx context.Context, assignedBy uuid.UUID, in TaskInput) (*domain.Task, error)

	// Get retrieves a single task.
	Get(ctx context.Context, taskID int64) (*domain.Task, error)

	// Edit performs a full-field update of the task's editable fields.
	Edit(ctx context.Context, taskID int64, in TaskInput) (*domain.Task, error)

	// Delete removes a task. Returns store.ErrTaskNotFound if it does
	// not exist.
	Delete(ctx context.Context, taskID int64) error

	// ListByAssigner returns the tasks the given user assigned to others.
	ListByAssigner(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListAll returns every task.
	ListAll(ctx context.Context) ([]*domain.Task, error)

	// MyTasks partitions the tasks assigned to the given user.
	MyTasks(ctx context.Context, userID uuid.UUID) (*TaskPartition, error)

	// UpdateStatus sets the status of a task assigned to userID, enforcing
	// completion in ascending task-ID order: if an earlier incomplete task
	// exists, the update is rejected with a *SequenceError naming it.
	// On success the task's assigner is notified by email.
	UpdateStatus(ctx context.Context, userID uuid.UUID, taskID int64, status domain.TaskStatus) (*domain.Task, error)

	// Detail returns a task together with its comments.
	Detail(ctx context.Context, taskID int64) (*TaskDetail, error)

	// AddComment attaches a comment by userID to the task.
	AddComment(ctx context.Context, taskID int64, userID uuid.UUID, content string) (*domain.Comment, error)

	// Search finds tasks by a tiered keyword match: status first, then
	// assigner first name, then due date. Each tier is tried only when the
	// previous one matched nothing. An empty keyword returns all tasks.
	Search(ctx context.Context, keyword string) ([]*domain.Task, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	db           *sql.DB
	taskStore    store.TaskStore
	userStore    store.UserStore
	commentStore store.CommentStore
	notifier     mail.Notifier
	logger       *slog.Logger

	// runTx wraps the sequencing check and status write in a transaction.
	// Injectable so tests can run the closure without a live database.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// Ensure TaskServiceImpl implements TaskService
var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// db may be nil only in tests that never call UpdateStatus.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	userStore store.UserStore,
	commentStore store.CommentStore,
	notifier mail.Notifier,
	logger *slog.Logger,
) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	s := &TaskServiceImpl{
		db:           db,
		taskStore:    taskStore,
		userStore:    userStore,
		commentStore: commentStore,
		notifier:     notifier,
		logger:       logger.With("component", "task_service"),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s
}

// Create implements TaskService.Create
func (s *TaskServiceImpl) Create(ctx context.Context, assignedBy uuid.UUID, in TaskInput) (*domain.Task, error) {
	assignee, err := s.userStore.GetByID(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}
	assigner, err := s.userStore.GetByID(ctx, assignedBy)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(in.Title, in.Description, in.DueDate, assignee.ID, assigner.ID, in.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			"error", err,
			"assigned_by", assignedBy)
		return nil, err
	}

	// Fire-and-forget: the task is already persisted, a failed
	// notification must not fail the request.
	body := fmt.Sprintf(
		"Task: %s, Description: %s, Assigned By: %s, Priority: %s, Due Date: %s",
		task.Title,
		task.Description,
		assigner.Email,
		task.Priority,
		task.DueDate.Format("2006-01-02"),
	)
	if err := s.notifier.Send(ctx, assignee.Email, subjectTaskAssigned, body); err != nil {
		s.logger.Warn("failed to send task assignment notification",
			"error", err,
			"task_id", task.ID)
	}

	s.logger.Info("created task",
		"task_id", task.ID,
		"assigned_by", assigner.ID,
		"assigned_to", assignee.ID)
	return task, nil
}

// Get implements TaskService.Get
func (s *TaskServiceImpl) Get(ctx context.Context, taskID int64) (*domain.Task, error) {
	return s.taskStore.GetByID(ctx, taskID)
}

// Edit implements TaskService.Edit
func (s *TaskServiceImpl) Edit(ctx context.Context, taskID int64, in TaskInput) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.userStore.GetByID(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.AssignedTo = &assignee.ID
	task.Priority = in.Priority
	task.UpdatedAt = time.Now().UTC()

	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, err
	}

	return task, nil
}

// Delete implements TaskService.Delete
func (s *TaskServiceImpl) Delete(ctx context.Context, taskID int64) error {
	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to delete task",
				"error", err,
				"task_id", taskID)
		}
		return err
	}
	s.logger.Info("deleted task", "task_id", taskID)
	return nil
}

// ListByAssigner implements TaskService.ListByAssigner
func (s *TaskServiceImpl) ListByAssigner(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.taskStore.ListByAssigner(ctx, userID)
}

// ListAll implements TaskService.ListAll
func (s *TaskServiceImpl) ListAll(ctx context.Context) ([]*domain.Task, error) {
	return s.taskStore.ListAll(ctx)
}

// MyTasks implements TaskService.MyTasks
func (s *TaskServiceImpl) MyTasks(ctx context.Context, userID uuid.UUID) (*TaskPartition, error) {
	tasks, err := s.taskStore.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}

	// tasks arrive ordered by ascending ID; the first incomplete one is
	// the user's current task.
	partition := &TaskPartition{}
	for _, task := range tasks {
		switch {
		case task.Complete:
			partition.Completed = append(partition.Completed, task)
		case partition.Current == nil:
			partition.Current = task
		default:
			partition.Upcoming = append(partition.Upcoming, task)
		}
	}

	return partition, nil
}

// UpdateStatus implements TaskService.UpdateStatus
//
// The sequencing check and the write happen in one transaction so two
// concurrent updates cannot both pass the check against stale state.
func (s *TaskServiceImpl) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	taskID int64,
	status domain.TaskStatus,
) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, domain.ErrInvalidStatus)
	}

	var updated *domain.Task
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := s.taskStore.WithTx(tx)

		task, err := taskStore.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.AssignedTo == nil || *task.AssignedTo != userID {
			return ErrNotTaskAssignee
		}

		// The most recent earlier task assigned to this user must be
		// complete before this one can move.
		previous, err := taskStore.FindLatestAssignedBefore(ctx, userID, task.ID)
		if err != nil && !errors.Is(err, store.ErrTaskNotFound) {
			return err
		}
		if previous != nil && !previous.Complete {
			return &SequenceError{BlockingTitle: previous.Title}
		}

		if err := task.SetStatus(status); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if err := taskStore.Update(ctx, task); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	if assigner, err := s.userStore.GetByID(ctx, updated.AssignedBy); err != nil {
		s.logger.Warn("failed to resolve assigner for notification",
			"error", err,
			"task_id", updated.ID)
	} else {
		body := fmt.Sprintf("The task %s is %s", updated.Title, updated.Status)
		if err := s.notifier.Send(ctx, assigner.Email, subjectStatusUpdate, body); err != nil {
			s.logger.Warn("failed to send status update notification",
				"error", err,
				"task_id", updated.ID)
		}
	}

	s.logger.Info("updated task status",
		"task_id", updated.ID,
		"status", updated.Status)
	return updated, nil
}

// Detail implements TaskService.Detail
func (s *TaskServiceImpl) Detail(ctx context.Context, taskID int64) (*TaskDetail, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentStore.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &TaskDetail{Task: task, Comments: comments}, nil
}

// AddComment implements TaskService.AddComment
func (s *TaskServiceImpl) AddComment(
	ctx context.Context,
	taskID int64,
	userID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	// The task must exist; commenting on a deleted task is a NotFound.
	if _, err := s.taskStore.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(taskID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.commentStore.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			"error", err,
			"task_id", taskID)
		return nil, err
	}

	return comment, nil
}

// Search implements TaskService.Search
//
// The tiers are an exclusive cascade: a status hit returns immediately even
// if the other tiers would also have matched.
func (s *TaskServiceImpl) Search(ctx context.Context, keyword string) ([]*domain.Task, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.taskStore.ListAll(ctx)
	}

	byStatus, err := s.taskStore.SearchByStatus(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(byStatus) > 0 {
		return byStatus, nil
	}

	byAssigner, err := s.taskStore.SearchByAssignerFirstName(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(byAssigner) > 0 {
		return byAssigner, nil
	}

	return s.taskStore.SearchByDueDate(ctx, keyword)
}
