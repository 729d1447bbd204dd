package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	ErrEmptyTaskTitle       = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong     = errors.New("task title cannot exceed 50 characters")
	ErrEmptyTaskDescription = errors.New("task description cannot be empty")
	ErrDescriptionTooLong   = errors.New("task description cannot exceed 100 characters")
	ErrZeroDueDate          = errors.New("task due date must be set")
	ErrEmptyAssigner        = errors.New("task assigner cannot be empty")
	ErrInvalidPriority      = errors.New("invalid task priority")
	ErrInvalidStatus        = errors.New("invalid task status")
)

// TaskPriority enumerates the allowed task priorities.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
)

// IsValid reports whether the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityLow, PriorityMedium:
		return true
	}
	return false
}

// TaskStatus enumerates the allowed task statuses.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "inprogress"
	StatusCompleted  TaskStatus = "completed"
)

// IsValid reports whether the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a unit of work assigned by one user to another.
//
// IDs are assigned by the database in creation order; the completion
// sequencing rule and the notion of a user's "current" task are both
// defined over that ascending order.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"due_date"`
	AssignedTo  *uuid.UUID   `json:"assigned_to"` // nil after the assignee account is deleted
	AssignedBy  uuid.UUID    `json:"assigned_by"`
	Complete    bool         `json:"complete"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Display names denormalized by list queries. Not persisted.
	AssignerName string `json:"-"`
	AssigneeName string `json:"-"`
}

// NewTask creates a new Task assigned by assignedBy to assignedTo.
// The ID is zero until the task is persisted. New tasks start in progress
// with high priority unless overridden.
func NewTask(title, description string, dueDate time.Time, assignedTo, assignedBy uuid.UUID, priority TaskPriority) (*Task, error) {
	now := time.Now().UTC()
	assignee := assignedTo
	task := &Task{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		AssignedTo:  &assignee,
		AssignedBy:  assignedBy,
		Priority:    priority,
		Status:      StatusInProgress,
		Complete:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// SetStatus sets the task status and the derived completion flag.
// Returns ErrInvalidStatus for statuses outside the allowed set.
func (t *Task) SetStatus(status TaskStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	t.Status = status
	t.Complete = status == StatusCompleted
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > 50 {
		return ErrTaskTitleTooLong
	}
	if t.Description == "" {
		return ErrEmptyTaskDescription
	}
	if len(t.Description) > 100 {
		return ErrDescriptionTooLong
	}
	if t.DueDate.IsZero() {
		return ErrZeroDueDate
	}
	if t.AssignedBy == uuid.Nil {
		return ErrEmptyAssigner
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if t.Complete != (t.Status == StatusCompleted) {
		return ErrInvalidStatus
	}
	return nil
}
