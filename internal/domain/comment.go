package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Comment-specific validation errors
var (
	ErrEmptyCommentContent = errors.New("comment content cannot be empty")
	ErrEmptyCommentTask    = errors.New("comment task cannot be empty")
	ErrEmptyCommentAuthor  = errors.New("comment author cannot be empty")
)

// Comment is a free-text note attached to a task. Comments are immutable
// once created and are removed with their task or author.
type Comment struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	TaskID      int64     `json:"task_id"`
	CommentedBy uuid.UUID `json:"commented_by"`
	CreatedAt   time.Time `json:"created_at"`

	// AuthorName is denormalized by list queries for display. Not persisted.
	AuthorName string `json:"-"`
}

// NewComment creates a new Comment on the given task by the given author.
// The ID is zero until the comment is persisted.
func NewComment(taskID int64, commentedBy uuid.UUID, content string) (*Comment, error) {
	comment := &Comment{
		Content:     strings.TrimSpace(content),
		TaskID:      taskID,
		CommentedBy: commentedBy,
		CreatedAt:   time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.Content == "" {
		return ErrEmptyCommentContent
	}
	if c.TaskID <= 0 {
		return ErrEmptyCommentTask
	}
	if c.CommentedBy == uuid.Nil {
		return ErrEmptyCommentAuthor
	}
	return nil
}
