package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotTaskAssignee is returned when a user attempts to update the
	// status of a task that is not assigned to them.
	ErrNotTaskAssignee = errors.New("task is not assigned to this user")
)

// SequenceError is returned when a status update is rejected because an
// earlier task assigned to the same user has not been completed yet.
// Tasks must be completed in ascending ID (creation) order.
type SequenceError struct {
	// BlockingTitle is the title of the most recent earlier task that is
	// still incomplete.
	BlockingTitle string
}

// Error implements the error interface for SequenceError.
func (e *SequenceError) Error() string {
	return fmt.Sprintf(
		"You cannot update this task until the previous task '%s' is completed",
		e.BlockingTitle,
	)
}

// IsSequenceError checks whether the error is a sequencing rejection.
func IsSequenceError(err error) bool {
	var seqErr *SequenceError
	return errors.As(err, &seqErr)
}
