package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

func testUser(t *testing.T, email, firstName string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, firstName, "Tester")
	require.NoError(t, err)
	user.HashedPassword = "hashed:password"
	return user
}

func testTask(id int64, assignee, assigner uuid.UUID, complete bool) *domain.Task {
	assigneeID := assignee
	status := domain.StatusInProgress
	if complete {
		status = domain.StatusCompleted
	}
	return &domain.Task{
		ID:          id,
		Title:       "Task " + string(rune('A'+id-1)),
		Description: "description",
		DueDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		AssignedTo:  &assigneeID,
		AssignedBy:  assigner,
		Complete:    complete,
		Priority:    domain.PriorityHigh,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// newTestTaskService wires a TaskService over mocks, with the transaction
// wrapper replaced by a direct call so no database is needed.
func newTestTaskService(
	taskStore *mockTaskStore,
	userStore *mockUserStore,
	commentStore *mockCommentStore,
	notifier *mockNotifier,
) *TaskServiceImpl {
	svc := NewTaskService(nil, taskStore, userStore, commentStore, notifier, nil)
	svc.runTx = func(ctx context.Context, fn store.TxFn) error {
		return fn(ctx, (*sql.Tx)(nil))
	}
	return svc
}

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := testUser(t, "boss@example.com", "Boss")
	assignee := testUser(t, "worker@example.com", "Worker")

	input := TaskInput{
		Title:       "Prepare slides",
		Description: "For the review meeting",
		DueDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		AssignedTo:  assignee.ID,
		Priority:    domain.PriorityMedium,
	}

	t.Run("persists task and notifies assignee once", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore()
		notifier := &mockNotifier{}
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), notifier)

		task, err := svc.Create(ctx, assigner.ID, input)
		require.NoError(t, err)

		assert.NotZero(t, task.ID)
		assert.Equal(t, assigner.ID, task.AssignedBy)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, assignee.ID, *task.AssignedTo)
		assert.Equal(t, domain.StatusInProgress, task.Status)
		assert.False(t, task.Complete)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, assignee.Email, notifier.sent[0].To)
		assert.Equal(t, "New Task Assigned", notifier.sent[0].Subject)
		assert.Contains(t, notifier.sent[0].Body, "Prepare slides")
		assert.Contains(t, notifier.sent[0].Body, assigner.Email)
		assert.Contains(t, notifier.sent[0].Body, "2026-10-01")
	})

	t.Run("unknown assignee creates nothing", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore()
		notifier := &mockNotifier{}
		svc := newTestTaskService(taskStore, newMockUserStore(assigner), newMockCommentStore(), notifier)

		_, err := svc.Create(ctx, assigner.ID, input)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.Empty(t, taskStore.tasks)
		assert.Empty(t, notifier.sent)
	})

	t.Run("notification failure does not fail the create", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore()
		notifier := &mockNotifier{sendErr: assert.AnError}
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), notifier)

		task, err := svc.Create(ctx, assigner.ID, input)
		require.NoError(t, err)
		assert.NotZero(t, task.ID)
	})
}

func TestTaskServiceMyTasks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := uuid.New()
	assignee := uuid.New()

	t.Run("partitions into completed, current, upcoming", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(
			testTask(1, assignee, assigner, true),
			testTask(2, assignee, assigner, false),
			testTask(3, assignee, assigner, false),
			testTask(4, assignee, assigner, true),
			testTask(5, assignee, assigner, false),
		)
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		partition, err := svc.MyTasks(ctx, assignee)
		require.NoError(t, err)

		require.Len(t, partition.Completed, 2)
		assert.Equal(t, int64(1), partition.Completed[0].ID)
		assert.Equal(t, int64(4), partition.Completed[1].ID)

		require.NotNil(t, partition.Current)
		assert.Equal(t, int64(2), partition.Current.ID)

		require.Len(t, partition.Upcoming, 2)
		assert.Equal(t, int64(3), partition.Upcoming[0].ID)
		assert.Equal(t, int64(5), partition.Upcoming[1].ID)
	})

	t.Run("no incomplete tasks means no current", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee, assigner, true))
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		partition, err := svc.MyTasks(ctx, assignee)
		require.NoError(t, err)
		assert.Nil(t, partition.Current)
		assert.Empty(t, partition.Upcoming)
		assert.Len(t, partition.Completed, 1)
	})

	t.Run("no tasks at all", func(t *testing.T) {
		t.Parallel()

		svc := newTestTaskService(newMockTaskStore(), newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		partition, err := svc.MyTasks(ctx, assignee)
		require.NoError(t, err)
		assert.Empty(t, partition.Completed)
		assert.Nil(t, partition.Current)
		assert.Empty(t, partition.Upcoming)
	})
}

func TestTaskServiceUpdateStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := testUser(t, "boss@example.com", "Boss")
	assignee := testUser(t, "worker@example.com", "Worker")

	t.Run("blocked by earlier incomplete task", func(t *testing.T) {
		t.Parallel()

		blocking := testTask(1, assignee.ID, assigner.ID, false)
		blocking.Title = "Write the outline"
		target := testTask(2, assignee.ID, assigner.ID, false)

		taskStore := newMockTaskStore(blocking, target)
		notifier := &mockNotifier{}
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), notifier)

		_, err := svc.UpdateStatus(ctx, assignee.ID, 2, domain.StatusCompleted)
		require.Error(t, err)
		assert.True(t, IsSequenceError(err))
		assert.Equal(t,
			"You cannot update this task until the previous task 'Write the outline' is completed",
			err.Error())

		// Nothing changed, nobody notified.
		assert.Zero(t, taskStore.updateCalls)
		assert.Empty(t, notifier.sent)
		stored, err := taskStore.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, stored.Status)
	})

	t.Run("allowed when earlier task is complete", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(
			testTask(1, assignee.ID, assigner.ID, true),
			testTask(2, assignee.ID, assigner.ID, false),
		)
		notifier := &mockNotifier{}
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), notifier)

		updated, err := svc.UpdateStatus(ctx, assignee.ID, 2, domain.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		assert.True(t, updated.Complete)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, assigner.Email, notifier.sent[0].To)
		assert.Equal(t, "Task Status Update", notifier.sent[0].Subject)
		assert.Contains(t, notifier.sent[0].Body, "completed")
	})

	t.Run("first task has no predecessor", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee.ID, assigner.ID, false))
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), &mockNotifier{})

		updated, err := svc.UpdateStatus(ctx, assignee.ID, 1, domain.StatusCompleted)
		require.NoError(t, err)
		assert.True(t, updated.Complete)
	})

	t.Run("tasks of other users do not block", func(t *testing.T) {
		t.Parallel()

		other := uuid.New()
		taskStore := newMockTaskStore(
			testTask(1, other, assigner.ID, false),
			testTask(2, assignee.ID, assigner.ID, false),
		)
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), &mockNotifier{})

		_, err := svc.UpdateStatus(ctx, assignee.ID, 2, domain.StatusCompleted)
		assert.NoError(t, err)
	})

	t.Run("only the assignee may update", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee.ID, assigner.ID, false))
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), newMockCommentStore(), &mockNotifier{})

		_, err := svc.UpdateStatus(ctx, assigner.ID, 1, domain.StatusCompleted)
		assert.ErrorIs(t, err, ErrNotTaskAssignee)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		svc := newTestTaskService(newMockTaskStore(), newMockUserStore(assigner, assignee), newMockCommentStore(), &mockNotifier{})

		_, err := svc.UpdateStatus(ctx, assignee.ID, 99, domain.StatusCompleted)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		svc := newTestTaskService(newMockTaskStore(), newMockUserStore(assigner, assignee), newMockCommentStore(), &mockNotifier{})

		_, err := svc.UpdateStatus(ctx, assignee.ID, 1, domain.TaskStatus("done"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTaskServiceSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := uuid.New()
	assignee := uuid.New()

	t.Run("status hit short-circuits later tiers", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore()
		taskStore.statusResults = []*domain.Task{testTask(1, assignee, assigner, false)}
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		results, err := svc.Search(ctx, "progress")
		require.NoError(t, err)
		assert.Len(t, results, 1)

		assert.Equal(t, 1, taskStore.searchStatusCalls)
		assert.Zero(t, taskStore.searchAssignerCalls)
		assert.Zero(t, taskStore.searchDueDateCalls)
	})

	t.Run("falls through to assigner name", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore()
		taskStore.statusResults = []*domain.Task{}
		taskStore.assignerResults = []*domain.Task{testTask(1, assignee, assigner, false)}
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		results, err := svc.Search(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, results, 1)

		assert.Equal(t, 1, taskStore.searchStatusCalls)
		assert.Equal(t, 1, taskStore.searchAssignerCalls)
		assert.Zero(t, taskStore.searchDueDateCalls)
	})

	t.Run("falls through to due date", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore()
		taskStore.statusResults = []*domain.Task{}
		taskStore.assignerResults = nil
		taskStore.dueDateResults = []*domain.Task{testTask(1, assignee, assigner, false)}
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		results, err := svc.Search(ctx, "2026-10")
		require.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, 1, taskStore.searchDueDateCalls)
	})

	t.Run("empty keyword returns all tasks", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(
			testTask(1, assignee, assigner, false),
			testTask(2, assignee, assigner, true),
		)
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		results, err := svc.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Len(t, results, 2)
		assert.Zero(t, taskStore.searchStatusCalls)
	})
}

func TestTaskServiceDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := uuid.New()
	assignee := uuid.New()

	t.Run("removes the task", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee, assigner, false))
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		require.NoError(t, svc.Delete(ctx, 1))
		_, err := taskStore.GetByID(ctx, 1)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		svc := newTestTaskService(newMockTaskStore(), newMockUserStore(), newMockCommentStore(), &mockNotifier{})
		assert.ErrorIs(t, svc.Delete(ctx, 42), store.ErrTaskNotFound)
	})
}

func TestTaskServiceComments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := testUser(t, "boss@example.com", "Boss")
	assignee := testUser(t, "worker@example.com", "Worker")

	t.Run("adds comment and returns it in detail", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee.ID, assigner.ID, false))
		commentStore := newMockCommentStore()
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee), commentStore, &mockNotifier{})

		comment, err := svc.AddComment(ctx, 1, assignee.ID, "on it")
		require.NoError(t, err)
		assert.NotZero(t, comment.ID)

		detail, err := svc.Detail(ctx, 1)
		require.NoError(t, err)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "on it", detail.Comments[0].Content)
	})

	t.Run("commenting on a missing task fails", func(t *testing.T) {
		t.Parallel()

		svc := newTestTaskService(newMockTaskStore(), newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		_, err := svc.AddComment(ctx, 99, assignee.ID, "hello")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("empty comment is rejected", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee.ID, assigner.ID, false))
		svc := newTestTaskService(taskStore, newMockUserStore(), newMockCommentStore(), &mockNotifier{})

		_, err := svc.AddComment(ctx, 1, assignee.ID, "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTaskServiceEdit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assigner := testUser(t, "boss@example.com", "Boss")
	assignee := testUser(t, "worker@example.com", "Worker")
	other := testUser(t, "other@example.com", "Other")

	t.Run("updates every editable field", func(t *testing.T) {
		t.Parallel()

		taskStore := newMockTaskStore(testTask(1, assignee.ID, assigner.ID, false))
		svc := newTestTaskService(taskStore, newMockUserStore(assigner, assignee, other), newMockCommentStore(), &mockNotifier{})

		updated, err := svc.Edit(ctx, 1, TaskInput{
			Title:       "New title",
			Description: "New description",
			DueDate:     time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC),
			AssignedTo:  other.ID,
			Priority:    domain.PriorityLow,
		})
		require.NoError(t, err)

		assert.Equal(t, "New title", updated.Title)
		require.NotNil(t, updated.AssignedTo)
		assert.Equal(t, other.ID, *updated.AssignedTo)
		assert.Equal(t, domain.PriorityLow, updated.Priority)

		stored, err := taskStore.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "New title", stored.Title)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		svc := newTestTaskService(newMockTaskStore(), newMockUserStore(assigner), newMockCommentStore(), &mockNotifier{})

		_, err := svc.Edit(ctx, 5, TaskInput{AssignedTo: assigner.ID})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}
