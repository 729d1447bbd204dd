package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

// mockUserStore is an in-memory UserStore for service tests.
type mockUserStore struct {
	users map[uuid.UUID]*domain.User

	createErr   error
	createCalls int
}

func newMockUserStore(users ...*domain.User) *mockUserStore {
	m := &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FirstName < users[j].FirstName })
	return users, nil
}

func (m *mockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockTaskStore is an in-memory TaskStore. Tasks are kept ordered by
// ascending ID, matching the store contract. Search tier calls are counted
// so tests can assert the cascade short-circuits.
type mockTaskStore struct {
	tasks  []*domain.Task
	nextID int64

	updateCalls         int
	searchStatusCalls   int
	searchAssignerCalls int
	searchDueDateCalls  int
	statusResults       []*domain.Task
	assignerResults     []*domain.Task
	dueDateResults      []*domain.Task
}

func newMockTaskStore(tasks ...*domain.Task) *mockTaskStore {
	m := &mockTaskStore{nextID: 1}
	for _, task := range tasks {
		if task.ID >= m.nextID {
			m.nextID = task.ID + 1
		}
		m.tasks = append(m.tasks, task)
	}
	sort.Slice(m.tasks, func(i, j int) bool { return m.tasks[i].ID < m.tasks[j].ID })
	return m
}

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	task.ID = m.nextID
	m.nextID++
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	for _, task := range m.tasks {
		if task.ID == id {
			copied := *task
			return &copied, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.updateCalls++
	for i, existing := range m.tasks {
		if existing.ID == task.ID {
			copied := *task
			m.tasks[i] = &copied
			return nil
		}
	}
	return store.ErrTaskNotFound
}

func (m *mockTaskStore) Delete(ctx context.Context, id int64) error {
	for i, task := range m.tasks {
		if task.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrTaskNotFound
}

func (m *mockTaskStore) ListByAssigner(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.AssignedBy == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.AssignedTo != nil && *task.AssignedTo == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	return append([]*domain.Task(nil), m.tasks...), nil
}

func (m *mockTaskStore) FindLatestAssignedBefore(ctx context.Context, userID uuid.UUID, beforeID int64) (*domain.Task, error) {
	var latest *domain.Task
	for _, task := range m.tasks {
		if task.AssignedTo == nil || *task.AssignedTo != userID || task.ID >= beforeID {
			continue
		}
		if latest == nil || task.ID > latest.ID {
			latest = task
		}
	}
	if latest == nil {
		return nil, store.ErrTaskNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *mockTaskStore) SearchByStatus(ctx context.Context, keyword string) ([]*domain.Task, error) {
	m.searchStatusCalls++
	if m.statusResults != nil {
		return m.statusResults, nil
	}
	var out []*domain.Task
	for _, task := range m.tasks {
		if strings.Contains(strings.ToLower(string(task.Status)), strings.ToLower(keyword)) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockTaskStore) SearchByAssignerFirstName(ctx context.Context, keyword string) ([]*domain.Task, error) {
	m.searchAssignerCalls++
	return m.assignerResults, nil
}

func (m *mockTaskStore) SearchByDueDate(ctx context.Context, keyword string) ([]*domain.Task, error) {
	m.searchDueDateCalls++
	return m.dueDateResults, nil
}

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

// mockCommentStore is an in-memory CommentStore.
type mockCommentStore struct {
	comments []*domain.Comment
	nextID   int64
}

func newMockCommentStore() *mockCommentStore {
	return &mockCommentStore{nextID: 1}
}

func (m *mockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	comment.ID = m.nextID
	m.nextID++
	m.comments = append(m.comments, comment)
	return nil
}

func (m *mockCommentStore) ListByTask(ctx context.Context, taskID int64) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, comment := range m.comments {
		if comment.TaskID == taskID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (m *mockCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return m }

// sentMail records one Notifier.Send call.
type sentMail struct {
	To      string
	Subject string
	Body    string
}

// mockNotifier records notifications instead of sending them.
type mockNotifier struct {
	sent    []sentMail
	sendErr error
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return m.sendErr
}

// mockHasher is a deterministic PasswordHasher/PasswordVerifier.
type mockHasher struct {
	hashErr error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errMockPasswordMismatch
	}
	return nil
}

var errMockPasswordMismatch = domain.ErrUnauthorized
