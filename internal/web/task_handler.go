package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/store"
)

// TaskHandler handles every task-facing route: listing, create/edit/delete,
// the assignee's status workflow, details with comments, and search.
type TaskHandler struct {
	tasks     service.TaskService
	users     service.UserService
	renderer  *Renderer
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(
	tasks service.TaskService,
	users service.UserService,
	renderer *Renderer,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:     tasks,
		users:     users,
		renderer:  renderer,
		validator: validator.New(),
		logger:    logger.With("component", "task_handler"),
	}
}

// taskListData is the template data for pages that show a plain task list.
type taskListData struct {
	baseData
	Tasks   []*domain.Task
	Keyword string
}

// Home handles GET/POST /: the tasks the current user assigned to others.
// Anonymous visitors see the landing page with a login hint instead of a
// redirect.
func (h *TaskHandler) Home(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		data := taskListData{baseData: h.base(w, r)}
		data.Error = "You need to log in first"
		h.renderer.Render(w, http.StatusOK, "index.html", data)
		return
	}

	tasks, err := h.tasks.ListByAssigner(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "index.html", taskListData{
		baseData: h.base(w, r),
		Tasks:    tasks,
	})
}

// taskFormData is the template data for the create/edit form.
type taskFormData struct {
	baseData
	Form    *TaskForm
	Users   []*domain.User
	Editing bool
}

// CreatePage handles GET /create/.
func (h *TaskHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderTaskForm(w, r, &TaskForm{Priority: string(domain.PriorityHigh)}, false, "")
}

// Create handles POST /create/.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	form := parseTaskForm(r)
	input, ok := form.ToInput(h.validator)
	if !ok {
		h.renderTaskForm(w, r, form, false, "Try again")
		return
	}

	if _, err := h.tasks.Create(r.Context(), userID, input); err != nil {
		if !store.IsNotFoundError(err) && !errors.Is(err, domain.ErrValidation) {
			h.logger.Error("failed to create task", "error", err)
		}
		h.renderTaskForm(w, r, form, false, "Try again")
		return
	}

	setFlash(w, FlashSuccess, "Task created successfully")
	http.Redirect(w, r, "/", http.StatusFound)
}

// EditPage handles GET /edit/{task_id}/.
func (h *TaskHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.renderTaskForm(w, r, taskFormFrom(task), true, "")
}

// Edit handles POST /edit/{task_id}/: a full-field update.
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err != nil {
		h.taskNotFound(w, r)
		return
	}

	form := parseTaskForm(r)
	input, ok := form.ToInput(h.validator)
	if !ok {
		h.renderTaskForm(w, r, form, true, "Try again")
		return
	}

	if _, err := h.tasks.Edit(r.Context(), taskID, input); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			h.taskNotFound(w, r)
			return
		}
		if errors.Is(err, store.ErrUserNotFound) {
			h.renderTaskForm(w, r, form, true, "Try again")
			return
		}
		h.logger.Error("failed to edit task", "error", err, "task_id", taskID)
		h.renderTaskForm(w, r, form, true, "Try again")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Delete handles POST /delete/{task_id}/.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err == nil {
		err = h.tasks.Delete(r.Context(), taskID)
	}

	switch {
	case err == nil:
		setFlash(w, FlashSuccess, "Task deleted successfully")
	case errors.Is(err, store.ErrTaskNotFound), errors.Is(err, domain.ErrInvalidID):
		setFlash(w, FlashError, "item does not exist")
	default:
		h.logger.Error("failed to delete task", "error", err, "task_id", taskID)
		setFlash(w, FlashError, "item does not exist")
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// myTaskData is the template data for the assignee's task list.
type myTaskData struct {
	baseData
	Partition *service.TaskPartition
}

// MyTasks handles GET /mytask/.
func (h *TaskHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	partition, err := h.tasks.MyTasks(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "my_task.html", myTaskData{
		baseData:  h.base(w, r),
		Partition: partition,
	})
}

// statusData is the template data for the status update form.
type statusData struct {
	baseData
	Task *domain.Task
	Form *StatusForm
}

// UpdateStatusPage handles GET /update-task/{task_id}.
func (h *TaskHandler) UpdateStatusPage(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	h.renderer.Render(w, http.StatusOK, "update_mytask.html", statusData{
		baseData: h.base(w, r),
		Task:     task,
		Form:     &StatusForm{Status: string(task.Status)},
	})
}

// UpdateStatus handles POST /update-task/{task_id}, enforcing the
// completion-order rule via the task service.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.taskNotFound(w, r)
		return
	}

	form := parseStatusForm(r)
	if err := h.validator.Struct(form); err != nil {
		h.rerenderStatusForm(w, r, taskID, form, "Try again")
		return
	}

	_, err = h.tasks.UpdateStatus(r.Context(), userID, taskID, domain.TaskStatus(form.Status))
	switch {
	case err == nil:
		http.Redirect(w, r, "/mytask/", http.StatusFound)
	case service.IsSequenceError(err):
		h.rerenderStatusForm(w, r, taskID, form, err.Error())
	case errors.Is(err, store.ErrTaskNotFound):
		h.taskNotFound(w, r)
	case errors.Is(err, service.ErrNotTaskAssignee):
		setFlash(w, FlashError, "You can only update tasks assigned to you")
		http.Redirect(w, r, "/mytask/", http.StatusFound)
	default:
		h.logger.Error("failed to update task status", "error", err, "task_id", taskID)
		h.rerenderStatusForm(w, r, taskID, form, "Try again")
	}
}

// detailData is the template data for the task detail page.
type detailData struct {
	baseData
	Task     *domain.Task
	Comments []*domain.Comment
	Form     *CommentForm
}

// Detail handles GET /detail/{task_id}.
func (h *TaskHandler) Detail(w http.ResponseWriter, r *http.Request) {
	h.renderDetail(w, r, &CommentForm{}, "")
}

// Comment handles POST /detail/{task_id}: attach a comment to the task.
func (h *TaskHandler) Comment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		h.taskNotFound(w, r)
		return
	}

	form := parseCommentForm(r)
	if err := h.validator.Struct(form); err != nil {
		h.renderDetail(w, r, form, "Comment cannot be empty")
		return
	}

	if _, err := h.tasks.AddComment(r.Context(), taskID, userID, form.Content); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			h.taskNotFound(w, r)
			return
		}
		h.logger.Error("failed to add comment", "error", err, "task_id", taskID)
		h.renderDetail(w, r, form, "Try again")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Search handles GET /search/?keyword=.
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	tasks, err := h.tasks.Search(r.Context(), keyword)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "all_task.html", taskListData{
		baseData: h.base(w, r),
		Tasks:    tasks,
		Keyword:  keyword,
	})
}

// AllTasks handles GET /tasks.
func (h *TaskHandler) AllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "all_task.html", taskListData{
		baseData: h.base(w, r),
		Tasks:    tasks,
	})
}

// base builds the common template data, consuming any pending flash.
func (h *TaskHandler) base(w http.ResponseWriter, r *http.Request) baseData {
	_, authenticated := UserIDFromContext(r.Context())
	return baseData{
		Authenticated: authenticated,
		Flash:         popFlash(w, r),
	}
}

// loadTask resolves the task from the URL, handling the not-found flow.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	taskID, err := taskIDParam(r)
	if err != nil {
		h.taskNotFound(w, r)
		return nil, false
	}

	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			h.logger.Error("failed to load task", "error", err, "task_id", taskID)
		}
		h.taskNotFound(w, r)
		return nil, false
	}
	return task, true
}

// renderTaskForm renders the shared create/edit form with the user list
// for the assignee select.
func (h *TaskHandler) renderTaskForm(w http.ResponseWriter, r *http.Request, form *TaskForm, editing bool, errMsg string) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := taskFormData{
		baseData: h.base(w, r),
		Form:     form,
		Users:    users,
		Editing:  editing,
	}
	data.Error = errMsg
	h.renderer.Render(w, http.StatusOK, "create_task.html", data)
}

// rerenderStatusForm re-renders the status form with an error message,
// reloading the task for its title.
func (h *TaskHandler) rerenderStatusForm(w http.ResponseWriter, r *http.Request, taskID int64, form *StatusForm, errMsg string) {
	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		h.taskNotFound(w, r)
		return
	}

	data := statusData{
		baseData: h.base(w, r),
		Task:     task,
		Form:     form,
	}
	data.Error = errMsg
	h.renderer.Render(w, http.StatusOK, "update_mytask.html", data)
}

// renderDetail renders the detail page for the task in the URL.
func (h *TaskHandler) renderDetail(w http.ResponseWriter, r *http.Request, form *CommentForm, errMsg string) {
	taskID, err := taskIDParam(r)
	if err != nil {
		h.taskNotFound(w, r)
		return
	}

	detail, err := h.tasks.Detail(r.Context(), taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			h.logger.Error("failed to load task detail", "error", err, "task_id", taskID)
		}
		h.taskNotFound(w, r)
		return
	}

	data := detailData{
		baseData: h.base(w, r),
		Task:     detail.Task,
		Comments: detail.Comments,
		Form:     form,
	}
	data.Error = errMsg
	h.renderer.Render(w, http.StatusOK, "task_detail.html", data)
}

// taskNotFound flashes the standard message and sends the user home.
func (h *TaskHandler) taskNotFound(w http.ResponseWriter, r *http.Request) {
	setFlash(w, FlashError, "Task not found")
	http.Redirect(w, r, "/", http.StatusFound)
}

// serverError logs the failure and renders the home page with a generic
// message.
func (h *TaskHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "error", err, "path", r.URL.Path)

	data := taskListData{baseData: h.base(w, r)}
	data.Error = "Something went wrong. Try again"
	h.renderer.Render(w, http.StatusInternalServerError, "index.html", data)
}

// taskIDParam extracts the numeric task id from the URL path.
func taskIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "task_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("task_id", "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}
