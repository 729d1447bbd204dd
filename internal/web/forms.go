package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service"
)

// dueDateLayout is the wire format of the due date field.
const dueDateLayout = "2006-01-02"

// RegisterForm carries the registration fields.
type RegisterForm struct {
	Email           string `validate:"required,email"`
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// parseRegisterForm binds the POST body to a RegisterForm.
func parseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Email:           r.PostFormValue("email"),
		FirstName:       r.PostFormValue("first_name"),
		LastName:        r.PostFormValue("last_name"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

// Validate checks the form. The password mismatch case gets its own
// message; everything else reports the failing field.
func (f *RegisterForm) Validate(v *validator.Validate) string {
	err := v.Struct(f)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			if fieldErr.Field() == "ConfirmPassword" && fieldErr.Tag() == "eqfield" {
				return "Passwords do not match."
			}
		}
	}
	return "Registration Failed"
}

// LoginForm carries the login fields.
type LoginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// parseLoginForm binds the POST body to a LoginForm.
func parseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
}

// TaskForm carries the create/edit task fields. DueDate and AssignedTo stay
// strings until validation so a half-filled form can be re-rendered as
// submitted.
type TaskForm struct {
	Title       string `validate:"required,max=50"`
	Description string `validate:"required,max=100"`
	DueDate     string `validate:"required"`
	AssignedTo  string `validate:"required"`
	Priority    string `validate:"required,oneof=high low medium"`
}

// parseTaskForm binds the POST body to a TaskForm.
func parseTaskForm(r *http.Request) *TaskForm {
	return &TaskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		DueDate:     r.PostFormValue("due_date"),
		AssignedTo:  r.PostFormValue("assigned_to"),
		Priority:    r.PostFormValue("priority"),
	}
}

// taskFormFrom pre-fills a TaskForm from an existing task for the edit view.
func taskFormFrom(task *domain.Task) *TaskForm {
	form := &TaskForm{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.Format(dueDateLayout),
		Priority:    string(task.Priority),
	}
	if task.AssignedTo != nil {
		form.AssignedTo = task.AssignedTo.String()
	}
	return form
}

// ToInput validates the form and converts it to a service input.
// Returns false when the form is invalid.
func (f *TaskForm) ToInput(v *validator.Validate) (service.TaskInput, bool) {
	if err := v.Struct(f); err != nil {
		return service.TaskInput{}, false
	}

	dueDate, err := time.Parse(dueDateLayout, f.DueDate)
	if err != nil {
		return service.TaskInput{}, false
	}
	assignedTo, err := uuid.Parse(f.AssignedTo)
	if err != nil {
		return service.TaskInput{}, false
	}

	return service.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     dueDate,
		AssignedTo:  assignedTo,
		Priority:    domain.TaskPriority(f.Priority),
	}, true
}

// StatusForm carries the status update field.
type StatusForm struct {
	Status string `validate:"required,oneof=inprogress completed"`
}

// parseStatusForm binds the POST body to a StatusForm.
func parseStatusForm(r *http.Request) *StatusForm {
	return &StatusForm{
		Status: r.PostFormValue("status"),
	}
}

// CommentForm carries the comment field.
type CommentForm struct {
	Content string `validate:"required"`
}

// parseCommentForm binds the POST body to a CommentForm.
func parseCommentForm(r *http.Request) *CommentForm {
	return &CommentForm{
		Content: r.PostFormValue("content"),
	}
}
