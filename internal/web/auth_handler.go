package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users           service.UserService
	sessions        auth.SessionService
	renderer        *Renderer
	validator       *validator.Validate
	sessionLifetime time.Duration
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	sessions auth.SessionService,
	renderer *Renderer,
	sessionLifetime time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:           users,
		sessions:        sessions,
		renderer:        renderer,
		validator:       validator.New(),
		sessionLifetime: sessionLifetime,
		logger:          logger.With("component", "auth_handler"),
	}
}

// registerData is the template data for the registration page.
type registerData struct {
	baseData
	Form *RegisterForm
}

// RegisterPage handles GET /register/.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register.html", registerData{
		baseData: h.base(w, r),
		Form:     &RegisterForm{},
	})
}

// Register handles POST /register/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := parseRegisterForm(r)

	if msg := form.Validate(h.validator); msg != "" {
		data := registerData{baseData: h.base(w, r), Form: form}
		data.Error = msg
		h.renderer.Render(w, http.StatusOK, "register.html", data)
		return
	}

	_, err := h.users.Register(r.Context(), form.Email, form.FirstName, form.LastName, form.Password)
	if err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			h.logger.Error("registration failed", "error", err)
		}
		data := registerData{baseData: h.base(w, r), Form: form}
		data.Error = "Registration Failed"
		h.renderer.Render(w, http.StatusOK, "register.html", data)
		return
	}

	setFlash(w, FlashSuccess, "Registration Successful")
	http.Redirect(w, r, "/", http.StatusFound)
}

// loginData is the template data for the login page.
type loginData struct {
	baseData
	Next string
}

// LoginPage handles GET /login/.
// Authenticated users are sent home.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.renderer.Render(w, http.StatusOK, "login.html", loginData{
		baseData: h.base(w, r),
		Next:     safeNext(r.URL.Query().Get("next")),
	})
}

// Login handles POST /login/.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := parseLoginForm(r)

	fail := func() {
		data := loginData{baseData: h.base(w, r), Next: safeNext(r.URL.Query().Get("next"))}
		data.Error = "Invalid login credentials"
		h.renderer.Render(w, http.StatusOK, "login.html", data)
	}

	if err := h.validator.Struct(form); err != nil {
		fail()
		return
	}

	user, err := h.users.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login failed", "error", err)
		}
		fail()
		return
	}

	token, err := h.sessions.GenerateToken(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err, "user_id", user.ID)
		fail()
		return
	}

	setSessionCookie(w, token, h.sessionLifetime)
	setFlash(w, FlashSuccess, "Logged in successfully")

	next := safeNext(r.URL.Query().Get("next"))
	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout handles GET /logout/.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	setFlash(w, FlashSuccess, "You are logged out")
	http.Redirect(w, r, "/", http.StatusFound)
}

// base builds the common template data, consuming any pending flash.
func (h *AuthHandler) base(w http.ResponseWriter, r *http.Request) baseData {
	_, authenticated := UserIDFromContext(r.Context())
	return baseData{
		Authenticated: authenticated,
		Flash:         popFlash(w, r),
	}
}

// safeNext keeps login redirects on-site: only local absolute paths pass.
func safeNext(next string) string {
	if decoded, err := url.QueryUnescape(next); err == nil {
		next = decoded
	}
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}
