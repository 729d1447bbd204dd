package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard/internal/web"
)

// setupRouter registers every route. The home, register, and login pages
// are reachable without a session; everything else requires one and
// redirects to the login page otherwise.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.sessionMiddleware.Handler)

	// Public pages. The home page renders a login hint for anonymous
	// visitors instead of redirecting.
	r.Get("/", app.taskHandler.Home)
	r.Post("/", app.taskHandler.Home)
	r.Get("/register/", app.authHandler.RegisterPage)
	r.Post("/register/", app.authHandler.Register)
	r.Get("/login/", app.authHandler.LoginPage)
	r.Post("/login/", app.authHandler.Login)

	// Everything below needs an authenticated session.
	r.Group(func(r chi.Router) {
		r.Use(web.RequireAuth)

		r.Get("/logout/", app.authHandler.Logout)

		r.Get("/create/", app.taskHandler.CreatePage)
		r.Post("/create/", app.taskHandler.Create)
		r.Get("/edit/{task_id}/", app.taskHandler.EditPage)
		r.Post("/edit/{task_id}/", app.taskHandler.Edit)
		r.Post("/delete/{task_id}/", app.taskHandler.Delete)

		r.Get("/mytask/", app.taskHandler.MyTasks)
		r.Get("/update-task/{task_id}", app.taskHandler.UpdateStatusPage)
		r.Post("/update-task/{task_id}", app.taskHandler.UpdateStatus)

		r.Get("/detail/{task_id}", app.taskHandler.Detail)
		r.Post("/detail/{task_id}", app.taskHandler.Comment)

		r.Get("/search/", app.taskHandler.Search)
		r.Get("/tasks", app.taskHandler.AllTasks)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
