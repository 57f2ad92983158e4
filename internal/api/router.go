package api

import (
	"github.com/go-chi/chi/v5"

	"allswell/internal/auth"
)

// NewRouter mounts the API routes. Auth endpoints are open; everything else
// requires a Bearer session token.
func NewRouter(h *Handler, mgr *auth.Manager, broker *Broker) chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/signin", h.SignIn)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(mgr))

		r.Post("/auth/signout", h.SignOut)
		r.Post("/auth/password", h.ChangePassword)

		r.Get("/profile/title", h.GetTitle)
		r.Put("/profile/title", h.PutTitle)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Get("/days/{dateKey}/tasks", h.ListDayTasks)
		r.Post("/days/{dateKey}/tasks", h.CreateTask)
		r.Put("/days/{dateKey}/tasks/{id}", h.UpdateTask)
		r.Post("/days/{dateKey}/tasks/{id}/toggle", h.ToggleTask)
		r.Delete("/days/{dateKey}/tasks/{id}", h.DeleteTask)

		r.Get("/calendar/{month}", h.GetCalendar)
		r.Post("/calendar/select", h.SelectDate)

		r.Get("/goals/{month}", h.GetGoal)
		r.Put("/goals/{month}", h.PutGoal)

		r.Get("/chart/{month}", h.GetChart)
		r.Get("/chart/{month}/svg", h.GetChartSVG)

		r.Get("/events", broker.ServeHTTP)
	})

	return r
}
