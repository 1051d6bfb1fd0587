package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/manishdhiman1/splitmateapp/internal/config"
	"github.com/manishdhiman1/splitmateapp/internal/transport/httpserver/handler"
	authmw "github.com/manishdhiman1/splitmateapp/internal/transport/httpserver/middleware"
	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS([]string{"http://localhost:8081"}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewTokenAuth(cfg.Auth, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)
			r.Put("/users/me/notify-token", handlers.UpdateNotifyToken)

			r.Post("/rooms", handlers.CreateRoom)
			r.Get("/rooms/me", handlers.GetMyRoom)
			r.Delete("/rooms/me", handlers.DeleteRoom)
			r.Patch("/rooms/me/target", handlers.UpdateTarget)

			r.Get("/rooms/me/cycle", handlers.CycleStatus)
			r.Post("/rooms/me/cycle/start", handlers.StartCycle)
			r.Post("/rooms/me/cycle/complete", handlers.CompleteCycle)

			r.Get("/expenses", handlers.ListExpenses)
			r.Post("/expenses", handlers.CreateExpense)
			r.Get("/expenses/recent", handlers.RecentExpenses)
			r.Get("/expenses/cycle-summaries", handlers.CycleSummaries)
			r.Delete("/expenses/{id}", handlers.DeleteExpense)

			r.Get("/reminders", handlers.ListReminders)
			r.Post("/reminders", handlers.CreateReminder)
			r.Put("/reminders/{id}", handlers.UpdateReminder)
			r.Post("/reminders/{id}/toggle", handlers.ToggleReminder)
			r.Delete("/reminders/{id}", handlers.DeleteReminder)
		})
	})

	return r
}
