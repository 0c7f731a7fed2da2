package api

import (
	"net/http"

	"lostfound/internal/matching"
	"lostfound/internal/messaging"
	"lostfound/internal/model"
	"lostfound/internal/search"
	"lostfound/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	repo      storage.Repository
	search    *search.Service
	matching  *matching.Service
	messaging *messaging.Service
}

func NewHandler(repo storage.Repository, s *search.Service, m *matching.Service, msg *messaging.Service) *Handler {
	return &Handler{repo: repo, search: s, matching: m, messaging: msg}
}

// NewRouter mounts the v1 API. allowedOrigins feeds the CORS policy.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", UserHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
			ok(w, model.Categories)
		})
		r.Get("/items", h.listItems)
		r.Get("/items/{id}", h.getItem)
		r.Get("/items/{id}/suggestions", h.suggestions)
		r.Get("/search", h.searchItems)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/items/lost", h.reportLost)
			r.Post("/items/found", h.reportFound)
			r.Patch("/items/{id}", h.updateItem)

			r.Get("/matches", h.listMatches)
			r.Post("/matches/{id}/decision", h.decide)

			r.Get("/messages", h.inbox)
			r.Post("/messages", h.send)
			r.Get("/messages/thread/{userID}", h.thread)
			r.Post("/messages/{id}/read", h.markRead)

			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.putProfile)
			r.Get("/dashboard", h.dashboard)
		})
	})
	return r
}
