package api

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the API router. Listener endpoints need a session;
// mutations need a moderator session.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)
	r.Post("/login", h.Login)
	if h.live != nil {
		r.Get("/ws", h.live.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Post("/logout", h.Logout)
		r.Get("/state", h.State)
		r.Get("/stream/{id}", h.Stream)
		r.Head("/stream/{id}", h.Stream)

		r.Group(func(r chi.Router) {
			r.Use(h.requireModerator)
			r.Post("/upload", h.Upload)
			r.Post("/queue/text", h.QueueText)
			r.Delete("/queue/{id}", h.RemoveQueued)
			r.Post("/play-now", h.PlayNow)
			r.Post("/next", h.Next)
			r.Post("/track-ended", h.TrackEnded)
			r.Post("/stop", h.Stop)
		})
	})

	return r
}
