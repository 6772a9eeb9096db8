package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures the REST + WS surface: list/inspect/delete a
// session over REST, drive and stream its turns over WS.
func (s *Server) setupRoutes() {
	r := s.router

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/ws", s.serveSessionWS)
		})
	})
}
