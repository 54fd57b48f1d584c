package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecontrol-core/internal/hue"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)
		r.Get("/info", s.handleInfo)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Schema descriptions
			r.Get("/schemas", s.handleListSchemas)
			r.Get("/schemas/{name}", s.handleGetSchema)

			// Hue bridge resources
			r.Route("/hue/{bridge}", func(r chi.Router) {
				r.Get("/rooms", s.handleListResources(hue.ResourceRoom))
				r.Put("/rooms/{id}", s.handlePutResource(hue.ResourceRoom))

				r.Get("/lights", s.handleListResources(hue.ResourceLight))
				r.Route("/lights/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetResource(hue.ResourceLight))
					r.Put("/", s.handlePutResource(hue.ResourceLight))
					r.Put("/state", s.handlePutLightState(hue.ResourceLight))
				})

				r.Get("/grouped_lights", s.handleListResources(hue.ResourceGroupedLight))
				r.Route("/grouped_lights/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetResource(hue.ResourceGroupedLight))
					r.Put("/", s.handlePutResource(hue.ResourceGroupedLight))
					r.Put("/state", s.handlePutLightState(hue.ResourceGroupedLight))
				})

				r.Get("/scenes", s.handleListResources(hue.ResourceScene))
				r.Put("/scenes/{id}/recall", s.handleRecallScene)
			})

			// Rooms joined across the bridge and stored presets
			r.Get("/home/rooms", s.handleHomeRooms)

			// Saved air-conditioning states; changes require the admin group
			r.Route("/ac/states", func(r chi.Router) {
				r.Get("/", s.handleListACStates)
				r.With(s.requireAdmin).Post("/", s.handleCreateACState)
				r.Get("/{id}", s.handleGetACState)
				r.With(s.requireAdmin).Delete("/{id}", s.handleDeleteACState)
			})

			// Room states; changes require the admin group
			r.Route("/room_states", func(r chi.Router) {
				r.Get("/", s.handleListRoomStates)
				r.With(s.requireAdmin).Post("/", s.handleCreateRoomState)
				r.Get("/{id}", s.handleGetRoomState)
				r.With(s.requireAdmin).Delete("/{id}", s.handleDeleteRoomState)
			})
		})

		// WebSocket (auth via ticket from /auth/ws-ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"bridges": s.hue.Names(),
	})
}

// handleInfo reports the running version.
func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"version": s.version})
}
