package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListSchemas describes every registered schema.
func (s *Server) handleListSchemas(w http.ResponseWriter, _ *http.Request) {
	descs := s.schemas.Describe()
	writeJSON(w, http.StatusOK, map[string]any{"schemas": descs, "count": len(descs)})
}

// handleGetSchema describes one schema by name.
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.schemas.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.Describe())
}
