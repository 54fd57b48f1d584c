package api

import (
	"net/http"

	"github.com/nerrad567/homecontrol-core/internal/aircon"
)

// handleListACStates returns saved air-conditioning states, optionally filtered.
func (s *Server) handleListACStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.acStates.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	states, err = s.applyFilters(r, states)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ac_states": states, "count": len(states)})
}

// handleCreateACState saves a complete air-conditioning state under a
// generated id.
func (s *Server) handleCreateACState(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.decodeBody(w, r, aircon.SavedState)
	if !ok {
		return
	}

	created, err := s.acStates.Create(r.Context(), obj)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	id, _ := created.String("id")
	s.logger.Info("aircon state saved", "id", id, "user", userFromContext(r.Context()).Username)

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetACState(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	obj, err := s.acStates.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) handleDeleteACState(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	if err := s.acStates.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("aircon state deleted", "id", id, "user", userFromContext(r.Context()).Username)
	w.WriteHeader(http.StatusNoContent)
}
