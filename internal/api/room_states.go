package api

import (
	"net/http"

	"github.com/nerrad567/homecontrol-core/internal/roomstate"
)

// handleListRoomStates returns stored room states, optionally filtered.
func (s *Server) handleListRoomStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.roomStates.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	states, err = s.applyFilters(r, states)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room_states": states, "count": len(states)})
}

// handleCreateRoomState stores a new room state. Any id in the body is
// replaced by a generated one.
func (s *Server) handleCreateRoomState(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.decodeBody(w, r, roomstate.Schema)
	if !ok {
		return
	}

	created, err := s.roomStates.Create(r.Context(), obj)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	id, _ := created.String("id")
	s.logger.Info("room state created", "id", id, "user", userFromContext(r.Context()).Username)

	writeJSON(w, http.StatusCreated, created)
}

// handleGetRoomState returns one room state.
func (s *Server) handleGetRoomState(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	obj, err := s.roomStates.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// handleDeleteRoomState removes a room state.
func (s *Server) handleDeleteRoomState(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	if err := s.roomStates.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("room state deleted", "id", id, "user", userFromContext(r.Context()).Username)
	w.WriteHeader(http.StatusNoContent)
}
