package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/homecontrol-core/internal/home"
	"github.com/nerrad567/homecontrol-core/internal/hue"
)

var errBridgeNameRequired = errors.New("bridge_name query parameter is required")

// handleHomeRooms returns the rooms of one bridge joined with their lights
// and the air-conditioning units named by stored room states.
func (s *Server) handleHomeRooms(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("bridge_name")
	if name == "" {
		s.writeDomainError(w, r, errBridgeNameRequired)
		return
	}
	client, err := s.hue.Bridge(name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	hueRooms, err := client.List(ctx, hue.ResourceRoom)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	lights, err := client.List(ctx, hue.ResourceLight)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	states, err := s.roomStates.List(ctx)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	rooms, err := s.applyFilters(r, home.BuildRooms(hueRooms, lights, states))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}
