package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecontrol-core/internal/filter"
	"github.com/nerrad567/homecontrol-core/internal/hue"
	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

// maxIDLen bounds resource IDs taken from the URL.
const maxIDLen = 128

// resourceKeys names the list key of each resource type in responses.
var resourceKeys = map[string]string{
	hue.ResourceRoom:         "rooms",
	hue.ResourceLight:        "lights",
	hue.ResourceGroupedLight: "grouped_lights",
	hue.ResourceScene:        "scenes",
}

// bridgeFromRequest resolves the {bridge} URL parameter. It writes the error
// response and returns false when the bridge is unknown.
func (s *Server) bridgeFromRequest(w http.ResponseWriter, r *http.Request) (*hue.Client, bool) {
	client, err := s.hue.Bridge(chi.URLParam(r, "bridge"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return nil, false
	}
	return client, true
}

// resourceID returns the {id} URL parameter, writing a 400 when it is unusable.
func resourceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxIDLen {
		writeBadRequest(w, "invalid resource ID")
		return "", false
	}
	return id, true
}

// applyFilters narrows objs by the ?filters= query parameter, if present.
func (s *Server) applyFilters(r *http.Request, objs []*mapping.Object) ([]*mapping.Object, error) {
	if objs == nil {
		objs = []*mapping.Object{} // encode as [] rather than null
	}
	text := r.URL.Query().Get("filters")
	if text == "" {
		return objs, nil
	}
	set, err := s.filters.Parse(text)
	if err != nil {
		return nil, err
	}
	return filter.ApplyTo(set, objs)
}

// handleListResources returns every resource of rtype on the bridge,
// optionally filtered.
func (s *Server) handleListResources(rtype string) http.HandlerFunc {
	key := resourceKeys[rtype]
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.bridgeFromRequest(w, r)
		if !ok {
			return
		}

		objs, err := client.List(r.Context(), rtype)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		objs, err = s.applyFilters(r, objs)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{key: objs, "count": len(objs)})
	}
}

// handleGetResource returns one resource of rtype.
func (s *Server) handleGetResource(rtype string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.bridgeFromRequest(w, r)
		if !ok {
			return
		}
		id, ok := resourceID(w, r)
		if !ok {
			return
		}

		obj, err := client.Get(r.Context(), rtype, id)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, obj)
	}
}

// handlePutResource decodes the body against the write schema of rtype and
// sends it to the bridge. Only the fields present in the body are written.
func (s *Server) handlePutResource(rtype string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.bridgeFromRequest(w, r)
		if !ok {
			return
		}
		id, ok := resourceID(w, r)
		if !ok {
			return
		}

		schema, err := hue.PutSchema(rtype)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		obj, ok := s.decodeBody(w, r, schema)
		if !ok {
			return
		}
		if len(obj.SetFields()) == 0 {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "request sets no fields")
			return
		}

		s.writeResource(w, r, client, rtype, id, obj)
	}
}

// handlePutLightState applies the simplified light state shortcut
// ({"on", "brightness", "colour", "colour_temp_k"}) to a light or group.
func (s *Server) handlePutLightState(rtype string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := s.bridgeFromRequest(w, r)
		if !ok {
			return
		}
		id, ok := resourceID(w, r)
		if !ok {
			return
		}

		var state hue.LightState
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
		if state.IsEmpty() {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "request sets no fields")
			return
		}

		var obj *mapping.Object
		var err error
		if rtype == hue.ResourceGroupedLight {
			obj, err = state.ToGroupedLightPut()
		} else {
			obj, err = state.ToLightPut()
		}
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}

		s.writeResource(w, r, client, rtype, id, obj)
	}
}

// handleRecallScene activates a scene.
func (s *Server) handleRecallScene(w http.ResponseWriter, r *http.Request) {
	client, ok := s.bridgeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := resourceID(w, r)
	if !ok {
		return
	}

	if err := client.RecallScene(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.stateChanged(client.Name(), hue.ResourceScene, id, hue.SceneRecall())

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "recalled"})
}

// writeResource puts obj to the bridge and announces the change.
func (s *Server) writeResource(w http.ResponseWriter, r *http.Request, client *hue.Client, rtype, id string, obj *mapping.Object) {
	if err := client.Put(r.Context(), rtype, id, obj); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.stateChanged(client.Name(), rtype, id, obj)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"rtype": rtype,
		"state": obj,
	})
}

// stateChanged announces a successful write. With a bus the encoded write is
// published as retained state and reaches WebSocket clients through the
// relay; without one it is broadcast directly. Light writes are also recorded
// as telemetry.
func (s *Server) stateChanged(bridge, rtype, id string, obj *mapping.Object) {
	state := mapping.Encode(obj)

	if s.bus != nil {
		if err := s.bus.PublishHueState(bridge, rtype, id, state); err != nil {
			s.logger.Warn("publishing hue state failed",
				"bridge", bridge,
				"rtype", rtype,
				"id", id,
				"error", err,
			)
		}
	} else {
		s.hub.Broadcast(ChannelHueStateChanged, StateEvent{
			Bridge:   bridge,
			Resource: rtype,
			ID:       id,
			State:    state,
		})
	}

	if s.telemetry != nil && (rtype == hue.ResourceLight || rtype == hue.ResourceGroupedLight) {
		s.telemetry.WriteLightState(bridge, rtype, id, hue.LightStateFromObject(obj).Fields())
	}
}

// decodeBody reads the request body and decodes it against schema. It writes
// the error response and returns false on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, schema *mapping.Schema) (*mapping.Object, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return nil, false
	}
	if len(body) == 0 {
		writeBadRequest(w, "request body is required")
		return nil, false
	}

	obj, err := s.decoder.DecodeJSON(body, schema)
	if err != nil {
		s.writeDomainError(w, r, err)
		return nil, false
	}
	return obj, true
}
