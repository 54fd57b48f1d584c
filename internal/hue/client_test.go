package hue

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/nerrad567/homecontrol-core/internal/mapping"
)

const testAppKey = "test-app-key"

// fakeBridge serves canned CLIP v2 responses and records the last write.
type fakeBridge struct {
	t        *testing.T
	lastPath string
	lastBody map[string]any
}

func (b *fakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(appKeyHeader) != testAppKey {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"errors":[{"description":"unauthorized user"}],"data":[]}`)
		return
	}

	b.lastPath = r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/clip/v2/resource/room":
		_, _ = io.WriteString(w, `{"errors":[],"data":[
			{"id":"r1","type":"room","metadata":{"name":"Lounge","archetype":"living_room"},
			 "services":[{"rid":"g1","rtype":"grouped_light"}],"future_field":{"x":1}},
			{"id":"r2","type":"room","metadata":{"name":"Kitchen","archetype":"kitchen"},
			 "services":[{"rid":"g2","rtype":"grouped_light"}]}
		]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/clip/v2/resource/light/l1":
		_, _ = io.WriteString(w, `{"errors":[],"data":[
			{"id":"l1","type":"light","on":{"on":true},"dimming":{"brightness":42.5,"min_dim_level":0.2},
			 "color_temperature":{"mirek":366,"mirek_valid":true}}
		]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/clip/v2/resource/light/missing":
		_, _ = io.WriteString(w, `{"errors":[],"data":[]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/clip/v2/resource/light/broken":
		_, _ = io.WriteString(w, `{"errors":[],"data":[{"id":"broken","on":{"on":"sometimes"}}]}`)
	case r.Method == http.MethodPut:
		body := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			b.t.Errorf("decoding PUT body: %v", err)
		}
		b.lastBody = body
		_, _ = io.WriteString(w, `{"errors":[],"data":[{"rid":"x","rtype":"light"}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"description":"resource not found"}],"data":[]}`)
	}
}

func newTestClient(t *testing.T, appKey string) (*Client, *fakeBridge) {
	t.Helper()

	bridge := &fakeBridge{t: t}
	srv := httptest.NewServer(bridge)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		Name:       "home",
		BaseURL:    srv.URL,
		AppKey:     appKey,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, bridge
}

func TestClient_List(t *testing.T) {
	c, _ := newTestClient(t, testAppKey)

	rooms, err := c.List(context.Background(), ResourceRoom)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("len = %d, want 2", len(rooms))
	}
	if rooms[0].Schema() != RoomGet {
		t.Errorf("schema = %s, want RoomGet", rooms[0].Schema().Name())
	}
	if v, _ := rooms[0].Lookup("metadata.name"); v != "Lounge" {
		t.Errorf("metadata.name = %v, want Lounge", v)
	}
	if v, _ := rooms[1].Lookup("services.0.rid"); v != "g2" {
		t.Errorf("services.0.rid = %v, want g2", v)
	}
}

func TestClient_Get(t *testing.T) {
	c, _ := newTestClient(t, testAppKey)

	light, err := c.Get(context.Background(), ResourceLight, "l1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v, _ := light.Lookup("dimming.brightness"); v != 42.5 {
		t.Errorf("dimming.brightness = %v, want 42.5", v)
	}
	if v, _ := light.Lookup("color_temperature.mirek"); v != int64(366) {
		t.Errorf("color_temperature.mirek = %#v, want 366", v)
	}
}

func TestClient_GetErrors(t *testing.T) {
	c, _ := newTestClient(t, testAppKey)
	ctx := context.Background()

	if _, err := c.Get(ctx, ResourceLight, "missing"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrResourceNotFound", err)
	}

	_, err := c.Get(ctx, ResourceLight, "broken")
	if !errors.Is(err, ErrInvalidResponse) || !errors.Is(err, mapping.ErrTypeMismatch) {
		t.Errorf("Get(broken) error = %v, want ErrInvalidResponse wrapping ErrTypeMismatch", err)
	}

	if _, err := c.Get(ctx, "bridge_home", "x"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("Get(unknown rtype) error = %v, want ErrUnknownResource", err)
	}

	_, err = c.Get(ctx, ResourceScene, "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Get(404) error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", apiErr.Status)
	}
	if !reflect.DeepEqual(apiErr.Descriptions, []string{"resource not found"}) {
		t.Errorf("Descriptions = %v", apiErr.Descriptions)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Error("errors.Is(err, ErrRequestFailed) = false")
	}
}

func TestClient_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, "wrong")

	_, err := c.List(context.Background(), ResourceLight)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("List() error = %v, want 403 APIError", err)
	}
}

func TestClient_PutSendsOnlySetFields(t *testing.T) {
	c, bridge := newTestClient(t, testAppKey)

	on := true
	put, err := LightState{On: &on}.ToLightPut()
	if err != nil {
		t.Fatalf("ToLightPut() error = %v", err)
	}
	if err := c.Put(context.Background(), ResourceLight, "l1", put); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if bridge.lastPath != "/clip/v2/resource/light/l1" {
		t.Errorf("path = %s", bridge.lastPath)
	}
	want := map[string]any{"on": map[string]any{"on": true}}
	if !reflect.DeepEqual(bridge.lastBody, want) {
		t.Errorf("body = %v, want %v", bridge.lastBody, want)
	}
}

func TestClient_PutSchemaMismatch(t *testing.T) {
	c, _ := newTestClient(t, testAppKey)

	err := c.Put(context.Background(), ResourceLight, "l1", mapping.New(GroupedLightPut))
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Put() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestClient_RecallScene(t *testing.T) {
	c, bridge := newTestClient(t, testAppKey)

	if err := c.RecallScene(context.Background(), "s1"); err != nil {
		t.Fatalf("RecallScene() error = %v", err)
	}
	if bridge.lastPath != "/clip/v2/resource/scene/s1" {
		t.Errorf("path = %s", bridge.lastPath)
	}
	want := map[string]any{"recall": map[string]any{"action": "active"}}
	if !reflect.DeepEqual(bridge.lastBody, want) {
		t.Errorf("body = %v, want %v", bridge.lastBody, want)
	}
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{Name: "gone", BaseURL: url})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := c.List(context.Background(), ResourceRoom); !errors.Is(err, ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "not a url"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewClient() error = %v, want ErrInvalidConfig", err)
	}
}

func TestManager_Bridge(t *testing.T) {
	m, err := NewManager(ManagerConfig{
		Bridges: []BridgeConfig{
			{Name: "home", Identifier: "ecb5fafffe000001", Address: "192.168.1.10", Username: "key"},
		},
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if _, err := m.Bridge("home"); err != nil {
		t.Errorf("Bridge(home) error = %v", err)
	}
	if _, err := m.Bridge("office"); !errors.Is(err, ErrBridgeNotFound) {
		t.Errorf("Bridge(office) error = %v, want ErrBridgeNotFound", err)
	}
	if names := m.Names(); len(names) != 1 || names[0] != "home" {
		t.Errorf("Names() = %v", names)
	}

	_, err = NewManager(ManagerConfig{Bridges: []BridgeConfig{{Name: "a"}, {Name: "a"}}})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewManager(duplicate) error = %v, want ErrInvalidConfig", err)
	}
}

func TestManager_DecodesResponsesLeniently(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"errors":[],"data":[
			{"id":"r1","type":"room","metadata":{"name":"Lounge","archetype":"living_room"},
			 "children":[],"services":[],"id_v1":"/groups/1","future_field":{"x":1}}
		]}`)
	}))
	defer srv.Close()

	caPath := filepath.Join(t.TempDir(), "bridge-ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caPath, caPEM, 0600); err != nil {
		t.Fatalf("writing CA: %v", err)
	}

	host, portStr, _ := net.SplitHostPort(srv.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	m, err := NewManager(ManagerConfig{
		CACertPath: caPath,
		Bridges: []BridgeConfig{
			// httptest certificates are issued for example.com.
			{Name: "home", Identifier: "example.com", Address: host, Port: port, Username: testAppKey},
		},
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	c, err := m.Bridge("home")
	if err != nil {
		t.Fatalf("Bridge(home) error = %v", err)
	}

	rooms, err := c.List(t.Context(), ResourceRoom)
	if err != nil {
		t.Fatalf("List(room) error = %v, want undeclared keys ignored", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("got %d rooms, want 1", len(rooms))
	}
	if name, _ := rooms[0].Lookup("metadata.name"); name != "Lounge" {
		t.Errorf("metadata.name = %v, want Lounge", name)
	}
}
