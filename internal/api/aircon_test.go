package api

import (
	"net/http"
	"net/url"
	"reflect"
	"testing"
)

const coolStateBody = `{"name":"Summer","state":{"power":true,"prompt_tone":false,"target":21,` +
	`"mode":2,"fan":40,"swing":12,"eco":true,"turbo":false,"fahrenheit":false}}`

func createACState(t *testing.T, env *testEnv, body string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/ac/states", env.adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	id, _ := decodeBody(t, w)["id"].(string)
	if id == "" {
		t.Fatal("created aircon state has no id")
	}
	return id
}

func TestACStates_CreateGetDelete(t *testing.T) {
	env := newTestEnv(t)
	id := createACState(t, env, coolStateBody)

	w := env.do(t, http.MethodGet, "/api/v1/ac/states/"+id, env.userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d (body %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	want := map[string]any{
		"id": id, "name": "Summer",
		"state": map[string]any{
			"power": true, "prompt_tone": false, "target": float64(21),
			"mode": float64(2), "fan": float64(40), "swing": float64(12),
			"eco": true, "turbo": false, "fahrenheit": false,
		},
	}
	if !reflect.DeepEqual(body, want) {
		t.Errorf("body = %v, want %v", body, want)
	}

	w = env.do(t, http.MethodDelete, "/api/v1/ac/states/"+id, env.userToken, nil)
	expectError(t, w, http.StatusForbidden, ErrCodeForbidden)

	w = env.do(t, http.MethodDelete, "/api/v1/ac/states/"+id, env.adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/v1/ac/states/"+id, env.userToken, nil)
	expectError(t, w, http.StatusNotFound, ErrCodeNotFound)
	w = env.do(t, http.MethodDelete, "/api/v1/ac/states/"+id, env.adminToken, nil)
	expectError(t, w, http.StatusNotFound, ErrCodeNotFound)
}

func TestACStates_CreateErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		token  string
		body   string
		status int
		code   string
	}{
		{"default group", env.userToken, coolStateBody, http.StatusForbidden, ErrCodeForbidden},
		{"no name", env.adminToken, `{"state":{"power":true}}`, http.StatusBadRequest, ErrCodeValidation},
		{"partial state", env.adminToken, `{"name":"x","state":{"power":true}}`, http.StatusBadRequest, ErrCodeValidation},
		{"unknown fan speed", env.adminToken, `{"name":"x","state":{"power":true,"prompt_tone":false,"target":21,` +
			`"mode":2,"fan":41,"swing":12,"eco":true,"turbo":false,"fahrenheit":false}}`, http.StatusBadRequest, ErrCodeValidation},
		{"wrong type", env.adminToken, `{"name":"x","state":{"target":"warm"}}`, http.StatusBadRequest, ErrCodeMapping},
		{"trailing data", env.adminToken, coolStateBody + ` {"name":"y"}`, http.StatusBadRequest, ErrCodeMapping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/ac/states", tt.token, tt.body)
			expectError(t, w, tt.status, tt.code)
		})
	}
}

func TestACStates_List(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/ac/states", env.userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := listNames(t, decodeBody(t, w), "ac_states"); len(got) != 0 {
		t.Errorf("empty list = %v", got)
	}

	createACState(t, env, coolStateBody)
	createACState(t, env, `{"name":"Winter","state":{"power":true,"prompt_tone":true,"target":24,`+
		`"mode":4,"fan":102,"swing":0,"eco":false,"turbo":true,"fahrenheit":false}}`)

	tests := []struct {
		name    string
		filters string
		want    []string
	}{
		{"all", "", []string{"Summer", "Winter"}},
		{"heating", `{"state.mode[eq]":4}`, []string{"Winter"}},
		{"warm target", `{"state.target[gte]":22}`, []string{"Winter"}},
		{"none", `{"state.power[eq]":false}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/v1/ac/states"
			if tt.filters != "" {
				path += "?filters=" + url.QueryEscape(tt.filters)
			}
			w := env.do(t, http.MethodGet, path, env.userToken, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
			}
			if got := listNames(t, decodeBody(t, w), "ac_states"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("names = %v, want %v", got, tt.want)
			}
		})
	}
}
