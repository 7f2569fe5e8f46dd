package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/strgraph/strgraph/internal/api"
	"github.com/strgraph/strgraph/internal/op"
	"github.com/strgraph/strgraph/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := service.NewStore(op.Builtins())
	srv := httptest.NewServer(api.New(store, nil, 100))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp, out
}

func mustStatus(t *testing.T, resp *http.Response, want int, body map[string]interface{}) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d (body: %v)", resp.StatusCode, want, body)
	}
}

func TestGraphLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, "POST", "/v1/graphs", `{"name":"g"}`)
	mustStatus(t, resp, http.StatusCreated, body)

	resp, body = do(t, srv, "POST", "/v1/graphs", `{"name":"g"}`)
	mustStatus(t, resp, http.StatusConflict, body)

	resp, body = do(t, srv, "POST", "/v1/graphs/g/sources", `{"name":"A","value":"Hello"}`)
	mustStatus(t, resp, http.StatusCreated, body)
	resp, body = do(t, srv, "POST", "/v1/graphs/g/sources", `{"name":"B","value":"World"}`)
	mustStatus(t, resp, http.StatusCreated, body)

	resp, body = do(t, srv, "POST", "/v1/graphs/g/calcs", `{"name":"C","op":"concat","upstream":["A","B"]}`)
	mustStatus(t, resp, http.StatusCreated, body)

	resp, body = do(t, srv, "POST", "/v1/graphs/g/evaluate", `{"targets":["C"]}`)
	mustStatus(t, resp, http.StatusOK, body)
	values, ok := body["values"].(map[string]interface{})
	if !ok || values["C"] != "HelloWorld" {
		t.Errorf("values = %v, want C=HelloWorld", body["values"])
	}
	if body["id"] == "" {
		t.Error("evaluate response missing id")
	}

	resp, body = do(t, srv, "GET", "/v1/graphs/g", "")
	mustStatus(t, resp, http.StatusOK, body)
	if nodes, ok := body["nodes"].([]interface{}); !ok || len(nodes) != 3 {
		t.Errorf("nodes = %v, want 3 entries", body["nodes"])
	}

	resp, body = do(t, srv, "DELETE", "/v1/graphs/g", "")
	mustStatus(t, resp, http.StatusOK, body)
	resp, body = do(t, srv, "GET", "/v1/graphs/g", "")
	mustStatus(t, resp, http.StatusNotFound, body)
}

func TestConstructionErrors(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, "POST", "/v1/graphs", `{"name":"g"}`)
	mustStatus(t, resp, http.StatusCreated, body)
	resp, body = do(t, srv, "POST", "/v1/graphs/g/sources", `{"name":"A","value":"x"}`)
	mustStatus(t, resp, http.StatusCreated, body)

	tests := []struct {
		name string
		path string
		req  string
		want int
	}{
		{"duplicate node", "/v1/graphs/g/sources", `{"name":"A","value":"y"}`, http.StatusConflict},
		{"unknown op", "/v1/graphs/g/calcs", `{"name":"B","op":"nope","upstream":["A"]}`, http.StatusUnprocessableEntity},
		{"arity mismatch", "/v1/graphs/g/calcs", `{"name":"B","op":"concat","upstream":["A"]}`, http.StatusUnprocessableEntity},
		{"unknown upstream", "/v1/graphs/g/calcs", `{"name":"B","op":"upper","upstream":["Z"]}`, http.StatusUnprocessableEntity},
		{"unknown graph", "/v1/graphs/missing/sources", `{"name":"A","value":"x"}`, http.StatusNotFound},
		{"bad json", "/v1/graphs/g/sources", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, "POST", tt.path, tt.req)
			mustStatus(t, resp, tt.want, body)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, "POST", "/v1/graphs", `{"name":"g"}`)
	mustStatus(t, resp, http.StatusCreated, body)

	resp, body = do(t, srv, "POST", "/v1/graphs/g/evaluate", `{"targets":["Z"]}`)
	mustStatus(t, resp, http.StatusNotFound, body)

	resp, body = do(t, srv, "POST", "/v1/graphs/g/evaluate", `{"targets":[]}`)
	mustStatus(t, resp, http.StatusBadRequest, body)

	resp, body = do(t, srv, "POST", "/v1/graphs/missing/evaluate", `{"targets":["A"]}`)
	mustStatus(t, resp, http.StatusNotFound, body)
}

func TestListOperations(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, "GET", "/v1/operations", "")
	mustStatus(t, resp, http.StatusOK, body)
	ops, ok := body["operations"].([]interface{})
	if !ok || len(ops) == 0 {
		t.Fatalf("operations = %v", body["operations"])
	}
	found := false
	for _, o := range ops {
		m := o.(map[string]interface{})
		if m["name"] == "replace" && m["arity"] == float64(3) {
			found = true
		}
	}
	if !found {
		t.Errorf("replace/3 not listed in %v", ops)
	}
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, body := do(t, srv, "GET", "/healthz", "")
	mustStatus(t, resp, http.StatusOK, body)
	resp, body = do(t, srv, "GET", "/readyz", "")
	mustStatus(t, resp, http.StatusOK, body)
}
