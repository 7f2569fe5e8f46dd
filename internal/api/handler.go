package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strgraph/strgraph/internal/config"
	"github.com/strgraph/strgraph/internal/graph"
	"github.com/strgraph/strgraph/internal/service"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	store      *service.Store
	loader     *config.Loader
	maxTargets int
	mux        *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(store *service.Store, loader *config.Loader, maxTargets int) http.Handler {
	h := &Handler{store: store, loader: loader, maxTargets: maxTargets, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/graphs", h.createGraph)
	h.mux.HandleFunc("GET /v1/graphs", h.listGraphs)
	h.mux.HandleFunc("GET /v1/graphs/{name}", h.describeGraph)
	h.mux.HandleFunc("DELETE /v1/graphs/{name}", h.deleteGraph)
	h.mux.HandleFunc("POST /v1/graphs/{name}/sources", h.addSource)
	h.mux.HandleFunc("POST /v1/graphs/{name}/calcs", h.addCalc)
	h.mux.HandleFunc("POST /v1/graphs/{name}/evaluate", h.evaluate)
	h.mux.HandleFunc("POST /v1/graphs/{name}/reset", h.resetGraph)
	h.mux.HandleFunc("GET /v1/operations", h.listOperations)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var opErr *graph.OpError
	switch {
	case errors.Is(err, service.ErrGraphNotFound), errors.Is(err, graph.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, service.ErrGraphExists), errors.Is(err, graph.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, graph.ErrUnknownOperation),
		errors.Is(err, graph.ErrArityMismatch),
		errors.Is(err, graph.ErrUnknownUpstream):
		return http.StatusUnprocessableEntity
	case errors.As(err, &opErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// POST /v1/graphs — create a new empty graph.
func (h *Handler) createGraph(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "graph name is required")
		return
	}
	if err := h.store.Create(req.Name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// GET /v1/graphs — list graph names.
func (h *Handler) listGraphs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"graphs": h.store.List()})
}

// GET /v1/graphs/{name} — nodes and cached values.
func (h *Handler) describeGraph(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.Describe(r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DELETE /v1/graphs/{name}
func (h *Handler) deleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("name")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// POST /v1/graphs/{name}/sources — add a source node.
func (h *Handler) addSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "node name is required")
		return
	}
	if err := h.store.AddSource(r.PathValue("name"), req.Name, req.Value); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name, "kind": string(graph.KindSource)})
}

// POST /v1/graphs/{name}/calcs — add a calc node.
func (h *Handler) addCalc(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string   `json:"name"`
		Op       string   `json:"op"`
		Upstream []string `json:"upstream"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "node name is required")
		return
	}
	if req.Op == "" {
		writeError(w, http.StatusBadRequest, "op is required")
		return
	}
	if err := h.store.AddCalc(r.PathValue("name"), req.Name, req.Op, req.Upstream); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name, "kind": string(graph.KindCalc)})
}

// POST /v1/graphs/{name}/evaluate — compute target values.
func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(req.Targets) == 0 {
		writeError(w, http.StatusBadRequest, "targets must contain at least one node name")
		return
	}
	if len(req.Targets) > h.maxTargets {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("targets count %d exceeds max %d", len(req.Targets), h.maxTargets))
		return
	}

	start := time.Now()
	values, err := h.store.Evaluate(r.PathValue("name"), req.Targets)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          uuid.New().String(),
		"values":      values,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// POST /v1/graphs/{name}/reset — discard cached values.
func (h *Handler) resetGraph(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.PathValue("name")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// GET /v1/operations — registered operations and their arities.
func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	reg := h.store.Registry()
	type opInfo struct {
		Name  string `json:"name"`
		Arity int    `json:"arity"`
	}
	names := reg.Names()
	ops := make([]opInfo, 0, len(names))
	for _, n := range names {
		o, _ := reg.Lookup(n)
		ops = append(ops, opInfo{Name: n, Arity: o.Arity})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"operations": ops})
}

// POST /v1/config/reload — re-read graph definitions and rebuild.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusServiceUnavailable, "no config file configured")
		return
	}
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.store.LoadDefs(cfg.Graphs); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":     true,
		"graphs_count": len(cfg.Graphs),
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — ready once the store is serving.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"graphs": len(h.store.List()),
	})
}
