package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shiftboard/internal/dashboard"
	"shiftboard/internal/export"
	"shiftboard/internal/storage"
	"shiftboard/pkg/logger"
)

// maxBodySize bounds request bodies, matching the default storage capacity
const maxBodySize = storage.DefaultCapacity

// HeaderFactory builds the dashboard header for a request
type HeaderFactory func(ctx context.Context) *dashboard.Header

// Handler holds the dependencies for API handlers
type Handler struct {
	manager  *storage.Manager
	backends storage.Backends
	exports  export.Services
	header   HeaderFactory
	logger   *logger.Logger
	timeout  time.Duration
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ItemResponse struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Backend string `json:"backend"`
}

type SetItemRequest struct {
	Value string `json:"value"`
}

type KeysResponse struct {
	Backend string   `json:"backend"`
	Keys    []string `json:"keys"`
}

type InfoResponse struct {
	Backend string `json:"backend"`
	storage.Info
}

type BackendResponse struct {
	Backend   string   `json:"backend"`
	Available []string `json:"available"`
}

type BackendRequest struct {
	Backend string `json:"backend"`
}

type MigrateRequest struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Keys []string `json:"keys"`
}

type MigrateResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Requested int    `json:"requested"`
	Copied    int    `json:"copied"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// writeJSON writes JSON response with proper content type
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes error response with proper content type
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Message: message, Code: code})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "shiftboard",
		"backend": h.manager.Name(),
	})
}

// ListKeys handles GET /api/storage
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	keys := h.manager.Keys(ctx)
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, KeysResponse{Backend: h.manager.Name(), Keys: keys})
}

// Clear handles DELETE /api/storage
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if !h.manager.Clear(ctx) {
		writeError(w, http.StatusInternalServerError, "storage could not be cleared")
		return
	}
	h.logger.InfoContext(ctx, "Clear: success", "backend", h.manager.Name())
	w.WriteHeader(http.StatusNoContent)
}

// Info handles GET /api/storage/info
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	info, ok := h.manager.GetStorageInfo(ctx)
	if !ok {
		writeError(w, http.StatusInternalServerError, "storage info unavailable")
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{Backend: h.manager.Name(), Info: info})
}

// GetBackend handles GET /api/storage/backend
func (h *Handler) GetBackend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BackendResponse{
		Backend:   h.manager.Name(),
		Available: h.backends.Names(),
	})
}

// SetBackend handles PUT /api/storage/backend
func (h *Handler) SetBackend(w http.ResponseWriter, r *http.Request) {
	var req BackendRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "SetBackend: invalid JSON body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	backend, err := h.backends.Lookup(req.Backend)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "unknown_backend", err.Error())
		return
	}

	h.manager.SetStorageService(backend)
	h.GetBackend(w, r)
}

// Migrate handles POST /api/storage/migrate
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	var req MigrateRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Migrate: invalid JSON body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	source, err := h.backends.Lookup(req.From)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "unknown_backend", err.Error())
		return
	}
	target, err := h.backends.Lookup(req.To)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "unknown_backend", err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	copied := h.manager.MigrateData(ctx, source, target, req.Keys)
	writeJSON(w, http.StatusOK, MigrateResponse{
		From:      source.Name(),
		To:        target.Name(),
		Requested: len(req.Keys),
		Copied:    copied,
	})
}

// GetItem handles GET /api/storage/items/{key}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	key := chi.URLParam(r, "key")
	value, ok := h.manager.GetItem(ctx, key)
	if !ok {
		writeError(w, http.StatusNotFound, "key not found")
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Key: key, Value: value, Backend: h.manager.Name()})
}

// SetItem handles PUT /api/storage/items/{key}
func (h *Handler) SetItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SetItemRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "SetItem: invalid JSON body", "key", key, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if !h.manager.SetItem(ctx, key, req.Value) {
		writeError(w, http.StatusUnprocessableEntity, "value could not be stored")
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Key: key, Value: req.Value, Backend: h.manager.Name()})
}

// RemoveItem handles DELETE /api/storage/items/{key}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if !h.manager.RemoveItem(ctx, chi.URLParam(r, "key")) {
		writeError(w, http.StatusInternalServerError, "key could not be removed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/export/{format}/{kind}. The body is the JSON
// input of the export; the outcome is always reported as an export.Result.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	exporter, err := h.exports.Lookup(export.Format(chi.URLParam(r, "format")))
	if err != nil {
		writeErrorCode(w, http.StatusNotFound, "unknown_format", err.Error())
		return
	}
	kind, err := export.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeErrorCode(w, http.StatusNotFound, "unknown_kind", err.Error())
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	res := export.Run(r.Context(), exporter, kind, raw, r.URL.Query().Get("fileName"))
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// Header handles GET /dashboard/header
func (h *Handler) Header(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.header(r.Context()).Render(w); err != nil {
		h.logger.HTTPError(r, err, http.StatusInternalServerError)
	}
}

// HeaderExport handles POST /dashboard/header/export
func (h *Handler) HeaderExport(w http.ResponseWriter, r *http.Request) {
	h.header(r.Context()).Export()
	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "export triggered"})
}

// HeaderLogout handles POST /dashboard/header/logout
func (h *Handler) HeaderLogout(w http.ResponseWriter, r *http.Request) {
	h.header(r.Context()).Logout()
	writeJSON(w, http.StatusOK, StatusResponse{Status: "logged out"})
}

// notFound and methodNotAllowed keep chi's fallbacks in the JSON error format
func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "endpoint not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
