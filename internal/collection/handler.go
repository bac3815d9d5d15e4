package collection

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/avdeevsm/tfidf-analyzer/internal/auth"
	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
)

// Handler implements the collection HTTP endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a collection handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default().With("component", "collection-handler"),
	}
}

type createRequest struct {
	Name string `json:"name"`
}

// Create makes a new collection.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "collection name is required")
		return
	}

	c, err := h.service.Create(r.Context(), auth.UserIDFromContext(r.Context()), req.Name)
	if err != nil {
		h.writeServiceError(w, err, "failed to create collection")
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// List returns a page of the caller's collections.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	collections, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		h.writeServiceError(w, err, "failed to list collections")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"collections": collections,
		"count":       len(collections),
		"limit":       limit,
		"offset":      offset,
	})
}

// Get returns one collection.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch collection")
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// Delete removes a collection.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context())); err != nil {
		h.writeServiceError(w, err, "failed to delete collection")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddDocument links a document into the collection.
func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	err := h.service.AddDocument(r.Context(), r.PathValue("id"), r.PathValue("docID"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, err, "failed to add document")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveDocument unlinks a document from the collection.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveDocument(r.Context(), r.PathValue("id"), r.PathValue("docID"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, err, "failed to remove document")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Statistics returns the collection-scoped TF-IDF table.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, err, "failed to compute statistics")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	statusCode := apperrors.HTTPStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.Error(fallback, "error", err)
		h.writeError(w, statusCode, fallback)
		return
	}
	h.writeError(w, statusCode, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
