package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avdeevsm/tfidf-analyzer/internal/auth"
	"github.com/avdeevsm/tfidf-analyzer/internal/document"
	"github.com/avdeevsm/tfidf-analyzer/internal/document/validator"
	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
	"github.com/avdeevsm/tfidf-analyzer/pkg/logger"
)

// Handler implements the document HTTP endpoints.
type Handler struct {
	service     *document.Service
	maxFileSize int64
	logger      *slog.Logger
}

// New creates a document handler.
func New(service *document.Service, maxFileSize int64) *Handler {
	return &Handler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      slog.Default().With("component", "document-handler"),
	}
}

// Upload accepts a multipart form with a "file" part, analyzes it, and
// returns the ranked word-score table.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	// One extra KiB for the multipart framing around the file part.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1024)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "reading uploaded file failed")
		return
	}

	resp, err := h.service.Upload(ctx, auth.UserIDFromContext(ctx), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("document upload failed",
			"filename", header.Filename,
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, "document processing failed")
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// List returns a page of the caller's documents.
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

	docs, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		h.logger.Error("failed to list documents", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
		"limit":     limit,
		"offset":    offset,
	})
}

// Get returns one document's metadata.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to fetch document")
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// Delete removes a document and its stored statistics.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context())); err != nil {
		h.writeServiceError(w, r, err, "failed to delete document")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Statistics returns the document's stored ranked word table.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	payload, cacheHit, err := h.service.Statistics(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to fetch statistics")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if cacheHit {
		w.Header().Set("X-Cache", "HIT")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.Error("failed to write statistics response", "error", err)
	}
}

// Huffman returns the Huffman-encoded document content.
func (h *Handler) Huffman(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Huffman(r.Context(), r.PathValue("id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to encode document")
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	statusCode := apperrors.HTTPStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(fallback, "error", err)
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
