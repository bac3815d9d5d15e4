package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
)

// Handler implements the auth HTTP endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default().With("component", "auth-handler"),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err, "registration failed")
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err, "login failed")
		return
	}
	h.writeJSON(w, http.StatusOK, token)
}

// ChangePassword updates the authenticated user's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), UserIDFromContext(r.Context()), req.OldPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, err, "password change failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// DeleteAccount removes the authenticated user.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(r.Context(), UserIDFromContext(r.Context())); err != nil {
		h.writeServiceError(w, err, "account deletion failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
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
