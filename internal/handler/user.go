package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/condo-care/backend/internal/security/audit"
	"github.com/condo-care/backend/internal/service"
)

// UserHandler handles account management endpoints
type UserHandler struct {
	users  *service.UserService
	audit  *audit.Logger
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, auditLog *audit.Logger, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		audit:  auditLog,
		logger: logger,
	}
}

func userPathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: true, Message: "invalid user id"})
		return 0, false
	}
	return id, true
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondList(w, users, len(users))
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userPathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "", user)
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userPathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Role      string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Update(id, service.UpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogUserAction(r.Context(), claimsUsername(r), "update", strconv.FormatInt(id, 10))
	respondData(w, http.StatusOK, "user updated", user)
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userPathID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogUserAction(r.Context(), claimsUsername(r), "delete", strconv.FormatInt(id, 10))
	respondMessage(w, http.StatusOK, "user deleted")
}
