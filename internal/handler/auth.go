package handler

import (
	"log/slog"
	"net/http"

	"github.com/condo-care/backend/internal/security/audit"
	"github.com/condo-care/backend/internal/service"
)

// RegisterRequest represents a new account submission
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

// LoginRequest represents a credential check
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler handles registration and login
type AuthHandler struct {
	auth   *service.AuthService
	audit  *audit.Logger
	logger *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:   authService,
		audit:  auditLog,
		logger: logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.auth.Register(service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogUserAction(r.Context(), result.User.Username, "register", result.User.Username)
	respondData(w, http.StatusCreated, "registered successfully", map[string]interface{}{
		"token": result.Token,
		"user":  result.User,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.audit.LogDenied(r.Context(), req.Username, "login failed")
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogUserAction(r.Context(), result.User.Username, "login", result.User.Username)
	respondData(w, http.StatusOK, "login successful", map[string]interface{}{
		"token": result.Token,
		"user":  result.User,
	})
}
