package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/condo-care/backend/internal/domain"
	"github.com/condo-care/backend/internal/security/middleware"
)

// NewRouter registers the full API surface. Status and feedback
// transitions are staff-only; comment, reaction removal, delete, and
// the user endpoints need a valid token; everything else is open.
func NewRouter(
	authHandler *AuthHandler,
	reportHandler *ReportHandler,
	userHandler *UserHandler,
	healthHandler *HealthHandler,
	authn *middleware.Authenticator,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.HandleFunc("GET /api/reports", reportHandler.List)
	mux.HandleFunc("GET /api/reports/statistics", reportHandler.Statistics)
	mux.HandleFunc("GET /api/reports/user/{username}", reportHandler.ListByOwner)
	mux.HandleFunc("POST /api/reports", reportHandler.Create)
	mux.HandleFunc("PUT /api/reports/{id}/status", authn.RequireRoles(reportHandler.UpdateStatus, domain.RoleAdmin, domain.RoleTech))
	mux.HandleFunc("PUT /api/reports/{id}/feedback", authn.RequireRoles(reportHandler.AddFeedback, domain.RoleAdmin, domain.RoleTech))
	mux.HandleFunc("POST /api/reports/{id}/comment", authn.RequireAuth(reportHandler.AddComment))
	mux.HandleFunc("POST /api/reports/{id}/like", reportHandler.Like)
	mux.HandleFunc("POST /api/reports/{id}/dislike", reportHandler.Dislike)
	mux.HandleFunc("POST /api/reports/{id}/removeLikeDislike", authn.RequireAuth(reportHandler.RemoveReaction))
	mux.HandleFunc("DELETE /api/reports/{id}", authn.RequireAuth(reportHandler.Delete))

	mux.HandleFunc("GET /api/users", authn.RequireAuth(userHandler.List))
	mux.HandleFunc("GET /api/users/{id}", authn.RequireAuth(userHandler.Get))
	mux.HandleFunc("PUT /api/users/{id}", authn.RequireAuth(userHandler.Update))
	mux.HandleFunc("DELETE /api/users/{id}", authn.RequireAuth(userHandler.Delete))

	mux.HandleFunc("GET /api/health", healthHandler.APIHealth)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
