package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/condo-care/backend/internal/security/audit"
	"github.com/condo-care/backend/internal/security/auth"
	"github.com/condo-care/backend/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// Authenticator wraps individual routes with token and role checks
type Authenticator struct {
	tokens *auth.TokenManager
	logger *slog.Logger
}

func NewAuthenticator(tokens *auth.TokenManager, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token and stores
// the decoded claims in the request context.
func (a *Authenticator) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		tokenString, err := auth.ExtractToken(authHeader)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := a.tokens.ValidateToken(tokenString)
		if err != nil {
			a.logger.Debug("token validation failed", slog.String("error", err.Error()))
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireRoles authenticates and then rejects any caller whose role is
// not in the allowed set.
func (a *Authenticator) RequireRoles(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return a.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		for _, role := range roles {
			if claims != nil && claims.Role == role {
				next(w, r)
				return
			}
		}
		username := ""
		if claims != nil {
			username = claims.Username
		}
		a.logger.Info("role check failed",
			slog.String("username", username),
			slog.String("path", r.URL.Path),
		)
		writeJSONError(w, http.StatusForbidden, "access denied")
	})
}

// GetClaimsFromContext returns the decoded token claims, or nil for an
// unauthenticated request.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		if claims, ok := c.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// RateLimitMiddleware limits requests per client: by username when a
// valid token is present, by remote address otherwise. Health and
// metrics endpoints are never limited.
func RateLimitMiddleware(limiter *ratelimit.Limiter, tokens *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r, tokens)
			if !limiter.Allow(key) {
				log.Info("rate limit exceeded", slog.String("client", key))
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every mutating API request
func AuditMiddleware(auditLog *audit.Logger, tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/") {
				username := clientKey(r, tokens)
				resource := "report"
				if strings.HasPrefix(r.URL.Path, "/api/users") || strings.HasPrefix(r.URL.Path, "/api/auth") {
					resource = "user"
				}
				auditLog.LogAction(r.Context(), username, strings.ToLower(r.Method), resource, r.URL.Path, "initiated")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller for rate limiting and audit: token
// username when present and valid, remote address otherwise.
func clientKey(r *http.Request, tokens *auth.TokenManager) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if tokenString, err := auth.ExtractToken(authHeader); err == nil {
			if claims, err := tokens.ValidateToken(tokenString); err == nil {
				return claims.Username
			}
		}
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":true,"message":"` + message + `"}`))
}
