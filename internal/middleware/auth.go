package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

// TokenVerifier resolves a bearer token to a user identity.
type TokenVerifier interface {
	VerifyToken(token string) (int, error)
}

type userIDContextKey struct{}

func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the authenticated caller placed into the request
// context by AuthCheck; ok is false on unauthenticated requests.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(int)
	return userID, ok
}

type AuthMiddlewareHandler struct {
	verifier     TokenVerifier
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(verifier TokenVerifier) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		verifier: verifier,
		allowedPaths: map[string]bool{
			"/":              true,
			"/version":       true,
			"/auth/register": true,
			"/auth/login":    true,
		},
	}
}

// AuthCheck rejects requests without a valid bearer token: a missing token
// yields 401, a malformed or expired one 403. On success the user identity is
// placed into the request context for the downstream handlers.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				log.Tracef("[malformed auth header] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "missing token", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "malformed-auth-header")
				return
			}

			userID, err := h.verifier.VerifyToken(token)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] forbidden => %s", r.URL.Path)
				pkg.WriteJSONError(w, "invalid token", http.StatusForbidden)
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(ctx, userID)))
		})
	}
}
