package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating bearer access tokens.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims the middleware expects from the validator.
type TokenClaims struct {
	UserID   string
	UserType string
	JTI      string
}

type contextKeyUserID struct{}
type contextKeyUserType struct{}

// Exported for use in handlers.
var (
	ContextKeyUserID   = contextKeyUserID{}
	ContextKeyUserType = contextKeyUserType{}
)

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUserType retrieves the authenticated user's type code from the context.
func GetUserType(ctx context.Context) string {
	userType, ok := ctx.Value(ContextKeyUserType).(string)
	if !ok {
		return ""
	}
	return userType
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated identity in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyUserType, claims.UserType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only users whose type code marks them as admin.
// It must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if GetUserType(ctx) != "A" {
				logger.WarnContext(ctx, "forbidden - admin required",
					"user_id", GetUserID(ctx),
					"request_id", GetRequestID(ctx),
				)
				WriteErrorEnvelope(w, http.StatusForbidden, "forbidden", "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	WriteErrorEnvelope(w, http.StatusUnauthorized, "unauthorized", description)
}
