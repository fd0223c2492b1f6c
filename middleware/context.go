package middleware

import "context"

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"

	// UserIDKey is the context key for the acting user's id
	UserIDKey contextKey = "user_id"
)

// Claims represents the identity carried by an access token
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimsFromContext retrieves token claims from context
func GetClaimsFromContext(ctx context.Context) *Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds token claims to the context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserIDFromContext retrieves the acting user's id from context.
// Returns nil for unauthenticated or system-level work, which makes
// downstream audit recording a no-op.
func GetUserIDFromContext(ctx context.Context) *int64 {
	if val := ctx.Value(UserIDKey); val != nil {
		if userID, ok := val.(*int64); ok {
			return userID
		}
	}
	return nil
}

// WithUserID adds the acting user's id to the context
func WithUserID(ctx context.Context, userID *int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
