package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserID extracts the authenticated user from a request context. The empty
// string means the request did not pass the auth middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// authMiddleware validates the Bearer token and stores the user ID in the
// request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, errUnauthorized("missing bearer token"))
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}
