package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"VereinsKasse/api/auth"
	"VereinsKasse/api/constants"
)

type contextKey string

const (
	// OwnerIDKey carries the authenticated organization's user id.
	// Every store query must filter on it; it is the only tenancy
	// isolation mechanism.
	OwnerIDKey contextKey = "ownerID"
	// SessionKey carries the resolved session for display fields
	// (organization name on SEPA exports).
	SessionKey contextKey = "session"
)

// OwnerIDFromCtx returns the tenant id placed by SessionMiddleware.
func OwnerIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(OwnerIDKey).(int64)
	return id, ok
}

// SessionFromCtx returns the active session placed by SessionMiddleware.
func SessionFromCtx(ctx context.Context) *auth.UserSession {
	if s, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return s
	}
	return nil
}

// extractUserID pulls the caller identity from header, query or form.
// Multipart bodies are never parsed here: uploads carry the identity in
// the header or query string, and the upload handlers enforce their
// size ceiling on an untouched body.
func extractUserID(r *http.Request) int64 {
	candidates := []string{
		r.Header.Get("X-User-Id"),
		r.URL.Query().Get("user_id"),
	}
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "multipart/") {
			candidates = append(candidates, r.FormValue("user_id"))
		}
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if id, err := strconv.ParseInt(c, 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// SessionMiddleware resolves the caller to an active session and scopes
// the request context to that organization.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := extractUserID(r)
		if userID == 0 {
			http.Error(w, constants.ErrMissingUserID, http.StatusBadRequest)
			return
		}
		session := auth.SessionByUserID(userID)
		if session == nil || !session.IsLoggedIn {
			http.Error(w, constants.ErrInvalidSession, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), OwnerIDKey, session.UserID)
		ctx = context.WithValue(ctx, SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
