package gate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Identity is what the gate attaches to a request once the token checks out.
type Identity struct {
	Email string
	Admin bool
}

type contextKey struct{}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// ContextWithIdentity injects an identity directly, bypassing token
// verification. Handler tests use it in place of RequireAuth.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Gate authenticates requests and enforces the operator-only boundary.
type Gate struct {
	tokens *Tokens
	users  UserRepository
	logger *slog.Logger
}

func New(tokens *Tokens, users UserRepository, logger *slog.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

// RequireAuth verifies the bearer token and injects the caller's identity.
// It also stamps lastActive on the user document, off the request path.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			unauthorized(w)
			return
		}

		email, err := g.tokens.Verify(tokenString)
		if err != nil {
			unauthorized(w)
			return
		}

		go g.touchLastActive(email)

		ctx := context.WithValue(r.Context(), contextKey{}, Identity{Email: email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run inside RequireAuth. The role is read from the user
// store per request, not baked into the token.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}

		role, err := g.users.Role(r.Context(), id.Email)
		if err != nil {
			g.logger.Error("failed to fetch role for admin check", "email", id.Email, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"})
			return
		}
		if role != RoleAdmin {
			forbidden(w)
			return
		}

		id.Admin = true
		ctx := context.WithValue(r.Context(), contextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) touchLastActive(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.users.TouchLastActive(ctx, email, time.Now()); err != nil {
		g.logger.Warn("failed to stamp lastActive", "email", email, "error", err)
	}
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized Access"})
}

func forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden Access"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
